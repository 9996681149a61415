package registeruser

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of a RegisterUser command. User is only set on success.
type Result struct {
	shell.HandlerResult
	User recordstore.User
}

// CommandHandler orchestrates the command processing workflow: Load -> Decide -> Write.
type CommandHandler struct {
	store        recordstore.Store
	retryOptions []shell.RetryOption
}

func NewCommandHandler(store recordstore.Store, retryOptions ...shell.RetryOption) (CommandHandler, error) {
	if store == nil {
		return CommandHandler{}, shell.ErrNilRecordStore
	}

	return CommandHandler{store: store, retryOptions: retryOptions}, nil
}

// Handle executes the command with retry logic.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var decision core.DecisionResult

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	result := Result{HandlerResult: shell.NewResultFromDecision(retryMetrics, decision)}
	if decision.HasChangesToWrite() {
		result.User = newUser(command)
	}

	return result, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	var decision core.DecisionResult

	err := recordstore.RunInTx(ctx, h.store, func(tx recordstore.Tx) error {
		s, err := loadState(ctx, tx, command)
		if err != nil {
			return err
		}

		decision = Decide(s, command)
		if !decision.HasChangesToWrite() {
			return nil
		}

		return shell.UniqueViolationAsConflict(tx.InsertUser(ctx, newUser(command)))
	})

	return decision, err
}

func newUser(command Command) recordstore.User {
	return recordstore.User{
		ID:           command.UserID,
		Name:         command.Name,
		Email:        command.Email,
		PasswordHash: command.PasswordHash,
		Role:         command.Role,
		Active:       true,
		CreatedAt:    command.RegisteredAt,
		UpdatedAt:    command.RegisteredAt,
	}
}
