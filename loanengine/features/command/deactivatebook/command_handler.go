package deactivatebook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of a DeactivateBook command.
// Deactivated is false when the book does not exist or was already inactive.
type Result struct {
	shell.HandlerResult
	Deactivated bool
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

	return Result{
		HandlerResult: shell.NewResultFromDecision(retryMetrics, decision),
		Deactivated:   decision.HasChangesToWrite(),
	}, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	var decision core.DecisionResult

	err := recordstore.RunInTx(ctx, h.store, func(tx recordstore.Tx) error {
		book, err := shell.OptionalRecord(tx.BookByID(ctx, command.BookID))
		if err != nil {
			return err
		}

		decision = Decide(book, command)
		if !decision.HasChangesToWrite() {
			return nil
		}

		deactivated := *book
		deactivated.Active = false
		deactivated.UpdatedAt = command.DeactivatedAt

		return tx.UpdateBook(ctx, *book, deactivated)
	})

	return decision, err
}
