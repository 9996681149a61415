package createloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of a CreateLoan command. Loan is only set on success.
type Result struct {
	shell.HandlerResult
	Loan recordstore.Loan
}

// CommandHandler orchestrates the command processing workflow: Load -> Decide -> Write, in one
// transaction, retried on concurrency conflicts. External wrappers handle all observability concerns.
type CommandHandler struct {
	store        recordstore.Store
	retryOptions []shell.RetryOption
}

// NewCommandHandler creates a new CommandHandler. Without retry options the retry defaults apply.
func NewCommandHandler(store recordstore.Store, retryOptions ...shell.RetryOption) (CommandHandler, error) {
	if store == nil {
		return CommandHandler{}, shell.ErrNilRecordStore
	}

	return CommandHandler{store: store, retryOptions: retryOptions}, nil
}

// Handle executes the command with retry logic and reports the business outcome and retry metadata.
// Rejections are part of the Result, the error is reserved for infrastructure failures.
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
		result.Loan = newLoan(command)
	}

	return result, nil
}

// executeCommand contains the core command processing logic that can be retried.
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

		if err = tx.DecrementAvailableCopies(ctx, command.BookID); err != nil {
			return err
		}

		return shell.UniqueViolationAsConflict(tx.InsertLoan(ctx, newLoan(command)))
	})

	return decision, err
}

func newLoan(command Command) recordstore.Loan {
	return recordstore.Loan{
		ID:         command.LoanID,
		UserID:     command.UserID,
		BookID:     command.BookID,
		BorrowDate: command.BorrowDate,
	}
}
