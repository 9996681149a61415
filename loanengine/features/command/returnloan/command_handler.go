package returnloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of a ReturnLoan command. Loan holds the closed loan on success.
type Result struct {
	shell.HandlerResult
	Loan recordstore.Loan
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
// Rejections are part of the Result, the error is reserved for infrastructure failures.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var (
		decision core.DecisionResult
		loan     recordstore.Loan
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, loan, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	result := Result{HandlerResult: shell.NewResultFromDecision(retryMetrics, decision)}
	if decision.HasChangesToWrite() {
		result.Loan = loan
	}

	return result, nil
}

func (h CommandHandler) executeCommand(
	ctx context.Context,
	command Command,
) (core.DecisionResult, recordstore.Loan, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	var (
		decision core.DecisionResult
		closed   recordstore.Loan
	)

	err := recordstore.RunInTx(ctx, h.store, func(tx recordstore.Tx) error {
		s, err := loadState(ctx, tx, command)
		if err != nil {
			return err
		}

		decision = Decide(s, command)
		if !decision.HasChangesToWrite() {
			return nil
		}

		if err = tx.CloseLoan(ctx, command.LoanID, command.ReturnedAt); err != nil {
			return err
		}

		if restocks(s) {
			if err = tx.IncrementAvailableCopies(ctx, s.Loan.BookID, true); err != nil {
				return err
			}
		}

		closed = *s.Loan
		closed.Returned = true
		closed.ReturnDate = &command.ReturnedAt

		return nil
	})

	return decision, closed, err
}
