package cancelloan

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of a CancelLoan command. Deleted is false when there was no such loan.
type Result struct {
	shell.HandlerResult
	Deleted bool
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
		Deleted:       decision.HasChangesToWrite(),
	}, nil
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

		// A loan read as open must still be open, or a concurrent return already restocked it.
		if err = tx.DeleteLoan(ctx, command.LoanID, s.Loan.IsOpen()); err != nil {
			return err
		}

		if !restocks(s) {
			return nil
		}

		return tx.IncrementAvailableCopies(ctx, s.Loan.BookID, false)
	})

	return decision, err
}
