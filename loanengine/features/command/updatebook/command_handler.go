package updatebook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of an UpdateBook command. Book holds the stored book unless the command was rejected.
type Result struct {
	shell.HandlerResult
	Book recordstore.Book
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

// Handle executes the command with retry logic. The write is guarded on the inventory count that was
// read, so an edit racing with a lend or a return is retried on fresh data instead of overwriting it.
func (h CommandHandler) Handle(ctx context.Context, command Command) (Result, error) {
	var (
		decision core.DecisionResult
		book     recordstore.Book
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, book, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return Result{HandlerResult: shell.NewErrorResult(retryMetrics)}, err
	}

	result := Result{HandlerResult: shell.NewResultFromDecision(retryMetrics, decision)}
	if !decision.IsRejected() {
		result.Book = book
	}

	return result, nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DecisionResult, recordstore.Book, error) {
	ctx = recordstore.WithStrongConsistency(ctx)

	var (
		decision core.DecisionResult
		book     recordstore.Book
	)

	err := recordstore.RunInTx(ctx, h.store, func(tx recordstore.Tx) error {
		s, err := loadState(ctx, tx, command)
		if err != nil {
			return err
		}

		decision = Decide(s, command)
		if decision.IsRejected() {
			return nil
		}

		book = *s.Book
		if !decision.HasChangesToWrite() {
			return nil
		}

		book = Apply(book, command.Changes)
		book.UpdatedAt = command.UpdatedAt

		return shell.UniqueViolationAsConflict(tx.UpdateBook(ctx, *s.Book, book))
	})

	return decision, book, err
}
