package addbook

import (
	"context"

	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Result is the outcome of an AddBook command. Book is only set on success.
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

// Handle executes the command with retry logic. Two admins adding the same ISBN concurrently
// end in one success and one "isbn already exists" rejection.
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
		result.Book = newBook(command)
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

		return shell.UniqueViolationAsConflict(tx.InsertBook(ctx, newBook(command)))
	})

	return decision, err
}

func newBook(command Command) recordstore.Book {
	return recordstore.Book{
		ID:              command.BookID,
		Title:           command.Title,
		Author:          command.Author,
		ISBN:            command.ISBN,
		PublishedYear:   command.PublishedYear,
		Genre:           command.Genre,
		AvailableCopies: command.Copies,
		Active:          true,
		CreatedAt:       command.AddedAt,
		UpdatedAt:       command.AddedAt,
	}
}
