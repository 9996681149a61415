package loanengine

import (
	"fmt"

	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/addbook"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/cancelloan"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/createloan"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/deactivatebook"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/deactivateuser"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/registeruser"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/returnloan"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/command/updatebook"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/bookbyid"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/listbooks"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/listloans"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/listloansbyuser"
	"github.com/AntonStoeckl/library-loans-go/loanengine/features/query/loanbyid"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell/observable"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// handlerBundle holds the instrumented command and query handlers.
type handlerBundle struct {
	// Command handlers
	createLoan     shell.CommandHandler[createloan.Command, createloan.Result]
	returnLoan     shell.CommandHandler[returnloan.Command, returnloan.Result]
	cancelLoan     shell.CommandHandler[cancelloan.Command, cancelloan.Result]
	addBook        shell.CommandHandler[addbook.Command, addbook.Result]
	updateBook     shell.CommandHandler[updatebook.Command, updatebook.Result]
	deactivateBook shell.CommandHandler[deactivatebook.Command, deactivatebook.Result]
	registerUser   shell.CommandHandler[registeruser.Command, registeruser.Result]
	deactivateUser shell.CommandHandler[deactivateuser.Command, deactivateuser.Result]

	// Query handlers
	listLoans       shell.QueryHandler[listloans.Query, listloans.Loans]
	listLoansByUser shell.QueryHandler[listloansbyuser.Query, listloansbyuser.LoansOfUser]
	loanByID        shell.QueryHandler[loanbyid.Query, loanbyid.LoanResult]
	listBooks       shell.QueryHandler[listbooks.Query, listbooks.Books]
	bookByID        shell.QueryHandler[bookbyid.Query, bookbyid.BookResult]
}

// createHandlers creates all handlers and wraps them with the Engine's observability.
//
//nolint:funlen // Repetitive handler creation with consistent error handling
func (e *Engine) createHandlers(store recordstore.Store) (handlerBundle, error) {
	var (
		b   handlerBundle
		err error
	)

	createLoanHandler, err := createloan.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create CreateLoan handler: %w", err)
	}

	if b.createLoan, err = wrapCommand[createloan.Command, createloan.Result](e, createLoanHandler); err != nil {
		return b, err
	}

	returnLoanHandler, err := returnloan.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create ReturnLoan handler: %w", err)
	}

	if b.returnLoan, err = wrapCommand[returnloan.Command, returnloan.Result](e, returnLoanHandler); err != nil {
		return b, err
	}

	cancelLoanHandler, err := cancelloan.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create CancelLoan handler: %w", err)
	}

	if b.cancelLoan, err = wrapCommand[cancelloan.Command, cancelloan.Result](e, cancelLoanHandler); err != nil {
		return b, err
	}

	addBookHandler, err := addbook.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create AddBook handler: %w", err)
	}

	if b.addBook, err = wrapCommand[addbook.Command, addbook.Result](e, addBookHandler); err != nil {
		return b, err
	}

	updateBookHandler, err := updatebook.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create UpdateBook handler: %w", err)
	}

	if b.updateBook, err = wrapCommand[updatebook.Command, updatebook.Result](e, updateBookHandler); err != nil {
		return b, err
	}

	deactivateBookHandler, err := deactivatebook.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create DeactivateBook handler: %w", err)
	}

	if b.deactivateBook, err = wrapCommand[deactivatebook.Command, deactivatebook.Result](e, deactivateBookHandler); err != nil {
		return b, err
	}

	registerUserHandler, err := registeruser.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create RegisterUser handler: %w", err)
	}

	if b.registerUser, err = wrapCommand[registeruser.Command, registeruser.Result](e, registerUserHandler); err != nil {
		return b, err
	}

	deactivateUserHandler, err := deactivateuser.NewCommandHandler(store, e.retryOptions...)
	if err != nil {
		return b, fmt.Errorf("failed to create DeactivateUser handler: %w", err)
	}

	if b.deactivateUser, err = wrapCommand[deactivateuser.Command, deactivateuser.Result](e, deactivateUserHandler); err != nil {
		return b, err
	}

	listLoansHandler, err := listloans.NewQueryHandler(store)
	if err != nil {
		return b, fmt.Errorf("failed to create ListLoans handler: %w", err)
	}

	if b.listLoans, err = wrapQuery[listloans.Query, listloans.Loans](e, listLoansHandler); err != nil {
		return b, err
	}

	listLoansByUserHandler, err := listloansbyuser.NewQueryHandler(store)
	if err != nil {
		return b, fmt.Errorf("failed to create ListLoansByUser handler: %w", err)
	}

	if b.listLoansByUser, err = wrapQuery[listloansbyuser.Query, listloansbyuser.LoansOfUser](e, listLoansByUserHandler); err != nil {
		return b, err
	}

	loanByIDHandler, err := loanbyid.NewQueryHandler(store)
	if err != nil {
		return b, fmt.Errorf("failed to create LoanByID handler: %w", err)
	}

	if b.loanByID, err = wrapQuery[loanbyid.Query, loanbyid.LoanResult](e, loanByIDHandler); err != nil {
		return b, err
	}

	listBooksHandler, err := listbooks.NewQueryHandler(store)
	if err != nil {
		return b, fmt.Errorf("failed to create ListBooks handler: %w", err)
	}

	if b.listBooks, err = wrapQuery[listbooks.Query, listbooks.Books](e, listBooksHandler); err != nil {
		return b, err
	}

	bookByIDHandler, err := bookbyid.NewQueryHandler(store)
	if err != nil {
		return b, fmt.Errorf("failed to create BookByID handler: %w", err)
	}

	if b.bookByID, err = wrapQuery[bookbyid.Query, bookbyid.BookResult](e, bookByIDHandler); err != nil {
		return b, err
	}

	return b, nil
}

func wrapCommand[C shell.Command, R shell.CommandResult](
	e *Engine,
	handler shell.CommandHandler[C, R],
) (shell.CommandHandler[C, R], error) {
	opts := make([]observable.CommandOption[C, R], 0, 4)

	if e.metricsCollector != nil {
		opts = append(opts, observable.WithCommandMetrics[C, R](e.metricsCollector))
	}

	if e.tracingCollector != nil {
		opts = append(opts, observable.WithCommandTracing[C, R](e.tracingCollector))
	}

	if e.contextualLogger != nil {
		opts = append(opts, observable.WithCommandContextualLogging[C, R](e.contextualLogger))
	}

	if e.logger != nil {
		opts = append(opts, observable.WithCommandLogging[C, R](e.logger))
	}

	wrapper, err := observable.NewCommandWrapper[C, R](handler, opts...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func wrapQuery[Q shell.Query, R any](e *Engine, handler shell.QueryHandler[Q, R]) (shell.QueryHandler[Q, R], error) {
	opts := make([]observable.QueryOption[Q, R], 0, 4)

	if e.metricsCollector != nil {
		opts = append(opts, observable.WithQueryMetrics[Q, R](e.metricsCollector))
	}

	if e.tracingCollector != nil {
		opts = append(opts, observable.WithQueryTracing[Q, R](e.tracingCollector))
	}

	if e.contextualLogger != nil {
		opts = append(opts, observable.WithQueryContextualLogging[Q, R](e.contextualLogger))
	}

	if e.logger != nil {
		opts = append(opts, observable.WithQueryLogging[Q, R](e.logger))
	}

	wrapper, err := observable.NewQueryWrapper[Q, R](handler, opts...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}
