package loanengine

import (
	"context"
	"time"

	"github.com/google/uuid"

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
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/core"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

// Engine is the Loan Lifecycle Engine. It is safe for concurrent use.
type Engine struct {
	clock        func() time.Time
	newID        func() (uuid.UUID, error)
	retryOptions []shell.RetryOption

	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector

	handlers handlerBundle
}

// BookDetails are the attributes of a new catalog entry.
type BookDetails struct {
	Title         string
	Author        string
	ISBN          string
	PublishedYear int
	Genre         string
	Copies        int
}

// UserDetails are the attributes of a new user. PasswordHash must already be hashed,
// an empty Role registers a member.
type UserDetails struct {
	Name         string
	Email        string
	PasswordHash []byte
	Role         recordstore.Role
}

// New creates an Engine on top of the given store.
func New(store recordstore.Store, options ...Option) (*Engine, error) {
	if store == nil {
		return nil, shell.ErrNilRecordStore
	}

	e := &Engine{
		clock: time.Now,
		newID: uuid.NewV7,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	handlers, err := e.createHandlers(store)
	if err != nil {
		return nil, err
	}

	e.handlers = handlers

	return e, nil
}

// CreateLoan lends one copy of a book to a user. A nil borrowDate means now.
func (e *Engine) CreateLoan(ctx context.Context, userID, bookID uuid.UUID, borrowDate *time.Time) (createloan.Result, error) {
	loanID, err := e.newID()
	if err != nil {
		return createloan.Result{}, err
	}

	borrowedAt := e.clock()
	if borrowDate != nil {
		borrowedAt = *borrowDate
	}

	return e.handlers.createLoan.Handle(ctx, createloan.BuildCommand(loanID, userID, bookID, borrowedAt))
}

// ReturnLoan closes an open loan on behalf of the caller, who must be the borrower or an admin.
func (e *Engine) ReturnLoan(ctx context.Context, loanID uuid.UUID, caller core.Caller) (returnloan.Result, error) {
	return e.handlers.returnLoan.Handle(ctx, returnloan.BuildCommand(loanID, caller, e.clock()))
}

// CancelLoan deletes a loan, restocking its copy if it was open. It reports false when there was no such loan.
// Callers must make sure only admins reach it.
func (e *Engine) CancelLoan(ctx context.Context, loanID uuid.UUID) (bool, error) {
	result, err := e.handlers.cancelLoan.Handle(ctx, cancelloan.BuildCommand(loanID))
	if err != nil {
		return false, err
	}

	return result.Deleted, nil
}

// ListLoans returns all loans under the given visibility.
func (e *Engine) ListLoans(ctx context.Context, visibility recordstore.Visibility) (listloans.Loans, error) {
	return e.handlers.listLoans.Handle(ctx, listloans.BuildQuery(visibility, false))
}

// ListOpenLoans returns the loans still holding a copy, under the given visibility.
func (e *Engine) ListOpenLoans(ctx context.Context, visibility recordstore.Visibility) (listloans.Loans, error) {
	return e.handlers.listLoans.Handle(ctx, listloans.BuildQuery(visibility, true))
}

// ListLoansByUser returns the loans of one user under the given visibility.
func (e *Engine) ListLoansByUser(
	ctx context.Context,
	userID uuid.UUID,
	visibility recordstore.Visibility,
) (listloansbyuser.LoansOfUser, error) {
	return e.handlers.listLoansByUser.Handle(ctx, listloansbyuser.BuildQuery(userID, visibility, false))
}

// LoanByID returns one loan if the caller may see it, and a not found rejection otherwise.
func (e *Engine) LoanByID(ctx context.Context, loanID uuid.UUID, caller core.Caller) (loanbyid.LoanResult, error) {
	return e.handlers.loanByID.Handle(ctx, loanbyid.BuildQuery(loanID, caller))
}

// AddBook adds an active book to the catalog.
func (e *Engine) AddBook(ctx context.Context, details BookDetails) (addbook.Result, error) {
	bookID, err := e.newID()
	if err != nil {
		return addbook.Result{}, err
	}

	return e.handlers.addBook.Handle(ctx, addbook.BuildCommand(
		bookID,
		details.Title,
		details.Author,
		details.ISBN,
		details.PublishedYear,
		details.Genre,
		details.Copies,
		e.clock(),
	))
}

// UpdateBook applies the given changes to an active book.
func (e *Engine) UpdateBook(ctx context.Context, bookID uuid.UUID, changes updatebook.Changes) (updatebook.Result, error) {
	return e.handlers.updateBook.Handle(ctx, updatebook.BuildCommand(bookID, changes, e.clock()))
}

// DeactivateBook soft-deletes a book. It reports false when the book is missing or already inactive.
func (e *Engine) DeactivateBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	result, err := e.handlers.deactivateBook.Handle(ctx, deactivatebook.BuildCommand(bookID, e.clock()))
	if err != nil {
		return false, err
	}

	return result.Deactivated, nil
}

// ListBooks returns the catalog under the given visibility.
func (e *Engine) ListBooks(ctx context.Context, visibility recordstore.Visibility) (listbooks.Books, error) {
	return e.handlers.listBooks.Handle(ctx, listbooks.BuildQuery(visibility))
}

// BookByID returns one book, or a not found rejection when it is missing or hidden by the visibility.
func (e *Engine) BookByID(ctx context.Context, bookID uuid.UUID, visibility recordstore.Visibility) (bookbyid.BookResult, error) {
	return e.handlers.bookByID.Handle(ctx, bookbyid.BuildQuery(bookID, visibility))
}

// RegisterUser creates an active user.
func (e *Engine) RegisterUser(ctx context.Context, details UserDetails) (registeruser.Result, error) {
	userID, err := e.newID()
	if err != nil {
		return registeruser.Result{}, err
	}

	return e.handlers.registerUser.Handle(ctx, registeruser.BuildCommand(
		userID,
		details.Name,
		details.Email,
		details.PasswordHash,
		details.Role,
		e.clock(),
	))
}

// DeactivateUser soft-deletes a user. It reports false when the user is missing or already inactive.
func (e *Engine) DeactivateUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	result, err := e.handlers.deactivateUser.Handle(ctx, deactivateuser.BuildCommand(userID, e.clock()))
	if err != nil {
		return false, err
	}

	return result.Deactivated, nil
}
