package memoryengine

import (
	"bytes"
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-loans-go/recordstore"
)

type tx struct {
	store    *Store
	state    state
	readOnly bool
	finished bool
}

func (t *tx) Commit(_ context.Context) error {
	if t.finished {
		return recordstore.ErrTransactionAlreadyFinished
	}
	t.finished = true

	if t.readOnly {
		t.store.mu.RUnlock()
		return nil
	}

	t.store.state = t.state
	t.store.mu.Unlock()

	return nil
}

func (t *tx) Rollback(_ context.Context) error {
	if t.finished {
		return recordstore.ErrTransactionAlreadyFinished
	}
	t.finished = true

	if t.readOnly {
		t.store.mu.RUnlock()
		return nil
	}

	t.store.mu.Unlock()

	return nil
}

func (t *tx) usable(write bool) error {
	if t.finished {
		return recordstore.ErrTransactionAlreadyFinished
	}

	if write && t.readOnly {
		return recordstore.ErrReadOnlyTransaction
	}

	return nil
}

func (t *tx) BookByID(_ context.Context, id uuid.UUID) (recordstore.Book, error) {
	if err := t.usable(false); err != nil {
		return recordstore.Book{}, err
	}

	book, ok := t.state.books[id]
	if !ok {
		return recordstore.Book{}, recordstore.ErrRecordNotFound
	}

	return book, nil
}

func (t *tx) BookByISBN(_ context.Context, isbn string) (recordstore.Book, error) {
	if err := t.usable(false); err != nil {
		return recordstore.Book{}, err
	}

	for _, book := range t.state.books {
		if book.ISBN == isbn {
			return book, nil
		}
	}

	return recordstore.Book{}, recordstore.ErrRecordNotFound
}

func (t *tx) Books(_ context.Context, filter recordstore.BookFilter) ([]recordstore.Book, error) {
	if err := t.usable(false); err != nil {
		return nil, err
	}

	books := make([]recordstore.Book, 0, len(t.state.books))
	for _, book := range t.state.books {
		if filter.Visibility == recordstore.MemberView && !book.Active {
			continue
		}
		books = append(books, book)
	}

	slices.SortFunc(books, func(a, b recordstore.Book) int {
		if c := cmp.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	return books, nil
}

func (t *tx) UserByID(_ context.Context, id uuid.UUID) (recordstore.User, error) {
	if err := t.usable(false); err != nil {
		return recordstore.User{}, err
	}

	user, ok := t.state.users[id]
	if !ok {
		return recordstore.User{}, recordstore.ErrRecordNotFound
	}

	return user, nil
}

func (t *tx) UserByEmail(_ context.Context, email string) (recordstore.User, error) {
	if err := t.usable(false); err != nil {
		return recordstore.User{}, err
	}

	for _, user := range t.state.users {
		if user.Email == email {
			return user, nil
		}
	}

	return recordstore.User{}, recordstore.ErrRecordNotFound
}

func (t *tx) LoanByID(_ context.Context, id uuid.UUID) (recordstore.Loan, error) {
	if err := t.usable(false); err != nil {
		return recordstore.Loan{}, err
	}

	loan, ok := t.state.loans[id]
	if !ok {
		return recordstore.Loan{}, recordstore.ErrRecordNotFound
	}

	return loan, nil
}

func (t *tx) OpenLoanExists(_ context.Context, userID uuid.UUID, bookID uuid.UUID) (bool, error) {
	if err := t.usable(false); err != nil {
		return false, err
	}

	return t.openLoanExists(userID, bookID, uuid.Nil), nil
}

func (t *tx) openLoanExists(userID uuid.UUID, bookID uuid.UUID, except uuid.UUID) bool {
	for id, loan := range t.state.loans {
		if id != except && loan.IsOpen() && loan.UserID == userID && loan.BookID == bookID {
			return true
		}
	}

	return false
}

func (t *tx) Loans(_ context.Context, filter recordstore.LoanFilter) ([]recordstore.LoanView, error) {
	if err := t.usable(false); err != nil {
		return nil, err
	}

	views := make([]recordstore.LoanView, 0)
	for _, loan := range t.state.loans {
		if !matchesLoanFilter(loan, filter) {
			continue
		}

		book, bookFound := t.state.books[loan.BookID]
		user, userFound := t.state.users[loan.UserID]
		if !bookFound || !userFound {
			continue
		}

		if filter.Visibility == recordstore.MemberView && (!book.Active || !user.Active) {
			continue
		}

		views = append(views, recordstore.LoanView{
			Loan:       loan,
			BookTitle:  book.Title,
			BookAuthor: book.Author,
			BookActive: book.Active,
			UserName:   user.Name,
			UserEmail:  user.Email,
			UserActive: user.Active,
		})
	}

	slices.SortFunc(views, func(a, b recordstore.LoanView) int {
		if c := a.BorrowDate.Compare(b.BorrowDate); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	return views, nil
}

func matchesLoanFilter(loan recordstore.Loan, filter recordstore.LoanFilter) bool {
	if filter.LoanID != uuid.Nil && loan.ID != filter.LoanID {
		return false
	}

	if filter.UserID != uuid.Nil && loan.UserID != filter.UserID {
		return false
	}

	if filter.BookID != uuid.Nil && loan.BookID != filter.BookID {
		return false
	}

	if filter.OnlyOpen && !loan.IsOpen() {
		return false
	}

	return true
}

func (t *tx) InsertBook(_ context.Context, book recordstore.Book) error {
	if err := t.usable(true); err != nil {
		return err
	}

	if _, ok := t.state.books[book.ID]; ok {
		return recordstore.ErrUniqueViolation
	}

	if t.isbnTaken(book.ISBN, book.ID) {
		return recordstore.ErrUniqueViolation
	}

	t.state.books[book.ID] = book

	return nil
}

func (t *tx) UpdateBook(_ context.Context, previous recordstore.Book, book recordstore.Book) error {
	if err := t.usable(true); err != nil {
		return err
	}

	stored, ok := t.state.books[previous.ID]
	if !ok || book.ID != previous.ID {
		return recordstore.ErrConcurrencyConflict
	}

	if stored.AvailableCopies != previous.AvailableCopies || stored.Active != previous.Active {
		return recordstore.ErrConcurrencyConflict
	}

	if t.isbnTaken(book.ISBN, book.ID) {
		return recordstore.ErrUniqueViolation
	}

	t.state.books[book.ID] = book

	return nil
}

func (t *tx) isbnTaken(isbn string, except uuid.UUID) bool {
	for id, book := range t.state.books {
		if id != except && book.ISBN == isbn {
			return true
		}
	}

	return false
}

func (t *tx) InsertUser(_ context.Context, user recordstore.User) error {
	if err := t.usable(true); err != nil {
		return err
	}

	if _, ok := t.state.users[user.ID]; ok {
		return recordstore.ErrUniqueViolation
	}

	if t.emailTaken(user.Email, user.ID) {
		return recordstore.ErrUniqueViolation
	}

	t.state.users[user.ID] = user

	return nil
}

func (t *tx) UpdateUser(_ context.Context, user recordstore.User) error {
	if err := t.usable(true); err != nil {
		return err
	}

	if _, ok := t.state.users[user.ID]; !ok {
		return recordstore.ErrRecordNotFound
	}

	if t.emailTaken(user.Email, user.ID) {
		return recordstore.ErrUniqueViolation
	}

	t.state.users[user.ID] = user

	return nil
}

func (t *tx) emailTaken(email string, except uuid.UUID) bool {
	for id, user := range t.state.users {
		if id != except && user.Email == email {
			return true
		}
	}

	return false
}

func (t *tx) InsertLoan(_ context.Context, loan recordstore.Loan) error {
	if err := t.usable(true); err != nil {
		return err
	}

	if _, ok := t.state.loans[loan.ID]; ok {
		return recordstore.ErrUniqueViolation
	}

	if loan.IsOpen() && t.openLoanExists(loan.UserID, loan.BookID, loan.ID) {
		return recordstore.ErrUniqueViolation
	}

	t.state.loans[loan.ID] = loan

	return nil
}

func (t *tx) CloseLoan(_ context.Context, loanID uuid.UUID, returnedAt time.Time) error {
	if err := t.usable(true); err != nil {
		return err
	}

	loan, ok := t.state.loans[loanID]
	if !ok || !loan.IsOpen() {
		return recordstore.ErrConcurrencyConflict
	}

	loan.Returned = true
	loan.ReturnDate = &returnedAt
	t.state.loans[loanID] = loan

	return nil
}

func (t *tx) DeleteLoan(_ context.Context, loanID uuid.UUID, onlyIfOpen bool) error {
	if err := t.usable(true); err != nil {
		return err
	}

	loan, ok := t.state.loans[loanID]
	if !ok || (onlyIfOpen && !loan.IsOpen()) {
		return recordstore.ErrConcurrencyConflict
	}

	delete(t.state.loans, loanID)

	return nil
}

func (t *tx) DecrementAvailableCopies(_ context.Context, bookID uuid.UUID) error {
	if err := t.usable(true); err != nil {
		return err
	}

	book, ok := t.state.books[bookID]
	if !ok || !book.Active || book.AvailableCopies <= 0 {
		return recordstore.ErrConcurrencyConflict
	}

	book.AvailableCopies--
	t.state.books[bookID] = book

	return nil
}

func (t *tx) IncrementAvailableCopies(_ context.Context, bookID uuid.UUID, onlyIfActive bool) error {
	if err := t.usable(true); err != nil {
		return err
	}

	book, ok := t.state.books[bookID]
	if !ok || (onlyIfActive && !book.Active) {
		return recordstore.ErrConcurrencyConflict
	}

	book.AvailableCopies++
	t.state.books[bookID] = book

	return nil
}
