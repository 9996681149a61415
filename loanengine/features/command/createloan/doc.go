// Package createloan implements the Create Loan use case: a user borrows one copy of a book.
//
// The CommandHandler loads the book, the user and the open-loan flag inside one transaction,
// lets the pure Decide function check the business rules, and then decrements the available
// copies and inserts the loan in the same transaction. The decrement is guarded (active book,
// at least one copy), and the store keeps at most one open loan per user and book, so a lost
// race surfaces as recordstore.ErrConcurrencyConflict. The handler retries such attempts, which
// re-read the book and end in a "no copies available" rejection when the last copy is gone.
package createloan
