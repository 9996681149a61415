// Package cancelloan implements the Cancel Loan use case: an admin removes a loan record.
//
// An open loan gives its copy back to the inventory before the record is deleted, regardless of
// whether the book is still active. Cancelling a loan that does not exist is idempotent.
package cancelloan
