// Package returnloan implements the Return Loan use case: the borrower (or an admin) closes an open loan.
//
// Closing the loan and restocking the copy happen in one transaction. A copy of a deactivated book
// does not go back into the inventory; the loan still closes and the result carries
// core.NoticeBookInactiveNotRestocked.
package returnloan
