// Package loanbyid implements the Loan By ID query.
//
// Members only see their own loans, and only while the loan's book and user are active.
// Every other lookup is answered with a not found rejection, so members cannot probe
// for the existence of other users' loans.
package loanbyid
