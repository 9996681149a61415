// Package listloansbyuser implements the List Loans By User query: the loan history of one user.
package listloansbyuser
