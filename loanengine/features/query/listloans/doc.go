// Package listloans implements the List Loans query: every loan in the library, for admins.
//
// The query reads in a read-only transaction with eventual consistency. Its Visibility decides
// whether loans of deactivated books or users are part of the answer.
package listloans
