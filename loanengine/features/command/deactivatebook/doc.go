// Package deactivatebook implements the Deactivate Book use case: an admin soft-deletes a book.
//
// A deactivated book cannot be lent anymore and is hidden from member views. Its open loans stay
// valid, but their copies are not restocked when they come back.
package deactivatebook
