// Package addbook implements the Add Book use case: an admin adds a title to the catalog.
package addbook
