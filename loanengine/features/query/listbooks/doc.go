// Package listbooks implements the List Books query: the catalog, ordered by title.
package listbooks
