// Package updatebook implements the Update Book use case: an admin edits an active catalog entry.
//
// Only the fields present in Changes are applied. Setting AvailableCopies is an explicit catalog
// edit and the only way besides lending and returning that the inventory count moves.
package updatebook
