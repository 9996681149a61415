// Package memoryengine provides an in-memory implementation of recordstore.Store.
//
// Write transactions hold the store-wide lock from Begin until Commit or Rollback and work
// on a copy of the committed state, which replaces the committed state on Commit. This makes
// every transaction serializable. Transactions started with eventual consistency are
// read-only and share the lock with other readers.
//
// The engine enforces the same unique keys and write guards as the SQL engine, so the loan
// engine behaves identically on both. It backs `loansd serve --store=memory` and the tests.
package memoryengine
