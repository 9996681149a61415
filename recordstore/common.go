package recordstore

import (
	"errors"
)

// ErrConcurrencyConflict signals that a guarded write affected no rows or that the database
// aborted the transaction because of concurrent access. It is the only retryable store error.
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")

// ErrTransactionFailed marks an operation whose transaction could not be committed,
// either because retries were exhausted or because the store failed.
var ErrTransactionFailed = errors.New("transaction failed")

var ErrRecordNotFound = errors.New("record not found")
var ErrUniqueViolation = errors.New("unique constraint violated")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrTransactionAlreadyFinished = errors.New("transaction already committed or rolled back")
var ErrReadOnlyTransaction = errors.New("write attempted in a read-only transaction")
