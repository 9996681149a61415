// Package loanengine is the Loan Lifecycle Engine: the single entry point for lending, returning and
// cancelling loans, for the catalog, and for the read paths over both.
//
// Every operation runs one feature handler (see features/command and features/query) in one
// transaction against a recordstore.Store. Command handlers retry lost races on
// recordstore.ErrConcurrencyConflict and re-decide on fresh data. Business rejections come back
// as part of the results, errors are infrastructure failures only.
//
// The Engine wraps every handler with the observable wrappers, so configuring a logger, a metrics
// collector or a tracing collector instruments all operations alike.
package loanengine
