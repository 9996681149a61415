package shell

import (
	"context"
)

// Command represents the contract for all command types of the loan engine.
// The CommandType method enables observability instrumentation without reflection.
type Command interface {
	CommandType() string
}

// Query represents the contract for all query types of the loan engine.
type Query interface {
	QueryType() string
}

// CommandResult is implemented by every command handler result. Feature results embed
// HandlerResult, which provides the method.
type CommandResult interface {
	HandlerOutcome() HandlerResult
}

// RejectableResult is implemented by query results that can refuse a caller, e.g. a lookup
// of a record the caller may not see.
type RejectableResult interface {
	IsRejected() bool
}

// CommandHandler defines the contract for components that process one command in one
// transaction, retrying on concurrency conflicts. The wrappers in package observable
// implement it as well, so instrumented and plain handlers are interchangeable.
type CommandHandler[C Command, R CommandResult] interface {
	Handle(ctx context.Context, command C) (R, error)
}

// QueryHandler defines the contract for components that answer a query from a read-only transaction.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
