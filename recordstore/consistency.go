package recordstore

import "context"

// ConsistencyLevel defines which database a transaction may run against.
type ConsistencyLevel int

const (
	// StrongConsistency runs transactions on the primary database. Command handlers
	// read and write in the same transaction, so this is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows read-only transactions on a replica database,
	// trading freshness for a reduced load on the primary.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "recordstore.consistency_level"

// WithStrongConsistency returns a context that pins transactions to the primary database.
//
// Example usage:
//
//	ctx = recordstore.WithStrongConsistency(ctx)
//	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error { ... })
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that lets the store run a read-only
// transaction on a replica, if one is configured.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// Without an explicit level it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
