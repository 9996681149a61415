// Package recordstore defines the transactional record store used by the loan engine.
//
// The package holds the records (Book, User, Loan), the Store and Tx contracts every
// storage engine implements, the sentinel errors shared by all engines, and the
// dependency-free observability interfaces (Logger, MetricsCollector, TracingCollector,
// ContextualLogger).
//
// Transactions are explicit handles. Every operation that must be atomic receives a Tx
// and never relies on ambient session state:
//
//	err := recordstore.RunInTx(ctx, store, func(tx recordstore.Tx) error {
//		if err := tx.DecrementAvailableCopies(ctx, bookID); err != nil {
//			return err
//		}
//
//		return tx.InsertLoan(ctx, loan)
//	})
//
// Soft deletion is explicit as well: read paths take a Visibility that decides whether
// inactive books and users (and loans referencing them) are returned.
//
// Engines:
//   - sqlengine: PostgreSQL (pgx pool, database/sql, sqlx) and SQLite, built with goqu
//   - memoryengine: an in-memory engine with serializable transactions
package recordstore
