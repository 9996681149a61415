// Package observable provides wrappers that instrument command and query handlers
// with metrics, tracing and logging while the handlers themselves stay free of observability code.
//
// Wrapping happens at wiring time, explicitly:
//
//	coreHandler, err := createloan.NewCommandHandler(store)
//	handler, err := observable.NewCommandWrapper[createloan.Command, createloan.Result](
//		coreHandler,
//		observable.WithCommandMetrics[createloan.Command, createloan.Result](metricsCollector),
//		observable.WithCommandTracing[createloan.Command, createloan.Result](tracingCollector),
//		observable.WithCommandContextualLogging[createloan.Command, createloan.Result](contextualLogger),
//	)
//
// Rejected commands are not errors. The command wrapper reports them with the "rejected" status
// and counts them per rejection kind, next to the success, idempotent, canceled, timeout,
// concurrency_conflict and error statuses.
package observable
