// Package oteladapters provides OpenTelemetry implementations of the recordstore observability interfaces.
//
// The same adapters are handed to the SQL record store and to the loan engine command and query handlers,
// so one MeterProvider and one TracerProvider see the whole request path.
package oteladapters
