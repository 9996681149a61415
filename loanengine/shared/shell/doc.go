// Package shell contains the infrastructure shared by all loan engine command and query handlers:
// retry with exponential backoff on concurrency conflicts, handler results that carry business
// outcomes next to retry metadata, and helpers that record metrics, spans and log lines for handlers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
