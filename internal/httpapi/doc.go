// Package httpapi exposes the loan engine as a JSON API under /v1.
//
// It is a thin adapter: every route authenticates the caller through the access gate,
// calls exactly one engine operation, and maps the outcome to a status code.
// Business rejections become 404, 409, 422 or 403. A transaction that still conflicted
// after all retries becomes 503, any other engine error 500.
//
// Middleware chain (outermost first): otelhttp, recoverPanic, rateLimit, router.
package httpapi
