// Package helper provides test doubles and fixtures shared by the record store and loan engine tests.
//
// The spies implement the observability interfaces of the recordstore package
// and record every call for inspection with fluent matchers.
package helper
