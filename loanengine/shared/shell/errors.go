package shell

import "errors"

var (
	// ErrNilRecordStore is returned when a handler is constructed without a record store.
	ErrNilRecordStore = errors.New("record store must not be nil")

	// ErrNilHandler is returned when a wrapper is constructed without a handler to wrap.
	ErrNilHandler = errors.New("handler must not be nil")
)
