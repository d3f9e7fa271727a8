package dbbadger

import "errors"

var (
	// ErrTradeAlreadyExists is thrown when inserting a trade with an id
	// already present in the store.
	ErrTradeAlreadyExists = errors.New("trade with same id already exists")
)
