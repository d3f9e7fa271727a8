package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrNullTradeId is returned for a message without a trade id.
	ErrNullTradeId = errors.New("message trade id must not be empty")
	// ErrTradeIdMismatch is returned when the trade id of a message does
	// not match the trade being advanced.
	ErrTradeIdMismatch = errors.New("message trade id does not match trade")
)

// CheckTradeId verifies that the message carries a non-empty trade id
// matching the expected one. A mismatch rejects the message before any
// state-mutating task runs.
func CheckTradeId(expected string, msg TradeMessage) error {
	if len(expected) == 0 || len(msg.GetTradeId()) == 0 {
		return ErrNullTradeId
	}
	if msg.GetTradeId() != expected {
		return fmt.Errorf(
			"%w: got %s, want %s", ErrTradeIdMismatch, msg.GetTradeId(), expected,
		)
	}
	return nil
}

// NonEmptyString validates a required string field off an inbound
// message.
func NonEmptyString(field, value string) (string, error) {
	if len(value) == 0 {
		return "", fmt.Errorf("field %s must not be empty", field)
	}
	return value, nil
}

// NonZeroAmount validates a monetary amount where zero is nonsensical.
// Re-validating an already validated amount is side-effect-free.
func NonZeroAmount(field string, value uint64) (uint64, error) {
	if value == 0 {
		return 0, fmt.Errorf("field %s must be a positive non-zero amount", field)
	}
	return value, nil
}
