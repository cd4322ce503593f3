package amqp

import (
	"encoding/json"
	"errors"
	"fmt"

	"spendwise/internal/core"
)

// ErrMalformedMessage marks a delivery that can never be processed.
var ErrMalformedMessage = errors.New("malformed expense event")

// EncodeEvent serializes an expense event for the wire.
func EncodeEvent(e core.ExpenseEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses a delivery body. Bodies that are not JSON or that lack
// a kind or user id are reported as ErrMalformedMessage.
func DecodeEvent(data []byte) (core.ExpenseEvent, error) {
	var e core.ExpenseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return core.ExpenseEvent{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if e.Kind == "" || e.UserID == "" {
		return core.ExpenseEvent{}, fmt.Errorf("%w: missing kind or user id", ErrMalformedMessage)
	}
	return e, nil
}
