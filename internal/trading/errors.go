package trading

import (
	"errors"
	"fmt"
)

// ErrOrderNotFound is matched by every *OrderNotFoundError.
var ErrOrderNotFound = errors.New("order not found")

// ConversionError reports a coin or pair the venue adapter cannot express.
type ConversionError struct {
	Kind  string
	Value string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Kind, e.Value)
}

// MalformedResponseError reports a venue numeric field that could not be parsed.
type MalformedResponseError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed venue response: %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// VenueError wraps a transport or API failure; the venue's text is kept as is.
type VenueError struct {
	Venue string
	Op    string
	Err   error
}

func (e *VenueError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Venue, e.Op, e.Err)
}

func (e *VenueError) Unwrap() error { return e.Err }

// OrderNotFoundError is returned when no resting order matched the target price.
type OrderNotFoundError struct {
	TradingPair TradingPair
	Price       float64
	Amount      float64
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order not found: %s price=%v amount=%v", e.TradingPair, e.Price, e.Amount)
}

func (e *OrderNotFoundError) Is(target error) bool {
	return target == ErrOrderNotFound
}

// TradeError annotates a failure with the abstract parameters that were attempted.
type TradeError struct {
	Op    string
	Order Order
	Err   error
}

func (e *TradeError) Error() string {
	return fmt.Sprintf("failed to %s %s price=%v amount=%v: %v",
		e.Op, e.Order.TradingPair, e.Order.Price, e.Order.Amount, e.Err)
}

func (e *TradeError) Unwrap() error { return e.Err }
