package trading

import (
	"context"
)

// Trader places, amends and cancels orders on a venue
type Trader interface {
	// CreateOrder consumes a matching resting order (Market) or places a new one (Limit)
	CreateOrder(ctx context.Context, order Order) (Trade, error)

	// UpdateOrder amends amount and price of a resting order
	UpdateOrder(ctx context.Context, id string, order Order) (OrderWithID, error)

	// DeleteOrder cancels a resting order
	DeleteOrder(ctx context.Context, id string) error
}

// Sniffer reads the venue's order book
type Sniffer interface {
	// AllTheBestOrders returns up to count resting orders, best first
	AllTheBestOrders(ctx context.Context, pair TradingPair, count int) ([]Order, error)

	// TheBestOrder returns the best resting order or ErrOrderNotFound
	TheBestOrder(ctx context.Context, pair TradingPair) (Order, error)

	// GetMyOrders returns the caller's own resting orders
	GetMyOrders(ctx context.Context, pair TradingPair) ([]OrderWithID, error)
}

// Accountant reads account balances
type Accountant interface {
	// Ask returns the balance of a single coin
	Ask(ctx context.Context, coin Coin) (Currency, error)

	// AskBoth returns the balances of two coins in the given order
	AskBoth(ctx context.Context, first, second Coin) (Currency, Currency, error)

	// CalculateVolume returns the notional of amount at price
	CalculateVolume(price, amount float64) float64
}

// Merchant bundles the capabilities of a single venue
type Merchant interface {
	ID() uint8
	Name() string
	Trader() Trader
	Sniffer() Sniffer
	Accountant() Accountant
}
