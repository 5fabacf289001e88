package chatex

import (
	"fmt"
	"strings"
)

// Coin is a venue asset code, e.g. "TON".
type Coin string

const (
	CoinTON  Coin = "TON"
	CoinUSDT Coin = "USDT"
	CoinBTC  Coin = "BTC"
	CoinETH  Coin = "ETH"
)

// CoinPair is one fixed-direction order book. Orders in the book sell Base
// and are priced in Quote per Base.
type CoinPair struct {
	Base  Coin
	Quote Coin
}

func NewCoinPair(base, quote Coin) CoinPair {
	return CoinPair{Base: base, Quote: quote}
}

// Reversed swaps base and quote.
func (p CoinPair) Reversed() CoinPair {
	return CoinPair{Base: p.Quote, Quote: p.Base}
}

func (p CoinPair) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

// ParseCoinPair parses "TON/USDT".
func ParseCoinPair(s string) (CoinPair, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok || base == "" || quote == "" {
		return CoinPair{}, fmt.Errorf("invalid coin pair: %q", s)
	}
	return NewCoinPair(Coin(strings.ToUpper(base)), Coin(strings.ToUpper(quote))), nil
}

// Order is a resting order as returned by the exchange API. Numeric fields
// are transmitted as strings.
type Order struct {
	ID        uint64 `json:"id"`
	Pair      string `json:"pair"`
	Rate      string `json:"rate"`
	Amount    string `json:"amount"`
	Status    string `json:"status,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

// Trade is a fill of a resting order.
type Trade struct {
	ID        uint64 `json:"id"`
	OrderID   uint64 `json:"order_id"`
	Rate      string `json:"rate"`
	Amount    string `json:"amount"`
	CreatedAt int64  `json:"created_at,omitempty"`
}

// CreateOrder is the body of POST /exchange/orders.
type CreateOrder struct {
	Pair   string `json:"pair"`
	Amount string `json:"amount"`
	Rate   string `json:"rate"`
}

// UpdateOrder is the body of PUT /exchange/orders/{id}.
type UpdateOrder struct {
	Amount string `json:"amount"`
	Rate   string `json:"rate"`
}

// CreateTrade is the body of POST /exchange/orders/{id}/trades.
type CreateTrade struct {
	Amount string `json:"amount"`
	Rate   string `json:"rate"`
}

// Currency is one entry of the balance summary.
type Currency struct {
	Coin   string `json:"coin"`
	Amount string `json:"amount"`
	Held   string `json:"held"`
}

// AccessToken is issued by POST /auth/access-token.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// ListOptions pages list endpoints. Zero values are omitted from the query.
type ListOptions struct {
	Offset int
	Limit  int
}

// APIError is a non-2xx response from the exchange.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}
