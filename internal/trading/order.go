package trading

import "fmt"

// Order is an abstract trade intent or a quote read from a venue, expressed
// in the caller's vocabulary.
type Order struct {
	TradingPair TradingPair `json:"trading_pair"`
	Price       float64     `json:"price"`
	Amount      float64     `json:"amount"`
}

// Validate checks the trading pair and that price and amount are positive.
func (o Order) Validate() error {
	if err := o.TradingPair.Validate(); err != nil {
		return err
	}
	if _, err := NewPrice(o.Price); err != nil {
		return err
	}
	if !(o.Amount > 0) {
		return fmt.Errorf("invalid amount: %v", o.Amount)
	}
	return nil
}

// OrderWithID is an order acknowledged by the venue.
type OrderWithID struct {
	ID          string      `json:"id"`
	TradingPair TradingPair `json:"trading_pair"`
	Price       float64     `json:"price"`
	Amount      float64     `json:"amount"`
}

// Trade is the outcome of Trader.CreateOrder.
//
// With Target == Limit a resting order was placed and ID is the venue order id.
// With Target == Market a resting order was consumed and ID, Price and Amount
// describe the fill.
type Trade struct {
	Target      Target      `json:"target"`
	ID          string      `json:"id"`
	TradingPair TradingPair `json:"trading_pair"`
	Price       float64     `json:"price"`
	Amount      float64     `json:"amount"`
}

// Currency is a balance of a single coin.
type Currency struct {
	Coin   Coin    `json:"coin"`
	Amount float64 `json:"amount"`
	Held   float64 `json:"held"`
}
