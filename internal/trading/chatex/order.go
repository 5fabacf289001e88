package chatex

import (
	"strconv"

	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/trading"
)

// Order is an order on the venue's canonical book. ID is empty until the
// venue has acknowledged it.
type Order struct {
	ID     string
	Pair   chatexapi.CoinPair
	Rate   float64
	Amount float64
}

// NewOrder translates an abstract intent to the canonical book.
func NewOrder(order trading.Order) (Order, error) {
	pair, err := ToPair(order.TradingPair)
	if err != nil {
		return Order{}, err
	}
	rate, amount := trading.Normalize(order.TradingPair.Side, order.TradingPair.Target,
		trading.Price(order.Price), order.Amount)
	return Order{
		Pair:   pair,
		Rate:   rate.Direct(),
		Amount: amount,
	}, nil
}

// FromRaw parses a venue order. Malformed numeric fields are an error.
func FromRaw(pair chatexapi.CoinPair, raw chatexapi.Order) (Order, error) {
	rate, err := trading.ParseDecimal("rate", raw.Rate)
	if err != nil {
		return Order{}, err
	}
	amount, err := trading.ParseDecimal("amount", raw.Amount)
	if err != nil {
		return Order{}, err
	}
	return Order{
		ID:     strconv.FormatUint(raw.ID, 10),
		Pair:   pair,
		Rate:   rate,
		Amount: amount,
	}, nil
}

// parseOrders converts a whole batch; one malformed order fails the batch.
func parseOrders(pair chatexapi.CoinPair, raw []chatexapi.Order) ([]Order, error) {
	orders := make([]Order, 0, len(raw))
	for _, r := range raw {
		order, err := FromRaw(pair, r)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// ToAgnostic expresses a canonical order in the caller's vocabulary.
func (o Order) ToAgnostic(tp trading.TradingPair) trading.Order {
	price, amount := trading.Normalize(tp.Side, tp.Target, trading.Price(o.Rate), o.Amount)
	return trading.Order{
		TradingPair: tp,
		Price:       price.Direct(),
		Amount:      amount,
	}
}

// ToAgnosticWithID is ToAgnostic for acknowledged orders.
func (o Order) ToAgnosticWithID(tp trading.TradingPair) trading.OrderWithID {
	order := o.ToAgnostic(tp)
	return trading.OrderWithID{
		ID:          o.ID,
		TradingPair: tp,
		Price:       order.Price,
		Amount:      order.Amount,
	}
}

func (o Order) rateString() string {
	return trading.FormatDecimal(o.Rate)
}

func (o Order) amountString() string {
	return trading.FormatDecimal(o.Amount)
}

// tradeFromRaw parses a fill and expresses it in the caller's vocabulary.
func tradeFromRaw(tp trading.TradingPair, raw chatexapi.Trade) (trading.Trade, error) {
	rate, err := trading.ParseDecimal("rate", raw.Rate)
	if err != nil {
		return trading.Trade{}, err
	}
	amount, err := trading.ParseDecimal("amount", raw.Amount)
	if err != nil {
		return trading.Trade{}, err
	}
	price, amount := trading.Normalize(tp.Side, tp.Target, trading.Price(rate), amount)
	return trading.Trade{
		Target:      trading.Market,
		ID:          strconv.FormatUint(raw.ID, 10),
		TradingPair: tp,
		Price:       price.Direct(),
		Amount:      amount,
	}, nil
}
