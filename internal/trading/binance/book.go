package binance

import (
	"github.com/adshao/go-binance/v2"

	"github.com/songzhibin97/merchant/internal/trading"
)

// depthLimits are the book sizes the depth endpoint accepts.
var depthLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

func depthLimit(count int) int {
	for _, limit := range depthLimits {
		if limit >= count {
			return limit
		}
	}
	return depthLimits[len(depthLimits)-1]
}

// level is one price level of the book, quoted in the direct direction.
type level struct {
	Price    float64
	Quantity float64
}

// levels parses up to count levels of one side. One malformed level fails the batch.
func levels(depth *binance.DepthResponse, side BookSide, count int) ([]level, error) {
	var raw [][2]string
	switch side {
	case Bids:
		for _, bid := range depth.Bids {
			raw = append(raw, [2]string{bid.Price, bid.Quantity})
		}
	default:
		for _, ask := range depth.Asks {
			raw = append(raw, [2]string{ask.Price, ask.Quantity})
		}
	}
	if len(raw) > count {
		raw = raw[:count]
	}

	result := make([]level, 0, len(raw))
	for _, r := range raw {
		price, err := trading.ParseDecimal("price", r[0])
		if err != nil {
			return nil, err
		}
		quantity, err := trading.ParseDecimal("quantity", r[1])
		if err != nil {
			return nil, err
		}
		result = append(result, level{Price: price, Quantity: quantity})
	}
	return result, nil
}

func (l level) toAgnostic(tp trading.TradingPair) trading.Order {
	return trading.Order{TradingPair: tp, Price: l.Price, Amount: l.Quantity}
}
