package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons used as the "reason" label of TradeFailures.
const (
	ReasonConversion = "conversion"
	ReasonMalformed  = "malformed_response"
	ReasonVenue      = "venue"
	ReasonNotFound   = "order_not_found"
	ReasonRisk       = "risk"
	ReasonInvalid    = "invalid_order"
)

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_orders_placed_total",
			Help: "Resting orders placed (by venue, pair and side).",
		},
		[]string{"venue", "pair", "side"},
	)

	TradesExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_trades_executed_total",
			Help: "Trades executed against resting orders (by venue, pair and side).",
		},
		[]string{"venue", "pair", "side"},
	)

	TradeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "merchant_trade_failures_total",
			Help: "Failed trade attempts (by venue and reason).",
		},
		[]string{"venue", "reason"},
	)

	BestPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "merchant_best_price",
			Help: "Last observed best price in the caller's vocabulary.",
		},
		[]string{"venue", "pair", "side", "target"},
	)
)

func init() {
	prometheus.MustRegister(OrdersPlaced, TradesExecuted, TradeFailures, BestPrice)
}
