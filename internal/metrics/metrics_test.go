package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/songzhibin97/merchant/internal/trading"
)

func TestReasonOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found",
			err:  &trading.TradeError{Op: "create order", Err: &trading.OrderNotFoundError{}},
			want: ReasonNotFound,
		},
		{
			name: "conversion",
			err:  &trading.ConversionError{Kind: "coin pair", Value: "ETH/USDT"},
			want: ReasonConversion,
		},
		{
			name: "malformed",
			err:  fmt.Errorf("wrapped: %w", &trading.MalformedResponseError{Field: "rate", Value: "x"}),
			want: ReasonMalformed,
		},
		{
			name: "venue",
			err:  &trading.VenueError{Venue: "chatex", Op: "create trade", Err: errors.New("boom")},
			want: ReasonVenue,
		},
		{
			name: "other",
			err:  errors.New("invalid amount"),
			want: ReasonInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonOf(tt.err))
		})
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(OrdersPlaced.WithLabelValues("test", "TON/USDT", "buy"))
	OrdersPlaced.WithLabelValues("test", "TON/USDT", "buy").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(OrdersPlaced.WithLabelValues("test", "TON/USDT", "buy")))

	BestPrice.WithLabelValues("test", "TON/USDT", "sell", "market").Set(2.5)
	assert.Equal(t, 2.5, testutil.ToFloat64(BestPrice.WithLabelValues("test", "TON/USDT", "sell", "market")))
}
