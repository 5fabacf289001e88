package risk

import (
	"context"

	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/metrics"
	"github.com/songzhibin97/merchant/internal/trading"
)

// GuardedTrader runs every new or amended order through a RiskManager
// before handing it to the wrapped trader.
type GuardedTrader struct {
	next   trading.Trader
	rm     RiskManager
	venue  string
	logger *zap.Logger
}

var _ trading.Trader = (*GuardedTrader)(nil)

func NewGuardedTrader(next trading.Trader, rm RiskManager, venue string, logger *zap.Logger) *GuardedTrader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuardedTrader{next: next, rm: rm, venue: venue, logger: logger}
}

func (g *GuardedTrader) CreateOrder(ctx context.Context, order trading.Order) (trading.Trade, error) {
	if err := g.check(ctx, "create order", order); err != nil {
		return trading.Trade{}, err
	}
	trade, err := g.next.CreateOrder(ctx, order)
	if err != nil {
		return trading.Trade{}, err
	}
	g.rm.RecordTrade(ctx, trade)
	return trade, nil
}

func (g *GuardedTrader) UpdateOrder(ctx context.Context, id string, order trading.Order) (trading.OrderWithID, error) {
	if err := g.check(ctx, "update order "+id, order); err != nil {
		return trading.OrderWithID{}, err
	}
	return g.next.UpdateOrder(ctx, id, order)
}

func (g *GuardedTrader) DeleteOrder(ctx context.Context, id string) error {
	return g.next.DeleteOrder(ctx, id)
}

func (g *GuardedTrader) check(ctx context.Context, op string, order trading.Order) error {
	assessment, err := g.rm.CheckTradeRisk(ctx, order)
	if err != nil {
		return &trading.TradeError{Op: op, Order: order, Err: err}
	}
	if assessment.IsAcceptable {
		return nil
	}

	metrics.TradeFailures.WithLabelValues(g.venue, metrics.ReasonRisk).Inc()
	g.logger.Warn("order rejected by risk manager",
		zap.Stringer("trading_pair", order.TradingPair),
		zap.Float64("risk_level", assessment.RiskLevel),
		zap.Strings("risk_factors", assessment.RiskFactors),
		zap.Strings("recommendations", assessment.Recommendations))
	return &trading.TradeError{Op: op, Order: order, Err: &RejectedError{Factors: assessment.RiskFactors}}
}
