package chatex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/metrics"
	"github.com/songzhibin97/merchant/internal/trading"
)

const (
	// VenueName labels logs, errors and metrics produced by this adapter.
	VenueName = "chatex"

	// DefaultBookDepth is how many resting orders a market trade scans.
	DefaultBookDepth = 30
)

// Exchange is the part of the venue API the adapter consumes.
type Exchange interface {
	GetAllOrders(ctx context.Context, pair chatexapi.CoinPair, opts chatexapi.ListOptions) ([]chatexapi.Order, error)
	GetMyOrders(ctx context.Context, pair chatexapi.CoinPair, opts chatexapi.ListOptions) ([]chatexapi.Order, error)
	CreateOrder(ctx context.Context, order chatexapi.CreateOrder) (*chatexapi.Order, error)
	CreateTradeForOrder(ctx context.Context, orderID string, trade chatexapi.CreateTrade) (*chatexapi.Trade, error)
	UpdateOrderByID(ctx context.Context, id string, update chatexapi.UpdateOrder) (*chatexapi.Order, error)
	DeleteOrderByID(ctx context.Context, id string) (*chatexapi.Order, error)
	GetBalanceSummary(ctx context.Context) ([]chatexapi.Currency, error)
}

// ChatexTrader resolves abstract trade intents against the venue's
// one-directional books.
//
// A Market order fetches up to bookDepth resting orders of the canonical book,
// takes the first one whose rate is within epsilon of the normalized price and
// fills it. A Limit order is placed as a new resting order. Nothing is retried:
// if the matched order is gone by the time the fill is sent, the venue's error
// is returned.
type ChatexTrader struct {
	exchange  Exchange
	epsilon   float64
	bookDepth int
	logger    *zap.Logger
}

type TraderOption func(*ChatexTrader)

func WithEpsilon(eps float64) TraderOption {
	return func(t *ChatexTrader) {
		if eps > 0 {
			t.epsilon = eps
		}
	}
}

func WithBookDepth(depth int) TraderOption {
	return func(t *ChatexTrader) {
		if depth > 0 {
			t.bookDepth = depth
		}
	}
}

func WithTraderLogger(logger *zap.Logger) TraderOption {
	return func(t *ChatexTrader) { t.logger = logger }
}

func NewChatexTrader(exchange Exchange, opts ...TraderOption) *ChatexTrader {
	t := &ChatexTrader{
		exchange:  exchange,
		epsilon:   trading.DefaultEpsilon,
		bookDepth: DefaultBookDepth,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateOrder implements trading.Trader
func (t *ChatexTrader) CreateOrder(ctx context.Context, order trading.Order) (trading.Trade, error) {
	trade, err := t.createOrder(ctx, order)
	if err != nil {
		metrics.TradeFailures.WithLabelValues(VenueName, metrics.ReasonOf(err)).Inc()
		t.logger.Warn("create order failed",
			zap.Stringer("trading_pair", order.TradingPair),
			zap.Float64("price", order.Price),
			zap.Float64("amount", order.Amount),
			zap.Error(err))
		return trading.Trade{}, &trading.TradeError{Op: "create order", Order: order, Err: err}
	}
	return trade, nil
}

func (t *ChatexTrader) createOrder(ctx context.Context, order trading.Order) (trading.Trade, error) {
	if err := order.Validate(); err != nil {
		return trading.Trade{}, err
	}
	target, err := NewOrder(order)
	if err != nil {
		return trading.Trade{}, err
	}

	switch order.TradingPair.Target {
	case trading.Limit:
		return t.rest(ctx, order.TradingPair, target)
	case trading.Market:
		return t.execute(ctx, order.TradingPair, target)
	default:
		return trading.Trade{}, fmt.Errorf("unsupported order type: %s", order.TradingPair.Target)
	}
}

func (t *ChatexTrader) rest(ctx context.Context, tp trading.TradingPair, target Order) (trading.Trade, error) {
	raw, err := t.exchange.CreateOrder(ctx, chatexapi.CreateOrder{
		Pair:   target.Pair.String(),
		Amount: target.amountString(),
		Rate:   target.rateString(),
	})
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "create order", Err: err}
	}

	placed, err := FromRaw(target.Pair, *raw)
	if err != nil {
		return trading.Trade{}, err
	}
	agnostic := placed.ToAgnostic(tp)

	metrics.OrdersPlaced.WithLabelValues(VenueName, tp.Coins.String(), string(tp.Side)).Inc()
	t.logger.Info("order placed",
		zap.String("id", placed.ID),
		zap.Stringer("pair", target.Pair),
		zap.Float64("rate", placed.Rate),
		zap.Float64("amount", placed.Amount))

	return trading.Trade{
		Target:      trading.Limit,
		ID:          placed.ID,
		TradingPair: tp,
		Price:       agnostic.Price,
		Amount:      agnostic.Amount,
	}, nil
}

func (t *ChatexTrader) execute(ctx context.Context, tp trading.TradingPair, target Order) (trading.Trade, error) {
	raw, err := t.exchange.GetAllOrders(ctx, target.Pair, chatexapi.ListOptions{Limit: t.bookDepth})
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "get orders", Err: err}
	}
	book, err := parseOrders(target.Pair, truncate(raw, t.bookDepth))
	if err != nil {
		return trading.Trade{}, err
	}

	match, ok := findMatch(book, target.Rate, t.epsilon)
	if !ok {
		agnostic := target.ToAgnostic(tp)
		return trading.Trade{}, &trading.OrderNotFoundError{
			TradingPair: tp,
			Price:       agnostic.Price,
			Amount:      agnostic.Amount,
		}
	}
	t.logger.Debug("matched resting order",
		zap.String("id", match.ID),
		zap.Float64("rate", match.Rate),
		zap.Float64("target_rate", target.Rate))

	fill, err := t.exchange.CreateTradeForOrder(ctx, match.ID, chatexapi.CreateTrade{
		Amount: target.amountString(),
		Rate:   target.rateString(),
	})
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "create trade", Err: err}
	}

	trade, err := tradeFromRaw(tp, *fill)
	if err != nil {
		return trading.Trade{}, err
	}

	metrics.TradesExecuted.WithLabelValues(VenueName, tp.Coins.String(), string(tp.Side)).Inc()
	t.logger.Info("trade executed",
		zap.String("id", trade.ID),
		zap.String("order_id", match.ID),
		zap.Float64("price", trade.Price),
		zap.Float64("amount", trade.Amount))
	return trade, nil
}

// findMatch returns the first order whose rate is within eps of rate.
func findMatch(book []Order, rate, eps float64) (Order, bool) {
	for _, order := range book {
		if trading.PricesMatch(order.Rate, rate, eps) {
			return order, true
		}
	}
	return Order{}, false
}

// UpdateOrder implements trading.Trader. The venue amends the order in place;
// there is no window in which neither version exists.
func (t *ChatexTrader) UpdateOrder(ctx context.Context, id string, order trading.Order) (trading.OrderWithID, error) {
	updated, err := t.updateOrder(ctx, id, order)
	if err != nil {
		return trading.OrderWithID{}, &trading.TradeError{Op: "update order " + id, Order: order, Err: err}
	}
	return updated, nil
}

func (t *ChatexTrader) updateOrder(ctx context.Context, id string, order trading.Order) (trading.OrderWithID, error) {
	if id == "" {
		return trading.OrderWithID{}, errors.New("empty order id")
	}
	if err := order.Validate(); err != nil {
		return trading.OrderWithID{}, err
	}
	target, err := NewOrder(order)
	if err != nil {
		return trading.OrderWithID{}, err
	}

	raw, err := t.exchange.UpdateOrderByID(ctx, id, chatexapi.UpdateOrder{
		Amount: target.amountString(),
		Rate:   target.rateString(),
	})
	if err != nil {
		return trading.OrderWithID{}, &trading.VenueError{Venue: VenueName, Op: "update order", Err: err}
	}
	updated, err := FromRaw(target.Pair, *raw)
	if err != nil {
		return trading.OrderWithID{}, err
	}
	t.logger.Info("order updated", zap.String("id", updated.ID))
	return updated.ToAgnosticWithID(order.TradingPair), nil
}

// DeleteOrder implements trading.Trader
func (t *ChatexTrader) DeleteOrder(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("failed to delete order: empty order id")
	}
	if _, err := t.exchange.DeleteOrderByID(ctx, id); err != nil {
		return &trading.VenueError{Venue: VenueName, Op: "delete order " + id, Err: err}
	}
	t.logger.Info("order deleted", zap.String("id", id))
	return nil
}
