package binance

import (
	"context"
	"errors"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/metrics"
	"github.com/songzhibin97/merchant/internal/trading"
)

const (
	VenueName = "binance"

	// DefaultBookDepth is how many levels a market trade scans.
	DefaultBookDepth = 30
)

// Exchange is the part of the Binance API the adapter consumes. *Client implements it.
type Exchange interface {
	Depth(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error)
	CreateOrder(ctx context.Context, req OrderRequest) (*binance.CreateOrderResponse, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error)
	Balances(ctx context.Context) ([]binance.Balance, error)
}

// BinanceTrader executes abstract trade intents on the spot market.
//
// Binance books are two-sided and always quoted base/quote, so prices need no
// reciprocal; the direction only selects the side of the book. A Market order
// is sent as an immediate-or-cancel limit order at the matched level.
type BinanceTrader struct {
	exchange  Exchange
	epsilon   float64
	bookDepth int
	logger    *zap.Logger
	newID     func() string
}

type TraderOption func(*BinanceTrader)

func WithEpsilon(eps float64) TraderOption {
	return func(t *BinanceTrader) {
		if eps > 0 {
			t.epsilon = eps
		}
	}
}

func WithBookDepth(depth int) TraderOption {
	return func(t *BinanceTrader) {
		if depth > 0 {
			t.bookDepth = depth
		}
	}
}

func WithTraderLogger(logger *zap.Logger) TraderOption {
	return func(t *BinanceTrader) { t.logger = logger }
}

func NewBinanceTrader(exchange Exchange, opts ...TraderOption) *BinanceTrader {
	t := &BinanceTrader{
		exchange:  exchange,
		epsilon:   trading.DefaultEpsilon,
		bookDepth: DefaultBookDepth,
		logger:    zap.NewNop(),
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateOrder implements trading.Trader
func (t *BinanceTrader) CreateOrder(ctx context.Context, order trading.Order) (trading.Trade, error) {
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

func (t *BinanceTrader) createOrder(ctx context.Context, order trading.Order) (trading.Trade, error) {
	if err := order.Validate(); err != nil {
		return trading.Trade{}, err
	}
	symbol, err := Symbol(order.TradingPair.Coins)
	if err != nil {
		return trading.Trade{}, err
	}
	side, err := orderSide(order.TradingPair.Side)
	if err != nil {
		return trading.Trade{}, err
	}

	switch order.TradingPair.Target {
	case trading.Limit:
		return t.rest(ctx, symbol, side, order)
	case trading.Market:
		return t.execute(ctx, symbol, side, order)
	default:
		return trading.Trade{}, fmt.Errorf("unsupported order type: %s", order.TradingPair.Target)
	}
}

func (t *BinanceTrader) rest(ctx context.Context, symbol string, side binance.SideType, order trading.Order) (trading.Trade, error) {
	resp, err := t.exchange.CreateOrder(ctx, OrderRequest{
		Symbol:        symbol,
		Side:          side,
		Type:          binance.OrderTypeLimit,
		TimeInForce:   binance.TimeInForceTypeGTC,
		Quantity:      order.Amount,
		Price:         order.Price,
		ClientOrderID: t.newID(),
	})
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "create order", Err: err}
	}

	price, err := trading.ParseDecimal("price", resp.Price)
	if err != nil {
		return trading.Trade{}, err
	}
	amount, err := trading.ParseDecimal("origQty", resp.OrigQuantity)
	if err != nil {
		return trading.Trade{}, err
	}

	tp := order.TradingPair
	id := orderID(symbol, resp.OrderID)
	metrics.OrdersPlaced.WithLabelValues(VenueName, tp.Coins.String(), string(tp.Side)).Inc()
	t.logger.Info("order placed",
		zap.String("id", id),
		zap.String("client_order_id", resp.ClientOrderID),
		zap.String("status", string(resp.Status)))

	return trading.Trade{
		Target:      trading.Limit,
		ID:          id,
		TradingPair: tp,
		Price:       price,
		Amount:      amount,
	}, nil
}

func (t *BinanceTrader) execute(ctx context.Context, symbol string, side binance.SideType, order trading.Order) (trading.Trade, error) {
	tp := order.TradingPair
	notFound := &trading.OrderNotFoundError{TradingPair: tp, Price: order.Price, Amount: order.Amount}

	depth, err := t.exchange.Depth(ctx, symbol, depthLimit(t.bookDepth))
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "get depth", Err: err}
	}
	book, err := levels(depth, bookSide(tp), t.bookDepth)
	if err != nil {
		return trading.Trade{}, err
	}

	match, ok := findMatch(book, order.Price, t.epsilon)
	if !ok {
		return trading.Trade{}, notFound
	}
	t.logger.Debug("matched price level",
		zap.String("symbol", symbol),
		zap.Float64("price", match.Price),
		zap.Float64("quantity", match.Quantity))

	resp, err := t.exchange.CreateOrder(ctx, OrderRequest{
		Symbol:        symbol,
		Side:          side,
		Type:          binance.OrderTypeLimit,
		TimeInForce:   binance.TimeInForceTypeIOC,
		Quantity:      order.Amount,
		Price:         match.Price,
		ClientOrderID: t.newID(),
	})
	if err != nil {
		return trading.Trade{}, &trading.VenueError{Venue: VenueName, Op: "create trade", Err: err}
	}

	price, amount, err := fill(resp)
	if err != nil {
		return trading.Trade{}, err
	}
	if amount == 0 {
		// the level was gone before the order arrived
		return trading.Trade{}, notFound
	}

	trade := trading.Trade{
		Target:      trading.Market,
		ID:          orderID(symbol, resp.OrderID),
		TradingPair: tp,
		Price:       price,
		Amount:      amount,
	}
	metrics.TradesExecuted.WithLabelValues(VenueName, tp.Coins.String(), string(tp.Side)).Inc()
	t.logger.Info("trade executed",
		zap.String("id", trade.ID),
		zap.Float64("price", trade.Price),
		zap.Float64("amount", trade.Amount))
	return trade, nil
}

// fill returns the average price and executed quantity of an order response.
func fill(resp *binance.CreateOrderResponse) (float64, float64, error) {
	executed, err := decimal.NewFromString(resp.ExecutedQuantity)
	if err != nil {
		return 0, 0, &trading.MalformedResponseError{Field: "executedQty", Value: resp.ExecutedQuantity, Err: err}
	}
	if executed.IsNegative() {
		return 0, 0, &trading.MalformedResponseError{Field: "executedQty", Value: resp.ExecutedQuantity, Err: errors.New("must not be negative")}
	}
	if executed.IsZero() {
		return 0, 0, nil
	}
	amount, err := trading.DecimalFloat("executedQty", resp.ExecutedQuantity, executed)
	if err != nil {
		return 0, 0, err
	}
	quote, err := decimal.NewFromString(resp.CummulativeQuoteQuantity)
	if err != nil {
		return 0, 0, &trading.MalformedResponseError{Field: "cummulativeQuoteQty", Value: resp.CummulativeQuoteQuantity, Err: err}
	}
	if !quote.IsPositive() {
		return 0, 0, &trading.MalformedResponseError{Field: "cummulativeQuoteQty", Value: resp.CummulativeQuoteQuantity, Err: errors.New("must be positive")}
	}
	avg := quote.Div(executed)
	price, err := trading.DecimalFloat("cummulativeQuoteQty", resp.CummulativeQuoteQuantity, avg)
	if err != nil {
		return 0, 0, err
	}
	if _, err := trading.NewPrice(price); err != nil {
		return 0, 0, &trading.MalformedResponseError{Field: "cummulativeQuoteQty", Value: resp.CummulativeQuoteQuantity, Err: err}
	}
	return price, amount, nil
}

// findMatch returns the first level whose price is within eps of price.
func findMatch(book []level, price, eps float64) (level, bool) {
	for _, l := range book {
		if trading.PricesMatch(l.Price, price, eps) {
			return l, true
		}
	}
	return level{}, false
}

// UpdateOrder implements trading.Trader. Spot orders cannot be amended in place.
func (t *BinanceTrader) UpdateOrder(_ context.Context, id string, order trading.Order) (trading.OrderWithID, error) {
	return trading.OrderWithID{}, &trading.TradeError{Op: "update order " + id, Order: order, Err: errors.ErrUnsupported}
}

// DeleteOrder implements trading.Trader. id has the form SYMBOL:ORDERID.
func (t *BinanceTrader) DeleteOrder(ctx context.Context, id string) error {
	symbol, n, err := parseOrderID(id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if err := t.exchange.CancelOrder(ctx, symbol, n); err != nil {
		return &trading.VenueError{Venue: VenueName, Op: "delete order " + id, Err: err}
	}
	t.logger.Info("order deleted", zap.String("id", id))
	return nil
}
