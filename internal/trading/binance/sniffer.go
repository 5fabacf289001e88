package binance

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/trading"
)

// BinanceSniffer reads the side of the book a trading pair looks at.
type BinanceSniffer struct {
	exchange Exchange
	logger   *zap.Logger
}

func NewBinanceSniffer(exchange Exchange, logger *zap.Logger) *BinanceSniffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BinanceSniffer{exchange: exchange, logger: logger}
}

// AllTheBestOrders implements trading.Sniffer
func (s *BinanceSniffer) AllTheBestOrders(ctx context.Context, tp trading.TradingPair, count int) ([]trading.Order, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid order count: %d", count)
	}
	book, err := s.book(ctx, tp, count)
	if err != nil {
		return nil, err
	}

	orders := make([]trading.Order, 0, len(book))
	for _, l := range book {
		orders = append(orders, l.toAgnostic(tp))
	}
	return orders, nil
}

// TheBestOrder implements trading.Sniffer
func (s *BinanceSniffer) TheBestOrder(ctx context.Context, tp trading.TradingPair) (trading.Order, error) {
	book, err := s.book(ctx, tp, 1)
	if err != nil {
		return trading.Order{}, err
	}
	if len(book) == 0 {
		return trading.Order{}, &trading.OrderNotFoundError{TradingPair: tp}
	}
	return book[0].toAgnostic(tp), nil
}

// GetMyOrders implements trading.Sniffer. Only orders resting on the side of
// the book tp looks at are returned, with their remaining quantity.
func (s *BinanceSniffer) GetMyOrders(ctx context.Context, tp trading.TradingPair) ([]trading.OrderWithID, error) {
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	symbol, err := Symbol(tp.Coins)
	if err != nil {
		return nil, err
	}
	open, err := s.exchange.OpenOrders(ctx, symbol)
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get my orders", Err: err}
	}

	want := binance.SideTypeSell
	if bookSide(tp) == Bids {
		want = binance.SideTypeBuy
	}

	orders := make([]trading.OrderWithID, 0, len(open))
	for _, o := range open {
		if o.Side != want {
			continue
		}
		price, err := trading.ParseDecimal("price", o.Price)
		if err != nil {
			return nil, err
		}
		remaining, err := remainingQuantity(o)
		if err != nil {
			return nil, err
		}
		orders = append(orders, trading.OrderWithID{
			ID:          orderID(symbol, o.OrderID),
			TradingPair: tp,
			Price:       price,
			Amount:      remaining,
		})
	}
	return orders, nil
}

func remainingQuantity(o *binance.Order) (float64, error) {
	orig, err := decimal.NewFromString(o.OrigQuantity)
	if err != nil {
		return 0, &trading.MalformedResponseError{Field: "origQty", Value: o.OrigQuantity, Err: err}
	}
	executed, err := decimal.NewFromString(o.ExecutedQuantity)
	if err != nil {
		return 0, &trading.MalformedResponseError{Field: "executedQty", Value: o.ExecutedQuantity, Err: err}
	}
	remaining := orig.Sub(executed)
	return trading.DecimalFloat("origQty", o.OrigQuantity, remaining)
}

func (s *BinanceSniffer) book(ctx context.Context, tp trading.TradingPair, count int) ([]level, error) {
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	symbol, err := Symbol(tp.Coins)
	if err != nil {
		return nil, err
	}
	side := bookSide(tp)
	s.logger.Debug("fetching book",
		zap.Stringer("trading_pair", tp),
		zap.String("symbol", symbol),
		zap.Stringer("side", side))

	depth, err := s.exchange.Depth(ctx, symbol, depthLimit(count))
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get depth", Err: err}
	}
	return levels(depth, side, count)
}
