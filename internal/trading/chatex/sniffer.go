package chatex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/trading"
)

// ChatexSniffer reads the canonical books and reports them in the caller's vocabulary.
type ChatexSniffer struct {
	exchange Exchange
	logger   *zap.Logger
}

func NewChatexSniffer(exchange Exchange, logger *zap.Logger) *ChatexSniffer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatexSniffer{exchange: exchange, logger: logger}
}

// AllTheBestOrders implements trading.Sniffer
func (s *ChatexSniffer) AllTheBestOrders(ctx context.Context, tp trading.TradingPair, count int) ([]trading.Order, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid order count: %d", count)
	}
	book, err := s.book(ctx, tp, count)
	if err != nil {
		return nil, err
	}

	orders := make([]trading.Order, 0, len(book))
	for _, order := range book {
		orders = append(orders, order.ToAgnostic(tp))
	}
	return orders, nil
}

// TheBestOrder implements trading.Sniffer
func (s *ChatexSniffer) TheBestOrder(ctx context.Context, tp trading.TradingPair) (trading.Order, error) {
	book, err := s.book(ctx, tp, 1)
	if err != nil {
		return trading.Order{}, err
	}
	if len(book) == 0 {
		return trading.Order{}, &trading.OrderNotFoundError{TradingPair: tp}
	}
	return book[0].ToAgnostic(tp), nil
}

// GetMyOrders implements trading.Sniffer
func (s *ChatexSniffer) GetMyOrders(ctx context.Context, tp trading.TradingPair) ([]trading.OrderWithID, error) {
	pair, err := ToPair(tp)
	if err != nil {
		return nil, err
	}
	raw, err := s.exchange.GetMyOrders(ctx, pair, chatexapi.ListOptions{})
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get my orders", Err: err}
	}
	mine, err := parseOrders(pair, raw)
	if err != nil {
		return nil, err
	}

	orders := make([]trading.OrderWithID, 0, len(mine))
	for _, order := range mine {
		orders = append(orders, order.ToAgnosticWithID(tp))
	}
	return orders, nil
}

func (s *ChatexSniffer) book(ctx context.Context, tp trading.TradingPair, count int) ([]Order, error) {
	if err := tp.Validate(); err != nil {
		return nil, err
	}
	pair, err := ToPair(tp)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetching book", zap.Stringer("trading_pair", tp), zap.Stringer("pair", pair))

	raw, err := s.exchange.GetAllOrders(ctx, pair, chatexapi.ListOptions{Limit: count})
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get orders", Err: err}
	}
	return parseOrders(pair, truncate(raw, count))
}

// truncate keeps the first n orders; the venue may ignore the requested limit.
func truncate(raw []chatexapi.Order, n int) []chatexapi.Order {
	if len(raw) > n {
		return raw[:n]
	}
	return raw
}
