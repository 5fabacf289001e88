package chatex

import (
	"context"
	"sync"

	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
)

// fakeExchange is an in-memory Exchange recording the calls it receives.
type fakeExchange struct {
	mu sync.Mutex

	book     map[chatexapi.CoinPair][]chatexapi.Order
	mine     map[chatexapi.CoinPair][]chatexapi.Order
	balance  []chatexapi.Currency
	nextID   uint64
	fillRate string // overrides the rate of returned fills when set

	ignoreLimit bool // returns the whole book regardless of ListOptions.Limit

	getErr    error
	createErr error
	tradeErr  error
	updateErr error
	deleteErr error

	gotListOptions chatexapi.ListOptions
	gotPairs       []chatexapi.CoinPair
	created        []chatexapi.CreateOrder
	trades         map[string]chatexapi.CreateTrade
	updates        map[string]chatexapi.UpdateOrder
	deleted        []string
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{
		book:    make(map[chatexapi.CoinPair][]chatexapi.Order),
		mine:    make(map[chatexapi.CoinPair][]chatexapi.Order),
		nextID:  100,
		trades:  make(map[string]chatexapi.CreateTrade),
		updates: make(map[string]chatexapi.UpdateOrder),
	}
}

func (f *fakeExchange) GetAllOrders(_ context.Context, pair chatexapi.CoinPair, opts chatexapi.ListOptions) ([]chatexapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotListOptions = opts
	f.gotPairs = append(f.gotPairs, pair)
	if f.getErr != nil {
		return nil, f.getErr
	}
	orders := f.book[pair]
	if !f.ignoreLimit && opts.Limit > 0 && len(orders) > opts.Limit {
		orders = orders[:opts.Limit]
	}
	return orders, nil
}

func (f *fakeExchange) GetMyOrders(_ context.Context, pair chatexapi.CoinPair, _ chatexapi.ListOptions) ([]chatexapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotPairs = append(f.gotPairs, pair)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.mine[pair], nil
}

func (f *fakeExchange) CreateOrder(_ context.Context, order chatexapi.CreateOrder) (*chatexapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, order)
	f.nextID++
	return &chatexapi.Order{ID: f.nextID, Pair: order.Pair, Rate: order.Rate, Amount: order.Amount, Status: "ACTIVE"}, nil
}

func (f *fakeExchange) CreateTradeForOrder(_ context.Context, orderID string, trade chatexapi.CreateTrade) (*chatexapi.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tradeErr != nil {
		return nil, f.tradeErr
	}
	f.trades[orderID] = trade
	f.nextID++
	rate := trade.Rate
	if f.fillRate != "" {
		rate = f.fillRate
	}
	return &chatexapi.Trade{ID: f.nextID, Rate: rate, Amount: trade.Amount}, nil
}

func (f *fakeExchange) UpdateOrderByID(_ context.Context, id string, update chatexapi.UpdateOrder) (*chatexapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates[id] = update
	return &chatexapi.Order{ID: 55, Rate: update.Rate, Amount: update.Amount}, nil
}

func (f *fakeExchange) DeleteOrderByID(_ context.Context, id string) (*chatexapi.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return &chatexapi.Order{Status: "CANCELED"}, nil
}

func (f *fakeExchange) GetBalanceSummary(context.Context) ([]chatexapi.Currency, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.balance, nil
}
