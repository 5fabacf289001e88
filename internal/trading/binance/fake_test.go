package binance

import (
	"context"
	"sync"

	"github.com/adshao/go-binance/v2"

	"github.com/songzhibin97/merchant/internal/trading"
)

type fakeExchange struct {
	mu sync.Mutex

	depth    binance.DepthResponse
	open     []*binance.Order
	balances []binance.Balance
	// response to the next CreateOrder; echoes the request when nil
	response *binance.CreateOrderResponse

	depthErr  error
	createErr error
	cancelErr error

	gotLimit  int
	requests  []OrderRequest
	cancelled map[string][]int64
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{cancelled: make(map[string][]int64)}
}

func (f *fakeExchange) Depth(_ context.Context, _ string, limit int) (*binance.DepthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotLimit = limit
	if f.depthErr != nil {
		return nil, f.depthErr
	}
	depth := f.depth
	return &depth, nil
}

func (f *fakeExchange) CreateOrder(_ context.Context, req OrderRequest) (*binance.CreateOrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.response != nil {
		return f.response, nil
	}
	return &binance.CreateOrderResponse{
		Symbol:        req.Symbol,
		OrderID:       int64(len(f.requests)),
		ClientOrderID: req.ClientOrderID,
		Price:         trading.FormatDecimal(req.Price),
		OrigQuantity:  trading.FormatDecimal(req.Quantity),
		Status:        binance.OrderStatusTypeNew,
	}, nil
}

func (f *fakeExchange) CancelOrder(_ context.Context, symbol string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled[symbol] = append(f.cancelled[symbol], orderID)
	return nil
}

func (f *fakeExchange) OpenOrders(context.Context, string) ([]*binance.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open, nil
}

func (f *fakeExchange) Balances(context.Context) ([]binance.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances, nil
}
