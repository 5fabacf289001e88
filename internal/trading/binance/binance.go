package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/adshao/go-binance/v2"
)

// OrderRequest is a new order in Binance terms.
type OrderRequest struct {
	Symbol        string
	Side          binance.SideType
	Type          binance.OrderType
	TimeInForce   binance.TimeInForceType
	Quantity      float64
	Price         float64
	ClientOrderID string
}

// Client is the subset of the Binance spot API the adapter needs.
type Client struct {
	client *binance.Client
	mu     sync.RWMutex
}

// NewClient creates a Binance spot client. With debug set the testnet is used.
func NewClient(apiKey, secretKey string, debug ...bool) *Client {
	debug = append(debug, false)
	if debug[0] {
		binance.UseTestnet = true
	}
	return &Client{client: binance.NewClient(apiKey, secretKey)}
}

// NewClientWithBaseURL points the client at baseURL using hc as transport.
func NewClientWithBaseURL(apiKey, secretKey, baseURL string, hc *http.Client) *Client {
	c := binance.NewClient(apiKey, secretKey)
	c.BaseURL = baseURL
	if hc != nil {
		c.HTTPClient = hc
	}
	return &Client{client: c}
}

// Depth returns up to limit levels of each side of the book.
func (c *Client) Depth(ctx context.Context, symbol string, limit int) (*binance.DepthResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	depth, err := c.client.NewDepthService().
		Symbol(symbol).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get depth: %w", err)
	}
	return depth, nil
}

// CreateOrder places req and returns the full order response.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*binance.CreateOrderResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	service := c.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(req.Side).
		Type(req.Type).
		Quantity(strconv.FormatFloat(req.Quantity, 'f', -1, 64)).
		NewOrderRespType(binance.NewOrderRespTypeFULL)

	if req.Type == binance.OrderTypeLimit {
		service.TimeInForce(req.TimeInForce).
			Price(strconv.FormatFloat(req.Price, 'f', -1, 64))
	}
	if req.ClientOrderID != "" {
		service.NewClientOrderID(req.ClientOrderID)
	}

	result, err := service.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}
	return result, nil
}

// CancelOrder cancels an open order.
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.client.NewCancelOrderService().
		Symbol(symbol).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return nil
}

// OpenOrders lists the account's open orders on symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]*binance.Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	orders, err := c.client.NewListOpenOrdersService().
		Symbol(symbol).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open orders: %w", err)
	}
	return orders, nil
}

// Balances returns every asset balance of the account.
func (c *Client) Balances(ctx context.Context) ([]binance.Balance, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	account, err := c.client.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}
	return account.Balances, nil
}
