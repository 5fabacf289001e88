package chatex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.chatex.com/v1"

	// tokens are refreshed this long before they expire
	tokenLeeway = 30 * time.Second
)

// Client talks to the Chatex REST API. It exchanges the long-lived refresh
// token for short-lived access tokens on demand.
type Client struct {
	baseURL      string
	refreshToken string
	httpClient   *resty.Client
	logger       *zap.Logger
	now          func() time.Time

	mu    sync.Mutex
	token AccessToken
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client for baseURL using httpClient as transport.
func NewClient(baseURL, refreshToken string, httpClient *resty.Client, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      baseURL,
		refreshToken: refreshToken,
		httpClient:   httpClient,
		logger:       zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAllOrders lists resting orders of a book, best rate first.
func (c *Client) GetAllOrders(ctx context.Context, pair CoinPair, opts ListOptions) ([]Order, error) {
	query := opts.query()
	query["pair"] = pair.String()

	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/exchange/orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetMyOrders lists the account's own orders in a book.
func (c *Client) GetMyOrders(ctx context.Context, pair CoinPair, opts ListOptions) ([]Order, error) {
	query := opts.query()
	query["pair"] = pair.String()

	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/exchange/my-orders", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder places a new resting order.
func (c *Client) CreateOrder(ctx context.Context, order CreateOrder) (*Order, error) {
	var created Order
	if err := c.do(ctx, http.MethodPost, "/exchange/orders", nil, order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateTradeForOrder fills the resting order orderID.
func (c *Client) CreateTradeForOrder(ctx context.Context, orderID string, trade CreateTrade) (*Trade, error) {
	var created Trade
	path := fmt.Sprintf("/exchange/orders/%s/trades", orderID)
	if err := c.do(ctx, http.MethodPost, path, nil, trade, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateOrderByID amends amount and rate of a resting order.
func (c *Client) UpdateOrderByID(ctx context.Context, id string, update UpdateOrder) (*Order, error) {
	var updated Order
	if err := c.do(ctx, http.MethodPut, "/exchange/orders/"+id, nil, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrderByID cancels a resting order.
func (c *Client) DeleteOrderByID(ctx context.Context, id string) (*Order, error) {
	var deleted Order
	if err := c.do(ctx, http.MethodDelete, "/exchange/orders/"+id, nil, nil, &deleted); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// GetBalanceSummary returns the balance of every coin on the account.
func (c *Client) GetBalanceSummary(ctx context.Context) ([]Currency, error) {
	var balance []Currency
	if err := c.do(ctx, http.MethodGet, "/me/balance", nil, nil, &balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, result interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, c.baseURL+path)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	c.logger.Debug("chatex response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()))

	if resp.IsError() {
		return decodeAPIError(resp)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.AccessToken != "" && c.now().Add(tokenLeeway).Before(time.Unix(c.token.ExpiresAt, 0)) {
		return c.token.AccessToken, nil
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.refreshToken).
		SetHeader("Accept", "application/json").
		Post(c.baseURL + "/auth/access-token")
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("failed to refresh access token: %w", decodeAPIError(resp))
	}

	var token AccessToken
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return "", fmt.Errorf("failed to decode access token: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("failed to refresh access token: empty token")
	}

	c.token = token
	c.logger.Debug("chatex access token refreshed", zap.Int64("expires_at", token.ExpiresAt))
	return token.AccessToken, nil
}

func decodeAPIError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("unexpected status code: %d: %s", resp.StatusCode(), resp.String())
	}
	return apiErr
}

func (o ListOptions) query() map[string]string {
	query := make(map[string]string)
	if o.Offset > 0 {
		query["offset"] = strconv.Itoa(o.Offset)
	}
	if o.Limit > 0 {
		query["limit"] = strconv.Itoa(o.Limit)
	}
	return query
}
