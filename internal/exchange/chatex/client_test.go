package chatex

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/merchant/internal/utils/request"
)

const (
	testRefreshToken = "SECRET"
	testAccessToken  = "ACCESS"
)

type testServer struct {
	*httptest.Server
	mux        *http.ServeMux
	tokenCalls atomic.Int32
}

func setupTestServer(t *testing.T, opts ...Option) (*testServer, *Client) {
	ts := &testServer{mux: http.NewServeMux()}
	ts.mux.HandleFunc("/auth/access-token", func(w http.ResponseWriter, r *http.Request) {
		ts.tokenCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer "+testRefreshToken, r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, AccessToken{
			AccessToken: testAccessToken,
			ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		})
	})
	ts.Server = httptest.NewServer(ts.mux)

	client := NewClient(ts.URL, testRefreshToken, request.NewWithClient(ts.Client(), 2), opts...)
	return ts, client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func requireBearer(t *testing.T, r *http.Request) {
	assert.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
}

func TestClient_GetAllOrders(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	ts.mux.HandleFunc("/exchange/orders", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "TON/USDT", r.URL.Query().Get("pair"))
		assert.Equal(t, "30", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))
		writeJSON(t, w, http.StatusOK, []Order{
			{ID: 7, Pair: "TON/USDT", Rate: "2.5", Amount: "10"},
		})
	})

	orders, err := client.GetAllOrders(context.Background(), NewCoinPair(CoinTON, CoinUSDT), ListOptions{Limit: 30})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint64(7), orders[0].ID)
	assert.Equal(t, "2.5", orders[0].Rate)
	assert.Equal(t, "10", orders[0].Amount)
}

func TestClient_TokenIsCached(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	ts.mux.HandleFunc("/me/balance", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		writeJSON(t, w, http.StatusOK, []Currency{{Coin: "TON", Amount: "1", Held: "0"}})
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		balance, err := client.GetBalanceSummary(ctx)
		require.NoError(t, err)
		require.Len(t, balance, 1)
	}
	assert.Equal(t, int32(1), ts.tokenCalls.Load())
}

func TestClient_TokenRefreshedWhenExpired(t *testing.T) {
	now := time.Now()
	ts, client := setupTestServer(t, WithClock(func() time.Time { return now }))
	defer ts.Close()

	ts.mux.HandleFunc("/me/balance", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, []Currency{})
	})

	ctx := context.Background()
	_, err := client.GetBalanceSummary(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = client.GetBalanceSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), ts.tokenCalls.Load())
}

func TestClient_CreateTradeForOrder(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	ts.mux.HandleFunc("/exchange/orders/42/trades", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, http.MethodPost, r.Method)

		var body CreateTrade
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, CreateTrade{Amount: "4", Rate: "0.5"}, body)

		writeJSON(t, w, http.StatusOK, Trade{ID: 1001, OrderID: 42, Amount: "4", Rate: "0.5"})
	})

	trade, err := client.CreateTradeForOrder(context.Background(), "42", CreateTrade{Amount: "4", Rate: "0.5"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1001), trade.ID)
	assert.Equal(t, uint64(42), trade.OrderID)
}

func TestClient_UpdateAndDeleteOrder(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	ts.mux.HandleFunc("/exchange/orders/9", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		switch r.Method {
		case http.MethodPut:
			var body UpdateOrder
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(t, w, http.StatusOK, Order{ID: 9, Pair: "TON/USDT", Rate: body.Rate, Amount: body.Amount})
		case http.MethodDelete:
			writeJSON(t, w, http.StatusOK, Order{ID: 9, Pair: "TON/USDT", Rate: "1", Amount: "1", Status: "CANCELED"})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})

	ctx := context.Background()
	updated, err := client.UpdateOrderByID(ctx, "9", UpdateOrder{Amount: "3", Rate: "1.25"})
	require.NoError(t, err)
	assert.Equal(t, "1.25", updated.Rate)
	assert.Equal(t, "3", updated.Amount)

	deleted, err := client.DeleteOrderByID(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", deleted.Status)
}

func TestClient_APIErrorIsVerbatim(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	var calls atomic.Int32
	ts.mux.HandleFunc("/exchange/orders", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]string{
			"code":    "insufficient_funds",
			"message": "Not enough USDT on balance",
		})
	})

	_, err := client.CreateOrder(context.Background(), CreateOrder{Pair: "TON/USDT", Amount: "1", Rate: "1"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "insufficient_funds", apiErr.Code)
	assert.Equal(t, "Not enough USDT on balance", err.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_PostIsNotRetried(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	var calls atomic.Int32
	ts.mux.HandleFunc("/exchange/orders/1/trades", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.CreateTradeForOrder(context.Background(), "1", CreateTrade{Amount: "1", Rate: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_GetIsRetried(t *testing.T) {
	ts, client := setupTestServer(t)
	defer ts.Close()

	var calls atomic.Int32
	ts.mux.HandleFunc("/exchange/my-orders", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, http.StatusOK, []Order{})
	})

	orders, err := client.GetMyOrders(context.Background(), NewCoinPair(CoinTON, CoinUSDT), ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_TokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad", request.NewWithClient(server.Client(), 0))
	_, err := client.GetBalanceSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid refresh token")
}

func TestParseCoinPair(t *testing.T) {
	pair, err := ParseCoinPair("ton/usdt")
	require.NoError(t, err)
	assert.Equal(t, NewCoinPair(CoinTON, CoinUSDT), pair)
	assert.Equal(t, "USDT/TON", pair.Reversed().String())

	_, err = ParseCoinPair("TONUSDT")
	assert.Error(t, err)
}
