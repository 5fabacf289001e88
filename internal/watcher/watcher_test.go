package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/songzhibin97/merchant/internal/metrics"
	"github.com/songzhibin97/merchant/internal/trading"
)

type fakeSniffer struct {
	mu    sync.Mutex
	calls map[trading.TradingPair]int
	// errs are returned, in order, before the first successful answer
	errs []error
}

func newFakeSniffer(errs ...error) *fakeSniffer {
	return &fakeSniffer{calls: make(map[trading.TradingPair]int), errs: errs}
}

func (f *fakeSniffer) TheBestOrder(_ context.Context, tp trading.TradingPair) (trading.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tp]++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return trading.Order{}, err
	}
	price := 2.0
	if tp.Coins == trading.BtcUsdt {
		price = 50000
	}
	return trading.Order{TradingPair: tp, Price: price, Amount: 1}, nil
}

func (f *fakeSniffer) AllTheBestOrders(context.Context, trading.TradingPair, int) ([]trading.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSniffer) GetMyOrders(context.Context, trading.TradingPair) ([]trading.OrderWithID, error) {
	return nil, errors.New("not implemented")
}

var (
	tonBuy = trading.TradingPair{Coins: trading.TonUsdt, Side: trading.Buy, Target: trading.Market}
	btcBuy = trading.TradingPair{Coins: trading.BtcUsdt, Side: trading.Buy, Target: trading.Market}
)

func TestWatcher_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(newFakeSniffer(), "test", 10*time.Millisecond, zaptest.NewLogger(t))
	quotes, err := w.Subscribe(ctx, []trading.TradingPair{tonBuy, btcBuy})
	require.NoError(t, err)

	seen := make(map[trading.CoinPairID]float64)
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case q := <-quotes:
			assert.Equal(t, "test", q.Venue)
			assert.False(t, q.Timestamp.IsZero())
			seen[q.Order.TradingPair.Coins] = q.Order.Price
		case <-timeout:
			t.Fatal("timed out waiting for quotes")
		}
	}
	assert.Equal(t, 2.0, seen[trading.TonUsdt])
	assert.Equal(t, 50000.0, seen[trading.BtcUsdt])
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.BestPrice.WithLabelValues("test", "TON/USDT", "buy", "market")))

	cancel()
	// 确保 channel 被关闭
	for range quotes {
	}
}

func TestWatcher_RecoversAfterErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sniffer := newFakeSniffer(
		errors.New("Service temporarily unavailable"),
		&trading.OrderNotFoundError{TradingPair: tonBuy},
	)
	w := New(sniffer, "test", 5*time.Millisecond, zaptest.NewLogger(t))
	quotes, err := w.Subscribe(ctx, []trading.TradingPair{tonBuy})
	require.NoError(t, err)

	select {
	case q := <-quotes:
		assert.Equal(t, tonBuy, q.Order.TradingPair)
	case <-ctx.Done():
		t.Fatal("timed out waiting for a quote")
	}

	sniffer.mu.Lock()
	assert.GreaterOrEqual(t, sniffer.calls[tonBuy], 3)
	sniffer.mu.Unlock()
}

func TestWatcher_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	w := New(newFakeSniffer(), "test", time.Hour, nil)
	quotes, err := w.Subscribe(ctx, []trading.TradingPair{tonBuy})
	require.NoError(t, err)

	// the first poll happens immediately
	<-quotes
	<-ctx.Done()

	select {
	case _, ok := <-quotes:
		assert.False(t, ok, "quotes channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestWatcher_InvalidSubscription(t *testing.T) {
	ctx := context.Background()

	_, err := New(newFakeSniffer(), "test", 0, nil).Subscribe(ctx, []trading.TradingPair{tonBuy})
	assert.Error(t, err)

	_, err = New(newFakeSniffer(), "test", time.Second, nil).Subscribe(ctx, nil)
	assert.Error(t, err)

	_, err = New(newFakeSniffer(), "test", time.Second, nil).Subscribe(ctx, []trading.TradingPair{{Side: trading.Buy, Target: trading.Market}})
	assert.Error(t, err)
}
