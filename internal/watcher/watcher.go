package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/songzhibin97/merchant/internal/metrics"
	"github.com/songzhibin97/merchant/internal/trading"
)

const (
	defaultBufferSize = 100
	maxBackoff        = time.Minute
)

// Quote is the best resting order observed for a trading pair.
type Quote struct {
	Venue     string        `json:"venue"`
	Order     trading.Order `json:"order"`
	Timestamp time.Time     `json:"timestamp"`
}

// Watcher polls a Sniffer for the best order of every subscribed trading pair.
type Watcher struct {
	sniffer  trading.Sniffer
	venue    string
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(sniffer trading.Sniffer, venue string, interval time.Duration, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		sniffer:  sniffer,
		venue:    venue,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe starts one poller per trading pair. Quotes are dropped when the
// consumer falls behind. The channel is closed once ctx is done and every
// poller has returned.
func (w *Watcher) Subscribe(ctx context.Context, pairs []trading.TradingPair) (<-chan Quote, error) {
	if w.interval <= 0 {
		return nil, fmt.Errorf("invalid refresh interval: %v", w.interval)
	}
	if len(pairs) == 0 {
		return nil, errors.New("no trading pairs to watch")
	}
	for _, tp := range pairs {
		if err := tp.Validate(); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", tp, err)
		}
	}

	out := make(chan Quote, defaultBufferSize)
	var wg sync.WaitGroup

	for _, tp := range pairs {
		wg.Add(1)
		go func(tp trading.TradingPair) {
			defer wg.Done()
			w.poll(ctx, tp, out)
		}(tp)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

func (w *Watcher) poll(ctx context.Context, tp trading.TradingPair, out chan<- Quote) {
	b := &backoff.Backoff{
		Min:    w.interval,
		Max:    maxBackoff,
		Factor: 2,
		Jitter: true,
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := w.interval
		order, err := w.sniffer.TheBestOrder(ctx, tp)
		switch {
		case err == nil:
			b.Reset()
			w.emit(tp, order, out)
		case errors.Is(err, trading.ErrOrderNotFound):
			w.logger.Debug("book is empty", zap.Stringer("trading_pair", tp))
		case ctx.Err() != nil:
			return
		default:
			wait = b.Duration()
			w.logger.Error("failed to fetch best order",
				zap.Stringer("trading_pair", tp),
				zap.Duration("retry_in", wait),
				zap.Error(err))
		}
		timer.Reset(wait)
	}
}

func (w *Watcher) emit(tp trading.TradingPair, order trading.Order, out chan<- Quote) {
	metrics.BestPrice.
		WithLabelValues(w.venue, tp.Coins.String(), string(tp.Side), string(tp.Target)).
		Set(order.Price)

	select {
	case out <- Quote{Venue: w.venue, Order: order, Timestamp: w.now()}:
	default:
		w.logger.Warn("channel full, dropping quote", zap.Stringer("trading_pair", tp))
	}
}
