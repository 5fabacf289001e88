package binance

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/songzhibin97/merchant/internal/trading"
)

// BinanceAccountant reads free and locked balances from the account endpoint.
type BinanceAccountant struct {
	exchange Exchange
}

func NewBinanceAccountant(exchange Exchange) *BinanceAccountant {
	return &BinanceAccountant{exchange: exchange}
}

// Ask implements trading.Accountant
func (a *BinanceAccountant) Ask(ctx context.Context, coin trading.Coin) (trading.Currency, error) {
	balances, err := a.balances(ctx)
	if err != nil {
		return trading.Currency{}, err
	}
	return find(balances, coin)
}

// AskBoth implements trading.Accountant
func (a *BinanceAccountant) AskBoth(ctx context.Context, first, second trading.Coin) (trading.Currency, trading.Currency, error) {
	balances, err := a.balances(ctx)
	if err != nil {
		return trading.Currency{}, trading.Currency{}, err
	}
	c1, err := find(balances, first)
	if err != nil {
		return trading.Currency{}, trading.Currency{}, err
	}
	c2, err := find(balances, second)
	if err != nil {
		return trading.Currency{}, trading.Currency{}, err
	}
	return c1, c2, nil
}

// CalculateVolume implements trading.Accountant
func (a *BinanceAccountant) CalculateVolume(price, amount float64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(amount)).InexactFloat64()
}

func (a *BinanceAccountant) balances(ctx context.Context) ([]binance.Balance, error) {
	balances, err := a.exchange.Balances(ctx)
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get balance", Err: err}
	}
	return balances, nil
}

func find(balances []binance.Balance, coin trading.Coin) (trading.Currency, error) {
	asset := Asset(coin)
	for _, b := range balances {
		if b.Asset != asset {
			continue
		}
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return trading.Currency{}, &trading.MalformedResponseError{Field: "free", Value: b.Free, Err: err}
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return trading.Currency{}, &trading.MalformedResponseError{Field: "locked", Value: b.Locked, Err: err}
		}
		amount, err := trading.DecimalFloat("free", b.Free, free)
		if err != nil {
			return trading.Currency{}, err
		}
		held, err := trading.DecimalFloat("locked", b.Locked, locked)
		if err != nil {
			return trading.Currency{}, err
		}
		return trading.Currency{Coin: coin, Amount: amount, Held: held}, nil
	}
	return trading.Currency{}, fmt.Errorf("balance not found for symbol: %s", asset)
}
