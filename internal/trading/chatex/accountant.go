package chatex

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/trading"
)

// ChatexAccountant reads balances from the balance summary.
type ChatexAccountant struct {
	exchange Exchange
}

func NewChatexAccountant(exchange Exchange) *ChatexAccountant {
	return &ChatexAccountant{exchange: exchange}
}

// Ask implements trading.Accountant
func (a *ChatexAccountant) Ask(ctx context.Context, coin trading.Coin) (trading.Currency, error) {
	balance, err := a.balance(ctx)
	if err != nil {
		return trading.Currency{}, err
	}
	code := ToCoin(coin)
	for _, currency := range balance {
		if chatexapi.Coin(currency.Coin) == code {
			return toCurrency(coin, currency)
		}
	}
	return trading.Currency{}, fmt.Errorf("balance not found for coin: %s", coin)
}

// AskBoth implements trading.Accountant
func (a *ChatexAccountant) AskBoth(ctx context.Context, first, second trading.Coin) (trading.Currency, trading.Currency, error) {
	balance, err := a.balance(ctx)
	if err != nil {
		return trading.Currency{}, trading.Currency{}, err
	}

	var (
		found = make(map[chatexapi.Coin]chatexapi.Currency, 2)
		want  = []trading.Coin{first, second}
	)
	for _, currency := range balance {
		found[chatexapi.Coin(currency.Coin)] = currency
	}

	result := make([]trading.Currency, 0, len(want))
	for _, coin := range want {
		currency, ok := found[ToCoin(coin)]
		if !ok {
			return trading.Currency{}, trading.Currency{}, fmt.Errorf("balance not found for coin: %s", coin)
		}
		c, err := toCurrency(coin, currency)
		if err != nil {
			return trading.Currency{}, trading.Currency{}, err
		}
		result = append(result, c)
	}
	return result[0], result[1], nil
}

// CalculateVolume implements trading.Accountant
func (a *ChatexAccountant) CalculateVolume(price, amount float64) float64 {
	return price * amount
}

func (a *ChatexAccountant) balance(ctx context.Context) ([]chatexapi.Currency, error) {
	balance, err := a.exchange.GetBalanceSummary(ctx)
	if err != nil {
		return nil, &trading.VenueError{Venue: VenueName, Op: "get balance", Err: err}
	}
	return balance, nil
}

// balances may legitimately be zero, so they are parsed without the
// positivity rule applied to prices and amounts.
func toCurrency(coin trading.Coin, raw chatexapi.Currency) (trading.Currency, error) {
	amount, err := parseBalance("amount", raw.Amount)
	if err != nil {
		return trading.Currency{}, err
	}
	held, err := parseBalance("held", raw.Held)
	if err != nil {
		return trading.Currency{}, err
	}
	return trading.Currency{Coin: coin, Amount: amount, Held: held}, nil
}

func parseBalance(field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, &trading.MalformedResponseError{Field: field, Value: value, Err: err}
	}
	if d.IsNegative() {
		return 0, &trading.MalformedResponseError{Field: field, Value: value, Err: fmt.Errorf("must not be negative")}
	}
	return trading.DecimalFloat(field, value, d)
}
