package binance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2"

	"github.com/songzhibin97/merchant/internal/trading"
)

var symbols = map[trading.CoinPairID]string{
	trading.TonUsdt: "TONUSDT",
	trading.BtcUsdt: "BTCUSDT",
}

// Symbol returns the spot symbol of a pair.
func Symbol(id trading.CoinPairID) (string, error) {
	symbol, ok := symbols[id]
	if !ok {
		return "", &trading.ConversionError{Kind: "coin pair", Value: id.String()}
	}
	return symbol, nil
}

// BookSide tells which side of the two-sided book a trading pair looks at.
// A reversed direction on a one-directional venue corresponds to the bids.
type BookSide int

const (
	Asks BookSide = iota
	Bids
)

func (s BookSide) String() string {
	if s == Bids {
		return "bids"
	}
	return "asks"
}

func bookSide(tp trading.TradingPair) BookSide {
	if trading.Reversed(tp.Side, tp.Target) {
		return Bids
	}
	return Asks
}

func orderSide(side trading.Side) (binance.SideType, error) {
	switch side {
	case trading.Buy:
		return binance.SideTypeBuy, nil
	case trading.Sell:
		return binance.SideTypeSell, nil
	default:
		return "", fmt.Errorf("invalid side: %s", side)
	}
}

// Asset returns the asset code of a coin. Unknown coins keep their raw symbol.
func Asset(coin trading.Coin) string {
	return coin.Symbol()
}

// orderID renders the id handed back to callers. Binance ids are only unique
// per symbol, so the symbol is part of it.
func orderID(symbol string, id int64) string {
	return symbol + ":" + strconv.FormatInt(id, 10)
}

func parseOrderID(id string) (string, int64, error) {
	symbol, raw, ok := strings.Cut(id, ":")
	if !ok || symbol == "" {
		return "", 0, fmt.Errorf("invalid order ID: %q", id)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid order ID: %w", err)
	}
	return symbol, n, nil
}
