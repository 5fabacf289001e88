package chatex

import (
	chatexapi "github.com/songzhibin97/merchant/internal/exchange/chatex"
	"github.com/songzhibin97/merchant/internal/trading"
)

// directPairs is the venue's canonical ordering for every supported pair.
var directPairs = map[trading.CoinPairID]chatexapi.CoinPair{
	trading.TonUsdt: chatexapi.NewCoinPair(chatexapi.CoinTON, chatexapi.CoinUSDT),
	trading.BtcUsdt: chatexapi.NewCoinPair(chatexapi.CoinBTC, chatexapi.CoinUSDT),
}

// ToPair resolves the book a trade of the given direction is looked up in.
func ToPair(tp trading.TradingPair) (chatexapi.CoinPair, error) {
	direct, ok := directPairs[tp.Coins]
	if !ok {
		return chatexapi.CoinPair{}, &trading.ConversionError{Kind: "coin pair", Value: tp.Coins.String()}
	}
	if trading.Reversed(tp.Side, tp.Target) {
		return direct.Reversed(), nil
	}
	return direct, nil
}

// ToCoin converts an abstract coin to the venue code. Unknown coins pass
// their raw symbol through untouched.
func ToCoin(coin trading.Coin) chatexapi.Coin {
	known, ok := coin.Known()
	if !ok {
		return chatexapi.Coin(coin.Symbol())
	}
	switch known {
	case trading.TON:
		return chatexapi.CoinTON
	case trading.USDT:
		return chatexapi.CoinUSDT
	case trading.BTC:
		return chatexapi.CoinBTC
	}
	return chatexapi.Coin(coin.Symbol())
}

// FromCoin converts a venue code to an abstract coin. ok is false when the
// venue coin has no abstract counterpart; the returned coin then carries the
// raw code.
func FromCoin(coin chatexapi.Coin) (trading.Coin, bool) {
	switch coin {
	case chatexapi.CoinTON:
		return trading.NewCoin(trading.TON), true
	case chatexapi.CoinUSDT:
		return trading.NewCoin(trading.USDT), true
	case chatexapi.CoinBTC:
		return trading.NewCoin(trading.BTC), true
	default:
		return trading.UnknownCoin(string(coin)), false
	}
}
