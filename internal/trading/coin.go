package trading

import (
	"fmt"
	"strings"
)

// KnownCoin is the closed set of assets the abstract model understands.
type KnownCoin uint8

const (
	coinUnknown KnownCoin = iota
	TON
	USDT
	BTC
)

func (k KnownCoin) String() string {
	switch k {
	case TON:
		return "TON"
	case USDT:
		return "USDT"
	case BTC:
		return "BTC"
	default:
		return "UNKNOWN"
	}
}

// Coin is either a known asset or an unknown one carrying the venue's raw symbol.
// Coins are comparable with ==; unknown coins compare by symbol.
type Coin struct {
	known  KnownCoin
	symbol string
}

// NewCoin returns the abstract coin for a known asset.
func NewCoin(k KnownCoin) Coin {
	return Coin{known: k}
}

// UnknownCoin wraps a venue symbol that has no abstract counterpart yet.
func UnknownCoin(symbol string) Coin {
	return Coin{symbol: symbol}
}

// Known reports the known asset, if any.
func (c Coin) Known() (KnownCoin, bool) {
	return c.known, c.known != coinUnknown
}

// Symbol returns the ticker symbol. For unknown coins this is the raw venue string.
func (c Coin) Symbol() string {
	if c.known == coinUnknown {
		return c.symbol
	}
	return c.known.String()
}

func (c Coin) String() string {
	return c.Symbol()
}

// ParseCoin maps a ticker symbol to a coin. Symbols outside the known set
// become unknown coins holding the input verbatim.
func ParseCoin(symbol string) Coin {
	switch strings.ToUpper(symbol) {
	case "TON":
		return NewCoin(TON)
	case "USDT":
		return NewCoin(USDT)
	case "BTC":
		return NewCoin(BTC)
	default:
		return UnknownCoin(symbol)
	}
}

// CoinPairID names an abstract trading relationship, stable across venues.
type CoinPairID uint8

const (
	coinPairUnknown CoinPairID = iota
	TonUsdt
	BtcUsdt
)

// CoinPairIDs lists every supported pair id.
var CoinPairIDs = []CoinPairID{TonUsdt, BtcUsdt}

// Base returns the base asset of the pair.
func (id CoinPairID) Base() Coin {
	switch id {
	case TonUsdt:
		return NewCoin(TON)
	case BtcUsdt:
		return NewCoin(BTC)
	default:
		return Coin{}
	}
}

// Quote returns the quote asset of the pair.
func (id CoinPairID) Quote() Coin {
	switch id {
	case TonUsdt, BtcUsdt:
		return NewCoin(USDT)
	default:
		return Coin{}
	}
}

func (id CoinPairID) String() string {
	switch id {
	case TonUsdt:
		return "TON/USDT"
	case BtcUsdt:
		return "BTC/USDT"
	default:
		return "UNKNOWN"
	}
}

// ParseCoinPairID accepts "TON/USDT", "ton/usdt" or "TONUSDT".
func ParseCoinPairID(s string) (CoinPairID, error) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "/", "")
	for _, id := range CoinPairIDs {
		if strings.ReplaceAll(id.String(), "/", "") == normalized {
			return id, nil
		}
	}
	return coinPairUnknown, &ConversionError{Kind: "coin pair", Value: s}
}

// MarshalText implements encoding.TextMarshaler.
func (id CoinPairID) MarshalText() ([]byte, error) {
	if id == coinPairUnknown {
		return nil, fmt.Errorf("cannot marshal unknown coin pair")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *CoinPairID) UnmarshalText(text []byte) error {
	parsed, err := ParseCoinPairID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Coin) MarshalText() ([]byte, error) {
	return []byte(c.Symbol()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Coin) UnmarshalText(text []byte) error {
	*c = ParseCoin(string(text))
	return nil
}
