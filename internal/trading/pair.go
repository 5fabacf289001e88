package trading

import (
	"fmt"
	"strings"
)

// Side is the caller's intent relative to the base asset of the pair.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Target tells whether a trade consumes resting liquidity or rests in the book.
type Target string

const (
	Market Target = "market"
	Limit  Target = "limit"
)

// ParseSide parses "buy" or "sell", case-insensitively.
func ParseSide(s string) (Side, error) {
	switch side := Side(strings.ToLower(s)); side {
	case Buy, Sell:
		return side, nil
	default:
		return "", fmt.Errorf("invalid side: %s", s)
	}
}

// ParseTarget parses "market" or "limit", case-insensitively.
func ParseTarget(s string) (Target, error) {
	switch target := Target(strings.ToLower(s)); target {
	case Market, Limit:
		return target, nil
	default:
		return "", fmt.Errorf("unsupported order type: %s", s)
	}
}

// TradingPair is the full abstract direction descriptor of a trade.
type TradingPair struct {
	Coins  CoinPairID `json:"coins" yaml:"coins"`
	Side   Side       `json:"side" yaml:"side"`
	Target Target     `json:"target" yaml:"target"`
}

// Validate checks that every field holds a known value.
func (tp TradingPair) Validate() error {
	if tp.Coins == coinPairUnknown {
		return &ConversionError{Kind: "coin pair", Value: tp.Coins.String()}
	}
	if _, err := ParseSide(string(tp.Side)); err != nil {
		return err
	}
	if _, err := ParseTarget(string(tp.Target)); err != nil {
		return err
	}
	return nil
}

func (tp TradingPair) String() string {
	return fmt.Sprintf("%s %s %s", tp.Coins, tp.Side, tp.Target)
}
