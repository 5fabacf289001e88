package trading

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoin_Equality(t *testing.T) {
	assert.Equal(t, NewCoin(TON), ParseCoin("ton"))
	assert.True(t, UnknownCoin("DOGE") == UnknownCoin("DOGE"))
	assert.False(t, UnknownCoin("DOGE") == UnknownCoin("doge"))
	assert.False(t, NewCoin(TON) == UnknownCoin("TON"))
}

func TestCoin_UnknownKeepsSymbol(t *testing.T) {
	coin := ParseCoin("Doge")

	_, ok := coin.Known()
	assert.False(t, ok)
	assert.Equal(t, "Doge", coin.Symbol())

	data, err := json.Marshal(coin)
	require.NoError(t, err)

	var back Coin
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, coin, back)
}

func TestParseCoinPairID(t *testing.T) {
	tests := []struct {
		input   string
		want    CoinPairID
		wantErr bool
	}{
		{input: "TON/USDT", want: TonUsdt},
		{input: "ton/usdt", want: TonUsdt},
		{input: "BTCUSDT", want: BtcUsdt},
		{input: "ETH/USDT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCoinPairID(tt.input)
			if tt.wantErr {
				var conversion *ConversionError
				assert.True(t, errors.As(err, &conversion))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoinPairID_Coins(t *testing.T) {
	assert.Equal(t, NewCoin(TON), TonUsdt.Base())
	assert.Equal(t, NewCoin(USDT), TonUsdt.Quote())
	assert.Equal(t, NewCoin(BTC), BtcUsdt.Base())
}

func TestTradingPair_Validate(t *testing.T) {
	valid := TradingPair{Coins: TonUsdt, Side: Sell, Target: Market}
	assert.NoError(t, valid.Validate())

	assert.Error(t, TradingPair{Side: Sell, Target: Market}.Validate())
	assert.Error(t, TradingPair{Coins: TonUsdt, Side: "hold", Target: Market}.Validate())
	assert.Error(t, TradingPair{Coins: TonUsdt, Side: Buy, Target: "stop"}.Validate())
}

func TestTradingPair_JSON(t *testing.T) {
	pair := TradingPair{Coins: BtcUsdt, Side: Buy, Target: Limit}

	data, err := json.Marshal(pair)
	require.NoError(t, err)
	assert.JSONEq(t, `{"coins":"BTC/USDT","side":"buy","target":"limit"}`, string(data))

	var back TradingPair
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, pair, back)
}

func TestOrderNotFoundError_Is(t *testing.T) {
	err := &TradeError{
		Op:  "create order",
		Err: &OrderNotFoundError{TradingPair: TradingPair{Coins: TonUsdt, Side: Sell, Target: Market}, Price: 2, Amount: 2},
	}
	assert.True(t, errors.Is(err, ErrOrderNotFound))
	assert.Contains(t, err.Error(), "TON/USDT sell market")
}
