package binance

import (
	"github.com/songzhibin97/merchant/internal/trading"
)

// MerchantID identifies the venue among merchants.
const MerchantID uint8 = 2

// BinanceMerchant bundles trader, sniffer and accountant over one client.
type BinanceMerchant struct {
	trader     *BinanceTrader
	sniffer    *BinanceSniffer
	accountant *BinanceAccountant
}

func NewBinanceMerchant(exchange Exchange, opts ...TraderOption) *BinanceMerchant {
	trader := NewBinanceTrader(exchange, opts...)
	return &BinanceMerchant{
		trader:     trader,
		sniffer:    NewBinanceSniffer(exchange, trader.logger),
		accountant: NewBinanceAccountant(exchange),
	}
}

func (m *BinanceMerchant) ID() uint8                      { return MerchantID }
func (m *BinanceMerchant) Name() string                   { return VenueName }
func (m *BinanceMerchant) Trader() trading.Trader         { return m.trader }
func (m *BinanceMerchant) Sniffer() trading.Sniffer       { return m.sniffer }
func (m *BinanceMerchant) Accountant() trading.Accountant { return m.accountant }
