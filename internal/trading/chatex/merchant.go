package chatex

import (
	"github.com/songzhibin97/merchant/internal/trading"
)

// MerchantID identifies the venue among merchants.
const MerchantID uint8 = 1

// ChatexMerchant bundles trader, sniffer and accountant over one client.
type ChatexMerchant struct {
	trader     *ChatexTrader
	sniffer    *ChatexSniffer
	accountant *ChatexAccountant
}

func NewChatexMerchant(exchange Exchange, opts ...TraderOption) *ChatexMerchant {
	trader := NewChatexTrader(exchange, opts...)
	return &ChatexMerchant{
		trader:     trader,
		sniffer:    NewChatexSniffer(exchange, trader.logger),
		accountant: NewChatexAccountant(exchange),
	}
}

func (m *ChatexMerchant) ID() uint8                      { return MerchantID }
func (m *ChatexMerchant) Name() string                   { return VenueName }
func (m *ChatexMerchant) Trader() trading.Trader         { return m.trader }
func (m *ChatexMerchant) Sniffer() trading.Sniffer       { return m.sniffer }
func (m *ChatexMerchant) Accountant() trading.Accountant { return m.accountant }
