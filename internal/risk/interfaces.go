package risk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/songzhibin97/merchant/internal/trading"
)

// RiskManager defines methods for risk management
type RiskManager interface {
	// CheckTradeRisk evaluates the risk of a potential trade
	CheckTradeRisk(ctx context.Context, order trading.Order) (*RiskAssessment, error)

	// RecordTrade accounts a completed trade against the daily limits
	RecordTrade(ctx context.Context, trade trading.Trade)

	// SetRiskParameters sets risk management parameters
	SetRiskParameters(ctx context.Context, params *RiskParameters) error
}

// RiskParameters limits are expressed in quote currency units.
type RiskParameters struct {
	MaxPositionSize float64 `json:"max_position_size" yaml:"max_position_size"`
	MaxLossPerTrade float64 `json:"max_loss_per_trade" yaml:"max_loss_per_trade"`
	MaxDailyLoss    float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxTradesPerDay int     `json:"max_trades_per_day" yaml:"max_trades_per_day"`
}

func (p RiskParameters) Validate() error {
	if p.MaxPositionSize <= 0 || p.MaxLossPerTrade <= 0 || p.MaxDailyLoss <= 0 {
		return fmt.Errorf("invalid risk parameters: all limits must be positive")
	}
	if p.MaxTradesPerDay < 0 {
		return fmt.Errorf("invalid risk parameters: max trades per day must not be negative")
	}
	return nil
}

// RiskAssessment is the outcome of CheckTradeRisk.
type RiskAssessment struct {
	IsAcceptable    bool     `json:"is_acceptable"`
	RiskLevel       float64  `json:"risk_level"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`
}

// ErrRejected is matched by every *RejectedError.
var ErrRejected = errors.New("rejected by risk manager")

// RejectedError is returned when an order fails the risk assessment.
type RejectedError struct {
	Factors []string
}

func (e *RejectedError) Error() string {
	return ErrRejected.Error() + ": " + strings.Join(e.Factors, "; ")
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}
