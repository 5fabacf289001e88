package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/songzhibin97/merchant/internal/trading"
)

// lossEstimate is the share of an order's value counted as potential loss.
const lossEstimate = 0.1

type BasicRiskManager struct {
	mu         sync.RWMutex
	params     RiskParameters
	dailyStats struct {
		totalLoss     float64
		tradingVolume float64
		tradeCount    int
	}
	statsReset time.Time
	now        func() time.Time
}

func NewBasicRiskManager(initialParams RiskParameters) *BasicRiskManager {
	return newBasicRiskManager(initialParams, time.Now)
}

func newBasicRiskManager(initialParams RiskParameters, now func() time.Time) *BasicRiskManager {
	return &BasicRiskManager{
		params:     initialParams,
		statsReset: now(),
		now:        now,
	}
}

func (rm *BasicRiskManager) CheckTradeRisk(ctx context.Context, order trading.Order) (*RiskAssessment, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	rm.mu.Lock()
	rm.resetIfNewDay()
	params := rm.params
	stats := rm.dailyStats
	rm.mu.Unlock()

	assessment := &RiskAssessment{
		IsAcceptable:    true,
		RiskLevel:       0,
		RiskFactors:     make([]string, 0),
		Recommendations: make([]string, 0),
	}

	// value in quote currency
	orderValue := order.Amount * order.Price

	if orderValue > params.MaxPositionSize {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.3
		assessment.RiskFactors = append(assessment.RiskFactors,
			"Position size exceeds maximum allowed")
		assessment.Recommendations = append(assessment.Recommendations,
			fmt.Sprintf("Reduce position size below %.2f", params.MaxPositionSize))
	} else {
		potentialLoss := orderValue * lossEstimate
		if order.TradingPair.Side == trading.Buy && potentialLoss > params.MaxLossPerTrade {
			assessment.IsAcceptable = false
			assessment.RiskLevel += 0.25
			assessment.RiskFactors = append(assessment.RiskFactors,
				"Potential loss exceeds maximum allowed per trade")
			assessment.Recommendations = append(assessment.Recommendations,
				fmt.Sprintf("Reduce position size to limit potential loss below %.2f", params.MaxLossPerTrade))
		}
	}

	if stats.totalLoss+orderValue*lossEstimate > params.MaxDailyLoss {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.25
		assessment.RiskFactors = append(assessment.RiskFactors,
			"Trade could exceed maximum daily loss limit")
		assessment.Recommendations = append(assessment.Recommendations,
			"Wait for daily loss limit to reset or reduce position size")
	}

	if order.TradingPair.Target == trading.Market {
		assessment.RiskLevel += 0.1
		assessment.RiskFactors = append(assessment.RiskFactors,
			"Market order may result in slippage")
		assessment.Recommendations = append(assessment.Recommendations,
			"Consider using limit order for better price control")
	}

	if stats.tradingVolume+orderValue > params.MaxPositionSize*5 {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.2
		assessment.RiskFactors = append(assessment.RiskFactors,
			"Daily trading volume would exceed safe limits")
		assessment.Recommendations = append(assessment.Recommendations,
			"Reduce trading volume or wait for daily reset")
	}

	if params.MaxTradesPerDay > 0 && stats.tradeCount >= params.MaxTradesPerDay {
		assessment.IsAcceptable = false
		assessment.RiskLevel += 0.15
		assessment.RiskFactors = append(assessment.RiskFactors,
			"Daily trade count limit reached")
		assessment.Recommendations = append(assessment.Recommendations,
			"Wait for daily reset")
	}

	return assessment, nil
}

func (rm *BasicRiskManager) RecordTrade(ctx context.Context, trade trading.Trade) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.resetIfNewDay()
	value := trade.Amount * trade.Price
	rm.dailyStats.tradingVolume += value
	rm.dailyStats.totalLoss += value * lossEstimate
	rm.dailyStats.tradeCount++
}

func (rm *BasicRiskManager) SetRiskParameters(ctx context.Context, params *RiskParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	rm.mu.Lock()
	rm.params = *params
	rm.mu.Unlock()

	return nil
}

// resetIfNewDay clears the daily statistics once the calendar day changes.
// Callers hold rm.mu.
func (rm *BasicRiskManager) resetIfNewDay() {
	now := rm.now()
	y1, m1, d1 := now.Date()
	y2, m2, d2 := rm.statsReset.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return
	}
	rm.dailyStats.totalLoss = 0
	rm.dailyStats.tradingVolume = 0
	rm.dailyStats.tradeCount = 0
	rm.statsReset = now
}
