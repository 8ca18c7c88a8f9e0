// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"github.com/shopspring/decimal"
)

// CostModel derives the execution cost of a flashloan round trip from the
// trade's USD notional. Rates are fractions, not bps.
type CostModel struct {
	FlashloanFeeRate      decimal.Decimal
	SlippageToleranceRate decimal.Decimal
}

// NewCostModel creates a cost model. Negative rates are clamped to zero so
// every estimate stays non-negative.
func NewCostModel(flashloanFeeRate, slippageToleranceRate decimal.Decimal) CostModel {
	if flashloanFeeRate.IsNegative() {
		flashloanFeeRate = decimal.Zero
	}
	if slippageToleranceRate.IsNegative() {
		slippageToleranceRate = decimal.Zero
	}
	return CostModel{
		FlashloanFeeRate:      flashloanFeeRate,
		SlippageToleranceRate: slippageToleranceRate,
	}
}

// CostEstimate itemizes the USD cost of one arbitrage round trip.
type CostEstimate struct {
	FlashloanFee decimal.Decimal
	GasCost      decimal.Decimal
	SlippageLoss decimal.Decimal
}

// Total returns the sum of all cost components.
func (c CostEstimate) Total() decimal.Decimal {
	return c.FlashloanFee.Add(c.GasCost).Add(c.SlippageLoss)
}

// Estimate prices a round trip of the given USD notional. Flashloan fee and
// slippage loss scale with the notional; gas does not. A negative gas figure
// is clamped to zero.
func (m CostModel) Estimate(notionalUSD, gasCostUSD decimal.Decimal) CostEstimate {
	if notionalUSD.IsNegative() {
		notionalUSD = decimal.Zero
	}
	if gasCostUSD.IsNegative() {
		gasCostUSD = decimal.Zero
	}
	return CostEstimate{
		FlashloanFee: notionalUSD.Mul(m.FlashloanFeeRate),
		GasCost:      gasCostUSD,
		SlippageLoss: notionalUSD.Mul(m.SlippageToleranceRate),
	}
}
