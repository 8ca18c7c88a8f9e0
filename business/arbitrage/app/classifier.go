package app

import (
	"github.com/shopspring/decimal"

	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
)

// Classifier sorts sized opportunities into executable, below-threshold and
// implausible. Classification is pure: the same inputs always yield the
// same verdict.
type Classifier struct {
	thresholdUSD decimal.Decimal
	ceilingUSD   decimal.Decimal
}

// NewClassifier creates a classifier. thresholdUSD is the minimum net profit
// worth executing (inclusive); ceilingUSD is the base sanity ceiling above
// which profit is treated as bad data.
func NewClassifier(thresholdUSD, ceilingUSD decimal.Decimal) *Classifier {
	return &Classifier{
		thresholdUSD: thresholdUSD,
		ceilingUSD:   ceilingUSD,
	}
}

// Classify returns the verdict for a net profit at a given USD notional.
// The effective ceiling is the larger of the configured ceiling and the
// trade notional: a large legitimate trade may net more than a small fixed
// ceiling would otherwise allow.
func (c *Classifier) Classify(netProfitUSD, notionalUSD decimal.Decimal) domain.Classification {
	ceiling := c.ceilingUSD
	if notionalUSD.GreaterThan(ceiling) {
		ceiling = notionalUSD
	}

	switch {
	case netProfitUSD.GreaterThan(ceiling):
		return domain.ClassImplausible
	case netProfitUSD.GreaterThanOrEqual(c.thresholdUSD):
		return domain.ClassExecutable
	default:
		return domain.ClassBelowThreshold
	}
}
