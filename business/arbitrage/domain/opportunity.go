package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pricingDomain "github.com/0xarbiter/arbscan/business/pricing/domain"
)

// Classification is the verdict on a sized opportunity.
type Classification string

const (
	// ClassExecutable clears the execution threshold.
	ClassExecutable Classification = "EXECUTABLE"
	// ClassBelowThreshold is profitable but not worth executing.
	ClassBelowThreshold Classification = "BELOW_THRESHOLD"
	// ClassImplausible exceeds the sanity ceiling and is treated as bad
	// data rather than profit.
	ClassImplausible Classification = "IMPLAUSIBLE"
)

// Opportunity is a fully sized and classified arbitrage candidate.
type Opportunity struct {
	ID         string
	Timestamp  time.Time
	Instrument pricingDomain.Instrument
	Spread     pricingDomain.Spread

	TradeSize   decimal.Decimal // TokenIn units
	NotionalUSD decimal.Decimal // TradeSize valued at the buy price
	GrossProfit decimal.Decimal
	Costs       CostEstimate
	NetProfit   decimal.Decimal

	Classification Classification
}

// NewOpportunity stamps a candidate with identity and time.
func NewOpportunity(inst pricingDomain.Instrument, spread pricingDomain.Spread) *Opportunity {
	return &Opportunity{
		ID:         uuid.NewString(),
		Timestamp:  time.Now(),
		Instrument: inst,
		Spread:     spread,
	}
}

// IsExecutable reports whether the opportunity cleared the threshold.
func (o *Opportunity) IsExecutable() bool {
	return o.Classification == ClassExecutable
}

// SizeSearchResult summarizes one size-optimization run over an instrument.
// A nil Best with a zero error count simply means no probed size was
// profitable, which is the common case.
type SizeSearchResult struct {
	Best        *Opportunity
	ProbedSizes int
	FailedSizes int // sizes skipped because a quote failed
	ThinSizes   int // sizes skipped because route liquidity was insufficient
}
