package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xarbiter/arbscan/internal/token"
)

// Quote is the result of asking one venue how much TokenOut a given
// TokenIn amount buys right now.
type Quote struct {
	Venue       Venue
	AmountIn    token.Amount
	AmountOut   token.Amount
	Liquidity   decimal.Decimal // available route liquidity; zero when unreported
	GasEstimate uint64          // venue's gas estimate; zero for off-chain venues
	Timestamp   time.Time
}

// NewQuote builds a quote stamped with the current time.
func NewQuote(venue Venue, amountIn, amountOut token.Amount) Quote {
	return Quote{
		Venue:     venue,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Timestamp: time.Now(),
	}
}

// Price returns the effective execution price AmountOut/AmountIn in
// human units. A zero AmountIn yields a zero price.
func (q Quote) Price() decimal.Decimal {
	in := q.AmountIn.ToDecimal()
	if in.IsZero() {
		return decimal.Zero
	}
	return q.AmountOut.ToDecimal().Div(in)
}

// HasLiquidity reports whether the venue disclosed route liquidity.
func (q Quote) HasLiquidity() bool {
	return q.Liquidity.IsPositive()
}
