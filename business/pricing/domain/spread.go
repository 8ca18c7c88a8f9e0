package domain

import (
	"github.com/shopspring/decimal"
)

var bpsFactor = decimal.NewFromInt(10000)

// Spread is a price gap between two venues for the same pair at the same
// trade size. BuyQuote is always the cheaper venue, so the struct is
// independent of the order the quotes were compared in.
type Spread struct {
	BuyQuote  Quote // cheaper venue: buy here
	SellQuote Quote // dearer venue: sell here
	Absolute  decimal.Decimal
	Fraction  decimal.Decimal // Absolute / buy price
}

// BasisPoints returns the relative spread in bps.
func (s Spread) BasisPoints() decimal.Decimal {
	return s.Fraction.Mul(bpsFactor)
}

// GrossProfit returns the pre-cost profit of buying SellQuote.AmountIn at
// the buy price and selling at the sell price, in TokenOut units.
func (s Spread) GrossProfit() decimal.Decimal {
	return s.SellQuote.Price().Sub(s.BuyQuote.Price()).Mul(s.BuyQuote.AmountIn.ToDecimal())
}

// ComputeSpread compares two quotes for the same pair and trade size.
// The result is symmetric in its arguments. Nil is returned when there is
// no exploitable gap: equal prices, an unpriceable quote, or a relative
// spread at or below epsilon, the noise floor under which a gap is
// indistinguishable from quoting jitter.
func ComputeSpread(a, b Quote, epsilon decimal.Decimal) *Spread {
	priceA, priceB := a.Price(), b.Price()
	if !priceA.IsPositive() || !priceB.IsPositive() {
		return nil
	}

	buy, sell := a, b
	if priceA.GreaterThan(priceB) {
		buy, sell = b, a
	}

	absolute := sell.Price().Sub(buy.Price())
	if absolute.IsZero() {
		return nil
	}

	fraction := absolute.Div(buy.Price())
	if fraction.LessThanOrEqual(epsilon) {
		return nil
	}

	return &Spread{
		BuyQuote:  buy,
		SellQuote: sell,
		Absolute:  absolute,
		Fraction:  fraction,
	}
}
