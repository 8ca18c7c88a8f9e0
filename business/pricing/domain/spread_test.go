package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/0xarbiter/arbscan/internal/token"
)

var (
	testWETH = token.MustNew(token.ChainIDBase, "0x4200000000000000000000000000000000000006", "WETH", 18)
	testUSDC = token.MustNew(token.ChainIDBase, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "USDC", 6)
)

// quoteAt builds a quote selling amountIn WETH at the given USDC price.
func quoteAt(t testing.TB, venue Venue, amountIn, price string) Quote {
	t.Helper()
	in, err := token.ParseDecimal(decimal.RequireFromString(amountIn), testWETH)
	if err != nil {
		t.Fatalf("parse amountIn: %v", err)
	}
	outDec := decimal.RequireFromString(price).Mul(decimal.RequireFromString(amountIn))
	out, err := token.ParseDecimal(outDec.Truncate(6), testUSDC)
	if err != nil {
		t.Fatalf("parse amountOut: %v", err)
	}
	return NewQuote(venue, in, out)
}

func TestComputeSpread(t *testing.T) {
	epsilon := decimal.RequireFromString("0.001") // 10 bps

	tests := []struct {
		name     string
		priceA   string
		priceB   string
		wantNil  bool
		wantBuy  VenueKind
		wantBPS  string // rounded
	}{
		{
			name:    "equal_prices_no_spread",
			priceA:  "3400.00",
			priceB:  "3400.00",
			wantNil: true,
		},
		{
			name:    "spread_below_noise_floor",
			priceA:  "3400.00",
			priceB:  "3400.34", // 1 bps
			wantNil: true,
		},
		{
			name:    "spread_at_noise_floor_excluded",
			priceA:  "3400.00",
			priceB:  "3403.40", // exactly 10 bps
			wantNil: true,
		},
		{
			name:    "spread_above_noise_floor",
			priceA:  "3400.00",
			priceB:  "3434.00", // 100 bps
			wantBuy: VenueUniswap,
			wantBPS: "100",
		},
		{
			name:    "observed_venue_gap",
			priceA:  "3254.66",
			priceB:  "3254.28",
			wantNil: true, // ~1.17 bps, noise
		},
		{
			name:    "observed_venue_gap_wide_floor_off",
			priceA:  "3300.00",
			priceB:  "3254.28",
			wantBuy: VenueAerodrome,
			wantBPS: "140",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := quoteAt(t, UniswapVenue(500), "1", tt.priceA)
			b := quoteAt(t, AerodromeVenue(false), "1", tt.priceB)

			spread := ComputeSpread(a, b, epsilon)

			if tt.wantNil {
				if spread != nil {
					t.Fatalf("ComputeSpread = %+v, want nil", spread)
				}
				return
			}
			if spread == nil {
				t.Fatal("ComputeSpread = nil, want spread")
			}
			if spread.BuyQuote.Venue.Kind != tt.wantBuy {
				t.Errorf("BuyQuote venue = %s, want %s", spread.BuyQuote.Venue.Kind, tt.wantBuy)
			}
			if got := spread.BasisPoints().Round(0).String(); got != tt.wantBPS {
				t.Errorf("BasisPoints = %s, want %s", got, tt.wantBPS)
			}
			if !spread.Absolute.IsPositive() {
				t.Errorf("Absolute = %s, want positive", spread.Absolute)
			}
		})
	}
}

func TestComputeSpread_Symmetry(t *testing.T) {
	epsilon := decimal.RequireFromString("0.001")
	a := quoteAt(t, UniswapVenue(500), "2", "3400")
	b := quoteAt(t, AerodromeVenue(false), "2", "3468")

	s1 := ComputeSpread(a, b, epsilon)
	s2 := ComputeSpread(b, a, epsilon)

	if s1 == nil || s2 == nil {
		t.Fatal("expected spreads in both directions")
	}
	if s1.BuyQuote.Venue != s2.BuyQuote.Venue {
		t.Errorf("buy venue differs by argument order: %s vs %s",
			s1.BuyQuote.Venue, s2.BuyQuote.Venue)
	}
	if !s1.Absolute.Equal(s2.Absolute) {
		t.Errorf("absolute differs by argument order: %s vs %s", s1.Absolute, s2.Absolute)
	}
	if !s1.Fraction.Equal(s2.Fraction) {
		t.Errorf("fraction differs by argument order: %s vs %s", s1.Fraction, s2.Fraction)
	}
}

func TestComputeSpread_UnpriceableQuote(t *testing.T) {
	epsilon := decimal.RequireFromString("0.001")
	good := quoteAt(t, UniswapVenue(500), "1", "3400")

	zeroIn := NewQuote(AerodromeVenue(false), token.Zero(testWETH), token.MustNewAmount(big.NewInt(1), testUSDC))
	if s := ComputeSpread(good, zeroIn, epsilon); s != nil {
		t.Errorf("spread against zero-input quote = %+v, want nil", s)
	}

	zeroOut := NewQuote(AerodromeVenue(false),
		token.MustNewAmount(big.NewInt(1e18), testWETH), token.Zero(testUSDC))
	if s := ComputeSpread(good, zeroOut, epsilon); s != nil {
		t.Errorf("spread against zero-output quote = %+v, want nil", s)
	}
}

func TestSpread_GrossProfit(t *testing.T) {
	epsilon := decimal.RequireFromString("0.001")
	// Buy at 3400, sell at 3468, size 2: (3468-3400)*2 = 136
	a := quoteAt(t, UniswapVenue(500), "2", "3400")
	b := quoteAt(t, AerodromeVenue(false), "2", "3468")

	spread := ComputeSpread(a, b, epsilon)
	if spread == nil {
		t.Fatal("expected spread")
	}

	want := decimal.RequireFromString("136")
	if !spread.GrossProfit().Equal(want) {
		t.Errorf("GrossProfit = %s, want %s", spread.GrossProfit(), want)
	}
}

func BenchmarkComputeSpread(b *testing.B) {
	epsilon := decimal.RequireFromString("0.001")
	qa := quoteAt(b, UniswapVenue(500), "1", "3456.789")
	qb := quoteAt(b, AerodromeVenue(false), "1", "3460.123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeSpread(qa, qb, epsilon)
	}
}
