package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func defaultCostModel() CostModel {
	return NewCostModel(
		decimal.RequireFromString("0.0005"), // 5 bps flashloan fee
		decimal.RequireFromString("0.005"),  // 50 bps slippage tolerance
	)
}

func TestCostModel_Estimate(t *testing.T) {
	tests := []struct {
		name             string
		notionalUSD      string
		gasUSD           string
		wantFlashloan    string
		wantGas          string
		wantSlippage     string
		wantTotal        string
	}{
		{
			name:          "typical_trade_10k",
			notionalUSD:   "10000",
			gasUSD:        "0.20",
			wantFlashloan: "5",    // 10000 * 0.0005
			wantGas:       "0.2",
			wantSlippage:  "50",   // 10000 * 0.005
			wantTotal:     "55.2",
		},
		{
			name:          "small_trade",
			notionalUSD:   "100",
			gasUSD:        "0.20",
			wantFlashloan: "0.05",
			wantGas:       "0.2",
			wantSlippage:  "0.5",
			wantTotal:     "0.75",
		},
		{
			name:          "zero_notional_gas_only",
			notionalUSD:   "0",
			gasUSD:        "0.20",
			wantFlashloan: "0",
			wantGas:       "0.2",
			wantSlippage:  "0",
			wantTotal:     "0.2",
		},
		{
			name:          "negative_notional_clamped",
			notionalUSD:   "-500",
			gasUSD:        "0.20",
			wantFlashloan: "0",
			wantGas:       "0.2",
			wantSlippage:  "0",
			wantTotal:     "0.2",
		},
		{
			name:          "negative_gas_clamped",
			notionalUSD:   "1000",
			gasUSD:        "-1",
			wantFlashloan: "0.5",
			wantGas:       "0",
			wantSlippage:  "5",
			wantTotal:     "5.5",
		},
	}

	model := defaultCostModel()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := model.Estimate(
				decimal.RequireFromString(tt.notionalUSD),
				decimal.RequireFromString(tt.gasUSD),
			)

			if want := decimal.RequireFromString(tt.wantFlashloan); !est.FlashloanFee.Equal(want) {
				t.Errorf("FlashloanFee = %s, want %s", est.FlashloanFee, want)
			}
			if want := decimal.RequireFromString(tt.wantGas); !est.GasCost.Equal(want) {
				t.Errorf("GasCost = %s, want %s", est.GasCost, want)
			}
			if want := decimal.RequireFromString(tt.wantSlippage); !est.SlippageLoss.Equal(want) {
				t.Errorf("SlippageLoss = %s, want %s", est.SlippageLoss, want)
			}
			if want := decimal.RequireFromString(tt.wantTotal); !est.Total().Equal(want) {
				t.Errorf("Total = %s, want %s", est.Total(), want)
			}
		})
	}
}

func TestCostModel_EstimateNeverNegative(t *testing.T) {
	model := NewCostModel(
		decimal.RequireFromString("-0.1"), // hostile rates clamp to zero
		decimal.RequireFromString("-0.2"),
	)
	est := model.Estimate(decimal.RequireFromString("-1000"), decimal.RequireFromString("-5"))

	for name, v := range map[string]decimal.Decimal{
		"FlashloanFee": est.FlashloanFee,
		"GasCost":      est.GasCost,
		"SlippageLoss": est.SlippageLoss,
		"Total":        est.Total(),
	} {
		if v.IsNegative() {
			t.Errorf("%s = %s, want non-negative", name, v)
		}
	}
}

func TestCostModel_EstimateMonotone(t *testing.T) {
	// A bigger trade never costs less.
	model := defaultCostModel()
	gas := decimal.RequireFromString("0.20")

	prev := decimal.Zero
	for _, notional := range []string{"10", "100", "1000", "10000", "100000"} {
		total := model.Estimate(decimal.RequireFromString(notional), gas).Total()
		if total.LessThan(prev) {
			t.Fatalf("Total(%s) = %s less than previous %s", notional, total, prev)
		}
		prev = total
	}
}
