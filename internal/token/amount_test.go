package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		token   Token
		wantRaw string
		wantErr error
	}{
		{
			name:    "whole_usdc",
			value:   "1250",
			token:   BaseUSDC,
			wantRaw: "1250000000",
		},
		{
			name:    "fractional_usdc",
			value:   "0.5",
			token:   BaseUSDC,
			wantRaw: "500000",
		},
		{
			name:    "full_precision_weth",
			value:   "1.234567890123456789",
			token:   BaseWETH,
			wantRaw: "1234567890123456789",
		},
		{
			name:    "zero",
			value:   "0",
			token:   BaseUSDC,
			wantRaw: "0",
		},
		{
			name:    "too_many_decimals_rejected",
			value:   "1.0000001",
			token:   BaseUSDC, // 6 decimals
			wantErr: ErrTooManyDecimals,
		},
		{
			name:    "negative_rejected",
			value:   "-1",
			token:   BaseUSDC,
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseDecimal(decimal.RequireFromString(tt.value), tt.token)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimal: %v", err)
			}
			if got := a.Raw().String(); got != tt.wantRaw {
				t.Errorf("Raw = %s, want %s", got, tt.wantRaw)
			}
		})
	}
}

func TestParseDecimal_RoundTrip(t *testing.T) {
	value := decimal.RequireFromString("3254.66")
	a, err := ParseDecimal(value, BaseUSDC)
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if !a.ToDecimal().Equal(value) {
		t.Errorf("round trip = %s, want %s", a.ToDecimal(), value)
	}
}

func TestAmount_Cmp(t *testing.T) {
	small := MustNewAmount(big.NewInt(100), BaseUSDC)
	large := MustNewAmount(big.NewInt(200), BaseUSDC)

	if got, err := small.Cmp(large); err != nil || got != -1 {
		t.Errorf("Cmp = %d, %v, want -1, nil", got, err)
	}
	if got, err := large.Cmp(small); err != nil || got != 1 {
		t.Errorf("Cmp = %d, %v, want 1, nil", got, err)
	}

	other := MustNewAmount(big.NewInt(100), BaseWETH)
	if _, err := small.Cmp(other); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("cross-token Cmp err = %v, want ErrTokenMismatch", err)
	}
}

func TestAmount_Immutable(t *testing.T) {
	raw := big.NewInt(500)
	a := MustNewAmount(raw, BaseUSDC)

	raw.SetInt64(999)
	if a.Raw().Int64() != 500 {
		t.Error("amount changed when the source big.Int was mutated")
	}

	a.Raw().SetInt64(1)
	if a.Raw().Int64() != 500 {
		t.Error("amount changed through the Raw accessor")
	}
}

func TestNewAmount_NegativeRejected(t *testing.T) {
	if _, err := NewAmount(big.NewInt(-1), BaseUSDC); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("err = %v, want ErrNegativeAmount", err)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	usdc, ok := r.Get("USDC")
	if !ok {
		t.Fatal("USDC not in default registry")
	}
	if usdc.ChainID != ChainIDBase || usdc.Decimals != 6 {
		t.Errorf("USDC = %+v, want Base chain with 6 decimals", usdc)
	}

	sol, ok := r.Get("SOL")
	if !ok {
		t.Fatal("SOL not in default registry")
	}
	if sol.IsEVM() {
		t.Error("SOL must not be an EVM token")
	}
	if _, err := sol.EVMAddress(); err == nil {
		t.Error("EVMAddress on a Solana token must fail")
	}

	if _, ok := r.Get("NOPE"); ok {
		t.Error("unknown symbol resolved")
	}

	custom := MustNew(ChainIDBase, "0x0000000000000000000000000000000000000001", "TEST", 18)
	r.Register(custom)
	if got := r.MustGet("TEST"); !got.Equals(custom) {
		t.Errorf("MustGet(TEST) = %+v, want %+v", got, custom)
	}
}
