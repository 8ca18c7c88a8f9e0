package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("token: amount cannot be negative")
	// ErrTokenMismatch is returned when two amounts of different tokens
	// are combined.
	ErrTokenMismatch = errors.New("token: amounts have different tokens")
	// ErrTooManyDecimals is returned when a decimal value carries more
	// fractional digits than the token supports.
	ErrTooManyDecimals = errors.New("token: too many decimal places")
)

// Amount is an immutable token quantity held as an exact integer in the
// token's smallest unit.
type Amount struct {
	raw   *big.Int
	token Token
}

// NewAmount creates an Amount from a raw smallest-unit value.
func NewAmount(raw *big.Int, t Token) (Amount, error) {
	if raw == nil {
		raw = big.NewInt(0)
	}
	if raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return Amount{raw: new(big.Int).Set(raw), token: t}, nil
}

// MustNewAmount is NewAmount that panics; for tests and static tables.
func MustNewAmount(raw *big.Int, t Token) Amount {
	a, err := NewAmount(raw, t)
	if err != nil {
		panic(err)
	}
	return a
}

// Zero returns the zero amount of a token.
func Zero(t Token) Amount {
	return Amount{raw: big.NewInt(0), token: t}
}

// ParseDecimal converts a human-unit decimal into an exact Amount.
// Values with more fractional digits than the token supports are rejected
// rather than silently truncated.
func ParseDecimal(value decimal.Decimal, t Token) (Amount, error) {
	if value.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	scaled := value.Shift(int32(t.Decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, fmt.Errorf("%w: %s has %d decimals", ErrTooManyDecimals, t.Symbol, t.Decimals)
	}
	return Amount{raw: scaled.BigInt(), token: t}, nil
}

// Raw returns a copy of the smallest-unit integer value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the amount's token.
func (a Amount) Token() Token {
	return a.token
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// Cmp compares two amounts of the same token: -1, 0 or +1.
func (a Amount) Cmp(other Amount) (int, error) {
	if !a.token.Equals(other.token) {
		return 0, ErrTokenMismatch
	}
	return a.Raw().Cmp(other.Raw()), nil
}

// ToDecimal returns the amount in human units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, 0).Shift(-int32(a.token.Decimals))
}

// String renders the amount with its symbol, e.g. "1250.5 USDC".
func (a Amount) String() string {
	return a.ToDecimal().String() + " " + a.token.Symbol
}
