// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

var weiPerEther = decimal.New(1, 18)

// GasPrice is a gas price observation in wei.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice stamped with the current time.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{Wei: new(big.Int).Set(wei), Timestamp: time.Now()}
}

// Gwei returns the price in gwei.
func (g *GasPrice) Gwei() float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(g.Wei), big.NewFloat(1e9)).Float64()
	return f
}

// CostUSD returns the USD cost of spending gasLimit units at this price,
// given the native token's USD price.
func (g *GasPrice) CostUSD(gasLimit uint64, nativePriceUSD decimal.Decimal) decimal.Decimal {
	totalWei := new(big.Int).Mul(g.Wei, new(big.Int).SetUint64(gasLimit))
	ether := decimal.NewFromBigInt(totalWei, 0).Div(weiPerEther)
	return ether.Mul(nativePriceUSD)
}
