// Package app contains port definitions for the blockchain context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/0xarbiter/arbscan/business/blockchain/domain"
)

// GasEstimator reports the USD cost of executing one arbitrage round trip.
// Implementations must always return a usable figure: when the live gas
// price cannot be fetched they fall back to a configured static estimate
// rather than failing the scan.
type GasEstimator interface {
	// SwapCostUSD returns the current estimated execution cost in USD.
	SwapCostUSD(ctx context.Context) decimal.Decimal

	// GasPrice returns the latest observed gas price, nil if none has
	// been fetched yet.
	GasPrice(ctx context.Context) (*domain.GasPrice, error)
}
