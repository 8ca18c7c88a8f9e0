// Package ethereum implements the GasEstimator port against an EVM RPC node.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xarbiter/arbscan/business/blockchain/app"
	"github.com/0xarbiter/arbscan/business/blockchain/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/circuitbreaker"
	"github.com/0xarbiter/arbscan/internal/logger"
)

const (
	tracerName = "gas-oracle"
	meterName  = "gas-oracle"

	priceCacheKey = "current"
)

// Ensure GasOracle implements GasEstimator.
var _ app.GasEstimator = (*GasOracle)(nil)

// GasPriceSource is the slice of the RPC client the oracle needs.
type GasPriceSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// Config holds gas oracle tuning.
type Config struct {
	SwapGasLimit   uint64          // gas units assumed per round trip
	NativePriceUSD decimal.Decimal // native token USD price
	FallbackUSD    decimal.Decimal // used when the live price is unavailable
	CacheTTL       time.Duration   // how long a fetched price is reused
}

type oracleMetrics struct {
	fetches      metric.Int64Counter
	fetchErrors  metric.Int64Counter
	gasPriceGwei metric.Float64Gauge
	cacheHits    metric.Int64Counter
}

// GasOracle estimates execution cost from the node's suggested gas price,
// caching observations for roughly one block.
type GasOracle struct {
	client GasPriceSource
	cfg    Config
	logger logger.LoggerInterface

	cache *expirable.LRU[string, *domain.GasPrice]
	cb    *circuitbreaker.CircuitBreaker[*big.Int]

	tracer  trace.Tracer
	metrics *oracleMetrics
}

// NewGasOracle creates a gas oracle over the given price source.
func NewGasOracle(client GasPriceSource, cfg Config, log logger.LoggerInterface) (*GasOracle, error) {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 12 * time.Second
	}

	g := &GasOracle{
		client: client,
		cfg:    cfg,
		logger: log,
		cache:  expirable.NewLRU[string, *domain.GasPrice](1, nil, ttl),
		cb:     circuitbreaker.New[*big.Int](circuitbreaker.DefaultConfig("gas-oracle")),
		tracer: otel.Tracer(tracerName),
	}

	if err := g.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &oracleMetrics{}

	g.metrics.fetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
	)
	if err != nil {
		return err
	}

	g.metrics.fetchErrors, err = meter.Int64Counter(
		"gas_price_fetch_errors_total",
		metric.WithDescription("Gas price fetch failures"),
	)
	if err != nil {
		return err
	}

	g.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Last observed gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_price_cache_hits_total",
		metric.WithDescription("Gas price cache hits"),
	)
	if err != nil {
		return err
	}

	return nil
}

// GasPrice returns the current gas price, served from cache within the TTL.
func (g *GasOracle) GasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price")
	defer span.End()

	if price, ok := g.cache.Get(priceCacheKey); ok {
		g.metrics.cacheHits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return price, nil
	}

	g.metrics.fetches.Add(ctx, 1)

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return g.client.SuggestGasPrice(ctx)
	})
	if err != nil {
		g.metrics.fetchErrors.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas price"))
	}

	price := domain.NewGasPrice(wei)
	g.cache.Add(priceCacheKey, price)
	g.metrics.gasPriceGwei.Record(ctx, price.Gwei())

	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// SwapCostUSD converts the current gas price into a USD round-trip cost.
// When the live price is unavailable the configured fallback is used, so
// sizing never stalls on a flaky RPC node.
func (g *GasOracle) SwapCostUSD(ctx context.Context) decimal.Decimal {
	price, err := g.GasPrice(ctx)
	if err != nil {
		g.logger.Warn(ctx, "gas price unavailable, using fallback",
			"fallback_usd", g.cfg.FallbackUSD.String(),
			"error", err,
		)
		return g.cfg.FallbackUSD
	}
	return price.CostUSD(g.cfg.SwapGasLimit, g.cfg.NativePriceUSD)
}

// StaticEstimator always reports a fixed USD cost; used when no RPC node is
// configured.
type StaticEstimator struct {
	CostUSD decimal.Decimal
}

// SwapCostUSD returns the fixed cost.
func (s StaticEstimator) SwapCostUSD(context.Context) decimal.Decimal {
	return s.CostUSD
}

// GasPrice always reports that no observation exists.
func (s StaticEstimator) GasPrice(context.Context) (*domain.GasPrice, error) {
	return nil, apperror.New(apperror.CodeGasEstimationFailed,
		apperror.WithContext("static estimator has no gas price"))
}
