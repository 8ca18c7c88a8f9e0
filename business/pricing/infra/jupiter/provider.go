// Package jupiter implements the QuoteProvider port for the Jupiter
// aggregator's HTTP quote API.
package jupiter

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xarbiter/arbscan/business/pricing/app"
	"github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/config"
	"github.com/0xarbiter/arbscan/internal/httpclient"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/ratelimit"
	"github.com/0xarbiter/arbscan/internal/retrypolicy"
	"github.com/0xarbiter/arbscan/internal/token"
)

const (
	tracerName = "jupiter"
	meterName  = "jupiter"

	quotePath = "/quote"

	// defaultCacheTTL keeps identical probe requests within one scan tick
	// from hitting the API twice.
	defaultCacheTTL = 2 * time.Second

	// liquidityDivisor derives a conservative tradable-liquidity figure
	// from the thinnest hop of the returned route.
	liquidityDivisor = 3
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// quoteResponse mirrors the fields of the quote API response the scanner
// reads.
type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	RoutePlan  []struct {
		SwapInfo struct {
			Label     string `json:"label"`
			InAmount  string `json:"inAmount"`
			OutAmount string `json:"outAmount"`
		} `json:"swapInfo"`
		Percent int `json:"percent"`
	} `json:"routePlan"`
}

type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
	cacheHits    metric.Int64Counter
}

// Provider quotes swaps through the aggregator HTTP API.
type Provider struct {
	http        *httpclient.Client
	slippageBps int

	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	retry   retrypolicy.Policy
	cache   *expirable.LRU[string, *domain.Quote]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates an HTTP-backed provider. The retry policy is injected
// so retry behavior stays a configuration concern.
func NewProvider(cfg config.JupiterConfig, retry retrypolicy.Policy, log logger.LoggerInterface) (*Provider, error) {
	client, err := httpclient.New(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("jupiter"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build http client: %w", err)
	}

	cacheSize := cfg.QuoteCacheSize
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cacheTTL := cfg.QuoteCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	p := &Provider{
		http:        client,
		slippageBps: cfg.SlippageBps,
		logger:      log,
		limiter:     ratelimit.New(cfg.RequestsPerMinute),
		retry:       retry,
		cache:       expirable.NewLRU[string, *domain.Quote](cacheSize, nil, cacheTTL),
		tracer:      otel.Tracer(tracerName),
	}

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.quotesTotal, err = meter.Int64Counter(
		"jupiter_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"jupiter_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"jupiter_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	p.metrics.cacheHits, err = meter.Int64Counter(
		"jupiter_quote_cache_hits_total",
		metric.WithDescription("Quote cache hits"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Kind identifies this provider's venue family.
func (p *Provider) Kind() domain.VenueKind {
	return domain.VenueJupiter
}

// GetQuote fetches an exact-in quote. Identical requests within the cache
// TTL are served from memory.
func (p *Provider) GetQuote(ctx context.Context, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "jupiter.get_quote",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	cacheKey := pair.TokenIn.Address + "|" + pair.TokenOut.Address + "|" + amountIn.Raw().String()
	if cached, ok := p.cache.Get(cacheKey); ok {
		p.metrics.cacheHits.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("cache_hit", true))
		span.SetStatus(codes.Ok, "quote from cache")
		return cached, nil
	}

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	quote, err := p.fetchQuote(ctx, pair, venue, amountIn)

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p.cache.Add(cacheKey, quote)

	span.SetAttributes(attribute.String("amount_out", quote.AmountOut.String()))
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "jupiter quote",
		"pair", pair.String(),
		"amount_in", amountIn.String(),
		"amount_out", quote.AmountOut.String(),
		"liquidity", quote.Liquidity.String(),
	)

	return quote, nil
}

func (p *Provider) fetchQuote(ctx context.Context, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", pair.TokenIn.Address)
	params.Set("outputMint", pair.TokenOut.Address)
	params.Set("amount", amountIn.Raw().String())
	params.Set("slippageBps", strconv.Itoa(p.slippageBps))
	params.Set("swapMode", "ExactIn")

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimited, apperror.WithCause(err))
	}

	var resp quoteResponse
	err := p.retry.Do(ctx, func() error {
		return p.http.GetJSON(ctx, quotePath, params, &resp)
	})
	if err != nil {
		return nil, classifyHTTPError(err, pair)
	}

	outRaw, ok := new(big.Int).SetString(resp.OutAmount, 10)
	if !ok {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("bad outAmount %q", resp.OutAmount)))
	}
	amountOut, err := token.NewAmount(outRaw, pair.TokenOut)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote, apperror.WithCause(err))
	}
	if amountOut.IsZero() {
		return nil, apperror.New(apperror.CodeZeroLiquidity,
			apperror.WithContext(pair.String()))
	}

	quote := domain.NewQuote(venue, amountIn, amountOut)
	quote.Liquidity = routeLiquidity(resp, pair.TokenOut)

	return &quote, nil
}

// routeLiquidity estimates tradable liquidity as the thinnest hop's output
// divided by a safety factor, in TokenOut human units. Zero means the route
// disclosed nothing usable.
func routeLiquidity(resp quoteResponse, out token.Token) decimal.Decimal {
	minHop := decimal.Zero
	for _, hop := range resp.RoutePlan {
		v, err := decimal.NewFromString(hop.SwapInfo.OutAmount)
		if err != nil || !v.IsPositive() {
			continue
		}
		if minHop.IsZero() || v.LessThan(minHop) {
			minHop = v
		}
	}
	if minHop.IsZero() {
		return decimal.Zero
	}
	return minHop.Shift(-int32(out.Decimals)).Div(decimal.NewFromInt(liquidityDivisor))
}

// classifyHTTPError maps API failures onto quote-failure codes. The API
// reports an unroutable pair as a client error, which is a thin-market
// condition rather than an outage.
func classifyHTTPError(err error, pair domain.Pair) error {
	switch {
	case httpclient.IsStatus(err, 400), httpclient.IsStatus(err, 404):
		return apperror.New(apperror.CodeNoRoute,
			apperror.WithCause(err), apperror.WithContext(pair.String()))
	case httpclient.IsStatus(err, 429):
		return apperror.New(apperror.CodeRateLimited,
			apperror.WithCause(err), apperror.WithContext(pair.String()))
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.New(apperror.CodeQuoteTimeout,
			apperror.WithCause(err), apperror.WithContext(pair.String()))
	default:
		return apperror.New(apperror.CodeVenueUnreachable,
			apperror.WithCause(err), apperror.WithContext(pair.String()))
	}
}
