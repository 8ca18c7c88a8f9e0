// Package aerodrome implements the QuoteProvider port for constant-product
// and stable-curve pools quoted through the Aerodrome router.
package aerodrome

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xarbiter/arbscan/business/pricing/app"
	"github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/circuitbreaker"
	"github.com/0xarbiter/arbscan/internal/config"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/ratelimit"
	"github.com/0xarbiter/arbscan/internal/token"
)

const (
	tracerName = "aerodrome"
	meterName  = "aerodrome"
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Provider quotes single-hop swaps through the router's getAmountsOut.
type Provider struct {
	client    ethereum.ContractCaller
	router    common.Address
	factory   common.Address
	routerABI abi.ABI

	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	limiter *ratelimit.Limiter

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a router-backed provider.
func NewProvider(client ethereum.ContractCaller, cfg config.AerodromeConfig, log logger.LoggerInterface) (*Provider, error) {
	parsedABI, err := abi.JSON(strings.NewReader(RouterABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	p := &Provider{
		client:    client,
		router:    cfg.RouterAddressHex(),
		factory:   cfg.FactoryAddressHex(),
		routerABI: parsedABI,
		logger:    log,
		limiter:   ratelimit.New(cfg.RequestsPerMinute),
		tracer:    otel.Tracer(tracerName),
	}

	p.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("aerodrome-router"))

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
		"aerodrome_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"aerodrome_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"aerodrome_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Kind identifies this provider's venue family.
func (p *Provider) Kind() domain.VenueKind {
	return domain.VenueAerodrome
}

// GetQuote asks the router for the single-hop output amount. The venue's
// Stable flag selects the pool curve.
func (p *Provider) GetQuote(ctx context.Context, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "aerodrome.get_quote",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("amount_in", amountIn.String()),
			attribute.Bool("stable", venue.Stable),
		),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	amountOut, err := p.getAmountsOut(ctx, pair, venue.Stable, amountIn.Raw())

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out, err := token.NewAmount(amountOut, pair.TokenOut)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(pair.String()))
	}
	if out.IsZero() {
		return nil, apperror.New(apperror.CodeZeroLiquidity,
			apperror.WithContext(pair.String()))
	}

	quote := domain.NewQuote(venue, amountIn, out)

	span.SetAttributes(attribute.String("amount_out", amountOut.String()))
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "aerodrome quote",
		"pair", pair.String(),
		"amount_in", amountIn.String(),
		"amount_out", quote.AmountOut.String(),
		"stable", venue.Stable,
	)

	return &quote, nil
}

func (p *Provider) getAmountsOut(ctx context.Context, pair domain.Pair, stable bool, amountIn *big.Int) (*big.Int, error) {
	from, err := pair.TokenIn.EVMAddress()
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err))
	}
	to, err := pair.TokenOut.EVMAddress()
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err))
	}

	callData, err := p.routerABI.Pack("getAmountsOut", amountIn, []Route{{
		From:    from,
		To:      to,
		Stable:  stable,
		Factory: p.factory,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimited, apperror.WithCause(err))
	}

	raw, err := p.cb.Execute(func() ([]byte, error) {
		return p.client.CallContract(ctx, ethereum.CallMsg{
			To:   &p.router,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, classifyCallError(err, pair, stable)
	}

	outputs, err := p.routerABI.Unpack("getAmountsOut", raw)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("failed to decode router result"))
	}
	if len(outputs) < 1 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext("empty router result"))
	}
	amounts, ok := outputs[0].([]*big.Int)
	if !ok || len(amounts) < 2 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext("unexpected amounts shape"))
	}

	return amounts[len(amounts)-1], nil
}

// classifyCallError maps router call failures onto quote-failure codes. A
// revert means the pool cannot serve this route, not that the venue is down.
func classifyCallError(err error, pair domain.Pair, stable bool) error {
	ctxInfo := fmt.Sprintf("%s stable=%t", pair, stable)
	switch {
	case circuitbreaker.IsOpen(err):
		return apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	case strings.Contains(err.Error(), "execution reverted"):
		return apperror.New(apperror.CodeNoRoute,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	default:
		return apperror.New(apperror.CodeVenueUnreachable,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	}
}
