// Package uniswap implements the QuoteProvider port for concentrated-liquidity
// pools quoted through the QuoterV2 contract.
package uniswap

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
	tracerName = "uniswap"
	meterName  = "uniswap"
)

// Ensure Provider implements QuoteProvider.
var _ app.QuoteProvider = (*Provider)(nil)

// providerMetrics holds OTEL metric instruments.
type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Provider quotes swaps through the QuoterV2 contract.
type Provider struct {
	client         ethereum.ContractCaller
	quoter         common.Address
	quoterABI      abi.ABI
	defaultFeeTier int

	logger  logger.LoggerInterface
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	limiter *ratelimit.Limiter

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a QuoterV2-backed provider.
func NewProvider(client ethereum.ContractCaller, cfg config.UniswapConfig, log logger.LoggerInterface) (*Provider, error) {
	parsedABI, err := abi.JSON(strings.NewReader(QuoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
	}

	p := &Provider{
		client:         client,
		quoter:         cfg.QuoterAddressHex(),
		quoterABI:      parsedABI,
		defaultFeeTier: cfg.DefaultFeeTier,
		logger:         log,
		limiter:        ratelimit.New(cfg.RequestsPerMinute),
		tracer:         otel.Tracer(tracerName),
	}

	p.cb = circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig("uniswap-quoter"))

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
		"uniswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"uniswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"uniswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Kind identifies this provider's venue family.
func (p *Provider) Kind() domain.VenueKind {
	return domain.VenueUniswap
}

// GetQuote calls quoteExactInputSingle at the venue's fee tier.
func (p *Provider) GetQuote(ctx context.Context, pair domain.Pair, venue domain.Venue, amountIn token.Amount) (*domain.Quote, error) {
	feeTier := venue.FeeTier
	if feeTier == 0 {
		feeTier = p.defaultFeeTier
	}

	ctx, span := p.tracer.Start(ctx, "uniswap.get_quote",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("amount_in", amountIn.String()),
			attribute.Int("fee_tier", feeTier),
		),
	)
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)

	result, err := p.quoteExactInputSingle(ctx, pair, amountIn.Raw(), feeTier)

	p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	amountOut, err := token.NewAmount(result.AmountOut, pair.TokenOut)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(pair.String()))
	}

	quote := domain.NewQuote(venue, amountIn, amountOut)
	quote.GasEstimate = result.GasEstimate.Uint64()

	span.SetAttributes(
		attribute.String("amount_out", result.AmountOut.String()),
		attribute.Int64("gas_estimate", result.GasEstimate.Int64()),
	)
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "uniswap quote",
		"pair", pair.String(),
		"amount_in", amountIn.String(),
		"amount_out", quote.AmountOut.String(),
		"fee_tier", feeTier,
	)

	return &quote, nil
}

func (p *Provider) quoteExactInputSingle(ctx context.Context, pair domain.Pair, amountIn *big.Int, feeTier int) (*QuoteResult, error) {
	tokenIn, err := pair.TokenIn.EVMAddress()
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err))
	}
	tokenOut, err := pair.TokenOut.EVMAddress()
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, apperror.WithCause(err))
	}

	callData, err := p.quoterABI.Pack("quoteExactInputSingle", QuoteExactInputSingleParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(feeTier)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, apperror.New(apperror.CodeRateLimited, apperror.WithCause(err))
	}

	raw, err := p.cb.Execute(func() ([]byte, error) {
		return p.client.CallContract(ctx, ethereum.CallMsg{
			To:   &p.quoter,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, classifyCallError(err, pair, feeTier)
	}

	outputs, err := p.quoterABI.Unpack("quoteExactInputSingle", raw)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext("failed to decode quoter result"))
	}
	if len(outputs) < 4 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("unexpected output length %d", len(outputs))))
	}

	return &QuoteResult{
		AmountOut:               outputs[0].(*big.Int),
		SqrtPriceX96After:       outputs[1].(*big.Int),
		InitializedTicksCrossed: outputs[2].(uint32),
		GasEstimate:             outputs[3].(*big.Int),
	}, nil
}

// classifyCallError maps eth_call failures onto quote-failure codes. A
// reverted quoter call means the pool cannot serve this trade, not that the
// venue is down.
func classifyCallError(err error, pair domain.Pair, feeTier int) error {
	ctxInfo := fmt.Sprintf("%s fee tier %d", pair, feeTier)
	switch {
	case circuitbreaker.IsOpen(err):
		return apperror.New(apperror.CodeCircuitOpen,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	case strings.Contains(err.Error(), "execution reverted"):
		return apperror.New(apperror.CodeQuoteReverted,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	default:
		return apperror.New(apperror.CodeVenueUnreachable,
			apperror.WithCause(err), apperror.WithContext(ctxInfo))
	}
}
