package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
	blockchainApp "github.com/0xarbiter/arbscan/business/blockchain/app"
	pricingApp "github.com/0xarbiter/arbscan/business/pricing/app"
	pricingDomain "github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/token"
)

// OptimizerConfig tunes the size search.
type OptimizerConfig struct {
	MinSize decimal.Decimal // smallest probe, TokenIn units
	MaxSize decimal.Decimal // largest probe, TokenIn units
	Steps   int             // number of probe sizes
	Epsilon decimal.Decimal // spread noise floor, fraction
}

// SizeOptimizer finds the probe size with the highest net profit for one
// instrument by quoting a fixed ladder of sizes.
type SizeOptimizer struct {
	quotes     *pricingApp.QuoteService
	costModel  domain.CostModel
	gas        blockchainApp.GasEstimator
	classifier *Classifier
	cfg        OptimizerConfig
	log        logger.LoggerInterface
	tracer     trace.Tracer
}

// NewSizeOptimizer wires the optimizer's collaborators.
func NewSizeOptimizer(
	quotes *pricingApp.QuoteService,
	costModel domain.CostModel,
	gas blockchainApp.GasEstimator,
	classifier *Classifier,
	cfg OptimizerConfig,
	log logger.LoggerInterface,
) (*SizeOptimizer, error) {
	if cfg.Steps < 1 {
		return nil, fmt.Errorf("arbitrage: probe steps must be >= 1, got %d", cfg.Steps)
	}
	if !cfg.MinSize.IsPositive() || cfg.MaxSize.LessThan(cfg.MinSize) {
		return nil, fmt.Errorf("arbitrage: probe range [%s, %s] is invalid", cfg.MinSize, cfg.MaxSize)
	}
	return &SizeOptimizer{
		quotes:     quotes,
		costModel:  costModel,
		gas:        gas,
		classifier: classifier,
		cfg:        cfg,
		log:        log,
		tracer:     otel.Tracer("size-optimizer"),
	}, nil
}

// probeSizes returns the ascending ladder of trade sizes, truncated to the
// token's precision.
func (o *SizeOptimizer) probeSizes(tokenIn token.Token) []decimal.Decimal {
	sizes := make([]decimal.Decimal, 0, o.cfg.Steps)
	if o.cfg.Steps == 1 {
		return append(sizes, o.cfg.MinSize.Truncate(int32(tokenIn.Decimals)))
	}

	step := o.cfg.MaxSize.Sub(o.cfg.MinSize).Div(decimal.NewFromInt(int64(o.cfg.Steps - 1)))
	for i := 0; i < o.cfg.Steps; i++ {
		size := o.cfg.MinSize.Add(step.Mul(decimal.NewFromInt(int64(i))))
		sizes = append(sizes, size.Truncate(int32(tokenIn.Decimals)))
	}
	return sizes
}

// FindOptimalSize probes the size ladder ascending and keeps the size with
// the highest positive net profit. Equal profits keep the smaller size. A
// failed quote skips only that size; the returned result counts skips so
// the session can tell a quiet market from a broken venue. A result with no
// best size is the normal outcome, not an error.
func (o *SizeOptimizer) FindOptimalSize(ctx context.Context, inst pricingDomain.Instrument, session *domain.ScanSession) (*domain.SizeSearchResult, error) {
	ctx, span := o.tracer.Start(ctx, "arbitrage.find_optimal_size",
		trace.WithAttributes(attribute.String("instrument", inst.String())),
	)
	defer span.End()

	// Gas does not depend on trade size; one figure serves the whole ladder.
	gasUSD := o.gas.SwapCostUSD(ctx)

	result := &domain.SizeSearchResult{}
	var bestNet decimal.Decimal

	for _, size := range o.probeSizes(inst.Pair.TokenIn) {
		if !size.IsPositive() {
			continue
		}
		result.ProbedSizes++

		amountIn, err := token.ParseDecimal(size, inst.Pair.TokenIn)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidTradeSize,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("%s size %s", inst, size)))
		}

		quotes, err := o.quotes.FetchBoth(ctx, inst, amountIn)
		if err != nil {
			var qe *pricingApp.QuoteError
			if errors.As(err, &qe) && apperror.IsQuoteFailure(qe.Err) {
				result.FailedSizes++
				session.RecordQuoteFailure(qe.Venue.String())
				o.log.Debug(ctx, "size skipped on quote failure",
					"instrument", inst.String(),
					"size", size.String(),
					"venue", qe.Venue.String(),
					"error", qe.Err,
				)
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}

		if thin(quotes.A) || thin(quotes.B) {
			result.ThinSizes++
			continue
		}

		spread := pricingDomain.ComputeSpread(*quotes.A, *quotes.B, o.cfg.Epsilon)
		if spread == nil {
			continue
		}

		notionalUSD := spread.BuyQuote.Price().Mul(size)
		costs := o.costModel.Estimate(notionalUSD, gasUSD)
		netProfit := spread.GrossProfit().Sub(costs.Total())

		if !netProfit.IsPositive() {
			continue
		}
		// Ascending ladder plus strict comparison keeps the smallest of
		// equally profitable sizes.
		if result.Best != nil && !netProfit.GreaterThan(bestNet) {
			continue
		}

		opp := domain.NewOpportunity(inst, *spread)
		opp.TradeSize = size
		opp.NotionalUSD = notionalUSD
		opp.GrossProfit = spread.GrossProfit()
		opp.Costs = costs
		opp.NetProfit = netProfit
		opp.Classification = o.classifier.Classify(netProfit, notionalUSD)

		result.Best = opp
		bestNet = netProfit
	}

	span.SetAttributes(
		attribute.Int("probed", result.ProbedSizes),
		attribute.Int("failed", result.FailedSizes),
		attribute.Int("thin", result.ThinSizes),
		attribute.Bool("found", result.Best != nil),
	)

	return result, nil
}

// thin reports whether a quote's own liquidity disclosure rules its size
// out. Venues that disclose nothing are trusted.
func thin(q *pricingDomain.Quote) bool {
	return q.HasLiquidity() && q.AmountOut.ToDecimal().GreaterThan(q.Liquidity)
}
