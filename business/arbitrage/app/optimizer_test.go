package app

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0xarbiter/arbscan/business/arbitrage/domain"
	blockchainDomain "github.com/0xarbiter/arbscan/business/blockchain/domain"
	pricingApp "github.com/0xarbiter/arbscan/business/pricing/app"
	pricingDomain "github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/internal/apperror"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/token"
)

var (
	optWETH = token.MustNew(token.ChainIDBase, "0x4200000000000000000000000000000000000006", "WETH", 18)
	optUSDC = token.MustNew(token.ChainIDBase, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "USDC", 6)
)

// fakeProvider serves quotes from a size -> price table.
type fakeProvider struct {
	kind      pricingDomain.VenueKind
	prices    map[string]string // TokenIn size -> TokenOut price
	errAt     map[string]error  // TokenIn size -> forced failure
	liquidity string            // disclosed route liquidity, "" for none
	calls     int
}

func (f *fakeProvider) Kind() pricingDomain.VenueKind { return f.kind }

func (f *fakeProvider) GetQuote(ctx context.Context, pair pricingDomain.Pair, venue pricingDomain.Venue, amountIn token.Amount) (*pricingDomain.Quote, error) {
	f.calls++
	size := amountIn.ToDecimal().String()
	if err := f.errAt[size]; err != nil {
		return nil, err
	}
	priceStr, ok := f.prices[size]
	if !ok {
		return nil, apperror.New(apperror.CodeNoRoute)
	}

	outDec := decimal.RequireFromString(priceStr).Mul(amountIn.ToDecimal())
	out, err := token.ParseDecimal(outDec.Truncate(int32(pair.TokenOut.Decimals)), pair.TokenOut)
	if err != nil {
		return nil, err
	}
	quote := pricingDomain.NewQuote(venue, amountIn, out)
	if f.liquidity != "" {
		quote.Liquidity = decimal.RequireFromString(f.liquidity)
	}
	return &quote, nil
}

// fakeGas reports a fixed USD swap cost.
type fakeGas struct {
	cost decimal.Decimal
}

func (f fakeGas) SwapCostUSD(context.Context) decimal.Decimal { return f.cost }

func (f fakeGas) GasPrice(context.Context) (*blockchainDomain.GasPrice, error) {
	return nil, apperror.New(apperror.CodeGasEstimationFailed)
}

func testInstrument() pricingDomain.Instrument {
	return pricingDomain.Instrument{
		Pair:   pricingDomain.MustNewPair(optWETH, optUSDC),
		VenueA: pricingDomain.UniswapVenue(500),
		VenueB: pricingDomain.AerodromeVenue(false),
	}
}

// flatPrices maps every ladder size to the same price.
func flatPrices(price string) map[string]string {
	return map[string]string{
		"1": price, "2": price, "3": price, "4": price, "5": price,
	}
}

func newTestOptimizer(t *testing.T, buy, sell *fakeProvider, model domain.CostModel, gasUSD string) *SizeOptimizer {
	t.Helper()

	quotes, err := pricingApp.NewQuoteService(
		[]pricingApp.QuoteProvider{buy, sell},
		time.Second,
		logger.NewDiscard(),
	)
	if err != nil {
		t.Fatalf("NewQuoteService: %v", err)
	}

	classifier := NewClassifier(
		decimal.RequireFromString("5.00"),
		decimal.RequireFromString("1000000"),
	)

	opt, err := NewSizeOptimizer(quotes, model, fakeGas{cost: decimal.RequireFromString(gasUSD)}, classifier,
		OptimizerConfig{
			MinSize: decimal.NewFromInt(1),
			MaxSize: decimal.NewFromInt(5),
			Steps:   5,
			Epsilon: decimal.RequireFromString("0.001"),
		},
		logger.NewDiscard(),
	)
	if err != nil {
		t.Fatalf("NewSizeOptimizer: %v", err)
	}
	return opt
}

func defaultModel() domain.CostModel {
	return domain.NewCostModel(
		decimal.RequireFromString("0.0005"),
		decimal.RequireFromString("0.005"),
	)
}

func TestFindOptimalSize_PicksHighestNetProfit(t *testing.T) {
	// Flat 100 bps spread: profit grows with size, so the largest probe wins.
	// net(s) = 34s - (1.7s + 17s) - 0.2 = 15.3s - 0.2
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{kind: pricingDomain.VenueAerodrome, prices: flatPrices("3434")}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best == nil {
		t.Fatal("Best = nil, want opportunity")
	}
	if want := decimal.NewFromInt(5); !result.Best.TradeSize.Equal(want) {
		t.Errorf("TradeSize = %s, want %s", result.Best.TradeSize, want)
	}
	if want := decimal.RequireFromString("76.3"); !result.Best.NetProfit.Equal(want) {
		t.Errorf("NetProfit = %s, want %s", result.Best.NetProfit, want)
	}
	if result.Best.Classification != domain.ClassExecutable {
		t.Errorf("Classification = %s, want %s", result.Best.Classification, domain.ClassExecutable)
	}
	if result.ProbedSizes != 5 {
		t.Errorf("ProbedSizes = %d, want 5", result.ProbedSizes)
	}
	if result.FailedSizes != 0 {
		t.Errorf("FailedSizes = %d, want 0", result.FailedSizes)
	}
}

func TestFindOptimalSize_SkipsFailedSizes(t *testing.T) {
	// The best size fails on one venue; the search falls back to the next
	// best instead of aborting.
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{
		kind:   pricingDomain.VenueAerodrome,
		prices: flatPrices("3434"),
		errAt:  map[string]error{"5": apperror.New(apperror.CodeQuoteTimeout)},
	}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	session := domain.NewScanSession()
	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), session)
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best == nil {
		t.Fatal("Best = nil, want opportunity")
	}
	if want := decimal.NewFromInt(4); !result.Best.TradeSize.Equal(want) {
		t.Errorf("TradeSize = %s, want %s", result.Best.TradeSize, want)
	}
	if result.FailedSizes != 1 {
		t.Errorf("FailedSizes = %d, want 1", result.FailedSizes)
	}

	summary := session.Summarize()
	if got := summary.QuoteFailures["aerodrome/volatile"]; got != 1 {
		t.Errorf("QuoteFailures[aerodrome/volatile] = %d, want 1", got)
	}
}

func TestFindOptimalSize_TieKeepsSmallestSize(t *testing.T) {
	// Every size nets exactly 120: gross is held constant while costs are
	// zeroed out. The smallest size must win.
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{
		kind: pricingDomain.VenueAerodrome,
		prices: map[string]string{
			"1": "3520", "2": "3460", "3": "3440", "4": "3430", "5": "3424",
		},
	}
	model := domain.NewCostModel(decimal.Zero, decimal.Zero)
	opt := newTestOptimizer(t, buy, sell, model, "0")

	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best == nil {
		t.Fatal("Best = nil, want opportunity")
	}
	if want := decimal.NewFromInt(1); !result.Best.TradeSize.Equal(want) {
		t.Errorf("TradeSize = %s, want %s (smallest of the tie)", result.Best.TradeSize, want)
	}
	if want := decimal.RequireFromString("120"); !result.Best.NetProfit.Equal(want) {
		t.Errorf("NetProfit = %s, want %s", result.Best.NetProfit, want)
	}
}

func TestFindOptimalSize_NoSpreadIsNormal(t *testing.T) {
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{kind: pricingDomain.VenueAerodrome, prices: flatPrices("3400")}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best != nil {
		t.Errorf("Best = %+v, want nil on flat market", result.Best)
	}
	if result.ProbedSizes != 5 {
		t.Errorf("ProbedSizes = %d, want 5", result.ProbedSizes)
	}
}

func TestFindOptimalSize_SpreadUnderNoiseFloor(t *testing.T) {
	// 1 bps apart: real venues jitter this much on consecutive quotes.
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{kind: pricingDomain.VenueAerodrome, prices: flatPrices("3400.34")}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best != nil {
		t.Errorf("Best = %+v, want nil under the noise floor", result.Best)
	}
}

func TestFindOptimalSize_ThinLiquiditySkipped(t *testing.T) {
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{
		kind:      pricingDomain.VenueAerodrome,
		prices:    flatPrices("3434"),
		liquidity: "10", // far below any probe's output
	}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	result, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	if result.Best != nil {
		t.Errorf("Best = %+v, want nil when every size is thin", result.Best)
	}
	if result.ThinSizes != 5 {
		t.Errorf("ThinSizes = %d, want 5", result.ThinSizes)
	}
}

func TestFindOptimalSize_Idempotent(t *testing.T) {
	// Same quotes in, same answer out, regardless of how often it runs.
	buy := &fakeProvider{kind: pricingDomain.VenueUniswap, prices: flatPrices("3400")}
	sell := &fakeProvider{kind: pricingDomain.VenueAerodrome, prices: flatPrices("3434")}
	opt := newTestOptimizer(t, buy, sell, defaultModel(), "0.20")

	first, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
	if err != nil {
		t.Fatalf("FindOptimalSize: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := opt.FindOptimalSize(context.Background(), testInstrument(), domain.NewScanSession())
		if err != nil {
			t.Fatalf("FindOptimalSize run %d: %v", i, err)
		}
		if !again.Best.TradeSize.Equal(first.Best.TradeSize) {
			t.Errorf("TradeSize changed: %s then %s", first.Best.TradeSize, again.Best.TradeSize)
		}
		if !again.Best.NetProfit.Equal(first.Best.NetProfit) {
			t.Errorf("NetProfit changed: %s then %s", first.Best.NetProfit, again.Best.NetProfit)
		}
	}
}
