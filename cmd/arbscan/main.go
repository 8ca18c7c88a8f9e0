// Package main is the entry point for the DEX arbitrage scanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	arbitrageApp "github.com/0xarbiter/arbscan/business/arbitrage/app"
	arbitrageDomain "github.com/0xarbiter/arbscan/business/arbitrage/domain"
	arbitrageInfra "github.com/0xarbiter/arbscan/business/arbitrage/infra"
	blockchainApp "github.com/0xarbiter/arbscan/business/blockchain/app"
	blockchainEth "github.com/0xarbiter/arbscan/business/blockchain/infra/ethereum"
	pricingApp "github.com/0xarbiter/arbscan/business/pricing/app"
	pricingDomain "github.com/0xarbiter/arbscan/business/pricing/domain"
	"github.com/0xarbiter/arbscan/business/pricing/infra/aerodrome"
	"github.com/0xarbiter/arbscan/business/pricing/infra/jupiter"
	"github.com/0xarbiter/arbscan/business/pricing/infra/uniswap"
	"github.com/0xarbiter/arbscan/internal/apm"
	"github.com/0xarbiter/arbscan/internal/config"
	"github.com/0xarbiter/arbscan/internal/logger"
	"github.com/0xarbiter/arbscan/internal/metrics"
	"github.com/0xarbiter/arbscan/internal/retrypolicy"
	"github.com/0xarbiter/arbscan/internal/token"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbscan %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name)
	log.Info(ctx, "starting arbitrage scanner",
		"version", version,
		"environment", cfg.App.Environment,
	)

	if cfg.Telemetry.Enabled {
		traceProvider, err := apm.NewTraceProvider(ctx, apm.Config{
			ServiceName: cfg.Telemetry.ServiceName,
			Exporter:    cfg.Telemetry.TraceExporter,
			Endpoint:    cfg.Telemetry.OTLPEndpoint,
			Insecure:    cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
		defer traceProvider.Stop(context.Background())

		metricProvider, err := metrics.NewProvider(ctx, metrics.Config{
			ServiceName:  cfg.Telemetry.ServiceName,
			Prometheus:   true,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		})
		if err != nil {
			return fmt.Errorf("failed to init metrics: %w", err)
		}
		defer metricProvider.Shutdown(context.Background())

		go func() {
			if err := metrics.ServePrometheus(cfg.Telemetry.PrometheusPort); err != nil {
				log.Warn(ctx, "prometheus server stopped", "error", err)
			}
		}()
		log.Info(ctx, "telemetry initialized",
			"trace_exporter", cfg.Telemetry.TraceExporter,
			"prometheus_port", cfg.Telemetry.PrometheusPort,
		)
	}

	registry := token.DefaultRegistry()
	instruments, err := buildInstruments(cfg, registry)
	if err != nil {
		return err
	}

	providers, gas, err := buildProviders(ctx, cfg, instruments, log)
	if err != nil {
		return err
	}

	quoteService, err := pricingApp.NewQuoteService(providers, cfg.Arbitrage.QuoteTimeout, log)
	if err != nil {
		return err
	}

	costModel := arbitrageDomain.NewCostModel(
		cfg.Arbitrage.FlashloanFeeRateDecimal(),
		cfg.Arbitrage.SlippageToleranceRateDecimal(),
	)
	classifier := arbitrageApp.NewClassifier(
		cfg.Arbitrage.ExecutionThresholdDecimal(),
		cfg.Arbitrage.MaxProfitCeilingDecimal(),
	)

	optimizer, err := arbitrageApp.NewSizeOptimizer(
		quoteService, costModel, gas, classifier,
		arbitrageApp.OptimizerConfig{
			MinSize: cfg.Arbitrage.MinProbeSizeDecimal(),
			MaxSize: cfg.Arbitrage.MaxProbeSizeDecimal(),
			Steps:   cfg.Arbitrage.ProbeSteps,
			Epsilon: cfg.Arbitrage.SpreadEpsilonDecimal(),
		},
		log,
	)
	if err != nil {
		return err
	}

	history := arbitrageDomain.NewHistory(cfg.Arbitrage.HistorySize)
	reporter := arbitrageInfra.NewConsoleReporter()
	consumers := []arbitrageApp.OpportunityConsumer{
		arbitrageApp.ConsumerFunc(func(ctx context.Context, opp *arbitrageDomain.Opportunity) {
			log.Info(ctx, "executable opportunity",
				"id", opp.ID,
				"instrument", opp.Instrument.String(),
				"size", opp.TradeSize.String(),
				"net_profit_usd", opp.NetProfit.StringFixed(2),
			)
		}),
	}

	scanner, err := arbitrageApp.NewScanner(optimizer, reporter, consumers, history,
		arbitrageApp.ScannerConfig{
			Instruments:        instruments,
			ScanInterval:       cfg.Arbitrage.ScanInterval,
			MaxConcurrentPairs: cfg.Arbitrage.MaxConcurrentPairs,
		},
		log,
	)
	if err != nil {
		return err
	}

	return scanner.Run(ctx)
}

// buildInstruments resolves the configured pairs against the token registry.
func buildInstruments(cfg *config.Config, registry *token.Registry) ([]pricingDomain.Instrument, error) {
	instruments := make([]pricingDomain.Instrument, 0, len(cfg.Arbitrage.Pairs))
	for i, pc := range cfg.Arbitrage.Pairs {
		in, ok := registry.Get(pc.TokenIn)
		if !ok {
			return nil, fmt.Errorf("pairs[%d]: unknown token %q", i, pc.TokenIn)
		}
		out, ok := registry.Get(pc.TokenOut)
		if !ok {
			return nil, fmt.Errorf("pairs[%d]: unknown token %q", i, pc.TokenOut)
		}
		pair, err := pricingDomain.NewPair(in, out)
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}

		venueA, err := buildVenue(pc.VenueA, pc, cfg)
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}
		venueB, err := buildVenue(pc.VenueB, pc, cfg)
		if err != nil {
			return nil, fmt.Errorf("pairs[%d]: %w", i, err)
		}

		instruments = append(instruments, pricingDomain.Instrument{
			Pair:   pair,
			VenueA: venueA,
			VenueB: venueB,
		})
	}
	return instruments, nil
}

func buildVenue(name string, pc config.PairConfig, cfg *config.Config) (pricingDomain.Venue, error) {
	kind, err := pricingDomain.ParseVenueKind(name)
	if err != nil {
		return pricingDomain.Venue{}, err
	}
	switch kind {
	case pricingDomain.VenueUniswap:
		feeTier := pc.FeeTier
		if feeTier == 0 {
			feeTier = cfg.Venues.Uniswap.DefaultFeeTier
		}
		return pricingDomain.UniswapVenue(feeTier), nil
	case pricingDomain.VenueAerodrome:
		return pricingDomain.AerodromeVenue(pc.Stable), nil
	default:
		return pricingDomain.JupiterVenue(), nil
	}
}

// buildProviders constructs the quote providers the instruments need, plus
// the gas estimator. An EVM RPC endpoint is only required when an on-chain
// venue is configured; without one the gas estimate stays static.
func buildProviders(ctx context.Context, cfg *config.Config, instruments []pricingDomain.Instrument, log logger.LoggerInterface) ([]pricingApp.QuoteProvider, blockchainApp.GasEstimator, error) {
	needed := make(map[pricingDomain.VenueKind]bool)
	for _, inst := range instruments {
		needed[inst.VenueA.Kind] = true
		needed[inst.VenueB.Kind] = true
	}
	needsEVM := needed[pricingDomain.VenueUniswap] || needed[pricingDomain.VenueAerodrome]

	var client *ethclient.Client
	if needsEVM {
		if cfg.Ethereum.HTTPURL == "" {
			return nil, nil, fmt.Errorf("ethereum.http_url is required for on-chain venues")
		}
		var err error
		client, err = ethclient.DialContext(ctx, cfg.Ethereum.HTTPURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to RPC node: %w", err)
		}
	}

	var providers []pricingApp.QuoteProvider
	if needed[pricingDomain.VenueUniswap] {
		p, err := uniswap.NewProvider(client, cfg.Venues.Uniswap, log)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, p)
	}
	if needed[pricingDomain.VenueAerodrome] {
		p, err := aerodrome.NewProvider(client, cfg.Venues.Aerodrome, log)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, p)
	}
	if needed[pricingDomain.VenueJupiter] {
		retry := retrypolicy.Policy{
			MaxAttempts: cfg.Arbitrage.Retry.MaxAttempts,
			BaseDelay:   cfg.Arbitrage.Retry.BaseDelay,
			MaxDelay:    cfg.Arbitrage.Retry.MaxDelay,
			Jitter:      cfg.Arbitrage.Retry.Jitter,
		}
		p, err := jupiter.NewProvider(cfg.Venues.Jupiter, retry, log)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, p)
	}

	var gas blockchainApp.GasEstimator
	if client != nil {
		oracle, err := blockchainEth.NewGasOracle(client, blockchainEth.Config{
			SwapGasLimit:   cfg.Ethereum.SwapGasLimit,
			NativePriceUSD: decimal.NewFromFloat(cfg.Ethereum.NativeTokenPriceUSD),
			FallbackUSD:    cfg.Arbitrage.GasCostFallbackDecimal(),
			CacheTTL:       cfg.Ethereum.GasCacheTTL,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		gas = oracle
	} else {
		gas = blockchainEth.StaticEstimator{CostUSD: cfg.Arbitrage.GasCostFallbackDecimal()}
	}

	return providers, gas, nil
}
