// Package config provides configuration loading and fail-fast validation.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Venues    VenuesConfig    `mapstructure:"venues"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds the EVM RPC endpoint used by on-chain quote sources
// and the gas oracle.
type EthereumConfig struct {
	HTTPURL string `mapstructure:"http_url"`
	ChainID uint64 `mapstructure:"chain_id"`

	// NativeTokenPriceUSD converts gas denominated in the chain's native
	// token into USD. A live price feed is out of scope for the scanner.
	NativeTokenPriceUSD float64 `mapstructure:"native_token_price_usd"`
	// SwapGasLimit is the gas units assumed for one arbitrage round trip.
	SwapGasLimit uint64 `mapstructure:"swap_gas_limit"`
	// GasCacheTTL bounds how long a fetched gas price is reused.
	GasCacheTTL time.Duration `mapstructure:"gas_cache_ttl"`
}

// VenuesConfig holds per-venue adapter settings.
type VenuesConfig struct {
	Uniswap   UniswapConfig   `mapstructure:"uniswap"`
	Aerodrome AerodromeConfig `mapstructure:"aerodrome"`
	Jupiter   JupiterConfig   `mapstructure:"jupiter"`
}

// UniswapConfig holds the concentrated-liquidity quoter settings.
type UniswapConfig struct {
	QuoterAddress     string `mapstructure:"quoter_address"`
	DefaultFeeTier    int    `mapstructure:"default_fee_tier"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// QuoterAddressHex returns the quoter address as common.Address.
func (c *UniswapConfig) QuoterAddressHex() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

// AerodromeConfig holds the constant-product router settings.
type AerodromeConfig struct {
	RouterAddress     string `mapstructure:"router_address"`
	FactoryAddress    string `mapstructure:"factory_address"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// RouterAddressHex returns the router address as common.Address.
func (c *AerodromeConfig) RouterAddressHex() common.Address {
	return common.HexToAddress(c.RouterAddress)
}

// FactoryAddressHex returns the factory address as common.Address.
func (c *AerodromeConfig) FactoryAddressHex() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}

// JupiterConfig holds the aggregator HTTP endpoint settings.
type JupiterConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	SlippageBps       int           `mapstructure:"slippage_bps"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	QuoteCacheSize    int           `mapstructure:"quote_cache_size"`
	QuoteCacheTTL     time.Duration `mapstructure:"quote_cache_ttl"`
}

// PairConfig describes one tradable instrument: a token pair quoted on two
// venues.
type PairConfig struct {
	TokenIn  string `mapstructure:"token_in"`
	TokenOut string `mapstructure:"token_out"`
	VenueA   string `mapstructure:"venue_a"`
	VenueB   string `mapstructure:"venue_b"`
	FeeTier  int    `mapstructure:"fee_tier"` // concentrated-liquidity fee tier
	Stable   bool   `mapstructure:"stable"`   // constant-product stable-pool flag
}

// RetryConfig tunes the quote-source retry policy.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	MaxDelay    time.Duration `mapstructure:"max_delay"`
	Jitter      float64       `mapstructure:"jitter"`
}

// ArbitrageConfig holds detection and sizing configuration.
type ArbitrageConfig struct {
	Pairs []PairConfig `mapstructure:"pairs"`

	MinProbeSize float64 `mapstructure:"min_probe_size"`
	MaxProbeSize float64 `mapstructure:"max_probe_size"`
	ProbeSteps   int     `mapstructure:"probe_steps"`

	ExecutionThresholdUSD float64 `mapstructure:"execution_threshold_usd"`
	MaxProfitCeilingUSD   float64 `mapstructure:"max_profit_ceiling_usd"`
	SpreadEpsilonBps      float64 `mapstructure:"spread_epsilon_bps"`

	FlashloanFeeRate      float64 `mapstructure:"flashloan_fee_rate"`
	SlippageToleranceRate float64 `mapstructure:"slippage_tolerance_rate"`
	GasCostFallbackUSD    float64 `mapstructure:"gas_cost_fallback_usd"`

	ScanInterval       time.Duration `mapstructure:"scan_interval"`
	QuoteTimeout       time.Duration `mapstructure:"quote_timeout"`
	MaxConcurrentPairs int64         `mapstructure:"max_concurrent_pairs"`
	HistorySize        int           `mapstructure:"history_size"`

	Retry RetryConfig `mapstructure:"retry"`
}

// Decimal accessors: viper reads floats, the domain works in decimals.

func (c *ArbitrageConfig) MinProbeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProbeSize)
}

func (c *ArbitrageConfig) MaxProbeSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxProbeSize)
}

func (c *ArbitrageConfig) ExecutionThresholdDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.ExecutionThresholdUSD)
}

func (c *ArbitrageConfig) MaxProfitCeilingDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MaxProfitCeilingUSD)
}

func (c *ArbitrageConfig) SpreadEpsilonDecimal() decimal.Decimal {
	// bps to fraction
	return decimal.NewFromFloat(c.SpreadEpsilonBps).Div(decimal.NewFromInt(10000))
}

func (c *ArbitrageConfig) FlashloanFeeRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.FlashloanFeeRate)
}

func (c *ArbitrageConfig) SlippageToleranceRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.SlippageToleranceRate)
}

func (c *ArbitrageConfig) GasCostFallbackDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.GasCostFallbackUSD)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceExporter  string `mapstructure:"trace_exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()
	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// no config file: env vars and defaults only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	v.BindEnv("ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "ARB_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	v.BindEnv("venues.uniswap.quoter_address", "ARB_UNISWAP_QUOTER", "UNISWAP_QUOTER")
	v.BindEnv("venues.aerodrome.router_address", "ARB_AERODROME_ROUTER", "AERODROME_ROUTER")
	v.BindEnv("venues.aerodrome.factory_address", "ARB_AERODROME_FACTORY", "AERODROME_FACTORY")
	v.BindEnv("venues.jupiter.base_url", "ARB_JUPITER_URL", "JUPITER_URL")

	v.BindEnv("arbitrage.execution_threshold_usd", "ARB_EXECUTION_THRESHOLD_USD")
	v.BindEnv("arbitrage.max_probe_size", "ARB_MAX_PROBE_SIZE")
	v.BindEnv("arbitrage.scan_interval", "ARB_SCAN_INTERVAL")

	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbscan")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Base mainnet
	v.SetDefault("ethereum.chain_id", 8453)
	v.SetDefault("ethereum.native_token_price_usd", 2500.0)
	v.SetDefault("ethereum.swap_gas_limit", 400000)
	v.SetDefault("ethereum.gas_cache_ttl", "12s")

	// Uniswap V3 QuoterV2 on Base
	v.SetDefault("venues.uniswap.quoter_address", "0x3d4e44Eb1374240CE5F1B871ab261CD16335B76a")
	v.SetDefault("venues.uniswap.default_fee_tier", 500)
	v.SetDefault("venues.uniswap.requests_per_minute", 300)

	// Aerodrome router on Base
	v.SetDefault("venues.aerodrome.router_address", "0xcF77a3Ba9A5CA399B7c97c74d54e5b1Beb874E43")
	v.SetDefault("venues.aerodrome.factory_address", "0x420DD381b31aEf6683db6B902084cB0FFECe40Da")
	v.SetDefault("venues.aerodrome.requests_per_minute", 300)

	v.SetDefault("venues.jupiter.base_url", "https://quote-api.jup.ag/v6")
	v.SetDefault("venues.jupiter.slippage_bps", 50)
	v.SetDefault("venues.jupiter.requests_per_minute", 60)
	v.SetDefault("venues.jupiter.quote_cache_size", 512)
	v.SetDefault("venues.jupiter.quote_cache_ttl", "2s")

	// The canonical instrument sells the asset for a USD stable, so spreads
	// and profits come out in USD. Probe sizes are in TokenIn units.
	v.SetDefault("arbitrage.pairs", []map[string]any{
		{"token_in": "WETH", "token_out": "USDC", "venue_a": "uniswap", "venue_b": "aerodrome", "fee_tier": 500, "stable": false},
	})
	v.SetDefault("arbitrage.min_probe_size", 0.5)
	v.SetDefault("arbitrage.max_probe_size", 5.0)
	v.SetDefault("arbitrage.probe_steps", 5)
	v.SetDefault("arbitrage.execution_threshold_usd", 5.0)
	v.SetDefault("arbitrage.max_profit_ceiling_usd", 1000000.0)
	v.SetDefault("arbitrage.spread_epsilon_bps", 10.0)
	v.SetDefault("arbitrage.flashloan_fee_rate", 0.0005)
	v.SetDefault("arbitrage.slippage_tolerance_rate", 0.005)
	v.SetDefault("arbitrage.gas_cost_fallback_usd", 0.20)
	v.SetDefault("arbitrage.scan_interval", "10s")
	v.SetDefault("arbitrage.quote_timeout", "4s")
	v.SetDefault("arbitrage.max_concurrent_pairs", 3)
	v.SetDefault("arbitrage.history_size", 50)
	v.SetDefault("arbitrage.retry.max_attempts", 1)
	v.SetDefault("arbitrage.retry.base_delay", "200ms")
	v.SetDefault("arbitrage.retry.max_delay", "2s")
	v.SetDefault("arbitrage.retry.jitter", 0.2)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbscan")
	v.SetDefault("telemetry.trace_exporter", "none")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate enforces the fail-fast startup contract: malformed configuration
// never reaches the scan loop.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.Venues.Uniswap.QuoterAddress) {
		return fmt.Errorf("invalid venues.uniswap.quoter_address: %s", c.Venues.Uniswap.QuoterAddress)
	}
	if !common.IsHexAddress(c.Venues.Aerodrome.RouterAddress) {
		return fmt.Errorf("invalid venues.aerodrome.router_address: %s", c.Venues.Aerodrome.RouterAddress)
	}
	if !common.IsHexAddress(c.Venues.Aerodrome.FactoryAddress) {
		return fmt.Errorf("invalid venues.aerodrome.factory_address: %s", c.Venues.Aerodrome.FactoryAddress)
	}
	if len(c.Arbitrage.Pairs) == 0 {
		return fmt.Errorf("arbitrage.pairs cannot be empty")
	}
	for i, p := range c.Arbitrage.Pairs {
		if p.TokenIn == "" || p.TokenOut == "" {
			return fmt.Errorf("arbitrage.pairs[%d]: token_in and token_out are required", i)
		}
		if p.TokenIn == p.TokenOut {
			return fmt.Errorf("arbitrage.pairs[%d]: token_in equals token_out (%s)", i, p.TokenIn)
		}
		if p.VenueA == "" || p.VenueB == "" {
			return fmt.Errorf("arbitrage.pairs[%d]: venue_a and venue_b are required", i)
		}
		if p.VenueA == p.VenueB {
			return fmt.Errorf("arbitrage.pairs[%d]: venue_a equals venue_b (%s)", i, p.VenueA)
		}
	}
	if c.Arbitrage.MinProbeSize <= 0 {
		return fmt.Errorf("arbitrage.min_probe_size must be positive")
	}
	if c.Arbitrage.MaxProbeSize < c.Arbitrage.MinProbeSize {
		return fmt.Errorf("arbitrage.max_probe_size must be >= min_probe_size")
	}
	if c.Arbitrage.ProbeSteps < 1 {
		return fmt.Errorf("arbitrage.probe_steps must be >= 1")
	}
	if c.Arbitrage.FlashloanFeeRate < 0 || c.Arbitrage.SlippageToleranceRate < 0 {
		return fmt.Errorf("fee and slippage rates must be non-negative")
	}
	if c.Arbitrage.GasCostFallbackUSD < 0 {
		return fmt.Errorf("arbitrage.gas_cost_fallback_usd must be non-negative")
	}
	if c.Arbitrage.MaxConcurrentPairs < 1 {
		return fmt.Errorf("arbitrage.max_concurrent_pairs must be >= 1")
	}
	if c.Arbitrage.ExecutionThresholdUSD < 0 {
		return fmt.Errorf("arbitrage.execution_threshold_usd must be non-negative")
	}
	if c.Arbitrage.MaxProfitCeilingUSD <= c.Arbitrage.ExecutionThresholdUSD {
		return fmt.Errorf("arbitrage.max_profit_ceiling_usd must exceed execution_threshold_usd")
	}
	return nil
}
