package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Name != "arbscan" {
		t.Errorf("App.Name = %s, want arbscan", cfg.App.Name)
	}
	if cfg.Ethereum.ChainID != 8453 {
		t.Errorf("Ethereum.ChainID = %d, want 8453", cfg.Ethereum.ChainID)
	}
	if cfg.Arbitrage.ExecutionThresholdUSD != 5.0 {
		t.Errorf("ExecutionThresholdUSD = %f, want 5.0", cfg.Arbitrage.ExecutionThresholdUSD)
	}
	if cfg.Arbitrage.SpreadEpsilonBps != 10.0 {
		t.Errorf("SpreadEpsilonBps = %f, want 10.0", cfg.Arbitrage.SpreadEpsilonBps)
	}
	if cfg.Arbitrage.ScanInterval != 10*time.Second {
		t.Errorf("ScanInterval = %s, want 10s", cfg.Arbitrage.ScanInterval)
	}
	if cfg.Arbitrage.QuoteTimeout != 4*time.Second {
		t.Errorf("QuoteTimeout = %s, want 4s", cfg.Arbitrage.QuoteTimeout)
	}
	if cfg.Arbitrage.MaxConcurrentPairs != 3 {
		t.Errorf("MaxConcurrentPairs = %d, want 3", cfg.Arbitrage.MaxConcurrentPairs)
	}
	if len(cfg.Arbitrage.Pairs) != 1 {
		t.Fatalf("Pairs = %d entries, want 1", len(cfg.Arbitrage.Pairs))
	}
	if p := cfg.Arbitrage.Pairs[0]; p.TokenIn != "WETH" || p.TokenOut != "USDC" {
		t.Errorf("default pair = %s-%s, want WETH-USDC", p.TokenIn, p.TokenOut)
	}
}

func TestLoad_FileOverridesAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  log_level: debug
arbitrage:
  execution_threshold_usd: 12.5
  scan_interval: 30s
  pairs:
    - token_in: WETH
      token_out: USDC
      venue_a: uniswap
      venue_b: jupiter
      fee_tier: 3000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ARB_ETH_HTTP_URL", "https://mainnet.base.org")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.App.LogLevel)
	}
	if cfg.Arbitrage.ExecutionThresholdUSD != 12.5 {
		t.Errorf("ExecutionThresholdUSD = %f, want 12.5", cfg.Arbitrage.ExecutionThresholdUSD)
	}
	if cfg.Arbitrage.ScanInterval != 30*time.Second {
		t.Errorf("ScanInterval = %s, want 30s", cfg.Arbitrage.ScanInterval)
	}
	if cfg.Ethereum.HTTPURL != "https://mainnet.base.org" {
		t.Errorf("HTTPURL = %s, want env value", cfg.Ethereum.HTTPURL)
	}
	if p := cfg.Arbitrage.Pairs[0]; p.VenueB != "jupiter" || p.FeeTier != 3000 {
		t.Errorf("pair = %+v, want jupiter venue with fee tier 3000", p)
	}
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad_quoter_address",
			mutate:  func(c *Config) { c.Venues.Uniswap.QuoterAddress = "not-an-address" },
			wantErr: "quoter_address",
		},
		{
			name:    "no_pairs",
			mutate:  func(c *Config) { c.Arbitrage.Pairs = nil },
			wantErr: "pairs cannot be empty",
		},
		{
			name:    "same_token_both_sides",
			mutate:  func(c *Config) { c.Arbitrage.Pairs[0].TokenOut = c.Arbitrage.Pairs[0].TokenIn },
			wantErr: "token_in equals token_out",
		},
		{
			name:    "same_venue_both_sides",
			mutate:  func(c *Config) { c.Arbitrage.Pairs[0].VenueB = c.Arbitrage.Pairs[0].VenueA },
			wantErr: "venue_a equals venue_b",
		},
		{
			name:    "zero_probe_size",
			mutate:  func(c *Config) { c.Arbitrage.MinProbeSize = 0 },
			wantErr: "min_probe_size",
		},
		{
			name:    "inverted_probe_range",
			mutate:  func(c *Config) { c.Arbitrage.MaxProbeSize = c.Arbitrage.MinProbeSize / 2 },
			wantErr: "max_probe_size",
		},
		{
			name:    "zero_steps",
			mutate:  func(c *Config) { c.Arbitrage.ProbeSteps = 0 },
			wantErr: "probe_steps",
		},
		{
			name:    "negative_fee_rate",
			mutate:  func(c *Config) { c.Arbitrage.FlashloanFeeRate = -0.1 },
			wantErr: "non-negative",
		},
		{
			name:    "ceiling_below_threshold",
			mutate:  func(c *Config) { c.Arbitrage.MaxProfitCeilingUSD = 1.0 },
			wantErr: "ceiling",
		},
		{
			name:    "zero_concurrency",
			mutate:  func(c *Config) { c.Arbitrage.MaxConcurrentPairs = 0 },
			wantErr: "max_concurrent_pairs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
