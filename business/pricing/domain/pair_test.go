package domain

import (
	"testing"

	"github.com/0xarbiter/arbscan/internal/token"
)

func TestParseVenueKind(t *testing.T) {
	for _, s := range []string{"uniswap", "aerodrome", "jupiter"} {
		kind, err := ParseVenueKind(s)
		if err != nil {
			t.Errorf("ParseVenueKind(%q): %v", s, err)
		}
		if string(kind) != s {
			t.Errorf("ParseVenueKind(%q) = %s", s, kind)
		}
	}

	if _, err := ParseVenueKind("binance"); err == nil {
		t.Error("unknown venue must not parse")
	}
	if _, err := ParseVenueKind(""); err == nil {
		t.Error("empty venue must not parse")
	}
}

func TestVenue_String(t *testing.T) {
	tests := []struct {
		venue Venue
		want  string
	}{
		{UniswapVenue(500), "uniswap/500"},
		{UniswapVenue(3000), "uniswap/3000"},
		{AerodromeVenue(false), "aerodrome/volatile"},
		{AerodromeVenue(true), "aerodrome/stable"},
		{JupiterVenue(), "jupiter"},
	}
	for _, tt := range tests {
		if got := tt.venue.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestNewPair(t *testing.T) {
	p, err := NewPair(token.BaseWETH, token.BaseUSDC)
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	if p.String() != "WETH-USDC" {
		t.Errorf("String() = %s, want WETH-USDC", p)
	}

	inv := p.Invert()
	if inv.TokenIn != token.BaseUSDC || inv.TokenOut != token.BaseWETH {
		t.Errorf("Invert() = %s, want USDC-WETH", inv)
	}

	if _, err := NewPair(token.BaseWETH, token.BaseWETH); err == nil {
		t.Error("identical tokens must not form a pair")
	}
	if _, err := NewPair(token.Token{}, token.BaseUSDC); err == nil {
		t.Error("zero token must not form a pair")
	}
}

func TestInstrument_String(t *testing.T) {
	inst := Instrument{
		Pair:   MustNewPair(token.BaseWETH, token.BaseUSDC),
		VenueA: UniswapVenue(500),
		VenueB: AerodromeVenue(false),
	}
	want := "WETH-USDC[uniswap/500|aerodrome/volatile]"
	if got := inst.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
