// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"

	"github.com/0xarbiter/arbscan/internal/token"
)

// VenueKind identifies a liquidity venue family.
type VenueKind string

const (
	// VenueUniswap is a concentrated-liquidity pool quoted through an
	// on-chain quoter contract.
	VenueUniswap VenueKind = "uniswap"
	// VenueAerodrome is a constant-product (or stable-curve) pool quoted
	// through an on-chain router.
	VenueAerodrome VenueKind = "aerodrome"
	// VenueJupiter is an off-chain aggregator quoted over HTTP.
	VenueJupiter VenueKind = "jupiter"
)

// ParseVenueKind converts a configured venue name into a VenueKind.
func ParseVenueKind(s string) (VenueKind, error) {
	switch VenueKind(s) {
	case VenueUniswap, VenueAerodrome, VenueJupiter:
		return VenueKind(s), nil
	}
	return "", fmt.Errorf("pricing: unknown venue %q", s)
}

// Venue tags a quote with its origin and the venue-specific routing
// parameters. Only the fields matching Kind are meaningful: FeeTier for
// concentrated liquidity, Stable for constant-product routers. Adapters
// must not inspect parameters belonging to another kind.
type Venue struct {
	Kind    VenueKind
	FeeTier int  // concentrated-liquidity fee tier in hundredths of a bip
	Stable  bool // stable-curve routing flag
}

// UniswapVenue builds a concentrated-liquidity venue tag.
func UniswapVenue(feeTier int) Venue {
	return Venue{Kind: VenueUniswap, FeeTier: feeTier}
}

// AerodromeVenue builds a constant-product venue tag.
func AerodromeVenue(stable bool) Venue {
	return Venue{Kind: VenueAerodrome, Stable: stable}
}

// JupiterVenue builds an aggregator venue tag.
func JupiterVenue() Venue {
	return Venue{Kind: VenueJupiter}
}

// String renders the venue with its routing parameter, e.g. "uniswap/500".
func (v Venue) String() string {
	switch v.Kind {
	case VenueUniswap:
		return fmt.Sprintf("%s/%d", v.Kind, v.FeeTier)
	case VenueAerodrome:
		if v.Stable {
			return string(v.Kind) + "/stable"
		}
		return string(v.Kind) + "/volatile"
	default:
		return string(v.Kind)
	}
}

// Pair represents a directed trading pair: spend TokenIn, receive TokenOut.
type Pair struct {
	TokenIn  token.Token
	TokenOut token.Token
}

// NewPair creates a trading pair. Both tokens must be set and distinct.
func NewPair(in, out token.Token) (Pair, error) {
	if in.IsZero() || out.IsZero() {
		return Pair{}, fmt.Errorf("pricing: pair requires both tokens")
	}
	if in.Equals(out) {
		return Pair{}, fmt.Errorf("pricing: pair tokens must differ (%s)", in.Symbol)
	}
	return Pair{TokenIn: in, TokenOut: out}, nil
}

// MustNewPair is NewPair that panics; for tests and static tables.
func MustNewPair(in, out token.Token) Pair {
	p, err := NewPair(in, out)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pair symbol, e.g. "USDC-WETH".
func (p Pair) String() string {
	return p.TokenIn.Symbol + "-" + p.TokenOut.Symbol
}

// Invert returns the reverse-direction pair.
func (p Pair) Invert() Pair {
	return Pair{TokenIn: p.TokenOut, TokenOut: p.TokenIn}
}

// Instrument is a pair quoted on two specific venues; one Instrument is one
// unit of scan work.
type Instrument struct {
	Pair   Pair
	VenueA Venue
	VenueB Venue
}

// String returns e.g. "USDC-WETH[uniswap/500|aerodrome/volatile]".
func (i Instrument) String() string {
	return fmt.Sprintf("%s[%s|%s]", i.Pair, i.VenueA, i.VenueB)
}
