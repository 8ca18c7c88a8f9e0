package token

import (
	"fmt"
	"sync"
)

// Chain IDs used by the scanner. Solana has no EVM chain ID; zero tags it.
const (
	ChainIDEthereum uint64 = 1
	ChainIDBase     uint64 = 8453
	ChainIDSolana   uint64 = 0
)

// Well-known tokens.
var (
	BaseUSDC  = MustNew(ChainIDBase, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", "USDC", 6)
	BaseWETH  = MustNew(ChainIDBase, "0x4200000000000000000000000000000000000006", "WETH", 18)
	BaseCBETH = MustNew(ChainIDBase, "0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22", "CBETH", 18)
	BaseAERO  = MustNew(ChainIDBase, "0x940181a94A35A4569E4529A3CDfB74e38FD98631", "AERO", 18)

	SolSOL  = MustNew(ChainIDSolana, "So11111111111111111111111111111111111111112", "SOL", 9)
	SolUSDC = MustNew(ChainIDSolana, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "SOLUSDC", 6)
	SolUSDT = MustNew(ChainIDSolana, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "SOLUSDT", 6)
)

// Registry maps symbols to tokens. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]Token
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]Token)}
}

// Register adds or replaces a token by symbol.
func (r *Registry) Register(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.Symbol] = t
}

// Get looks a token up by symbol.
func (r *Registry) Get(symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[symbol]
	return t, ok
}

// MustGet is Get that panics on a missing symbol; for static wiring.
func (r *Registry) MustGet(symbol string) Token {
	t, ok := r.Get(symbol)
	if !ok {
		panic(fmt.Sprintf("token: %q not registered", symbol))
	}
	return t
}

// Count returns the number of registered tokens.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// DefaultRegistry returns a registry pre-loaded with the well-known tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []Token{
		BaseUSDC, BaseWETH, BaseCBETH, BaseAERO,
		SolSOL, SolUSDC, SolUSDT,
	} {
		r.Register(t)
	}
	return r
}
