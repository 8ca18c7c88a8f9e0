// Package token provides chain-aware token identities and exact integer
// amounts in the token's smallest unit.
package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies an asset on a specific chain. Address is the hex
// contract address for EVM chains and the base58 mint for Solana.
type Token struct {
	Address  string
	Symbol   string
	Decimals uint8
	ChainID  uint64
}

// New creates a Token, validating EVM addresses.
func New(chainID uint64, address, symbol string, decimals uint8) (Token, error) {
	if symbol == "" {
		return Token{}, fmt.Errorf("token: symbol is required")
	}
	if address == "" {
		return Token{}, fmt.Errorf("token: address is required for %s", symbol)
	}
	t := Token{Address: address, Symbol: symbol, Decimals: decimals, ChainID: chainID}
	if t.IsEVM() && !common.IsHexAddress(address) {
		return Token{}, fmt.Errorf("token: invalid EVM address %q for %s", address, symbol)
	}
	return t, nil
}

// MustNew is New that panics; for static token tables.
func MustNew(chainID uint64, address, symbol string, decimals uint8) Token {
	t, err := New(chainID, address, symbol, decimals)
	if err != nil {
		panic(err)
	}
	return t
}

// IsEVM reports whether the token lives on an EVM chain.
func (t Token) IsEVM() bool {
	return t.ChainID != ChainIDSolana
}

// EVMAddress returns the token address as common.Address.
func (t Token) EVMAddress() (common.Address, error) {
	if !t.IsEVM() {
		return common.Address{}, fmt.Errorf("token: %s is not an EVM token", t.Symbol)
	}
	return common.HexToAddress(t.Address), nil
}

// Equals reports identity by chain and address.
func (t Token) Equals(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// IsZero reports whether the token is the zero value.
func (t Token) IsZero() bool {
	return t.Address == "" && t.Symbol == ""
}

// String returns the symbol.
func (t Token) String() string {
	return t.Symbol
}
