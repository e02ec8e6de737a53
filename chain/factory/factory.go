// Package factory maps chain types to their handler constructors. It lives
// outside the chain package so the registry does not import the per-chain
// implementations.
package factory

import (
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/chain/evm"
	"github.com/bitbridge-io/relay-go/chain/sei"
	"github.com/bitbridge-io/relay-go/chain/solana"
	"github.com/bitbridge-io/relay-go/chain/starknet"
	"github.com/bitbridge-io/relay-go/chain/sui"
)

// Default builds the production handler for one chain config.
func Default(cfg *chain.Config, deps chain.Deps) (chain.Handler, error) {
	switch cfg.ChainType {
	case chain.TypeEvm:
		return evm.New(cfg, deps)
	case chain.TypeSei:
		return sei.New(cfg, deps)
	case chain.TypeSui:
		return sui.New(cfg, deps)
	case chain.TypeSolana:
		return solana.New(cfg, deps)
	case chain.TypeStarknet:
		return starknet.New(cfg, deps)
	}
	return nil, &chain.UnsupportedChainTypeError{ChainType: cfg.ChainType}
}
