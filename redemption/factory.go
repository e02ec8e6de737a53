package redemption

import (
	"github.com/bitbridge-io/relay-go/chain"
)

// Factory builds a redemption handler for one chain config.
type Factory func(cfg *chain.Config) (*Handler, error)

// DefaultFactory only supports EVM chains; every other chain type is
// refused at construction time.
func DefaultFactory(cfg *chain.Config) (*Handler, error) {
	if cfg.ChainType != chain.TypeEvm {
		return nil, &chain.UnsupportedChainTypeError{ChainType: cfg.ChainType}
	}
	return New(cfg), nil
}
