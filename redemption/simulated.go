package redemption

import (
	"context"
	"math/big"

	"github.com/bitbridge-io/relay-go/wormhole"
)

// SimulatedRelayClient scripts the L1 relay call for tests. Result carries
// whatever hash shape the scenario wants normalized.
type SimulatedRelayClient struct {
	Result interface{}
	Err    error

	Calls           int
	LastAmount      *big.Int
	LastVaa         []byte
	LastDestination wormhole.ChainId
}

func (s *SimulatedRelayClient) Relay(_ context.Context, amount *big.Int, signedVaa []byte, destination wormhole.ChainId) (interface{}, error) {
	s.Calls++
	s.LastAmount = amount
	s.LastVaa = signedVaa
	s.LastDestination = destination
	return s.Result, s.Err
}

// NewSimulatedHandler builds a handler on a scripted relay client, skipping
// the provider/signer construction in Initialize.
func NewSimulatedHandler(h *Handler, relay RelayClient) *Handler {
	h.relay = relay
	return h
}
