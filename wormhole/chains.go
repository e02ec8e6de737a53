/*
Package wormhole talks to the cross-chain messaging network: it maps chain
names to wormhole chain ids and fetches signed VAAs from the guardian API.
*/
package wormhole

// ChainId is the wormhole identifier of a chain, distinct from its native
// chain id.
type ChainId uint16

const (
	// ChainIdUnset is what an unmapped chain name resolves to. Relay calls
	// made with it are expected to be rejected downstream.
	ChainIdUnset ChainId = 0

	ChainIdSolana   ChainId = 1
	ChainIdEthereum ChainId = 2
	ChainIdPolygon  ChainId = 5
	ChainIdSui      ChainId = 21
	ChainIdArbitrum ChainId = 23
	ChainIdOptimism ChainId = 24
	ChainIdBase     ChainId = 30
	ChainIdSei      ChainId = 32
	ChainIdStarknet ChainId = 40
)

// chainIdsByName is the static chain-name lookup used when wiring a
// redemption handler. Names absent from the table resolve to ChainIdUnset;
// that is deliberate and only surfaced via logs.
var chainIdsByName = map[string]ChainId{
	"Solana":      ChainIdSolana,
	"Ethereum":    ChainIdEthereum,
	"Sepolia":     ChainIdEthereum,
	"Polygon":     ChainIdPolygon,
	"Sui":         ChainIdSui,
	"SuiTestnet":  ChainIdSui,
	"ArbitrumOne": ChainIdArbitrum,
	"Arbitrum":    ChainIdArbitrum,
	"Optimism":    ChainIdOptimism,
	"Base":        ChainIdBase,
	"BaseSepolia": ChainIdBase,
	"Sei":         ChainIdSei,
	"Starknet":    ChainIdStarknet,
}

// ChainIdFromName resolves a configured chain name to its wormhole chain id.
// The second return reports whether the name was present in the table.
func ChainIdFromName(name string) (ChainId, bool) {
	id, ok := chainIdsByName[name]
	if !ok {
		return ChainIdUnset, false
	}
	return id, true
}
