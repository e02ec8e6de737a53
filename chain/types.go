package chain

import "time"

// ChainType tags the handler implementation a configuration selects.
type ChainType string

const (
	TypeEvm      ChainType = "Evm"
	TypeSui      ChainType = "Sui"
	TypeSei      ChainType = "Sei"
	TypeSolana   ChainType = "Solana"
	TypeStarknet ChainType = "Starknet"
)

func (t ChainType) Valid() bool {
	switch t {
	case TypeEvm, TypeSui, TypeSei, TypeSolana, TypeStarknet:
		return true
	}
	return false
}

// Config holds the pre-validated per-chain settings. Fields not relevant to
// a chain type are left empty.
type Config struct {
	ChainName string
	ChainType ChainType
	ChainId   uint64 // destination chain id in its native numbering

	// L1 (ethereum) side
	L1RpcUrl          string
	L1ContractAddress string
	L1Confirmations   uint64
	VaultAddress      string
	Network           string // Mainnet, Testnet, Devnet

	// Wormhole emitter of the L1 finalize message
	L1WormholeChainId        uint16
	L1WormholeEmitterAddress string

	// L2 (destination) side
	L2RpcUrl                 string
	L2WsUrl                  string
	L2ContractAddress        string
	L2WormholeGatewayAddress string
	L2WormholeChainId        uint16
	L2Confirmations          uint64

	PrivateKey string

	EnableL2Redemption bool
	UseEndpoint        bool
	PollInterval       time.Duration

	// Sui object ids
	SuiPackageId        string
	SuiBridgeObjectId   string
	WormholeCoreStateId string
	TokenBridgeStateId  string

	// Solana
	SolanaCommitment string

	// Starknet
	StarknetAccountAddress string
}

// TxResult reports a confirmed, successful transaction of one lifecycle
// stage. Handlers return nil for anything else; the failure details go to
// the log and the deposit's error field, never to the caller.
type TxResult struct {
	TxHash      string
	BlockNumber uint64
}

// PastDepositsOptions bounds a catch-up query after downtime.
type PastDepositsOptions struct {
	PastTimeInMinutes int
	LatestBlock       uint64
}
