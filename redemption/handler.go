/*
Package redemption relays signed VAAs proving L2 redemptions back to the L1
redeemer contract. Only EVM chains participate; the subsystem keeps its own
factory and registry, independent of the deposit handlers.
*/
package redemption

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/common"
	"github.com/bitbridge-io/relay-go/wormhole"
)

// Error substrings with dedicated operator-facing messages. Everything else
// gets the generic log.
const (
	errVaaAlreadyRedeemed = "VAA has already been redeemed"
	errInsufficientFunds  = "insufficient funds"
)

// RelayClient performs the actual L1 relay call and waits for one
// confirmation. The returned hash value varies by implementation: a type
// with a Hex() accessor, a type with a bare String() accessor, or a raw
// string with or without the 0x prefix.
type RelayClient interface {
	Relay(ctx context.Context, amount *big.Int, signedVaa []byte, destination wormhole.ChainId) (interface{}, error)
}

type Handler struct {
	cfg *chain.Config

	// destination the L2 chain name mapped to; ChainIdUnset when the name
	// is not in the lookup table (degraded, the relay call then rejects)
	destination wormhole.ChainId

	relay RelayClient
}

// New builds an uninitialized handler. Initialize must run before any relay
// call.
func New(cfg *chain.Config) *Handler {
	return &Handler{cfg: cfg}
}

// Initialize validates the L1 settings, builds provider and signer, and
// resolves the chain name to its wormhole destination id. An unmapped chain
// name is non-fatal: the handler starts degraded with an unset destination.
func (h *Handler) Initialize(ctx context.Context) error {
	for field, value := range map[string]string{
		"L1RpcUrl":          h.cfg.L1RpcUrl,
		"L1ContractAddress": h.cfg.L1ContractAddress,
		"VaultAddress":      h.cfg.VaultAddress,
		"Network":           h.cfg.Network,
		"PrivateKey":        h.cfg.PrivateKey,
	} {
		if value == "" {
			return &chain.ConfigurationError{ChainName: h.cfg.ChainName, Field: field}
		}
	}

	destination, mapped := wormhole.ChainIdFromName(h.cfg.ChainName)
	h.destination = destination
	if !mapped {
		logger.WithField("chain", h.cfg.ChainName).
			Warn("chain name has no wormhole chain id mapping, redemption relay will run degraded")
	}

	if h.relay != nil {
		return nil
	}

	key, err := crypto.HexToECDSA(common.Trim0xPrefix(h.cfg.PrivateKey))
	if err != nil {
		return &chain.ConfigurationError{ChainName: h.cfg.ChainName, Field: "PrivateKey"}
	}
	client, err := ethclient.Dial(h.cfg.L1RpcUrl)
	if err != nil {
		return fmt.Errorf("dial L1 rpc: %w", err)
	}
	chainId, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("fetch L1 chain id: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainId)
	if err != nil {
		return fmt.Errorf("build L1 transactor: %w", err)
	}

	h.relay = newRedeemerContract(
		client,
		ethcommon.HexToAddress(h.cfg.L1ContractAddress),
		ethcommon.HexToAddress(h.cfg.VaultAddress),
		auth,
	)
	return nil
}

func (h *Handler) ChainName() string { return h.cfg.ChainName }

// normalizeTxHash canonicalizes the hash value a relay client returns into
// a 0x-prefixed string.
func normalizeTxHash(v interface{}) (string, error) {
	switch hash := v.(type) {
	case nil:
		return "", fmt.Errorf("relay call returned no transaction hash")
	case interface{ Hex() string }:
		return common.Prepend0xPrefix(hash.Hex()), nil
	case string:
		if hash == "" {
			return "", fmt.Errorf("relay call returned an empty transaction hash")
		}
		return common.Prepend0xPrefix(hash), nil
	case interface{ String() string }:
		s := hash.String()
		if s == "" {
			return "", fmt.Errorf("relay call returned an empty transaction hash")
		}
		return common.Prepend0xPrefix(s), nil
	default:
		return "", fmt.Errorf("relay call returned an unexpected hash type %T", v)
	}
}

// RelayRedemptionToL1 submits the signed VAA to the L1 redeemer and returns
// the normalized transaction hash, or "" on any failure. Never panics and
// never returns an error: failures are logged here.
func (h *Handler) RelayRedemptionToL1(ctx context.Context, amount *big.Int, signedVaa []byte, l2ChainName, l2TxHash string) string {
	log := logger.WithFields(logger.Fields{
		"chain":    h.cfg.ChainName,
		"l2Chain":  l2ChainName,
		"l2TxHash": l2TxHash,
	})

	if h.relay == nil {
		log.Error("redemption handler was never initialized, dropping relay request")
		return ""
	}

	raw, err := h.relay.Relay(ctx, amount, signedVaa, h.destination)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), errVaaAlreadyRedeemed):
			log.Info("redemption already completed through another path, nothing to do")
		case strings.Contains(err.Error(), errInsufficientFunds):
			log.WithError(err).Error("relayer account cannot fund the redemption transaction")
		default:
			log.WithError(err).Error("failed to relay redemption")
		}
		return ""
	}

	txHash, err := normalizeTxHash(raw)
	if err != nil {
		log.WithError(err).Error("relay call succeeded but produced no usable hash")
		return ""
	}

	log.WithField("txHash", txHash).Info("redemption relayed to L1")
	return txHash
}
