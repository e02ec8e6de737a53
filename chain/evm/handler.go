/*
Package evm implements the chain handler for EVM destination chains
(Ethereum L2s such as Arbitrum, Base, Optimism). It submits the L1
initialize/finalize transactions, ingests DepositInitialized events from the
L2 depositor contract and relays wormhole VAAs to the L2 gateway.
*/
package evm

import (
	"context"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/common"
	"github.com/bitbridge-io/relay-go/deposit"
)

// on-chain deposit states of the L1 depositor contract
const (
	depositStateUnknown uint8 = 0
)

type Handler struct {
	cfg  *chain.Config
	deps chain.Deps

	ingestor *chain.Ingestor

	l1Client    *ethclient.Client
	l2Client    *ethclient.Client
	l1Depositor L1Depositor
	l2Gateway   L2Gateway

	l2ContractAddress ethcommon.Address

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ chain.Handler = (*Handler)(nil)

func New(cfg *chain.Config, deps chain.Deps) (*Handler, error) {
	for field, value := range map[string]string{
		"ChainName":         cfg.ChainName,
		"L1RpcUrl":          cfg.L1RpcUrl,
		"L1ContractAddress": cfg.L1ContractAddress,
		"PrivateKey":        cfg.PrivateKey,
	} {
		if value == "" {
			return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: field}
		}
	}

	key, err := crypto.HexToECDSA(common.Trim0xPrefix(cfg.PrivateKey))
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "PrivateKey"}
	}

	l1Client, err := ethclient.Dial(cfg.L1RpcUrl)
	if err != nil {
		return nil, err
	}

	l1ChainId, err := l1Client.ChainID(context.Background())
	if err != nil {
		return nil, err
	}
	l1Auth, err := bind.NewKeyedTransactorWithChainID(key, l1ChainId)
	if err != nil {
		return nil, err
	}

	l1Confirmations := cfg.L1Confirmations
	if l1Confirmations == 0 {
		l1Confirmations = 1
	}

	h := &Handler{
		cfg:  cfg,
		deps: deps,
		ingestor: &chain.Ingestor{
			ChainId:   cfg.ChainId,
			ChainName: cfg.ChainName,
			Store:     deps.Store,
			Audit:     deps.Audit,
		},
		l1Client: l1Client,
		l1Depositor: newL1Contract(
			l1Client, ethcommon.HexToAddress(cfg.L1ContractAddress), l1Auth, l1Confirmations),
	}

	// the L2 client also serves wormhole bridging, so it is built even in
	// endpoint mode as long as an RPC is configured
	if cfg.L2RpcUrl != "" {
		l2Client, err := ethclient.Dial(cfg.L2RpcUrl)
		if err != nil {
			return nil, err
		}
		h.l2Client = l2Client
		h.l2ContractAddress = ethcommon.HexToAddress(cfg.L2ContractAddress)

		if cfg.L2WormholeGatewayAddress != "" {
			l2Auth, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(cfg.ChainId))
			if err != nil {
				return nil, err
			}
			l2Confirmations := cfg.L2Confirmations
			if l2Confirmations == 0 {
				l2Confirmations = 1
			}
			h.l2Gateway = newL2Gateway(
				l2Client, ethcommon.HexToAddress(cfg.L2WormholeGatewayAddress), l2Auth, l2Confirmations)
		}
	}

	return h, nil
}

// newHandlerWithBackends wires pre-built backends; used by tests and by the
// sei handler.
func newHandlerWithBackends(cfg *chain.Config, deps chain.Deps, l1 L1Depositor, l2 L2Gateway) *Handler {
	return &Handler{
		cfg:  cfg,
		deps: deps,
		ingestor: &chain.Ingestor{
			ChainId:   cfg.ChainId,
			ChainName: cfg.ChainName,
			Store:     deps.Store,
			Audit:     deps.Audit,
		},
		l1Depositor: l1,
		l2Gateway:   l2,
	}
}

func (h *Handler) ChainName() string          { return h.cfg.ChainName }
func (h *Handler) ChainType() chain.ChainType { return chain.TypeEvm }
func (h *Handler) ChainId() uint64            { return h.cfg.ChainId }

func (h *Handler) log(d *deposit.Deposit) *logger.Entry {
	entry := logger.WithField("chain", h.cfg.ChainName)
	if d != nil {
		entry = entry.WithField("depositId", d.Id)
	}
	return entry
}

func (h *Handler) updateDeposit(ctx context.Context, d *deposit.Deposit) {
	if err := h.deps.Store.Update(ctx, d); err != nil {
		h.log(d).WithError(err).Error("failed to persist deposit")
	}
}

// InitializeDeposit submits the reveal-accepted transaction on L1 and waits
// for it to confirm. All failure modes end here; callers only ever see nil.
func (h *Handler) InitializeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	log := h.log(d)

	depositKey, ok := new(big.Int).SetString(d.Id, 10)
	if !ok {
		log.Error("deposit id is not a decimal string")
		return nil
	}

	state, err := h.l1Depositor.DepositState(ctx, depositKey)
	if err != nil {
		log.WithError(err).Error("failed to read on-chain deposit state")
		return nil
	}
	if state != depositStateUnknown {
		log.WithField("state", state).Info("deposit already initialized on-chain, skip submission")
		return nil
	}

	fundingTx := toABIFundingTx(&d.L1OutputEvent.FundingTx)
	reveal := toABIReveal(&d.L1OutputEvent, &d.Receipt)
	owner := ownerToBytes32(d.L1OutputEvent.L2DepositOwner)

	receipt, err := h.l1Depositor.InitializeDeposit(ctx, fundingTx, reveal, owner)
	if err != nil {
		// submission error: deposit left untouched, retried by a later tick
		log.WithError(err).Error("failed to submit initialize transaction")
		return nil
	}

	txHash := receipt.TxHash.Hex()
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.WithField("txHash", txHash).Warn("initialize transaction reverted")
		d.SetError("initialize transaction reverted: " + txHash)
		h.updateDeposit(ctx, d)
		return nil
	}

	if err := d.MarkInitialized(txHash); err != nil {
		log.WithError(err).Warn("refusing to regress deposit status")
		return nil
	}
	h.updateDeposit(ctx, d)
	h.deps.Audit.Publish(audit.Record{
		Event:     audit.DepositInitialized,
		DepositId: d.Id,
		ChainName: h.cfg.ChainName,
		TxHash:    txHash,
	})
	log.WithField("txHash", txHash).Info("deposit initialized")

	return &chain.TxResult{TxHash: txHash, BlockNumber: receipt.BlockNumber.Uint64()}
}

// FinalizeDeposit submits the finalize transaction and, when the receipt
// carries a wormhole LogMessagePublished event, advances the deposit
// straight to AWAITING_WORMHOLE_VAA.
func (h *Handler) FinalizeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	log := h.log(d)

	depositKey, ok := new(big.Int).SetString(d.Id, 10)
	if !ok {
		log.Error("deposit id is not a decimal string")
		return nil
	}

	receipt, err := h.l1Depositor.FinalizeDeposit(ctx, depositKey)
	if err != nil {
		log.WithError(err).Error("failed to submit finalize transaction")
		return nil
	}

	txHash := receipt.TxHash.Hex()
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.WithField("txHash", txHash).Warn("finalize transaction reverted")
		d.SetError("finalize transaction reverted: " + txHash)
		h.updateDeposit(ctx, d)
		return nil
	}

	if err := d.MarkFinalized(txHash); err != nil {
		log.WithError(err).Warn("refusing to regress deposit status")
		return nil
	}

	event := audit.DepositFinalized
	if sequence, found := extractTransferSequence(receipt.Logs); found {
		if err := d.MarkAwaitingWormholeVAA(txHash, sequence); err != nil {
			log.WithError(err).Warn("refusing to regress deposit status")
		} else {
			event = audit.DepositAwaitingVAA
			log.WithField("sequence", sequence).Info("wormhole transfer sequence captured")
		}
	} else {
		// non-fatal: some configurations never bridge
		log.WithField("txHash", txHash).Warn("finalize receipt carries no wormhole transfer sequence")
	}

	h.updateDeposit(ctx, d)
	h.deps.Audit.Publish(audit.Record{
		Event:     event,
		DepositId: d.Id,
		ChainName: h.cfg.ChainName,
		TxHash:    txHash,
	})
	log.WithField("txHash", txHash).Info("deposit finalized")

	return &chain.TxResult{TxHash: txHash, BlockNumber: receipt.BlockNumber.Uint64()}
}

// extractTransferSequence scans receipt logs for the wormhole core
// LogMessagePublished event and returns its sequence as a decimal string.
func extractTransferSequence(logs []*types.Log) (string, bool) {
	for _, vlog := range logs {
		if len(vlog.Topics) == 0 || vlog.Topics[0] != LogMessagePublishedSignatureHash {
			continue
		}
		var ev logMessagePublishedEvent
		if err := parsedWormholeABI.UnpackIntoInterface(&ev, "LogMessagePublished", vlog.Data); err != nil {
			logger.WithError(err).Warn("failed to unpack LogMessagePublished event")
			continue
		}
		return strconv.FormatUint(ev.Sequence, 10), true
	}
	return "", false
}

// ownerToBytes32 left-pads an EVM address into the bytes32 deposit-owner
// slot of initializeDeposit.
func ownerToBytes32(owner string) [32]byte {
	var out [32]byte
	b := common.HexStrToByteSlice(owner)
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}

func (h *Handler) GetLatestBlock(ctx context.Context) uint64 {
	if h.cfg.UseEndpoint || h.l2Client == nil {
		return 0
	}
	block, err := h.l2Client.BlockNumber(ctx)
	if err != nil {
		logger.WithField("chain", h.cfg.ChainName).WithError(err).Error("failed to get latest L2 block")
		return 0
	}
	return block
}

func (h *Handler) SupportsPastDepositCheck() bool {
	return h.l2Client != nil && !h.cfg.UseEndpoint
}

func (h *Handler) Ingest(ctx context.Context, ev *deposit.L1OutputEvent) {
	h.ingestor.HandleDepositEvent(ctx, ev)
}

func (h *Handler) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
}
