/*
Package sui implements the chain handler for Sui. The L1 initialize and
finalize stages run on Ethereum and are shared with the evm handler; the
destination-side redeem is a Move call against the bridge package. Reveal
events arrive over the HTTP endpoint, so no on-chain listeners are set up.
*/
package sui

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/chain/evm"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

type Handler struct {
	cfg  *chain.Config
	deps chain.Deps

	// l1 drives the shared Ethereum-side lifecycle stages
	l1       *evm.Handler
	relayer  Relayer
	ingestor *chain.Ingestor
}

var _ chain.Handler = (*Handler)(nil)

func New(cfg *chain.Config, deps chain.Deps) (*Handler, error) {
	for field, value := range map[string]string{
		"L2RpcUrl":            cfg.L2RpcUrl,
		"SuiPackageId":        cfg.SuiPackageId,
		"SuiBridgeObjectId":   cfg.SuiBridgeObjectId,
		"WormholeCoreStateId": cfg.WormholeCoreStateId,
		"TokenBridgeStateId":  cfg.TokenBridgeStateId,
	} {
		if value == "" {
			return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: field}
		}
	}

	relayer, err := newMoveClient(cfg)
	if err != nil {
		return nil, err
	}

	// the evm constructor must not treat the Sui RPC as an ethereum L2
	l1Cfg := *cfg
	l1Cfg.L2RpcUrl = ""
	l1Cfg.L2WsUrl = ""
	l1, err := evm.New(&l1Cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Handler{
		cfg:     cfg,
		deps:    deps,
		l1:      l1,
		relayer: relayer,
		ingestor: &chain.Ingestor{
			ChainId:   cfg.ChainId,
			ChainName: cfg.ChainName,
			Store:     deps.Store,
			Audit:     deps.Audit,
		},
	}, nil
}

func (h *Handler) ChainName() string          { return h.cfg.ChainName }
func (h *Handler) ChainType() chain.ChainType { return chain.TypeSui }
func (h *Handler) ChainId() uint64            { return h.cfg.ChainId }

func (h *Handler) InitializeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	return h.l1.InitializeDeposit(ctx, d)
}

func (h *Handler) FinalizeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	return h.l1.FinalizeDeposit(ctx, d)
}

func (h *Handler) emitterChain() wormhole.ChainId {
	if h.cfg.L1WormholeChainId != 0 {
		return wormhole.ChainId(h.cfg.L1WormholeChainId)
	}
	return wormhole.ChainIdEthereum
}

// ProcessWormholeBridging redeems pending VAAs on the Sui side. Failures
// are logged and retried on the next tick.
func (h *Handler) ProcessWormholeBridging(ctx context.Context) {
	pending, err := h.deps.Store.GetByStatus(ctx, deposit.StatusAwaitingWormholeVAA, h.cfg.ChainId)
	if err != nil {
		logger.WithError(err).WithField("chain", h.cfg.ChainName).Error("failed to list deposits awaiting VAA")
		return
	}

	for _, d := range pending {
		h.bridgeDeposit(ctx, d)
	}
}

func (h *Handler) bridgeDeposit(ctx context.Context, d *deposit.Deposit) {
	log := logger.WithFields(logger.Fields{
		"chain":     h.cfg.ChainName,
		"depositId": d.Id,
	})

	sequence := d.WormholeInfo.TransferSequence
	if sequence == "" {
		log.Warn("deposit awaiting VAA has no transfer sequence, skip")
		return
	}

	vaa, err := h.deps.Vaa.GetVaa(ctx, h.emitterChain(), h.cfg.L1WormholeEmitterAddress, sequence)
	if err != nil {
		log.WithError(err).Warn("failed to fetch VAA, will retry")
		return
	}
	if vaa == nil {
		log.Debug("VAA not yet signed, will retry")
		return
	}

	digest, err := h.relayer.RedeemVaa(ctx, vaa)
	if err != nil {
		log.WithError(err).Warn("failed to redeem VAA, will retry")
		return
	}

	if err := d.MarkBridged(digest); err != nil {
		log.WithError(err).Warn("refusing to regress deposit status")
		return
	}
	if err := h.deps.Store.Update(ctx, d); err != nil {
		log.WithError(err).Error("failed to persist deposit")
		return
	}
	h.deps.Audit.Publish(audit.Record{
		Event:     audit.DepositBridged,
		DepositId: d.Id,
		ChainName: h.cfg.ChainName,
		TxHash:    digest,
	})
	log.WithField("digest", digest).Info("deposit bridged")
}

// GetLatestBlock has no meaning for endpoint-mode ingestion.
func (h *Handler) GetLatestBlock(context.Context) uint64 { return 0 }

func (h *Handler) CheckForPastDeposits(context.Context, chain.PastDepositsOptions) {}

func (h *Handler) SupportsPastDepositCheck() bool { return false }

// SetupL2Listeners is a no-op: reveal events for Sui arrive through the
// HTTP endpoint and are fed to Ingest.
func (h *Handler) SetupL2Listeners(context.Context) error {
	logger.WithField("chain", h.cfg.ChainName).Info("endpoint mode, no on-chain listeners")
	return nil
}

func (h *Handler) Ingest(ctx context.Context, ev *deposit.L1OutputEvent) {
	h.ingestor.HandleDepositEvent(ctx, ev)
}

func (h *Handler) Stop() {
	h.l1.Stop()
}
