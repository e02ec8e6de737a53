package evm

import (
	"context"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

func (h *Handler) emitterChain() wormhole.ChainId {
	if h.cfg.L1WormholeChainId != 0 {
		return wormhole.ChainId(h.cfg.L1WormholeChainId)
	}
	return wormhole.ChainIdEthereum
}

// ProcessWormholeBridging walks every deposit of this chain that is waiting
// for guardian consensus. Deposits whose VAA is not yet available are left
// untouched and picked up again on the next tick.
func (h *Handler) ProcessWormholeBridging(ctx context.Context) {
	deposits, err := h.deps.Store.GetByStatus(ctx, deposit.StatusAwaitingWormholeVAA, h.cfg.ChainId)
	if err != nil {
		logger.WithField("chain", h.cfg.ChainName).WithError(err).Error("failed to load deposits awaiting VAA")
		return
	}

	for _, d := range deposits {
		h.bridgeDeposit(ctx, d)
	}
}

func (h *Handler) bridgeDeposit(ctx context.Context, d *deposit.Deposit) {
	log := h.log(d)

	sequence := d.WormholeInfo.TransferSequence
	if sequence == "" {
		// malformed state, not auto-repaired
		log.Warn("deposit awaiting VAA has no transfer sequence, skip")
		return
	}

	vaa, err := h.deps.Vaa.GetVaa(ctx, h.emitterChain(), h.cfg.L1WormholeEmitterAddress, sequence)
	if err != nil {
		log.WithError(err).Warn("failed to fetch VAA")
		return
	}
	if vaa == nil {
		log.WithField("sequence", sequence).Debug("VAA not yet signed by guardians")
		return
	}

	if h.l2Gateway == nil {
		log.Warn("no L2 wormhole gateway configured, cannot bridge")
		return
	}

	receipt, err := h.l2Gateway.ReceiveTbtc(ctx, vaa)
	if err != nil {
		log.WithError(err).Warn("failed to submit wormhole redeem, will retry")
		return
	}
	if receipt == nil || receipt.TxHash == (ethcommon.Hash{}) {
		log.Warn("wormhole redeem returned no transaction hash, will retry")
		return
	}

	txHash := receipt.TxHash.Hex()
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.WithField("txHash", txHash).Warn("wormhole redeem transaction reverted, will retry")
		return
	}

	if err := d.MarkBridged(txHash); err != nil {
		log.WithError(err).Warn("refusing to regress deposit status")
		return
	}
	h.updateDeposit(ctx, d)
	h.deps.Audit.Publish(audit.Record{
		Event:     audit.DepositBridged,
		DepositId: d.Id,
		ChainName: h.cfg.ChainName,
		TxHash:    txHash,
	})
	log.WithField("txHash", txHash).Info("deposit bridged")
}
