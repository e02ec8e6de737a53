package chain

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/deposit"
)

// Ingestor is the delivery-mechanism-independent half of event handling:
// once a handler has decoded its chain's binary encoding into an
// L1OutputEvent, dedup and persistence are identical everywhere.
//
// Idempotency is structural: the deterministic id plus an existence check,
// no locking. A duplicate event is a debug-logged no-op.
type Ingestor struct {
	ChainId   uint64
	ChainName string
	Store     deposit.Store
	Audit     audit.Publisher
}

// HandleDepositEvent validates the funding transaction, computes the
// deposit id and persists a new QUEUED deposit unless one already exists.
// Failures are logged and the event is dropped; nothing propagates.
func (ing *Ingestor) HandleDepositEvent(ctx context.Context, ev *deposit.L1OutputEvent) {
	log := logger.WithField("chain", ing.ChainName)

	fundingTxHash, err := ev.FundingTx.Hash()
	if err != nil {
		log.WithError(err).Warn("failed to decode funding transaction, dropping reveal event")
		return
	}

	id := deposit.GetDepositId(fundingTxHash, ev.Reveal.FundingOutputIndex)
	log = log.WithField("depositId", id)

	existing, err := ing.Store.GetById(ctx, id)
	if err != nil {
		log.WithError(err).Error("failed to check deposit existence")
		return
	}
	if existing != nil {
		log.Debug("deposit already exists, skip")
		return
	}

	d := deposit.New(ing.ChainId, ing.ChainName, fundingTxHash, ev)
	if err := ing.Store.Create(ctx, d); err != nil {
		log.WithError(err).Error("failed to create deposit")
		return
	}

	log.WithField("fundingTxHash", d.FundingTxHash).Info("deposit queued")
	ing.Audit.Publish(audit.Record{
		Event:     audit.DepositCreated,
		DepositId: d.Id,
		ChainName: ing.ChainName,
		TxHash:    d.FundingTxHash,
	})
}
