/*
Package chain defines the per-chain handler capability set and the registry
that owns one handler per configured chain.

A handler ingests reveal events from its destination chain, drives deposits
through the L1 initialize/finalize stages, and relays wormhole proofs to the
destination chain. Handler boundary methods never panic and never return
transport errors: failures are logged with structured context and reported
through sentinel returns only.
*/
package chain

import (
	"context"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

type Handler interface {
	ChainName() string
	ChainType() ChainType
	ChainId() uint64

	// InitializeDeposit submits the L1 reveal-accepted transaction and waits
	// for confirmation. Returns nil on revert or submission failure.
	InitializeDeposit(ctx context.Context, d *deposit.Deposit) *TxResult

	// FinalizeDeposit submits the L1 finalize transaction. For bridging
	// chains it also extracts the wormhole transfer sequence from the
	// receipt and advances the deposit to AWAITING_WORMHOLE_VAA.
	FinalizeDeposit(ctx context.Context, d *deposit.Deposit) *TxResult

	// ProcessWormholeBridging walks all AWAITING_WORMHOLE_VAA deposits of
	// this chain, fetching VAAs and submitting destination redeems.
	ProcessWormholeBridging(ctx context.Context)

	// GetLatestBlock returns 0 in endpoint mode or on RPC failure.
	GetLatestBlock(ctx context.Context) uint64

	CheckForPastDeposits(ctx context.Context, opts PastDepositsOptions)
	SupportsPastDepositCheck() bool

	// SetupL2Listeners starts the configured ingestion strategy (push
	// subscription or poll loop). A no-op in endpoint mode.
	SetupL2Listeners(ctx context.Context) error

	// Ingest feeds one decoded reveal event through dedup and persistence.
	// Endpoint mode delivers events here via HTTP.
	Ingest(ctx context.Context, ev *deposit.L1OutputEvent)

	Stop()
}

// Deps are the external collaborators every handler consumes.
type Deps struct {
	Store deposit.Store
	Audit audit.Publisher
	Vaa   wormhole.VaaFetcher
}

// HandlerFactory builds a handler for one chain config.
type HandlerFactory func(cfg *Config, deps Deps) (Handler, error)
