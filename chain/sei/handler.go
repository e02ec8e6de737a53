// Package sei implements the chain handler for Sei. Sei exposes a full
// EVM-compatible execution layer, so the handler delegates every lifecycle
// operation to the evm handler and only reports its own chain type. Sei
// runs in endpoint mode in practice: reveal events arrive over HTTP rather
// than from contract subscriptions.
package sei

import (
	"context"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/chain/evm"
	"github.com/bitbridge-io/relay-go/deposit"
)

type Handler struct {
	inner *evm.Handler
}

var _ chain.Handler = (*Handler)(nil)

func New(cfg *chain.Config, deps chain.Deps) (*Handler, error) {
	inner, err := evm.New(cfg, deps)
	if err != nil {
		return nil, err
	}
	return &Handler{inner: inner}, nil
}

func (h *Handler) ChainName() string          { return h.inner.ChainName() }
func (h *Handler) ChainType() chain.ChainType { return chain.TypeSei }
func (h *Handler) ChainId() uint64            { return h.inner.ChainId() }

func (h *Handler) InitializeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	return h.inner.InitializeDeposit(ctx, d)
}

func (h *Handler) FinalizeDeposit(ctx context.Context, d *deposit.Deposit) *chain.TxResult {
	return h.inner.FinalizeDeposit(ctx, d)
}

func (h *Handler) ProcessWormholeBridging(ctx context.Context) {
	h.inner.ProcessWormholeBridging(ctx)
}

func (h *Handler) GetLatestBlock(ctx context.Context) uint64 {
	return h.inner.GetLatestBlock(ctx)
}

func (h *Handler) CheckForPastDeposits(ctx context.Context, opts chain.PastDepositsOptions) {
	h.inner.CheckForPastDeposits(ctx, opts)
}

func (h *Handler) SupportsPastDepositCheck() bool {
	return h.inner.SupportsPastDepositCheck()
}

func (h *Handler) SetupL2Listeners(ctx context.Context) error {
	return h.inner.SetupL2Listeners(ctx)
}

func (h *Handler) Ingest(ctx context.Context, ev *deposit.L1OutputEvent) {
	h.inner.Ingest(ctx, ev)
}

func (h *Handler) Stop() {
	h.inner.Stop()
}
