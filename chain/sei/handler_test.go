package sei

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/chain/evm"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

type noVaaFetcher struct{}

func (noVaaFetcher) GetVaa(context.Context, wormhole.ChainId, string, string) ([]byte, error) {
	return nil, nil
}

func testRevealEvent() *deposit.L1OutputEvent {
	return &deposit.L1OutputEvent{
		FundingTx: deposit.FundingTransaction{
			Version:      "0x01000000",
			InputVector:  "0x01" + strings.Repeat("00", 32) + "00000000" + "00" + "ffffffff",
			OutputVector: "0x01" + "1027000000000000" + "00",
			Locktime:     "0x00000000",
		},
		Reveal: deposit.Reveal{
			FundingOutputIndex:  0,
			BlindingFactor:      "0xf9f0c90d00039523",
			WalletPublicKeyHash: "0x8db50eb52063ea9d98b3eac91489a90f738986f6",
			RefundPublicKeyHash: "0x28e081f285138ccbe389c1eb8985716230129f89",
			RefundLocktime:      "0x60bcea61",
			Vault:               "0x594cfd89700040163727828AE20B52099C58F02C",
		},
		L2DepositOwner: "0x85A37A101E4D5D9b2EcDa0E15bC0AAcBA60e922B",
		L2Sender:       "0x3bC5F439554fcDfE5DB5c9f23cEa55A5B2649750",
	}
}

func TestHandlerReportsSeiChainType(t *testing.T) {
	cfg := &chain.Config{
		ChainName:   "SeiMainnet",
		ChainType:   chain.TypeSei,
		ChainId:     1329,
		UseEndpoint: true,
	}
	store := deposit.NewSimulatedStore()
	deps := chain.Deps{Store: store, Audit: audit.NewLogPublisher(), Vaa: noVaaFetcher{}}

	h := &Handler{inner: evm.NewSimulatedHandler(cfg, deps, &evm.SimulatedL1Depositor{}, nil)}

	assert.Equal(t, chain.TypeSei, h.ChainType())
	assert.Equal(t, "SeiMainnet", h.ChainName())
	assert.Equal(t, uint64(1329), h.ChainId())
	assert.False(t, h.SupportsPastDepositCheck())
	assert.Zero(t, h.GetLatestBlock(context.Background()))
}

func TestHandlerDelegatesLifecycleToEvm(t *testing.T) {
	ctx := context.Background()
	cfg := &chain.Config{
		ChainName:   "SeiMainnet",
		ChainType:   chain.TypeSei,
		ChainId:     1329,
		UseEndpoint: true,
	}
	store := deposit.NewSimulatedStore()
	deps := chain.Deps{Store: store, Audit: audit.NewLogPublisher(), Vaa: noVaaFetcher{}}
	l1 := &evm.SimulatedL1Depositor{}
	h := &Handler{inner: evm.NewSimulatedHandler(cfg, deps, l1, nil)}

	// endpoint-mode intake runs through the shared ingestion path
	ev := testRevealEvent()
	h.Ingest(ctx, ev)
	require.Equal(t, 1, store.Count())

	txHash, err := ev.FundingTx.Hash()
	require.NoError(t, err)
	d, err := store.GetById(ctx, deposit.GetDepositId(txHash, ev.Reveal.FundingOutputIndex))
	require.NoError(t, err)
	require.NotNil(t, d)

	l1.InitializeErr = context.DeadlineExceeded
	res := h.InitializeDeposit(ctx, d)
	assert.Nil(t, res)
	assert.Equal(t, 1, l1.InitializeCalls)
	assert.Equal(t, deposit.StatusQueued, d.Status)
}
