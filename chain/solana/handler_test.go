package solana

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

type simulatedRelayer struct {
	signature string
	redeemErr error

	calls int
}

func (s *simulatedRelayer) RedeemVaa(context.Context, []byte) (string, error) {
	s.calls++
	return s.signature, s.redeemErr
}

type fixedVaaFetcher struct {
	vaa []byte
}

func (f *fixedVaaFetcher) GetVaa(context.Context, wormhole.ChainId, string, string) ([]byte, error) {
	return f.vaa, nil
}

func newTestHandler(relayer *simulatedRelayer, vaa *fixedVaaFetcher) (*Handler, *deposit.SimulatedStore) {
	store := deposit.NewSimulatedStore()
	cfg := &chain.Config{
		ChainName:                "SolanaMainnet",
		ChainType:                chain.TypeSolana,
		ChainId:                  900,
		L1WormholeEmitterAddress: "000000000000000000000000deadbeef",
	}
	h := &Handler{
		cfg:     cfg,
		deps:    chain.Deps{Store: store, Audit: audit.NewLogPublisher(), Vaa: vaa},
		relayer: relayer,
		ingestor: &chain.Ingestor{
			ChainId:   cfg.ChainId,
			ChainName: cfg.ChainName,
			Store:     store,
			Audit:     audit.NewLogPublisher(),
		},
	}
	return h, store
}

func awaitingDeposit(t *testing.T, store *deposit.SimulatedStore) *deposit.Deposit {
	ev := &deposit.L1OutputEvent{
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
		L2DepositOwner: "J6yyyzTTBvLHyn1d9DbB3TVE6VYiUBYSQDHcGGhXv6p9",
		L2Sender:       "J6yyyzTTBvLHyn1d9DbB3TVE6VYiUBYSQDHcGGhXv6p9",
	}
	txHash, err := ev.FundingTx.Hash()
	require.NoError(t, err)
	d := deposit.New(900, "SolanaMainnet", txHash, ev)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, d.MarkFinalized("0xfin"))
	require.NoError(t, d.MarkAwaitingWormholeVAA("0xfin", "33"))
	require.NoError(t, store.Create(context.Background(), d))
	return d
}

func TestHandlerReportsSolanaChainType(t *testing.T) {
	h, _ := newTestHandler(&simulatedRelayer{}, &fixedVaaFetcher{})
	assert.Equal(t, chain.TypeSolana, h.ChainType())
	assert.False(t, h.SupportsPastDepositCheck())
	// endpoint mode does not track the L2 head
	assert.Zero(t, h.GetLatestBlock(context.Background()))
}

func TestProcessWormholeBridgingSuccess(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{signature: "5gW8nQyTkzS1XhQqU4x1sVbymZ7yEHmJpPUwD3t4aCjR"}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: []byte{0x01}})
	d := awaitingDeposit(t, store)

	h.ProcessWormholeBridging(ctx)

	assert.Equal(t, 1, relayer.calls)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusBridged, stored.Status)
	assert.Equal(t, relayer.signature, stored.Hashes.BridgeTxHash)
}

func TestProcessWormholeBridgingRetriesFailedRedeem(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{redeemErr: errors.New("blockhash not found")}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: []byte{0x01}})
	d := awaitingDeposit(t, store)

	h.ProcessWormholeBridging(ctx)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)
	assert.False(t, stored.WormholeInfo.BridgingAttempted)
}
