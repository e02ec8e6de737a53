package sui

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
	digest string
	err    error

	calls   int
	lastVaa []byte
}

func (s *simulatedRelayer) RedeemVaa(_ context.Context, vaa []byte) (string, error) {
	s.calls++
	s.lastVaa = vaa
	return s.digest, s.err
}

type fixedVaaFetcher struct {
	vaa []byte
	err error
}

func (f *fixedVaaFetcher) GetVaa(context.Context, wormhole.ChainId, string, string) ([]byte, error) {
	return f.vaa, f.err
}

func newTestHandler(relayer *simulatedRelayer, vaa *fixedVaaFetcher) (*Handler, *deposit.SimulatedStore) {
	store := deposit.NewSimulatedStore()
	cfg := &chain.Config{
		ChainName:                "SuiMainnet",
		ChainType:                chain.TypeSui,
		ChainId:                  101,
		L1WormholeEmitterAddress: "000000000000000000000000deadbeef",
	}
	deps := chain.Deps{Store: store, Audit: audit.NewLogPublisher(), Vaa: vaa}
	h := &Handler{
		cfg:     cfg,
		deps:    deps,
		relayer: relayer,
		ingestor: &chain.Ingestor{
			ChainId:   cfg.ChainId,
			ChainName: cfg.ChainName,
			Store:     store,
			Audit:     deps.Audit,
		},
	}
	return h, store
}

func awaitingDeposit(t *testing.T, store *deposit.SimulatedStore, sequence string) *deposit.Deposit {
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
		L2DepositOwner: "0x7477c31b76ab98eaeca6b0c5db1c5b63182b1b86c62173b99fe120b1bf8b6d06",
		L2Sender:       "0x7477c31b76ab98eaeca6b0c5db1c5b63182b1b86c62173b99fe120b1bf8b6d06",
	}
	txHash, err := ev.FundingTx.Hash()
	require.NoError(t, err)
	d := deposit.New(101, "SuiMainnet", txHash, ev)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, d.MarkFinalized("0xfin"))
	require.NoError(t, d.MarkAwaitingWormholeVAA("0xfin", sequence))
	require.NoError(t, store.Create(context.Background(), d))
	return d
}

func TestHandlerReportsSuiChainType(t *testing.T) {
	h, _ := newTestHandler(&simulatedRelayer{}, &fixedVaaFetcher{})
	assert.Equal(t, chain.TypeSui, h.ChainType())
	assert.False(t, h.SupportsPastDepositCheck())
	assert.Zero(t, h.GetLatestBlock(context.Background()))
	assert.NoError(t, h.SetupL2Listeners(context.Background()))
}

func TestProcessWormholeBridgingSuccess(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{digest: "4Qov3XrkAS9pFBg8mYJ1ZxXaQAvvZ3cWJu1zk2Nq8VbK"}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: []byte{0xde, 0xad}})
	d := awaitingDeposit(t, store, "17")

	h.ProcessWormholeBridging(ctx)

	assert.Equal(t, 1, relayer.calls)
	assert.Equal(t, []byte{0xde, 0xad}, relayer.lastVaa)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusBridged, stored.Status)
	assert.Equal(t, relayer.digest, stored.Hashes.BridgeTxHash)
}

func TestProcessWormholeBridgingWaitsForVaa(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: nil})
	d := awaitingDeposit(t, store, "17")

	h.ProcessWormholeBridging(ctx)

	assert.Equal(t, 0, relayer.calls)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)
}

func TestProcessWormholeBridgingRetriesFailedRedeem(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{err: errors.New("redeem transaction failed")}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: []byte{0x01}})
	d := awaitingDeposit(t, store, "17")

	h.ProcessWormholeBridging(ctx)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)

	relayer.err = nil
	relayer.digest = "9mYJ1ZxXaQAvvZ3cWJu1zk2Nq8VbK4Qov3XrkAS9pFBg"
	h.ProcessWormholeBridging(ctx)
	stored, _ = store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusBridged, stored.Status)
}

func TestProcessWormholeBridgingSkipsMissingSequence(t *testing.T) {
	ctx := context.Background()
	relayer := &simulatedRelayer{}
	h, store := newTestHandler(relayer, &fixedVaaFetcher{vaa: []byte{0x01}})
	awaitingDeposit(t, store, "")

	h.ProcessWormholeBridging(ctx)
	assert.Equal(t, 0, relayer.calls)
}
