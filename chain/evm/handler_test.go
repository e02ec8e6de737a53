package evm

import (
	"context"
	"errors"
	"strings"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbridge-io/relay-go/audit"
	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/deposit"
	"github.com/bitbridge-io/relay-go/wormhole"
)

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

type fixedVaaFetcher struct {
	vaa []byte
	err error
}

func (f *fixedVaaFetcher) GetVaa(context.Context, wormhole.ChainId, string, string) ([]byte, error) {
	return f.vaa, f.err
}

func newTestHandler(l1 *SimulatedL1Depositor, l2 *SimulatedL2Gateway, vaa *fixedVaaFetcher) (*Handler, *deposit.SimulatedStore) {
	store := deposit.NewSimulatedStore()
	cfg := &chain.Config{
		ChainName:                "ArbitrumOne",
		ChainType:                chain.TypeEvm,
		ChainId:                  42161,
		L1WormholeEmitterAddress: "000000000000000000000000deadbeef",
	}
	deps := chain.Deps{
		Store: store,
		Audit: audit.NewLogPublisher(),
		Vaa:   vaa,
	}
	var gateway L2Gateway
	if l2 != nil {
		gateway = l2
	}
	return NewSimulatedHandler(cfg, deps, l1, gateway), store
}

func queuedDeposit(t *testing.T, store *deposit.SimulatedStore) *deposit.Deposit {
	ev := testRevealEvent()
	txHash, err := ev.FundingTx.Hash()
	require.NoError(t, err)
	d := deposit.New(42161, "ArbitrumOne", txHash, ev)
	require.NoError(t, store.Create(context.Background(), d))
	return d
}

func TestInitializeDepositSuccess(t *testing.T) {
	ctx := context.Background()
	l1 := &SimulatedL1Depositor{
		InitializeReceipt: successReceipt("0x11", 100, nil),
	}
	h, store := newTestHandler(l1, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)

	res := h.InitializeDeposit(ctx, d)
	require.NotNil(t, res)
	assert.Equal(t, uint64(100), res.BlockNumber)
	assert.Equal(t, 1, l1.InitializeCalls)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusInitialized, stored.Status)
	assert.Equal(t, res.TxHash, stored.Hashes.InitializeTxHash)
	assert.Empty(t, stored.Error)
}

func TestInitializeDepositSkipsWhenAlreadyOnChain(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHandler(&SimulatedL1Depositor{}, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)

	l1 := h.l1Depositor.(*SimulatedL1Depositor)
	l1.States = map[string]uint8{d.Id: 1}

	res := h.InitializeDeposit(ctx, d)
	assert.Nil(t, res)
	assert.Equal(t, 0, l1.InitializeCalls)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusQueued, stored.Status)
}

func TestInitializeDepositRevertSafety(t *testing.T) {
	ctx := context.Background()
	l1 := &SimulatedL1Depositor{
		InitializeReceipt: revertedReceipt("0xbad", 100),
	}
	h, store := newTestHandler(l1, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)

	res := h.InitializeDeposit(ctx, d)
	assert.Nil(t, res)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusQueued, stored.Status)
	assert.Empty(t, stored.Hashes.InitializeTxHash)
	assert.NotEmpty(t, stored.Error)
}

func TestInitializeDepositSubmissionErrorLeavesDepositUntouched(t *testing.T) {
	ctx := context.Background()
	l1 := &SimulatedL1Depositor{
		InitializeErr: errors.New("nonce too low"),
	}
	h, store := newTestHandler(l1, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)

	res := h.InitializeDeposit(ctx, d)
	assert.Nil(t, res)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusQueued, stored.Status)
	assert.Empty(t, stored.Error)
}

func wormholeLog(t *testing.T, sequence uint64) *types.Log {
	data, err := parsedWormholeABI.Events["LogMessagePublished"].Inputs.NonIndexed().Pack(
		sequence, uint32(0), []byte{0x01}, uint8(1),
	)
	require.NoError(t, err)
	return &types.Log{
		Topics: []ethcommon.Hash{
			LogMessagePublishedSignatureHash,
			ethcommon.HexToHash("0x000000000000000000000000deadbeef00000000000000000000000000000000"),
		},
		Data: data,
	}
}

func TestFinalizeDepositCapturesTransferSequence(t *testing.T) {
	ctx := context.Background()
	h, store := newTestHandler(&SimulatedL1Depositor{}, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, store.Update(ctx, d))

	l1 := h.l1Depositor.(*SimulatedL1Depositor)
	l1.FinalizeReceipt = successReceipt("0xfin", 200, []*types.Log{wormholeLog(t, 1205)})

	res := h.FinalizeDeposit(ctx, d)
	require.NotNil(t, res)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)
	assert.Equal(t, "1205", stored.WormholeInfo.TransferSequence)
	assert.NotZero(t, stored.Dates.AwaitingWormholeVAAMessageSince)
}

func TestFinalizeDepositWithoutSequenceStaysFinalized(t *testing.T) {
	ctx := context.Background()
	l1 := &SimulatedL1Depositor{
		FinalizeReceipt: successReceipt("0xfin", 200, nil),
	}
	h, store := newTestHandler(l1, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, store.Update(ctx, d))

	res := h.FinalizeDeposit(ctx, d)
	require.NotNil(t, res)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusFinalized, stored.Status)
	assert.Empty(t, stored.WormholeInfo.TransferSequence)
}

func TestFinalizeDepositRevertSafety(t *testing.T) {
	ctx := context.Background()
	l1 := &SimulatedL1Depositor{
		FinalizeReceipt: revertedReceipt("0xbad", 200),
	}
	h, store := newTestHandler(l1, nil, &fixedVaaFetcher{})
	d := queuedDeposit(t, store)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, store.Update(ctx, d))

	res := h.FinalizeDeposit(ctx, d)
	assert.Nil(t, res)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusInitialized, stored.Status)
	assert.Empty(t, stored.Hashes.FinalizeTxHash)
	assert.NotEmpty(t, stored.Error)
}

func awaitingDeposit(t *testing.T, store *deposit.SimulatedStore) *deposit.Deposit {
	d := queuedDeposit(t, store)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, d.MarkFinalized("0xfin"))
	require.NoError(t, d.MarkAwaitingWormholeVAA("0xfin", "7"))
	require.NoError(t, store.Update(context.Background(), d))
	return d
}

func TestProcessWormholeBridgingSuccess(t *testing.T) {
	ctx := context.Background()
	l2 := &SimulatedL2Gateway{
		Receipt: successReceipt("0xbridge", 300, nil),
	}
	vaa := &fixedVaaFetcher{vaa: []byte{0xde, 0xad}}
	h, store := newTestHandler(&SimulatedL1Depositor{}, l2, vaa)
	d := awaitingDeposit(t, store)

	h.ProcessWormholeBridging(ctx)

	assert.Equal(t, 1, l2.Calls)
	assert.Equal(t, []byte{0xde, 0xad}, l2.LastVaa)

	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusBridged, stored.Status)
	assert.True(t, stored.WormholeInfo.BridgingAttempted)
	assert.NotEmpty(t, stored.Hashes.BridgeTxHash)
}

func TestProcessWormholeBridgingSkipsWhenVaaUnavailable(t *testing.T) {
	ctx := context.Background()
	l2 := &SimulatedL2Gateway{}
	h, store := newTestHandler(&SimulatedL1Depositor{}, l2, &fixedVaaFetcher{vaa: nil})
	d := awaitingDeposit(t, store)

	h.ProcessWormholeBridging(ctx)

	assert.Equal(t, 0, l2.Calls)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)
}

func TestProcessWormholeBridgingRetriesOnSubmissionFailure(t *testing.T) {
	ctx := context.Background()
	l2 := &SimulatedL2Gateway{Err: errors.New("insufficient funds")}
	h, store := newTestHandler(&SimulatedL1Depositor{}, l2, &fixedVaaFetcher{vaa: []byte{0x01}})
	d := awaitingDeposit(t, store)

	h.ProcessWormholeBridging(ctx)
	stored, _ := store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusAwaitingWormholeVAA, stored.Status)
	assert.False(t, stored.WormholeInfo.BridgingAttempted)

	// a later tick with a healthy gateway succeeds
	l2.Err = nil
	l2.Receipt = successReceipt("0xbridge", 301, nil)
	h.ProcessWormholeBridging(ctx)
	stored, _ = store.GetById(ctx, d.Id)
	assert.Equal(t, deposit.StatusBridged, stored.Status)
}

func TestProcessWormholeBridgingSkipsMissingSequence(t *testing.T) {
	ctx := context.Background()
	l2 := &SimulatedL2Gateway{}
	h, store := newTestHandler(&SimulatedL1Depositor{}, l2, &fixedVaaFetcher{vaa: []byte{0x01}})

	d := queuedDeposit(t, store)
	require.NoError(t, d.MarkInitialized("0xinit"))
	require.NoError(t, d.MarkFinalized("0xfin"))
	require.NoError(t, d.MarkAwaitingWormholeVAA("0xfin", ""))
	require.NoError(t, store.Update(ctx, d))

	h.ProcessWormholeBridging(ctx)
	assert.Equal(t, 0, l2.Calls)
}

func TestDecodeDepositInitializedRoundTrip(t *testing.T) {
	want := testRevealEvent()

	fundingTx := toABIFundingTx(&want.FundingTx)
	reveal := abiReveal{
		FundingOutputIndex: want.Reveal.FundingOutputIndex,
		Vault:              ethcommon.HexToAddress(want.Reveal.Vault),
	}
	copy(reveal.BlindingFactor[:], ethcommon.FromHex(want.Reveal.BlindingFactor))
	copy(reveal.WalletPubKeyHash[:], ethcommon.FromHex(want.Reveal.WalletPublicKeyHash))
	copy(reveal.RefundPubKeyHash[:], ethcommon.FromHex(want.Reveal.RefundPublicKeyHash))
	copy(reveal.RefundLocktime[:], ethcommon.FromHex(want.Reveal.RefundLocktime))

	data, err := parsedL2ABI.Events["DepositInitialized"].Inputs.NonIndexed().Pack(fundingTx, reveal)
	require.NoError(t, err)

	topics := []ethcommon.Hash{
		DepositInitializedSignatureHash,
		ethcommon.HexToHash(want.L2DepositOwner),
		ethcommon.HexToHash(want.L2Sender),
	}

	got, err := decodeDepositInitialized(data, topics)
	require.NoError(t, err)
	assert.Equal(t, want.FundingTx, got.FundingTx)
	assert.Equal(t, want.Reveal.FundingOutputIndex, got.Reveal.FundingOutputIndex)
	assert.Equal(t, want.Reveal.BlindingFactor, got.Reveal.BlindingFactor)
	assert.Equal(t, want.L2DepositOwner, got.L2DepositOwner)
	assert.Equal(t, want.L2Sender, got.L2Sender)

	// the decoded event hashes back to the same funding tx
	wantHash, err := want.FundingTx.Hash()
	require.NoError(t, err)
	gotHash, err := got.FundingTx.Hash()
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
}

func TestDecodeDepositInitializedMalformedData(t *testing.T) {
	_, err := decodeDepositInitialized([]byte{0x01, 0x02}, nil)
	assert.Error(t, err)
}

func TestExtractTransferSequence(t *testing.T) {
	seq, found := extractTransferSequence(nil)
	assert.False(t, found)
	assert.Empty(t, seq)

	seq, found = extractTransferSequence([]*types.Log{wormholeLog(t, 42)})
	assert.True(t, found)
	assert.Equal(t, "42", seq)

	// unrelated logs are skipped
	other := &types.Log{Topics: []ethcommon.Hash{DepositInitializedSignatureHash}}
	seq, found = extractTransferSequence([]*types.Log{other, wormholeLog(t, 7)})
	assert.True(t, found)
	assert.Equal(t, "7", seq)
}

func TestOwnerToBytes32(t *testing.T) {
	out := ownerToBytes32("0x85A37A101E4D5D9b2EcDa0E15bC0AAcBA60e922B")
	assert.Equal(t, ethcommon.HexToHash("0x00000000000000000000000085A37A101E4D5D9b2EcDa0E15bC0AAcBA60e922B"), ethcommon.Hash(out))
}
