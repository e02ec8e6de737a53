package evm

import (
	"context"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bitbridge-io/relay-go/chain"
)

// SimulatedL1Depositor scripts L1 contract behavior for tests.
type SimulatedL1Depositor struct {
	States map[string]uint8 // depositKey (decimal) -> on-chain state

	InitializeReceipt *types.Receipt
	InitializeErr     error
	FinalizeReceipt   *types.Receipt
	FinalizeErr       error
	StateErr          error

	InitializeCalls int
	FinalizeCalls   int
}

func (s *SimulatedL1Depositor) DepositState(_ context.Context, depositKey *big.Int) (uint8, error) {
	if s.StateErr != nil {
		return 0, s.StateErr
	}
	return s.States[depositKey.String()], nil
}

func (s *SimulatedL1Depositor) InitializeDeposit(context.Context, abiFundingTx, abiReveal, [32]byte) (*types.Receipt, error) {
	s.InitializeCalls++
	return s.InitializeReceipt, s.InitializeErr
}

func (s *SimulatedL1Depositor) FinalizeDeposit(context.Context, *big.Int) (*types.Receipt, error) {
	s.FinalizeCalls++
	return s.FinalizeReceipt, s.FinalizeErr
}

// SimulatedL2Gateway scripts the wormhole redeem call for tests.
type SimulatedL2Gateway struct {
	Receipt *types.Receipt
	Err     error

	Calls   int
	LastVaa []byte
}

func (s *SimulatedL2Gateway) ReceiveTbtc(_ context.Context, vaa []byte) (*types.Receipt, error) {
	s.Calls++
	s.LastVaa = vaa
	return s.Receipt, s.Err
}

// NewSimulatedHandler builds a handler on scripted backends. Exported for
// the sei package tests as well.
func NewSimulatedHandler(cfg *chain.Config, deps chain.Deps, l1 L1Depositor, l2 L2Gateway) *Handler {
	return newHandlerWithBackends(cfg, deps, l1, l2)
}

func successReceipt(txHash string, blockNumber uint64, logs []*types.Log) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      ethcommon.HexToHash(txHash),
		BlockNumber: new(big.Int).SetUint64(blockNumber),
		Logs:        logs,
	}
}

func revertedReceipt(txHash string, blockNumber uint64) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		TxHash:      ethcommon.HexToHash(txHash),
		BlockNumber: new(big.Int).SetUint64(blockNumber),
	}
}
