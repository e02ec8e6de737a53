package evm

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// L1Depositor is what the handler needs from the L1 depositor contract.
// The production implementation submits through a bound contract and waits
// for the configured confirmations; tests substitute a simulated one.
type L1Depositor interface {
	// DepositState reads the on-chain deposit state; 0 means unknown.
	DepositState(ctx context.Context, depositKey *big.Int) (uint8, error)
	InitializeDeposit(ctx context.Context, fundingTx abiFundingTx, reveal abiReveal, l2DepositOwner [32]byte) (*types.Receipt, error)
	FinalizeDeposit(ctx context.Context, depositKey *big.Int) (*types.Receipt, error)
}

// L2Gateway submits a signed VAA to the destination-chain wormhole gateway.
type L2Gateway interface {
	ReceiveTbtc(ctx context.Context, vaa []byte) (*types.Receipt, error)
}

const confirmationPollInterval = 3 * time.Second

// waitConfirmed waits until the transaction is mined and buried under the
// requested number of confirmations. The wait has no internal timeout; the
// caller bounds it through ctx.
func waitConfirmed(ctx context.Context, client *ethclient.Client, tx *types.Transaction, confirmations uint64) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, err
	}
	if confirmations <= 1 {
		return receipt, nil
	}

	target := new(big.Int).Add(receipt.BlockNumber, big.NewInt(int64(confirmations-1)))
	for {
		head, err := client.BlockNumber(ctx)
		if err != nil {
			return nil, err
		}
		if new(big.Int).SetUint64(head).Cmp(target) >= 0 {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(confirmationPollInterval):
		}
	}
}

type l1Contract struct {
	client        *ethclient.Client
	contract      *bind.BoundContract
	auth          *bind.TransactOpts
	confirmations uint64
	mu            sync.Mutex
}

func newL1Contract(client *ethclient.Client, address ethcommon.Address, auth *bind.TransactOpts, confirmations uint64) *l1Contract {
	return &l1Contract{
		client:        client,
		contract:      bind.NewBoundContract(address, parsedL1ABI, client, client, client),
		auth:          auth,
		confirmations: confirmations,
	}
}

func (c *l1Contract) DepositState(ctx context.Context, depositKey *big.Int) (uint8, error) {
	var out []interface{}
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, &out, "deposits", depositKey); err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected deposits() output length %d", len(out))
	}
	state, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected deposits() output type %T", out[0])
	}
	return state, nil
}

func (c *l1Contract) transact(ctx context.Context, method string, args ...interface{}) (*types.Receipt, error) {
	// one in-flight tx per signer, to keep nonces ordered
	c.mu.Lock()
	opts := *c.auth
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, method, args...)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return waitConfirmed(ctx, c.client, tx, c.confirmations)
}

func (c *l1Contract) InitializeDeposit(ctx context.Context, fundingTx abiFundingTx, reveal abiReveal, l2DepositOwner [32]byte) (*types.Receipt, error) {
	return c.transact(ctx, "initializeDeposit", fundingTx, reveal, l2DepositOwner)
}

func (c *l1Contract) FinalizeDeposit(ctx context.Context, depositKey *big.Int) (*types.Receipt, error) {
	return c.transact(ctx, "finalizeDeposit", depositKey)
}

type l2GatewayContract struct {
	client        *ethclient.Client
	contract      *bind.BoundContract
	auth          *bind.TransactOpts
	confirmations uint64
	mu            sync.Mutex
}

func newL2Gateway(client *ethclient.Client, address ethcommon.Address, auth *bind.TransactOpts, confirmations uint64) *l2GatewayContract {
	return &l2GatewayContract{
		client:        client,
		contract:      bind.NewBoundContract(address, parsedGatewayABI, client, client, client),
		auth:          auth,
		confirmations: confirmations,
	}
}

func (c *l2GatewayContract) ReceiveTbtc(ctx context.Context, vaa []byte) (*types.Receipt, error) {
	c.mu.Lock()
	opts := *c.auth
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, "receiveTbtc", vaa)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return waitConfirmed(ctx, c.client, tx, c.confirmations)
}
