package redemption

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/bitbridge-io/relay-go/wormhole"
)

const l1RedeemerABI = `[
	{
		"type": "function",
		"name": "redeemTokens",
		"inputs": [
			{"name": "vault", "type": "address"},
			{"name": "amount", "type": "uint256"},
			{"name": "recipientChain", "type": "uint16"},
			{"name": "encodedVm", "type": "bytes"}
		],
		"outputs": []
	}
]`

var parsedRedeemerABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(l1RedeemerABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// redeemerContract submits the redeem transaction to the L1 redeemer and
// waits for one confirmation.
type redeemerContract struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	auth     *bind.TransactOpts
	vault    ethcommon.Address
	mu       sync.Mutex
}

func newRedeemerContract(client *ethclient.Client, address, vault ethcommon.Address, auth *bind.TransactOpts) *redeemerContract {
	return &redeemerContract{
		client:   client,
		contract: bind.NewBoundContract(address, parsedRedeemerABI, client, client, client),
		auth:     auth,
		vault:    vault,
	}
}

func (c *redeemerContract) Relay(ctx context.Context, amount *big.Int, signedVaa []byte, destination wormhole.ChainId) (interface{}, error) {
	c.mu.Lock()
	opts := *c.auth
	opts.Context = ctx
	tx, err := c.contract.Transact(&opts, "redeemTokens", c.vault, amount, uint16(destination), signedVaa)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("redeem transaction %s reverted", receipt.TxHash.Hex())
	}
	return receipt.TxHash, nil
}
