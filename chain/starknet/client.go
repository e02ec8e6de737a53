package starknet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/NethermindEth/starknet.go/account"
	"github.com/NethermindEth/starknet.go/rpc"
	"github.com/NethermindEth/starknet.go/utils"

	"github.com/bitbridge-io/relay-go/chain"
	"github.com/bitbridge-io/relay-go/common"
)

// Relayer submits a signed VAA to the destination bridge contract and
// returns the transaction hash.
type Relayer interface {
	RedeemVaa(ctx context.Context, vaa []byte) (string, error)
}

type invokeClient struct {
	account  *account.Account
	sender   *felt.Felt
	contract *felt.Felt
	maxFee   *felt.Felt
}

func newInvokeClient(cfg *chain.Config) (*invokeClient, error) {
	provider, err := rpc.NewProvider(cfg.L2RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("dial starknet rpc: %w", err)
	}

	sender, err := utils.HexToFelt(cfg.StarknetAccountAddress)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "StarknetAccountAddress"}
	}
	contract, err := utils.HexToFelt(cfg.L2ContractAddress)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "L2ContractAddress"}
	}

	privateKey, ok := new(big.Int).SetString(common.Trim0xPrefix(cfg.PrivateKey), 16)
	if !ok {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "PrivateKey"}
	}
	ks := account.NewMemKeystore()
	ks.Put(cfg.StarknetAccountAddress, privateKey)

	acct, err := account.NewAccount(provider, sender, cfg.StarknetAccountAddress, ks, 2)
	if err != nil {
		return nil, fmt.Errorf("build starknet account: %w", err)
	}

	return &invokeClient{
		account:  acct,
		sender:   sender,
		contract: contract,
		maxFee:   new(felt.Felt).SetUint64(1_000_000_000_000_000),
	}, nil
}

// vaaToCalldata packs the VAA as a felt array: length prefix followed by
// 31-byte chunks, the serialization the cairo contract expects.
func vaaToCalldata(vaa []byte) []*felt.Felt {
	const chunkSize = 31

	var chunks []*felt.Felt
	for start := 0; start < len(vaa); start += chunkSize {
		end := start + chunkSize
		if end > len(vaa) {
			end = len(vaa)
		}
		chunks = append(chunks, new(felt.Felt).SetBytes(vaa[start:end]))
	}

	calldata := make([]*felt.Felt, 0, len(chunks)+1)
	calldata = append(calldata, new(felt.Felt).SetUint64(uint64(len(chunks))))
	return append(calldata, chunks...)
}

func (c *invokeClient) RedeemVaa(ctx context.Context, vaa []byte) (string, error) {
	nonce, err := c.account.Nonce(ctx, rpc.WithBlockTag("latest"), c.sender)
	if err != nil {
		return "", fmt.Errorf("fetch account nonce: %w", err)
	}

	invokeTx := rpc.InvokeTxnV1{
		MaxFee:        c.maxFee,
		Version:       rpc.TransactionV1,
		Nonce:         nonce,
		Type:          rpc.TransactionType_Invoke,
		SenderAddress: c.sender,
	}

	fnCall := rpc.FunctionCall{
		ContractAddress:    c.contract,
		EntryPointSelector: utils.GetSelectorFromNameFelt("receive_wormhole_messages"),
		Calldata:           vaaToCalldata(vaa),
	}
	invokeTx.Calldata, err = c.account.FmtCalldata([]rpc.FunctionCall{fnCall})
	if err != nil {
		return "", fmt.Errorf("format calldata: %w", err)
	}

	if err := c.account.SignInvokeTransaction(ctx, &invokeTx); err != nil {
		return "", fmt.Errorf("sign invoke transaction: %w", err)
	}

	resp, err := c.account.SendTransaction(ctx, invokeTx)
	if err != nil {
		return "", fmt.Errorf("send invoke transaction: %w", err)
	}
	return resp.TransactionHash.String(), nil
}
