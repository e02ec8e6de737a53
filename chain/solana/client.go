package solana

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/bitbridge-io/relay-go/chain"
)

// Relayer submits a signed VAA to the destination bridge program and
// returns the transaction signature.
type Relayer interface {
	RedeemVaa(ctx context.Context, vaa []byte) (string, error)
}

type rpcClient struct {
	client     *rpc.Client
	payer      solanago.PrivateKey
	programId  solanago.PublicKey
	custodian  solanago.PublicKey
	commitment rpc.CommitmentType
}

func newRpcClient(cfg *chain.Config) (*rpcClient, error) {
	payer, err := solanago.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "PrivateKey"}
	}
	programId, err := solanago.PublicKeyFromBase58(cfg.L2ContractAddress)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "L2ContractAddress"}
	}
	custodian, err := solanago.PublicKeyFromBase58(cfg.L2WormholeGatewayAddress)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "L2WormholeGatewayAddress"}
	}

	commitment := rpc.CommitmentFinalized
	if cfg.SolanaCommitment != "" {
		commitment = rpc.CommitmentType(cfg.SolanaCommitment)
	}

	return &rpcClient{
		client:     rpc.New(cfg.L2RpcUrl),
		payer:      payer,
		programId:  programId,
		custodian:  custodian,
		commitment: commitment,
	}, nil
}

func (c *rpcClient) RedeemVaa(ctx context.Context, vaa []byte) (string, error) {
	recent, err := c.client.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return "", fmt.Errorf("get latest blockhash: %w", err)
	}

	inst := solanago.NewInstruction(
		c.programId,
		solanago.AccountMetaSlice{
			solanago.NewAccountMeta(c.payer.PublicKey(), true, true),
			solanago.NewAccountMeta(c.custodian, true, false),
		},
		vaa,
	)

	tx, err := solanago.NewTransaction(
		[]solanago.Instruction{inst},
		recent.Value.Blockhash,
		solanago.TransactionPayer(c.payer.PublicKey()),
	)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solanago.PublicKey) *solanago.PrivateKey {
		if key.Equals(c.payer.PublicKey()) {
			return &c.payer
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}
	return sig.String(), nil
}
