package sui

import (
	"context"
	"fmt"
	"time"

	bcs "github.com/fardream/go-bcs/bcs"
	suisdk "github.com/pattonkan/sui-go/sui"
	"github.com/pattonkan/sui-go/sui/suiptb"
	"github.com/pattonkan/sui-go/suiclient"
	"github.com/pattonkan/sui-go/suisigner"
	"github.com/pattonkan/sui-go/suisigner/suicrypto"

	"github.com/bitbridge-io/relay-go/chain"
)

// Relayer submits a signed VAA to the destination bridge package and
// returns the transaction digest.
type Relayer interface {
	RedeemVaa(ctx context.Context, vaa []byte) (string, error)
}

// moveClient executes the receive_wormhole_messages entrypoint of the
// bridge package as a programmable transaction.
type moveClient struct {
	client *suiclient.ClientImpl
	signer *suisigner.Signer

	packageId          *suisdk.PackageId
	receiverStateId    string
	wormholeStateId    string
	tokenBridgeStateId string
}

const redeemTimeout = 40 * time.Second

// suiClockObjectId is the singleton on-chain clock every network shares.
const suiClockObjectId = "0x6"

func newMoveClient(cfg *chain.Config) (*moveClient, error) {
	signer, err := suisigner.NewSignerWithMnemonic(cfg.PrivateKey, suicrypto.KeySchemeFlagEd25519)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "PrivateKey"}
	}

	packageId, err := suisdk.PackageIdFromHex(cfg.SuiPackageId)
	if err != nil {
		return nil, &chain.ConfigurationError{ChainName: cfg.ChainName, Field: "SuiPackageId"}
	}

	return &moveClient{
		client:             suiclient.NewClient(cfg.L2RpcUrl),
		signer:             signer,
		packageId:          packageId,
		receiverStateId:    cfg.SuiBridgeObjectId,
		wormholeStateId:    cfg.WormholeCoreStateId,
		tokenBridgeStateId: cfg.TokenBridgeStateId,
	}, nil
}

func (c *moveClient) RedeemVaa(ctx context.Context, vaa []byte) (string, error) {
	txCtx, cancel := context.WithTimeout(ctx, redeemTimeout)
	defer cancel()

	ptb := suiptb.NewTransactionDataTransactionBuilder()

	receiverArg, err := c.sharedArg(txCtx, ptb, c.receiverStateId, true)
	if err != nil {
		return "", fmt.Errorf("receiver state ref: %w", err)
	}
	wormholeArg, err := c.sharedArg(txCtx, ptb, c.wormholeStateId, false)
	if err != nil {
		return "", fmt.Errorf("wormhole state ref: %w", err)
	}
	tokenBridgeArg, err := c.sharedArg(txCtx, ptb, c.tokenBridgeStateId, true)
	if err != nil {
		return "", fmt.Errorf("token bridge state ref: %w", err)
	}
	clockArg, err := c.sharedArg(txCtx, ptb, suiClockObjectId, false)
	if err != nil {
		return "", fmt.Errorf("clock ref: %w", err)
	}

	ptb.Command(suiptb.Command{
		MoveCall: &suiptb.ProgrammableMoveCall{
			Package:  c.packageId,
			Module:   "bitcoin_depositor",
			Function: "receive_wormhole_messages",
			Arguments: []suiptb.Argument{
				receiverArg,
				wormholeArg,
				tokenBridgeArg,
				ptb.MustPure(vaa),
				clockArg,
			},
		},
	})
	pt := ptb.Finish()

	coins, err := c.client.GetCoins(txCtx, &suiclient.GetCoinsRequest{Owner: c.signer.Address})
	if err != nil {
		return "", fmt.Errorf("get gas coins: %w", err)
	}
	if len(coins.Data) == 0 {
		return "", fmt.Errorf("no gas coins available for %s", c.signer.Address.String())
	}

	tx := suiptb.NewTransactionData(
		c.signer.Address,
		pt,
		[]*suisdk.ObjectRef{coins.Data[0].Ref()},
		10*suiclient.DefaultGasBudget,
		suiclient.DefaultGasPrice,
	)

	txBytes, err := bcs.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("marshal tx: %w", err)
	}

	resp, err := c.client.SignAndExecuteTransaction(
		txCtx,
		c.signer,
		txBytes,
		&suiclient.SuiTransactionBlockResponseOptions{ShowEffects: true},
	)
	if err != nil {
		return "", fmt.Errorf("execute tx: %w", err)
	}
	if resp == nil || resp.Effects == nil || !resp.Effects.Data.IsSuccess() {
		return "", fmt.Errorf("redeem transaction failed: %v", resp.Errors)
	}
	return resp.Digest.String(), nil
}

func (c *moveClient) sharedArg(ctx context.Context, ptb *suiptb.ProgrammableTransactionBuilder, id string, mutable bool) (suiptb.Argument, error) {
	oid, err := suisdk.ObjectIdFromHex(id)
	if err != nil {
		return suiptb.Argument{}, fmt.Errorf("parse object id %q: %w", id, err)
	}
	obj, err := c.client.GetObject(ctx, &suiclient.GetObjectRequest{
		ObjectId: oid,
		Options:  &suiclient.SuiObjectDataOptions{ShowOwner: true},
	})
	if err != nil {
		return suiptb.Argument{}, fmt.Errorf("fetch object %s: %w", id, err)
	}
	ref := obj.Data.RefSharedObject()
	return ptb.Obj(suiptb.ObjectArg{
		SharedObject: &suiptb.SharedObjectArg{
			Id:                   ref.ObjectId,
			InitialSharedVersion: ref.Version,
			Mutable:              mutable,
		},
	})
}
