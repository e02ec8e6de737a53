package deposit

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	ethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/bitbridge-io/relay-go/common"
)

// FundingTransaction is the raw bitcoin transaction that funded the deposit,
// split into the pieces the L1 bridge contract consumes. All fields are hex
// strings with a 0x prefix.
type FundingTransaction struct {
	Version      string `json:"version"`
	InputVector  string `json:"inputVector"`
	OutputVector string `json:"outputVector"`
	Locktime     string `json:"locktime"`
}

// Serialize concatenates the four components back into the raw wire format.
func (ft *FundingTransaction) Serialize() []byte {
	var buf bytes.Buffer
	buf.Write(common.HexStrToByteSlice(ft.Version))
	buf.Write(common.HexStrToByteSlice(ft.InputVector))
	buf.Write(common.HexStrToByteSlice(ft.OutputVector))
	buf.Write(common.HexStrToByteSlice(ft.Locktime))
	return buf.Bytes()
}

// Hash computes the bitcoin double-sha256 txid of the funding transaction.
// The raw bytes are round-tripped through wire.MsgTx first so that a
// malformed funding transaction is rejected instead of hashed.
func (ft *FundingTransaction) Hash() (ethcommon.Hash, error) {
	raw := ft.Serialize()
	if len(raw) == 0 {
		return ethcommon.Hash{}, fmt.Errorf("empty funding transaction")
	}

	var msgTx wire.MsgTx
	if err := msgTx.Deserialize(bytes.NewReader(raw)); err != nil {
		return ethcommon.Hash{}, fmt.Errorf("malformed funding transaction: %w", err)
	}

	h := chainhash.DoubleHashH(raw)
	return ethcommon.BytesToHash(h[:]), nil
}

// Reveal carries the SPV parameters that accompany the funding transaction
// to prove the deposit's intent on L1.
type Reveal struct {
	FundingOutputIndex  uint32 `json:"fundingOutputIndex"`
	BlindingFactor      string `json:"blindingFactor"`
	WalletPublicKeyHash string `json:"walletPublicKeyHash"`
	RefundPublicKeyHash string `json:"refundPublicKeyHash"`
	RefundLocktime      string `json:"refundLocktime"`
	Vault               string `json:"vault"`
}

// DepositReceipt is the subset of the reveal kept on the deposit record for
// later on-chain proving.
type DepositReceipt struct {
	Depositor           string `json:"depositor"`
	BlindingFactor      string `json:"blindingFactor"`
	WalletPublicKeyHash string `json:"walletPublicKeyHash"`
	RefundPublicKeyHash string `json:"refundPublicKeyHash"`
	RefundLocktime      string `json:"refundLocktime"`
	ExtraData           string `json:"extraData,omitempty"`
}

// L1OutputEvent is the reveal as observed on chain. Immutable after the
// deposit record is created.
type L1OutputEvent struct {
	FundingTx      FundingTransaction `json:"fundingTx"`
	Reveal         Reveal             `json:"reveal"`
	L2DepositOwner string             `json:"l2DepositOwner"`
	L2Sender       string             `json:"l2Sender"`
}
