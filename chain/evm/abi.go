package evm

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bitbridge-io/relay-go/common"
	"github.com/bitbridge-io/relay-go/deposit"
)

var (
	// Events
	DepositInitializedSignatureHash  = crypto.Keccak256Hash([]byte("DepositInitialized((bytes4,bytes,bytes,bytes4),(uint32,bytes8,bytes20,bytes20,bytes4,address),address,address)"))
	LogMessagePublishedSignatureHash = crypto.Keccak256Hash([]byte("LogMessagePublished(address,uint64,uint32,bytes,uint8)"))
)

const l1DepositorABI = `[
	{"type":"function","name":"initializeDeposit","stateMutability":"nonpayable","inputs":[
		{"name":"fundingTx","type":"tuple","components":[
			{"name":"version","type":"bytes4"},
			{"name":"inputVector","type":"bytes"},
			{"name":"outputVector","type":"bytes"},
			{"name":"locktime","type":"bytes4"}]},
		{"name":"reveal","type":"tuple","components":[
			{"name":"fundingOutputIndex","type":"uint32"},
			{"name":"blindingFactor","type":"bytes8"},
			{"name":"walletPubKeyHash","type":"bytes20"},
			{"name":"refundPubKeyHash","type":"bytes20"},
			{"name":"refundLocktime","type":"bytes4"},
			{"name":"vault","type":"address"}]},
		{"name":"l2DepositOwner","type":"bytes32"}],"outputs":[]},
	{"type":"function","name":"finalizeDeposit","stateMutability":"nonpayable","inputs":[
		{"name":"depositKey","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"deposits","stateMutability":"view","inputs":[
		{"name":"depositKey","type":"uint256"}],"outputs":[
		{"name":"state","type":"uint8"}]}
]`

const l2DepositorABI = `[
	{"type":"event","name":"DepositInitialized","inputs":[
		{"name":"fundingTx","type":"tuple","indexed":false,"components":[
			{"name":"version","type":"bytes4"},
			{"name":"inputVector","type":"bytes"},
			{"name":"outputVector","type":"bytes"},
			{"name":"locktime","type":"bytes4"}]},
		{"name":"reveal","type":"tuple","indexed":false,"components":[
			{"name":"fundingOutputIndex","type":"uint32"},
			{"name":"blindingFactor","type":"bytes8"},
			{"name":"walletPubKeyHash","type":"bytes20"},
			{"name":"refundPubKeyHash","type":"bytes20"},
			{"name":"refundLocktime","type":"bytes4"},
			{"name":"vault","type":"address"}]},
		{"name":"l2DepositOwner","type":"address","indexed":true},
		{"name":"l2Sender","type":"address","indexed":true}]}
]`

const wormholeCoreABI = `[
	{"type":"event","name":"LogMessagePublished","inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"sequence","type":"uint64","indexed":false},
		{"name":"nonce","type":"uint32","indexed":false},
		{"name":"payload","type":"bytes","indexed":false},
		{"name":"consistencyLevel","type":"uint8","indexed":false}]}
]`

const l2GatewayABI = `[
	{"type":"function","name":"receiveTbtc","stateMutability":"nonpayable","inputs":[
		{"name":"encodedVm","type":"bytes"}],"outputs":[]}
]`

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

var (
	parsedL1ABI       = mustParseABI(l1DepositorABI)
	parsedL2ABI       = mustParseABI(l2DepositorABI)
	parsedWormholeABI = mustParseABI(wormholeCoreABI)
	parsedGatewayABI  = mustParseABI(l2GatewayABI)
)

// abiFundingTx mirrors the fundingTx tuple of the depositor contracts.
type abiFundingTx struct {
	Version      [4]byte
	InputVector  []byte
	OutputVector []byte
	Locktime     [4]byte
}

// abiReveal mirrors the reveal tuple of the depositor contracts.
type abiReveal struct {
	FundingOutputIndex uint32
	BlindingFactor     [8]byte
	WalletPubKeyHash   [20]byte
	RefundPubKeyHash   [20]byte
	RefundLocktime     [4]byte
	Vault              ethcommon.Address
}

type depositInitializedEvent struct {
	FundingTx abiFundingTx
	Reveal    abiReveal
}

type logMessagePublishedEvent struct {
	Sequence         uint64
	Nonce            uint32
	Payload          []byte
	ConsistencyLevel uint8
}

// decodeDepositInitialized turns a raw DepositInitialized log into the
// canonical reveal event shape. The deposit owner and sender come from the
// indexed topics.
func decodeDepositInitialized(data []byte, topics []ethcommon.Hash) (*deposit.L1OutputEvent, error) {
	var ev depositInitializedEvent
	if err := parsedL2ABI.UnpackIntoInterface(&ev, "DepositInitialized", data); err != nil {
		return nil, err
	}

	out := &deposit.L1OutputEvent{
		FundingTx: deposit.FundingTransaction{
			Version:      common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.FundingTx.Version[:])),
			InputVector:  common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.FundingTx.InputVector)),
			OutputVector: common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.FundingTx.OutputVector)),
			Locktime:     common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.FundingTx.Locktime[:])),
		},
		Reveal: deposit.Reveal{
			FundingOutputIndex:  ev.Reveal.FundingOutputIndex,
			BlindingFactor:      common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.Reveal.BlindingFactor[:])),
			WalletPublicKeyHash: common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.Reveal.WalletPubKeyHash[:])),
			RefundPublicKeyHash: common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.Reveal.RefundPubKeyHash[:])),
			RefundLocktime:      common.Prepend0xPrefix(ethcommon.Bytes2Hex(ev.Reveal.RefundLocktime[:])),
			Vault:               ev.Reveal.Vault.Hex(),
		},
	}
	if len(topics) > 1 {
		out.L2DepositOwner = ethcommon.BytesToAddress(topics[1].Bytes()).Hex()
	}
	if len(topics) > 2 {
		out.L2Sender = ethcommon.BytesToAddress(topics[2].Bytes()).Hex()
	}
	return out, nil
}

// toABIFundingTx converts a stored funding transaction back into calldata
// form for initializeDeposit.
func toABIFundingTx(ft *deposit.FundingTransaction) abiFundingTx {
	var out abiFundingTx
	copy(out.Version[:], common.HexStrToByteSlice(ft.Version))
	out.InputVector = common.HexStrToByteSlice(ft.InputVector)
	out.OutputVector = common.HexStrToByteSlice(ft.OutputVector)
	copy(out.Locktime[:], common.HexStrToByteSlice(ft.Locktime))
	return out
}

func toABIReveal(ev *deposit.L1OutputEvent, receipt *deposit.DepositReceipt) abiReveal {
	var out abiReveal
	out.FundingOutputIndex = ev.Reveal.FundingOutputIndex
	copy(out.BlindingFactor[:], common.HexStrToByteSlice(receipt.BlindingFactor))
	copy(out.WalletPubKeyHash[:], common.HexStrToByteSlice(receipt.WalletPublicKeyHash))
	copy(out.RefundPubKeyHash[:], common.HexStrToByteSlice(receipt.RefundPublicKeyHash))
	copy(out.RefundLocktime[:], common.HexStrToByteSlice(receipt.RefundLocktime))
	out.Vault = ethcommon.HexToAddress(ev.Reveal.Vault)
	return out
}
