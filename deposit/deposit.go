package deposit

import (
	"fmt"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

type DepositStatus string

const (
	StatusQueued              DepositStatus = "QUEUED"
	StatusInitialized         DepositStatus = "INITIALIZED"
	StatusFinalized           DepositStatus = "FINALIZED"
	StatusAwaitingWormholeVAA DepositStatus = "AWAITING_WORMHOLE_VAA"
	StatusBridged             DepositStatus = "BRIDGED"
)

// statusRank orders the lifecycle. Transitions only move forward.
var statusRank = map[DepositStatus]int{
	StatusQueued:              0,
	StatusInitialized:         1,
	StatusFinalized:           2,
	StatusAwaitingWormholeVAA: 3,
	StatusBridged:             4,
}

func (s DepositStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// TxHashes holds the per-stage transaction identifiers. Each one is
// overwritten on retry, not accumulated.
type TxHashes struct {
	BtcFundingTxHash string `json:"btcFundingTxHash"`
	InitializeTxHash string `json:"initializeTxHash,omitempty"`
	FinalizeTxHash   string `json:"finalizeTxHash,omitempty"`
	BridgeTxHash     string `json:"bridgeTxHash,omitempty"`
}

// WormholeInfo is set once a finalize transaction emits a cross-chain
// transfer sequence. BridgingAttempted is informational only and does not
// gate retries.
type WormholeInfo struct {
	TxHash            string `json:"txHash,omitempty"`
	TransferSequence  string `json:"transferSequence,omitempty"`
	BridgingAttempted bool   `json:"bridgingAttempted"`
}

// DepositDates are unix seconds. Each is stamped exactly once except
// LastActivityAt, which moves on every mutation.
type DepositDates struct {
	CreatedAt                       int64 `json:"createdAt"`
	InitializationAt                int64 `json:"initializationAt,omitempty"`
	FinalizationAt                  int64 `json:"finalizationAt,omitempty"`
	AwaitingWormholeVAAMessageSince int64 `json:"awaitingWormholeVAAMessageSince,omitempty"`
	BridgedAt                       int64 `json:"bridgedAt,omitempty"`
	LastActivityAt                  int64 `json:"lastActivityAt"`
}

// Deposit tracks one bitcoin UTXO moving through the bridge lifecycle.
type Deposit struct {
	Id            string         `json:"id"`
	ChainId       uint64         `json:"chainId"`
	ChainName     string         `json:"chainName"`
	FundingTxHash string         `json:"fundingTxHash"`
	OutputIndex   uint32         `json:"outputIndex"`
	Receipt       DepositReceipt `json:"receipt"`
	L1OutputEvent L1OutputEvent  `json:"l1OutputEvent"`
	Status        DepositStatus  `json:"status"`
	Hashes        TxHashes       `json:"hashes"`
	WormholeInfo  WormholeInfo   `json:"wormholeInfo"`
	Dates         DepositDates   `json:"dates"`
	Error         string         `json:"error,omitempty"`
}

var ErrStatusRegression = fmt.Errorf("deposit status cannot move backward")

// New builds a QUEUED deposit from a decoded reveal event. The id is derived
// from the funding outpoint, never random.
func New(chainId uint64, chainName string, fundingTxHash ethcommon.Hash, ev *L1OutputEvent) *Deposit {
	now := time.Now().Unix()
	return &Deposit{
		Id:            GetDepositId(fundingTxHash, ev.Reveal.FundingOutputIndex),
		ChainId:       chainId,
		ChainName:     chainName,
		FundingTxHash: fundingTxHash.Hex(),
		OutputIndex:   ev.Reveal.FundingOutputIndex,
		Receipt: DepositReceipt{
			Depositor:           ev.L2Sender,
			BlindingFactor:      ev.Reveal.BlindingFactor,
			WalletPublicKeyHash: ev.Reveal.WalletPublicKeyHash,
			RefundPublicKeyHash: ev.Reveal.RefundPublicKeyHash,
			RefundLocktime:      ev.Reveal.RefundLocktime,
		},
		L1OutputEvent: *ev,
		Status:        StatusQueued,
		Hashes: TxHashes{
			BtcFundingTxHash: fundingTxHash.Hex(),
		},
		Dates: DepositDates{
			CreatedAt:      now,
			LastActivityAt: now,
		},
	}
}

func (d *Deposit) touch() {
	d.Dates.LastActivityAt = time.Now().Unix()
}

// SetError records the last failure without moving the status.
func (d *Deposit) SetError(msg string) {
	d.Error = msg
	d.touch()
}

func (d *Deposit) advance(to DepositStatus) error {
	if statusRank[to] <= statusRank[d.Status] {
		return ErrStatusRegression
	}
	d.Status = to
	d.Error = ""
	d.touch()
	return nil
}

// MarkInitialized records a successful L1 initialize transaction.
func (d *Deposit) MarkInitialized(txHash string) error {
	if err := d.advance(StatusInitialized); err != nil {
		return err
	}
	d.Hashes.InitializeTxHash = txHash
	d.Dates.InitializationAt = time.Now().Unix()
	return nil
}

// MarkFinalized records a successful L1 finalize transaction.
func (d *Deposit) MarkFinalized(txHash string) error {
	if err := d.advance(StatusFinalized); err != nil {
		return err
	}
	d.Hashes.FinalizeTxHash = txHash
	d.Dates.FinalizationAt = time.Now().Unix()
	return nil
}

// MarkAwaitingWormholeVAA records the transfer sequence emitted by the
// finalize transaction.
func (d *Deposit) MarkAwaitingWormholeVAA(txHash, transferSequence string) error {
	if err := d.advance(StatusAwaitingWormholeVAA); err != nil {
		return err
	}
	d.WormholeInfo.TxHash = txHash
	d.WormholeInfo.TransferSequence = transferSequence
	d.Dates.AwaitingWormholeVAAMessageSince = time.Now().Unix()
	return nil
}

// MarkBridged records the destination-chain redeem transaction.
func (d *Deposit) MarkBridged(bridgeTxHash string) error {
	if err := d.advance(StatusBridged); err != nil {
		return err
	}
	d.Hashes.BridgeTxHash = bridgeTxHash
	d.WormholeInfo.BridgingAttempted = true
	d.Dates.BridgedAt = time.Now().Unix()
	return nil
}

func (d *Deposit) HasBridged() bool {
	return d.Status == StatusBridged
}

func (d *Deposit) Clone() *Deposit {
	clone := *d
	return &clone
}

func (d *Deposit) String() string {
	return fmt.Sprintf("deposit{id=%s chain=%s status=%s}", d.Id, d.ChainName, d.Status)
}
