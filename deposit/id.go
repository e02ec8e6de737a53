package deposit

import (
	"encoding/binary"
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// GetDepositId derives the deterministic deposit identifier from the bitcoin
// funding outpoint. Two reveal events describing the same UTXO always
// collapse to the same id, which is what makes ingestion idempotent.
//
// The id is keccak256(fundingTxHash || outputIndex) rendered as a decimal
// string, matching the uint256 deposit key the L1 contract uses.
func GetDepositId(fundingTxHash ethcommon.Hash, outputIndex uint32) string {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], outputIndex)

	key := crypto.Keccak256(fundingTxHash[:], idx[:])
	return new(big.Int).SetBytes(key).String()
}
