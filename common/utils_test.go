package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimAndPrepend0xPrefix(t *testing.T) {
	assert.Equal(t, "abcd", Trim0xPrefix("0xabcd"))
	assert.Equal(t, "abcd", Trim0xPrefix("0Xabcd"))
	assert.Equal(t, "abcd", Trim0xPrefix("abcd"))

	assert.Equal(t, "0xabcd", Prepend0xPrefix("abcd"))
	assert.Equal(t, "0xabcd", Prepend0xPrefix("0xabcd"))
	assert.Equal(t, "0Xabcd", Prepend0xPrefix("0Xabcd"))
}

func TestHexStrByteSliceRoundTrip(t *testing.T) {
	b := HexStrToByteSlice("0xdeadbeef")
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, b)
	assert.Equal(t, "deadbeef", ByteSliceToPureHexStr(b))
}

func TestHexStrToBigInt(t *testing.T) {
	assert.Equal(t, int64(255), HexStrToBigInt("0xff").Int64())
	assert.Nil(t, HexStrToBigInt("not-hex"))
	assert.Equal(t, "0xff", BigIntToHexStr(big.NewInt(255)))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "0xab12...34cd", Shorten("0xab12ffffffffffff34cd", 4))
	// short strings pass through untouched
	assert.Equal(t, "0xabcd", Shorten("0xabcd", 4))
}
