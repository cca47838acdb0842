package values

import (
	"github.com/ethereum/go-ethereum/common"
)

// Hash identifies a transaction or a block.
type Hash = common.Hash

// EmptyHash is the zero-value hash, used where no hash is known yet.
var EmptyHash = Hash{}

// HashFromHex parses a hex-encoded hash, accepting an optional 0x prefix.
func HashFromHex(hex string) Hash {
	return common.HexToHash(hex)
}
