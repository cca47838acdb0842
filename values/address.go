package values

import (
	"github.com/ethereum/go-ethereum/common"
)

// Address identifies an account. It is a thin alias over go-ethereum's
// 20-byte address so the core can be wired against any backend that already
// speaks in common.Address without a conversion layer at the boundary.
type Address = common.Address

// EmptyAddress is the sentinel recipient of a contract-creation transaction.
var EmptyAddress = Address{}

// IsEmpty reports whether addr is the contract-creation sentinel.
func IsEmpty(addr Address) bool {
	return addr == EmptyAddress
}

// AddressFromHex parses a hex-encoded address, accepting an optional 0x prefix.
func AddressFromHex(hex string) Address {
	return common.HexToAddress(hex)
}
