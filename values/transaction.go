package values

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// Data is the opaque payload of a transaction: encoded constructor
// arguments, a method call, or raw bytes for a plain transfer.
type Data []byte

func EmptyData() Data { return Data{} }

// TransactionRequest is an immutable description of a transaction to be
// submitted from one account. Two requests are equal only if every field
// matches; ContentHash gives a stable key for that identity so it can be
// used to look up or deduplicate in-flight submissions.
type TransactionRequest struct {
	Account  Address
	To       Address
	Value    Value
	Data     Data
	GasLimit GasUsage
	GasPrice GasPrice
}

// Equals reports whether two requests describe the identical transaction.
func (r TransactionRequest) Equals(other TransactionRequest) bool {
	return r.ContentHash() == other.ContentHash()
}

// ContentHash derives a stable, content-based identity for the request. It
// is used as the key into the submission future map so that resubmitting an
// equal request is idempotent.
func (r TransactionRequest) ContentHash() Hash {
	buf := make([]byte, 0, 20+20+32+len(r.Data)+8+8)
	buf = append(buf, r.Account[:]...)
	buf = append(buf, r.To[:]...)
	buf = append(buf, r.Value.BigInt().FillBytes(make([]byte, 32))...)
	buf = append(buf, r.Data...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.GasLimit))
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.GasPrice))
	return crypto.Keccak256Hash(buf)
}

// TransactionStatus describes where a transaction stands relative to being
// included on-chain.
type TransactionStatus uint8

const (
	StatusPending TransactionStatus = iota
	StatusExecuted
	StatusDropped
)

func (s TransactionStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusExecuted:
		return "Executed"
	case StatusDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// EventData is a raw log entry emitted during execution of a transaction.
type EventData struct {
	Topics            [][]byte
	Data              []byte
	TransactionHash   Hash
}

// TransactionReceipt is the chain's record of a transaction's outcome.
type TransactionReceipt struct {
	Hash            Hash
	Sender          Address
	ReceiveAddress  Address
	ContractAddress Address // set iff this was a contract-creation transaction
	IsSuccessful    bool
	Error           string
	BlockHash       Hash
	Events          []EventData
}

// HasContractAddress reports whether this receipt deployed a contract.
func (r TransactionReceipt) HasContractAddress() bool {
	return !IsEmpty(r.ContractAddress)
}

// TransactionInfo is the backend's current knowledge about a transaction.
type TransactionInfo struct {
	Hash      Hash
	Receipt   *TransactionReceipt // nil until mined
	Status    TransactionStatus
	BlockHash Hash
}

// BlockInfo is a block header paired with the receipts of every transaction
// it contains, as needed to scan for events without a second round trip.
type BlockInfo struct {
	BlockNumber uint64
	BlockHash   Hash
	Receipts    []TransactionReceipt
}
