// Package backend declares the collaborators the core consumes but does not
// implement: the node gateway and the long-lived event publisher. Concrete
// adapters live outside this module; the eventhub package provides a
// reference EventHandler used by the core's own tests.
package backend

import (
	"context"

	"github.com/fforbeck/eth-propeller-core/values"
)

// Backend is the low-level gateway to a node: raw submit/query calls with no
// notion of nonce bookkeeping, queuing, or confirmation tracking.
type Backend interface {
	Submit(ctx context.Context, req values.TransactionRequest, nonce values.Nonce) (values.Hash, error)
	GetNonce(ctx context.Context, addr values.Address) (values.Nonce, error)
	EstimateGas(ctx context.Context, account, to values.Address, value values.Value, data values.Data) (values.GasUsage, error)
	GetGasPrice(ctx context.Context) (values.GasPrice, error)
	GetBalance(ctx context.Context, addr values.Address) (values.Value, error)
	AddressExists(ctx context.Context, addr values.Address) (bool, error)
	GetCode(ctx context.Context, addr values.Address) (values.Data, error)
	GetBlockByNumber(ctx context.Context, number uint64) (*values.BlockInfo, error)
	GetBlockByHash(ctx context.Context, hash values.Hash) (*values.BlockInfo, error)
	GetTransactionInfo(ctx context.Context, hash values.Hash) (*values.TransactionInfo, error)
	Register(handler EventHandler)
}

// EventHandler is the long-lived publisher of block and transaction-status
// notifications the confirmation waiter and the core's nonce
// reconciliation subscribe to.
type EventHandler interface {
	Ready(ctx context.Context) <-chan struct{}
	ObserveTransactions(ctx context.Context) (<-chan values.TransactionInfo, func())
	ObserveBlocks(ctx context.Context) (<-chan values.BlockInfo, func())
	GetCurrentBlockNumber() uint64
}
