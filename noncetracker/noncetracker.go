// Package noncetracker maintains the per-account next-nonce, accounting for
// transactions that have been submitted but not yet mined or dropped.
package noncetracker

import (
	"context"
	"sync"

	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/values"
)

// Tracker is the single source of truth for "what nonce should the next
// transaction from this account use". All mutations are serialised under a
// single lock so that a read always observes a consistent
// (backendNonce, pendingSize) pair.
type Tracker struct {
	ethereum backend.Backend

	lock          sync.Mutex
	backendNonces map[values.Address]values.Nonce
	pending       map[values.Address]map[values.Hash]struct{}
}

func New(ethereum backend.Backend) *Tracker {
	return &Tracker{
		ethereum:      ethereum,
		backendNonces: make(map[values.Address]values.Nonce),
		pending:       make(map[values.Address]map[values.Hash]struct{}),
	}
}

// GetNonce returns backendNonce[addr] + |pending[addr]|, fetching the
// backend nonce lazily on first reference.
func (t *Tracker) GetNonce(ctx context.Context, addr values.Address) (values.Nonce, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	base, err := t.backendNonceLocked(ctx, addr)
	if err != nil {
		return 0, err
	}
	return base.Add(uint32(len(t.pending[addr]))), nil
}

func (t *Tracker) backendNonceLocked(ctx context.Context, addr values.Address) (values.Nonce, error) {
	if n, ok := t.backendNonces[addr]; ok {
		return n, nil
	}
	n, err := t.ethereum.GetNonce(ctx, addr)
	if err != nil {
		return 0, err
	}
	t.backendNonces[addr] = n
	return n, nil
}

// RecordPending marks hash as in-flight for addr, so subsequent GetNonce
// calls skip over it.
func (t *Tracker) RecordPending(addr values.Address, hash values.Hash) {
	t.lock.Lock()
	defer t.lock.Unlock()

	set, ok := t.pending[addr]
	if !ok {
		set = make(map[values.Hash]struct{})
		t.pending[addr] = set
	}
	set[hash] = struct{}{}
}

// OnMined removes the receipt's hash from the sender's pending set and
// refreshes the sender's backend nonce.
func (t *Tracker) OnMined(ctx context.Context, receipt values.TransactionReceipt) error {
	return t.settle(ctx, receipt.Sender, receipt.Hash)
}

// OnDropped mirrors OnMined for a transaction the backend reports as
// dropped from the mempool.
func (t *Tracker) OnDropped(ctx context.Context, receipt values.TransactionReceipt) error {
	return t.settle(ctx, receipt.Sender, receipt.Hash)
}

func (t *Tracker) settle(ctx context.Context, addr values.Address, hash values.Hash) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if set, ok := t.pending[addr]; ok {
		delete(set, hash)
	}

	n, err := t.ethereum.GetNonce(ctx, addr)
	if err != nil {
		return err
	}
	t.backendNonces[addr] = n
	return nil
}

// PendingCount reports how many transactions are currently considered
// in-flight for addr. Exposed for tests and diagnostics.
func (t *Tracker) PendingCount(addr values.Address) int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.pending[addr])
}

// Forget drops all tracked state for addr. The pending set is otherwise
// never pruned per sender, which is fine while the number of distinct
// senders stays bounded; callers that churn through many one-shot accounts
// should call this once an account is known to be retired.
func (t *Tracker) Forget(addr values.Address) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.backendNonces, addr)
	delete(t.pending, addr)
}
