package noncetracker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/values"
)

type fakeBackend struct {
	backend.Backend
	nonces  map[values.Address]values.Nonce
	nonceErr error
}

func (b *fakeBackend) GetNonce(ctx context.Context, addr values.Address) (values.Nonce, error) {
	if b.nonceErr != nil {
		return 0, b.nonceErr
	}
	return b.nonces[addr], nil
}

func TestGetNonceFetchesBackendNonceOnFirstReference(t *testing.T) {
	addr := values.AddressFromHex("0x11")
	be := &fakeBackend{nonces: map[values.Address]values.Nonce{addr: 7}}
	tr := New(be)

	n, err := tr.GetNonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, values.Nonce(7), n)
}

func TestGetNonceAccountsForPendingTransactions(t *testing.T) {
	addr := values.AddressFromHex("0x22")
	be := &fakeBackend{nonces: map[values.Address]values.Nonce{addr: 3}}
	tr := New(be)

	tr.RecordPending(addr, values.HashFromHex("0xaa"))
	tr.RecordPending(addr, values.HashFromHex("0xbb"))

	n, err := tr.GetNonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, values.Nonce(5), n)
}

func TestOnMinedClearsPendingAndRefreshesBackendNonce(t *testing.T) {
	addr := values.AddressFromHex("0x33")
	hash := values.HashFromHex("0xcc")
	be := &fakeBackend{nonces: map[values.Address]values.Nonce{addr: 1}}
	tr := New(be)

	tr.RecordPending(addr, hash)
	assert.Equal(t, 1, tr.PendingCount(addr))

	be.nonces[addr] = 2
	require.NoError(t, tr.OnMined(context.Background(), values.TransactionReceipt{Sender: addr, Hash: hash}))

	assert.Equal(t, 0, tr.PendingCount(addr))
	n, err := tr.GetNonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, values.Nonce(2), n)
}

func TestOnDroppedClearsPending(t *testing.T) {
	addr := values.AddressFromHex("0x44")
	hash := values.HashFromHex("0xdd")
	be := &fakeBackend{nonces: map[values.Address]values.Nonce{addr: 0}}
	tr := New(be)

	tr.RecordPending(addr, hash)
	require.NoError(t, tr.OnDropped(context.Background(), values.TransactionReceipt{Sender: addr, Hash: hash}))

	assert.Equal(t, 0, tr.PendingCount(addr))
}

func TestGetNonceSurfacesBackendError(t *testing.T) {
	addr := values.AddressFromHex("0x55")
	be := &fakeBackend{nonceErr: errors.New("rpc down")}
	tr := New(be)

	_, err := tr.GetNonce(context.Background(), addr)
	assert.Error(t, err)
}

func TestForgetDropsTrackedState(t *testing.T) {
	addr := values.AddressFromHex("0x66")
	be := &fakeBackend{nonces: map[values.Address]values.Nonce{addr: 9}}
	tr := New(be)

	tr.RecordPending(addr, values.HashFromHex("0xee"))
	tr.Forget(addr)

	assert.Equal(t, 0, tr.PendingCount(addr))
	be.nonces[addr] = 20
	n, err := tr.GetNonce(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, values.Nonce(20), n)
}
