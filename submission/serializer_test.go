package submission

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/future"
	"github.com/fforbeck/eth-propeller-core/log/zerologger"
	"github.com/fforbeck/eth-propeller-core/noncetracker"
	"github.com/fforbeck/eth-propeller-core/values"
)

type fakeBackend struct {
	backend.Backend

	mu          sync.Mutex
	nonces      map[values.Address]values.Nonce
	submitCalls []values.Nonce
	submitErr   error
	submitCount int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nonces: make(map[values.Address]values.Nonce)}
}

func (b *fakeBackend) GetNonce(ctx context.Context, addr values.Address) (values.Nonce, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[addr], nil
}

func (b *fakeBackend) Submit(ctx context.Context, req values.TransactionRequest, nonce values.Nonce) (values.Hash, error) {
	atomic.AddInt32(&b.submitCount, 1)
	b.mu.Lock()
	b.submitCalls = append(b.submitCalls, nonce)
	err := b.submitErr
	b.mu.Unlock()
	if err != nil {
		return values.EmptyHash, err
	}
	return req.ContentHash(), nil
}

func testLogger() *zerologger.ZeroLogger {
	return zerologger.NewLogger(zerolog.Disabled, io.Discard)
}

func TestSubmitAssignsIncreasingNoncesForOneSender(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	account := values.AddressFromHex("0x11")
	futures := make([]*future.Future[values.Hash], 0, 5)
	for i := 0; i < 5; i++ {
		req := values.TransactionRequest{Account: account, To: account, GasLimit: values.GasUsage(i)}
		f, err := s.Submit(req)
		require.NoError(t, err)
		futures = append(futures, f)
	}

	for _, f := range futures {
		_, err := f.Get(ctx)
		require.NoError(t, err)
	}

	be.mu.Lock()
	defer be.mu.Unlock()
	require.Len(t, be.submitCalls, 5)
	for i, n := range be.submitCalls {
		assert.Equal(t, values.Nonce(i), n)
	}
}

func TestSubmitIsIdempotentForEqualRequests(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	account := values.AddressFromHex("0x22")
	req := values.TransactionRequest{Account: account, To: account, GasLimit: 21000}

	f1, err := s.Submit(req)
	require.NoError(t, err)
	f2, err := s.Submit(req)
	require.NoError(t, err)

	_, err = f1.Get(ctx)
	require.NoError(t, err)
	_, err = f2.Get(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, atomic.LoadInt32(&be.submitCount))
}

func TestSubmitFailsFutureOnBackendError(t *testing.T) {
	be := newFakeBackend()
	be.submitErr = errors.New("rpc timeout")
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	account := values.AddressFromHex("0x33")
	req := values.TransactionRequest{Account: account, To: account}

	f, err := s.Submit(req)
	require.NoError(t, err)

	_, err = f.Get(ctx)
	require.Error(t, err)
}

func TestSubmitReturnsBackpressureExceededWhenQueueFull(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	// No Start(): nothing drains the queue, so it fills up deterministically.
	s := New(testLogger(), be, tracker, 1)

	account := values.AddressFromHex("0x44")
	_, err := s.Submit(values.TransactionRequest{Account: account, GasLimit: 1})
	require.NoError(t, err)

	_, err = s.Submit(values.TransactionRequest{Account: account, GasLimit: 2})
	require.Error(t, err)
}

func TestSettleClearsNonceTrackerPendingEntry(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	account := values.AddressFromHex("0x66")
	f, err := s.Submit(values.TransactionRequest{Account: account, GasLimit: 1})
	require.NoError(t, err)
	hash, err := f.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, tracker.PendingCount(account))

	s.Settle(ctx, values.TransactionInfo{
		Hash:   hash,
		Status: values.StatusExecuted,
		Receipt: &values.TransactionReceipt{
			Hash:         hash,
			IsSuccessful: true,
		},
	})

	assert.Equal(t, 0, tracker.PendingCount(account))
}

func TestSettleIgnoresUnknownHash(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 16)

	require.NotPanics(t, func() {
		s.Settle(context.Background(), values.TransactionInfo{
			Hash:   values.HashFromHex("0x99"),
			Status: values.StatusDropped,
		})
	})
}

func TestStopWaitsForWorkerToExit(t *testing.T) {
	be := newFakeBackend()
	tracker := noncetracker.New(be)
	s := New(testLogger(), be, tracker, 4)
	ctx := context.Background()
	s.Start(ctx)

	account := values.AddressFromHex("0x55")
	_, err := s.Submit(values.TransactionRequest{Account: account})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
