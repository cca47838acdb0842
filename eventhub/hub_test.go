package eventhub

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fforbeck/eth-propeller-core/log/zerologger"
	"github.com/fforbeck/eth-propeller-core/values"
)

func testLogger() *zerologger.ZeroLogger {
	return zerologger.NewLogger(zerolog.Disabled, io.Discard)
}

func TestPublishTransactionDeliversToObserver(t *testing.T) {
	h := New(testLogger())
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, stop := h.ObserveTransactions(ctx)
	defer stop()

	txHash := values.HashFromHex("0x11")
	h.PublishTransaction(values.TransactionInfo{Hash: txHash, Status: values.StatusExecuted})

	select {
	case info := <-out:
		assert.Equal(t, txHash, info.Hash)
	case <-time.After(time.Second):
		t.Fatal("expected a transaction notification")
	}
}

func TestPublishBlockDeliversToObserverAndUpdatesCurrentBlock(t *testing.T) {
	h := New(testLogger())
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, stop := h.ObserveBlocks(ctx)
	defer stop()

	h.PublishBlock(values.BlockInfo{BlockNumber: 5})

	select {
	case info := <-out:
		assert.EqualValues(t, 5, info.BlockNumber)
	case <-time.After(time.Second):
		t.Fatal("expected a block notification")
	}
	assert.EqualValues(t, 5, h.GetCurrentBlockNumber())
}

func TestReadyClosesAfterFirstBlock(t *testing.T) {
	h := New(testLogger())
	require.NoError(t, h.Start())
	defer h.Stop()

	select {
	case <-h.Ready(context.Background()):
		t.Fatal("should not be ready before any block is published")
	case <-time.After(20 * time.Millisecond):
	}

	h.PublishBlock(values.BlockInfo{BlockNumber: 1})

	select {
	case <-h.Ready(context.Background()):
	case <-time.After(time.Second):
		t.Fatal("expected Ready to close after the first block")
	}
}

func TestCancelStopsDeliveringFurtherNotifications(t *testing.T) {
	h := New(testLogger())
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	out, stop := h.ObserveTransactions(ctx)

	stop()
	cancel()

	h.PublishTransaction(values.TransactionInfo{Hash: values.HashFromHex("0x22")})

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("did not expect a notification after the observer was cancelled")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMultipleObserversEachReceiveTheSameNotification(t *testing.T) {
	h := New(testLogger())
	require.NoError(t, h.Start())
	defer h.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out1, stop1 := h.ObserveTransactions(ctx)
	defer stop1()
	out2, stop2 := h.ObserveTransactions(ctx)
	defer stop2()

	txHash := values.HashFromHex("0x33")
	h.PublishTransaction(values.TransactionInfo{Hash: txHash})

	for _, ch := range []<-chan values.TransactionInfo{out1, out2} {
		select {
		case info := <-ch:
			assert.Equal(t, txHash, info.Hash)
		case <-time.After(time.Second):
			t.Fatal("expected both observers to receive the notification")
		}
	}
}
