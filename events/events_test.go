package events

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/eventhub"
	"github.com/fforbeck/eth-propeller-core/log/zerologger"
	"github.com/fforbeck/eth-propeller-core/values"
	"github.com/rs/zerolog"
)

// transferEvent is a stand-in for a generated Solidity event binding: it
// matches any log whose first topic is "transfer" and parses the payload
// as its raw string contents.
var transferEvent = SolidityEvent[string]{
	Match: func(ev values.EventData) bool {
		return len(ev.Topics) > 0 && string(ev.Topics[0]) == "transfer"
	},
	Parse: func(ev values.EventData) (string, error) {
		return string(ev.Data), nil
	},
}

func testLogger() *zerologger.ZeroLogger {
	return zerologger.NewLogger(zerolog.Disabled, io.Discard)
}

type fakeBackend struct {
	backend.Backend
	blocks map[uint64]*values.BlockInfo
	infos  map[values.Hash]*values.TransactionInfo
}

func (b *fakeBackend) GetBlockByNumber(ctx context.Context, number uint64) (*values.BlockInfo, error) {
	return b.blocks[number], nil
}

func (b *fakeBackend) GetTransactionInfo(ctx context.Context, hash values.Hash) (*values.TransactionInfo, error) {
	return b.infos[hash], nil
}

func TestGetEventsAtBlockFiltersByAddressAndMatch(t *testing.T) {
	addr := values.AddressFromHex("0x11")
	other := values.AddressFromHex("0x22")
	txHash := values.HashFromHex("0xaa")

	block := &values.BlockInfo{
		BlockNumber: 7,
		Receipts: []values.TransactionReceipt{
			{
				Hash:           txHash,
				ReceiveAddress: addr,
				IsSuccessful:   true,
				Events: []values.EventData{
					{Topics: [][]byte{[]byte("transfer")}, Data: []byte("alice->bob"), TransactionHash: txHash},
					{Topics: [][]byte{[]byte("approval")}, Data: []byte("ignored"), TransactionHash: txHash},
				},
			},
			{
				Hash:           values.HashFromHex("0xbb"),
				ReceiveAddress: other,
				Events: []values.EventData{
					{Topics: [][]byte{[]byte("transfer")}, Data: []byte("not-ours")},
				},
			},
		},
	}

	be := &fakeBackend{blocks: map[uint64]*values.BlockInfo{7: block}}

	got, err := GetEventsAtBlock(context.Background(), be, transferEvent, addr, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice->bob", got[0])
}

func TestGetEventsAtBlockMissingBlockIsEmptyNotError(t *testing.T) {
	be := &fakeBackend{blocks: map[uint64]*values.BlockInfo{}}
	got, err := GetEventsAtBlock(context.Background(), be, transferEvent, values.AddressFromHex("0x11"), 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetEventsAtBlockWithInfoCarriesTransactionHash(t *testing.T) {
	addr := values.AddressFromHex("0x33")
	txHash := values.HashFromHex("0xcc")
	block := &values.BlockInfo{
		BlockNumber: 1,
		Receipts: []values.TransactionReceipt{
			{
				Hash:           txHash,
				ReceiveAddress: addr,
				Events: []values.EventData{
					{Topics: [][]byte{[]byte("transfer")}, Data: []byte("payload"), TransactionHash: txHash},
				},
			},
		},
	}
	be := &fakeBackend{blocks: map[uint64]*values.BlockInfo{1: block}}

	got, err := GetEventsAtBlockWithInfo(context.Background(), be, transferEvent, addr, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "payload", got[0].Value)
	assert.Equal(t, txHash, got[0].TransactionHash)
}

func TestGetEventsAtTransactionReturnsReceiptNotFound(t *testing.T) {
	be := &fakeBackend{infos: map[values.Hash]*values.TransactionInfo{}}
	_, err := GetEventsAtTransaction(context.Background(), be, transferEvent, values.AddressFromHex("0x11"), values.HashFromHex("0xdd"))
	require.Error(t, err)
	var notFound *apierror.ReceiptNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestGetEventsAtTransactionReturnsMatchingEvents(t *testing.T) {
	addr := values.AddressFromHex("0x44")
	txHash := values.HashFromHex("0xee")
	receipt := values.TransactionReceipt{
		Hash:           txHash,
		ReceiveAddress: addr,
		Events: []values.EventData{
			{Topics: [][]byte{[]byte("transfer")}, Data: []byte("xyz"), TransactionHash: txHash},
		},
	}
	be := &fakeBackend{infos: map[values.Hash]*values.TransactionInfo{
		txHash: {Hash: txHash, Status: values.StatusExecuted, Receipt: &receipt},
	}}

	got, err := GetEventsAtTransaction(context.Background(), be, transferEvent, addr, txHash)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "xyz", got[0])
}

func TestGetEventsAtTransactionAddressMismatchYieldsEmpty(t *testing.T) {
	addr := values.AddressFromHex("0x55")
	other := values.AddressFromHex("0x66")
	txHash := values.HashFromHex("0xff")
	receipt := values.TransactionReceipt{
		Hash:           txHash,
		ReceiveAddress: other,
		Events: []values.EventData{
			{Topics: [][]byte{[]byte("transfer")}, Data: []byte("xyz"), TransactionHash: txHash},
		},
	}
	be := &fakeBackend{infos: map[values.Hash]*values.TransactionInfo{
		txHash: {Hash: txHash, Status: values.StatusExecuted, Receipt: &receipt},
	}}

	got, err := GetEventsAtTransaction(context.Background(), be, transferEvent, addr, txHash)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestObserveEventsStreamsMatchingLiveEvents(t *testing.T) {
	hub := eventhub.New(testLogger())
	require.NoError(t, hub.Start())
	defer hub.Stop()

	addr := values.AddressFromHex("0x77")
	txHash := values.HashFromHex("0x88")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, stop, err := ObserveEvents[string](ctx, hub, transferEvent, addr)
	require.NoError(t, err)
	defer stop()

	require.True(t, hub.WaitForObserver(ctx, eventhub.EventNameTransactions, 1))

	receipt := values.TransactionReceipt{
		Hash:           txHash,
		ReceiveAddress: addr,
		IsSuccessful:   true,
		Events: []values.EventData{
			{Topics: [][]byte{[]byte("transfer")}, Data: []byte("live"), TransactionHash: txHash},
		},
	}
	hub.PublishTransaction(values.TransactionInfo{Hash: txHash, Status: values.StatusExecuted, Receipt: &receipt})

	select {
	case v := <-out:
		assert.Equal(t, "live", v)
	case <-time.After(1 * time.Second):
		t.Fatal("expected a matching event on the stream")
	}
}
