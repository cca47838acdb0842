package confirmation

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/configuration"
	"github.com/fforbeck/eth-propeller-core/eventhub"
	"github.com/fforbeck/eth-propeller-core/log/zerologger"
	"github.com/fforbeck/eth-propeller-core/values"
)

type stubBackend struct {
	backend.Backend
	infoByHash map[values.Hash]*values.TransactionInfo
}

func (s *stubBackend) GetTransactionInfo(ctx context.Context, hash values.Hash) (*values.TransactionInfo, error) {
	return s.infoByHash[hash], nil
}

func (s *stubBackend) EstimateGas(ctx context.Context, account, to values.Address, value values.Value, data values.Data) (values.GasUsage, error) {
	return values.GasUsage(21000), nil
}

func testLogger() *zerologger.ZeroLogger {
	return zerologger.NewLogger(zerolog.Disabled, io.Discard)
}

func cfgWithBlockWait(n uint64) *configuration.EthereumConfig {
	cfg := configuration.DefEthereumConfig()
	cfg.BlockWaitLimit = n
	cfg.PollInterval = "1h" // keep the polling fallback out of the way in tests
	return cfg
}

func TestWaitForResultResolvesOnMinedReceipt(t *testing.T) {
	hub := eventhub.New(testLogger())
	require.NoError(t, hub.Start())
	defer hub.Stop()

	txHash := values.HashFromHex("0xaa")
	receipt := values.TransactionReceipt{Hash: txHash, IsSuccessful: true}
	be := &stubBackend{infoByHash: map[values.Hash]*values.TransactionInfo{
		txHash: {Hash: txHash, Status: values.StatusExecuted, Receipt: &receipt},
	}}

	hub.PublishBlock(values.BlockInfo{BlockNumber: 1})

	w := New(testLogger(), be, hub, cfgWithBlockWait(10))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, disposeSubs := w.WaitForResult(ctx, txHash)
	defer disposeSubs()

	require.True(t, hub.WaitForObserver(ctx, eventhub.EventNameBlocks, 1))
	hub.PublishBlock(values.BlockInfo{BlockNumber: 2})

	got, err := f.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, txHash, got.Hash)
	assert.True(t, got.IsSuccessful)
}

func TestWaitForResultFailsOnRevertedReceipt(t *testing.T) {
	hub := eventhub.New(testLogger())
	require.NoError(t, hub.Start())
	defer hub.Stop()

	txHash := values.HashFromHex("0xbb")
	receipt := values.TransactionReceipt{Hash: txHash, IsSuccessful: false, Error: "out of gas"}
	be := &stubBackend{infoByHash: map[values.Hash]*values.TransactionInfo{
		txHash: {Hash: txHash, Status: values.StatusExecuted, Receipt: &receipt},
	}}

	hub.PublishBlock(values.BlockInfo{BlockNumber: 1})

	w := New(testLogger(), be, hub, cfgWithBlockWait(10))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, disposeSubs := w.WaitForResult(ctx, txHash)
	defer disposeSubs()

	require.True(t, hub.WaitForObserver(ctx, eventhub.EventNameBlocks, 1))
	hub.PublishBlock(values.BlockInfo{BlockNumber: 2})

	_, err := f.Get(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of gas")
}

func TestWaitForResultFailsOnDrop(t *testing.T) {
	hub := eventhub.New(testLogger())
	require.NoError(t, hub.Start())
	defer hub.Stop()

	txHash := values.HashFromHex("0xcc")
	be := &stubBackend{infoByHash: map[values.Hash]*values.TransactionInfo{}}

	hub.PublishBlock(values.BlockInfo{BlockNumber: 1})

	w := New(testLogger(), be, hub, cfgWithBlockWait(10))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, disposeSubs := w.WaitForResult(ctx, txHash)
	defer disposeSubs()

	require.True(t, hub.WaitForObserver(ctx, eventhub.EventNameTransactions, 1))
	hub.PublishTransaction(values.TransactionInfo{Hash: txHash, Status: values.StatusDropped})

	_, err := f.Get(ctx)
	require.Error(t, err)
}

func TestWaitForResultTimesOut(t *testing.T) {
	hub := eventhub.New(testLogger())
	require.NoError(t, hub.Start())
	defer hub.Stop()

	txHash := values.HashFromHex("0xdd")
	be := &stubBackend{infoByHash: map[values.Hash]*values.TransactionInfo{}}

	hub.PublishBlock(values.BlockInfo{BlockNumber: 100})

	w := New(testLogger(), be, hub, cfgWithBlockWait(5))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, disposeSubs := w.WaitForResult(ctx, txHash)
	defer disposeSubs()

	require.True(t, hub.WaitForObserver(ctx, eventhub.EventNameBlocks, 1))
	hub.PublishBlock(values.BlockInfo{BlockNumber: 106})

	_, err := f.Get(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last 5 blocks")
}
