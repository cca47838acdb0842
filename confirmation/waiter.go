// Package confirmation implements the Confirmation Waiter: it races a
// drop stream, a block-triggered receipt poll, a block-count timeout, and
// a fixed-interval polling fallback against each other and resolves a
// single future with whichever of them observes the transaction's
// outcome first.
package confirmation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/configuration"
	"github.com/fforbeck/eth-propeller-core/future"
	tplog "github.com/fforbeck/eth-propeller-core/log"
	"github.com/fforbeck/eth-propeller-core/values"
)

// Waiter turns a submitted transaction hash into a future receipt.
type Waiter struct {
	log          tplog.Logger
	ethereum     backend.Backend
	events       backend.EventHandler
	blockWait    uint64
	pollInterval time.Duration
}

// New builds a Waiter against cfg.BlockWaitLimit and the poll interval
// from cfg.PollInterval (defaulting to 10s per §4.4 if cfg's value
// doesn't parse).
func New(log tplog.Logger, ethereum backend.Backend, events backend.EventHandler, cfg *configuration.EthereumConfig) *Waiter {
	interval := 10 * time.Second
	if cfg.PollInterval != "" {
		if d, err := time.ParseDuration(cfg.PollInterval); err == nil {
			interval = d
		}
	}
	return &Waiter{
		log:          log,
		ethereum:     ethereum,
		events:       events,
		blockWait:    cfg.BlockWaitLimit,
		pollInterval: interval,
	}
}

// outcomeKind tags the result observed by one of the four merged
// sources, replacing the sentinel "empty TransactionInfo" the design
// notes flag as a less-clean alternative to a tagged variant.
type outcomeKind int

const (
	outcomeReceipt outcomeKind = iota
	outcomeDropped
	outcomeTimeout
)

type outcome struct {
	kind    outcomeKind
	receipt values.TransactionReceipt
	reason  string
}

// WaitForResult snapshots the current block number and returns a future
// that resolves once the transaction is confirmed, reverted, dropped, or
// timed out. The returned cancel func disposes every internal
// subscription early; callers that abandon interest in the result should
// call it to avoid leaking the event subscriptions.
func (w *Waiter) WaitForResult(ctx context.Context, txHash values.Hash) (*future.Future[values.TransactionReceipt], func()) {
	result := future.New[values.TransactionReceipt]()
	startBlock := w.events.GetCurrentBlockNumber()

	waitCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(waitCtx)

	var resolveOnce sync.Once
	resolve := func(o outcome) {
		resolveOnce.Do(func() {
			switch o.kind {
			case outcomeReceipt:
				if o.receipt.IsSuccessful {
					result.Complete(o.receipt)
				} else {
					result.Fail(&apierror.TransactionReverted{Hash: o.receipt.Hash, Error_: o.receipt.Error})
				}
			case outcomeDropped:
				result.Fail(&apierror.TransactionDropped{Reason: o.reason})
			case outcomeTimeout:
				result.Fail(&apierror.InclusionTimeout{Blocks: w.blockWait})
			}
			cancel()
		})
	}

	txCh, cancelTx := w.events.ObserveTransactions(gctx)
	blockCh, cancelBlock := w.events.ObserveBlocks(gctx)

	g.Go(func() error { return w.runDropStream(gctx, txCh, txHash, resolve) })
	g.Go(func() error { return w.runBlockReceiptStream(gctx, blockCh, txHash, startBlock, resolve) })
	g.Go(func() error { return w.runPollingStream(gctx, txHash, resolve) })

	go func() {
		_ = g.Wait()
		cancelTx()
		cancelBlock()
	}()

	return result, cancel
}

func (w *Waiter) runDropStream(ctx context.Context, txCh <-chan values.TransactionInfo, txHash values.Hash, resolve func(outcome)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case info, ok := <-txCh:
			if !ok {
				return nil
			}
			if info.Hash != txHash || info.Status != values.StatusDropped {
				continue
			}
			reason := "reported dropped by the event handler"
			if info.Receipt != nil && info.Receipt.Error != "" {
				reason = info.Receipt.Error
			}
			w.log.Debugf("transaction %s reported dropped: %s", txHash, reason)
			resolve(outcome{kind: outcomeDropped, reason: reason})
			return nil
		}
	}
}

func (w *Waiter) runBlockReceiptStream(ctx context.Context, blockCh <-chan values.BlockInfo, txHash values.Hash, startBlock uint64, resolve func(outcome)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case block, ok := <-blockCh:
			if !ok {
				return nil
			}
			if w.blockWait > 0 && block.BlockNumber > startBlock+w.blockWait {
				w.log.Debugf("transaction %s timed out after block %d", txHash, block.BlockNumber)
				resolve(outcome{kind: outcomeTimeout})
				return nil
			}

			info, err := w.ethereum.GetTransactionInfo(ctx, txHash)
			if err != nil {
				w.log.Warnf("getTransactionInfo(%s) failed: %v", txHash, err)
				continue
			}
			if info != nil && info.Receipt != nil {
				resolve(outcome{kind: outcomeReceipt, receipt: *info.Receipt})
				return nil
			}
		}
	}
}

func (w *Waiter) runPollingStream(ctx context.Context, txHash values.Hash, resolve func(outcome)) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := w.ethereum.GetTransactionInfo(ctx, txHash)
			if err != nil {
				w.log.Warnf("getTransactionInfo(%s) failed: %v", txHash, err)
				continue
			}
			if info != nil && info.Status == values.StatusExecuted && info.Receipt != nil {
				resolve(outcome{kind: outcomeReceipt, receipt: *info.Receipt})
				return nil
			}
		}
	}
}

// EstimateGas applies the gas-estimate padding from §4.4: the backend's
// raw estimate, plus a pessimistic universal pad, plus an additional pad
// when to is empty (contract creation).
func EstimateGas(ctx context.Context, ethereum backend.Backend, cfg *configuration.EthereumConfig, account, to values.Address, value values.Value, data values.Data) (values.GasUsage, error) {
	base, err := ethereum.EstimateGas(ctx, account, to, value, data)
	if err != nil {
		return 0, &apierror.BackendError{Cause: err}
	}
	estimate := base.Add(cfg.AdditionalGasDirtyFix)
	if values.IsEmpty(to) {
		estimate = estimate.Add(cfg.AdditionalGasForContractCreation)
	}
	return estimate, nil
}
