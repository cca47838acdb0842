// Package events implements C5, the Event Lookup & Filter: live
// streaming and historical queries of decoded contract events, both
// built on a SolidityEvent descriptor that knows how to recognise and
// parse its own payload out of a raw EventData record.
package events

import (
	"context"

	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/values"
)

// SolidityEvent[T] describes one contract event type: Match recognises
// whether a raw log entry is an occurrence of this event (typically by
// comparing its first topic to the event's signature hash), and Parse
// decodes the matched entry's payload into the host type T.
type SolidityEvent[T any] struct {
	Match func(values.EventData) bool
	Parse func(values.EventData) (T, error)
}

// Info pairs a parsed event value with the hash of the transaction that
// emitted it, for callers who need to correlate events back to their
// originating transaction.
type Info[T any] struct {
	Value           T
	TransactionHash values.Hash
}

func matchingEvents[T any](def SolidityEvent[T], receipt values.TransactionReceipt) ([]T, error) {
	var out []T
	for _, ev := range receipt.Events {
		if !def.Match(ev) {
			continue
		}
		parsed, err := def.Parse(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func matchingEventInfos[T any](def SolidityEvent[T], receipt values.TransactionReceipt) ([]Info[T], error) {
	var out []Info[T]
	for _, ev := range receipt.Events {
		if !def.Match(ev) {
			continue
		}
		parsed, err := def.Parse(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, Info[T]{Value: parsed, TransactionHash: ev.TransactionHash})
	}
	return out, nil
}

// ObserveEvents derives a live stream of decoded event values of type T
// from the Event Handler's transaction stream, keeping only receipts
// addressed to address and events def.Match accepts. The returned
// cancel func tears down the underlying transaction subscription.
func ObserveEvents[T any](ctx context.Context, handler backend.EventHandler, def SolidityEvent[T], address values.Address) (<-chan T, func(), error) {
	raw, cancel := handler.ObserveTransactions(ctx)
	out := make(chan T, 64)

	go func() {
		defer close(out)
		for info := range raw {
			if info.Receipt == nil || info.Receipt.ReceiveAddress != address {
				continue
			}
			parsed, err := matchingEvents(def, *info.Receipt)
			if err != nil {
				continue
			}
			for _, v := range parsed {
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// ObserveEventsWithInfo mirrors ObserveEvents, additionally carrying the
// originating transaction hash alongside each parsed value.
func ObserveEventsWithInfo[T any](ctx context.Context, handler backend.EventHandler, def SolidityEvent[T], address values.Address) (<-chan Info[T], func(), error) {
	raw, cancel := handler.ObserveTransactions(ctx)
	out := make(chan Info[T], 64)

	go func() {
		defer close(out)
		for info := range raw {
			if info.Receipt == nil || info.Receipt.ReceiveAddress != address {
				continue
			}
			parsed, err := matchingEventInfos(def, *info.Receipt)
			if err != nil {
				continue
			}
			for _, v := range parsed {
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// GetEventsAtBlock fetches a single block and returns the decoded events
// of def emitted by address's receipts within it. A missing block yields
// an empty, non-error result.
func GetEventsAtBlock[T any](ctx context.Context, ethereum backend.Backend, def SolidityEvent[T], address values.Address, blockNumber uint64) ([]T, error) {
	block, err := ethereum.GetBlockByNumber(ctx, blockNumber)
	if err != nil {
		return nil, &apierror.BackendError{Cause: err}
	}
	if block == nil {
		return nil, nil
	}

	var out []T
	for _, receipt := range block.Receipts {
		if receipt.ReceiveAddress != address {
			continue
		}
		parsed, err := matchingEvents(def, receipt)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed...)
	}
	return out, nil
}

// GetEventsAtBlockWithInfo mirrors GetEventsAtBlock, carrying the
// originating transaction hash alongside each parsed value.
func GetEventsAtBlockWithInfo[T any](ctx context.Context, ethereum backend.Backend, def SolidityEvent[T], address values.Address, blockNumber uint64) ([]Info[T], error) {
	block, err := ethereum.GetBlockByNumber(ctx, blockNumber)
	if err != nil {
		return nil, &apierror.BackendError{Cause: err}
	}
	if block == nil {
		return nil, nil
	}

	var out []Info[T]
	for _, receipt := range block.Receipts {
		if receipt.ReceiveAddress != address {
			continue
		}
		parsed, err := matchingEventInfos(def, receipt)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed...)
	}
	return out, nil
}

// GetEventsAtTransaction fetches a single transaction's receipt and
// returns the decoded events of def it contains for address. A missing
// receipt is a ReceiptNotFound error, per §4.5.
func GetEventsAtTransaction[T any](ctx context.Context, ethereum backend.Backend, def SolidityEvent[T], address values.Address, txHash values.Hash) ([]T, error) {
	info, err := ethereum.GetTransactionInfo(ctx, txHash)
	if err != nil {
		return nil, &apierror.BackendError{Cause: err}
	}
	if info == nil || info.Receipt == nil {
		return nil, &apierror.ReceiptNotFound{Hash: txHash}
	}
	if info.Receipt.ReceiveAddress != address {
		return nil, nil
	}
	return matchingEvents(def, *info.Receipt)
}

// GetEventsAtTransactionWithInfo mirrors GetEventsAtTransaction, carrying
// the originating transaction hash alongside each parsed value.
func GetEventsAtTransactionWithInfo[T any](ctx context.Context, ethereum backend.Backend, def SolidityEvent[T], address values.Address, txHash values.Hash) ([]Info[T], error) {
	info, err := ethereum.GetTransactionInfo(ctx, txHash)
	if err != nil {
		return nil, &apierror.BackendError{Cause: err}
	}
	if info == nil || info.Receipt == nil {
		return nil, &apierror.ReceiptNotFound{Hash: txHash}
	}
	if info.Receipt.ReceiveAddress != address {
		return nil, nil
	}
	return matchingEventInfos(def, *info.Receipt)
}
