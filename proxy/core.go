// Package proxy wires the Submission Serializer, Confirmation Waiter,
// Nonce Tracker, ABI Converter Registry, and Event Lookup & Filter into
// the single Core-exposed interface an application actually talks to.
package proxy

import (
	"context"
	"fmt"
	"reflect"

	"github.com/fforbeck/eth-propeller-core/abi"
	"github.com/fforbeck/eth-propeller-core/apierror"
	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/confirmation"
	"github.com/fforbeck/eth-propeller-core/configuration"
	"github.com/fforbeck/eth-propeller-core/events"
	"github.com/fforbeck/eth-propeller-core/future"
	tplog "github.com/fforbeck/eth-propeller-core/log"
	"github.com/fforbeck/eth-propeller-core/noncetracker"
	"github.com/fforbeck/eth-propeller-core/solidity"
	"github.com/fforbeck/eth-propeller-core/submission"
	"github.com/fforbeck/eth-propeller-core/values"
)

// Contract is a minimal description of a deployable contract: its
// runtime binary plus every constructor signature it declares, so
// Publish can pick the one matching the arguments it was called with.
type Contract struct {
	Binary       values.Data
	Constructors [][]solidity.Param
}

// CallDetails is the result of SendTx: the hash the backend assigned the
// transaction, and a future that resolves once it is confirmed, dropped,
// or deemed lost.
type CallDetails struct {
	Hash         values.Hash
	Confirmation *future.Future[values.TransactionReceipt]
}

// Core is the orchestrating façade over the core's five components.
type Core struct {
	log      tplog.Logger
	ethereum backend.Backend
	events   backend.EventHandler
	cfg      *configuration.EthereumConfig

	registry   *abi.Registry
	nonces     *noncetracker.Tracker
	serializer *submission.Serializer
	waiter     *confirmation.Waiter
}

// New builds a Core ready to Start. The supplied EventHandler must be
// the same one the backend will notify once Start registers it.
func New(log tplog.Logger, ethereum backend.Backend, handler backend.EventHandler, cfg *configuration.EthereumConfig) *Core {
	nonces := noncetracker.New(ethereum)
	return &Core{
		log:        log,
		ethereum:   ethereum,
		events:     handler,
		cfg:        cfg,
		registry:   abi.NewDefaultRegistry(),
		nonces:     nonces,
		serializer: submission.New(log, ethereum, nonces, cfg.SubmissionQueueCapacity),
		waiter:     confirmation.New(log, ethereum, handler, cfg),
	}
}

// Start registers the event handler with the backend, launches the
// Submission Serializer's worker, and begins reconciling nonce state off
// the event handler's transaction stream. It must be called once before
// SendTx, Publish, or PublishWithValue can make progress.
func (c *Core) Start(ctx context.Context) {
	c.ethereum.Register(c.events)
	c.serializer.Start(ctx)
	go c.reconcileNonces(ctx)
}

// Stop stops the Submission Serializer's worker and waits for it to exit.
// It does not drain the queue: requests still waiting in it may never be
// submitted.
func (c *Core) Stop() {
	c.serializer.Stop()
}

func (c *Core) reconcileNonces(ctx context.Context) {
	txCh, cancel := c.events.ObserveTransactions(ctx)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case info, ok := <-txCh:
			if !ok {
				return
			}
			c.serializer.Settle(ctx, info)
		}
	}
}

// SendTx enqueues a transaction from account to to carrying value and
// data, and returns the submission hash together with a handle to its
// confirmation future — the CallDetails tuple from §6.
func (c *Core) SendTx(ctx context.Context, account, to values.Address, value values.Value, data values.Data) (*future.Future[CallDetails], error) {
	gas, err := confirmation.EstimateGas(ctx, c.ethereum, c.cfg, account, to, value, data)
	if err != nil {
		return nil, err
	}
	price, err := c.ethereum.GetGasPrice(ctx)
	if err != nil {
		return nil, &apierror.BackendError{Cause: err}
	}

	req := values.TransactionRequest{
		Account:  account,
		To:       to,
		Value:    value,
		Data:     data,
		GasLimit: gas,
		GasPrice: price,
	}

	submitFuture, err := c.serializer.Submit(req)
	if err != nil {
		return nil, err
	}

	result := future.New[CallDetails]()
	go func() {
		hash, err := submitFuture.Get(ctx)
		if err != nil {
			result.Fail(err)
			return
		}
		confirmationFuture, _ := c.waiter.WaitForResult(ctx, hash)
		result.Complete(CallDetails{Hash: hash, Confirmation: confirmationFuture})
	}()
	return result, nil
}

// Publish deploys contract from account with the binary as-is (no value
// transfer), encoding args against whichever declared constructor
// matches their number and type. It returns a future resolving to the
// deployed contract's address.
func (c *Core) Publish(ctx context.Context, contract Contract, account values.Address, args ...interface{}) (*future.Future[values.Address], error) {
	return c.PublishWithValue(ctx, contract, account, values.Wei(0), args...)
}

// PublishWithValue mirrors Publish, additionally sending value with the
// creation transaction.
func (c *Core) PublishWithValue(ctx context.Context, contract Contract, account values.Address, value values.Value, args ...interface{}) (*future.Future[values.Address], error) {
	encodedArgs, err := c.encodeConstructorArgs(contract, args)
	if err != nil {
		return nil, err
	}

	data := make(values.Data, 0, len(contract.Binary)+len(encodedArgs))
	data = append(data, contract.Binary...)
	data = append(data, encodedArgs...)

	callFuture, err := c.SendTx(ctx, account, values.EmptyAddress, value, data)
	if err != nil {
		return nil, err
	}

	result := future.New[values.Address]()
	go func() {
		details, err := callFuture.Get(ctx)
		if err != nil {
			result.Fail(err)
			return
		}
		receipt, err := details.Confirmation.Get(ctx)
		if err != nil {
			result.Fail(err)
			return
		}
		if !receipt.HasContractAddress() {
			result.Fail(&apierror.ReceiptMissing{})
			return
		}
		result.Complete(receipt.ContractAddress)
	}()
	return result, nil
}

// encodeConstructorArgs picks the first declared constructor whose arity
// matches args and whose registered encoders accept every argument in
// order, then packs the arguments with it. Constructors are tried in
// declaration order so the first structurally compatible match wins,
// mirroring the registry's own first-acceptor-wins discipline.
func (c *Core) encodeConstructorArgs(contract Contract, args []interface{}) ([]byte, error) {
	if len(contract.Constructors) == 0 && len(args) == 0 {
		return nil, nil
	}

	argTypes := make([]string, len(args))
	for i, a := range args {
		argTypes[i] = fmt.Sprintf("%T", a)
	}

	for _, params := range contract.Constructors {
		if len(params) != len(args) {
			continue
		}
		packed, ok, err := c.tryPackConstructor(params, args)
		if err != nil {
			return nil, err
		}
		if ok {
			return packed, nil
		}
	}
	return nil, &apierror.NoConstructorMatch{ArgTypes: argTypes}
}

func (c *Core) tryPackConstructor(params []solidity.Param, args []interface{}) ([]byte, bool, error) {
	var out []byte
	for i, param := range params {
		encoders, err := c.registry.GetEncoders(param)
		if err != nil {
			return nil, false, err
		}
		encoder := firstAcceptingEncoder(encoders, args[i])
		if encoder == nil {
			return nil, false, nil
		}
		packed, err := encoder.Encode(args[i])
		if err != nil {
			return nil, false, err
		}
		out = append(out, packed...)
	}
	return out, true, nil
}

func firstAcceptingEncoder(encoders []abi.Encoder, value interface{}) abi.Encoder {
	for _, enc := range encoders {
		if enc.Accepts(value) {
			return enc
		}
	}
	return nil
}

// Registry mutators, exposed so application code can extend the
// converter registry without importing the abi package directly.

func (c *Core) AddEncoder(group solidity.Group, encoder abi.Encoder) { c.registry.AddEncoder(group, encoder) }
func (c *Core) AddDecoder(group solidity.Group, decoder abi.Decoder) { c.registry.AddDecoder(group, decoder) }
func (c *Core) AddListEncoder(factory abi.CollectionEncoderFactory)  { c.registry.AddListEncoder(factory) }
func (c *Core) AddListDecoder(factory abi.CollectionDecoderFactory)  { c.registry.AddListDecoder(factory) }
func (c *Core) AddVoidClass(hostType reflect.Type)                  { c.registry.AddVoidClass(hostType) }

// Info accessor passthroughs.

func (c *Core) AddressExists(ctx context.Context, addr values.Address) (bool, error) {
	return c.ethereum.AddressExists(ctx, addr)
}

func (c *Core) GetBalance(ctx context.Context, addr values.Address) (values.Value, error) {
	return c.ethereum.GetBalance(ctx, addr)
}

func (c *Core) GetCode(ctx context.Context, addr values.Address) (values.Data, error) {
	return c.ethereum.GetCode(ctx, addr)
}

func (c *Core) GetCurrentBlockNumber() uint64 {
	return c.events.GetCurrentBlockNumber()
}

func (c *Core) GetTransactionInfo(ctx context.Context, hash values.Hash) (*values.TransactionInfo, error) {
	return c.ethereum.GetTransactionInfo(ctx, hash)
}

// Event Lookup & Filter passthroughs.

func ObserveEvents[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address) (<-chan T, func(), error) {
	return events.ObserveEvents(ctx, c.events, def, address)
}

func ObserveEventsWithInfo[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address) (<-chan events.Info[T], func(), error) {
	return events.ObserveEventsWithInfo(ctx, c.events, def, address)
}

func GetEventsAtBlock[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address, blockNumber uint64) ([]T, error) {
	return events.GetEventsAtBlock(ctx, c.ethereum, def, address, blockNumber)
}

func GetEventsAtBlockWithInfo[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address, blockNumber uint64) ([]events.Info[T], error) {
	return events.GetEventsAtBlockWithInfo(ctx, c.ethereum, def, address, blockNumber)
}

func GetEventsAtTransaction[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address, txHash values.Hash) ([]T, error) {
	return events.GetEventsAtTransaction(ctx, c.ethereum, def, address, txHash)
}

func GetEventsAtTransactionWithInfo[T any](ctx context.Context, c *Core, def events.SolidityEvent[T], address values.Address, txHash values.Hash) ([]events.Info[T], error) {
	return events.GetEventsAtTransactionWithInfo(ctx, c.ethereum, def, address, txHash)
}
