// Command propeller is a demonstration CLI exercising the core end to
// end against an in-memory backend: it publishes a trivial contract and
// sends it a follow-up call, printing the deployed contract's address,
// then the call's submission hash and whether it succeeded.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/fforbeck/eth-propeller-core/backend"
	"github.com/fforbeck/eth-propeller-core/configuration"
	"github.com/fforbeck/eth-propeller-core/eventhub"
	tplog "github.com/fforbeck/eth-propeller-core/log"
	logcomm "github.com/fforbeck/eth-propeller-core/log/common"
	"github.com/fforbeck/eth-propeller-core/proxy"
	"github.com/fforbeck/eth-propeller-core/values"
)

var mainCmd = &cobra.Command{Use: "propeller"}

func main() {
	mainCmd.AddCommand(demoCmd())

	if mainCmd.Execute() != nil {
		os.Exit(1)
	}
}

func demoCmd() *cobra.Command {
	var logOutput string
	var logParam string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Publishes and calls a trivial contract against an in-memory backend.",
		Long:  `Wires the core up against a fake, mine-on-demand node and walks through a publish and a follow-up call, printing the deployed address, the call's hash and its outcome.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runDemo(logOutput, logParam)
		},
	}
	cmd.Flags().StringVar(&logOutput, "log-output", "stderr", "where demo logs go: stderr, filelog, or syslog")
	cmd.Flags().StringVar(&logParam, "log-param", "", "output parameter: file path for filelog, address for syslog")
	return cmd
}

func parseLogOutput(s string) tplog.LogOutput {
	switch s {
	case "filelog":
		return tplog.FileLogOutput
	case "syslog":
		return tplog.SysLogOutput
	default:
		return tplog.StdErrOutput
	}
}

func runDemo(logOutput, logParam string) error {
	log, err := tplog.CreateMainLogger(logcomm.InfoLevel, tplog.TextFormat, parseLogOutput(logOutput), logParam)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	hub := eventhub.New(log)
	if err := hub.Start(); err != nil {
		return fmt.Errorf("starting event hub: %w", err)
	}
	defer hub.Stop()

	chain := newMemoryChain(hub)

	cfg := configuration.DefEthereumConfig()
	cfg.BlockWaitLimit = 5
	cfg.PollInterval = "1h" // the demo chain mines synchronously; no need to poll

	core := proxy.New(log, chain, hub, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	core.Start(ctx)
	defer core.Stop()

	hub.PublishBlock(values.BlockInfo{BlockNumber: 1})

	deployer := values.AddressFromHex("0xd0")
	contract := proxy.Contract{Binary: values.Data{0xDE, 0xAD, 0xBE, 0xEF}}

	addrFuture, err := core.Publish(ctx, contract, deployer)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	chain.mineAll(hub)

	contractAddr, err := addrFuture.Get(ctx)
	if err != nil {
		return fmt.Errorf("waiting for deployment: %w", err)
	}
	fmt.Printf("deployed contract at %s\n", contractAddr.Hex())

	callFuture, err := core.SendTx(ctx, deployer, contractAddr, values.Wei(0), values.Data{0x01, 0x02})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	chain.mineAll(hub)

	details, err := callFuture.Get(ctx)
	if err != nil {
		return fmt.Errorf("waiting for call submission: %w", err)
	}
	fmt.Printf("submitted call %s\n", details.Hash.Hex())

	receipt, err := details.Confirmation.Get(ctx)
	if err != nil {
		return fmt.Errorf("waiting for call confirmation: %w", err)
	}
	fmt.Printf("call confirmed, successful=%v\n", receipt.IsSuccessful)
	return nil
}

// memoryChain is a minimal, single-process backend.Backend: every
// submitted transaction mines immediately into a receipt the moment
// mineAll is called, with no real EVM execution behind it.
type memoryChain struct {
	hub *eventhub.Hub

	mu       sync.Mutex
	nonces   map[values.Address]values.Nonce
	pending  []values.TransactionInfo
	byHash   map[values.Hash]*values.TransactionInfo
	nextAddr uint64
}

func newMemoryChain(hub *eventhub.Hub) *memoryChain {
	return &memoryChain{
		hub:    hub,
		nonces: make(map[values.Address]values.Nonce),
		byHash: make(map[values.Hash]*values.TransactionInfo),
	}
}

func (c *memoryChain) Submit(ctx context.Context, req values.TransactionRequest, nonce values.Nonce) (values.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := req.ContentHash()
	receipt := values.TransactionReceipt{
		Hash:           hash,
		Sender:         req.Account,
		ReceiveAddress: req.To,
		IsSuccessful:   true,
	}
	if values.IsEmpty(req.To) {
		c.nextAddr++
		receipt.ContractAddress = values.AddressFromHex(fmt.Sprintf("0x%x", c.nextAddr))
	}

	info := &values.TransactionInfo{Hash: hash, Status: values.StatusExecuted, Receipt: &receipt}
	c.byHash[hash] = info
	c.pending = append(c.pending, *info)
	c.nonces[req.Account] = nonce.Add(1)
	return hash, nil
}

// mineAll waits for the Submission Serializer to have actually reached
// the chain (its worker runs on its own goroutine, so there is a short
// window after SendTx/Publish returns where nothing has landed yet),
// then publishes every pending transaction and a new block to unblock
// whichever Confirmation Waiter is watching for it.
func (c *memoryChain) mineAll(hub *eventhub.Hub) {
	deadline := time.Now().Add(2 * time.Second)
	var batch []values.TransactionInfo
	for time.Now().Before(deadline) {
		c.mu.Lock()
		if len(c.pending) > 0 {
			batch = c.pending
			c.pending = nil
		}
		c.mu.Unlock()
		if batch != nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	for _, info := range batch {
		hub.PublishTransaction(info)
	}
	hub.PublishBlock(values.BlockInfo{BlockNumber: hub.GetCurrentBlockNumber() + 1})
	time.Sleep(50 * time.Millisecond)
}

func (c *memoryChain) GetNonce(ctx context.Context, addr values.Address) (values.Nonce, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[addr], nil
}

func (c *memoryChain) EstimateGas(ctx context.Context, account, to values.Address, value values.Value, data values.Data) (values.GasUsage, error) {
	return values.GasUsage(21000), nil
}

func (c *memoryChain) GetGasPrice(ctx context.Context) (values.GasPrice, error) {
	return values.GasPrice(1), nil
}

func (c *memoryChain) GetBalance(ctx context.Context, addr values.Address) (values.Value, error) {
	return values.Wei(0), nil
}

func (c *memoryChain) AddressExists(ctx context.Context, addr values.Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.nonces[addr]
	return ok, nil
}

func (c *memoryChain) GetCode(ctx context.Context, addr values.Address) (values.Data, error) {
	return values.EmptyData(), nil
}

func (c *memoryChain) GetBlockByNumber(ctx context.Context, number uint64) (*values.BlockInfo, error) {
	return nil, nil
}

func (c *memoryChain) GetBlockByHash(ctx context.Context, hash values.Hash) (*values.BlockInfo, error) {
	return nil, nil
}

func (c *memoryChain) GetTransactionInfo(ctx context.Context, hash values.Hash) (*values.TransactionInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byHash[hash], nil
}

func (c *memoryChain) Register(handler backend.EventHandler) {}

var _ backend.Backend = (*memoryChain)(nil)
