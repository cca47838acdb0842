// Package eventhub is a reference implementation of the backend.EventHandler
// collaborator: a multicast publisher of block and transaction-status
// notifications, built on the same actor-based dispatch the rest of the
// pack's nodes use internally. Production backends are free to supply their
// own EventHandler; this one backs the core's tests and examples.
package eventhub

import (
	"context"
	"sync"
	"time"

	"github.com/AsynkronIT/protoactor-go/actor"
	"github.com/google/uuid"

	"github.com/fforbeck/eth-propeller-core/backend"
	tplog "github.com/fforbeck/eth-propeller-core/log"
	"github.com/fforbeck/eth-propeller-core/values"
)

var _ backend.EventHandler = (*Hub)(nil)

type Hub struct {
	log     tplog.Logger
	system  *actor.ActorSystem
	pid     *actor.PID
	manager *eventManager

	readyOnce sync.Once
	readyCh   chan struct{}

	blockMu     sync.Mutex
	lastBlock   uint64
}

func New(log tplog.Logger) *Hub {
	return &Hub{
		log:     log,
		manager: newEventManager(EventNameTransactions, EventNameBlocks),
		readyCh: make(chan struct{}),
	}
}

func (h *Hub) Start() error {
	h.system = actor.NewActorSystem()
	pid, err := spawnEventActor(h.log, h.system, h.manager)
	if err != nil {
		return err
	}
	h.pid = pid
	return nil
}

func (h *Hub) Stop() {
	if h.system != nil && h.pid != nil {
		h.system.Root.Poison(h.pid)
	}
}

// PublishTransaction notifies every transaction observer of a status change.
func (h *Hub) PublishTransaction(info values.TransactionInfo) {
	h.system.Root.Send(h.pid, &EventMsg{Name: EventNameTransactions, Data: info})
}

// PublishBlock notifies every block observer of a new block and marks the
// hub ready on first call.
func (h *Hub) PublishBlock(info values.BlockInfo) {
	h.blockMu.Lock()
	if info.BlockNumber > h.lastBlock {
		h.lastBlock = info.BlockNumber
	}
	h.blockMu.Unlock()

	h.readyOnce.Do(func() { close(h.readyCh) })
	h.system.Root.Send(h.pid, &EventMsg{Name: EventNameBlocks, Data: info})
}

func (h *Hub) Ready(ctx context.Context) <-chan struct{} {
	return h.readyCh
}

// ObserverCount reports how many observers are currently registered for
// name (EventNameTransactions or EventNameBlocks).
func (h *Hub) ObserverCount(name string) int {
	return h.manager.observerCount(name)
}

// WaitForObserver blocks until at least n observers are registered for
// name or ctx is done, reporting which happened first. Callers that
// drive publication from outside the subscriber (tests, demo CLIs)
// use this instead of a fixed sleep to avoid racing a subscription that
// registers asynchronously, e.g. behind a future resolution.
func (h *Hub) WaitForObserver(ctx context.Context, name string, n int) bool {
	if h.ObserverCount(name) >= n {
		return true
	}
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if h.ObserverCount(name) >= n {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}

func (h *Hub) GetCurrentBlockNumber() uint64 {
	h.blockMu.Lock()
	defer h.blockMu.Unlock()
	return h.lastBlock
}

// ObserveTransactions returns a bounded subscription of transaction-status
// notifications. The returned cancel func must be called once the caller is
// done to avoid leaking the observer registration.
func (h *Hub) ObserveTransactions(ctx context.Context) (<-chan values.TransactionInfo, func()) {
	out := make(chan values.TransactionInfo, 64)
	obsID := uuid.NewString()

	h.manager.addObserver(obsID, EventNameTransactions, func(_ context.Context, data interface{}) {
		info, ok := data.(values.TransactionInfo)
		if !ok {
			return
		}
		select {
		case out <- info:
		case <-ctx.Done():
		}
	})

	cancel := func() { h.manager.removeObserver(obsID, EventNameTransactions) }
	return out, cancel
}

// ObserveBlocks mirrors ObserveTransactions for new-block notifications.
func (h *Hub) ObserveBlocks(ctx context.Context) (<-chan values.BlockInfo, func()) {
	out := make(chan values.BlockInfo, 64)
	obsID := uuid.NewString()

	h.manager.addObserver(obsID, EventNameBlocks, func(_ context.Context, data interface{}) {
		info, ok := data.(values.BlockInfo)
		if !ok {
			return
		}
		select {
		case out <- info:
		case <-ctx.Done():
		}
	})

	cancel := func() { h.manager.removeObserver(obsID, EventNameBlocks) }
	return out, cancel
}
