package eventhub

import (
	"context"
	"fmt"
	"sync"

	tplog "github.com/fforbeck/eth-propeller-core/log"
)

// EventHandler receives one published value for the event it observed.
type EventHandler func(ctx context.Context, data interface{})

type event struct {
	name string

	sync        sync.RWMutex
	handlerList map[string]EventHandler // observation id -> handler
}

func newEvent(name string) *event {
	return &event{
		name:        name,
		handlerList: make(map[string]EventHandler),
	}
}

func (ev *event) addObserver(obsID string, handler EventHandler) error {
	ev.sync.Lock()
	defer ev.sync.Unlock()

	if _, ok := ev.handlerList[obsID]; ok {
		return fmt.Errorf("duplicated observation id: %s", obsID)
	}
	ev.handlerList[obsID] = handler
	return nil
}

func (ev *event) removeObserver(obsID string) {
	ev.sync.Lock()
	defer ev.sync.Unlock()
	delete(ev.handlerList, obsID)
}

func (ev *event) observerCount() int {
	ev.sync.RLock()
	defer ev.sync.RUnlock()
	return len(ev.handlerList)
}

func (ev *event) process(log tplog.Logger, ctx context.Context, data interface{}) {
	ev.sync.RLock()
	defer ev.sync.RUnlock()

	for _, handler := range ev.handlerList {
		h := handler
		go h(ctx, data)
	}
}
