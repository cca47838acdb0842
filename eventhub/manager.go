package eventhub

import (
	"context"
	"fmt"
	"sync"

	tplog "github.com/fforbeck/eth-propeller-core/log"
)

type eventManager struct {
	sync     sync.RWMutex
	eventMap map[string]*event
}

func newEventManager(names ...string) *eventManager {
	em := &eventManager{eventMap: make(map[string]*event)}
	for _, name := range names {
		em.eventMap[name] = newEvent(name)
	}
	return em
}

func (em *eventManager) addObserver(obsID, evName string, handler EventHandler) error {
	em.sync.RLock()
	defer em.sync.RUnlock()

	ev, ok := em.eventMap[evName]
	if !ok {
		return fmt.Errorf("unsupported event: %s", evName)
	}
	return ev.addObserver(obsID, handler)
}

func (em *eventManager) removeObserver(obsID, evName string) {
	em.sync.RLock()
	defer em.sync.RUnlock()

	if ev, ok := em.eventMap[evName]; ok {
		ev.removeObserver(obsID)
	}
}

func (em *eventManager) observerCount(evName string) int {
	em.sync.RLock()
	defer em.sync.RUnlock()

	ev, ok := em.eventMap[evName]
	if !ok {
		return 0
	}
	return ev.observerCount()
}

func (em *eventManager) dispatch(ctx context.Context, log tplog.Logger, msg *EventMsg) error {
	em.sync.RLock()
	defer em.sync.RUnlock()

	ev, ok := em.eventMap[msg.Name]
	if !ok {
		return fmt.Errorf("unsupported event: %s", msg.Name)
	}
	ev.process(log, ctx, msg.Data)
	return nil
}
