package eventhub

import (
	"context"

	"github.com/AsynkronIT/protoactor-go/actor"

	tplog "github.com/fforbeck/eth-propeller-core/log"
)

type eventActor struct {
	log     tplog.Logger
	manager *eventManager
}

func spawnEventActor(log tplog.Logger, system *actor.ActorSystem, manager *eventManager) (*actor.PID, error) {
	ea := &eventActor{log: log, manager: manager}
	props := actor.PropsFromProducer(func() actor.Actor { return ea })
	return system.Root.SpawnNamed(props, "eth-propeller-eventhub")
}

func (ea *eventActor) Receive(actorCtx actor.Context) {
	switch msg := actorCtx.Message().(type) {
	case *EventMsg:
		if err := ea.manager.dispatch(context.Background(), ea.log, msg); err != nil {
			ea.log.Errorf("dispatch event %s: %v", msg.Name, err)
		}
	}
}
