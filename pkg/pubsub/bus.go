package pubsub

import (
	"sync"

	"f1recordsbot/pkg/events"
)

// Forwarder receives a copy of every broadcast event for later
// republishing on its own topic namespace.
type Forwarder interface {
	Enqueue(ev events.Event)
}

// Bus is the process-wide event bus: live delivery on (scope, type) topics
// plus fan-out to the registered delay rebroadcasters. There is exactly one
// Bus per process, built in main and handed to producers and consumers.
type Bus struct {
	*PubSub[events.Event]

	fmu        sync.Mutex
	forwarders []Forwarder
}

func NewBus() *Bus {
	return &Bus{
		PubSub: NewPubSub[events.Event](),
	}
}

func (b *Bus) AddForwarder(f Forwarder) {
	b.fmu.Lock()
	defer b.fmu.Unlock()
	b.forwarders = append(b.forwarders, f)
}

// BroadcastEvents publishes every event on its live topic and, when
// forwardToDelayed is set, hands each one to every registered forwarder.
// Delivery is fire-and-forget; there is no acknowledgment and no retry.
func (b *Bus) BroadcastEvents(evs []events.Event, forwardToDelayed bool) {
	b.fmu.Lock()
	forwarders := make([]Forwarder, len(b.forwarders))
	copy(forwarders, b.forwarders)
	b.fmu.Unlock()

	for _, ev := range evs {
		b.Publish(events.Topic(ev.Scope, ev.Type), ev)
		if forwardToDelayed {
			for _, f := range forwarders {
				f.Enqueue(ev)
			}
		}
	}
}
