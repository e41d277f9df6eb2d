package pubsub

import (
	"sync"
)

// PubSub is a topic-addressed registry of subscriber channels. Publishing
// to a topic nobody subscribed is a no-op. Each subscriber sees the events
// of a topic in publish order; ordering across subscribers is not defined.
type PubSub[T any] struct {
	mu   sync.Mutex
	subs map[string][]chan T
}

func NewPubSub[T any]() *PubSub[T] {
	return &PubSub[T]{
		subs: make(map[string][]chan T),
	}
}

func (ps *PubSub[T]) Subscribe(topic string) <-chan T {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ch := make(chan T)
	ps.subs[topic] = append(ps.subs[topic], ch)
	return ch
}

// Unsubscribe removes ch from topic and closes it, which terminates the
// subscriber's range loop. Unknown channels are ignored.
func (ps *PubSub[T]) Unsubscribe(topic string, ch <-chan T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	subs := ps.subs[topic]
	for i, c := range subs {
		if ch == c {
			ps.subs[topic] = append(subs[:i], subs[i+1:]...)
			close(c)
			return
		}
	}
}

func (ps *PubSub[T]) Publish(topic string, data T) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.subs[topic] {
		ch <- data
	}
}
