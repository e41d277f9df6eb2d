package pubsub

import (
	"testing"

	"f1recordsbot/pkg/events"
)

func TestPublishOrderPerSubscriber(t *testing.T) {
	ps := NewPubSub[int]()
	ch := ps.Subscribe("topic")

	received := make(chan []int)
	go func() {
		got := []int{}
		for v := range ch {
			got = append(got, v)
		}
		received <- got
	}()

	for _, v := range []int{1, 2, 3} {
		ps.Publish("topic", v)
	}
	ps.Unsubscribe("topic", ch)

	got := <-received
	if len(got) != 3 {
		t.Fatalf("received %d values, want 3", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i] != want {
			t.Errorf("position %d: got %d, want %d", i, got[i], want)
		}
	}
}

func TestPublishWithoutSubscribersIsNoOp(t *testing.T) {
	ps := NewPubSub[string]()
	// Must not block or panic.
	ps.Publish("nobody-listens", "hello")
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewPubSub[int]()
	ch := ps.Subscribe("topic")

	ps.Unsubscribe("topic", ch)
	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	// Unsubscribing an unknown channel is ignored.
	ps.Unsubscribe("topic", ch)
	ps.Publish("topic", 1)
}

func TestSubscribersAreIndependentPerTopic(t *testing.T) {
	ps := NewPubSub[int]()
	a := ps.Subscribe("a")
	b := ps.Subscribe("b")

	got := make(chan int)
	go func() { got <- <-a }()

	ps.Publish("a", 7)
	if v := <-got; v != 7 {
		t.Errorf("topic a received %d, want 7", v)
	}
	select {
	case v := <-b:
		t.Errorf("topic b received %d", v)
	default:
	}
	ps.Unsubscribe("b", b)
}

type countingForwarder struct {
	events []events.Event
}

func (f *countingForwarder) Enqueue(ev events.Event) {
	f.events = append(f.events, ev)
}

func TestBroadcastEventsForwarding(t *testing.T) {
	bus := NewBus()
	fwd := &countingForwarder{}
	bus.AddForwarder(fwd)

	topic := events.Topic(events.ScopeOverall, events.TypeBestLap)
	ch := bus.Subscribe(topic)
	got := make(chan events.Event, 2)
	go func() {
		for ev := range ch {
			got <- ev
		}
	}()

	evs := []events.Event{
		events.New(events.ScopeOverall, events.TypeBestLap, events.RecordData{Driver: "ALO"}),
		events.New(events.ScopeOverall, events.TypeBestLap, events.RecordData{Driver: "SAI"}),
	}
	bus.BroadcastEvents(evs, true)

	for _, want := range []string{"ALO", "SAI"} {
		ev := <-got
		if driver := ev.Payload.(events.RecordData).Driver; driver != want {
			t.Errorf("live delivery driver = %s, want %s", driver, want)
		}
	}
	if len(fwd.events) != 2 {
		t.Errorf("forwarder received %d events, want 2", len(fwd.events))
	}

	bus.BroadcastEvents([]events.Event{events.New(events.ScopePersonal, events.TypeBestLap, nil)}, false)
	if len(fwd.events) != 2 {
		t.Errorf("forwarder received an event with forwarding disabled")
	}
	bus.Unsubscribe(topic, ch)
}
