package delayed

import (
	"sync"
	"time"

	"f1recordsbot/pkg/events"
	"f1recordsbot/pkg/queues"
)

// DefaultTick is the period of the release loop. Release latency is
// bounded by the configured delay plus one tick.
const DefaultTick = 100 * time.Millisecond

// Publisher is the slice of the bus a rebroadcaster needs.
type Publisher interface {
	Publish(topic string, data events.Event)
}

type entry struct {
	event      events.Event
	enqueuedAt time.Time
}

// Rebroadcaster buffers every broadcast event and republishes it on the
// delayed topic namespace once its delay has elapsed, keeping the last
// released event per (scope, type) so late subscribers get a snapshot
// without waiting a full delay cycle.
//
// Precondition: the queue is ordered by enqueue time. That holds because
// the enqueue time is stamped under the same lock that appends; the
// release loop stops at the first head that is still too new.
type Rebroadcaster struct {
	pub   Publisher
	delay time.Duration

	mu    sync.Mutex
	queue *queues.Queue[entry]
	cache sync.Map // live topic string -> events.Event, last released

	now func() time.Time
}

func NewRebroadcaster(pub Publisher, delay time.Duration) *Rebroadcaster {
	return &Rebroadcaster{
		pub:   pub,
		delay: delay,
		queue: queues.NewQueue[entry](),
		now:   time.Now,
	}
}

func (r *Rebroadcaster) Delay() time.Duration {
	return r.delay
}

// Enqueue appends the event with the current time to the tail of the
// queue. It never blocks on delivery.
func (r *Rebroadcaster) Enqueue(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue.Push(entry{event: ev, enqueuedAt: r.now()})
}

// Start drives the release loop from the ticker until exitChan fires.
func (r *Rebroadcaster) Start(ticker *time.Ticker, exitChan <-chan bool) {
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case t := <-ticker.C:
				r.releaseDue(t)
			}
		}
	}()
}

// releaseDue pops every queued event enqueued at or before now-delay,
// stores it in the snapshot cache and republishes it on the delayed topic.
// A clock anomaly that puts the cutoff before the epoch releases nothing;
// the queue is left untouched.
func (r *Rebroadcaster) releaseDue(now time.Time) {
	cutoff := now.Add(-r.delay)
	if cutoff.Before(time.Unix(0, 0)) {
		return
	}

	var due []entry
	r.mu.Lock()
	for !r.queue.IsEmpty() && !r.queue.Peek().enqueuedAt.After(cutoff) {
		due = append(due, r.queue.Pop())
	}
	r.mu.Unlock()

	// Publish outside the queue lock: delivery can block on a slow
	// subscriber and must not stall Enqueue.
	for _, e := range due {
		r.cache.Store(events.Topic(e.event.Scope, e.event.Type), e.event)
		r.pub.Publish(events.DelayedTopic(e.event.Scope, e.event.Type, r.delay), e.event)
	}
}

// FetchLatest returns the last event released for (scope, type), or false
// when nothing has been released yet. Events still waiting in the queue
// are not visible here.
func (r *Rebroadcaster) FetchLatest(scope, eventType string) (events.Event, bool) {
	v, ok := r.cache.Load(events.Topic(scope, eventType))
	if !ok {
		return events.Event{}, false
	}
	return v.(events.Event), true
}

// Pending reports how many events are still waiting for their delay.
func (r *Rebroadcaster) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Len()
}
