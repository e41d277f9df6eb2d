package events

import (
	"testing"
	"time"
)

func TestTopicIsDistinctPerPair(t *testing.T) {
	seen := map[string]string{}
	for _, scope := range Scopes {
		for _, eventType := range Types {
			topic := Topic(scope, eventType)
			if prev, dup := seen[topic]; dup {
				t.Errorf("topic %q produced by both %s and %s/%s", topic, prev, scope, eventType)
			}
			seen[topic] = scope + "/" + eventType
		}
	}
}

func TestDelayedTopicIsDistinctPerDelay(t *testing.T) {
	a := DelayedTopic(ScopeOverall, TypeBestLap, 30*time.Second)
	b := DelayedTopic(ScopeOverall, TypeBestLap, 60*time.Second)
	if a == b {
		t.Errorf("different delays share topic %q", a)
	}
	if a != DelayedTopic(ScopeOverall, TypeBestLap, 30*time.Second) {
		t.Errorf("DelayedTopic is not deterministic")
	}
	if a == Topic(ScopeOverall, TypeBestLap) {
		t.Errorf("delayed topic collides with the live topic")
	}
}

func TestNewStampsTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	ev := New(ScopeOverall, TypeTopSpeed, RecordData{Driver: "ALO"})
	after := time.Now().UnixMilli()

	if ev.Timestamp < before || ev.Timestamp > after {
		t.Errorf("timestamp %d outside [%d, %d]", ev.Timestamp, before, after)
	}
	if ev.Scope != ScopeOverall || ev.Type != TypeTopSpeed {
		t.Errorf("unexpected envelope: %+v", ev)
	}
}
