package events

import (
	"fmt"
	"time"
)

const (
	ScopeOverall  = "overall"
	ScopePersonal = "personal"

	TypeBestLap    = "bestLap"
	TypeTopSpeed   = "topSpeed"
	TypeBestSector = "bestSector"
)

var (
	Scopes = []string{ScopeOverall, ScopePersonal}
	Types  = []string{TypeBestLap, TypeTopSpeed, TypeBestSector}
)

// Event is the envelope every record announcement travels in. It is never
// mutated after creation; the delayed caches key it by (Scope, Type).
type Event struct {
	Scope     string `json:"scope"`
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func New(scope, eventType string, payload any) Event {
	return Event{
		Scope:     scope,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// RecordData is the payload of a record event. Zero fields are not part of
// the record: Sector is 0 on lap and speed records, Delta is 0 on the very
// first record of a kind.
type RecordData struct {
	Driver string  `json:"driver"`
	Sector int     `json:"sector,omitempty"`
	Time   float64 `json:"time,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Delta  float64 `json:"delta,omitempty"`
}

// Topic builds the live topic for a (scope, type) pair. Publishers and
// subscribers must go through Topic and DelayedTopic so both sides end up
// with the same string without asking the bus.
func Topic(scope, eventType string) string {
	return scope + "-" + eventType
}

// DelayedTopic builds the topic the rebroadcaster configured with delay
// republishes (scope, type) events on.
func DelayedTopic(scope, eventType string, delay time.Duration) string {
	return fmt.Sprintf("delayed-%dms-%s-%s", delay.Milliseconds(), scope, eventType)
}
