package session

import (
	"testing"

	"f1recordsbot/pkg/events"
	"f1recordsbot/pkg/pubsub"
	"f1recordsbot/pkg/stats"
)

func newTestSession() *Session {
	return NewSession(pubsub.NewBus(), "test", "http://localhost:9000")
}

func TestHandleMessageEndOfLapUpdatesLedgerAndBests(t *testing.T) {
	s := newTestSession()

	s.handleMessage(Message{MessageType: "lapUpdate", Body: map[string]any{
		"driver":    "Fernando Alonso",
		"number":    1,
		"timestamp": 100.0,
	}})
	s.handleMessage(Message{MessageType: "endOfLap", Body: map[string]any{
		"driver":    "Fernando Alonso",
		"lapTime":   92.5,
		"timestamp": 100.3,
	}})

	ledger, found := s.GetLaps("Fernando Alonso")
	if !found || len(ledger) != 1 {
		t.Fatalf("ledger not built: found=%v len=%d", found, len(ledger))
	}
	if ledger[0].Number != 1 || ledger[0].Time != 92.5 {
		t.Errorf("fragments did not merge: %+v", ledger[0])
	}
	if best := s.GetBestStats(); best.FastestLap != 92.5 {
		t.Errorf("FastestLap = %f, want 92.5", best.FastestLap)
	}
}

func TestHandleMessageEndOfSectorInvalidSectorIsDropped(t *testing.T) {
	s := newTestSession()

	s.handleMessage(Message{MessageType: "endOfSector", Body: map[string]any{
		"driver":     "Carlos Sainz",
		"sector":     7,
		"sectorTime": 20.0,
	}})

	best := s.GetBestStats()
	for sector, tm := range best.FastestSectors {
		if tm != 0 {
			t.Errorf("sector %d changed to %f", sector, tm)
		}
	}
	if len(best.FastestSectors) != 3 {
		t.Errorf("sector map grew: %v", best.FastestSectors)
	}
}

func TestHandleMessageMalformedBodyIsDropped(t *testing.T) {
	s := newTestSession()

	s.handleMessage(Message{MessageType: "endOfLap", Body: map[string]any{
		"driver":  "Lance Stroll",
		"lapTime": "not-a-number",
	}})

	if best := s.GetBestStats(); best.FastestLap != 0 {
		t.Errorf("malformed message mutated state: %+v", best)
	}
}

func TestHandleMessageUnknownTypeIsIgnored(t *testing.T) {
	s := newTestSession()
	s.handleMessage(Message{MessageType: "weather", Body: map[string]any{"rain": true}})

	if names := s.GetDriverNames(); len(names) != 0 {
		t.Errorf("unknown message created drivers: %v", names)
	}
}

func TestApplyEndOfLapBroadcastsRecords(t *testing.T) {
	s := newTestSession()
	ch := s.Bus().Subscribe(events.Topic(events.ScopeOverall, events.TypeBestLap))
	got := make(chan events.Event, 1)
	go func() {
		got <- <-ch
	}()

	s.applyEndOfLap(EndOfLap{
		EndOfLapResult: stats.EndOfLapResult{Driver: "Fernando Alonso", LapTime: 91.0},
		Timestamp:      50.0,
	})

	ev := <-got
	if ev.Payload.(events.RecordData).Driver != "Fernando Alonso" {
		t.Errorf("unexpected record payload: %+v", ev.Payload)
	}
}

func TestGetDriverNamesSorted(t *testing.T) {
	s := newTestSession()
	for _, driver := range []string{"Lance Stroll", "Fernando Alonso", "Carlos Sainz"} {
		s.applyLapUpdate(LapUpdate{Driver: driver, Number: 1, Timestamp: 100.0})
	}

	names := s.GetDriverNames()
	want := []string{"Carlos Sainz", "Fernando Alonso", "Lance Stroll"}
	if len(names) != len(want) {
		t.Fatalf("got %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestSetInfoPreservesLocalFlags(t *testing.T) {
	s := newTestSession()
	s.setSocketRunning(true)
	s.setReceiving(true)

	s.setInfo(Info{ServerName: "srv", TrackName: "Montmeló", Session: "Race"})

	info := s.GetInfo()
	if !info.SocketRunning || !info.ReceivingData {
		t.Errorf("local flags lost: %+v", info)
	}
	if info.TrackName != "Montmeló" {
		t.Errorf("source fields lost: %+v", info)
	}
}
