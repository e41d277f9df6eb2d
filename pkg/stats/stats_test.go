package stats

import (
	"math"
	"testing"

	"f1recordsbot/pkg/events"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestPushEndOfLapResultLapSequence(t *testing.T) {
	type step struct {
		result        EndOfLapResult
		wantFastest   float64
		wantEvents    int
		wantScope     string
		wantDelta     float64
		wantHasDelta  bool
		wantEventTime float64
	}
	steps := []step{
		{
			result:        EndOfLapResult{Driver: "ALO", LapTime: 92.0},
			wantFastest:   92.0,
			wantEvents:    1,
			wantScope:     events.ScopeOverall,
			wantHasDelta:  false,
			wantEventTime: 92.0,
		},
		{
			result:        EndOfLapResult{Driver: "SAI", LapTime: 91.2},
			wantFastest:   91.2,
			wantEvents:    1,
			wantScope:     events.ScopeOverall,
			wantDelta:     -0.8,
			wantHasDelta:  true,
			wantEventTime: 91.2,
		},
		{
			// Slower than the session best but a personal best.
			result:        EndOfLapResult{Driver: "STR", LapTime: 93.0, IsFastestLap: true, LapDelta: -1.1},
			wantFastest:   91.2,
			wantEvents:    1,
			wantScope:     events.ScopePersonal,
			wantDelta:     -1.1,
			wantHasDelta:  true,
			wantEventTime: 93.0,
		},
		{
			// Slower and not a personal best: nothing happens.
			result:      EndOfLapResult{Driver: "STR", LapTime: 94.0},
			wantFastest: 91.2,
			wantEvents:  0,
		},
	}

	bs := NewBestStats()
	for idx, s := range steps {
		next, evs := bs.PushEndOfLapResult(s.result)
		if !almostEqual(next.FastestLap, s.wantFastest) {
			t.Errorf("step %d: FastestLap = %f, want %f", idx, next.FastestLap, s.wantFastest)
		}
		if len(evs) != s.wantEvents {
			t.Fatalf("step %d: got %d events, want %d", idx, len(evs), s.wantEvents)
		}
		if s.wantEvents > 0 {
			ev := evs[0]
			if ev.Scope != s.wantScope {
				t.Errorf("step %d: scope = %s, want %s", idx, ev.Scope, s.wantScope)
			}
			if ev.Type != events.TypeBestLap {
				t.Errorf("step %d: type = %s, want %s", idx, ev.Type, events.TypeBestLap)
			}
			data := ev.Payload.(events.RecordData)
			if !almostEqual(data.Time, s.wantEventTime) {
				t.Errorf("step %d: event time = %f, want %f", idx, data.Time, s.wantEventTime)
			}
			if s.wantHasDelta && !almostEqual(data.Delta, s.wantDelta) {
				t.Errorf("step %d: delta = %f, want %f", idx, data.Delta, s.wantDelta)
			}
			if !s.wantHasDelta && data.Delta != 0 {
				t.Errorf("step %d: first record should carry no delta, got %f", idx, data.Delta)
			}
		}
		bs = next
	}
}

func TestPushEndOfLapResultSpeedSequence(t *testing.T) {
	bs := NewBestStats()

	next, evs := bs.PushEndOfLapResult(EndOfLapResult{Driver: "ALO", LapTopSpeed: 320.0})
	if !almostEqual(next.TopSpeed, 320.0) {
		t.Errorf("TopSpeed = %f, want 320.0", next.TopSpeed)
	}
	if len(evs) != 1 || evs[0].Scope != events.ScopeOverall || evs[0].Type != events.TypeTopSpeed {
		t.Fatalf("expected one overall topSpeed event, got %v", evs)
	}
	if evs[0].Payload.(events.RecordData).Delta != 0 {
		t.Errorf("first speed record should carry no delta")
	}

	bs = next
	next, evs = bs.PushEndOfLapResult(EndOfLapResult{Driver: "SAI", LapTopSpeed: 324.5})
	if !almostEqual(next.TopSpeed, 324.5) {
		t.Errorf("TopSpeed = %f, want 324.5", next.TopSpeed)
	}
	if len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	if data := evs[0].Payload.(events.RecordData); !almostEqual(data.Delta, 4.5) {
		t.Errorf("speed delta = %f, want 4.5", data.Delta)
	}

	bs = next
	// Equal speed is not a record.
	next, evs = bs.PushEndOfLapResult(EndOfLapResult{Driver: "STR", LapTopSpeed: 324.5})
	if len(evs) != 0 {
		t.Errorf("equal speed emitted %d events", len(evs))
	}
	if !almostEqual(next.TopSpeed, 324.5) {
		t.Errorf("TopSpeed changed to %f", next.TopSpeed)
	}
}

func TestPushEndOfLapResultBothRecordsInOnePush(t *testing.T) {
	bs := NewBestStats()
	next, evs := bs.PushEndOfLapResult(EndOfLapResult{Driver: "ALO", LapTime: 91.0, LapTopSpeed: 318.0})
	if len(evs) != 2 {
		t.Fatalf("expected two events, got %d", len(evs))
	}
	if evs[0].Type != events.TypeBestLap || evs[1].Type != events.TypeTopSpeed {
		t.Errorf("unexpected event types: %s, %s", evs[0].Type, evs[1].Type)
	}
	if !almostEqual(next.FastestLap, 91.0) || !almostEqual(next.TopSpeed, 318.0) {
		t.Errorf("state not updated: %+v", next)
	}
}

func TestPushEndOfLapResultMissingMeasurements(t *testing.T) {
	bs := NewBestStats()
	next, evs := bs.PushEndOfLapResult(EndOfLapResult{Driver: "ALO"})
	if len(evs) != 0 {
		t.Errorf("missing measurements emitted %d events", len(evs))
	}
	if next.FastestLap != 0 || next.TopSpeed != 0 {
		t.Errorf("state changed on missing measurements: %+v", next)
	}
}

func TestPushEndOfLapResultDoesNotMutateReceiver(t *testing.T) {
	bs := NewBestStats()
	bs, _ = bs.PushEndOfLapResult(EndOfLapResult{Driver: "ALO", LapTime: 92.0})
	before := bs.FastestLap
	bs.PushEndOfLapResult(EndOfLapResult{Driver: "SAI", LapTime: 90.0})
	if !almostEqual(bs.FastestLap, before) {
		t.Errorf("receiver mutated: FastestLap = %f", bs.FastestLap)
	}
}

func TestPushEndOfSectorResultSequence(t *testing.T) {
	type step struct {
		time       float64
		wantEvents int
		wantDelta  float64
	}
	// 12.0 seeds, 11.5 improves by -0.5, 11.8 is ignored.
	steps := []step{
		{time: 12.0, wantEvents: 1, wantDelta: 0},
		{time: 11.5, wantEvents: 1, wantDelta: -0.5},
		{time: 11.8, wantEvents: 0},
	}

	bs := NewBestStats()
	for idx, s := range steps {
		next, evs, err := bs.PushEndOfSectorResult(EndOfSectorResult{Driver: "ALO", Sector: 2, SectorTime: s.time})
		if err != nil {
			t.Fatalf("step %d: unexpected error: %s", idx, err.Error())
		}
		if len(evs) != s.wantEvents {
			t.Fatalf("step %d: got %d events, want %d", idx, len(evs), s.wantEvents)
		}
		if s.wantEvents > 0 {
			ev := evs[0]
			if ev.Scope != events.ScopeOverall || ev.Type != events.TypeBestSector {
				t.Errorf("step %d: unexpected event %s/%s", idx, ev.Scope, ev.Type)
			}
			data := ev.Payload.(events.RecordData)
			if data.Sector != 2 {
				t.Errorf("step %d: sector = %d, want 2", idx, data.Sector)
			}
			if !almostEqual(data.Delta, s.wantDelta) {
				t.Errorf("step %d: delta = %f, want %f", idx, data.Delta, s.wantDelta)
			}
		}
		bs = next
	}

	if !almostEqual(bs.FastestSectors[2], 11.5) {
		t.Errorf("final sector 2 best = %f, want 11.5", bs.FastestSectors[2])
	}
	if bs.FastestSectors[1] != 0 || bs.FastestSectors[3] != 0 {
		t.Errorf("untouched sectors changed: %v", bs.FastestSectors)
	}
}

func TestPushEndOfSectorResultInvalidSector(t *testing.T) {
	bs := NewBestStats()
	for _, sector := range []int{0, 4, -1} {
		next, evs, err := bs.PushEndOfSectorResult(EndOfSectorResult{Driver: "ALO", Sector: sector, SectorTime: 10.0})
		if err == nil {
			t.Errorf("sector %d: expected error", sector)
		}
		if len(evs) != 0 {
			t.Errorf("sector %d: emitted %d events", sector, len(evs))
		}
		if len(next.FastestSectors) != 3 {
			t.Errorf("sector %d: state grew to %v", sector, next.FastestSectors)
		}
	}
}

func TestPushEndOfSectorResultDoesNotMutateReceiver(t *testing.T) {
	bs := NewBestStats()
	bs, _, _ = bs.PushEndOfSectorResult(EndOfSectorResult{Driver: "ALO", Sector: 1, SectorTime: 25.0})
	bs.PushEndOfSectorResult(EndOfSectorResult{Driver: "SAI", Sector: 1, SectorTime: 20.0})
	if !almostEqual(bs.FastestSectors[1], 25.0) {
		t.Errorf("receiver mutated: sector 1 = %f", bs.FastestSectors[1])
	}
}
