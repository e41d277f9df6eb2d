package laps

import "math"

// Lap is one physical lap of one driver. Fields arrive in separate
// telemetry fragments; a zero Number or Time means that fragment has not
// arrived yet. Timestamp is the session elapsed time (seconds) the lap
// was first seen at and is always set on a stored lap.
type Lap struct {
	Number    int     `json:"number,omitempty"`
	Time      float64 `json:"time,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// Ledger holds the laps of a single driver in arrival order. Updates are
// functional: methods return a new ledger and never touch the receiver,
// so the owning goroutine stays the only writer.
type Ledger []Lap

func NewLedger() Ledger {
	return Ledger{}
}

// FindByCloseTimestamp returns the first lap whose timestamp differs from
// ts by strictly less than tolerance. The scan is exhaustive since no
// ordering is assumed among the stored laps. Two laps inside one tolerance
// window are not detected; the first match in scan order wins.
func (l Ledger) FindByCloseTimestamp(ts, tolerance float64) (Lap, bool) {
	for _, lap := range l {
		if math.Abs(lap.Timestamp-ts) < tolerance {
			return lap, true
		}
	}
	return Lap{}, false
}

// FillByCloseTimestamp merges fields into the lap matching ts, or appends
// a new lap when none matches (its timestamp defaults to ts when fields
// does not carry one). The merge is fill-only: values already present on
// the stored lap win and only absent ones take the incoming value, so a
// late partial update cannot clobber known data.
func (l Ledger) FillByCloseTimestamp(fields Lap, ts, tolerance float64) Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	for i := range out {
		if math.Abs(out[i].Timestamp-ts) < tolerance {
			out[i] = fill(out[i], fields)
			return out
		}
	}
	if fields.Timestamp <= 0 {
		fields.Timestamp = ts
	}
	return append(out, fields)
}

// fill keeps every non-absent field of existing and takes the rest from
// incoming. The stored timestamp is never overwritten.
func fill(existing, incoming Lap) Lap {
	if existing.Number == 0 {
		existing.Number = incoming.Number
	}
	if existing.Time <= 0 {
		existing.Time = incoming.Time
	}
	return existing
}
