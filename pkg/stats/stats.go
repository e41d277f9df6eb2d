package stats

import (
	"github.com/pkg/errors"

	"f1recordsbot/pkg/events"
)

// EndOfLapResult is the normalized summary the ingestion boundary emits
// once a lap is complete. A zero LapTime or LapTopSpeed means the
// measurement is missing for that lap. The personal-best flags and deltas
// are computed upstream against the driver's own history.
type EndOfLapResult struct {
	Driver       string  `json:"driver"`
	LapTime      float64 `json:"lapTime,omitempty"`
	IsFastestLap bool    `json:"isFastestLap,omitempty"`
	LapDelta     float64 `json:"lapDelta,omitempty"`
	LapTopSpeed  float64 `json:"lapTopSpeed,omitempty"`
	IsTopSpeed   bool    `json:"isTopSpeed,omitempty"`
	SpeedDelta   float64 `json:"speedDelta,omitempty"`
}

// EndOfSectorResult carries one completed sector time. Sector must be
// 1, 2 or 3; anything else is an upstream normalization bug.
type EndOfSectorResult struct {
	Driver     string  `json:"driver"`
	Sector     int     `json:"sector"`
	SectorTime float64 `json:"sectorTime"`
}

// BestStats holds the session-wide running bests. A zero value means no
// time or speed has been recorded yet. The Push methods are functional:
// they return the updated stats plus the record events the result
// produced and leave the receiver untouched, so the session loop stays
// the single writer.
type BestStats struct {
	FastestLap     float64         `json:"fastestLap,omitempty"`
	TopSpeed       float64         `json:"topSpeed,omitempty"`
	FastestSectors map[int]float64 `json:"fastestSectors"`
}

func NewBestStats() BestStats {
	return BestStats{
		FastestSectors: map[int]float64{1: 0, 2: 0, 3: 0},
	}
}

func (bs BestStats) clone() BestStats {
	sectors := make(map[int]float64, len(bs.FastestSectors))
	for sector, t := range bs.FastestSectors {
		sectors[sector] = t
	}
	bs.FastestSectors = sectors
	return bs
}

// PushEndOfLapResult evaluates the lap time and the top speed
// independently, so one call emits zero, one or two events. An overall
// record updates the state and carries the (negative time / positive
// speed) delta against the previous best, except for the very first
// record of a kind which carries no delta. A personal best that is not an
// overall record emits a personal event with the caller-supplied delta
// and never changes the state.
func (bs BestStats) PushEndOfLapResult(r EndOfLapResult) (BestStats, []events.Event) {
	next := bs.clone()
	evs := []events.Event{}

	if r.LapTime > 0 {
		switch {
		case next.FastestLap <= 0:
			next.FastestLap = r.LapTime
			evs = append(evs, events.New(events.ScopeOverall, events.TypeBestLap, events.RecordData{
				Driver: r.Driver,
				Time:   r.LapTime,
			}))
		case r.LapTime < next.FastestLap:
			delta := r.LapTime - next.FastestLap
			next.FastestLap = r.LapTime
			evs = append(evs, events.New(events.ScopeOverall, events.TypeBestLap, events.RecordData{
				Driver: r.Driver,
				Time:   r.LapTime,
				Delta:  delta,
			}))
		case r.IsFastestLap:
			evs = append(evs, events.New(events.ScopePersonal, events.TypeBestLap, events.RecordData{
				Driver: r.Driver,
				Time:   r.LapTime,
				Delta:  r.LapDelta,
			}))
		}
	}

	if r.LapTopSpeed > 0 {
		switch {
		case next.TopSpeed <= 0:
			next.TopSpeed = r.LapTopSpeed
			evs = append(evs, events.New(events.ScopeOverall, events.TypeTopSpeed, events.RecordData{
				Driver: r.Driver,
				Speed:  r.LapTopSpeed,
			}))
		case r.LapTopSpeed > next.TopSpeed:
			delta := r.LapTopSpeed - next.TopSpeed
			next.TopSpeed = r.LapTopSpeed
			evs = append(evs, events.New(events.ScopeOverall, events.TypeTopSpeed, events.RecordData{
				Driver: r.Driver,
				Speed:  r.LapTopSpeed,
				Delta:  delta,
			}))
		case r.IsTopSpeed:
			evs = append(evs, events.New(events.ScopePersonal, events.TypeTopSpeed, events.RecordData{
				Driver: r.Driver,
				Speed:  r.LapTopSpeed,
				Delta:  r.SpeedDelta,
			}))
		}
	}

	return next, evs
}

// PushEndOfSectorResult updates the best time of one sector. There is no
// personal-best concept at sector level: only a strict improvement (or
// the first time for that sector) emits an event, always overall scoped.
func (bs BestStats) PushEndOfSectorResult(r EndOfSectorResult) (BestStats, []events.Event, error) {
	current, ok := bs.FastestSectors[r.Sector]
	if !ok {
		return bs, nil, errors.Errorf("sector %d out of range", r.Sector)
	}

	next := bs.clone()
	switch {
	case current <= 0:
		next.FastestSectors[r.Sector] = r.SectorTime
		return next, []events.Event{events.New(events.ScopeOverall, events.TypeBestSector, events.RecordData{
			Driver: r.Driver,
			Sector: r.Sector,
			Time:   r.SectorTime,
		})}, nil
	case r.SectorTime < current:
		delta := r.SectorTime - current
		next.FastestSectors[r.Sector] = r.SectorTime
		return next, []events.Event{events.New(events.ScopeOverall, events.TypeBestSector, events.RecordData{
			Driver: r.Driver,
			Sector: r.Sector,
			Time:   r.SectorTime,
			Delta:  delta,
		})}, nil
	}
	return next, nil, nil
}
