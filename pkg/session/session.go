package session

import (
	"log"
	"sort"
	"sync"

	"f1recordsbot/pkg/caster"
	"f1recordsbot/pkg/laps"
	"f1recordsbot/pkg/pubsub"
	"f1recordsbot/pkg/stats"
)

// lapMatchTolerance is the window (seconds of session elapsed time)
// within which two fragments are taken to describe the same physical lap.
const lapMatchTolerance = 0.5

// Session owns all mutable state of one live session: the per-driver lap
// ledgers and the session-wide best stats. Every mutation goes through
// the dispatch goroutine, so there is exactly one writer; the Get
// accessors are read-only and safe from any goroutine.
type Session struct {
	ID  string
	URL string

	bus *pubsub.Bus

	mu      sync.Mutex
	info    Info
	ledgers map[string]laps.Ledger
	best    stats.BestStats
}

func NewSession(bus *pubsub.Bus, id, url string) *Session {
	return &Session{
		ID:      id,
		URL:     url,
		bus:     bus,
		ledgers: make(map[string]laps.Ledger),
		best:    stats.NewBestStats(),
	}
}

// Bus returns the event bus the session broadcasts on.
func (s *Session) Bus() *pubsub.Bus {
	return s.bus
}

func (s *Session) handleMessage(m Message) {
	switch m.MessageType {
	case mtEndOfLap:
		r, err := caster.Recast[EndOfLap](m.Body)
		if err != nil {
			log.Printf("Error recasting endOfLap: %s\n", err.Error())
			return
		}
		s.applyEndOfLap(r)
	case mtEndOfSector:
		r, err := caster.Recast[stats.EndOfSectorResult](m.Body)
		if err != nil {
			log.Printf("Error recasting endOfSector: %s\n", err.Error())
			return
		}
		s.applyEndOfSector(r)
	case mtLapUpdate:
		r, err := caster.Recast[LapUpdate](m.Body)
		if err != nil {
			log.Printf("Error recasting lapUpdate: %s\n", err.Error())
			return
		}
		s.applyLapUpdate(r)
	case mtSessionInfo:
		info, err := caster.Recast[Info](m.Body)
		if err != nil {
			log.Printf("Error recasting sessionInfo: %s\n", err.Error())
			return
		}
		s.setInfo(info)
	}
}

func (s *Session) applyEndOfLap(r EndOfLap) {
	s.mu.Lock()
	if r.Driver != "" && r.Timestamp > 0 {
		ledger := s.ledgers[r.Driver]
		s.ledgers[r.Driver] = ledger.FillByCloseTimestamp(laps.Lap{Time: r.LapTime}, r.Timestamp, lapMatchTolerance)
	}
	next, evs := s.best.PushEndOfLapResult(r.EndOfLapResult)
	s.best = next
	s.mu.Unlock()

	s.bus.BroadcastEvents(evs, true)
}

func (s *Session) applyEndOfSector(r stats.EndOfSectorResult) {
	s.mu.Lock()
	next, evs, err := s.best.PushEndOfSectorResult(r)
	if err != nil {
		s.mu.Unlock()
		// Contract violation at the ingestion boundary; drop the result.
		log.Printf("Error pushing endOfSector for %s: %s\n", r.Driver, err.Error())
		return
	}
	s.best = next
	s.mu.Unlock()

	s.bus.BroadcastEvents(evs, true)
}

func (s *Session) applyLapUpdate(r LapUpdate) {
	if r.Driver == "" || r.Timestamp <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := s.ledgers[r.Driver]
	fields := laps.Lap{Number: r.Number, Time: r.Time, Timestamp: r.Timestamp}
	s.ledgers[r.Driver] = ledger.FillByCloseTimestamp(fields, r.Timestamp, lapMatchTolerance)
}

func (s *Session) setInfo(info Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.SocketRunning = s.info.SocketRunning
	info.ReceivingData = s.info.ReceivingData
	s.info = info
}

func (s *Session) setSocketRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info.SocketRunning = running
}

func (s *Session) setReceiving(receiving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.info.ReceivingData = receiving
}

func (s *Session) GetInfo() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// GetBestStats returns the current session bests. The returned value is
// never written again: every push replaces the stored state with a fresh
// clone, so readers can hold on to it.
func (s *Session) GetBestStats() stats.BestStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// GetLaps returns the ledger of one driver. Ledger updates are
// functional, so the returned slice is stable.
func (s *Session) GetLaps(driver string) (laps.Ledger, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger, found := s.ledgers[driver]
	return ledger, found
}

func (s *Session) GetDriverNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.ledgers))
	for name := range s.ledgers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
