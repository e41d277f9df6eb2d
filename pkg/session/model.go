package session

import (
	"f1recordsbot/pkg/stats"
)

const (
	mtEndOfLap    = "endOfLap"
	mtEndOfSector = "endOfSector"
	mtLapUpdate   = "lapUpdate"
	mtSessionInfo = "sessionInfo"
)

// Message is the envelope the telemetry source sends. Bodies arrive
// already normalized; this layer never parses raw wire data.
type Message struct {
	MessageType string `json:"type"`
	Body        any    `json:"body,omitempty"`
}

// EndOfLap is the wire form of a completed lap: the normalized result
// plus the session elapsed time used to correlate it with the lap the
// fragments built up in the ledger.
type EndOfLap struct {
	stats.EndOfLapResult
	Timestamp float64 `json:"timestamp,omitempty"`
}

// LapUpdate is a partial lap fragment. Fragments for one physical lap
// can arrive separately and slightly apart in time; zero fields mean the
// fragment does not carry that value.
type LapUpdate struct {
	Driver    string  `json:"driver"`
	Number    int     `json:"number,omitempty"`
	Time      float64 `json:"time,omitempty"`
	Timestamp float64 `json:"timestamp"`
}

// Info describes the running session. SocketRunning and ReceivingData
// are filled locally, the rest comes from the source.
type Info struct {
	ServerName    string `json:"serverName,omitempty"`
	TrackName     string `json:"trackName,omitempty"`
	Session       string `json:"session,omitempty"`
	SocketRunning bool   `json:"wsRunning,omitempty"`
	ReceivingData bool   `json:"receivingData,omitempty"`
}
