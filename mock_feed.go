package main

import (
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"f1recordsbot/pkg/session"
	"f1recordsbot/pkg/stats"
)

var mockUpgrader = websocket.Upgrader{}

// CreateMockFeed serves a synthetic telemetry websocket so the bot can be
// exercised without a live session. Enabled with MOCK_FEED=1.
func CreateMockFeed(addr string) {
	m := http.NewServeMux()
	m.HandleFunc("/websocket/telemetry", handleMockTelemetry)
	go func() {
		log.Printf("mock telemetry feed listening on %s\n", addr)
		if err := http.ListenAndServe(addr, m); err != nil {
			log.Println(err)
		}
	}()
}

func handleMockTelemetry(w http.ResponseWriter, r *http.Request) {
	c, err := mockUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading mock feed: %s\n", err.Error())
		return
	}
	go emitMockSession(c)
}

type mockDriver struct {
	name      string
	pace      float64
	bestLap   float64
	bestSpeed float64
}

// emitMockSession plays an endless session: every driver completes three
// sectors, a lap fragment and an end-of-lap summary per iteration, with
// timings jittered around each driver's pace.
func emitMockSession(c *websocket.Conn) {
	defer c.Close()

	drivers := []*mockDriver{
		{name: "Fernando Alonso", pace: 91.2},
		{name: "Carlos Sainz", pace: 91.5},
		{name: "Lance Stroll", pace: 92.1},
	}

	info := session.Message{
		MessageType: "sessionInfo",
		Body: session.Info{
			ServerName: "mock",
			TrackName:  "Montmeló",
			Session:    "Practice",
		},
	}
	if err := c.WriteJSON(info); err != nil {
		return
	}

	elapsed := 0.0
	for lap := 1; ; lap++ {
		for _, d := range drivers {
			lapTime := d.pace + rand.Float64()*2.5
			sectors := []float64{lapTime * 0.3, lapTime * 0.45, lapTime * 0.25}
			for idx, sectorTime := range sectors {
				msg := session.Message{
					MessageType: "endOfSector",
					Body: stats.EndOfSectorResult{
						Driver:     d.name,
						Sector:     idx + 1,
						SectorTime: sectorTime,
					},
				}
				if err := c.WriteJSON(msg); err != nil {
					return
				}
			}

			timestamp := elapsed + lapTime
			fragment := session.Message{
				MessageType: "lapUpdate",
				Body: session.LapUpdate{
					Driver:    d.name,
					Number:    lap,
					Timestamp: timestamp,
				},
			}
			if err := c.WriteJSON(fragment); err != nil {
				return
			}

			result := stats.EndOfLapResult{
				Driver:      d.name,
				LapTime:     lapTime,
				LapTopSpeed: 310 + rand.Float64()*15,
			}
			if d.bestLap <= 0 || lapTime < d.bestLap {
				result.IsFastestLap = true
				if d.bestLap > 0 {
					result.LapDelta = lapTime - d.bestLap
				}
				d.bestLap = lapTime
			}
			if result.LapTopSpeed > d.bestSpeed {
				result.IsTopSpeed = true
				if d.bestSpeed > 0 {
					result.SpeedDelta = result.LapTopSpeed - d.bestSpeed
				}
				d.bestSpeed = result.LapTopSpeed
			}
			summary := session.Message{
				MessageType: "endOfLap",
				Body: session.EndOfLap{
					EndOfLapResult: result,
					Timestamp:      timestamp,
				},
			}
			if err := c.WriteJSON(summary); err != nil {
				return
			}
		}
		elapsed += drivers[0].pace
		time.Sleep(2 * time.Second)
	}
}
