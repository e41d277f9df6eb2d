package webserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"f1recordsbot/pkg/caster"
	"f1recordsbot/pkg/delayed"
	"f1recordsbot/pkg/events"
	"f1recordsbot/pkg/pubsub"
	"f1recordsbot/pkg/session"
)

var addr = ":8080"
var upgrader = websocket.Upgrader{} // use default options

// Manager exposes the read-only query boundary over HTTP: current best
// stats, per-driver laps, delayed snapshots, and a websocket stream of a
// delayed feed.
type Manager struct {
	r              *mux.Router
	sess           *session.Session
	bus            *pubsub.Bus
	rebroadcasters map[time.Duration]*delayed.Rebroadcaster
	eventCaster    caster.ChannelCaster[events.Event]
	srv            *http.Server
}

func NewManager(sess *session.Session, bus *pubsub.Bus, rebroadcasters []*delayed.Rebroadcaster) *Manager {
	byDelay := make(map[time.Duration]*delayed.Rebroadcaster, len(rebroadcasters))
	for _, r := range rebroadcasters {
		byDelay[r.Delay()] = r
	}
	m := &Manager{
		r:              mux.NewRouter(),
		sess:           sess,
		bus:            bus,
		rebroadcasters: byDelay,
		eventCaster:    caster.JSONChannelCaster[events.Event]{},
	}

	m.routes()
	return m
}

func (m *Manager) routes() {
	m.r.HandleFunc("/api/session", m.handleSessionInfo).Methods(http.MethodGet)
	m.r.HandleFunc("/api/records", m.handleRecords).Methods(http.MethodGet)
	m.r.HandleFunc("/api/drivers", m.handleDrivers).Methods(http.MethodGet)
	m.r.HandleFunc("/api/drivers/{driver}/laps", m.handleDriverLaps).Methods(http.MethodGet)
	m.r.HandleFunc("/api/delayed/{delay}/records/{scope}/{type}", m.handleDelayedLatest).Methods(http.MethodGet)
	m.r.HandleFunc("/websocket/delayed/{delay}", m.handleDelayedStream)
}

func (m *Manager) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, m.sess.GetInfo())
}

func (m *Manager) handleRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, m.sess.GetBestStats())
}

func (m *Manager) handleDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, m.sess.GetDriverNames())
}

func (m *Manager) handleDriverLaps(w http.ResponseWriter, r *http.Request) {
	driver := mux.Vars(r)["driver"]
	ledger, found := m.sess.GetLaps(driver)
	if !found {
		http.Error(w, "driver not found", http.StatusNotFound)
		return
	}
	writeJSON(w, ledger)
}

func (m *Manager) handleDelayedLatest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rb, ok := m.rebroadcaster(vars["delay"])
	if !ok {
		http.Error(w, "delay not configured", http.StatusNotFound)
		return
	}
	ev, found := rb.FetchLatest(vars["scope"], vars["type"])
	if !found {
		http.Error(w, "nothing released yet", http.StatusNotFound)
		return
	}
	writeJSON(w, ev)
}

// handleDelayedStream upgrades to websocket and forwards every event the
// rebroadcaster for that delay releases, across all scopes and types.
func (m *Manager) handleDelayedStream(w http.ResponseWriter, r *http.Request) {
	rb, ok := m.rebroadcaster(mux.Vars(r)["delay"])
	if !ok {
		http.Error(w, "delay not configured", http.StatusNotFound)
		return
	}

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading delayed stream: %s\n", err.Error())
		return
	}
	defer c.Close()

	done := make(chan struct{})
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				close(done)
				return
			}
		}
	}()

	type sub struct {
		topic string
		ch    <-chan events.Event
	}
	var subs []sub
	merged := make(chan events.Event)
	for _, scope := range events.Scopes {
		for _, eventType := range events.Types {
			topic := events.DelayedTopic(scope, eventType, rb.Delay())
			ch := m.bus.Subscribe(topic)
			subs = append(subs, sub{topic: topic, ch: ch})
			go func(ch <-chan events.Event) {
				// Keep draining after the client left so publishers
				// never block on a dead subscriber.
				for ev := range ch {
					select {
					case merged <- ev:
					case <-done:
					}
				}
			}(ch)
		}
	}
	defer func() {
		for _, s := range subs {
			m.bus.Unsubscribe(s.topic, s.ch)
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev := <-merged:
			payload, err := m.eventCaster.To(ev)
			if err != nil {
				log.Printf("Error casting event to json: %s\n", err.Error())
				continue
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				return
			}
		}
	}
}

func (m *Manager) rebroadcaster(delay string) (*delayed.Rebroadcaster, bool) {
	d, err := time.ParseDuration(delay)
	if err != nil {
		return nil, false
	}
	rb, ok := m.rebroadcasters[d]
	return rb, ok
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %s\n", err.Error())
	}
}

// Serve starts the HTTP server in a goroutine; Shutdown stops it.
func (m *Manager) Serve() {
	if os.Getenv("WEBSERVER_ADDRESS") != "" {
		addr = os.Getenv("WEBSERVER_ADDRESS")
	}
	m.srv = &http.Server{
		Addr: addr,
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	go func() {
		log.Printf("webserver listening on %s\n", addr)
		if err := m.srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()
}

func (m *Manager) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = m.srv.Shutdown(ctx)
	log.Println("webserver shutting down")
}
