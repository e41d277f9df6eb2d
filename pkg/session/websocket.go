package session

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	receiveTimeout = 5 * time.Second
	reconnectWait  = 5 * time.Second
)

// Run connects to the telemetry source and keeps reconnecting until the
// context is cancelled.
func (s *Session) Run(ctx context.Context) {
	for {
		if err := s.webSocketReader(ctx); err != nil {
			log.Printf("Telemetry connection lost: %s\n", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectWait):
		}
	}
}

func (s *Session) webSocketReader(ctx context.Context) error {
	urlString := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
	u := url.URL{Scheme: "ws", Host: urlString, Path: "/websocket/telemetry"}

	dialer := &websocket.Dialer{
		HandshakeTimeout:  10 * time.Second,
		EnableCompression: true,
	}
	c, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return errors.Wrapf(err, "connecting to %s", u.String())
	}
	defer c.Close()

	log.Printf("connected to %s", u.String())
	s.setSocketRunning(true)
	defer func() {
		s.setSocketRunning(false)
		s.setReceiving(false)
	}()

	doneErr := make(chan error)
	messageChan := make(chan Message)
	go s.dispatchMessages(ctx, messageChan, doneErr)

	go func() {
		defer close(doneErr)
		for {
			var m Message
			if err := c.ReadJSON(&m); err != nil {
				log.Println("read error:", err)
				doneErr <- errors.Wrap(err, "reading telemetry message")
				return
			}
			select {
			case messageChan <- m:
			case <-ctx.Done():
				doneErr <- ctx.Err()
				return
			}
		}
	}()
	return <-doneErr
}

// dispatchMessages is the single writer of the session state. No message
// for receiveTimeout marks the session as not receiving data.
func (s *Session) dispatchMessages(ctx context.Context, messageChan <-chan Message, doneChan <-chan error) {
	timeout := time.After(receiveTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-doneChan:
			return
		case <-timeout:
			s.setReceiving(false)
			timeout = time.After(receiveTimeout)
		case m := <-messageChan:
			timeout = time.After(receiveTimeout)
			s.setReceiving(true)
			s.handleMessage(m)
		}
	}
}
