// Package ws pushes session events to browsers over websockets.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"ha-image-scene/internal/model"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	maxReadBytes = 1024

	eventQueue  = 256
	outboxDepth = 128
)

// Hub fans session events out to every subscriber. Run owns the subscriber
// set; everything else talks to it over channels.
type Hub struct {
	subscribers map[*Subscriber]struct{}
	events      chan model.Event
	join        chan *Subscriber
	leave       chan *Subscriber
	done        chan struct{}
	log         hclog.Logger
}

func NewHub(logger hclog.Logger) *Hub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Hub{
		subscribers: map[*Subscriber]struct{}{},
		events:      make(chan model.Event, eventQueue),
		join:        make(chan *Subscriber),
		leave:       make(chan *Subscriber),
		done:        make(chan struct{}),
		log:         logger,
	}
}

// Run serves joins, leaves and events until ctx is done, then closes every
// subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for s := range h.subscribers {
				h.drop(s)
			}
			return
		case s := <-h.join:
			h.subscribers[s] = struct{}{}
			h.log.Debug("subscriber joined", "subscribers", len(h.subscribers))
		case s := <-h.leave:
			h.drop(s)
		case evt := <-h.events:
			h.fanOut(evt)
		}
	}
}

// Publish queues evt for delivery. The event is dropped when the queue is
// full so session handlers never wait on slow browsers.
func (h *Hub) Publish(evt model.Event) {
	select {
	case h.events <- evt:
	default:
		h.log.Warn("event queue full, dropping event", "type", evt.Type)
	}
}

// Subscribe attaches conn to the hub and starts its read and write loops. It
// returns nil and closes conn once the hub has stopped.
func (h *Hub) Subscribe(conn *websocket.Conn) *Subscriber {
	s := &Subscriber{hub: h, conn: conn, outbox: make(chan []byte, outboxDepth)}
	select {
	case h.join <- s:
	case <-h.done:
		_ = conn.Close()
		return nil
	}
	go s.writeLoop()
	go s.readLoop()
	return s
}

func (h *Hub) fanOut(evt model.Event) {
	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("encode event", "type", evt.Type, "error", err)
		return
	}
	for s := range h.subscribers {
		select {
		case s.outbox <- msg:
		default:
			h.log.Debug("subscriber too slow, disconnecting", "type", evt.Type)
			h.drop(s)
		}
	}
}

func (h *Hub) drop(s *Subscriber) {
	if _, ok := h.subscribers[s]; !ok {
		return
	}
	delete(h.subscribers, s)
	close(s.outbox)
}

// Subscriber is one browser connection. Incoming frames are only read to
// keep the connection alive.
type Subscriber struct {
	hub    *Hub
	conn   *websocket.Conn
	outbox chan []byte
}

func (s *Subscriber) readLoop() {
	defer func() {
		select {
		case s.hub.leave <- s:
		case <-s.hub.done:
		}
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxReadBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriber) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.outbox:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
