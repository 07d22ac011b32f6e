// Package hub fans backend events out to every open push connection.
//
// The registry of connections is confined to the Run goroutine: handlers
// and pumps talk to it only through channels, and the backend's delivery
// thread crosses into it only through the buffered event channel. No lock
// guards the registry because nothing else ever touches it.
package hub

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/quantbridge/webtrader/internal/models"
)

var (
	activeConnectionMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "number_of_active_connections",
		Help: "The number of active push connections",
	})
	broadcastEventsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_broadcast_events",
		Help: "The total number of events broadcast to push connections",
	})
	droppedEventsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_dropped_events",
		Help: "The total number of events dropped because the bridge buffer was full",
	})
	deliveredMessagesMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_delivered_messages",
		Help: "The total number of messages written to push connections",
	})
	slowClientsDroppedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_slow_clients_dropped",
		Help: "The total number of connections dropped because their send queue was full",
	})
)

// Event is one backend-originated event on its way to the clients.
type Event struct {
	Topic string
	Data  models.Record
}

type envelope struct {
	Topic string         `json:"topic"`
	Data  map[string]any `json:"data"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	events     chan Event

	clients   map[*Client]struct{}
	connected atomic.Int64

	sendBuffer int
	heartbeat  time.Duration
	done       chan struct{}
}

func NewHub(eventBuffer, sendBuffer int, heartbeat time.Duration) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, eventBuffer),
		clients:    make(map[*Client]struct{}),
		sendBuffer: sendBuffer,
		heartbeat:  heartbeat,
		done:       make(chan struct{}),
	}
}

// Publish is the bridge entry point, invoked from the backend adapter's
// delivery thread. It never performs registry access or socket I/O itself:
// with no open connections it is a no-op, otherwise it hands the event to
// the loop and returns. A full buffer drops the event rather than blocking
// the delivery thread.
func (h *Hub) Publish(topic string, record models.Record) {
	if h.connected.Load() == 0 {
		return
	}
	select {
	case h.events <- Event{Topic: topic, Data: record}:
	case <-h.done:
	default:
		droppedEventsMetric.Inc()
		log.WithField("prefix", "Hub.Publish").Warnf("event buffer full, dropping event on topic %q", topic)
	}
}

// Serve registers the connection and runs its pumps. It blocks until the
// connection ends, so the calling handler stays open for the lifetime of
// the push channel.
func (h *Hub) Serve(conn wsConn, ip, origin string) {
	c := newClient(h, conn, ip, origin)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump()
}

// Connections reports how many push connections are currently registered.
func (h *Hub) Connections() int64 {
	return h.connected.Load()
}

// Unregister schedules removal of the client. Safe to call more than once
// and from any goroutine.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run is the hub loop. All registry mutation and broadcast fan-out happens
// here, on this one goroutine.
func (h *Hub) Run(ctx context.Context) {
	log := log.WithField("prefix", "Hub.Run")
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))
			activeConnectionMetric.Inc()
			log.Infof("connection %v registered (ip: %v, origin: %v)", c.ID, c.IP, c.Origin)

		case c := <-h.unregister:
			h.drop(c)

		case ev := <-h.events:
			h.broadcast(ev)

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

// drop removes a client from the registry. Idempotent: a client can be
// reported dead by both of its pumps.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.connected.Store(int64(len(h.clients)))
	activeConnectionMetric.Dec()
}

// broadcast serializes the event once and offers it to every registered
// connection. A client that cannot take the message (stalled writer) is
// dropped on the spot; delivery to the others is unaffected.
func (h *Hub) broadcast(ev Event) {
	log := log.WithField("prefix", "Hub.broadcast")
	msg, err := sonic.Marshal(envelope{Topic: ev.Topic, Data: ev.Data.Flatten()})
	if err != nil {
		log.Errorf("failed to serialize event on topic %q: %v", ev.Topic, err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warnf("connection %v not keeping up, dropping it", c.ID)
			slowClientsDroppedMetric.Inc()
			h.drop(c)
		}
	}
	broadcastEventsMetric.Inc()
}
