package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davidleathers/dnc-scrubber/internal/domain/dnc"
	"github.com/davidleathers/dnc-scrubber/internal/domain/errors"
)

// HubConfig configures the progress hub
type HubConfig struct {
	BroadcastBufferSize int
	ClientBufferSize    int
	PingInterval        time.Duration
	PongTimeout         time.Duration
	WriteTimeout        time.Duration
	MaxMessageSize      int64
}

// DefaultHubConfig returns the default hub configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BroadcastBufferSize: 1024,
		ClientBufferSize:    256,
		PingInterval:        54 * time.Second,
		PongTimeout:         60 * time.Second,
		WriteTimeout:        10 * time.Second,
		MaxMessageSize:      4 * 1024,
	}
}

// ProgressHub fans driver events out to websocket subscribers.
// A single goroutine owns the client set; Publish never blocks the driver.
type ProgressHub struct {
	logger *zap.Logger
	config HubConfig

	clients    map[uuid.UUID]*Client
	broadcast  chan dnc.Event
	register   chan *Client
	unregister chan *Client

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	clientCount atomic.Int64
	published   atomic.Int64
	dropped     atomic.Int64
}

// NewProgressHub creates a hub and starts its run loop
func NewProgressHub(logger *zap.Logger, config HubConfig) *ProgressHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultHubConfig()
	if config.BroadcastBufferSize <= 0 {
		config.BroadcastBufferSize = defaults.BroadcastBufferSize
	}
	if config.ClientBufferSize <= 0 {
		config.ClientBufferSize = defaults.ClientBufferSize
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.PongTimeout <= 0 {
		config.PongTimeout = defaults.PongTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}

	h := &ProgressHub{
		logger:     logger.Named("progress_hub"),
		config:     config,
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan dnc.Event, config.BroadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go h.run()
	return h
}

// Publish queues an event for every matching subscriber. When the queue is full the event
// is dropped.
func (h *ProgressHub) Publish(_ context.Context, event dnc.Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- event:
	default:
		h.dropped.Add(1)
		h.logger.Warn("Progress broadcast buffer full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("session_id", event.SessionID.String()),
		)
	}
}

// Register adds a client to the hub
func (h *ProgressHub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return errors.NewConflictError("HUB_CLOSED", "progress hub is closed")
	}
}

// Unregister removes a client and closes its send queue
func (h *ProgressHub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *ProgressHub) ClientCount() int {
	return int(h.clientCount.Load())
}

// Dropped returns the number of events discarded because the queue was full
func (h *ProgressHub) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops the hub and disconnects every client. It is safe to call more than once.
func (h *ProgressHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func (h *ProgressHub) run() {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.register:
			h.clients[client.ID] = client
			h.clientCount.Store(int64(len(h.clients)))
			h.logger.Info("Progress client registered",
				zap.String("client_id", client.ID.String()),
				zap.Int("total_clients", len(h.clients)),
			)

		case client := <-h.unregister:
			h.remove(client)

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

func (h *ProgressHub) deliver(event dnc.Event) {
	sent := 0
	for _, client := range h.clients {
		if !client.accepts(event) {
			continue
		}
		select {
		case client.send <- event:
			sent++
		default:
			h.logger.Warn("Progress client too slow, disconnecting",
				zap.String("client_id", client.ID.String()),
			)
			h.remove(client)
		}
	}
	h.published.Add(1)

	h.logger.Debug("Progress event broadcast",
		zap.String("event_type", string(event.Type)),
		zap.Int("sent_to_clients", sent),
	)
}

func (h *ProgressHub) remove(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.send)
	h.clientCount.Store(int64(len(h.clients)))

	h.logger.Info("Progress client unregistered",
		zap.String("client_id", client.ID.String()),
		zap.Int("remaining_clients", len(h.clients)),
	)
}

func (h *ProgressHub) shutdown() {
	h.logger.Info("Shutting down progress hub", zap.Int("clients", len(h.clients)))
	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.clientCount.Store(0)
}
