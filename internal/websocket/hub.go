// Package websocket pushes dataset events to connected viewers.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"macrodash/internal/config"
	"macrodash/internal/infrastructure"
	"macrodash/pkg/contracts/events"
)

// ErrHubStopped is returned by Broadcast after Stop.
var ErrHubStopped = errors.New("websocket hub stopped")

const (
	defaultPongWait = 60 * time.Second
	sendBuffer      = 32
)

type outbound struct {
	msgType string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts messages to them.
// The clients map is owned by the Run loop.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	pongWait   time.Duration

	mu      sync.RWMutex
	count   int
	running bool
	quit    chan struct{}
	done    chan struct{}

	metrics *Metrics
	logger  *slog.Logger
}

// NewHub creates a hub. metrics may be nil.
func NewHub(cfg config.WebSocketConfig, metrics *Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = pongWait * 9 / 10
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 16),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		pingPeriod: pingPeriod,
		pongWait:   pongWait,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start runs the hub loop in the background. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop disconnects every client and ends the hub loop.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

func (h *Hub) run() {
	defer close(h.done)
	ctx := context.Background()

	for {
		select {
		case <-h.quit:
			for c := range h.clients {
				h.drop(ctx, c)
			}
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount()
			h.metrics.recordConnect(ctx)
			h.logger.Info("client registered",
				slog.String("client_id", c.id),
				slog.String("remote_addr", c.remoteAddr),
				slog.Int("total_clients", len(h.clients)))

			if msg, err := encode(ctx, events.MessageTypeConnect, map[string]string{"client_id": c.id}); err == nil {
				c.send <- msg
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(ctx, c)
				h.logger.Info("client unregistered",
					slog.String("client_id", c.id),
					slog.Duration("connection_duration", time.Since(c.connectedAt)),
					slog.Int("total_clients", len(h.clients)))
			}

		case msg := <-h.broadcast:
			delivered, dropped := 0, 0
			for c := range h.clients {
				select {
				case c.send <- msg.payload:
					delivered++
				default:
					dropped++
					h.drop(ctx, c)
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", c.id))
				}
			}
			h.metrics.recordBroadcast(ctx, msg.msgType, delivered, dropped)
			h.logger.Debug("message broadcast",
				slog.String("type", msg.msgType),
				slog.Int("clients", delivered))
		}
	}
}

// drop removes c and closes its send channel. Only the run loop calls it.
func (h *Hub) drop(ctx context.Context, c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount()
	h.metrics.recordDisconnect(ctx, time.Since(c.connectedAt))
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Broadcast queues a message of the given type for every client. The
// trace id of ctx, if any, is attached to the message.
func (h *Hub) Broadcast(ctx context.Context, msgType events.MessageType, data interface{}) error {
	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}
	payload, err := encode(ctx, msgType, data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- outbound{msgType: string(msgType), payload: payload}:
		return nil
	case <-h.quit:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve upgrades the request and attaches the connection to the hub.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	h.Attach(wsConn{conn})
}

// Attach registers a client for conn and starts its pumps. It returns
// nil when the hub has stopped.
func (h *Hub) Attach(conn Connection) *Client {
	c := newClient(h, conn)
	select {
	case <-h.quit:
		_ = conn.Close()
		return nil
	default:
	}
	select {
	case h.register <- c:
	case <-h.quit:
		_ = conn.Close()
		return nil
	}
	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func encode(ctx context.Context, msgType events.MessageType, data interface{}) ([]byte, error) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			ID:        uuid.NewString(),
			Type:      msgType,
			Timestamp: time.Now().UTC(),
			TraceID:   infrastructure.GetTraceID(ctx),
		},
		Data: data,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", msgType, err)
	}
	return payload, nil
}
