// Package livereload notifies connected browsers when a batch has written
// new stylesheets.
package livereload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/lesstask/internal/build"
	"github.com/conneroisu/lesstask/internal/logging"
)

// Path is where the hub is mounted.
const Path = "/livereload"

const writeTimeout = 5 * time.Second

// Message is sent to every client after a batch.
type Message struct {
	Type      string    `json:"type"`
	BatchID   string    `json:"batch_id"`
	Paths     []string  `json:"paths"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans messages out to them.
//
// Clients never send anything meaningful; the hub only writes. A client
// whose send buffer is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	logger logging.Logger
}

// NewHub creates a hub. Call Shutdown to disconnect every client.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients: make(map[*client]struct{}),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.WithComponent("livereload"),
	}
}

// ServeHTTP upgrades the request and keeps the connection until either side
// goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// browsers connect from whatever dev server serves the page
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	if !h.register(c) {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	defer h.unregister(c)

	h.logger.Debug(r.Context(), "Live reload client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	ctx := conn.CloseRead(h.ctx)
	h.writeLoop(ctx, c)
}

func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.Close(websocket.StatusPolicyViolation, "client too slow")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				h.logger.Debug(ctx, "Live reload write failed", "error", err.Error())
				return
			}
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// Notify broadcasts the artifacts written by report. Batches that wrote
// nothing are not announced.
func (h *Hub) Notify(ctx context.Context, report build.Report) {
	paths := report.Written()
	if len(paths) == 0 {
		return
	}

	err := h.Broadcast(Message{
		Type:      "css",
		BatchID:   report.BatchID,
		Paths:     paths,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn(ctx, err, "Failed to broadcast reload")
	}
}

// Shutdown disconnects every client and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()
}
