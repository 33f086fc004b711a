// Package broadcast runs the in-app notification hub for SYSTEM alerts.
// Clients connect over WebSocket and receive targeted or broadcast
// notifications as JSON text frames.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vigil-go/internal/domain"
)

// writeWait bounds one frame write so a stalled peer is dropped instead of
// wedging notification delivery.
const writeWait = 5 * time.Second

// Hub tracks connected clients keyed by user ID and fans notifications out
// to them. All methods are safe for concurrent use.
type Hub struct {
	mu          sync.Mutex
	connections map[string]map[*websocket.Conn]bool // userID -> set of connections

	// writeMu serializes Notify so frames on one connection never interleave.
	// Registration only takes mu, so clients can connect mid-delivery.
	writeMu sync.Mutex

	upgrader websocket.Upgrader
	server   *http.Server
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[string]map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// AddConnection registers a client connection for a user.
func (h *Hub) AddConnection(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[*websocket.Conn]bool)
	}
	h.connections[userID][conn] = true
}

// RemoveConnection unregisters a client connection.
func (h *Hub) RemoveConnection(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.connections[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
	}
}

// ConnectedUsers returns the number of distinct users currently connected.
func (h *Hub) ConnectedUsers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Notify delivers a notification. A TargetUserID addresses that user's
// connections only; an empty target reaches every connected client.
// Writes carry a deadline, and connections that miss it or fail are dropped,
// so one stalled peer cannot block the rest.
func (h *Hub) Notify(_ context.Context, n *domain.Notification) error {
	message, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()

	for _, t := range h.snapshotTargets(n.TargetUserID) {
		_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := t.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Warn("dropping websocket client", "user_id", t.userID, "error", err)
			t.conn.Close()
			h.RemoveConnection(t.userID, t.conn)
		}
	}
	return nil
}

type target struct {
	userID string
	conn   *websocket.Conn
}

// snapshotTargets copies the delivery set under mu so the actual writes
// happen without blocking registration.
func (h *Hub) snapshotTargets(userID string) []target {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []target
	if userID != "" {
		for conn := range h.connections[userID] {
			targets = append(targets, target{userID: userID, conn: conn})
		}
		return targets
	}
	for uid, conns := range h.connections {
		for conn := range conns {
			targets = append(targets, target{userID: uid, conn: conn})
		}
	}
	return targets
}

// handleWS upgrades the request and keeps the connection registered until
// the client goes away. The user identifies itself with the user_id query
// parameter.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "missing user_id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	h.AddConnection(userID, conn)
	h.logger.Info("websocket client connected", "user_id", userID)

	// Drain reads so we notice the client closing.
	go func() {
		defer func() {
			h.RemoveConnection(userID, conn)
			conn.Close()
			h.logger.Info("websocket client disconnected", "user_id", userID)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Start serves the hub on its own listener. The hub cannot share the main
// Fiber app because the WebSocket upgrade needs direct access to the
// underlying net/http connection.
func (h *Hub) Start(addr, path string) error {
	mux := http.NewServeMux()
	mux.HandleFunc(path, h.handleWS)

	h.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	h.logger.Info("broadcast hub listening", "addr", addr, "path", path)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and closes every client connection.
func (h *Hub) Shutdown(ctx context.Context) error {
	var err error
	if h.server != nil {
		err = h.server.Shutdown(ctx)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.connections {
		for conn := range conns {
			conn.Close()
		}
		delete(h.connections, userID)
	}
	return err
}
