// Package web implements the optional dashboard surface: a WebSocket
// hub that fans per-tick probe snapshots out to connected viewers
// (spec.md §6's "external collaborator" for interactive rendering).
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/coder/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/probes"
)

// Snapshot is one tick's worth of probe output, the unit broadcast to
// dashboard clients and kept in the Hub's bounded history.
type Snapshot struct {
	Tick   int64               `json:"tick"`
	Mirror probes.MirrorReport `json:"mirror"`
	Link   probes.LinkReport   `json:"link"`
}

type envelope struct {
	Type      string   `json:"type"`
	Data      Snapshot `json:"data"`
	Timestamp int64    `json:"timestamp"`
}

// Hub manages connected dashboard WebSocket clients and a bounded
// recent-tick history. Unlike internal/probes' unbounded, exact
// per-tick history, the dashboard only ever needs the
// last N ticks a human operator might want to scroll back through, so
// it's backed by an LRU cache rather than an ever-growing map.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
	history *lru.Cache[int64, Snapshot]
	logger  *zap.Logger
}

// NewHub constructs a Hub retaining at most historySize recent
// snapshots for late-joining clients.
func NewHub(historySize int, logger *zap.Logger) (*Hub, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if historySize <= 0 {
		historySize = 500
	}
	cache, err := lru.New[int64, Snapshot](historySize)
	if err != nil {
		return nil, err
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		history: cache,
		logger:  logger,
	}, nil
}

// Publish records snap in the bounded history and broadcasts it to
// every connected client. Called once per tick from the simulation
// driver's OnTick hook.
func (h *Hub) Publish(snap Snapshot) {
	h.history.Add(snap.Tick, snap)

	env := envelope{Type: "TICK_SNAPSHOT", Data: snap, Timestamp: time.Now().UnixMilli()}
	payload, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("failed to marshal snapshot", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		go func(conn *websocket.Conn) {
			if err := conn.Write(context.Background(), websocket.MessageText, payload); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
			}
		}(c)
	}
}

// History returns every retained snapshot, ordered by ascending tick.
func (h *Hub) History() []Snapshot {
	keys := h.history.Keys()
	out := make([]Snapshot, 0, len(keys))
	for _, k := range keys {
		if snap, ok := h.history.Peek(k); ok {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}

// HandleWS upgrades the request to a WebSocket, registers the client,
// replays recent history, and then blocks discarding inbound frames
// until the client disconnects.
func (h *Hub) HandleWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			http.Error(w, "websocket_accept_failed", http.StatusInternalServerError)
			return
		}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		count := len(h.clients)
		h.mu.Unlock()
		h.logger.Info("dashboard client connected", zap.Int("clients", count))

		for _, snap := range h.History() {
			env := envelope{Type: "TICK_SNAPSHOT", Data: snap, Timestamp: time.Now().UnixMilli()}
			payload, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := c.Write(context.Background(), websocket.MessageText, payload); err != nil {
				break
			}
		}

		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			c.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := c.Read(context.Background()); err != nil {
				return
			}
		}
	}
}

// ClientCount reports how many dashboard clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
