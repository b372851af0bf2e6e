// Package watch serves diagnostics and the TAC listing to connected
// browser-based viewers over a websocket, backing `compiscript watch`.
// Message shape and the publish-on-change flow follow an LSP-style
// textDocument/publishDiagnostics notification, re-transported over
// gorilla/websocket instead of stdio JSON-RPC framing.
package watch

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Diagnostic is close enough to LSP's Diagnostic shape for a browser
// viewer to render a line/message list, without the full LSP Range
// machinery this pipeline has no use for.
type Diagnostic struct {
	Line     int    `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Snapshot is one push frame: the current diagnostics plus a rendered
// TAC listing, sent whenever the watched file changes.
type Snapshot struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	Quads       string       `json:"quads"`
}

// Server pushes Snapshots to every connected client.
type Server struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	last *Snapshot
}

// NewServer builds a watch server. The upgrader accepts any origin:
// this is a localhost developer tool, not a public endpoint.
func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler to mount at the websocket path.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("watch: upgrade failed: %v", err)
			return
		}
		s.mu.Lock()
		s.clients[conn] = true
		last := s.last
		s.mu.Unlock()

		if last != nil {
			if err := conn.WriteJSON(last); err != nil {
				s.drop(conn)
				return
			}
		}

		// Drain and discard client frames; this server only pushes.
		go func() {
			defer s.drop(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
}

// Publish pushes a new Snapshot to every connected client, following a
// straightforward "recompute, then notify" flow.
func (s *Server) Publish(snap Snapshot) error {
	s.mu.Lock()
	s.last = &snap
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("watch: marshal snapshot: %w", err)
	}

	var lastErr error
	for _, c := range clients {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			lastErr = err
			s.drop(c)
		}
	}
	return lastErr
}

// ClientCount reports how many viewers are currently connected.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
