package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.equate/pkg/logging"
)

const (
	writeWait  = 5 * time.Second
	clientSend = 32
)

// Server streams assertion events to WebSocket clients at /ws. It
// also serves the retained events at /events, the per-site
// dashboard at /dashboard, and /health.
type Server struct {
	mu        sync.RWMutex
	addr      string
	collector *EventCollector
	dashboard *Dashboard
	logger    logging.Logger
	upgrader  websocket.Upgrader
	clients   map[*client]struct{}
	server    *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a monitor server for the events of collector.
// A nil logger discards log output.
func NewServer(
	addr string,
	collector *EventCollector,
	logger logging.Logger,
) *Server {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	s := &Server{
		addr:      addr,
		collector: collector,
		dashboard: BuildDashboard(collector),
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	collector.OnEvent(func(event Event) {
		s.dashboard.Update(event)
		data, err := json.Marshal(event)
		if err != nil {
			return
		}
		s.broadcast(data)
	})
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

// Start serves until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("monitor listening", logging.StringField("addr", s.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("monitor server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server and disconnects all
// clients.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.ErrorField(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSend)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("monitor client connected",
		logging.StringField("remote", r.RemoteAddr))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop discards client messages until the connection closes.
func (s *Server) readLoop(c *client) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		close(c.send)
		s.mu.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.conn.Close()
			return
		}
	}
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Stats  CollectorStats `json:"stats"`
		Events []Event        `json:"events"`
	}{s.collector.Stats(), s.collector.Events()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.dashboard.Snapshot())
}

func (s *Server) broadcast(data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}
