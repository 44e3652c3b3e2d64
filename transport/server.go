package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dozersim/dozersim/session"
	"github.com/dozersim/dozersim/vehicle"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

const (
	writeTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server streams session frames to websocket clients and collects the keys they hold. The keys
// of every client are merged into a single InputState, so any connected client can drive the
// selected vehicle.
type Server struct {
	log      *logrus.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*SafeWriter]vehicle.InputState

	running *atomic.Bool
	http    *http.Server
}

// NewServer creates a server that has no clients yet.
func NewServer(log *logrus.Logger) *Server {
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*SafeWriter]vehicle.InputState),
		running: atomic.NewBool(false),
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer sentry.Recover()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade failed: %v", err)
		return
	}
	c := NewSafeWriter(conn)
	s.mu.Lock()
	s.clients[c] = vehicle.InputState{}
	s.mu.Unlock()
	s.log.Infof("client %s connected", conn.RemoteAddr())

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		_ = c.Close()
		s.log.Infof("client %s disconnected", conn.RemoteAddr())
	}()

	if err := c.WriteJSON(Message{Type: MessageTypeInfo, Data: "connected"}); err != nil {
		s.log.Errorf("unable to greet client %s: %v", conn.RemoteAddr(), err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnf("client %s read error: %v", conn.RemoteAddr(), err)
			}
			return
		}
		var msg InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debugf("client %s sent malformed message: %v", conn.RemoteAddr(), err)
			_ = c.WriteJSON(Message{Type: MessageTypeError, Data: "malformed message"})
			continue
		}
		if msg.Type != "" && msg.Type != MessageTypeInput {
			s.log.Debugf("client %s sent unknown message type %q", conn.RemoteAddr(), msg.Type)
			continue
		}
		s.mu.Lock()
		s.clients[c] = s.parseKeys(msg.Keys)
		s.mu.Unlock()
	}
}

func (s *Server) parseKeys(names []string) vehicle.InputState {
	var input vehicle.InputState
	for _, name := range names {
		k, ok := vehicle.ParseKey(name)
		if !ok {
			s.log.Debugf("ignoring unknown key %q", name)
			continue
		}
		input.Press(k)
	}
	return input
}

// Input returns the keys held by any connected client.
func (s *Server) Input() vehicle.InputState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var merged vehicle.InputState
	for _, input := range s.clients {
		for _, k := range input.Keys() {
			merged.Press(k)
		}
	}
	return merged
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends the frame to every connected client. Clients that cannot be written to are
// closed, their read loop then removes them.
func (s *Server) Broadcast(frame session.Frame) {
	data, err := json.Marshal(Message{Type: MessageTypeFrame, Data: frame})
	if err != nil {
		s.log.Errorf("unable to encode frame %d: %v", frame.Tick, err)
		return
	}

	s.mu.RLock()
	clients := make([]*SafeWriter, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.WriteMessageTimeout(websocket.TextMessage, data, writeTimeout); err != nil {
			s.log.Warnf("dropping client %s: %v", c.conn.RemoteAddr(), err)
			_ = c.Close()
		}
	}
}

// ListenAndServe serves clients on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("transport server is already running")
	}
	defer s.running.Store(false)

	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	s.http = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errs := make(chan error, 1)
	go func() {
		defer sentry.Recover()
		s.log.Infof("transport listening on ws://%s/ws", addr)
		errs <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.closeClients()
		return s.http.Shutdown(shutdown)
	}
}

// Running returns true while ListenAndServe is serving.
func (s *Server) Running() bool {
	return s.running.Load()
}

func (s *Server) closeClients() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = c.Close()
	}
}
