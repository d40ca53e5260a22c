// Package locationsync mirrors committed navigations over WebSocket.
// Every client connected to a Server observes the same location
// stream a local subscriber would, and may push navigations back.
package locationsync

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/location"
)

// Message types exchanged with clients.
const (
	// TypeLocation announces a committed navigation (server → client).
	TypeLocation = "location"

	// TypePush asks the server to push a navigation (client → server).
	TypePush = "push"

	// TypeReplace asks the server to replace the current entry
	// (client → server).
	TypeReplace = "replace"
)

// Message is the wire format in both directions.
type Message struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// client pairs a connection with its write lock. Navigations commit
// on whatever goroutine called Push or Replace, so broadcasts can run
// concurrently; gorilla/websocket allows at most one concurrent
// writer per connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server broadcasts navigations from a history.History to connected
// WebSocket clients and applies navigation requests they send back.
type Server struct {
	hist     history.History
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool

	unsubscribe history.UnsubscribeFunc
}

// NewServer creates a server attached to hist. A nil logger disables
// logging. The server is live immediately: it has already subscribed
// to hist when NewServer returns.
func NewServer(hist history.History, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		hist:    hist,
		log:     logger,
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.unsubscribe = hist.Subscribe(s.broadcast)
	return s
}

// ServeHTTP upgrades the connection and relays messages until the
// client disconnects. It implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn}
	s.mu.Lock()
	s.clients[cl] = true
	s.mu.Unlock()
	s.log.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Catch the new client up with the present location.
	s.send(cl, Message{Type: TypeLocation, URL: s.hist.Location().String()})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Warn("malformed client message", zap.Error(err))
			continue
		}
		switch msg.Type {
		case TypePush:
			s.hist.Push(msg.URL)
		case TypeReplace:
			s.hist.Replace(msg.URL)
		default:
			s.log.Warn("unknown message type", zap.String("type", msg.Type))
		}
	}

	s.mu.Lock()
	delete(s.clients, cl)
	s.mu.Unlock()
	conn.Close()
	s.log.Info("client disconnected", zap.String("remote", conn.RemoteAddr().String()))
}

// broadcast relays a committed navigation to every client.
func (s *Server) broadcast(loc location.Location) {
	msg := Message{Type: TypeLocation, URL: loc.String()}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for cl := range s.clients {
		clients = append(clients, cl)
	}
	s.mu.RUnlock()

	for _, cl := range clients {
		s.send(cl, msg)
	}
}

// send writes msg to one client, dropping the client on failure.
func (s *Server) send(cl *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := cl.write(data); err != nil {
		s.mu.Lock()
		delete(s.clients, cl)
		s.mu.Unlock()
		cl.conn.Close()
		s.log.Warn("dropping client", zap.Error(err))
	}
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close detaches from the history and closes all connections.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for cl := range s.clients {
		cl.conn.Close()
		delete(s.clients, cl)
	}
}
