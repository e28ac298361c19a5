package socket

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lxndrdagreat/dm-display-server/internal/session"
)

// ServerConfig configures the websocket server.
type ServerConfig struct {
	SendBufferSize  int // Per-connection outbound message buffer
	ReadBufferSize  int // Underlying websocket read buffer bytes
	WriteBufferSize int // Underlying websocket write buffer bytes
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		SendBufferSize:  64,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Server accepts upgraded websocket connections and runs each one's
// read loop through the dispatcher. It subscribes to the session
// store's broadcast hub and fans events out to attached connections.
type Server struct {
	cfg      ServerConfig
	logger   *slog.Logger
	registry *Registry
	dispatch *Dispatcher
	upgrader websocket.Upgrader

	unsubscribe session.UnsubscribeFunc

	mu     sync.Mutex
	conns  map[*Conn]struct{}
	closed bool
}

// NewServer creates a websocket server bound to the given store and
// registry, and registers its broadcast subscriber.
func NewServer(cfg ServerConfig, store *session.Store, registry *Registry, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		dispatch: NewDispatcher(store, registry, logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		conns: make(map[*Conn]struct{}),
	}

	unsubscribe, err := store.Subscribe(s.handleSessionEvent)
	if err != nil {
		return nil, err
	}
	s.unsubscribe = unsubscribe
	return s, nil
}

// ServeHTTP upgrades the request and runs the connection until the
// peer disconnects or the dispatcher evicts it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := newConn(ws, s.logger, s.cfg.SendBufferSize)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ws.Close()
		return
	}
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	s.logger.Debug("connection accepted",
		"conn_id", conn.ID(),
		"remote", r.RemoteAddr,
	)

	go conn.writeLoop()
	s.readLoop(conn)
}

// readLoop pulls messages off the wire until the connection dies, then
// runs the single disconnect cleanup.
func (s *Server) readLoop(conn *Conn) {
	defer s.disconnect(conn)

	for {
		msgType, data, err := conn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "conn_id", conn.ID(), "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			s.logger.Warn("ignoring non-text message", "conn_id", conn.ID(), "msg_type", msgType)
			continue
		}
		s.dispatch.HandleMessage(conn, data)
	}
}

// disconnect removes exactly the registry entries keyed by the
// connection and tears it down. The session itself is untouched.
func (s *Server) disconnect(conn *Conn) {
	s.registry.RemoveConnection(conn)

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()

	conn.stop()
	s.logger.Debug("connection closed", "conn_id", conn.ID())
}

// Stop unsubscribes from the broadcast hub and closes every live
// connection.
func (s *Server) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	s.closed = true
	conns := make([]*Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
