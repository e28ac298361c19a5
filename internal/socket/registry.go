package socket

import (
	"log/slog"
	"sync"
)

// Registry is the bidirectional association between live connections
// and access tokens, plus the one-to-many association between sessions
// and their connections. Entries are pure lookup indices; they never
// own the session and are all cleared by one RemoveConnection call so
// a disconnect can never leave partial state behind.
type Registry struct {
	logger *slog.Logger

	mu        sync.Mutex
	tokens    map[*Conn]string
	conns     map[string]*Conn
	bySession map[string]map[*Conn]struct{}
}

// NewRegistry creates an empty connection registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		tokens:    make(map[*Conn]string),
		conns:     make(map[string]*Conn),
		bySession: make(map[string]map[*Conn]struct{}),
	}
}

// Bind associates a connection with a token and its session. A
// connection that re-authenticates has its previous association
// replaced.
func (r *Registry) Bind(conn *Conn, tok, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeLocked(conn)

	r.tokens[conn] = tok
	r.conns[tok] = conn
	set, ok := r.bySession[sessionID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.bySession[sessionID] = set
	}
	set[conn] = struct{}{}

	r.logger.Debug("connection bound",
		"conn_id", conn.ID(),
		"session_id", sessionID,
	)
}

// TokenFor returns the token a connection authenticated with.
func (r *Registry) TokenFor(conn *Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok, ok := r.tokens[conn]
	return tok, ok
}

// ConnForToken returns the connection bound to a token.
func (r *Registry) ConnForToken(tok string) (*Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[tok]
	return conn, ok
}

// SessionConns returns the connections currently attached to a
// session.
func (r *Registry) SessionConns(sessionID string) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.bySession[sessionID]
	out := make([]*Conn, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// ConnectionCount returns the number of authenticated connections.
func (r *Registry) ConnectionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// RemoveConnection clears every registry entry keyed by the
// connection. The session itself is untouched; sessions outlive any
// single connection.
func (r *Registry) RemoveConnection(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(conn)
}

func (r *Registry) removeLocked(conn *Conn) {
	tok, ok := r.tokens[conn]
	if !ok {
		return
	}
	delete(r.tokens, conn)
	delete(r.conns, tok)
	for sessionID, set := range r.bySession {
		if _, ok := set[conn]; !ok {
			continue
		}
		delete(set, conn)
		if len(set) == 0 {
			delete(r.bySession, sessionID)
		}
	}
}
