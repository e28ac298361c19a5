package socket

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/lxndrdagreat/dm-display-server/internal/combat"
	"github.com/lxndrdagreat/dm-display-server/internal/session"
	"github.com/lxndrdagreat/dm-display-server/internal/token"
	"github.com/lxndrdagreat/dm-display-server/internal/wire"
)

// ErrPermissionDenied indicates a connection tried to do something its
// authentication state or role does not allow.
var ErrPermissionDenied = errors.New("connection not permitted to perform this action")

// Dispatcher decodes inbound envelopes, authorizes them against the
// connection's token, and routes them to session store operations.
type Dispatcher struct {
	store    *session.Store
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a message dispatcher.
func NewDispatcher(store *session.Store, registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		logger:   logger,
	}
}

// HandleMessage processes one inbound message. Parse failures and
// unexpected handler errors are logged and swallowed: the connection
// stays open and simply gets no response. Authorization failures evict
// the connection with a refusal message and an application close code.
func (d *Dispatcher) HandleMessage(conn *Conn, data []byte) {
	var msg wire.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		d.logger.Warn("malformed envelope", "conn_id", conn.ID(), "error", err)
		return
	}

	if err := d.dispatch(conn, msg); err != nil {
		if isSecurityError(err) {
			d.evict(conn, err)
			return
		}
		d.logger.Warn("message handler failed",
			"conn_id", conn.ID(),
			"type", msg.Type,
			"error", err,
		)
	}
}

func (d *Dispatcher) dispatch(conn *Conn, msg wire.Message) error {
	switch msg.Type {
	case wire.CreateNewSession:
		return d.handleCreateNewSession(conn, msg.Payload)
	case wire.ConnectToSession:
		return d.handleConnectToSession(conn, msg.Payload)
	case wire.CombatTrackerAddCharacter:
		return d.handleAddCharacter(conn, msg.Payload)
	case wire.CombatTrackerRemoveCharacter:
		return d.handleRemoveCharacter(conn, msg.Payload)
	case wire.CombatTrackerUpdateCharacter:
		return d.handleUpdateCharacter(conn, msg.Payload)
	case wire.CombatTrackerUpdateCharacterNPC:
		return d.handleUpdateCharacterNPC(conn, msg.Payload)
	case wire.CombatTrackerNextTurn:
		return d.handleNextTurn(conn)
	case wire.CombatTrackerPreviousTurn:
		return d.handlePreviousTurn(conn)
	case wire.CombatTrackerRequestRestart:
		return d.handleRestart(conn)
	case wire.CombatTrackerRequestClear:
		return d.handleClear(conn)
	case wire.CombatTrackerState:
		return d.handleTrackerState(conn, msg.Payload)
	default:
		// Unknown types are ignored, not errors.
		return nil
	}
}

// isSecurityError reports whether an error must evict the connection.
func isSecurityError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, session.ErrRoleDenied) ||
		errors.Is(err, session.ErrSessionNotFound)
}

// evict removes all registry entries for the connection, informs the
// peer why, and closes with a reason-specific application close code.
func (d *Dispatcher) evict(conn *Conn, cause error) {
	d.registry.RemoveConnection(conn)

	reason := wire.ReasonSessionNotFound
	code := wire.CloseSessionNotFound
	if errors.Is(cause, ErrPermissionDenied) || errors.Is(cause, session.ErrRoleDenied) {
		reason = wire.ReasonInvalidPermissions
		code = wire.ClosePermissionDenied
	}

	d.logger.Info("evicting connection",
		"conn_id", conn.ID(),
		"cause", cause,
	)

	if msg, err := wire.NewMessage(wire.SessionConnectionRefused, reason); err == nil {
		conn.Send(msg)
	}
	conn.CloseWithCode(code, "")
}

// requireRole resolves the connection's token and checks its role.
// Checked on every message, not just at the handshake.
func (d *Dispatcher) requireRole(conn *Conn, role token.Role) (string, error) {
	tok, ok := d.registry.TokenFor(conn)
	if !ok {
		return "", ErrPermissionDenied
	}
	parts, err := token.Decode(tok)
	if err != nil {
		return "", ErrPermissionDenied
	}
	if parts.Role != role {
		return "", ErrPermissionDenied
	}
	return tok, nil
}

func (d *Dispatcher) handleCreateNewSession(conn *Conn, payload json.RawMessage) error {
	var password string
	if err := json.Unmarshal(payload, &password); err != nil {
		return err
	}
	// TODO: validate password
	sess, err := d.store.CreateSession(password)
	if err != nil {
		return err
	}
	msg, err := wire.NewMessage(wire.NewSessionCreated, sess.ID)
	if err != nil {
		return err
	}
	conn.Send(msg)
	return nil
}

func (d *Dispatcher) handleConnectToSession(conn *Conn, payload json.RawMessage) error {
	var req wire.ConnectPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}

	user, err := d.store.JoinSession(req.SessionID, req.Password, req.Role)
	if err != nil {
		return err
	}
	tok := token.Encode(req.SessionID, user.ID, user.Role)
	sess, err := d.store.GetSessionByToken(tok)
	if err != nil {
		return err
	}

	d.registry.Bind(conn, tok, sess.ID)

	connected, err := wire.NewMessage(wire.SessionConnected, tok)
	if err != nil {
		return err
	}
	conn.Send(connected)

	full, err := wire.NewMessage(wire.FullState, wire.FullStatePayload{
		ID:            sess.ID,
		ActiveScreen:  int(sess.ActiveScreen),
		CombatTracker: sess.CombatTracker,
	})
	if err != nil {
		return err
	}
	conn.Send(full)
	return nil
}

func (d *Dispatcher) handleAddCharacter(conn *Conn, payload json.RawMessage) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	var character combat.Character
	if err := json.Unmarshal(payload, &character); err != nil {
		return err
	}
	_, err = d.store.AddCharacter(tok, character)
	return err
}

func (d *Dispatcher) handleRemoveCharacter(conn *Conn, payload json.RawMessage) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	var characterID string
	if err := json.Unmarshal(payload, &characterID); err != nil {
		return err
	}
	_, err = d.store.RemoveCharacter(tok, characterID)
	return err
}

func (d *Dispatcher) handleUpdateCharacter(conn *Conn, payload json.RawMessage) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	var update combat.CharacterUpdate
	if err := json.Unmarshal(payload, &update); err != nil {
		return err
	}
	if update.ID == "" {
		return nil
	}
	_, err = d.store.UpdateCharacter(tok, update.ID, update)
	return err
}

func (d *Dispatcher) handleUpdateCharacterNPC(conn *Conn, payload json.RawMessage) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	var req wire.NPCUpdatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return err
	}
	_, err = d.store.UpdateCharacterNPC(tok, req.ID, req.NPC)
	return err
}

func (d *Dispatcher) handleNextTurn(conn *Conn) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = d.store.NextTurn(tok)
	return err
}

func (d *Dispatcher) handlePreviousTurn(conn *Conn) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = d.store.PreviousTurn(tok)
	return err
}

func (d *Dispatcher) handleRestart(conn *Conn) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = d.store.RestartCombatRounds(tok)
	return err
}

func (d *Dispatcher) handleClear(conn *Conn) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	_, err = d.store.ResetCombatTracker(tok)
	return err
}

func (d *Dispatcher) handleTrackerState(conn *Conn, payload json.RawMessage) error {
	tok, err := d.requireRole(conn, token.RoleAdmin)
	if err != nil {
		return err
	}
	var state combat.Tracker
	if err := json.Unmarshal(payload, &state); err != nil {
		return err
	}
	_, err = d.store.ReplaceCombatTracker(tok, state)
	return err
}
