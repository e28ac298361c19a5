package socket

import (
	"github.com/lxndrdagreat/dm-display-server/internal/session"
	"github.com/lxndrdagreat/dm-display-server/internal/wire"
)

// translateEvent maps an internal broadcast event type to its outbound
// wire message type.
func translateEvent(t session.EventType) (wire.MessageType, bool) {
	switch t {
	case session.EventCharacterAdded:
		return wire.CombatTrackerCharacterAdded, true
	case session.EventCharacterRemoved:
		return wire.CombatTrackerCharacterRemoved, true
	case session.EventCharacterUpdated:
		return wire.CombatTrackerCharacterUpdated, true
	case session.EventActiveCharacter:
		return wire.CombatTrackerActiveCharacter, true
	case session.EventRound:
		return wire.CombatTrackerRound, true
	case session.EventTracker:
		return wire.CombatTrackerState, true
	}
	return 0, false
}

// handleSessionEvent fans a session broadcast out to every connection
// attached to the event's session. Sends are independent per
// connection; a full buffer on one peer never affects the others.
func (s *Server) handleSessionEvent(event session.Event) {
	msgType, ok := translateEvent(event.Type)
	if !ok {
		return
	}

	msg, err := wire.NewMessage(msgType, event.Payload)
	if err != nil {
		s.logger.Error("marshal broadcast payload",
			"session_id", event.SessionID,
			"event_type", event.Type,
			"error", err,
		)
		return
	}

	for _, conn := range s.registry.SessionConns(event.SessionID) {
		conn.Send(msg)
	}
}
