// Package wire defines the socket message envelope and the message
// type enum shared by client and server.
package wire

import (
	"encoding/json"

	"github.com/lxndrdagreat/dm-display-server/internal/combat"
	"github.com/lxndrdagreat/dm-display-server/internal/token"
)

// MessageType identifies the meaning of a socket message payload.
type MessageType int

const (
	ConnectToSession MessageType = iota
	SessionConnected

	FullState

	CombatTrackerState
	CombatTrackerAddCharacter
	CombatTrackerCharacterAdded
	CombatTrackerRemoveCharacter
	CombatTrackerCharacterRemoved
	CombatTrackerUpdateCharacter
	CombatTrackerCharacterUpdated

	CreateNewSession
	NewSessionCreated
	SessionConnectionRefused

	CombatTrackerNextTurn
	CombatTrackerPreviousTurn
	CombatTrackerActiveCharacter
	CombatTrackerRound
	CombatTrackerRequestRestart
	CombatTrackerRequestClear
	CombatTrackerUpdateCharacterNPC
)

// Message is the JSON envelope for every socket message in either
// direction. Payload stays raw until the type is known.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage builds an envelope with a marshaled payload.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

// RefusedReason explains a SessionConnectionRefused message.
type RefusedReason int

const (
	ReasonSessionNotFound RefusedReason = iota
	ReasonInvalidPermissions
)

// Application websocket close codes, in the 4000-4999 range reserved
// for applications. They distinguish the two eviction causes.
const (
	ClosePermissionDenied = 4001
	CloseSessionNotFound  = 4002
)

// ConnectPayload is the client request to join an existing session.
type ConnectPayload struct {
	SessionID string     `json:"sessionId"`
	Password  string     `json:"password"`
	Role      token.Role `json:"role"`
}

// FullStatePayload is the snapshot sent right after a successful
// connect.
type FullStatePayload struct {
	ID            string          `json:"id"`
	ActiveScreen  int             `json:"activeScreen"`
	CombatTracker *combat.Tracker `json:"combatTracker"`
}

// NPCUpdatePayload carries a partial NPC block update for one
// character.
type NPCUpdatePayload struct {
	ID  string           `json:"id"`
	NPC combat.NPCUpdate `json:"npc"`
}
