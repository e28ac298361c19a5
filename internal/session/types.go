package session

import (
	"errors"

	"github.com/lxndrdagreat/dm-display-server/internal/combat"
	"github.com/lxndrdagreat/dm-display-server/internal/token"
)

// Errors
var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrRoleDenied            = errors.New("invalid role")
	ErrCombatTrackerNotFound = errors.New("combat tracker does not exist")
	ErrAlreadySubscribed     = errors.New("already subscribed")
)

// ActiveScreen identifies which shared screen a session is showing.
type ActiveScreen int

const (
	ScreenCombatTracker ActiveScreen = iota
)

// User is a participant in a session.
type User struct {
	ID   string     `json:"id"`
	Role token.Role `json:"role"`
}

// Session is a password-gated collaborative room.
type Session struct {
	ID            string          `json:"id"`
	Password      string          `json:"-"`
	Users         []User          `json:"users"`
	ActiveScreen  ActiveScreen    `json:"activeScreen"`
	CombatTracker *combat.Tracker `json:"combatTracker"`
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	out := s
	out.Users = make([]User, len(s.Users))
	copy(out.Users, s.Users)
	if s.CombatTracker != nil {
		t := s.CombatTracker.Clone()
		out.CombatTracker = &t
	}
	return out
}

// Update is a partial session update. Nil fields are left untouched;
// nested structures are replaced wholesale.
type Update struct {
	Password      *string         `json:"password,omitempty"`
	Users         *[]User         `json:"users,omitempty"`
	ActiveScreen  *ActiveScreen   `json:"activeScreen,omitempty"`
	CombatTracker *combat.Tracker `json:"combatTracker,omitempty"`
}
