// Package token implements the session access token codec.
//
// A token is a bearer capability: a fixed-width string built from the
// session id, the user id, and a single role digit. Decoding recovers
// the exact triple without any server-side lookup, which is why every
// operation re-validates the session and user behind the token before
// acting on it.
package token

import (
	"errors"

	"github.com/lxndrdagreat/dm-display-server/internal/uid"
)

// ErrInvalidToken indicates a token that is not the expected width or
// carries an unknown role digit.
var ErrInvalidToken = errors.New("invalid access token")

// Role is a session user's role, encoded as a single digit in the token.
type Role int

const (
	RoleDisplay Role = iota
	RoleAdmin
	RolePlayer
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r >= RoleDisplay && r <= RolePlayer
}

func (r Role) String() string {
	switch r {
	case RoleDisplay:
		return "display"
	case RoleAdmin:
		return "admin"
	case RolePlayer:
		return "player"
	}
	return "unknown"
}

// Width is the exact length of an encoded token: session id, user id,
// and one role digit.
const Width = uid.Length + uid.Length + 1

// Parts is the decoded triple carried by a token.
type Parts struct {
	SessionID string
	UserID    string
	Role      Role
}

// Encode builds a token from its parts.
func Encode(sessionID, userID string, role Role) string {
	return sessionID + userID + string(byte('0')+byte(role))
}

// Decode splits a token back into its parts. It fails with
// ErrInvalidToken if the token is not exactly Width characters long or
// the role digit is not a known role.
func Decode(tok string) (Parts, error) {
	if len(tok) != Width {
		return Parts{}, ErrInvalidToken
	}
	digit := tok[Width-1]
	if digit < '0' || digit > '9' {
		return Parts{}, ErrInvalidToken
	}
	role := Role(digit - '0')
	if !role.Valid() {
		return Parts{}, ErrInvalidToken
	}
	return Parts{
		SessionID: tok[:uid.Length],
		UserID:    tok[uid.Length : uid.Length*2],
		Role:      role,
	}, nil
}
