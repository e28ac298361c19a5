package token

import (
	"errors"
	"testing"

	"github.com/lxndrdagreat/dm-display-server/internal/uid"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	roles := []Role{RoleDisplay, RoleAdmin, RolePlayer}
	for _, role := range roles {
		sessionID := uid.New()
		userID := uid.New()

		tok := Encode(sessionID, userID, role)
		if len(tok) != Width {
			t.Fatalf("len(Encode(...)) = %d, want %d", len(tok), Width)
		}

		parts, err := Decode(tok)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if parts.SessionID != sessionID {
			t.Errorf("SessionID = %q, want %q", parts.SessionID, sessionID)
		}
		if parts.UserID != userID {
			t.Errorf("UserID = %q, want %q", parts.UserID, userID)
		}
		if parts.Role != role {
			t.Errorf("Role = %v, want %v", parts.Role, role)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	cases := []struct {
		name string
		tok  string
	}{
		{"empty", ""},
		{"too short", "abc12def3"},
		{"too long", "abc12def34x9"},
		{"non-numeric role", "abc12def34x"},
		{"unknown role digit", "abc12def349"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode(%q) err = %v, want ErrInvalidToken", tc.tok, err)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleAdmin.Valid() {
		t.Error("RoleAdmin.Valid() = false, want true")
	}
	if Role(3).Valid() {
		t.Error("Role(3).Valid() = true, want false")
	}
	if Role(-1).Valid() {
		t.Error("Role(-1).Valid() = true, want false")
	}
}
