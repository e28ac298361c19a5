package session

import (
	"log/slog"
	"sync"

	"github.com/lxndrdagreat/dm-display-server/internal/combat"
	"github.com/lxndrdagreat/dm-display-server/internal/token"
	"github.com/lxndrdagreat/dm-display-server/internal/uid"
)

// Store is the authoritative in-memory session store.
//
// One mutex guards the session map across each full mutate-then-publish
// sequence, so subscribers always observe events in mutation order and
// never see stale state published after a newer mutation.
type Store struct {
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	subMu sync.Mutex
	subs  []subscriberEntry
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// SessionCount returns the number of live sessions.
func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CreateSession registers a new session guarded by the given password
// and returns it with a default combat tracker.
func (s *Store) CreateSession(password string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uid.New()
	for _, taken := s.sessions[id]; taken; _, taken = s.sessions[id] {
		id = uid.New()
	}

	tracker := combat.NewTracker()
	sess := &Session{
		ID: id,
		// TODO: hash this password
		Password:      password,
		Users:         []User{},
		ActiveScreen:  ScreenCombatTracker,
		CombatTracker: &tracker,
	}
	s.sessions[id] = sess

	s.logger.Info("session created", "session_id", id)
	return sess.Clone(), nil
}

// RemoveSession deletes a session. It fails with ErrSessionNotFound if
// the id is unknown.
func (s *Store) RemoveSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)

	s.logger.Info("session removed", "session_id", sessionID)
	return nil
}

// JoinSession appends a new user to a session and returns it. A wrong
// password reports ErrSessionNotFound, indistinguishable from an
// unknown id on purpose.
func (s *Store) JoinSession(sessionID, password string, role token.Role) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.Password != password {
		return User{}, ErrSessionNotFound
	}

	user := User{ID: uid.New(), Role: role}
	sess.Users = append(sess.Users, user)

	s.logger.Info("user joined session",
		"session_id", sessionID,
		"user_id", user.ID,
		"role", role.String(),
	)
	return user, nil
}

// GetSessionByToken resolves a token to its session. It fails with
// token.ErrInvalidToken on decode failure and ErrSessionNotFound when
// the session or the embedded user no longer exists.
func (s *Store) GetSessionByToken(tok string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.sessionByToken(tok)
	if err != nil {
		return Session{}, err
	}
	return sess.Clone(), nil
}

// GetSessionForRole is GetSessionByToken with a role requirement; a
// mismatched role fails with ErrRoleDenied before any lookup.
func (s *Store) GetSessionForRole(tok string, role token.Role) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.sessionByTokenWithRole(tok, role)
	if err != nil {
		return Session{}, err
	}
	return sess.Clone(), nil
}

// UpdateSession shallow-merges a partial update into the session behind
// an Admin token. Nested structures are replaced wholesale; tracker
// mutations at a narrower granularity go through UpdateCombatTracker.
func (s *Store) UpdateSession(tok string, update Update) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.sessionByTokenWithRole(tok, token.RoleAdmin)
	if err != nil {
		return Session{}, err
	}
	s.mergeSession(sess, update)
	return sess.Clone(), nil
}

func (s *Store) mergeSession(sess *Session, update Update) {
	if update.Password != nil {
		sess.Password = *update.Password
	}
	if update.Users != nil {
		sess.Users = make([]User, len(*update.Users))
		copy(sess.Users, *update.Users)
	}
	if update.ActiveScreen != nil {
		sess.ActiveScreen = *update.ActiveScreen
	}
	if update.CombatTracker != nil {
		t := update.CombatTracker.Clone()
		sess.CombatTracker = &t
	}
}

// sessionByToken resolves a token while the caller holds s.mu.
func (s *Store) sessionByToken(tok string) (*Session, token.Parts, error) {
	parts, err := token.Decode(tok)
	if err != nil {
		return nil, token.Parts{}, err
	}

	sess, ok := s.sessions[parts.SessionID]
	if !ok {
		return nil, token.Parts{}, ErrSessionNotFound
	}

	for _, user := range sess.Users {
		if user.ID == parts.UserID {
			return sess, parts, nil
		}
	}
	return nil, token.Parts{}, ErrSessionNotFound
}

func (s *Store) sessionByTokenWithRole(tok string, role token.Role) (*Session, token.Parts, error) {
	parts, err := token.Decode(tok)
	if err != nil {
		return nil, token.Parts{}, err
	}
	if parts.Role != role {
		return nil, token.Parts{}, ErrRoleDenied
	}
	return s.sessionByToken(tok)
}

// trackerForMutation loads the session and tracker behind an Admin
// token while the caller holds s.mu.
func (s *Store) trackerForMutation(tok string) (*Session, token.Parts, error) {
	sess, parts, err := s.sessionByTokenWithRole(tok, token.RoleAdmin)
	if err != nil {
		return nil, token.Parts{}, err
	}
	if sess.CombatTracker == nil {
		return nil, token.Parts{}, ErrCombatTrackerNotFound
	}
	return sess, parts, nil
}

// GetCombatTracker returns the tracker behind a token, any role.
func (s *Store) GetCombatTracker(tok string) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.sessionByToken(tok)
	if err != nil {
		return combat.Tracker{}, err
	}
	if sess.CombatTracker == nil {
		return combat.Tracker{}, ErrCombatTrackerNotFound
	}
	return sess.CombatTracker.Clone(), nil
}

// UpdateCombatTracker merges a partial tracker update behind an Admin
// token and persists the result without broadcasting.
func (s *Store) UpdateCombatTracker(tok string, update combat.TrackerUpdate) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Tracker{}, err
	}
	merged := combat.MergeTracker(*sess.CombatTracker, update)
	sess.CombatTracker = &merged
	return merged.Clone(), nil
}

// AddCharacter assigns a fresh id and an empty condition set to the
// given character data, inserts it, and re-sorts the roster by roll.
func (s *Store) AddCharacter(tok string, data combat.Character) (combat.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Character{}, err
	}

	// TODO: validate character model
	character := data.Clone()
	character.ID = uid.New()
	character.Conditions = []combat.Condition{}

	updated := combat.Add(*sess.CombatTracker, character)
	sess.CombatTracker = &updated

	s.publish(Event{
		SessionID: parts.SessionID,
		Type:      EventCharacterAdded,
		Payload:   character.Clone(),
	})
	return character, nil
}

// RemoveCharacter deletes a character and, when it was the active one,
// promotes a new active character per the wraparound rules.
func (s *Store) RemoveCharacter(tok string, characterID string) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Tracker{}, err
	}

	res, err := combat.Remove(*sess.CombatTracker, characterID)
	if err != nil {
		return combat.Tracker{}, err
	}
	sess.CombatTracker = &res.Tracker

	s.publish(Event{
		SessionID: parts.SessionID,
		Type:      EventCharacterRemoved,
		Payload:   characterID,
	})
	if res.ActiveChanged {
		s.publish(Event{
			SessionID: parts.SessionID,
			Type:      EventActiveCharacter,
			Payload:   res.Tracker.ActiveCharacterID,
		})
	}
	return res.Tracker.Clone(), nil
}

// UpdateCharacter shallow-merges fields into a character. Roll changes
// through this path do not reorder the roster; only add and remove
// re-sort.
func (s *Store) UpdateCharacter(tok, characterID string, update combat.CharacterUpdate) (combat.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCharacterLocked(tok, characterID, update)
}

func (s *Store) updateCharacterLocked(tok, characterID string, update combat.CharacterUpdate) (combat.Character, error) {
	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Character{}, err
	}

	tracker := sess.CombatTracker
	index := -1
	for i, c := range tracker.Characters {
		if c.ID == characterID {
			index = i
			break
		}
	}
	if index < 0 {
		return combat.Character{}, combat.ErrCharacterNotFound
	}

	merged := combat.MergeCharacter(tracker.Characters[index], update)
	tracker.Characters[index] = merged

	s.publish(Event{
		SessionID: parts.SessionID,
		Type:      EventCharacterUpdated,
		Payload:   merged.Clone(),
	})
	return merged.Clone(), nil
}

// UpdateCharacterNPC merges fields into a character's NPC stat block,
// creating a zeroed block when none exists, then persists through the
// character update path.
func (s *Store) UpdateCharacterNPC(tok, characterID string, update combat.NPCUpdate) (combat.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, _, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Character{}, err
	}

	var current *combat.NPCDetails
	for _, c := range sess.CombatTracker.Characters {
		if c.ID == characterID {
			current = c.NPC
			break
		}
	}

	merged := combat.MergeNPC(current, update)
	return s.updateCharacterLocked(tok, characterID, combat.CharacterUpdate{
		ID:  characterID,
		NPC: &merged,
	})
}

// NextTurn advances the turn order, publishing the new round when it
// changed and the new active character id.
func (s *Store) NextTurn(tok string) (combat.Tracker, error) {
	return s.turn(tok, combat.NextTurn)
}

// PreviousTurn retreats the turn order, publishing the new round when
// it changed and the new active character id.
func (s *Store) PreviousTurn(tok string) (combat.Tracker, error) {
	return s.turn(tok, combat.PreviousTurn)
}

func (s *Store) turn(tok string, step func(combat.Tracker) combat.TurnResult) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Tracker{}, err
	}

	res := step(*sess.CombatTracker)
	sess.CombatTracker = &res.Tracker

	if res.RoundChanged {
		s.publish(Event{
			SessionID: parts.SessionID,
			Type:      EventRound,
			Payload:   res.Tracker.Round,
		})
	}
	if res.ActiveChanged {
		s.publish(Event{
			SessionID: parts.SessionID,
			Type:      EventActiveCharacter,
			Payload:   res.Tracker.ActiveCharacterID,
		})
	}
	return res.Tracker.Clone(), nil
}

// RestartCombatRounds resets the round to 1 and activates the top of
// the roll order, publishing the full tracker state.
func (s *Store) RestartCombatRounds(tok string) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Tracker{}, err
	}

	restarted := combat.Restart(*sess.CombatTracker)
	sess.CombatTracker = &restarted

	s.publish(Event{
		SessionID: parts.SessionID,
		Type:      EventTracker,
		Payload:   restarted.Clone(),
	})
	return restarted.Clone(), nil
}

// ResetCombatTracker replaces the tracker with the empty default,
// publishing the full tracker state.
func (s *Store) ResetCombatTracker(tok string) (combat.Tracker, error) {
	return s.ReplaceCombatTracker(tok, combat.NewTracker())
}

// ReplaceCombatTracker swaps in a whole tracker state (the admin
// override path), publishing the full tracker state.
func (s *Store) ReplaceCombatTracker(tok string, state combat.Tracker) (combat.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, parts, err := s.trackerForMutation(tok)
	if err != nil {
		return combat.Tracker{}, err
	}

	replacement := state.Clone()
	combat.SortByRoll(replacement.Characters)
	sess.CombatTracker = &replacement

	s.publish(Event{
		SessionID: parts.SessionID,
		Type:      EventTracker,
		Payload:   replacement.Clone(),
	})
	return replacement.Clone(), nil
}
