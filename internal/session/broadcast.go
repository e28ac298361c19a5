package session

import (
	"reflect"
	"sync"
)

// EventType identifies a broadcast event.
type EventType int

const (
	// EventCharacterAdded carries the added combat.Character.
	EventCharacterAdded EventType = iota
	// EventCharacterRemoved carries the removed character id (string).
	EventCharacterRemoved
	// EventCharacterUpdated carries the updated combat.Character.
	EventCharacterUpdated
	// EventActiveCharacter carries the new active character id (string,
	// empty when activation was cleared).
	EventActiveCharacter
	// EventRound carries the new round number (int).
	EventRound
	// EventTracker carries the full combat.Tracker after a wholesale
	// replacement.
	EventTracker
)

// Event is an internal notification of a completed mutation. The
// payload type depends on the event type; see the EventType constants.
type Event struct {
	SessionID string
	Type      EventType
	Payload   any
}

// SubscriberFunc receives broadcast events. Subscribers run inside the
// publishing operation and must not call back into the store.
type SubscriberFunc func(Event)

// UnsubscribeFunc removes a subscriber registered with Subscribe.
type UnsubscribeFunc func()

type subscriberEntry struct {
	key uintptr
	fn  SubscriberFunc
}

// Subscribe registers a broadcast listener. Registering the same
// function twice fails with ErrAlreadySubscribed. The returned
// function removes the registration; calling it more than once is
// harmless.
func (s *Store) Subscribe(fn SubscriberFunc) (UnsubscribeFunc, error) {
	key := reflect.ValueOf(fn).Pointer()

	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, entry := range s.subs {
		if entry.key == key {
			return nil, ErrAlreadySubscribed
		}
	}
	s.subs = append(s.subs, subscriberEntry{key: key, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, entry := range s.subs {
				if entry.key == key {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}, nil
}

// publish delivers an event to every subscriber. Subscriber panics are
// caught and logged so one bad listener never breaks the emit loop or
// the mutation that triggered it.
func (s *Store) publish(event Event) {
	s.subMu.Lock()
	subs := make([]subscriberEntry, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, entry := range subs {
		s.invoke(entry.fn, event)
	}
}

func (s *Store) invoke(fn SubscriberFunc, event Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("broadcast subscriber panic",
				"session_id", event.SessionID,
				"event_type", event.Type,
				"panic", r,
			)
		}
	}()
	fn(event)
}
