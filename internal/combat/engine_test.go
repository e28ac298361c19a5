package combat

import (
	"errors"
	"testing"
)

func newTestTracker(rolls ...int) Tracker {
	t := NewTracker()
	for i, roll := range rolls {
		t.Characters = append(t.Characters, Character{
			ID:          string(rune('a' + i)),
			DisplayName: "char-" + string(rune('a'+i)),
			Roll:        roll,
			Conditions:  []Condition{},
		})
	}
	SortByRoll(t.Characters)
	return t
}

func TestSortByRoll_Descending(t *testing.T) {
	tracker := newTestTracker(10, 30, 20)

	rolls := []int{}
	for _, c := range tracker.Characters {
		rolls = append(rolls, c.Roll)
	}
	want := []int{30, 20, 10}
	for i := range want {
		if rolls[i] != want[i] {
			t.Fatalf("rolls = %v, want %v", rolls, want)
		}
	}
}

func TestSortByRoll_StableOnTies(t *testing.T) {
	characters := []Character{
		{ID: "first", Roll: 15},
		{ID: "second", Roll: 15},
		{ID: "third", Roll: 15},
	}
	SortByRoll(characters)

	if characters[0].ID != "first" || characters[1].ID != "second" || characters[2].ID != "third" {
		t.Errorf("tie order = [%s %s %s], want insertion order preserved",
			characters[0].ID, characters[1].ID, characters[2].ID)
	}
}

func TestAdd_Resorts(t *testing.T) {
	tracker := newTestTracker(30, 10)
	tracker = Add(tracker, Character{ID: "new", Roll: 20, Conditions: []Condition{}})

	if len(tracker.Characters) != 3 {
		t.Fatalf("len(Characters) = %d, want 3", len(tracker.Characters))
	}
	if tracker.Characters[1].ID != "new" {
		t.Errorf("Characters[1].ID = %q, want %q", tracker.Characters[1].ID, "new")
	}
}

func TestNextTurn_EmptyRoster(t *testing.T) {
	tracker := NewTracker()
	res := NextTurn(tracker)

	if res.ActiveChanged || res.RoundChanged {
		t.Error("NextTurn on empty roster should change nothing")
	}
	if res.Tracker.Round != 1 || res.Tracker.ActiveCharacterID != "" {
		t.Errorf("tracker = %+v, want unchanged", res.Tracker)
	}
}

func TestNextTurn_NoActiveDefaultsToTop(t *testing.T) {
	tracker := newTestTracker(10, 30, 20)
	res := NextTurn(tracker)

	if !res.ActiveChanged {
		t.Error("ActiveChanged = false, want true")
	}
	if res.RoundChanged {
		t.Error("RoundChanged = true, want false")
	}
	top := TurnOrder(tracker.Characters)[0]
	if res.Tracker.ActiveCharacterID != top.ID {
		t.Errorf("ActiveCharacterID = %q, want top of order %q", res.Tracker.ActiveCharacterID, top.ID)
	}
}

func TestNextTurn_AdvanceAndWrap(t *testing.T) {
	tracker := newTestTracker(30, 20, 10)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[1].ID // roll-20 character

	res := NextTurn(tracker)
	if res.Tracker.ActiveCharacterID != order[2].ID {
		t.Errorf("ActiveCharacterID = %q, want %q", res.Tracker.ActiveCharacterID, order[2].ID)
	}
	if res.RoundChanged || res.Tracker.Round != 1 {
		t.Errorf("round = %d (changed=%v), want 1 unchanged", res.Tracker.Round, res.RoundChanged)
	}

	res = NextTurn(res.Tracker)
	if res.Tracker.ActiveCharacterID != order[0].ID {
		t.Errorf("ActiveCharacterID = %q, want wrap to %q", res.Tracker.ActiveCharacterID, order[0].ID)
	}
	if !res.RoundChanged || res.Tracker.Round != 2 {
		t.Errorf("round = %d (changed=%v), want 2 changed", res.Tracker.Round, res.RoundChanged)
	}
}

func TestPreviousTurn_EmptyRoster(t *testing.T) {
	tracker := NewTracker()
	res := PreviousTurn(tracker)

	if res.ActiveChanged || res.RoundChanged {
		t.Error("PreviousTurn on empty roster should change nothing")
	}
}

func TestPreviousTurn_WrapDecrementsRound(t *testing.T) {
	tracker := newTestTracker(30, 20, 10)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[0].ID
	tracker.Round = 3

	res := PreviousTurn(tracker)
	if res.Tracker.ActiveCharacterID != order[2].ID {
		t.Errorf("ActiveCharacterID = %q, want %q", res.Tracker.ActiveCharacterID, order[2].ID)
	}
	if !res.RoundChanged || res.Tracker.Round != 2 {
		t.Errorf("round = %d (changed=%v), want 2 changed", res.Tracker.Round, res.RoundChanged)
	}
}

func TestPreviousTurn_RoundFlooredAtZero(t *testing.T) {
	tracker := newTestTracker(30, 20)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[0].ID
	tracker.Round = 0

	res := PreviousTurn(tracker)
	if res.Tracker.Round != 0 {
		t.Errorf("round = %d, want floored at 0", res.Tracker.Round)
	}
	if res.RoundChanged {
		t.Error("RoundChanged = true, want false when floored")
	}
}

func TestRemove_NotFound(t *testing.T) {
	tracker := newTestTracker(30)
	if _, err := Remove(tracker, "nope"); !errors.Is(err, ErrCharacterNotFound) {
		t.Errorf("Remove err = %v, want ErrCharacterNotFound", err)
	}
}

func TestRemove_ActivePromotesSameIndex(t *testing.T) {
	tracker := newTestTracker(30, 20, 10)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[1].ID

	res, err := Remove(tracker, order[1].ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !res.ActiveChanged {
		t.Error("ActiveChanged = false, want true")
	}
	// The roll-10 character now occupies the removed index.
	if res.Tracker.ActiveCharacterID != order[2].ID {
		t.Errorf("ActiveCharacterID = %q, want %q", res.Tracker.ActiveCharacterID, order[2].ID)
	}
}

func TestRemove_ActiveLastWrapsToFirst(t *testing.T) {
	tracker := newTestTracker(30, 20, 10)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[2].ID

	res, err := Remove(tracker, order[2].ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if res.Tracker.ActiveCharacterID != order[0].ID {
		t.Errorf("ActiveCharacterID = %q, want wrap to %q", res.Tracker.ActiveCharacterID, order[0].ID)
	}
}

func TestRemove_OnlyCharacterClearsActive(t *testing.T) {
	tracker := newTestTracker(30)
	tracker.ActiveCharacterID = tracker.Characters[0].ID

	res, err := Remove(tracker, tracker.Characters[0].ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if res.Tracker.ActiveCharacterID != "" {
		t.Errorf("ActiveCharacterID = %q, want empty", res.Tracker.ActiveCharacterID)
	}
	if len(res.Tracker.Characters) != 0 {
		t.Errorf("len(Characters) = %d, want 0", len(res.Tracker.Characters))
	}
}

func TestRemove_InactiveKeepsActive(t *testing.T) {
	tracker := newTestTracker(30, 20, 10)
	order := TurnOrder(tracker.Characters)
	tracker.ActiveCharacterID = order[0].ID

	res, err := Remove(tracker, order[2].ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if res.ActiveChanged {
		t.Error("ActiveChanged = true, want false")
	}
	if res.Tracker.ActiveCharacterID != order[0].ID {
		t.Errorf("ActiveCharacterID = %q, want %q", res.Tracker.ActiveCharacterID, order[0].ID)
	}
}

func TestRestart(t *testing.T) {
	tracker := newTestTracker(10, 30, 20)
	order := TurnOrder(tracker.Characters)
	tracker.Round = 7
	tracker.ActiveCharacterID = order[2].ID

	out := Restart(tracker)
	if out.Round != 1 {
		t.Errorf("Round = %d, want 1", out.Round)
	}
	if out.ActiveCharacterID != order[0].ID {
		t.Errorf("ActiveCharacterID = %q, want %q", out.ActiveCharacterID, order[0].ID)
	}
}

func TestRestart_EmptyRoster(t *testing.T) {
	tracker := NewTracker()
	tracker.Round = 4
	tracker.ActiveCharacterID = "stale"

	out := Restart(tracker)
	if out.Round != 1 || out.ActiveCharacterID != "" {
		t.Errorf("Restart = %+v, want round 1 and no active character", out)
	}
}
