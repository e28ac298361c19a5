package combat

import "sort"

// TurnResult is the outcome of a turn transition.
type TurnResult struct {
	Tracker       Tracker
	ActiveChanged bool
	RoundChanged  bool
}

// SortByRoll sorts the roster in place by initiative roll, highest
// first. The sort is stable so ties keep their insertion order.
func SortByRoll(characters []Character) {
	sort.SliceStable(characters, func(i, j int) bool {
		return characters[i].Roll > characters[j].Roll
	})
}

// TurnOrder returns the roster sorted by roll descending without
// mutating the input.
func TurnOrder(characters []Character) []Character {
	out := make([]Character, len(characters))
	copy(out, characters)
	SortByRoll(out)
	return out
}

// Add inserts a character and re-sorts the roster.
func Add(t Tracker, c Character) Tracker {
	out := t.Clone()
	out.Characters = append(out.Characters, c)
	SortByRoll(out.Characters)
	return out
}

// Remove deletes a character by id and re-sorts the roster. If the
// removed character was active, the character now occupying the removed
// index becomes active; removing the last entry wraps activation to the
// top of the roster, or clears it when the roster is now empty.
func Remove(t Tracker, characterID string) (TurnResult, error) {
	index := indexOf(t.Characters, characterID)
	if index < 0 {
		return TurnResult{}, ErrCharacterNotFound
	}

	out := t.Clone()
	out.Characters = append(out.Characters[:index], out.Characters[index+1:]...)
	SortByRoll(out.Characters)

	activeChanged := false
	if t.ActiveCharacterID == characterID {
		activeChanged = true
		switch {
		case len(out.Characters) == 0:
			out.ActiveCharacterID = ""
		case index >= len(out.Characters):
			out.ActiveCharacterID = out.Characters[0].ID
		default:
			out.ActiveCharacterID = out.Characters[index].ID
		}
	}

	return TurnResult{Tracker: out, ActiveChanged: activeChanged}, nil
}

// NextTurn advances the active character by one in roll order. With no
// active character set, activation starts at the top of the order.
// Wrapping past the end increments the round. An empty roster is a
// no-op.
func NextTurn(t Tracker) TurnResult {
	if len(t.Characters) == 0 {
		return TurnResult{Tracker: t.Clone()}
	}

	order := TurnOrder(t.Characters)
	out := t.Clone()

	if t.ActiveCharacterID == "" {
		out.ActiveCharacterID = order[0].ID
		return TurnResult{Tracker: out, ActiveChanged: true}
	}

	index := indexOf(order, t.ActiveCharacterID) + 1
	roundChanged := false
	if index >= len(order) {
		index = 0
		out.Round++
		roundChanged = true
	}
	out.ActiveCharacterID = order[index].ID

	return TurnResult{Tracker: out, ActiveChanged: true, RoundChanged: roundChanged}
}

// PreviousTurn retreats the active character by one in roll order.
// Wrapping past the start decrements the round, floored at 0. An empty
// roster is a no-op.
func PreviousTurn(t Tracker) TurnResult {
	if len(t.Characters) == 0 {
		return TurnResult{Tracker: t.Clone()}
	}

	order := TurnOrder(t.Characters)
	out := t.Clone()

	if t.ActiveCharacterID == "" {
		out.ActiveCharacterID = order[0].ID
		return TurnResult{Tracker: out, ActiveChanged: true}
	}

	index := indexOf(order, t.ActiveCharacterID) - 1
	roundChanged := false
	if index < 0 {
		index = len(order) - 1
		if out.Round > 0 {
			out.Round--
			roundChanged = out.Round != t.Round
		}
	}
	out.ActiveCharacterID = order[index].ID

	return TurnResult{Tracker: out, ActiveChanged: true, RoundChanged: roundChanged}
}

// Restart resets the round to 1 and activates the top of the roll
// order, or clears activation when the roster is empty.
func Restart(t Tracker) Tracker {
	out := t.Clone()
	out.Round = 1
	if len(out.Characters) == 0 {
		out.ActiveCharacterID = ""
	} else {
		out.ActiveCharacterID = TurnOrder(out.Characters)[0].ID
	}
	return out
}

func indexOf(characters []Character, id string) int {
	for i, c := range characters {
		if c.ID == id {
			return i
		}
	}
	return -1
}
