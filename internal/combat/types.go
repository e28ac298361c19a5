package combat

import "errors"

// ErrCharacterNotFound indicates a character id that is not in the
// tracker's roster.
var ErrCharacterNotFound = errors.New("character does not exist in combat tracker")

// Condition is a status effect applied to a character.
type Condition string

const (
	ConditionBlinded       Condition = "blinded"
	ConditionCharmed       Condition = "charmed"
	ConditionDeafened      Condition = "deafened"
	ConditionFrightened    Condition = "frightened"
	ConditionGrappled      Condition = "grappled"
	ConditionIncapacitated Condition = "incapacitated"
	ConditionInvisible     Condition = "invisible"
	ConditionParalyzed     Condition = "paralyzed"
	ConditionPetrified     Condition = "petrified"
	ConditionPoisoned      Condition = "poisoned"
	ConditionProne         Condition = "prone"
	ConditionRestrained    Condition = "restrained"
	ConditionStunned       Condition = "stunned"
	ConditionUnconscious   Condition = "unconscious"
)

// NPCDetails is the optional stat block on a character.
type NPCDetails struct {
	MaxHealth  int    `json:"maxHealth"`
	Health     int    `json:"health"`
	ArmorClass int    `json:"armorClass"`
	URL        string `json:"url,omitempty"`
}

// Character is one entry in the tracker roster.
//
// ID is assigned by the session store on add, never by the client.
type Character struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	AdminName   string      `json:"adminName"`
	NameVisible bool        `json:"nameVisible"`
	Active      bool        `json:"active"`
	Roll        int         `json:"roll"`
	Conditions  []Condition `json:"conditions"`
	NPC         *NPCDetails `json:"npc"`
}

// Tracker is the turn-order/round sub-state of a session.
//
// The roster is kept sorted by Roll descending; an empty
// ActiveCharacterID means no character's turn is active.
type Tracker struct {
	Characters        []Character `json:"characters"`
	ActiveCharacterID string      `json:"activeCharacterId"`
	Round             int         `json:"round"`
}

// NewTracker returns the empty default tracker state.
func NewTracker() Tracker {
	return Tracker{
		Characters:        []Character{},
		ActiveCharacterID: "",
		Round:             1,
	}
}

// Clone returns a deep copy of the tracker.
func (t Tracker) Clone() Tracker {
	out := t
	out.Characters = make([]Character, len(t.Characters))
	for i, c := range t.Characters {
		out.Characters[i] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of the character.
func (c Character) Clone() Character {
	out := c
	if c.Conditions != nil {
		out.Conditions = make([]Condition, len(c.Conditions))
		copy(out.Conditions, c.Conditions)
	}
	if c.NPC != nil {
		npc := *c.NPC
		out.NPC = &npc
	}
	return out
}
