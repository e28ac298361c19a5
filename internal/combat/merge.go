package combat

// TrackerUpdate is a partial tracker update. Nil fields are left
// untouched; the characters slice is replaced wholesale when set.
type TrackerUpdate struct {
	Characters        *[]Character `json:"characters,omitempty"`
	ActiveCharacterID *string      `json:"activeCharacterId,omitempty"`
	Round             *int         `json:"round,omitempty"`
}

// MergeTracker applies a partial update to a tracker copy.
func MergeTracker(t Tracker, update TrackerUpdate) Tracker {
	out := t.Clone()
	if update.Characters != nil {
		out.Characters = make([]Character, len(*update.Characters))
		for i, c := range *update.Characters {
			out.Characters[i] = c.Clone()
		}
	}
	if update.ActiveCharacterID != nil {
		out.ActiveCharacterID = *update.ActiveCharacterID
	}
	if update.Round != nil {
		out.Round = *update.Round
	}
	return out
}

// CharacterUpdate is a partial character update. Nil fields are left
// untouched. The NPC block, when set, replaces the existing block
// wholesale; field-by-field NPC merging goes through MergeNPC instead.
type CharacterUpdate struct {
	ID          string       `json:"id"`
	DisplayName *string      `json:"displayName,omitempty"`
	AdminName   *string      `json:"adminName,omitempty"`
	NameVisible *bool        `json:"nameVisible,omitempty"`
	Active      *bool        `json:"active,omitempty"`
	Roll        *int         `json:"roll,omitempty"`
	Conditions  *[]Condition `json:"conditions,omitempty"`
	NPC         *NPCDetails  `json:"npc,omitempty"`
}

// MergeCharacter applies a partial update to a character copy.
func MergeCharacter(c Character, update CharacterUpdate) Character {
	out := c.Clone()
	if update.DisplayName != nil {
		out.DisplayName = *update.DisplayName
	}
	if update.AdminName != nil {
		out.AdminName = *update.AdminName
	}
	if update.NameVisible != nil {
		out.NameVisible = *update.NameVisible
	}
	if update.Active != nil {
		out.Active = *update.Active
	}
	if update.Roll != nil {
		out.Roll = *update.Roll
	}
	if update.Conditions != nil {
		out.Conditions = make([]Condition, len(*update.Conditions))
		copy(out.Conditions, *update.Conditions)
	}
	if update.NPC != nil {
		npc := *update.NPC
		out.NPC = &npc
	}
	return out
}

// NPCUpdate is a partial NPC stat block update. Nil fields are left
// untouched.
type NPCUpdate struct {
	MaxHealth  *int    `json:"maxHealth,omitempty"`
	Health     *int    `json:"health,omitempty"`
	ArmorClass *int    `json:"armorClass,omitempty"`
	URL        *string `json:"url,omitempty"`
}

// MergeNPC applies a partial update to an NPC block, starting from a
// zeroed block when the character has none yet.
func MergeNPC(npc *NPCDetails, update NPCUpdate) NPCDetails {
	var out NPCDetails
	if npc != nil {
		out = *npc
	}
	if update.MaxHealth != nil {
		out.MaxHealth = *update.MaxHealth
	}
	if update.Health != nil {
		out.Health = *update.Health
	}
	if update.ArmorClass != nil {
		out.ArmorClass = *update.ArmorClass
	}
	if update.URL != nil {
		out.URL = *update.URL
	}
	return out
}
