package cardvac

import "fmt"

// An ActionType is a top-level discrete choice available to
// the agent on its turn.
type ActionType int

// Action types, in the order the action-type head scores
// them.
const (
	PlayCard ActionType = iota
	UseSkill
	ChangeCharacter
	ElementalHarmony
	EndRound
)

// NumActionTypes is the size of the action-type enumeration.
const NumActionTypes = 5

// Encoded-obs region names.
const (
	CardObsKey      = "card_obs"
	SkillObsKey     = "skill_obs"
	CharacterObsKey = "character_obs"
)

var actionTypeNames = map[ActionType]string{
	PlayCard:         "play_card",
	UseSkill:         "use_skill",
	ChangeCharacter:  "change_character",
	ElementalHarmony: "elemental_harmony",
	EndRound:         "end_round",
}

// String returns the action type's snake_case name.
func (a ActionType) String() string {
	if name, ok := actionTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ActionType(%d)", int(a))
}

// actionObsKeys maps each action type with arguments to the
// encoded-obs region its argument head attends over.
var actionObsKeys = map[ActionType]string{
	PlayCard:        CardObsKey,
	UseSkill:        SkillObsKey,
	ChangeCharacter: CharacterObsKey,
}

// noArgActions never receive an argument head.
var noArgActions = map[ActionType]bool{
	ElementalHarmony: true,
	EndRound:         true,
}

// ObsKeyForAction returns the encoded-obs key for an action
// type's argument group, or false if the type has none.
func ObsKeyForAction(a ActionType) (string, bool) {
	key, ok := actionObsKeys[a]
	return key, ok
}

// An ActionSpace describes the discrete action surface of
// the game.
type ActionSpace struct {
	// NumTypes is the size of the action-type enumeration.
	// A value of 0 means NumActionTypes.
	NumTypes int

	// ArgActions lists the action types that offer argument
	// choices. ElementalHarmony and EndRound take no
	// arguments and are skipped even when listed.
	ArgActions []ActionType
}

func (a *ActionSpace) numTypes() int {
	if a.NumTypes == 0 {
		return NumActionTypes
	}
	return a.NumTypes
}
