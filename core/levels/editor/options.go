package editor

import "strings"

// Level options
const (
	OptionName         = "name"
	OptionDescription  = "description"
	OptionPopupMessage = "popupmessage"
	OptionBadgeAward   = "badgeaward"
)

type OptionState struct {
	ID        string `json:"id"`
	Set       bool   `json:"set"`
	Available bool   `json:"available"`
}

// OptionStates reports which options of a level are set.
// The first level cannot have a popup message nor a badge, and the site defaults cannot award badges.
func OptionStates(lvl Level, defaults bool) []OptionState {
	first := lvl.Level.Level <= 1
	return []OptionState{
		{ID: OptionName, Set: strings.TrimSpace(lvl.Name) != "", Available: true},
		{ID: OptionDescription, Set: strings.TrimSpace(lvl.Description) != "", Available: true},
		{ID: OptionPopupMessage, Set: strings.TrimSpace(lvl.PopupMessage) != "", Available: !first},
		{ID: OptionBadgeAward, Set: lvl.BadgeAwardID != 0, Available: !(first || defaults)},
	}
}
