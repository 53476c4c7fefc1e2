// Package editor is the state machine behind the levels editor.
// A State is never mutated: Reduce returns a new State for each Action.
package editor

import (
	"sort"

	"github.com/trezcool/levelup/core/levels"
)

type (
	Level struct {
		levels.Level
		BadgeURL string `json:"badge_url,omitempty"` // display only
	}

	State struct {
		Algo        levels.Algo `json:"algo"`
		Levels      []Level     `json:"levels"`    // known levels, may hold more than NbLevels
		NbLevels    int         `json:"nb_levels"` // number of visible levels
		PendingSave bool        `json:"pending_save"`
		Expanded    []int       `json:"expanded"` // sorted levels whose details are shown
	}
)

// NewState returns the initial editor state for a levels configuration.
func NewState(info levels.Info) State {
	algo := info.Algo
	if algo.Method == "" {
		algo.Method = levels.MethodRelative
	}
	if algo.Incr == 0 {
		algo.Incr = levels.DefaultIncr
	}

	lvls := make([]Level, 0, len(info.Levels))
	for _, l := range info.Levels {
		lvls = append(lvls, Level{Level: l})
	}
	return State{
		Algo:     algo,
		Levels:   lvls,
		NbLevels: len(lvls),
	}
}

// VisibleLevels are the levels that are displayed and saved.
func (s State) VisibleLevels() []Level {
	n := s.NbLevels
	if n > len(s.Levels) {
		n = len(s.Levels)
	}
	return s.Levels[:n:n]
}

func (s State) Level(n int) (Level, bool) {
	if n < 1 || n > s.NbLevels || n > len(s.Levels) {
		return Level{}, false
	}
	return s.Levels[n-1], true
}

func (s State) IsExpanded(level int) bool {
	i := sort.SearchInts(s.Expanded, level)
	return i < len(s.Expanded) && s.Expanded[i] == level
}

// Update builds the payload saving the visible levels.
func (s State) Update() levels.Update {
	visible := s.VisibleLevels()
	lvls := make([]levels.Level, 0, len(visible))
	for _, l := range visible {
		lvl := l.Level
		lvl.Clean()
		lvls = append(lvls, lvl)
	}
	return levels.Update{Algo: s.Algo, Levels: lvls}
}

func (s State) copyLevels() []Level {
	lvls := make([]Level, len(s.Levels))
	copy(lvls, s.Levels)
	return lvls
}

func (s State) markPendingSave() State {
	s.PendingSave = true
	return s
}

// pushLevelsUp keeps the thresholds strictly increasing, raising levels below their minimum.
func pushLevelsUp(lvls []Level) {
	for i := 1; i < len(lvls); i++ {
		if minXP := lvls[i-1].XPRequired + 1; lvls[i].XPRequired < minXP {
			lvls[i].XPRequired = minXP
		}
	}
}
