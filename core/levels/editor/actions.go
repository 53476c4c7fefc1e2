package editor

import (
	"sort"

	"github.com/trezcool/levelup/core/levels"
)

// Action is one of the actions below.
type Action interface {
	reduce(s State) State
}

type (
	// BulkEdit replaces the algo and recomputes the thresholds of every level.
	BulkEdit struct {
		Algo levels.Algo
	}

	// LevelNameChange sets the name of a level, an empty name clears it.
	LevelNameChange struct {
		Level int
		Name  string
	}

	// LevelDescChange sets the description of a level, an empty description clears it.
	LevelDescChange struct {
		Level int
		Desc  string
	}

	// LevelPopupChange sets the message shown when reaching a level, an empty message clears it.
	LevelPopupChange struct {
		Level   int
		Message string
	}

	// LevelBadgeChange sets the badge awarded when reaching a level, 0 clears it.
	LevelBadgeChange struct {
		Level        int
		BadgeAwardID int
	}

	// LevelPointsChange sets the threshold of a level; the following levels are pushed up when needed.
	LevelPointsChange struct {
		Level  int
		Points int
	}

	// LevelLengthChange sets the number of points needed to go through a level.
	LevelLengthChange struct {
		Level  int
		Length int
	}

	// NbLevelsChange sets the number of visible levels.
	NbLevelsChange struct {
		N                int
		DefaultBadgeURLs map[int]string
	}

	MarkSaved struct{}

	ToggleExpanded struct {
		Level int
	}

	// ToggleExpandAll collapses every level when all are expanded, expands them all otherwise.
	ToggleExpandAll struct{}
)

// Reduce applies an action to the state and returns the resulting state.
func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.reduce(s)
}

func (a BulkEdit) reduce(s State) State {
	lvls := s.copyLevels()
	for i := range lvls {
		lvls[i].XPRequired = levels.RequiredPoints(lvls[i].Level.Level, a.Algo)
	}
	s.Algo = a.Algo
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelNameChange) reduce(s State) State {
	lvl, ok := s.Level(a.Level)
	if !ok || lvl.Name == a.Name {
		return s
	}
	lvls := s.copyLevels()
	lvls[a.Level-1].Name = a.Name
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelDescChange) reduce(s State) State {
	lvl, ok := s.Level(a.Level)
	if !ok || lvl.Description == a.Desc {
		return s
	}
	lvls := s.copyLevels()
	lvls[a.Level-1].Description = a.Desc
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelPopupChange) reduce(s State) State {
	lvl, ok := s.Level(a.Level)
	if !ok || a.Level == 1 || lvl.PopupMessage == a.Message {
		return s
	}
	lvls := s.copyLevels()
	lvls[a.Level-1].PopupMessage = a.Message
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelBadgeChange) reduce(s State) State {
	lvl, ok := s.Level(a.Level)
	if !ok || a.Level == 1 || a.BadgeAwardID < 0 || lvl.BadgeAwardID == a.BadgeAwardID {
		return s
	}
	lvls := s.copyLevels()
	lvls[a.Level-1].BadgeAwardID = a.BadgeAwardID
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelPointsChange) reduce(s State) State {
	if a.Level <= 1 || a.Points <= 2 || a.Points > levels.MaxRequiredPoints(a.Level) {
		return s
	}
	lvl, ok := s.Level(a.Level)
	if !ok || lvl.XPRequired == a.Points {
		return s
	}
	if prev, _ := s.Level(a.Level - 1); a.Points <= prev.XPRequired {
		return s
	}

	lvls := s.copyLevels()
	lvls[a.Level-1].XPRequired = a.Points
	pushLevelsUp(lvls)
	s.Levels = lvls
	return s.markPendingSave()
}

func (a LevelLengthChange) reduce(s State) State {
	lvl, ok := s.Level(a.Level)
	if !ok || a.Length < 1 || a.Length > levels.MaxPoints {
		return s
	}
	return LevelPointsChange{Level: a.Level + 1, Points: lvl.XPRequired + a.Length}.reduce(s)
}

func (a NbLevelsChange) reduce(s State) State {
	if a.N < levels.MinLevels || a.N > levels.MaxLevels {
		return s
	}

	lvls := s.copyLevels()
	for l := len(lvls) + 1; l <= a.N; l++ {
		lvls = append(lvls, Level{
			Level:    levels.Level{Level: l, XPRequired: levels.RequiredPoints(l, s.Algo)},
			BadgeURL: a.DefaultBadgeURLs[l],
		})
	}
	pushLevelsUp(lvls)
	s.NbLevels = a.N
	s.Levels = lvls
	return s.markPendingSave()
}

func (a MarkSaved) reduce(s State) State {
	s.PendingSave = false
	return s
}

func (a ToggleExpanded) reduce(s State) State {
	if _, ok := s.Level(a.Level); !ok {
		return s
	}
	expanded := make([]int, 0, len(s.Expanded)+1)
	if s.IsExpanded(a.Level) {
		for _, l := range s.Expanded {
			if l != a.Level {
				expanded = append(expanded, l)
			}
		}
	} else {
		expanded = append(expanded, s.Expanded...)
		expanded = append(expanded, a.Level)
		sort.Ints(expanded)
	}
	s.Expanded = expanded
	return s
}

func (a ToggleExpandAll) reduce(s State) State {
	allExpanded := true
	for _, l := range s.VisibleLevels() {
		if !s.IsExpanded(l.Level.Level) {
			allExpanded = false
			break
		}
	}
	if allExpanded {
		s.Expanded = nil
		return s
	}
	expanded := make([]int, 0, s.NbLevels)
	for _, l := range s.VisibleLevels() {
		expanded = append(expanded, l.Level.Level)
	}
	s.Expanded = expanded
	return s
}
