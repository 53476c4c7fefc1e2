package levels

import "sort"

func (info Info) Count() int {
	return len(info.Levels)
}

// Level returns the level at index `n` (1-based).
func (info Info) Level(n int) (Level, bool) {
	if n < 1 || n > len(info.Levels) {
		return Level{}, false
	}
	return info.Levels[n-1], true
}

// LevelFromXP returns the highest level whose threshold is reached with `xp`.
func (info Info) LevelFromXP(xp int) Level {
	if len(info.Levels) == 0 {
		return Level{Level: 1}
	}
	// first level whose threshold is above xp
	i := sort.Search(len(info.Levels), func(i int) bool { return info.Levels[i].XPRequired > xp })
	if i == 0 {
		return info.Levels[0]
	}
	return info.Levels[i-1]
}

// Thresholds lists the XP required for each level, in order.
func (info Info) Thresholds() []int {
	thresholds := make([]int, 0, len(info.Levels))
	for _, l := range info.Levels {
		thresholds = append(thresholds, l.XPRequired)
	}
	return thresholds
}

func (info Info) Progress(xp int) Progress {
	lvl := info.LevelFromXP(xp)
	prog := Progress{
		Level:     lvl,
		XP:        xp,
		XPInLevel: xp - lvl.XPRequired,
	}

	next, ok := info.Level(lvl.Level + 1)
	if !ok {
		prog.IsLastLevel = true
		prog.Percentage = 100
		return prog
	}
	prog.XPForLevel = next.XPRequired - lvl.XPRequired
	prog.XPToNext = next.XPRequired - xp
	if prog.XPForLevel > 0 {
		prog.Percentage = prog.XPInLevel * 100 / prog.XPForLevel
	}
	return prog
}
