package levels

import "math"

// MaxRequiredPoints is the highest threshold `level` may have.
// It leaves room for every following level to require one more point, up to MaxPoints at MaxLevels.
func MaxRequiredPoints(level int) int {
	return MaxPoints - MaxLevels + level
}

// RequiredPoints computes the XP required to reach `level` with `algo`, capped at MaxRequiredPoints.
//
// relative: each level requires `coef` times the points of the previous one, starting at `base`.
// linear: each level requires `incr` more points than the previous one, starting at `base`.
func RequiredPoints(level int, algo Algo) int {
	if level <= 1 {
		return 0
	}
	n := float64(level - 1)

	var pts float64
	switch {
	case algo.Method == MethodLinear:
		pts = float64(algo.Base)*n + float64(algo.Incr)*n*(n-1)/2
	case level == 2:
		pts = float64(algo.Base)
	case algo.Coef <= 1:
		pts = float64(algo.Base) * n
	default:
		pts = math.Round(float64(algo.Base) * (1 - math.Pow(algo.Coef, n)) / (1 - algo.Coef))
	}

	if ceil := MaxRequiredPoints(level); math.IsNaN(pts) || pts >= float64(ceil) {
		return ceil
	}
	return int(pts)
}

// GenerateLevels builds `n` levels whose thresholds are computed with `algo`.
func GenerateLevels(n int, algo Algo) []Level {
	lvls := make([]Level, 0, n)
	for i := 1; i <= n; i++ {
		lvls = append(lvls, Level{Level: i, XPRequired: RequiredPoints(i, algo)})
	}
	return lvls
}

// MinimumPoints is the lowest threshold `level` may have given the previous levels.
func MinimumPoints(lvls []Level, level int) int {
	if level <= 1 {
		return 0
	}
	for _, l := range lvls {
		if l.Level == level-1 {
			return l.XPRequired + 1
		}
	}
	return level - 1
}

// BuiltInDefaults is the configuration used when no site defaults were saved.
func BuiltInDefaults() Info {
	algo := DefaultAlgo()
	return Info{
		CourseID:  DefaultsCourseID,
		Algo:      algo,
		Levels:    GenerateLevels(DefaultNbLevels, algo),
		IsDefault: true,
	}
}
