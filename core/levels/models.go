package levels

import (
	"math"
	"time"

	"github.com/trezcool/levelup/core"
)

// Point calculation methods
const (
	MethodLinear   = "linear"
	MethodRelative = "relative"
)

const (
	// DefaultsCourseID is the pseudo course holding the site defaults.
	DefaultsCourseID = 0

	MinLevels      = 2
	MaxLevels      = 99
	MaxNameLen     = 40
	MaxDescLen     = 280
	MaxPopupMsgLen = 280

	// MaxPoints is the highest threshold a level may have.
	MaxPoints = math.MaxInt32

	// built-in defaults, used when no site defaults were saved
	DefaultNbLevels = 10
	DefaultMethod   = MethodRelative
	DefaultBase     = 120
	DefaultCoef     = 1.3
	DefaultIncr     = 30
)

// Algo is the point calculation method used to generate levels thresholds.
type Algo struct {
	Method string  `json:"method" query:"method" validate:"required,oneof=linear relative"`
	Base   int     `json:"base" query:"base" validate:"min=1,max=1000000"`
	Coef   float64 `json:"coef" query:"coef" validate:"min=0,max=10"`
	Incr   int     `json:"incr" query:"incr" validate:"min=0,max=1000000"`
}

func DefaultAlgo() Algo {
	return Algo{Method: DefaultMethod, Base: DefaultBase, Coef: DefaultCoef, Incr: DefaultIncr}
}

type Level struct {
	Level        int    `json:"level" validate:"min=1"`
	XPRequired   int    `json:"xp_required" validate:"min=0"`
	Name         string `json:"name,omitempty" validate:"max=40"`
	Description  string `json:"description,omitempty" validate:"max=280"`
	BadgeAwardID int    `json:"badge_award_id,omitempty" validate:"min=0"`
	PopupMessage string `json:"popup_message,omitempty" validate:"max=280"`
}

func (l *Level) Clean() {
	l.Name = core.StripTags(l.Name)
	l.Description = core.StripTags(l.Description)
	l.PopupMessage = core.StripTags(l.PopupMessage)
}

// Info is the levels configuration of a course (or of the site defaults).
type Info struct {
	CourseID  int       `json:"course_id"`
	Algo      Algo      `json:"algo"`
	Levels    []Level   `json:"levels"`
	IsDefault bool      `json:"is_default"` // course falls back to the site (or built-in) defaults
	UpdatedAt time.Time `json:"updated_at"` // UTC; zero for built-in defaults
}

// Update is a wholesale replacement of a course's levels.
type Update struct {
	Algo   Algo    `json:"algo"`
	Levels []Level `json:"levels" validate:"required,min=2,max=99,dive"`
}

func (u *Update) Clean() {
	u.Algo.Method = core.CleanString(u.Algo.Method, true /* lower */)
	for i := range u.Levels {
		u.Levels[i].Clean()
	}
}

// Preview requests the thresholds generated by an Algo.
type Preview struct {
	Algo
	NbLevels int `json:"n" query:"n" validate:"min=2,max=99"`
}

// Progress describes where some XP sits within its level.
type Progress struct {
	Level       Level `json:"level"`
	XP          int   `json:"xp"`
	XPInLevel   int   `json:"xp_in_level"`
	XPForLevel  int   `json:"xp_for_level"` // 0 at the last level
	XPToNext    int   `json:"xp_to_next"`   // 0 at the last level
	Percentage  int   `json:"percentage"`   // 100 at the last level
	IsLastLevel bool  `json:"is_last_level"`
}
