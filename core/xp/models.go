package xp

import (
	"strings"
	"time"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
)

// User is a user of the host platform.
type User struct {
	ID         int    `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture_url,omitempty"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// State is the experience of a user in a course.
type State struct {
	CourseID    int              `json:"course_id"`
	User        User             `json:"user"`
	XP          int              `json:"xp"`
	Level       int              `json:"level"` // derived from XP
	CachedLevel int              `json:"-"`     // stored for sorting; may lag until recalculated
	Progress    *levels.Progress `json:"progress,omitempty"`
}

// RankingQuery filters and pages the states of a course.
type RankingQuery struct {
	GroupID   int    `query:"group"`
	Search    string `query:"search"` // first name, last name or email
	Orderings []core.DBOrdering
	Limit     int `query:"limit"`
	Offset    int `query:"offset"`
}

const (
	DefaultRankingLimit = 50
	MaxRankingLimit     = 500
)

var RankingOrderings = map[string]string{
	"xp":      "xp",
	"level":   "lvl",
	"user_id": "user_id",
}

func (q *RankingQuery) Clean() {
	q.Search = core.CleanString(q.Search)
	q.Orderings = core.FilterOrderings(q.Orderings, RankingOrderings)
	if q.Limit <= 0 {
		q.Limit = DefaultRankingLimit
	} else if q.Limit > MaxRankingLimit {
		q.Limit = MaxRankingLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// LevelUpEvent is emitted when XP awarded to a user made them reach a higher level.
type LevelUpEvent struct {
	ID           string    `json:"id"`
	CourseID     int       `json:"course_id"`
	User         User      `json:"user"`
	FromLevel    int       `json:"from_level"`
	ToLevel      int       `json:"to_level"`
	XP           int       `json:"xp"`
	LevelName    string    `json:"level_name,omitempty"`
	PopupMessage string    `json:"popup_message,omitempty"`
	BadgeAwardID int       `json:"badge_award_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"` // UTC
}
