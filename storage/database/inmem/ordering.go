package inmemdb

import (
	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/xp"
)

var defaultRankingOrderings = []core.DBOrdering{
	{Field: "lvl"},
	{Field: "xp"},
	{Field: "user_id", Ascending: true},
}

// lessState compares states on the (column) fields of the orderings, the user ID breaking ties.
func lessState(a, b xp.State, orderings []core.DBOrdering) bool {
	for _, ord := range orderings {
		var va, vb int
		switch ord.Field {
		case "xp":
			va, vb = a.XP, b.XP
		case "lvl":
			va, vb = a.CachedLevel, b.CachedLevel
		case "user_id":
			va, vb = a.User.ID, b.User.ID
		default:
			continue
		}
		if va == vb {
			continue
		}
		if ord.Ascending {
			return va < vb
		}
		return va > vb
	}
	return a.User.ID < b.User.ID
}
