package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
)

type stateRepository struct {
	db *DB
}

var _ xp.Repository = (*stateRepository)(nil) // interface compliance check

func NewStateRepository(db *DB) *stateRepository {
	return &stateRepository{db: db}
}

func (repo *stateRepository) state(courseID int, usr xp.User, row *stateRow) xp.State {
	st := xp.State{CourseID: courseID, User: usr, CachedLevel: 1}
	if row != nil {
		st.XP = row.xp
		st.CachedLevel = row.lvl
	}
	return st
}

func (repo *stateRepository) GetState(ctx context.Context, courseID, userID int) (xp.State, error) {
	usr, ok := repo.db.directory.getUser(userID)
	if !ok {
		return xp.State{}, xp.ErrUserNotFound
	}

	t := repo.db.states
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return repo.state(courseID, usr, t.rows[stateKey{courseID, userID}]), nil
}

// write runs fn on the user's row (created if missing) under the table lock.
func (repo *stateRepository) write(courseID, userID int, fn func(row *stateRow)) (xp.State, error) {
	usr, ok := repo.db.directory.getUser(userID)
	if !ok {
		return xp.State{}, xp.ErrUserNotFound
	}

	t := repo.db.states
	t.mutex.Lock()
	defer t.mutex.Unlock()

	key := stateKey{courseID, userID}
	row, ok := t.rows[key]
	if !ok {
		row = &stateRow{lvl: 1}
		t.rows[key] = row
	}
	fn(row)
	return repo.state(courseID, usr, row), nil
}

func (repo *stateRepository) IncreaseXP(ctx context.Context, info levels.Info, userID, amount int) (xp.State, error) {
	return repo.write(info.CourseID, userID, func(row *stateRow) {
		row.xp += amount
		row.lvl = info.LevelFromXP(row.xp).Level
	})
}

func (repo *stateRepository) SetXP(ctx context.Context, info levels.Info, userID, amount int) (xp.State, error) {
	return repo.write(info.CourseID, userID, func(row *stateRow) {
		row.xp = amount
		row.lvl = info.LevelFromXP(row.xp).Level
	})
}

func (repo *stateRepository) RecalculateLevels(ctx context.Context, info levels.Info) (int, error) {
	t := repo.db.states
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var n int
	for key, row := range t.rows {
		if key.courseID != info.CourseID {
			continue
		}
		if lvl := info.LevelFromXP(row.xp).Level; lvl != row.lvl {
			row.lvl = lvl
			n++
		}
	}
	return n, nil
}

func (repo *stateRepository) deleteWhere(match func(key stateKey) bool) int {
	t := repo.db.states
	t.mutex.Lock()
	defer t.mutex.Unlock()

	var n int
	for key := range t.rows {
		if match(key) {
			delete(t.rows, key)
			n++
		}
	}
	return n
}

func (repo *stateRepository) DeleteCourseStates(ctx context.Context, courseID int) (int, error) {
	return repo.deleteWhere(func(key stateKey) bool { return key.courseID == courseID }), nil
}

func (repo *stateRepository) DeleteGroupStates(ctx context.Context, courseID, groupID int) (int, error) {
	return repo.deleteWhere(func(key stateKey) bool {
		return key.courseID == courseID && repo.db.directory.isMember(groupID, key.userID)
	}), nil
}

func (repo *stateRepository) matches(st xp.State, query xp.RankingQuery) bool {
	if query.GroupID != 0 && !repo.db.directory.isMember(query.GroupID, st.User.ID) {
		return false
	}
	if query.Search != "" {
		search := strings.ToLower(query.Search)
		for _, val := range []string{st.User.FirstName, st.User.LastName, st.User.Email} {
			if strings.Contains(strings.ToLower(val), search) {
				return true
			}
		}
		return false
	}
	return true
}

func (repo *stateRepository) QueryStates(ctx context.Context, courseID int, query xp.RankingQuery) ([]xp.State, error) {
	t := repo.db.states
	t.mutex.RLock()
	states := make([]xp.State, 0)
	for key, row := range t.rows {
		if key.courseID != courseID {
			continue
		}
		usr, ok := repo.db.directory.getUser(key.userID)
		if !ok {
			continue
		}
		if st := repo.state(courseID, usr, row); repo.matches(st, query) {
			states = append(states, st)
		}
	}
	t.mutex.RUnlock()

	orderings := query.Orderings
	if len(orderings) == 0 {
		orderings = defaultRankingOrderings
	}
	sort.Slice(states, func(i, j int) bool { return lessState(states[i], states[j], orderings) })

	if query.Offset >= len(states) {
		return []xp.State{}, nil
	}
	states = states[query.Offset:]
	if query.Limit > 0 && query.Limit < len(states) {
		states = states[:query.Limit]
	}
	return states, nil
}

func (repo *stateRepository) CourseIDs(ctx context.Context) ([]int, error) {
	t := repo.db.states
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	seen := make(map[int]bool)
	ids := make([]int, 0)
	for key := range t.rows {
		if !seen[key.courseID] {
			seen[key.courseID] = true
			ids = append(ids, key.courseID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
