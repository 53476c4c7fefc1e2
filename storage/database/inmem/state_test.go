package inmemdb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
)

func courseInfo(courseID int) levels.Info {
	info := levels.BuiltInDefaults() // 0, 120, 276, 479, 742, ...
	info.CourseID = courseID
	return info
}

func TestStateRepository_IncreaseXP_concurrent(t *testing.T) {
	db := Open()
	db.AddUser(xp.User{ID: 1, FirstName: "Ada"})
	repo := NewStateRepository(db)
	info := courseInfo(3)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncreaseXP(ctx, info, 1, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := repo.GetState(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 500, st.XP)
	assert.Equal(t, 4, st.CachedLevel)
	assert.Equal(t, "Ada", st.User.FirstName)
}

func TestStateRepository_unknownUser(t *testing.T) {
	repo := NewStateRepository(Open())
	ctx := context.Background()

	_, err := repo.GetState(ctx, 1, 42)
	assert.Equal(t, xp.ErrUserNotFound, err)
	_, err = repo.IncreaseXP(ctx, courseInfo(1), 42, 10)
	assert.Equal(t, xp.ErrUserNotFound, err)
	_, err = repo.SetXP(ctx, courseInfo(1), 42, 10)
	assert.Equal(t, xp.ErrUserNotFound, err)
}

func TestStateRepository_RecalculateLevels(t *testing.T) {
	db := Open()
	repo := NewStateRepository(db)
	ctx := context.Background()
	for id := 1; id <= 3; id++ {
		db.AddUser(xp.User{ID: id})
	}

	info := courseInfo(1)
	for id, amount := range map[int]int{1: 100, 2: 300, 3: 800} {
		_, err := repo.SetXP(ctx, info, id, amount)
		require.NoError(t, err)
	}
	_, err := repo.SetXP(ctx, courseInfo(2), 1, 800)
	require.NoError(t, err)

	// same thresholds: nothing to do
	n, err := repo.RecalculateLevels(ctx, info)
	require.NoError(t, err)
	assert.Zero(t, n)

	linear := info
	linear.Levels = levels.GenerateLevels(10, levels.Algo{Method: levels.MethodLinear, Base: 100})
	n, err = repo.RecalculateLevels(ctx, linear)
	require.NoError(t, err)
	assert.Equal(t, 3, n) // 100 -> 2, 300 -> 4, 800 -> 9

	st, _ := repo.GetState(ctx, 1, 3)
	assert.Equal(t, 9, st.CachedLevel)
	st, _ = repo.GetState(ctx, 2, 1)
	assert.Equal(t, 5, st.CachedLevel, "other courses are left untouched")
}

func TestStateRepository_QueryStates(t *testing.T) {
	db := Open()
	repo := NewStateRepository(db)
	ctx := context.Background()
	info := courseInfo(1)

	users := []xp.User{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@test.cd"},
		{ID: 2, FirstName: "Alan", LastName: "Turing", Email: "alan@test.cd"},
		{ID: 3, FirstName: "Grace", LastName: "Hopper", Email: "grace@test.cd"},
		{ID: 4, FirstName: "Linus", LastName: "Torvalds", Email: "linus@test.cd"},
	}
	for i, usr := range users {
		db.AddUser(usr)
		_, err := repo.SetXP(ctx, info, usr.ID, (i+1)*100)
		require.NoError(t, err)
	}
	_, err := repo.SetXP(ctx, info, 4, 300) // ties with user 3
	require.NoError(t, err)
	db.AddGroupMembers(7, 1, 3)

	ids := func(states []xp.State) []int {
		res := make([]int, 0, len(states))
		for _, st := range states {
			res = append(res, st.User.ID)
		}
		return res
	}

	tests := []struct {
		name  string
		query xp.RankingQuery
		want  []int
	}{
		{name: "ranking", query: xp.RankingQuery{}, want: []int{3, 4, 2, 1}},
		{name: "limit", query: xp.RankingQuery{Limit: 2}, want: []int{3, 4}},
		{name: "offset", query: xp.RankingQuery{Offset: 3}, want: []int{1}},
		{name: "offset out of range", query: xp.RankingQuery{Offset: 9}, want: []int{}},
		{name: "group", query: xp.RankingQuery{GroupID: 7}, want: []int{3, 1}},
		{name: "search", query: xp.RankingQuery{Search: "TUR"}, want: []int{2}},
		{
			name:  "ordering",
			query: xp.RankingQuery{Orderings: []core.DBOrdering{{Field: "user_id"}}},
			want:  []int{4, 3, 2, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states, err := repo.QueryStates(ctx, 1, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(states))
		})
	}
}

func TestStateRepository_Delete(t *testing.T) {
	db := Open()
	repo := NewStateRepository(db)
	ctx := context.Background()
	for id := 1; id <= 3; id++ {
		db.AddUser(xp.User{ID: id})
		for _, courseID := range []int{1, 2} {
			_, err := repo.IncreaseXP(ctx, courseInfo(courseID), id, 10)
			require.NoError(t, err)
		}
	}
	db.AddGroupMembers(5, 1, 2)

	n, err := repo.DeleteGroupStates(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.DeleteCourseStates(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ids, err := repo.CourseIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	st, err := repo.GetState(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, st.XP)
	st, err = repo.GetState(ctx, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, st.XP)
}
