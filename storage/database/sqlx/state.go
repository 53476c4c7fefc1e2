package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
)

// pq error code of foreign key violations
const fkViolation = "23503"

type stateRow struct {
	CourseID   int    `db:"course_id"`
	UserID     int    `db:"user_id"`
	XP         int    `db:"xp"`
	Lvl        int    `db:"lvl"`
	FirstName  string `db:"firstname"`
	LastName   string `db:"lastname"`
	Email      string `db:"email"`
	PictureURL string `db:"picture_url"`
}

func (r stateRow) state() xp.State {
	return xp.State{
		CourseID:    r.CourseID,
		XP:          r.XP,
		CachedLevel: r.Lvl,
		User: xp.User{
			ID:         r.UserID,
			FirstName:  r.FirstName,
			LastName:   r.LastName,
			Email:      r.Email,
			PictureURL: r.PictureURL,
		},
	}
}

// users LEFT JOIN user_xp, so that users without xp yet are found.
const selectState = `
SELECT $1::int AS course_id, u.id AS user_id, COALESCE(x.xp, 0) AS xp, COALESCE(x.lvl, 1) AS lvl,
       u.firstname, u.lastname, u.email, u.picture_url
FROM "users" u
LEFT JOIN "user_xp" x ON x.user_id = u.id AND x.course_id = $1
WHERE u.id = $2`

type stateRepository struct {
	db *sqlx.DB
}

var _ xp.Repository = (*stateRepository)(nil) // interface compliance check

func NewStateRepository(db *sqlx.DB) *stateRepository {
	return &stateRepository{db: db}
}

// trapErr maps psql "no rows" & foreign key errors to xp.ErrUserNotFound
func (repo *stateRepository) trapErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return xp.ErrUserNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == fkViolation {
		return xp.ErrUserNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *stateRepository) getState(ctx context.Context, q sqlx.QueryerContext, courseID, userID int) (xp.State, error) {
	var row stateRow
	if err := sqlx.GetContext(ctx, q, &row, selectState, courseID, userID); err != nil {
		return xp.State{}, repo.trapErr(err, "selecting state")
	}
	return row.state(), nil
}

func (repo *stateRepository) GetState(ctx context.Context, courseID, userID int) (xp.State, error) {
	return repo.getState(ctx, repo.db, courseID, userID)
}

// inTx runs fn within a transaction, committing when fn succeeds and rolling back otherwise.
func (repo *stateRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	return core.FinishTx(tx, fn(tx))
}

// updateLevel refreshes the cached level of the row. The row is locked by the preceding upsert.
func (repo *stateRepository) updateLevel(ctx context.Context, tx *sqlx.Tx, info levels.Info, userID, newXP int) error {
	lvl := info.LevelFromXP(newXP).Level
	q := `UPDATE "user_xp" SET lvl = $3 WHERE course_id = $1 AND user_id = $2 AND lvl <> $3`
	_, err := tx.ExecContext(ctx, q, info.CourseID, userID, lvl)
	return errors.Wrap(err, "updating level")
}

func (repo *stateRepository) write(ctx context.Context, info levels.Info, userID, amount int, upsert string) (xp.State, error) {
	var st xp.State
	err := repo.inTx(ctx, func(tx *sqlx.Tx) error {
		var newXP int
		if err := tx.QueryRowxContext(ctx, upsert, info.CourseID, userID, amount).Scan(&newXP); err != nil {
			return repo.trapErr(err, "upserting xp")
		}
		if err := repo.updateLevel(ctx, tx, info, userID, newXP); err != nil {
			return err
		}
		var err error
		st, err = repo.getState(ctx, tx, info.CourseID, userID)
		return err
	})
	return st, err
}

func (repo *stateRepository) IncreaseXP(ctx context.Context, info levels.Info, userID, amount int) (xp.State, error) {
	q := `
INSERT INTO "user_xp" (course_id, user_id, xp) VALUES ($1, $2, $3)
ON CONFLICT (course_id, user_id) DO UPDATE SET xp = "user_xp".xp + EXCLUDED.xp
RETURNING xp`
	return repo.write(ctx, info, userID, amount, q)
}

func (repo *stateRepository) SetXP(ctx context.Context, info levels.Info, userID, amount int) (xp.State, error) {
	q := `
INSERT INTO "user_xp" (course_id, user_id, xp) VALUES ($1, $2, $3)
ON CONFLICT (course_id, user_id) DO UPDATE SET xp = EXCLUDED.xp
RETURNING xp`
	return repo.write(ctx, info, userID, amount, q)
}

func (repo *stateRepository) RecalculateLevels(ctx context.Context, info levels.Info) (int, error) {
	// level = number of thresholds reached
	q := `
WITH computed AS (
    SELECT x.user_id, GREATEST(1, (SELECT COUNT(*) FROM UNNEST($2::bigint[]) t WHERE t <= x.xp)) AS lvl
    FROM "user_xp" x
    WHERE x.course_id = $1
)
UPDATE "user_xp" x SET lvl = c.lvl
FROM computed c
WHERE x.course_id = $1 AND x.user_id = c.user_id AND x.lvl <> c.lvl`

	thresholds := make([]int64, 0, info.Count())
	for _, t := range info.Thresholds() {
		thresholds = append(thresholds, int64(t))
	}
	res, err := repo.db.ExecContext(ctx, q, info.CourseID, pq.Array(thresholds))
	if err != nil {
		return 0, errors.Wrap(err, "recalculating levels")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting recalculated levels")
}

func (repo *stateRepository) exec(ctx context.Context, q string, args ...interface{}) (int, error) {
	res, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *stateRepository) DeleteCourseStates(ctx context.Context, courseID int) (int, error) {
	n, err := repo.exec(ctx, `DELETE FROM "user_xp" WHERE course_id = $1`, courseID)
	return n, errors.Wrap(err, "deleting course states")
}

func (repo *stateRepository) DeleteGroupStates(ctx context.Context, courseID, groupID int) (int, error) {
	q := `
DELETE FROM "user_xp"
WHERE course_id = $1 AND user_id IN (SELECT user_id FROM "group_members" WHERE group_id = $2)`
	n, err := repo.exec(ctx, q, courseID, groupID)
	return n, errors.Wrap(err, "deleting group states")
}

var defaultRankingOrderings = []core.DBOrdering{{Field: "lvl"}, {Field: "xp"}, {Field: "user_id", Ascending: true}}

func (repo *stateRepository) QueryStates(ctx context.Context, courseID int, query xp.RankingQuery) ([]xp.State, error) {
	where := []string{"x.course_id = ?"}
	args := []interface{}{courseID}
	if query.GroupID != 0 {
		where = append(where, `x.user_id IN (SELECT user_id FROM "group_members" WHERE group_id = ?)`)
		args = append(args, query.GroupID)
	}
	if query.Search != "" {
		val := "%" + query.Search + "%"
		where = append(where, "(u.firstname ILIKE ? OR u.lastname ILIKE ? OR u.email ILIKE ?)")
		args = append(args, val, val, val)
	}

	orderings := query.Orderings
	if len(orderings) == 0 {
		orderings = defaultRankingOrderings
	}
	orderBy := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		orderBy = append(orderBy, "x."+ord.String()) // fields are filtered by xp.RankingQuery.Clean
	}
	orderBy = append(orderBy, "x.user_id ASC")

	q := fmt.Sprintf(`
SELECT x.course_id, x.user_id, x.xp, x.lvl, u.firstname, u.lastname, u.email, u.picture_url
FROM "user_xp" x
JOIN "users" u ON u.id = x.user_id
WHERE %s
ORDER BY %s
LIMIT ? OFFSET ?`, strings.Join(where, " AND "), strings.Join(orderBy, ", "))
	var limit interface{} // NULL: no limit
	if query.Limit > 0 {
		limit = query.Limit
	}
	args = append(args, limit, query.Offset)

	var rows []stateRow
	if err := sqlx.SelectContext(ctx, repo.db, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting states")
	}
	states := make([]xp.State, 0, len(rows))
	for _, r := range rows {
		states = append(states, r.state())
	}
	return states, nil
}

func (repo *stateRepository) CourseIDs(ctx context.Context) ([]int, error) {
	ids := make([]int, 0)
	err := sqlx.SelectContext(ctx, repo.db, &ids, `SELECT DISTINCT course_id FROM "user_xp" ORDER BY course_id`)
	return ids, errors.Wrap(err, "selecting course ids")
}
