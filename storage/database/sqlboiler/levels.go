package boiledrepos

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
)

type (
	levelConfigRow struct {
		CourseID  int       `boil:"course_id"`
		Method    string    `boil:"method"`
		Base      int       `boil:"base"`
		Coef      float64   `boil:"coef"`
		Incr      int       `boil:"incr"`
		UpdatedAt time.Time `boil:"updated_at"`
	}

	levelRow struct {
		CourseID     int         `boil:"course_id"`
		Level        int         `boil:"level"`
		XPRequired   int         `boil:"xp_required"`
		Name         null.String `boil:"name"`
		Description  null.String `boil:"description"`
		BadgeAwardID null.Int    `boil:"badge_award_id"`
		PopupMessage null.String `boil:"popup_message"`
	}
)

type levelsRepository struct {
	db core.DB
}

var _ levels.Repository = (*levelsRepository)(nil) // interface compliance check

func NewLevelsRepository(db core.DB) *levelsRepository {
	vala.BeginValidation().Validate(vala.IsNotNil(db, "db")).CheckAndPanic()
	return &levelsRepository{db: db}
}

func (repo *levelsRepository) boil(courseID int, lvl levels.Level) levelRow {
	return levelRow{
		CourseID:     courseID,
		Level:        lvl.Level,
		XPRequired:   lvl.XPRequired,
		Name:         null.NewString(lvl.Name, lvl.Name != ""),
		Description:  null.NewString(lvl.Description, lvl.Description != ""),
		BadgeAwardID: null.NewInt(lvl.BadgeAwardID, lvl.BadgeAwardID != 0),
		PopupMessage: null.NewString(lvl.PopupMessage, lvl.PopupMessage != ""),
	}
}

func (repo *levelsRepository) unboil(conf levelConfigRow, rows []levelRow) levels.Info {
	info := levels.Info{
		CourseID: conf.CourseID,
		Algo: levels.Algo{
			Method: conf.Method,
			Base:   conf.Base,
			Coef:   conf.Coef,
			Incr:   conf.Incr,
		},
		Levels:    make([]levels.Level, 0, len(rows)),
		UpdatedAt: conf.UpdatedAt.UTC(),
	}
	for _, r := range rows {
		info.Levels = append(info.Levels, levels.Level{
			Level:        r.Level,
			XPRequired:   r.XPRequired,
			Name:         r.Name.String,
			Description:  r.Description.String,
			BadgeAwardID: r.BadgeAwardID.Int,
			PopupMessage: r.PopupMessage.String,
		})
	}
	return info
}

func (repo *levelsRepository) GetInfo(ctx context.Context, courseID int) (levels.Info, error) {
	var confs []levelConfigRow
	q := `SELECT course_id, method, base, coef, incr, updated_at FROM "level_config" WHERE course_id = $1`
	if err := queries.Raw(q, courseID).Bind(ctx, repo.db, &confs); err != nil {
		return levels.Info{}, errors.Wrap(err, "selecting level config")
	}
	if len(confs) == 0 {
		return levels.Info{}, levels.ErrNotFound
	}

	var rows []levelRow
	q = `
SELECT course_id, level, xp_required, name, description, badge_award_id, popup_message
FROM "level" WHERE course_id = $1 ORDER BY level`
	if err := queries.Raw(q, courseID).Bind(ctx, repo.db, &rows); err != nil {
		return levels.Info{}, errors.Wrap(err, "selecting levels")
	}
	return repo.unboil(confs[0], rows), nil
}

func (repo *levelsRepository) SaveInfo(ctx context.Context, info levels.Info) error {
	return core.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		q := `
INSERT INTO "level_config" (course_id, method, base, coef, incr, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (course_id) DO UPDATE
SET method = EXCLUDED.method, base = EXCLUDED.base, coef = EXCLUDED.coef, incr = EXCLUDED.incr, updated_at = EXCLUDED.updated_at`
		_, err := queries.Raw(q, info.CourseID, info.Algo.Method, info.Algo.Base, info.Algo.Coef, info.Algo.Incr, info.UpdatedAt.UTC()).
			ExecContext(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "upserting level config")
		}

		if _, err = queries.Raw(`DELETE FROM "level" WHERE course_id = $1`, info.CourseID).ExecContext(ctx, tx); err != nil {
			return errors.Wrap(err, "deleting levels")
		}

		q = `
INSERT INTO "level" (course_id, level, xp_required, name, description, badge_award_id, popup_message)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
		for _, lvl := range info.Levels {
			r := repo.boil(info.CourseID, lvl)
			_, err = queries.Raw(q, r.CourseID, r.Level, r.XPRequired, r.Name, r.Description, r.BadgeAwardID, r.PopupMessage).
				ExecContext(ctx, tx)
			if err != nil {
				return errors.Wrapf(err, "inserting level %d", lvl.Level)
			}
		}
		return nil
	})
}

func (repo *levelsRepository) DeleteInfo(ctx context.Context, courseID int) error {
	// levels are deleted in cascade
	res, err := queries.Raw(`DELETE FROM "level_config" WHERE course_id = $1`, courseID).ExecContext(ctx, repo.db)
	if err != nil {
		return errors.Wrap(err, "deleting level config")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return levels.ErrNotFound
	}
	return nil
}

func (repo *levelsRepository) HasInfo(ctx context.Context, courseID int) (bool, error) {
	var res []struct {
		Found bool `boil:"found"`
	}
	q := `SELECT EXISTS (SELECT 1 FROM "level_config" WHERE course_id = $1) AS found`
	if err := queries.Raw(q, courseID).Bind(ctx, repo.db, &res); err != nil {
		return false, errors.Wrap(err, "checking level config")
	}
	return len(res) > 0 && res[0].Found, nil
}
