package inmemdb

import (
	"context"

	"github.com/trezcool/levelup/core/levels"
)

type levelsRepository struct {
	db *DB
}

var _ levels.Repository = (*levelsRepository)(nil) // interface compliance check

func NewLevelsRepository(db *DB) *levelsRepository {
	return &levelsRepository{db: db}
}

func copyInfo(info levels.Info) levels.Info {
	lvls := make([]levels.Level, len(info.Levels))
	copy(lvls, info.Levels)
	info.Levels = lvls
	return info
}

func (repo *levelsRepository) GetInfo(ctx context.Context, courseID int) (levels.Info, error) {
	t := repo.db.levels
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	info, ok := t.infos[courseID]
	if !ok {
		return levels.Info{}, levels.ErrNotFound
	}
	return copyInfo(info), nil
}

func (repo *levelsRepository) SaveInfo(ctx context.Context, info levels.Info) error {
	t := repo.db.levels
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.infos[info.CourseID] = copyInfo(info)
	return nil
}

func (repo *levelsRepository) DeleteInfo(ctx context.Context, courseID int) error {
	t := repo.db.levels
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.infos[courseID]; !ok {
		return levels.ErrNotFound
	}
	delete(t.infos, courseID)
	return nil
}

func (repo *levelsRepository) HasInfo(ctx context.Context, courseID int) (bool, error) {
	t := repo.db.levels
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	_, ok := t.infos[courseID]
	return ok, nil
}
