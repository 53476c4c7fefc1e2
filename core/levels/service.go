package levels

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core"
)

var (
	// errors
	ErrNotFound      = errors.New("levels not found")
	ErrInvalidCourse = errors.New("invalid course")
)

type (
	Repository interface {
		// GetInfo returns the levels saved for the course, or ErrNotFound.
		GetInfo(ctx context.Context, courseID int) (Info, error)
		// SaveInfo replaces the course's algo and levels atomically.
		SaveInfo(ctx context.Context, info Info) error
		DeleteInfo(ctx context.Context, courseID int) error
		HasInfo(ctx context.Context, courseID int) (bool, error)
	}

	// Cache holds the effective levels of courses.
	Cache interface {
		Get(ctx context.Context, courseID int) (Info, bool, error)
		Set(ctx context.Context, info Info) error
		Delete(ctx context.Context, courseIDs ...int) error
		Flush(ctx context.Context) error
	}

	// ChangeListener is notified after the levels of a course (or the site defaults) changed.
	ChangeListener interface {
		LevelsChanged(ctx context.Context, courseID int) error
	}

	Service struct {
		repo      Repository
		cache     Cache // optional
		validate  *validator.Validate
		logger    core.Logger
		listeners []ChangeListener
	}
)

func NewService(repo Repository, cache Cache, validate *validator.Validate, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(validate, "validate"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validate,
		logger:   logger,
	}
}

func (svc *Service) AddListener(l ChangeListener) {
	svc.listeners = append(svc.listeners, l)
}

func (svc *Service) notify(ctx context.Context, courseID int) {
	for _, l := range svc.listeners {
		if err := l.LevelsChanged(ctx, courseID); err != nil {
			svc.logger.Error(fmt.Sprintf("notifying levels change of course %d: %v", courseID, err), err)
		}
	}
}

func (svc *Service) fromCache(ctx context.Context, courseID int) (Info, bool) {
	if svc.cache == nil {
		return Info{}, false
	}
	info, ok, err := svc.cache.Get(ctx, courseID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("reading levels cache: %v", err), err)
		return Info{}, false
	}
	return info, ok
}

func (svc *Service) toCache(ctx context.Context, info Info) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Set(ctx, info); err != nil {
		svc.logger.Warn(fmt.Sprintf("writing levels cache: %v", err), err)
	}
}

func (svc *Service) invalidate(ctx context.Context, courseID int) {
	if svc.cache == nil {
		return
	}
	var err error
	if courseID == DefaultsCourseID {
		err = svc.cache.Flush(ctx) // every course may fall back to the defaults
	} else {
		err = svc.cache.Delete(ctx, courseID)
	}
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating levels cache: %v", err), err)
	}
}

// Get returns the effective levels of a course: its own levels, else the site defaults, else the built-in defaults.
func (svc *Service) Get(ctx context.Context, courseID int) (Info, error) {
	if courseID < DefaultsCourseID {
		return Info{}, ErrInvalidCourse
	}
	if info, ok := svc.fromCache(ctx, courseID); ok {
		return info, nil
	}

	info, err := svc.repo.GetInfo(ctx, courseID)
	switch {
	case err == nil:
		info.IsDefault = courseID == DefaultsCourseID
	case errors.Cause(err) != ErrNotFound:
		return Info{}, errors.Wrap(err, "getting levels")
	case courseID != DefaultsCourseID:
		if info, err = svc.GetDefaults(ctx); err != nil {
			return Info{}, err
		}
		info.CourseID = courseID
	default:
		info = BuiltInDefaults()
	}

	svc.toCache(ctx, info)
	return info, nil
}

func (svc *Service) GetDefaults(ctx context.Context) (Info, error) {
	info, err := svc.Get(ctx, DefaultsCourseID)
	if err != nil {
		return Info{}, err
	}
	info.IsDefault = true
	return info, nil
}

// Set validates then saves the levels of a course wholesale.
func (svc *Service) Set(ctx context.Context, courseID int, upd Update) (Info, error) {
	if courseID < DefaultsCourseID {
		return Info{}, ErrInvalidCourse
	}
	if err := upd.Validate(svc.validate, courseID == DefaultsCourseID); err != nil {
		return Info{}, err
	}

	info := Info{
		CourseID:  courseID,
		Algo:      upd.Algo,
		Levels:    upd.Levels,
		IsDefault: courseID == DefaultsCourseID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := svc.repo.SaveInfo(ctx, info); err != nil {
		return Info{}, errors.Wrap(err, "saving levels")
	}

	svc.invalidate(ctx, courseID)
	svc.notify(ctx, courseID)
	return info, nil
}

func (svc *Service) SetDefaults(ctx context.Context, upd Update) (Info, error) {
	return svc.Set(ctx, DefaultsCourseID, upd)
}

// ResetToDefaults deletes the course's own levels, the course then uses the defaults.
func (svc *Service) ResetToDefaults(ctx context.Context, courseID int) (Info, error) {
	if courseID <= DefaultsCourseID {
		return Info{}, ErrInvalidCourse
	}
	if err := svc.repo.DeleteInfo(ctx, courseID); err != nil && errors.Cause(err) != ErrNotFound {
		return Info{}, errors.Wrap(err, "deleting levels")
	}

	svc.invalidate(ctx, courseID)
	svc.notify(ctx, courseID)
	return svc.Get(ctx, courseID)
}

func (svc *Service) HasCourseLevels(ctx context.Context, courseID int) (bool, error) {
	if courseID <= DefaultsCourseID {
		return false, nil
	}
	has, err := svc.repo.HasInfo(ctx, courseID)
	return has, errors.Wrap(err, "checking course levels")
}

// Preview generates the levels thresholds of an algo.
func (svc *Service) Preview(p Preview) ([]Level, error) {
	if err := p.Validate(svc.validate); err != nil {
		return nil, err
	}
	return GenerateLevels(p.NbLevels, p.Algo), nil
}
