package xp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
)

var (
	// errors
	ErrUserNotFound   = errors.New("user not found")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrNegativeXP     = errors.New("xp cannot be negative")
	ErrInvalidCourse  = errors.New("invalid course")
)

type (
	// Repository persists the experience of users, per course.
	// Levels are computed from the thresholds of the levels.Info passed along.
	Repository interface {
		// GetState returns the state of the user in the course; xp is 0 when the user has none yet.
		// Returns ErrUserNotFound when the user is unknown.
		GetState(ctx context.Context, courseID, userID int) (State, error)
		// IncreaseXP adds amount to the user's XP and refreshes their cached level, atomically.
		IncreaseXP(ctx context.Context, info levels.Info, userID, amount int) (State, error)
		// SetXP overrides the user's XP and cached level.
		SetXP(ctx context.Context, info levels.Info, userID, xp int) (State, error)
		// RecalculateLevels refreshes the cached levels that differ from the thresholds, returns the number of updated rows.
		RecalculateLevels(ctx context.Context, info levels.Info) (int, error)
		DeleteCourseStates(ctx context.Context, courseID int) (int, error)
		DeleteGroupStates(ctx context.Context, courseID, groupID int) (int, error)
		QueryStates(ctx context.Context, courseID int, query RankingQuery) ([]State, error)
		// CourseIDs lists the courses having states.
		CourseIDs(ctx context.Context) ([]int, error)
	}

	LevelsProvider interface {
		Get(ctx context.Context, courseID int) (levels.Info, error)
		HasCourseLevels(ctx context.Context, courseID int) (bool, error)
		AddListener(l levels.ChangeListener)
	}

	Service struct {
		repo     Repository
		levels   LevelsProvider
		notifier Notifier // optional
		logger   core.Logger
	}
)

var _ levels.ChangeListener = (*Service)(nil)

// NewService creates the XP service and subscribes it to levels changes.
func NewService(repo Repository, levelsSvc LevelsProvider, notifier Notifier, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(levelsSvc, "levelsSvc"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	svc := &Service{
		repo:     repo,
		levels:   levelsSvc,
		notifier: notifier,
		logger:   logger,
	}
	levelsSvc.AddListener(svc)
	return svc
}

// Store returns the store of a course, bound to the course's current levels.
func (svc *Service) Store(ctx context.Context, courseID int) (*CourseStore, error) {
	if courseID <= levels.DefaultsCourseID {
		return nil, ErrInvalidCourse
	}
	info, err := svc.levels.Get(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "getting course levels")
	}
	return &CourseStore{svc: svc, info: info}, nil
}

// LevelsChanged recalculates the cached levels affected by a levels change.
// A change of the site defaults affects every course without its own levels.
func (svc *Service) LevelsChanged(ctx context.Context, courseID int) error {
	if courseID != levels.DefaultsCourseID {
		_, err := svc.recalculate(ctx, courseID)
		return err
	}

	courseIDs, err := svc.repo.CourseIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	for _, id := range courseIDs {
		has, err := svc.levels.HasCourseLevels(ctx, id)
		if err != nil {
			return errors.Wrap(err, "checking course levels")
		}
		if has {
			continue
		}
		if _, err = svc.recalculate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateAll recalculates the cached levels of every course, returns the number of updated rows.
func (svc *Service) RecalculateAll(ctx context.Context) (int, error) {
	courseIDs, err := svc.repo.CourseIDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing courses")
	}
	var total int
	for _, id := range courseIDs {
		n, err := svc.recalculate(ctx, id)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (svc *Service) recalculate(ctx context.Context, courseID int) (int, error) {
	store, err := svc.Store(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return store.RecalculateLevels(ctx)
}

func (svc *Service) notifyLevelUp(ctx context.Context, evt LevelUpEvent) {
	if svc.notifier == nil {
		return
	}
	if err := svc.notifier.NotifyLevelUp(ctx, evt); err != nil {
		svc.logger.Error(
			fmt.Sprintf("notifying level up: %v", err),
			err,
			map[string]interface{}{"course_id": evt.CourseID, "user_id": evt.User.ID, "level": evt.ToLevel},
			core.Person{ID: fmt.Sprint(evt.User.ID), Username: evt.User.FullName(), Email: evt.User.Email},
		)
	}
}

// CourseStore reads and writes the experience of users in a course.
type CourseStore struct {
	svc  *Service
	info levels.Info
}

func (s *CourseStore) CourseID() int           { return s.info.CourseID }
func (s *CourseStore) LevelsInfo() levels.Info { return s.info }

// withLevel derives the live level (and progress) from the state's XP.
func (s *CourseStore) withLevel(st State) State {
	prog := s.info.Progress(st.XP)
	st.CourseID = s.info.CourseID
	st.Level = prog.Level.Level
	st.Progress = &prog
	return st
}

func (s *CourseStore) GetState(ctx context.Context, userID int) (State, error) {
	st, err := s.svc.repo.GetState(ctx, s.info.CourseID, userID)
	if err != nil {
		return State{}, errors.Wrap(err, "getting state")
	}
	return s.withLevel(st), nil
}

// Increase awards `amount` XP to the user. Reaching a higher level emits a LevelUpEvent.
func (s *CourseStore) Increase(ctx context.Context, userID, amount int) (State, error) {
	if amount < 0 {
		return State{}, core.NewValidationError(ErrNegativeAmount, core.FieldError{Field: "amount", Error: ErrNegativeAmount.Error()})
	}
	if amount == 0 {
		return s.GetState(ctx, userID)
	}

	st, err := s.svc.repo.IncreaseXP(ctx, s.info, userID, amount)
	if err != nil {
		return State{}, errors.Wrap(err, "increasing xp")
	}
	st = s.withLevel(st)

	from := s.info.LevelFromXP(st.XP - amount)
	if st.Level > from.Level {
		lvl := st.Progress.Level
		s.svc.notifyLevelUp(ctx, LevelUpEvent{
			ID:           uuid.New().String(),
			CourseID:     s.info.CourseID,
			User:         st.User,
			FromLevel:    from.Level,
			ToLevel:      lvl.Level,
			XP:           st.XP,
			LevelName:    lvl.Name,
			PopupMessage: lvl.PopupMessage,
			BadgeAwardID: lvl.BadgeAwardID,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return st, nil
}

// Set overrides the user's XP.
func (s *CourseStore) Set(ctx context.Context, userID, xp int) (State, error) {
	if xp < 0 {
		return State{}, core.NewValidationError(ErrNegativeXP, core.FieldError{Field: "xp", Error: ErrNegativeXP.Error()})
	}
	st, err := s.svc.repo.SetXP(ctx, s.info, userID, xp)
	if err != nil {
		return State{}, errors.Wrap(err, "setting xp")
	}
	return s.withLevel(st), nil
}

func (s *CourseStore) RecalculateLevels(ctx context.Context) (int, error) {
	n, err := s.svc.repo.RecalculateLevels(ctx, s.info)
	if err != nil {
		return 0, errors.Wrapf(err, "recalculating levels of course %d", s.info.CourseID)
	}
	if n > 0 {
		s.svc.logger.Info(fmt.Sprintf("recalculated %d levels of course %d", n, s.info.CourseID))
	}
	return n, nil
}

// Reset deletes the experience of every user in the course.
func (s *CourseStore) Reset(ctx context.Context) (int, error) {
	n, err := s.svc.repo.DeleteCourseStates(ctx, s.info.CourseID)
	return n, errors.Wrap(err, "resetting course")
}

// ResetByGroup deletes the experience of the members of a group.
func (s *CourseStore) ResetByGroup(ctx context.Context, groupID int) (int, error) {
	n, err := s.svc.repo.DeleteGroupStates(ctx, s.info.CourseID, groupID)
	return n, errors.Wrap(err, "resetting group")
}

// Ranking lists the states of the course, by level then XP unless ordered otherwise.
func (s *CourseStore) Ranking(ctx context.Context, query RankingQuery) ([]State, error) {
	query.Clean()
	states, err := s.svc.repo.QueryStates(ctx, s.info.CourseID, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying states")
	}
	for i := range states {
		states[i] = s.withLevel(states[i])
	}
	return states, nil
}
