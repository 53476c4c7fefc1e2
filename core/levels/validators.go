package levels

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/levelup/core"
)

var (
	// custom validation tags & texts
	minCoefTag  = "mincoef"
	minCoefText = "the coefficient of the relative method must be at least 1"

	levelSeqTag  = "levelseq"
	levelSeqText = "levels must be numbered from 1 without gaps"

	firstLevelTag  = "firstlevel"
	firstLevelText = "the first level must start at 0 points and cannot have a badge or a popup message"

	increasingTag  = "increasing"
	increasingText = "each level must require more points than the previous one"

	maxPointsTag  = "maxpoints"
	maxPointsText = "levels require too many points"

	errBadgeOnDefaults = errors.New("badges cannot be awarded by the default levels")
)

// InitValidators registers the levels validation rules and their messages.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(algoValidation, Algo{})
	validate.RegisterStructValidation(updateValidation, Update{})

	core.RegisterCustomTranslation(validate, translator, minCoefTag, minCoefText)
	core.RegisterCustomTranslation(validate, translator, levelSeqTag, levelSeqText)
	core.RegisterCustomTranslation(validate, translator, firstLevelTag, firstLevelText)
	core.RegisterCustomTranslation(validate, translator, increasingTag, increasingText)
	core.RegisterCustomTranslation(validate, translator, maxPointsTag, maxPointsText)
}

func algoValidation(sl validator.StructLevel) {
	algo := sl.Current().Interface().(Algo)
	if algo.Method == MethodRelative && algo.Coef < 1 {
		sl.ReportError(algo.Coef, "coef", "Coef", minCoefTag, "")
	}
}

func updateValidation(sl validator.StructLevel) {
	upd := sl.Current().Interface().(Update)
	if len(upd.Levels) < MinLevels {
		return // reported by the field tags
	}

	first := upd.Levels[0]
	if first.XPRequired != 0 || first.BadgeAwardID != 0 || first.PopupMessage != "" {
		sl.ReportError(upd.Levels, "levels", "Levels", firstLevelTag, "")
	}
	for i, l := range upd.Levels {
		if l.Level != i+1 {
			sl.ReportError(upd.Levels, "levels", "Levels", levelSeqTag, "")
			return
		}
		if i > 0 && l.XPRequired <= upd.Levels[i-1].XPRequired {
			sl.ReportError(upd.Levels, "levels", "Levels", increasingTag, "")
			return
		}
		if l.XPRequired > MaxRequiredPoints(l.Level) {
			sl.ReportError(upd.Levels, "levels", "Levels", maxPointsTag, "")
			return
		}
	}
}

// Validate cleans then validates the update. Site defaults cannot award badges (badges belong to courses).
func (u *Update) Validate(validate *validator.Validate, isDefaults bool) error {
	u.Clean()
	if err := validate.Struct(u); err != nil {
		return err
	}
	if isDefaults {
		for _, l := range u.Levels {
			if l.BadgeAwardID != 0 {
				return core.NewValidationError(errBadgeOnDefaults, core.FieldError{Field: "levels", Error: errBadgeOnDefaults.Error()})
			}
		}
	}
	return nil
}

func (p *Preview) Validate(validate *validator.Validate) error {
	p.Method = core.CleanString(p.Method, true /* lower */)
	return validate.Struct(p)
}
