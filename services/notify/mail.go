package notifysvc

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/kat-co/vala"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/xp"
)

const levelUpTemplate = "levelup"

// LevelUpData is the data available to the level-up email templates.
type LevelUpData struct {
	FirstName    string
	CourseID     int
	Level        int
	LevelName    string
	XP           int
	PopupMessage string
}

type mailNotifier struct {
	mailSvc core.EmailService
}

var _ xp.Notifier = (*mailNotifier)(nil)

// NewMailNotifier emails the user who reached a new level.
func NewMailNotifier(mailSvc core.EmailService) *mailNotifier {
	vala.BeginValidation().Validate(
		vala.IsNotNil(mailSvc, "mailSvc"),
	).CheckAndPanic()

	return &mailNotifier{mailSvc: mailSvc}
}

func (n *mailNotifier) NotifyLevelUp(_ context.Context, evt xp.LevelUpEvent) error {
	if evt.User.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("You reached level %d", evt.ToLevel)
	if evt.LevelName != "" {
		subject += ": " + evt.LevelName
	}

	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: evt.User.FullName(), Address: evt.User.Email}},
		Subject:      subject,
		TemplateName: levelUpTemplate,
		TemplateData: LevelUpData{
			FirstName:    evt.User.FirstName,
			CourseID:     evt.CourseID,
			Level:        evt.ToLevel,
			LevelName:    evt.LevelName,
			XP:           evt.XP,
			PopupMessage: evt.PopupMessage,
		},
	})
	return nil
}
