package appfs_test

import (
	"io/fs"
	"net/mail"
	"strings"
	"testing"

	"github.com/trezcool/levelup/core"
	appfs "github.com/trezcool/levelup/fs"
	notifysvc "github.com/trezcool/levelup/services/notify"
	"github.com/trezcool/levelup/tests"
)

func TestFS_migrations(t *testing.T) {
	fps, err := fs.Glob(appfs.FS, appfs.MigrationsDir+"/*.sql")
	if err != nil {
		t.Fatalf("fs.Glob() failed: %v", err)
	}
	if len(fps) == 0 {
		t.Error("no migrations embedded")
	}
}

func TestFS_levelUpEmail(t *testing.T) {
	conf := testutil.NewConfig()
	logger := new(testutil.Logger)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf, logger)
	if n := logger.Count("error"); n > 0 {
		t.Fatalf("ParseEmailTemplates() logged %d errors: %v", n, logger.Entries)
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Address: "ada@test.cd"}},
		TemplateName: "levelup",
		TemplateData: notifysvc.LevelUpData{
			FirstName:    "Ada",
			CourseID:     4,
			Level:        3,
			LevelName:    "Apprentice",
			XP:           300,
			PopupMessage: "Well done!",
		},
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	for _, want := range []string{"Hi Ada", "level 3", "Apprentice", "300", "Well done!"} {
		if !strings.Contains(msg.TextContent, want) {
			t.Errorf("TextContent = %q, want it to contain %q", msg.TextContent, want)
		}
		if !strings.Contains(msg.HTMLContent, want) {
			t.Errorf("HTMLContent = %q, want it to contain %q", msg.HTMLContent, want)
		}
	}
}
