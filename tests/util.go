// Package testutil holds helpers shared by the tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
	"github.com/trezcool/levelup/storage/database"
)

// NewValidator returns a validator with every custom rule registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	levels.InitValidators(validate, translator)
	return validate, translator
}

func NewConfig() *core.Config {
	if os.Getenv("ENV") == "" {
		_ = os.Setenv("ENV", "test")
	}
	return core.NewConfig()
}

// Entry is a message logged by Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records what it logs.
type Logger struct {
	Entries []Entry
	mu      sync.Mutex
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Count returns the number of entries logged at `level`.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// PrepareDB opens the test database, migrates it and empties it.
// The test is skipped unless TEST_DATABASE_HOST is set and the database is reachable.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	conf := NewConfig()

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Skipf("database not available: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	if err = database.Migrate(db); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ResetDB(t, db)
	return db
}

// ResetDB deletes every row of the database.
func ResetDB(t *testing.T, db *sql.DB) {
	t.Helper()
	q := `TRUNCATE TABLE "level", "level_config", "user_xp", "group_members", "users"`
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}

// CreateUser inserts a user of the host directory.
func CreateUser(t *testing.T, db *sql.DB, usr xp.User, groupIDs ...int) xp.User {
	t.Helper()
	ctx := context.Background()
	q := `INSERT INTO "users" ("id", "firstname", "lastname", "email", "picture_url") VALUES ($1, $2, $3, $4, $5)`
	if _, err := db.ExecContext(ctx, q, usr.ID, usr.FirstName, usr.LastName, usr.Email, usr.PictureURL); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	for _, gid := range groupIDs {
		q = `INSERT INTO "group_members" ("group_id", "user_id") VALUES ($1, $2)`
		if _, err := db.ExecContext(ctx, q, gid, usr.ID); err != nil {
			t.Fatalf("CreateUser() failed: %v", fmt.Errorf("adding to group %d: %w", gid, err))
		}
	}
	return usr
}
