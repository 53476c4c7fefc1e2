package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
	"github.com/trezcool/levelup/storage/database/inmem"
	"github.com/trezcool/levelup/tests"
)

type migration struct {
	command string
	args    []string
}

type testCLI struct {
	*commandLine
	db         *inmemdb.DB
	out        *bytes.Buffer
	migrations []migration
}

func setup(t *testing.T, input string) *testCLI {
	db := inmemdb.Open()
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()
	levelsSvc := levels.NewService(inmemdb.NewLevelsRepository(db), nil, validate, logger)
	xpSvc := xp.NewService(inmemdb.NewStateRepository(db), levelsSvc, nil, logger)

	for id := 1; id <= 3; id++ {
		db.AddUser(xp.User{ID: id, FirstName: "User", LastName: strings.Repeat("I", id)})
	}
	db.AddGroupMembers(9, 1, 2)

	tc := &testCLI{db: db, out: new(bytes.Buffer)}
	tc.commandLine = &commandLine{
		levelsSvc:  levelsSvc,
		xpSvc:      xpSvc,
		translator: translator,
		migrate: func(command string, args ...string) error {
			tc.migrations = append(tc.migrations, migration{command, args})
			return nil
		},
		in:  bufio.NewReader(strings.NewReader(input)),
		out: tc.out,
	}

	isTerminalFunc = func() bool { return false }
	t.Cleanup(func() { isTerminalFunc = func() bool { return false } })
	return tc
}

func (tc *testCLI) run(args ...string) error {
	return tc.commandLine.run(context.Background(), append([]string{"admin"}, args...))
}

func (tc *testCLI) setXP(t *testing.T, courseID int, xps map[int]int) {
	store, err := tc.xpSvc.Store(context.Background(), courseID)
	require.NoError(t, err)
	for userID, amount := range xps {
		_, err = store.Set(context.Background(), userID, amount)
		require.NoError(t, err)
	}
}

func (tc *testCLI) state(t *testing.T, courseID, userID int) xp.State {
	store, err := tc.xpSvc.Store(context.Background(), courseID)
	require.NoError(t, err)
	st, err := store.GetState(context.Background(), userID)
	require.NoError(t, err)
	return st
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_usage(t *testing.T) {
	tc := setup(t, "")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate: no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "recalculate: no args", args: []string{"recalculate"}, wantErr: errHelp},
		{name: "recalculate: course and all", args: []string{"recalculate", "-course", "1", "-all"}, wantErr: errHelp},
		{name: "recalculate: unknown flag", args: []string{"recalculate", "-lol"}, wantErr: errHelp},
		{name: "reset: no course", args: []string{"reset", "-yes"}, wantErr: errHelp},
		{name: "setxp: no user", args: []string{"setxp", "-course", "1", "-xp", "10"}, wantErr: errHelp},
		{name: "setxp: no xp", args: []string{"setxp", "-course", "1", "-user", "1"}, wantErr: errHelp},
		{name: "levels: no course", args: []string{"levels"}, wantErr: errHelp},
		{name: "setxp: unknown user", args: []string{"setxp", "-course", "1", "-user", "42", "-xp", "10"}, wantErrStr: "setting xp: user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tc.run(tt.args...)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	tc := setup(t, "")

	require.NoError(t, tc.run("migrate", "up"))
	require.NoError(t, tc.run("migrate", "up-to", "2"))
	require.NoError(t, tc.run("migrate", "create", "badges", "sql"))

	assert.Equal(t, []migration{
		{command: "up", args: []string{}},
		{command: "up-to", args: []string{"2"}},
		{command: "create", args: []string{"badges", "sql"}},
	}, tc.migrations)
}

func Test_commandLine_setxp(t *testing.T) {
	tc := setup(t, "")

	require.NoError(t, tc.run("setxp", "-course", "4", "-user", "1", "-xp", "300"))
	assert.Equal(t, "User I: 300 XP, level 3\n", tc.out.String())

	st := tc.state(t, 4, 1)
	assert.Equal(t, 300, st.XP)
	assert.Equal(t, 3, st.Level)
}

func Test_commandLine_recalculate(t *testing.T) {
	tc := setup(t, "")
	tc.setXP(t, 4, map[int]int{1: 130, 2: 500})
	tc.setXP(t, 5, map[int]int{1: 500})

	// the site defaults change under the stored levels
	info := levels.BuiltInDefaults()
	info.Levels[2].XPRequired = 130
	require.NoError(t, inmemdb.NewLevelsRepository(tc.db).SaveInfo(context.Background(), info))

	require.NoError(t, tc.run("recalculate", "-course", "4"))
	assert.Equal(t, "1 levels updated in course 4\n", tc.out.String())

	tc.out.Reset()
	require.NoError(t, tc.run("recalculate", "-all"))
	assert.Equal(t, "0 levels updated\n", tc.out.String())
}

func Test_commandLine_reset(t *testing.T) {
	t.Run("needs confirmation", func(t *testing.T) {
		tc := setup(t, "")
		tc.setXP(t, 4, map[int]int{1: 10})

		err := tc.run("reset", "-course", "4")
		assert.EqualError(t, err, "confirmation required: run with -yes")
		assert.Equal(t, 10, tc.state(t, 4, 1).XP)
	})

	t.Run("cancelled", func(t *testing.T) {
		tc := setup(t, "n\n")
		isTerminalFunc = func() bool { return true }
		tc.setXP(t, 4, map[int]int{1: 10})

		assert.Equal(t, errCancelled, tc.run("reset", "-course", "4"))
		assert.Equal(t, 10, tc.state(t, 4, 1).XP)
	})

	t.Run("confirmed", func(t *testing.T) {
		tc := setup(t, "y\n")
		isTerminalFunc = func() bool { return true }
		tc.setXP(t, 4, map[int]int{1: 10, 2: 20, 3: 30})

		require.NoError(t, tc.run("reset", "-course", "4"))
		assert.Contains(t, tc.out.String(), "3 states deleted")
	})

	t.Run("group", func(t *testing.T) {
		tc := setup(t, "")
		tc.setXP(t, 4, map[int]int{1: 10, 2: 20, 3: 30})

		require.NoError(t, tc.run("reset", "-course", "4", "-group", "9", "-yes"))
		assert.Equal(t, "2 states deleted\n", tc.out.String())
		assert.Equal(t, 0, tc.state(t, 4, 1).XP)
		assert.Equal(t, 30, tc.state(t, 4, 3).XP)
	})
}
