package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core/levels"
)

func Test_commandLine_levels(t *testing.T) {
	t.Run("edit and save", func(t *testing.T) {
		tc := setup(t, "count 3\npoints 2 100\nname 2 <i>Novice</i>\npopup 2 Welcome aboard\nbadge 2 7\nsave\nquit\n")

		require.NoError(t, tc.run("levels", "-course", "4"))
		assert.Contains(t, tc.out.String(), "saved 3 levels")

		info, err := tc.levelsSvc.Get(context.Background(), 4)
		require.NoError(t, err)
		assert.False(t, info.IsDefault)
		assert.Equal(t, []int{0, 100, 276}, info.Thresholds())
		assert.Equal(t, "Novice", info.Levels[1].Name)
		assert.Equal(t, "Welcome aboard", info.Levels[1].PopupMessage)
		assert.Equal(t, 7, info.Levels[1].BadgeAwardID)
	})

	t.Run("bulk edit", func(t *testing.T) {
		tc := setup(t, "algo linear 100 50\ncount 4\nsave\nquit\n")

		require.NoError(t, tc.run("levels", "-course", "4"))

		info, err := tc.levelsSvc.Get(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, levels.MethodLinear, info.Algo.Method)
		assert.Equal(t, []int{0, 100, 250, 450}, info.Thresholds())
	})

	t.Run("length", func(t *testing.T) {
		tc := setup(t, "count 3\nlength 1 50\nlength 2 80\nsave\nquit\n")

		require.NoError(t, tc.run("levels", "-course", "4"))

		info, err := tc.levelsSvc.Get(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 50, 130}, info.Thresholds())
	})

	t.Run("invalid edits are reported", func(t *testing.T) {
		tc := setup(t, "points 1 50\npoints 3 100\nalgo relative\nalgo cubic 10\ncount 100\nquit!\n")

		require.NoError(t, tc.run("levels", "-course", "4"))
		out := tc.out.String()
		assert.Contains(t, out, "error: ignored")
		assert.Contains(t, out, "error: the number of levels must be between 2 and 99")
		assert.Contains(t, out, "error: usage: algo")
		assert.Contains(t, out, "method must be one of")

		has, err := tc.levelsSvc.HasCourseLevels(context.Background(), 4)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("unsaved changes", func(t *testing.T) {
		tc := setup(t, "count 3\nquit\n")

		assert.Equal(t, errUnsaved, tc.run("levels", "-course", "4"))
		assert.Contains(t, tc.out.String(), "error: "+errUnsaved.Error())
	})

	t.Run("site defaults", func(t *testing.T) {
		tc := setup(t, "badge 2 7\nreset\ncount 5\nsave\nquit\n")

		require.NoError(t, tc.run("levels", "-course", "0"))
		out := tc.out.String()
		assert.Contains(t, out, "Site defaults - 10 levels")
		assert.Contains(t, out, "error: badges cannot be awarded by the default levels")
		assert.Contains(t, out, "error: the site defaults cannot be reset")

		// courses use the new defaults
		info, err := tc.levelsSvc.Get(context.Background(), 4)
		require.NoError(t, err)
		assert.True(t, info.IsDefault)
		assert.Len(t, info.Levels, 5)
	})

	t.Run("reset course", func(t *testing.T) {
		tc := setup(t, "count 3\nsave\nreset\nquit\n")

		require.NoError(t, tc.run("levels", "-course", "4"))
		assert.Contains(t, tc.out.String(), "the course now uses the default levels")

		has, err := tc.levelsSvc.HasCourseLevels(context.Background(), 4)
		require.NoError(t, err)
		assert.False(t, has)
	})
}
