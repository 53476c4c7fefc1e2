package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_LevelFromXP(t *testing.T) {
	info := BuiltInDefaults() // 0, 120, 276, 479, 742, 1085, 1531, 2110, 2863, 3842

	tests := []struct {
		xp   int
		want int
	}{
		{xp: -1, want: 1},
		{xp: 0, want: 1},
		{xp: 119, want: 1},
		{xp: 120, want: 2},
		{xp: 275, want: 2},
		{xp: 276, want: 3},
		{xp: 3841, want: 9},
		{xp: 3842, want: 10},
		{xp: 1000000, want: 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, info.LevelFromXP(tt.xp).Level, "xp=%d", tt.xp)
	}

	assert.Equal(t, 1, Info{}.LevelFromXP(50).Level)
}

func TestInfo_Level(t *testing.T) {
	info := BuiltInDefaults()

	lvl, ok := info.Level(3)
	assert.True(t, ok)
	assert.Equal(t, 276, lvl.XPRequired)

	_, ok = info.Level(0)
	assert.False(t, ok)
	_, ok = info.Level(11)
	assert.False(t, ok)
}

func TestInfo_Progress(t *testing.T) {
	info := Info{Levels: GenerateLevels(3, Algo{Method: MethodLinear, Base: 100})} // 0, 100, 200

	prog := info.Progress(150)
	assert.Equal(t, 2, prog.Level.Level)
	assert.Equal(t, 50, prog.XPInLevel)
	assert.Equal(t, 100, prog.XPForLevel)
	assert.Equal(t, 50, prog.XPToNext)
	assert.Equal(t, 50, prog.Percentage)
	assert.False(t, prog.IsLastLevel)

	prog = info.Progress(260)
	assert.Equal(t, 3, prog.Level.Level)
	assert.Equal(t, 60, prog.XPInLevel)
	assert.Zero(t, prog.XPToNext)
	assert.Equal(t, 100, prog.Percentage)
	assert.True(t, prog.IsLastLevel)
}

func TestInfo_Thresholds(t *testing.T) {
	info := Info{Levels: GenerateLevels(4, DefaultAlgo())}
	assert.Equal(t, []int{0, 120, 276, 479}, info.Thresholds())
	assert.Equal(t, 4, info.Count())
}
