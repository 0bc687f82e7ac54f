/*
league_test.go - Unit tests for validity, levels and rounding

Tests for:
- Bung validity threshold
- Level bands at every boundary
- Score range checks
- Half-up average rounding
*/
package league_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alleyclub/club-server/league"
)

func TestIsValidBung(t *testing.T) {
	assert.False(t, league.IsValidBung(0))
	assert.False(t, league.IsValidBung(3))
	assert.True(t, league.IsValidBung(4))
	assert.True(t, league.IsValidBung(12))
}

func TestLevelForAverage_Boundaries(t *testing.T) {
	cases := []struct {
		avg   float64
		level int
	}{
		{0, 1},
		{119.9, 1},
		{120, 1},
		{120.1, 2},
		{140, 2},
		{141, 3},
		{150, 3},
		{160, 4},
		{170, 5},
		{180, 6},
		{190, 7},
		{200, 8},
		{210, 9},
		{220, 10},
		{220.1, 11},
		{300, 11},
	}
	for _, c := range cases {
		assert.Equal(t, c.level, league.LevelForAverage(c.avg), "average %v", c.avg)
	}
}

func TestValidScore(t *testing.T) {
	assert.True(t, league.ValidScore(0))
	assert.True(t, league.ValidScore(300))
	assert.False(t, league.ValidScore(-1))
	assert.False(t, league.ValidScore(301))

	assert.True(t, league.ValidMatchTotal(900))
	assert.False(t, league.ValidMatchTotal(901))
}

func TestRound1_HalfUp(t *testing.T) {
	// 601 / 3 = 200.333... -> 200.3
	assert.Equal(t, 200.3, league.Round1(601, 3))
	// 602 / 3 = 200.666... -> 200.7
	assert.Equal(t, 200.7, league.Round1(602, 3))
	// 1 / 4 = 0.25 -> the .05 boundary rounds up, not to even
	assert.Equal(t, 0.3, league.Round1(1, 4))
	assert.Equal(t, 200.0, league.Round1(600, 3))
	assert.Equal(t, 0.0, league.Round1(100, 0))
}
