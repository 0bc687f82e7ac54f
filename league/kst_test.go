package league_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
)

func TestNormalizeEventTime_OffsetlessIsKST(t *testing.T) {
	cases := []string{
		"2026-01-19T20:00",
		"2026-01-19T20:00:00",
		"2026-01-19 20:00",
		"2026-01-19 20:00:00",
	}
	want := time.Date(2026, 1, 19, 20, 0, 0, 0, league.KST)
	for _, in := range cases {
		got, err := league.NormalizeEventTime(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s parsed to %v", in, got)
	}
}

func TestNormalizeEventTime_BareDateIsMidnightKST(t *testing.T) {
	got, err := league.NormalizeEventTime("2026-01-19")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 1, 19, 0, 0, 0, 0, league.KST)))
}

func TestNormalizeEventTime_ExplicitOffset(t *testing.T) {
	// 11:00 UTC and 20:00+09:00 are the same instant.
	utc, err := league.NormalizeEventTime("2026-01-19T11:00:00Z")
	require.NoError(t, err)
	kst, err := league.NormalizeEventTime("2026-01-19T20:00:00+09:00")
	require.NoError(t, err)
	assert.True(t, utc.Equal(kst))
}

func TestNormalizeEventTime_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-time", "2026-13-40T99:00"} {
		_, err := league.NormalizeEventTime(in)
		assert.Error(t, err, "%q should be rejected", in)
	}
}

func TestDayKey_CrossesMidnightInUTC(t *testing.T) {
	// 2026-01-19 23:30 KST is 14:30 UTC the same day, but
	// 2026-01-19 01:00 KST is still 2026-01-18 in UTC. The day key
	// must follow KST.
	early := time.Date(2026, 1, 18, 16, 0, 0, 0, time.UTC) // 01:00 KST Jan 19
	assert.Equal(t, "2026-01-19", league.DayKey(early))
}

func TestFormatKST(t *testing.T) {
	at := time.Date(2026, 1, 19, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-19T20:00:00+09:00", league.FormatKST(at))
}

func TestMonthRange(t *testing.T) {
	start, end, err := league.MonthRange("2026-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", start)
	assert.Equal(t, "2026-02-01", end)

	start, end, err = league.MonthRange("2026-12")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-01", start)
	assert.Equal(t, "2027-01-01", end)

	_, _, err = league.MonthRange("2026-1")
	assert.Error(t, err)
}

func TestDayRange(t *testing.T) {
	from, to, err := league.DayRange("2026-01-19")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, to.Sub(from))
	assert.Equal(t, "2026-01-19", league.DayKey(from))
	assert.Equal(t, "2026-01-20", league.DayKey(to))
}
