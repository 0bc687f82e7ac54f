package league_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
)

func kstTime(hour, min int) time.Time {
	return time.Date(2026, 1, 19, hour, min, 0, 0, league.KST)
}

func TestBucketByDay_OrderWithinDay(t *testing.T) {
	events := []league.CalendarEvent{
		league.RegularEvent(10, "2026-01-19", 3, 8, []string{"가", "나"}),
		league.BungEvent(1, kstTime(21, 0), "저녁 벙", "", 2, []string{"가", "나"}),
		league.BungEvent(2, kstTime(20, 0), "유효 벙", "", 5, nil),
		league.BungEvent(3, kstTime(10, 0), "아침 벙", "", 4, nil),
	}

	days := league.BucketByDay(events)
	day, ok := days["2026-01-19"]
	require.True(t, ok)
	require.Len(t, day, 4)

	// Valid bungs time-ascending, then invalid bungs, then regulars.
	assert.Equal(t, int64(3), day[0].BungID)
	assert.Equal(t, int64(2), day[1].BungID)
	assert.Equal(t, int64(1), day[2].BungID)
	assert.Equal(t, int64(10), day[3].MeetingID)
	assert.Equal(t, "정기전 3회차", day[3].Title)
}

func TestBucketByDay_KSTDateSplitsDays(t *testing.T) {
	// 23:30 KST and 00:30 KST next day are 80 minutes apart but land
	// on different calendar days.
	late := time.Date(2026, 1, 19, 23, 30, 0, 0, league.KST)
	early := time.Date(2026, 1, 20, 0, 30, 0, 0, league.KST)
	days := league.BucketByDay([]league.CalendarEvent{
		league.BungEvent(1, late, "", "", 4, nil),
		league.BungEvent(2, early, "", "", 4, nil),
	})

	assert.Len(t, days["2026-01-19"], 1)
	assert.Len(t, days["2026-01-20"], 1)
}

func TestBungEvent_Validity(t *testing.T) {
	ev := league.BungEvent(1, kstTime(20, 0), "벙", "레인보우", 4, []string{"가", "나", "다", "라"})
	assert.True(t, ev.IsValid)
	assert.Equal(t, "가, 나…", ev.AttendeeNamesPreview)

	ev = league.BungEvent(2, kstTime(20, 0), "벙", "", 3, []string{"가"})
	assert.False(t, ev.IsValid)
	assert.Equal(t, "가", ev.AttendeeNamesPreview)
}

func TestNamesPreview(t *testing.T) {
	assert.Equal(t, "", league.NamesPreview(nil, 2))
	assert.Equal(t, "가", league.NamesPreview([]string{"가"}, 2))
	assert.Equal(t, "가, 나", league.NamesPreview([]string{"가", "나"}, 2))
	assert.Equal(t, "가, 나…", league.NamesPreview([]string{"가", "나", "다"}, 2))
	assert.Equal(t, "가, 나…", league.NamesPreview([]string{"가", "", "나", "다"}, 2))
}
