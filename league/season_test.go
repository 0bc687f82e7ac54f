package league_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
)

func intp(n int) *int { return &n }

func TestAggregateSeason(t *testing.T) {
	results := []league.SeasonResult{
		{MeetingNo: 1, Name: "김철수", TotalPins: 600},
		{MeetingNo: 2, Name: "김철수", TotalPins: 540},
		{MeetingNo: 1, Name: "이영희", TotalPins: 660},
	}

	rows := league.AggregateSeason(results)
	require.Len(t, rows, 2)

	// 김철수: 1140 over 2 meetings, 이영희: 660 over 1.
	assert.Equal(t, "김철수", rows[0].Name)
	assert.Equal(t, 1140, rows[0].TotalPins)
	assert.Equal(t, 2, rows[0].AttendCount)
	assert.Equal(t, 6, rows[0].GamesPlayed)
	require.NotNil(t, rows[0].Average)
	assert.Equal(t, 190.0, *rows[0].Average) // 1140/6
	require.NotNil(t, rows[0].Level)
	assert.Equal(t, 7, *rows[0].Level)
	assert.Equal(t, map[int]int{1: 600, 2: 540}, rows[0].Scores)

	assert.Equal(t, "이영희", rows[1].Name)
	require.NotNil(t, rows[1].Average)
	assert.Equal(t, 220.0, *rows[1].Average) // 660/3
	assert.Equal(t, 10, *rows[1].Level)
}

func TestAggregateSeason_LevelUsesExactAverage(t *testing.T) {
	// 3601 pins over 10 meetings (30 games): the exact average
	// 120.033... sits above the level-1 band even though it reports
	// as 120.0.
	var results []league.SeasonResult
	for no := 1; no <= 10; no++ {
		pins := 360
		if no == 1 {
			pins = 361
		}
		results = append(results, league.SeasonResult{
			MeetingNo: no, Name: "김철수", TotalPins: pins,
		})
	}

	rows := league.AggregateSeason(results)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Average)
	assert.Equal(t, 120.0, *rows[0].Average)
	require.NotNil(t, rows[0].Level)
	assert.Equal(t, 2, *rows[0].Level)
}

func TestAggregateSeason_RepostedMeetingCountsOnce(t *testing.T) {
	rows := league.AggregateSeason([]league.SeasonResult{
		{MeetingNo: 1, Name: "김철수", TotalPins: 500},
		{MeetingNo: 1, Name: "김철수", TotalPins: 520},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].AttendCount)
}

func TestBuildLeaderboard(t *testing.T) {
	participants := []league.Participant{
		{MemberID: 1, Name: "김철수"},
		{MemberID: 2, Name: "이영희"},
		{MemberID: 3, Name: "박민수"},
	}
	games := []league.GameScore{
		{MemberID: 1, GameNo: 1, Score: 200},
		{MemberID: 1, GameNo: 2, Score: 180},
		{MemberID: 1, GameNo: 3, Score: 220},
		{MemberID: 2, GameNo: 1, Score: 250},
		{MemberID: 2, GameNo: 2, Score: 150},
	}

	rows := league.BuildLeaderboard(participants, games)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(1), rows[0].MemberID)
	assert.Equal(t, 600, rows[0].TotalPins)
	assert.Equal(t, 200.0, rows[0].Average)
	assert.Equal(t, intp(200), rows[0].Game1)
	assert.Equal(t, intp(180), rows[0].Game2)
	assert.Equal(t, intp(220), rows[0].Game3)

	// Missing games count as zero toward the total.
	assert.Equal(t, int64(2), rows[1].MemberID)
	assert.Equal(t, 400, rows[1].TotalPins)
	assert.Equal(t, 133.3, rows[1].Average)
	assert.Nil(t, rows[1].Game3)

	// No games at all still lists the participant.
	assert.Equal(t, int64(3), rows[2].MemberID)
	assert.Equal(t, 0, rows[2].TotalPins)
	assert.Equal(t, 0.0, rows[2].Average)
}

func TestBuildLeaderboard_IgnoresOutOfRangeGameNo(t *testing.T) {
	rows := league.BuildLeaderboard(
		[]league.Participant{{MemberID: 1, Name: "가"}},
		[]league.GameScore{{MemberID: 1, GameNo: 4, Score: 300}})
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].TotalPins)
}
