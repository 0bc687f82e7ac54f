/*
store_test.go - Store tests against an in-memory database

Tests for:
- Member uniqueness and soft-disable
- Bung upsert keyed on timestamp, attendee cascade
- Regular-meeting participation, game upserts, derived totals
- Practice-log wholesale replacement
*/
package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alleyclub/club-server/league"
	"github.com/alleyclub/club-server/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustMember(t *testing.T, store *sqlite.Store, name string) *sqlite.Member {
	m, err := store.CreateMember(context.Background(), name)
	require.NoError(t, err)
	return m
}

func strp(s string) *string { return &s }

// =============================================================================
// MEMBERS
// =============================================================================

func TestCreateMember_DuplicateName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateMember(ctx, "김철수")
	require.NoError(t, err)

	_, err = store.CreateMember(ctx, "김철수")
	assert.ErrorIs(t, err, sqlite.ErrDuplicateName)
}

func TestUpsertMemberByName_ReturnsExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := mustMember(t, store, "김철수")
	again, err := store.UpsertMemberByName(ctx, "김철수")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestDeactivateMember_SoftDisable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := mustMember(t, store, "김철수")
	ok, err := store.DeactivateMember(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Row survives, just inactive.
	got, err := store.GetMember(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)

	active, err := store.ListMembers(ctx, "", false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListMembers(ctx, "", true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	ok, err = store.DeactivateMember(ctx, 99999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateMember_AbsentID(t *testing.T) {
	store := newTestStore(t)
	name := "새이름"
	got, err := store.UpdateMember(context.Background(), 12345, &name, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// BUNGS
// =============================================================================

func TestUpsertBung_SameTimestampKeepsID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2026, 1, 19, 20, 0, 0, 0, league.KST)
	first, err := store.UpsertBung(ctx, at, strp("금요 벙"), strp("레인보우"), nil)
	require.NoError(t, err)

	second, err := store.UpsertBung(ctx, at, strp("바뀐 제목"), nil, strp("메모"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same instant upserts the same row")
	require.NotNil(t, second.Title)
	assert.Equal(t, "바뀐 제목", *second.Title)

	bungs, err := store.ListBungs(ctx, nil, nil, 10)
	require.NoError(t, err)
	assert.Len(t, bungs, 1)
}

func TestDeleteBung_CascadesAttendees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := mustMember(t, store, "김철수")
	at := time.Date(2026, 1, 19, 20, 0, 0, 0, league.KST)
	bung, err := store.UpsertBung(ctx, at, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.AddAttendee(ctx, bung.ID, m.ID))

	require.NoError(t, store.DeleteBung(ctx, bung.ID))

	attendees, err := store.ListAttendees(ctx, bung.ID)
	require.NoError(t, err)
	assert.Empty(t, attendees)
}

func TestAddAttendee_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := mustMember(t, store, "김철수")
	at := time.Date(2026, 1, 19, 20, 0, 0, 0, league.KST)
	bung, err := store.UpsertBung(ctx, at, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.AddAttendee(ctx, bung.ID, m.ID))
	require.NoError(t, store.AddAttendee(ctx, bung.ID, m.ID))

	count, err := store.CountAttendees(ctx, bung.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestValidBungCounts_Threshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var members []*sqlite.Member
	for _, name := range []string{"가", "나", "다", "라"} {
		members = append(members, mustMember(t, store, name))
	}

	// One bung with 4 attendees (valid), one with 3 (invalid).
	valid, err := store.UpsertBung(ctx,
		time.Date(2026, 1, 19, 20, 0, 0, 0, league.KST), nil, nil, nil)
	require.NoError(t, err)
	invalid, err := store.UpsertBung(ctx,
		time.Date(2026, 1, 20, 20, 0, 0, 0, league.KST), nil, nil, nil)
	require.NoError(t, err)

	for _, m := range members {
		require.NoError(t, store.AddAttendee(ctx, valid.ID, m.ID))
	}
	for _, m := range members[:3] {
		require.NoError(t, store.AddAttendee(ctx, invalid.ID, m.ID))
	}

	counts, err := store.ValidBungCounts(ctx, nil, nil)
	require.NoError(t, err)
	for _, m := range members {
		assert.Equal(t, 1, counts[m.ID], "only the valid bung counts for %s", m.Name)
	}

	total, validCount, err := store.BungSummary(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, validCount)
}

// =============================================================================
// REGULAR MEETINGS
// =============================================================================

func TestUpsertMeeting_NullDateKeepsStored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertMeeting(ctx, 2026, 1, strp("2026-01-10"))
	require.NoError(t, err)

	second, err := store.UpsertMeeting(ctx, 2026, 1, nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.MeetingDate)
	assert.Equal(t, "2026-01-10", *second.MeetingDate)
}

func TestRemoveParticipant_DropsGames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := mustMember(t, store, "김철수")
	meeting, err := store.UpsertMeeting(ctx, 2026, 1, strp("2026-01-10"))
	require.NoError(t, err)

	require.NoError(t, store.AddParticipant(ctx, meeting.ID, m.ID))
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 1, 200))
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 2, 180))

	require.NoError(t, store.RemoveParticipant(ctx, meeting.ID, m.ID))

	games, err := store.ListMeetingGames(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Empty(t, games)

	participants, err := store.ListParticipants(ctx, meeting.ID)
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestSeasonResults_TotalsDerivedFromGames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	m := mustMember(t, store, "김철수")
	meeting, err := store.UpsertMeeting(ctx, 2026, 1, strp("2026-01-10"))
	require.NoError(t, err)
	require.NoError(t, store.AddParticipant(ctx, meeting.ID, m.ID))
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 1, 200))
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 2, 180))
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 3, 220))

	// Re-entering a game replaces the old score in the total.
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, m.ID, 3, 210))

	results, err := store.SeasonResults(ctx, 2026, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 590, results[0].TotalPins)

	total, err := store.MemberMeetingTotal(ctx, meeting.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 590, total)
}

func TestListMeetingSummaries_CompleteCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	complete := mustMember(t, store, "김철수")
	partial := mustMember(t, store, "이영희")
	meeting, err := store.UpsertMeeting(ctx, 2026, 1, strp("2026-01-10"))
	require.NoError(t, err)

	require.NoError(t, store.AddParticipant(ctx, meeting.ID, complete.ID))
	require.NoError(t, store.AddParticipant(ctx, meeting.ID, partial.ID))
	for gameNo := 1; gameNo <= league.GamesPerMeeting; gameNo++ {
		require.NoError(t, store.UpsertGame(ctx, meeting.ID, complete.ID, gameNo, 180))
	}
	require.NoError(t, store.UpsertGame(ctx, meeting.ID, partial.ID, 1, 180))

	summaries, err := store.ListMeetingSummaries(ctx, 50)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].ParticipantCount)
	assert.Equal(t, 1, summaries[0].CompleteCount)
}

// =============================================================================
// PRACTICE LOGS
// =============================================================================

func TestDailyLog_ResaveReplacesGamesAndBalls(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	userID, err := store.UpsertUser(ctx, "김철수")
	require.NoError(t, err)

	start := time.Date(2026, 1, 19, 22, 0, 0, 0, league.KST)
	logID, err := store.UpsertDailyLog(ctx, userID, "2026-01-19", start, strp("레인보우"), nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.ReplaceBalls(ctx, logID, []string{"볼A", "볼B"}))
	require.NoError(t, store.ReplaceGames(ctx, logID, []sqlite.GameEntry{
		{GameNo: 1, Score: 180}, {GameNo: 2, Score: 200},
	}))

	// Re-save the same (user, date) with different contents.
	logID2, err := store.UpsertDailyLog(ctx, userID, "2026-01-19", start, nil, nil, strp("메모"))
	require.NoError(t, err)
	assert.Equal(t, logID, logID2)
	require.NoError(t, store.ReplaceBalls(ctx, logID2, []string{"볼C"}))
	require.NoError(t, store.ReplaceGames(ctx, logID2, []sqlite.GameEntry{{GameNo: 1, Score: 210}}))

	logs, err := store.MonthLogs(ctx, "김철수", "2026-01-01", "2026-02-01")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"볼C"}, logs[0].Balls)
	require.Len(t, logs[0].Games, 1)
	assert.Equal(t, 210, logs[0].Games[0].Score)
}

func TestMonthlyReportSummary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	userID, err := store.UpsertUser(ctx, "김철수")
	require.NoError(t, err)
	start := time.Date(2026, 1, 19, 22, 0, 0, 0, league.KST)
	logID, err := store.UpsertDailyLog(ctx, userID, "2026-01-19", start, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceGames(ctx, logID, []sqlite.GameEntry{
		{GameNo: 1, Score: 180}, {GameNo: 2, Score: 210}, {GameNo: 3, Score: 150},
	}))

	sum, err := store.MonthlyReportSummary(ctx, "2026-01-01", "2026-02-01", "김철수")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalDays)
	assert.Equal(t, 3, sum.TotalGames)
	require.NotNil(t, sum.AvgScore)
	assert.Equal(t, 180, *sum.AvgScore)
	require.NotNil(t, sum.MaxScore)
	assert.Equal(t, 210, *sum.MaxScore)
	require.NotNil(t, sum.MinScore)
	assert.Equal(t, 150, *sum.MinScore)
	assert.Equal(t, 1, sum.Games200Plus)

	// A name with no logs yields empty, not an error.
	empty, err := store.MonthlyReportSummary(ctx, "2026-01-01", "2026-02-01", "없는사람")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalDays)
	assert.Nil(t, empty.AvgScore)
}

func TestSeedPatterns(t *testing.T) {
	store := newTestStore(t)
	patterns, err := store.ListPatterns(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, patterns)
	for _, p := range patterns {
		assert.NotEmpty(t, p.Name)
	}
}
