package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alleyclub/club-server/league"
)

// Meeting is a numbered league session within a season.
type Meeting struct {
	ID          int64
	Season      int
	MeetingNo   int
	MeetingDate *string
}

// MeetingSummary is a meeting plus how many members are entered and how
// many have all three games recorded.
type MeetingSummary struct {
	Meeting
	ParticipantCount int
	CompleteCount    int
}

// SeasonResultRow is one (meeting, member) line of a season with the
// member's derived three-game total.
type SeasonResultRow struct {
	Season      int
	MeetingNo   int
	MeetingDate *string
	Name        string
	TotalPins   int
}

// ListMeetings returns a season's meetings ordered by meeting number.
func (s *Store) ListMeetings(ctx context.Context, season int) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, season, meeting_no, meeting_date
		FROM regular_meetings
		WHERE season = ?
		ORDER BY meeting_no ASC`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// GetMeeting returns a meeting by id, or nil when absent.
func (s *Store) GetMeeting(ctx context.Context, id int64) (*Meeting, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, season, meeting_no, meeting_date
		FROM regular_meetings WHERE id = ?`, id)

	var m Meeting
	var date sql.NullString
	err := row.Scan(&m.ID, &m.Season, &m.MeetingNo, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	m.MeetingDate = strOrNil(date)
	return &m, nil
}

// UpsertMeeting inserts a meeting keyed by (season, meeting_no). On
// conflict an incoming date replaces the stored one only when present;
// posting without a date never erases it.
func (s *Store) UpsertMeeting(ctx context.Context, season, meetingNo int, meetingDate *string) (*Meeting, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regular_meetings (season, meeting_no, meeting_date)
		VALUES (?, ?, ?)
		ON CONFLICT (season, meeting_no) DO UPDATE SET
			meeting_date = COALESCE(excluded.meeting_date, regular_meetings.meeting_date)`,
		season, meetingNo, nullStr(meetingDate))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert meeting: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, season, meeting_no, meeting_date
		FROM regular_meetings WHERE season = ? AND meeting_no = ?`,
		season, meetingNo)

	var m Meeting
	var date sql.NullString
	if err := row.Scan(&m.ID, &m.Season, &m.MeetingNo, &date); err != nil {
		return nil, fmt.Errorf("failed to load upserted meeting: %w", err)
	}
	m.MeetingDate = strOrNil(date)
	return &m, nil
}

// ListMeetingSummaries returns every meeting with participation and
// completion counts, most recent first (undated meetings last).
func (s *Store) ListMeetingSummaries(ctx context.Context, limit int) ([]MeetingSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH p AS (
			SELECT meeting_id, COUNT(*) AS participant_count
			FROM regular_results
			GROUP BY meeting_id
		),
		g AS (
			SELECT meeting_id, member_id, COUNT(*) AS games_filled
			FROM regular_games
			GROUP BY meeting_id, member_id
		),
		c AS (
			SELECT rr.meeting_id,
			       SUM(CASE WHEN COALESCE(g.games_filled, 0) = ? THEN 1 ELSE 0 END) AS complete_count
			FROM regular_results rr
			LEFT JOIN g ON g.meeting_id = rr.meeting_id AND g.member_id = rr.member_id
			GROUP BY rr.meeting_id
		)
		SELECT rm.id, rm.season, rm.meeting_no, rm.meeting_date,
		       COALESCE(p.participant_count, 0),
		       COALESCE(c.complete_count, 0)
		FROM regular_meetings rm
		LEFT JOIN p ON p.meeting_id = rm.id
		LEFT JOIN c ON c.meeting_id = rm.id
		ORDER BY rm.meeting_date IS NULL, rm.meeting_date DESC,
		         rm.season DESC, rm.meeting_no DESC
		LIMIT ?`, league.GamesPerMeeting, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting summaries: %w", err)
	}
	defer rows.Close()

	var summaries []MeetingSummary
	for rows.Next() {
		var ms MeetingSummary
		var date sql.NullString
		if err := rows.Scan(&ms.ID, &ms.Season, &ms.MeetingNo, &date,
			&ms.ParticipantCount, &ms.CompleteCount); err != nil {
			return nil, err
		}
		ms.MeetingDate = strOrNil(date)
		summaries = append(summaries, ms)
	}
	return summaries, rows.Err()
}

// AddParticipant enters a member into a meeting. Already entered is a
// no-op.
func (s *Store) AddParticipant(ctx context.Context, meetingID, memberID int64) error {
	now := nowText()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regular_results (meeting_id, member_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (meeting_id, member_id) DO NOTHING`,
		meetingID, memberID, now, now)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// RemoveParticipant removes a member from a meeting along with any game
// scores already recorded for them.
func (s *Store) RemoveParticipant(ctx context.Context, meetingID, memberID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM regular_games WHERE meeting_id = ? AND member_id = ?`,
		meetingID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove participant games: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM regular_results WHERE meeting_id = ? AND member_id = ?`,
		meetingID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// ListParticipants returns a meeting's entered members ordered by name.
func (s *Store) ListParticipants(ctx context.Context, meetingID int64) ([]league.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rr.member_id, m.name
		FROM regular_results rr
		JOIN members m ON m.id = rr.member_id
		WHERE rr.meeting_id = ?
		ORDER BY m.name ASC`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []league.Participant
	for rows.Next() {
		var p league.Participant
		if err := rows.Scan(&p.MemberID, &p.Name); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpsertGame records (or corrects) one game score.
func (s *Store) UpsertGame(ctx context.Context, meetingID, memberID int64, gameNo, score int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regular_games (meeting_id, member_id, game_no, score, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (meeting_id, member_id, game_no) DO UPDATE SET
			score = excluded.score,
			updated_at = excluded.updated_at`,
		meetingID, memberID, gameNo, score, nowText())
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	return nil
}

// DeleteGame clears one game score (partial entry, later correction).
func (s *Store) DeleteGame(ctx context.Context, meetingID, memberID int64, gameNo int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM regular_games
		WHERE meeting_id = ? AND member_id = ? AND game_no = ?`,
		meetingID, memberID, gameNo)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

// ListMeetingGames returns every recorded game of one meeting.
func (s *Store) ListMeetingGames(ctx context.Context, meetingID int64) ([]league.GameScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT member_id, game_no, score
		FROM regular_games
		WHERE meeting_id = ?
		ORDER BY member_id ASC, game_no ASC`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting games: %w", err)
	}
	defer rows.Close()

	var games []league.GameScore
	for rows.Next() {
		var g league.GameScore
		if err := rows.Scan(&g.MemberID, &g.GameNo, &g.Score); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// MemberMeetingTotal returns a participant's derived three-game total
// for one meeting.
func (s *Store) MemberMeetingTotal(ctx context.Context, meetingID, memberID int64) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(score), 0)
		FROM regular_games
		WHERE meeting_id = ? AND member_id = ?`, meetingID, memberID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to total games: %w", err)
	}
	return total, nil
}

// SeasonResults returns every participation row of a season with the
// derived three-game total. meetingNo narrows to one meeting when
// non-nil. Ordered for the season listing: meeting asc, total desc,
// name asc.
func (s *Store) SeasonResults(ctx context.Context, season int, meetingNo *int) ([]SeasonResultRow, error) {
	no := 0
	filter := 0
	if meetingNo != nil {
		no = *meetingNo
		filter = 1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rm.season, rm.meeting_no, rm.meeting_date, m.name,
		       COALESCE(SUM(rg.score), 0) AS total_pins
		FROM regular_results rr
		JOIN regular_meetings rm ON rm.id = rr.meeting_id
		JOIN members m ON m.id = rr.member_id
		LEFT JOIN regular_games rg
			ON rg.meeting_id = rr.meeting_id AND rg.member_id = rr.member_id
		WHERE rm.season = ?
		  AND (? = 0 OR rm.meeting_no = ?)
		GROUP BY rr.id
		ORDER BY rm.meeting_no ASC, total_pins DESC, m.name ASC`,
		season, filter, no)
	if err != nil {
		return nil, fmt.Errorf("failed to load season results: %w", err)
	}
	defer rows.Close()

	var results []SeasonResultRow
	for rows.Next() {
		var r SeasonResultRow
		var date sql.NullString
		if err := rows.Scan(&r.Season, &r.MeetingNo, &date, &r.Name, &r.TotalPins); err != nil {
			return nil, err
		}
		r.MeetingDate = strOrNil(date)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanMeeting(rows *sql.Rows) (Meeting, error) {
	var m Meeting
	var date sql.NullString
	if err := rows.Scan(&m.ID, &m.Season, &m.MeetingNo, &date); err != nil {
		return Meeting{}, err
	}
	m.MeetingDate = strOrNil(date)
	return m, nil
}
