package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alleyclub/club-server/league"
)

// BallUsage is one line of the monthly ball histogram.
type BallUsage struct {
	BallName string
	UsedDays int
}

// MonthlySummary is the headline block of the monthly report.
type MonthlySummary struct {
	TotalDays    int
	TotalGames   int
	AvgScore     *int
	MaxScore     *int
	MinScore     *int
	Games200Plus int
}

// PatternAggregate is the monthly per-pattern block.
type PatternAggregate struct {
	PatternName  string
	Days         int
	Games        int
	AvgScore     *int
	MaxScore     *int
	Games200Plus int
}

// DailyAggregate is the monthly per-day block.
type DailyAggregate struct {
	LogDate  string
	Games    int
	AvgScore *int
	MaxScore *int
}

// =============================================================================
// BUNG / RANKING REPORT QUERIES
// =============================================================================

// ValidBungCounts returns member_id -> number of valid bungs attended
// inside the range. from inclusive, to exclusive, either may be nil.
func (s *Store) ValidBungCounts(ctx context.Context, from, to *time.Time) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH cnt AS (
			SELECT bung_id, COUNT(*) AS attendee_count
			FROM bung_attendees
			GROUP BY bung_id
		),
		valid AS (
			SELECT b.id
			FROM bungs b
			JOIN cnt ON cnt.bung_id = b.id
			WHERE cnt.attendee_count >= ?
			  AND (? = '' OR b.bung_at >= ?)
			  AND (? = '' OR b.bung_at < ?)
		)
		SELECT ba.member_id, COUNT(*)
		FROM bung_attendees ba
		JOIN valid v ON v.id = ba.bung_id
		GROUP BY ba.member_id`,
		league.MinValidAttendees,
		timeArg(from), timeArg(from), timeArg(to), timeArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to count valid bungs: %w", err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

// RegularAttendanceCounts returns member_id -> regular meetings
// attended, filtered by meeting_date in [fromDate, toDate). Empty
// strings disable a bound. Undated meetings never match a bounded
// filter.
func (s *Store) RegularAttendanceCounts(ctx context.Context, fromDate, toDate string) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rr.member_id, COUNT(*)
		FROM regular_results rr
		JOIN regular_meetings rm ON rm.id = rr.meeting_id
		WHERE (? = '' OR (rm.meeting_date IS NOT NULL AND rm.meeting_date >= ?))
		  AND (? = '' OR (rm.meeting_date IS NOT NULL AND rm.meeting_date < ?))
		GROUP BY rr.member_id`,
		fromDate, fromDate, toDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count regular attendance: %w", err)
	}
	defer rows.Close()
	return scanCounts(rows)
}

// BungSummary returns how many bungs fell in the range and how many of
// them were valid.
func (s *Store) BungSummary(ctx context.Context, from, to *time.Time) (total, valid int, err error) {
	err = s.db.QueryRowContext(ctx, `
		WITH base AS (
			SELECT b.id
			FROM bungs b
			WHERE (? = '' OR b.bung_at >= ?)
			  AND (? = '' OR b.bung_at < ?)
		),
		cnt AS (
			SELECT bung_id, COUNT(*) AS attendee_count
			FROM bung_attendees
			GROUP BY bung_id
		)
		SELECT
			(SELECT COUNT(*) FROM base),
			(SELECT COUNT(*) FROM base b
			 JOIN cnt ON cnt.bung_id = b.id
			 WHERE cnt.attendee_count >= ?)`,
		timeArg(from), timeArg(from), timeArg(to), timeArg(to),
		league.MinValidAttendees).Scan(&total, &valid)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to summarize bungs: %w", err)
	}
	return total, valid, nil
}

// BungsBetween returns bungs with bung_at in [from, to), oldest first,
// with attendee counts. Used by the calendar and day reports.
func (s *Store) BungsBetween(ctx context.Context, from, to time.Time) ([]BungWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.bung_at, b.title, b.center_name, b.note, b.created_at,
		       COALESCE(cnt.attendee_count, 0)
		FROM bungs b
		LEFT JOIN (
			SELECT bung_id, COUNT(*) AS attendee_count
			FROM bung_attendees
			GROUP BY bung_id
		) cnt ON cnt.bung_id = b.id
		WHERE b.bung_at >= ? AND b.bung_at < ?
		ORDER BY b.bung_at ASC`,
		formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list bungs in range: %w", err)
	}
	defer rows.Close()
	return scanBungsWithCount(rows)
}

// MemberBungs returns the bungs one member attended in the range,
// newest first, with validity figures.
func (s *Store) MemberBungs(ctx context.Context, memberID int64, from, to *time.Time) ([]BungWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.bung_at, b.title, b.center_name, b.note, b.created_at,
		       COALESCE(cnt.attendee_count, 0)
		FROM bungs b
		JOIN bung_attendees ba ON ba.bung_id = b.id AND ba.member_id = ?
		LEFT JOIN (
			SELECT bung_id, COUNT(*) AS attendee_count
			FROM bung_attendees
			GROUP BY bung_id
		) cnt ON cnt.bung_id = b.id
		WHERE (? = '' OR b.bung_at >= ?)
		  AND (? = '' OR b.bung_at < ?)
		ORDER BY b.bung_at DESC`,
		memberID, timeArg(from), timeArg(from), timeArg(to), timeArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to list member bungs: %w", err)
	}
	defer rows.Close()
	return scanBungsWithCount(rows)
}

// AttendeeNames returns a bung's attendee names ordered for display.
func (s *Store) AttendeeNames(ctx context.Context, bungID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.name
		FROM bung_attendees ba
		JOIN members m ON m.id = ba.member_id
		WHERE ba.bung_id = ?
		ORDER BY m.name ASC`, bungID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendee names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// MeetingsBetween returns dated meetings with meeting_date in
// [fromDate, toDate), date then meeting_no ascending.
func (s *Store) MeetingsBetween(ctx context.Context, fromDate, toDate string) ([]Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, season, meeting_no, meeting_date
		FROM regular_meetings
		WHERE meeting_date IS NOT NULL
		  AND meeting_date >= ? AND meeting_date < ?
		ORDER BY meeting_date ASC, meeting_no ASC`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings in range: %w", err)
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

// =============================================================================
// MONTHLY PRACTICE REPORT QUERIES
// =============================================================================

// monthLogFilter is the shared base clause: logs in [start, end),
// optionally narrowed to one display name ('' means everyone).
const monthLogFilter = `
	SELECT d.id, d.pattern_id, d.log_date
	FROM daily_logs d
	JOIN users u ON u.id = d.user_id
	WHERE d.log_date >= ? AND d.log_date < ?
	  AND (? = '' OR u.display_name = ?)`

// MonthlyReportSummary aggregates one month of practice logs.
func (s *Store) MonthlyReportSummary(ctx context.Context, start, end, name string) (MonthlySummary, error) {
	var sum MonthlySummary
	var avg sql.NullFloat64
	var max, min sql.NullInt64

	err := s.db.QueryRowContext(ctx, `
		WITH base_logs AS (`+monthLogFilter+`)
		SELECT
			(SELECT COUNT(*) FROM base_logs),
			(SELECT COUNT(*) FROM games g JOIN base_logs bl ON bl.id = g.log_id),
			(SELECT ROUND(AVG(g.score)) FROM games g JOIN base_logs bl ON bl.id = g.log_id),
			(SELECT MAX(g.score) FROM games g JOIN base_logs bl ON bl.id = g.log_id),
			(SELECT MIN(g.score) FROM games g JOIN base_logs bl ON bl.id = g.log_id),
			(SELECT COUNT(*) FROM games g JOIN base_logs bl ON bl.id = g.log_id WHERE g.score >= 200)`,
		start, end, name, name).
		Scan(&sum.TotalDays, &sum.TotalGames, &avg, &max, &min, &sum.Games200Plus)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to build monthly summary: %w", err)
	}
	sum.AvgScore = intOrNil(avg)
	sum.MaxScore = int64OrNil(max)
	sum.MinScore = int64OrNil(min)
	return sum, nil
}

// TopBalls returns the month's ball-usage histogram, most-used first,
// capped at limit.
func (s *Store) TopBalls(ctx context.Context, start, end, name string, limit int) ([]BallUsage, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH base_logs AS (`+monthLogFilter+`)
		SELECT b.ball_name, COUNT(*) AS used_days
		FROM daily_balls b
		JOIN base_logs bl ON bl.id = b.log_id
		GROUP BY b.ball_name
		ORDER BY used_days DESC, b.ball_name ASC
		LIMIT ?`, start, end, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build ball histogram: %w", err)
	}
	defer rows.Close()

	var balls []BallUsage
	for rows.Next() {
		var b BallUsage
		if err := rows.Scan(&b.BallName, &b.UsedDays); err != nil {
			return nil, err
		}
		balls = append(balls, b)
	}
	return balls, rows.Err()
}

// PatternAggregates returns the month's per-pattern block. Logs without
// a pattern are grouped under the "(미선택)" label.
func (s *Store) PatternAggregates(ctx context.Context, start, end, name string, limit int) ([]PatternAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH base_logs AS (`+monthLogFilter+`)
		SELECT COALESCE(p.name, '(미선택)') AS pattern_name,
		       COUNT(DISTINCT bl.id) AS days,
		       COUNT(g.id) AS games,
		       ROUND(AVG(g.score)),
		       MAX(g.score),
		       COALESCE(SUM(CASE WHEN g.score >= 200 THEN 1 ELSE 0 END), 0)
		FROM base_logs bl
		LEFT JOIN patterns p ON p.id = bl.pattern_id
		LEFT JOIN games g ON g.log_id = bl.id
		GROUP BY pattern_name
		ORDER BY games DESC, pattern_name ASC
		LIMIT ?`, start, end, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []PatternAggregate
	for rows.Next() {
		var a PatternAggregate
		var avg sql.NullFloat64
		var max sql.NullInt64
		if err := rows.Scan(&a.PatternName, &a.Days, &a.Games, &avg, &max, &a.Games200Plus); err != nil {
			return nil, err
		}
		a.AvgScore = intOrNil(avg)
		a.MaxScore = int64OrNil(max)
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// DailyAggregates returns the month's per-day block, newest first.
func (s *Store) DailyAggregates(ctx context.Context, start, end, name string) ([]DailyAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		WITH base_logs AS (`+monthLogFilter+`)
		SELECT bl.log_date,
		       COUNT(g.id) AS games,
		       ROUND(AVG(g.score)),
		       MAX(g.score)
		FROM base_logs bl
		LEFT JOIN games g ON g.log_id = bl.id
		GROUP BY bl.log_date
		ORDER BY bl.log_date DESC`, start, end, name, name)
	if err != nil {
		return nil, fmt.Errorf("failed to build daily aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []DailyAggregate
	for rows.Next() {
		var a DailyAggregate
		var avg sql.NullFloat64
		var max sql.NullInt64
		if err := rows.Scan(&a.LogDate, &a.Games, &avg, &max); err != nil {
			return nil, err
		}
		a.AvgScore = intOrNil(avg)
		a.MaxScore = int64OrNil(max)
		aggs = append(aggs, a)
	}
	return aggs, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanCounts(rows *sql.Rows) (map[int64]int, error) {
	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func scanBungsWithCount(rows *sql.Rows) ([]BungWithCount, error) {
	var bungs []BungWithCount
	for rows.Next() {
		var b BungWithCount
		var at, created string
		var title, center, note sql.NullString
		if err := rows.Scan(&b.ID, &at, &title, &center, &note, &created, &b.AttendeeCount); err != nil {
			return nil, err
		}
		var err error
		if b.BungAt, err = parseTime(at); err != nil {
			return nil, err
		}
		if b.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		b.Title = strOrNil(title)
		b.CenterName = strOrNil(center)
		b.Note = strOrNil(note)
		bungs = append(bungs, b)
	}
	return bungs, rows.Err()
}

func intOrNil(f sql.NullFloat64) *int {
	if !f.Valid {
		return nil
	}
	n := int(f.Float64)
	return &n
}

func int64OrNil(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	n := int(i.Int64)
	return &n
}
