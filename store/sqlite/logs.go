package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Pattern is a lane-condition lookup row.
type Pattern struct {
	ID       int64
	Name     string
	LengthFt *int
	Note     *string
}

// GameEntry is one game of a practice log.
type GameEntry struct {
	GameNo int
	Score  int
}

// DailyLogRow is one practice log with its nested games and balls.
type DailyLogRow struct {
	LogID         int64
	LogDate       string
	StartDatetime time.Time
	CenterName    *string
	Memo          *string
	PatternID     *int64
	PatternName   *string
	Games         []GameEntry
	Balls         []string
}

// ListPatterns returns the lane-condition lookup list ordered by name.
func (s *Store) ListPatterns(ctx context.Context) ([]Pattern, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, length_ft, note FROM patterns ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []Pattern
	for rows.Next() {
		var p Pattern
		var length sql.NullInt64
		var note sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &length, &note); err != nil {
			return nil, err
		}
		if length.Valid {
			n := int(length.Int64)
			p.LengthFt = &n
		}
		p.Note = strOrNil(note)
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// UpsertUser returns the id of a practice-log identity, creating it on
// first sight of the display name.
func (s *Store) UpsertUser(ctx context.Context, displayName string) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (display_name)
		VALUES (?)
		ON CONFLICT (display_name) DO UPDATE SET display_name = excluded.display_name`,
		displayName)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert user: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM users WHERE display_name = ?`, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to load upserted user: %w", err)
	}
	return id, nil
}

// UpsertDailyLog overwrites the non-identity fields of the (user, date)
// log and returns its id.
func (s *Store) UpsertDailyLog(ctx context.Context, userID int64, logDate string, start time.Time, centerName *string, patternID *int64, memo *string) (int64, error) {
	var pid sql.NullInt64
	if patternID != nil {
		pid = sql.NullInt64{Int64: *patternID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_logs (user_id, log_date, start_datetime, center_name, pattern_id, memo)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			start_datetime = excluded.start_datetime,
			center_name = excluded.center_name,
			pattern_id = excluded.pattern_id,
			memo = excluded.memo`,
		userID, logDate, formatTime(start), nullStr(centerName), pid, nullStr(memo))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert daily log: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM daily_logs WHERE user_id = ? AND log_date = ?`,
		userID, logDate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to load upserted log: %w", err)
	}
	return id, nil
}

// ReplaceBalls wipes and rewrites the balls-used list of one log.
func (s *Store) ReplaceBalls(ctx context.Context, logID int64, balls []string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM daily_balls WHERE log_id = ?`, logID); err != nil {
		return fmt.Errorf("failed to clear balls: %w", err)
	}
	for _, name := range balls {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO daily_balls (log_id, ball_name)
			VALUES (?, ?)
			ON CONFLICT (log_id, ball_name) DO NOTHING`, logID, name)
		if err != nil {
			return fmt.Errorf("failed to insert ball: %w", err)
		}
	}
	return nil
}

// ReplaceGames wipes and rewrites the games of one log.
func (s *Store) ReplaceGames(ctx context.Context, logID int64, games []GameEntry) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM games WHERE log_id = ?`, logID); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}
	for _, g := range games {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO games (log_id, game_no, score)
			VALUES (?, ?, ?)`, logID, g.GameNo, g.Score)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}
	}
	return nil
}

// MonthLogs returns one display name's logs inside [monthStart,
// monthEnd), newest first, with games (game_no asc) and balls (name
// asc) attached.
func (s *Store) MonthLogs(ctx context.Context, displayName, monthStart, monthEnd string) ([]DailyLogRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.log_date, d.start_datetime, d.center_name, d.memo,
		       p.id, p.name
		FROM daily_logs d
		JOIN users u ON u.id = d.user_id
		LEFT JOIN patterns p ON p.id = d.pattern_id
		WHERE u.display_name = ?
		  AND d.log_date >= ?
		  AND d.log_date < ?
		ORDER BY d.log_date DESC`, displayName, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list month logs: %w", err)
	}
	defer rows.Close()

	var logs []DailyLogRow
	for rows.Next() {
		var l DailyLogRow
		var start string
		var center, memo, patternName sql.NullString
		var patternID sql.NullInt64
		if err := rows.Scan(&l.LogID, &l.LogDate, &start, &center, &memo,
			&patternID, &patternName); err != nil {
			return nil, err
		}
		if l.StartDatetime, err = parseTime(start); err != nil {
			return nil, err
		}
		l.CenterName = strOrNil(center)
		l.Memo = strOrNil(memo)
		if patternID.Valid {
			id := patternID.Int64
			l.PatternID = &id
		}
		l.PatternName = strOrNil(patternName)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range logs {
		if logs[i].Games, err = s.logGames(ctx, logs[i].LogID); err != nil {
			return nil, err
		}
		if logs[i].Balls, err = s.logBalls(ctx, logs[i].LogID); err != nil {
			return nil, err
		}
	}
	return logs, nil
}

func (s *Store) logGames(ctx context.Context, logID int64) ([]GameEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_no, score FROM games
		WHERE log_id = ? ORDER BY game_no ASC`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log games: %w", err)
	}
	defer rows.Close()

	games := []GameEntry{}
	for rows.Next() {
		var g GameEntry
		if err := rows.Scan(&g.GameNo, &g.Score); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *Store) logBalls(ctx context.Context, logID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ball_name FROM daily_balls
		WHERE log_id = ? ORDER BY ball_name ASC`, logID)
	if err != nil {
		return nil, fmt.Errorf("failed to load log balls: %w", err)
	}
	defer rows.Close()

	balls := []string{}
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, err
		}
		balls = append(balls, b)
	}
	return balls, rows.Err()
}
