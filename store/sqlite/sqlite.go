/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Implements every query the handlers need using database/sql with
  parameterized statements. The same patterns apply to PostgreSQL,
  with only minor SQL dialect differences.

KEY TABLES:
  members:          club roster (soft-disabled, never row-deleted)
  bungs:            ad-hoc meetups, natural key bung_at
  bung_attendees:   (bung, member) join, cascades with its bung
  regular_meetings: numbered league sessions, natural key (season, meeting_no)
  regular_results:  meeting participation, natural key (meeting, member)
  regular_games:    per-game scores, natural key (meeting, member, game_no)
  users/daily_logs/daily_balls/games: personal practice logs
  patterns:         lane-condition lookup data (seeded)

UPSERT POLICY:
  Natural-key writes use INSERT ... ON CONFLICT DO UPDATE, overwriting
  only the mutable fields. Idempotent adds (attendance, participation)
  use ON CONFLICT DO NOTHING.

TIME STORAGE:
  Instants are stored as RFC3339 UTC text, so lexicographic comparison
  in SQL equals chronological comparison. Calendar dates are YYYY-MM-DD
  text. Rendering in the club timezone happens in the league package,
  never here.

CONCURRENCY:
  Each handler issues independent statements; there is no multi-statement
  transaction wrapping. Consistency rests on the uniqueness constraints
  and per-statement atomicity of SQLite (WAL mode, foreign keys on).

USAGE:
  store, err := sqlite.New("./data/club.db")   // ":memory:" for tests
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrDuplicateName is returned when a member name collides with an
// existing row. Detected by matching the driver's unique-constraint
// message.
var ErrDuplicateName = fmt.Errorf("duplicate name")

// Store wraps the SQLite connection pool.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema and seeds the pattern lookup table.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bungs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bung_at TEXT NOT NULL UNIQUE,
		title TEXT,
		center_name TEXT,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bung_attendees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bung_id INTEGER NOT NULL REFERENCES bungs(id) ON DELETE CASCADE,
		member_id INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		joined_at TEXT NOT NULL,
		UNIQUE (bung_id, member_id)
	);
	CREATE INDEX IF NOT EXISTS idx_bung_attendees_member
		ON bung_attendees(member_id);

	CREATE TABLE IF NOT EXISTS regular_meetings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		season INTEGER NOT NULL,
		meeting_no INTEGER NOT NULL,
		meeting_date TEXT,
		UNIQUE (season, meeting_no)
	);

	CREATE TABLE IF NOT EXISTS regular_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		meeting_id INTEGER NOT NULL REFERENCES regular_meetings(id) ON DELETE CASCADE,
		member_id INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (meeting_id, member_id)
	);

	CREATE TABLE IF NOT EXISTS regular_games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		meeting_id INTEGER NOT NULL REFERENCES regular_meetings(id) ON DELETE CASCADE,
		member_id INTEGER NOT NULL REFERENCES members(id) ON DELETE CASCADE,
		game_no INTEGER NOT NULL,
		score INTEGER NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (meeting_id, member_id, game_no)
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		display_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS patterns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		length_ft INTEGER,
		note TEXT
	);

	CREATE TABLE IF NOT EXISTS daily_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		log_date TEXT NOT NULL,
		start_datetime TEXT NOT NULL,
		center_name TEXT,
		pattern_id INTEGER REFERENCES patterns(id),
		memo TEXT,
		UNIQUE (user_id, log_date)
	);

	CREATE TABLE IF NOT EXISTS daily_balls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_id INTEGER NOT NULL REFERENCES daily_logs(id) ON DELETE CASCADE,
		ball_name TEXT NOT NULL,
		UNIQUE (log_id, ball_name)
	);

	CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_id INTEGER NOT NULL REFERENCES daily_logs(id) ON DELETE CASCADE,
		game_no INTEGER NOT NULL,
		score INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_games_log ON games(log_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seedPatterns()
}

// seedPatterns inserts the default lane-condition lookup rows once.
func (s *Store) seedPatterns() error {
	defaults := []struct {
		name   string
		length int
		note   string
	}{
		{"하우스", 40, "일반 하우스 패턴"},
		{"Shark", 48, "PBA 동물 패턴"},
		{"Cheetah", 33, "PBA 동물 패턴"},
		{"Scorpion", 41, "PBA 동물 패턴"},
		{"Chameleon", 39, "PBA 동물 패턴"},
	}
	for _, p := range defaults {
		_, err := s.db.Exec(`
			INSERT INTO patterns (name, length_ft, note)
			VALUES (?, ?, ?)
			ON CONFLICT (name) DO NOTHING`,
			p.name, p.length, p.note)
		if err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// formatTime stores an instant as RFC3339 UTC text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads an RFC3339 text column back into a time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func nowText() string {
	return formatTime(time.Now())
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func strOrNil(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func isUniqueViolation(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+constraint)
}
