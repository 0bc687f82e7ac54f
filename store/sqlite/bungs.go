package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Bung is an ad-hoc meetup row. The scheduled instant is its natural
// key: posting the same bung_at again overwrites title/center/note and
// keeps the id.
type Bung struct {
	ID         int64
	BungAt     time.Time
	Title      *string
	CenterName *string
	Note       *string
	CreatedAt  time.Time
}

// BungWithCount is a bung plus its derived attendance figures.
type BungWithCount struct {
	Bung
	AttendeeCount int
}

// Attendee is one member on a bung's roster.
type Attendee struct {
	BungID   int64
	MemberID int64
	Name     string
	JoinedAt time.Time
}

// ListBungs returns bungs newest-first with attendee counts. from is
// inclusive, to exclusive; either may be nil.
func (s *Store) ListBungs(ctx context.Context, from, to *time.Time, limit int) ([]BungWithCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.bung_at, b.title, b.center_name, b.note, b.created_at,
		       COALESCE(cnt.attendee_count, 0)
		FROM bungs b
		LEFT JOIN (
			SELECT bung_id, COUNT(*) AS attendee_count
			FROM bung_attendees
			GROUP BY bung_id
		) cnt ON cnt.bung_id = b.id
		WHERE (? = '' OR b.bung_at >= ?)
		  AND (? = '' OR b.bung_at < ?)
		ORDER BY b.bung_at DESC
		LIMIT ?`,
		timeArg(from), timeArg(from), timeArg(to), timeArg(to), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bungs: %w", err)
	}
	defer rows.Close()
	return scanBungsWithCount(rows)
}

// UpsertBung inserts a bung at the given instant, overwriting the
// mutable fields when one already exists there.
func (s *Store) UpsertBung(ctx context.Context, at time.Time, title, centerName, note *string) (*Bung, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bungs (bung_at, title, center_name, note, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (bung_at) DO UPDATE SET
			title = excluded.title,
			center_name = excluded.center_name,
			note = excluded.note`,
		formatTime(at), nullStr(title), nullStr(centerName), nullStr(note), nowText())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bung: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, bung_at, title, center_name, note, created_at
		FROM bungs WHERE bung_at = ?`, formatTime(at))

	var b Bung
	var atText, created string
	var titleNS, centerNS, noteNS sql.NullString
	if err := row.Scan(&b.ID, &atText, &titleNS, &centerNS, &noteNS, &created); err != nil {
		return nil, fmt.Errorf("failed to load upserted bung: %w", err)
	}
	if b.BungAt, err = parseTime(atText); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	b.Title = strOrNil(titleNS)
	b.CenterName = strOrNil(centerNS)
	b.Note = strOrNil(noteNS)
	return &b, nil
}

// DeleteBung hard-deletes a bung; its attendee rows go with it via the
// foreign-key cascade.
func (s *Store) DeleteBung(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM bungs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete bung: %w", err)
	}
	return nil
}

// ListAttendees returns a bung's roster ordered by join time, then name.
func (s *Store) ListAttendees(ctx context.Context, bungID int64) ([]Attendee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ba.bung_id, ba.member_id, m.name, ba.joined_at
		FROM bung_attendees ba
		JOIN members m ON m.id = ba.member_id
		WHERE ba.bung_id = ?
		ORDER BY ba.joined_at ASC, m.name ASC`, bungID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	defer rows.Close()

	var attendees []Attendee
	for rows.Next() {
		var a Attendee
		var joined string
		if err := rows.Scan(&a.BungID, &a.MemberID, &a.Name, &joined); err != nil {
			return nil, err
		}
		if a.JoinedAt, err = parseTime(joined); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

// AddAttendee marks a member as attending a bung. Already attending is
// a no-op.
func (s *Store) AddAttendee(ctx context.Context, bungID, memberID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bung_attendees (bung_id, member_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (bung_id, member_id) DO NOTHING`,
		bungID, memberID, nowText())
	if err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	return nil
}

// RemoveAttendee takes a member off a bung's roster.
func (s *Store) RemoveAttendee(ctx context.Context, bungID, memberID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM bung_attendees WHERE bung_id = ? AND member_id = ?`,
		bungID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove attendee: %w", err)
	}
	return nil
}

// CountAttendees returns the current attendee count of one bung.
func (s *Store) CountAttendees(ctx context.Context, bungID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bung_attendees WHERE bung_id = ?`, bungID).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return n, nil
}

// timeArg renders an optional time filter; empty string disables the
// clause.
func timeArg(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
