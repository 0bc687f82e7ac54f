package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Member is a club roster row. Members are never deleted; is_active
// gates them out of listings while their history keeps pointing at the
// same id.
type Member struct {
	ID        int64
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListMembers returns members ordered by name. Inactive members are
// hidden unless includeInactive is set; q filters by name substring.
func (s *Store) ListMembers(ctx context.Context, q string, includeInactive bool) ([]Member, error) {
	query := `
		SELECT id, name, is_active, created_at, updated_at
		FROM members
		WHERE (? = 1 OR is_active = 1)
		  AND (? = '' OR instr(name, ?) > 0)
		ORDER BY name ASC`

	inactive := 0
	if includeInactive {
		inactive = 1
	}
	rows, err := s.db.QueryContext(ctx, query, inactive, q, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember returns a member by id, or nil when absent.
func (s *Store) GetMember(ctx context.Context, id int64) (*Member, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, is_active, created_at, updated_at
		FROM members WHERE id = ?`, id)

	m, err := scanMemberRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

// CreateMember inserts a new active member. A name collision returns
// ErrDuplicateName.
func (s *Store) CreateMember(ctx context.Context, name string) (*Member, error) {
	now := nowText()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO members (name, is_active, created_at, updated_at)
		VALUES (?, 1, ?, ?)`, name, now, now)
	if isUniqueViolation(err, "members.name") {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetMember(ctx, id)
}

// UpsertMemberByName inserts a member if the name is new, otherwise
// returns the existing row unchanged. Renames go through UpdateMember;
// this is the idempotent result-entry path where names arrive free-form.
func (s *Store) UpsertMemberByName(ctx context.Context, name string) (*Member, error) {
	now := nowText()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (name, is_active, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name`,
		name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert member: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, is_active, created_at, updated_at
		FROM members WHERE name = ?`, name)
	m, err := scanMemberRow(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted member: %w", err)
	}
	return &m, nil
}

// UpdateMember patches the given fields on a member. Nil fields are
// left as they are. Returns the updated row, or nil when the id does
// not exist. A rename onto a taken name returns ErrDuplicateName.
func (s *Store) UpdateMember(ctx context.Context, id int64, name *string, isActive *bool) (*Member, error) {
	existing, err := s.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	newName := existing.Name
	if name != nil {
		newName = *name
	}
	newActive := existing.IsActive
	if isActive != nil {
		newActive = *isActive
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE members SET name = ?, is_active = ?, updated_at = ?
		WHERE id = ?`, newName, boolInt(newActive), nowText(), id)
	if isUniqueViolation(err, "members.name") {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return s.GetMember(ctx, id)
}

// DeactivateMember soft-disables a member. Reports whether the id
// existed.
func (s *Store) DeactivateMember(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE members SET is_active = 0, updated_at = ? WHERE id = ?`,
		nowText(), id)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemberNames returns id -> name for every member, active or not.
// Rankings include disabled members so history stays accurate.
func (s *Store) MemberNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM members`)
	if err != nil {
		return nil, fmt.Errorf("failed to load member names: %w", err)
	}
	defer rows.Close()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

type memberScanner interface {
	Scan(dest ...any) error
}

func scanMember(rows *sql.Rows) (Member, error) {
	return scanMemberRow(rows)
}

func scanMemberRow(row memberScanner) (Member, error) {
	var m Member
	var active int
	var created, updated string
	if err := row.Scan(&m.ID, &m.Name, &active, &created, &updated); err != nil {
		return Member{}, err
	}
	m.IsActive = active != 0

	var err error
	if m.CreatedAt, err = parseTime(created); err != nil {
		return Member{}, err
	}
	if m.UpdatedAt, err = parseTime(updated); err != nil {
		return Member{}, err
	}
	return m, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
