package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dizimo/internal/core"
)

// ErrContributorInUse is returned when deleting a contributor that still has
// contributions on file. Deletion is restricted rather than cascaded.
var ErrContributorInUse = errors.New("contributor has contributions on file")

// ContributorFilter narrows a contributor listing. Zero values mean "no
// filter" for that field.
type ContributorFilter struct {
	Status core.ContributorStatus
	Name   string // case-insensitive substring
	Limit  int
	Offset int
}

// ContributorUpdate carries the fields of a partial update. Nil pointers
// leave the stored value untouched.
type ContributorUpdate struct {
	Name       *string
	Phone      *string
	Email      *string
	Address    *string
	BirthDate  *core.Date
	Occupation *string
	Status     *core.ContributorStatus
	Notes      *string
}

const contributorColumns = `id, name, phone, email, address, birth_date,
	occupation, status, notes, created_at, updated_at`

func scanContributor(row interface{ Scan(...any) error }) (core.Contributor, error) {
	var c core.Contributor
	var birth, createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &birth,
		&c.Occupation, &c.Status, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		return core.Contributor{}, err
	}
	c.BirthDate = decodeDate(birth)
	c.CreatedAt = decodeTime(createdAt)
	c.UpdatedAt = decodeTime(updatedAt)
	return c, nil
}

// CreateContributor inserts a new contributor and returns it with its
// assigned id and timestamps.
func (r *SQLiteRepository) CreateContributor(ctx context.Context, c core.Contributor) (core.Contributor, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO contributors (name, phone, email, address, birth_date,
			occupation, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Phone, c.Email, c.Address, encodeDate(c.BirthDate),
		c.Occupation, string(c.Status), c.Notes, encodeTime(now), encodeTime(now))
	if err != nil {
		return core.Contributor{}, fmt.Errorf("create contributor: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Contributor{}, fmt.Errorf("create contributor: last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now

	slog.InfoContext(ctx, "Contributor created", "id", c.ID, "name", c.Name, "status", c.Status)
	return c, nil
}

// GetContributor fetches one contributor by id. A missing row is a nil
// result, not an error.
func (r *SQLiteRepository) GetContributor(ctx context.Context, id int64) (*core.Contributor, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contributorColumns+` FROM contributors WHERE id = ?`, id)
	c, err := scanContributor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contributor: %w", err)
	}
	return &c, nil
}

// ListContributors returns contributors matching the filter, newest first.
// The boolean is a has-more heuristic: true when the page came back full,
// which only means another page may exist.
func (r *SQLiteRepository) ListContributors(ctx context.Context, f ContributorFilter) ([]core.Contributor, bool, error) {
	query := `SELECT ` + contributorColumns + ` FROM contributors`
	var where []string
	var args []any

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Name != "" {
		where = append(where, "LOWER(name) LIKE '%' || LOWER(?) || '%'")
		args = append(args, f.Name)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE, id"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list contributors: %w", err)
	}
	defer rows.Close()

	var out []core.Contributor
	for rows.Next() {
		c, err := scanContributor(rows)
		if err != nil {
			return nil, false, fmt.Errorf("list contributors: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list contributors: %w", err)
	}

	hasMore := f.Limit > 0 && len(out) == f.Limit
	return out, hasMore, nil
}

// CountContributors returns the number of contributors on file.
func (r *SQLiteRepository) CountContributors(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contributors`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count contributors: %w", err)
	}
	return n, nil
}

// UpdateContributor applies a partial update. Updating a missing contributor
// is an error.
func (r *SQLiteRepository) UpdateContributor(ctx context.Context, id int64, upd ContributorUpdate) error {
	var sets []string
	var args []any

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Phone != nil {
		set("phone", *upd.Phone)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.Address != nil {
		set("address", *upd.Address)
	}
	if upd.BirthDate != nil {
		set("birth_date", encodeDate(*upd.BirthDate))
	}
	if upd.Occupation != nil {
		set("occupation", *upd.Occupation)
	}
	if upd.Status != nil {
		set("status", string(*upd.Status))
	}
	if upd.Notes != nil {
		set("notes", *upd.Notes)
	}
	if len(sets) == 0 {
		return nil
	}
	set("updated_at", encodeTime(time.Now().UTC()))
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		`UPDATE contributors SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update contributor: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update contributor: id %d not found", id)
	}
	return nil
}

// DeleteContributor removes a contributor. The delete is restricted: it
// fails with ErrContributorInUse while contributions still reference the
// contributor.
func (r *SQLiteRepository) DeleteContributor(ctx context.Context, id int64) error {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contributions WHERE contributor_id = ?`, id).Scan(&n)
	if err != nil {
		return fmt.Errorf("delete contributor: count contributions: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("delete contributor: %w", ErrContributorInUse)
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM contributors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contributor: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete contributor: id %d not found", id)
	}

	slog.InfoContext(ctx, "Contributor deleted", "id", id)
	return nil
}
