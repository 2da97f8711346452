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

// ContributionFilter narrows a contribution listing. Zero values mean "no
// filter" for that field. From and To are inclusive calendar-date bounds.
type ContributionFilter struct {
	ContributorID int64
	Category      core.Category
	From          core.Date
	To            core.Date
	Limit         int
	Offset        int
}

// ContributionUpdate carries the fields of a partial update. Nil pointers
// leave the stored value untouched.
type ContributionUpdate struct {
	Category    *core.Category
	AmountCents *int64
	Date        *core.Date
	Payment     *core.PaymentMethod
	Envelope    *string
	Notes       *string
}

// CreateContribution inserts a new contribution and returns it with its
// assigned id and timestamps.
func (r *SQLiteRepository) CreateContribution(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO contributions (contributor_id, category, amount_cents,
			date, payment_method, envelope, notes, recorded_by,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ContributorID, string(c.Category), c.Amount.Cents,
		encodeDate(c.Date), string(c.Payment), c.Envelope, c.Notes,
		c.RecordedBy, encodeTime(now), encodeTime(now))
	if err != nil {
		return core.Contribution{}, fmt.Errorf("create contribution: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Contribution{}, fmt.Errorf("create contribution: last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now

	slog.InfoContext(ctx, "Contribution created",
		"id", c.ID,
		"contributor_id", c.ContributorID,
		"category", c.Category,
		"amount_cents", c.Amount.Cents)
	return c, nil
}

const contributionColumns = `c.id, c.contributor_id, c.category,
	c.amount_cents, c.date, c.payment_method, c.envelope, c.notes,
	c.recorded_by, c.created_at, c.updated_at, d.name, d.phone`

func scanContribution(row interface{ Scan(...any) error }) (core.Contribution, error) {
	var c core.Contribution
	var date, createdAt, updatedAt string
	var name, phone sql.NullString
	err := row.Scan(&c.ID, &c.ContributorID, &c.Category, &c.Amount.Cents,
		&date, &c.Payment, &c.Envelope, &c.Notes, &c.RecordedBy,
		&createdAt, &updatedAt, &name, &phone)
	if err != nil {
		return core.Contribution{}, err
	}
	c.Date = decodeDate(date)
	c.CreatedAt = decodeTime(createdAt)
	c.UpdatedAt = decodeTime(updatedAt)
	c.ContributorName = name.String
	c.ContributorPhone = phone.String
	return c, nil
}

// GetContribution fetches one contribution by id, expanded with the owning
// contributor's name and phone. A missing row is a nil result, not an error.
func (r *SQLiteRepository) GetContribution(ctx context.Context, id int64) (*core.Contribution, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+contributionColumns+`
		FROM contributions c
		LEFT JOIN contributors d ON d.id = c.contributor_id
		WHERE c.id = ?`, id)
	c, err := scanContribution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contribution: %w", err)
	}
	return &c, nil
}

// ListContributions returns contributions matching the filter, most recent
// date first, each expanded with the owning contributor's name and phone.
// The boolean is the same has-more heuristic as ListContributors.
func (r *SQLiteRepository) ListContributions(ctx context.Context, f ContributionFilter) ([]core.Contribution, bool, error) {
	query := `SELECT ` + contributionColumns + `
		FROM contributions c
		LEFT JOIN contributors d ON d.id = c.contributor_id`
	var where []string
	var args []any

	if f.ContributorID > 0 {
		where = append(where, "c.contributor_id = ?")
		args = append(args, f.ContributorID)
	}
	if f.Category != "" {
		where = append(where, "c.category = ?")
		args = append(args, string(f.Category))
	}
	if !f.From.IsZero() {
		where = append(where, "c.date >= ?")
		args = append(args, encodeDate(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "c.date <= ?")
		args = append(args, encodeDate(f.To))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.date DESC, c.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, false, fmt.Errorf("list contributions: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list contributions: %w", err)
	}

	hasMore := f.Limit > 0 && len(out) == f.Limit
	return out, hasMore, nil
}

// UpdateContribution applies a partial update. Updating a missing
// contribution is an error.
func (r *SQLiteRepository) UpdateContribution(ctx context.Context, id int64, upd ContributionUpdate) error {
	var sets []string
	var args []any

	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if upd.Category != nil {
		set("category", string(*upd.Category))
	}
	if upd.AmountCents != nil {
		set("amount_cents", *upd.AmountCents)
	}
	if upd.Date != nil {
		set("date", encodeDate(*upd.Date))
	}
	if upd.Payment != nil {
		set("payment_method", string(*upd.Payment))
	}
	if upd.Envelope != nil {
		set("envelope", *upd.Envelope)
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
		`UPDATE contributions SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update contribution: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update contribution: id %d not found", id)
	}
	return nil
}

// DeleteContribution removes a contribution by id.
func (r *SQLiteRepository) DeleteContribution(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contributions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contribution: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete contribution: id %d not found", id)
	}

	slog.InfoContext(ctx, "Contribution deleted", "id", id)
	return nil
}
