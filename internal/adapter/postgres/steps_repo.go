package postgres

import (
	"context"
	"database/sql"
	"errors"

	"steplog/internal/domain"
)

// Ensure the interface is met.
var _ domain.StepRepository = (*DB)(nil)

// ListByUser returns all entries for a user, newest day first.
func (d *DB) ListByUser(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	out := []domain.StepEntry{}
	err := d.sql.SelectContext(ctx, &out,
		"SELECT id, user_id, day, steps FROM steps WHERE user_id=$1 ORDER BY day DESC;", userID)
	if err != nil {
		return nil, storeErr("list steps", err)
	}
	return out, nil
}

// ListByUserAsc returns all entries for a user, oldest day first.
func (d *DB) ListByUserAsc(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	out := []domain.StepEntry{}
	err := d.sql.SelectContext(ctx, &out,
		"SELECT id, user_id, day, steps FROM steps WHERE user_id=$1 ORDER BY day ASC;", userID)
	if err != nil {
		return nil, storeErr("list steps", err)
	}
	return out, nil
}

// GetByID returns an entry by id, scoped to a user.
func (d *DB) GetByID(ctx context.Context, userID, id int64) (*domain.StepEntry, error) {
	var e domain.StepEntry
	err := d.sql.GetContext(ctx, &e,
		"SELECT id, user_id, day, steps FROM steps WHERE id=$1 AND user_id=$2;", id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get step", err)
	}
	return &e, nil
}

// GetByDay returns the entry occupying a calendar day, if any.
func (d *DB) GetByDay(ctx context.Context, userID int64, day string) (*domain.StepEntry, error) {
	var e domain.StepEntry
	err := d.sql.GetContext(ctx, &e,
		"SELECT id, user_id, day, steps FROM steps WHERE user_id=$1 AND day=$2;", userID, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get step by day", err)
	}
	return &e, nil
}

// Insert creates a new entry. A concurrent creator winning the same
// (user, day) surfaces as ErrConflict via the unique constraint.
func (d *DB) Insert(ctx context.Context, userID int64, day string, steps int) (*domain.StepEntry, error) {
	var e domain.StepEntry
	err := d.sql.GetContext(ctx, &e,
		"INSERT INTO steps(user_id, day, steps) VALUES($1, $2, $3) RETURNING id, user_id, day, steps;",
		userID, day, steps)
	if err != nil {
		return nil, storeErr("insert step", err)
	}
	return &e, nil
}

// UpdateSteps replaces the step count of an entry in place.
func (d *DB) UpdateSteps(ctx context.Context, userID, id int64, steps int) (*domain.StepEntry, error) {
	var e domain.StepEntry
	err := d.sql.GetContext(ctx, &e,
		"UPDATE steps SET steps=$1 WHERE id=$2 AND user_id=$3 RETURNING id, user_id, day, steps;",
		steps, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("update step", err)
	}
	return &e, nil
}

// Update rewrites an entry's day and step count. Moving onto an
// occupied day trips the unique constraint and returns ErrConflict.
func (d *DB) Update(ctx context.Context, userID, id int64, day string, steps int) (*domain.StepEntry, error) {
	var e domain.StepEntry
	err := d.sql.GetContext(ctx, &e,
		"UPDATE steps SET day=$1, steps=$2 WHERE id=$3 AND user_id=$4 RETURNING id, user_id, day, steps;",
		day, steps, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("update step", err)
	}
	return &e, nil
}

// Delete removes an entry by id, scoped to a user. Returns false when
// nothing matched.
func (d *DB) Delete(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM steps WHERE id=$1 AND user_id=$2;", id, userID)
	if err != nil {
		return false, storeErr("delete step", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("delete step", err)
	}
	return n > 0, nil
}
