package domain

import (
	"context"
)

// StepEntry represents one recorded step count for a calendar day.
// A user has at most one entry per day; the pair (UserID, Day) is
// unique in storage.
type StepEntry struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"userId" db:"user_id"`
	Day    string `json:"date" db:"day"`
	Steps  int    `json:"steps" db:"steps"`
}

// StepRepository is the port for step entry persistence.
//
// Lookup methods return (nil, nil) when no row matches; translating
// absence into ErrNotFound is the service layer's job. Insert and
// Update return ErrConflict when the (user, day) uniqueness
// constraint is violated.
type StepRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]StepEntry, error)
	ListByUserAsc(ctx context.Context, userID int64) ([]StepEntry, error)
	GetByID(ctx context.Context, userID, id int64) (*StepEntry, error)
	GetByDay(ctx context.Context, userID int64, day string) (*StepEntry, error)
	Insert(ctx context.Context, userID int64, day string, steps int) (*StepEntry, error)
	UpdateSteps(ctx context.Context, userID, id int64, steps int) (*StepEntry, error)
	Update(ctx context.Context, userID, id int64, day string, steps int) (*StepEntry, error)
	Delete(ctx context.Context, userID, id int64) (bool, error)
}
