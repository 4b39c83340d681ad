package app

import (
	"context"
	"errors"
	"fmt"

	"steplog/internal/domain"
)

// StepsService encapsulates step-entry use cases: one entry per user
// per calendar day, written via idempotent upsert.
type StepsService struct {
	repo domain.StepRepository
}

// NewStepsService creates a StepsService backed by the given repository.
func NewStepsService(repo domain.StepRepository) *StepsService {
	return &StepsService{repo: repo}
}

// List returns the user's entries, newest day first.
func (s *StepsService) List(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ListAscending returns the user's entries, oldest day first.
func (s *StepsService) ListAscending(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	return s.repo.ListByUserAsc(ctx, userID)
}

// Get returns a single entry owned by the user, or ErrNotFound.
func (s *StepsService) Get(ctx context.Context, userID, id int64) (*domain.StepEntry, error) {
	entry, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Upsert records the step count for a day. If the user already has an
// entry for that day its count is replaced, otherwise a new entry is
// created. The returned bool is true when a new entry was created.
//
// Two concurrent upserts for a brand-new day can both pass the
// existence check; the storage uniqueness constraint then rejects one
// insert, which is retried here as an update exactly once.
func (s *StepsService) Upsert(ctx context.Context, userID int64, day string, steps int) (*domain.StepEntry, bool, error) {
	if err := validateEntry(day, steps); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetByDay(ctx, userID, day)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		entry, err := s.repo.UpdateSteps(ctx, userID, existing.ID, steps)
		if err != nil {
			return nil, false, err
		}
		return entry, false, nil
	}

	entry, err := s.repo.Insert(ctx, userID, day, steps)
	if errors.Is(err, domain.ErrConflict) {
		// Lost the race against a concurrent creator: the row exists
		// now, so degrade to an update.
		existing, err = s.repo.GetByDay(ctx, userID, day)
		if err != nil {
			return nil, false, err
		}
		if existing == nil {
			return nil, false, fmt.Errorf("upsert steps for %s: %w", day, domain.ErrStoreUnavailable)
		}
		entry, err := s.repo.UpdateSteps(ctx, userID, existing.ID, steps)
		if err != nil {
			return nil, false, err
		}
		return entry, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// Edit updates an existing entry's day and step count. Moving the
// entry onto a day owned by a different entry fails with ErrConflict;
// the colliding entry is never overwritten or merged.
func (s *StepsService) Edit(ctx context.Context, userID, id int64, day string, steps int) (*domain.StepEntry, error) {
	if err := validateEntry(day, steps); err != nil {
		return nil, err
	}

	other, err := s.repo.GetByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if other != nil && other.ID != id {
		return nil, domain.ErrConflict
	}

	entry, err := s.repo.Update(ctx, userID, id, day, steps)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Delete removes the entry if it belongs to the user. A missing id and
// someone else's id surface identically as ErrNotFound.
func (s *StepsService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func validateEntry(day string, steps int) error {
	if _, err := domain.ParseDay(day); err != nil {
		return &domain.ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD calendar date"}
	}
	if steps <= 0 {
		return &domain.ValidationError{Field: "steps", Reason: "must be a positive integer"}
	}
	return nil
}
