// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"steplog/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	steps    []domain.StepEntry
	users    []*domain.User
	sessions map[string]*domain.Session

	stepIDCounter int64
	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.StepRepository = (*DB)(nil)
var _ domain.UserRepository = (*UserRepo)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- StepRepository ---

// ListByUser returns the user's entries, newest day first.
func (db *DB) ListByUser(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	return db.list(userID, false), nil
}

// ListByUserAsc returns the user's entries, oldest day first.
func (db *DB) ListByUserAsc(ctx context.Context, userID int64) ([]domain.StepEntry, error) {
	return db.list(userID, true), nil
}

func (db *DB) list(userID int64, asc bool) []domain.StepEntry {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.StepEntry, 0)
	for _, e := range db.steps {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if asc {
			return result[i].Day < result[j].Day
		}
		return result[i].Day > result[j].Day
	})
	return result
}

// GetByID returns an entry by id, scoped to a user.
func (db *DB) GetByID(ctx context.Context, userID, id int64) (*domain.StepEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range db.steps {
		if e.ID == id && e.UserID == userID {
			ret := e
			return &ret, nil
		}
	}
	return nil, nil
}

// GetByDay returns the entry occupying a calendar day, if any.
func (db *DB) GetByDay(ctx context.Context, userID int64, day string) (*domain.StepEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range db.steps {
		if e.UserID == userID && e.Day == day {
			ret := e
			return &ret, nil
		}
	}
	return nil, nil
}

// Insert creates a new entry, enforcing (user, day) uniqueness the way
// the database constraint does.
func (db *DB) Insert(ctx context.Context, userID int64, day string, steps int) (*domain.StepEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range db.steps {
		if e.UserID == userID && e.Day == day {
			return nil, domain.ErrConflict
		}
	}

	db.stepIDCounter++
	entry := domain.StepEntry{
		ID:     db.stepIDCounter,
		UserID: userID,
		Day:    day,
		Steps:  steps,
	}
	db.steps = append(db.steps, entry)
	ret := entry
	return &ret, nil
}

// UpdateSteps replaces an entry's step count in place.
func (db *DB) UpdateSteps(ctx context.Context, userID, id int64, steps int) (*domain.StepEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.steps {
		if db.steps[i].ID == id && db.steps[i].UserID == userID {
			db.steps[i].Steps = steps
			ret := db.steps[i]
			return &ret, nil
		}
	}
	return nil, nil
}

// Update rewrites an entry's day and step count.
func (db *DB) Update(ctx context.Context, userID, id int64, day string, steps int) (*domain.StepEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, e := range db.steps {
		if e.UserID == userID && e.Day == day && e.ID != id {
			return nil, domain.ErrConflict
		}
	}
	for i := range db.steps {
		if db.steps[i].ID == id && db.steps[i].UserID == userID {
			db.steps[i].Day = day
			db.steps[i].Steps = steps
			ret := db.steps[i]
			return &ret, nil
		}
	}
	return nil, nil
}

// Delete removes an entry by id, scoped to a user.
func (db *DB) Delete(ctx context.Context, userID, id int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i, e := range db.steps {
		if e.ID == id && e.UserID == userID {
			db.steps = append(db.steps[:i], db.steps[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// --- UserRepository ---

// UserRepo implements user persistence.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new user repository.
func (db *DB) NewUserRepo() *UserRepo {
	return &UserRepo{db: db}
}

// GetByEmail retrieves a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email {
			return nil, domain.ErrConflict
		}
	}

	r.db.userIDCounter++
	u := &domain.User{
		ID:           r.db.userIDCounter,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.db.users = append(r.db.users, u)
	return u, nil
}

// UpdateProfile changes a user's name and email.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Email == email && u.ID != id {
			return domain.ErrConflict
		}
	}
	for _, u := range r.db.users {
		if u.ID == id {
			u.Name = name
			u.Email = email
			return nil
		}
	}
	return domain.ErrNotFound
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return domain.ErrNotFound
}

// Count returns the total number of users.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
