// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"
	"unicode"

	"steplog/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates that another account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword indicates the password fails the strength rule.
	ErrWeakPassword = errors.New("password must be at least 8 characters with lower case, upper case and a digit")
	// ErrPasswordMismatch indicates the password and its confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const sessionTTL = 24 * time.Hour

// AuthService handles authentication, registration, sessions and
// profile management.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

// Login authenticates a user by email and creates a session.
//
// Accounts migrated from the legacy system carry an unsalted SHA-1
// password hash; those are verified once against the legacy scheme and
// immediately re-hashed with bcrypt so the weak hash never survives a
// successful login.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil || user == nil {
		return "", ErrInvalidCredentials
	}

	if isLegacyHash(user.PasswordHash) {
		if !legacyHashEqual(user.PasswordHash, password) {
			return "", ErrInvalidCredentials
		}
		if hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost); err == nil {
			_ = s.users.UpdatePassword(ctx, user.ID, string(hash))
		}
	} else if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.createSession(ctx, user.ID)
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirm string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" || confirm == "" {
		return &domain.ValidationError{Field: "registration", Reason: "all fields are required"}
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if !strongPassword(password) {
		return ErrWeakPassword
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, name, email, string(hash))
	if errors.Is(err, domain.ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// FirstRun reports whether no account exists yet, so the client can
// steer a fresh install toward registration.
func (s *AuthService) FirstRun(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks a session token and resolves its user.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.User, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Profile returns the user's current account data, read fresh from
// storage rather than from any session copy.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the user's name and email.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return &domain.ValidationError{Field: "profile", Reason: "name and email are required"}
	}
	err := s.users.UpdateProfile(ctx, userID, name, email)
	if errors.Is(err, domain.ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// ChangePassword verifies the old password with the same scheme as
// Login and stores a bcrypt hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword, confirm string) error {
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return &domain.ValidationError{Field: "password", Reason: "all password fields are required"}
	}
	if newPassword != confirm {
		return ErrPasswordMismatch
	}
	if !strongPassword(newPassword) {
		return ErrWeakPassword
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return ErrUserNotFound
	}

	if isLegacyHash(user.PasswordHash) {
		if !legacyHashEqual(user.PasswordHash, oldPassword) {
			return ErrInvalidCredentials
		}
	} else if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// ValidateForwardAuth resolves a user asserted by a trusted
// forward-auth proxy header, auto-provisioning the account on first
// sight.
func (s *AuthService) ValidateForwardAuth(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.Create(ctx, email, email, "")
		if errors.Is(err, domain.ErrConflict) {
			user, err = s.users.GetByEmail(ctx, email)
		}
		if err != nil {
			return nil, err
		}
	}
	return user, nil
}

// LoginWithUser creates a session for an externally authenticated user
// (e.g. via SSO), auto-provisioning the account on first login.
func (s *AuthService) LoginWithUser(ctx context.Context, name, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		// SSO accounts have no local password.
		user, err = s.users.Create(ctx, name, email, "")
		if errors.Is(err, domain.ErrConflict) {
			// Lost a provisioning race; the account exists now.
			user, err = s.users.GetByEmail(ctx, email)
		}
		if err != nil || user == nil {
			return "", errors.Join(err, ErrUserNotFound)
		}
	}
	return s.createSession(ctx, user.ID)
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, userID, token, time.Now().Add(sessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// strongPassword requires at least 8 characters with a lower case
// letter, an upper case letter and a digit.
func strongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// isLegacyHash reports whether a stored hash is a legacy hex SHA-1.
func isLegacyHash(hash string) bool {
	if len(hash) != sha1.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func legacyHashEqual(hash, password string) bool {
	sum := sha1.Sum([]byte(password))
	return subtle.ConstantTimeCompare([]byte(hash), []byte(hex.EncodeToString(sum[:]))) == 1
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
