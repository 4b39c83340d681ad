package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"steplog/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	getByEmailFn     func(ctx context.Context, email string) (*domain.User, error)
	getByIDFn        func(ctx context.Context, id int64) (*domain.User, error)
	createFn         func(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	updateProfileFn  func(ctx context.Context, id int64, name, email string) error
	updatePasswordFn func(ctx context.Context, id int64, passwordHash string) error
	countFn          func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, email, passwordHash)
	}
	return &domain.User{ID: 1, Name: name, Email: email, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, name, email)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "Testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: "test@example.com", PasswordHash: string(hash)}, nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
			if userID != 1 {
				t.Errorf("expected userID 1, got %d", userID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			return nil
		},
	}

	svc := NewAuthService(users, sessions)
	token, err := svc.Login(ctx, "test@example.com", password)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Rightpass1"), bcrypt.DefaultCost)
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, PasswordHash: string(hash)}, nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "test@example.com", "Wrongpass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "nobody@example.com", "Whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_LegacyHashMigrates(t *testing.T) {
	password := "Legacypass1"
	sum := sha1.Sum([]byte(password))
	legacy := hex.EncodeToString(sum[:])

	var rehashed string
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, PasswordHash: legacy}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, passwordHash string) error {
			rehashed = passwordHash
			return nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	token, err := svc.Login(context.Background(), "test@example.com", password)
	if err != nil {
		t.Fatalf("legacy login failed: %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
	if rehashed == "" {
		t.Fatal("legacy hash was not re-hashed on login")
	}
	if rehashed == legacy {
		t.Fatal("re-hash kept the legacy scheme")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rehashed), []byte(password)); err != nil {
		t.Errorf("re-hash is not a valid bcrypt hash of the password: %v", err)
	}
}

func TestAuthService_Login_LegacyHashWrongPassword(t *testing.T) {
	sum := sha1.Sum([]byte("Legacypass1"))
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, PasswordHash: hex.EncodeToString(sum[:])}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, passwordHash string) error {
			t.Error("must not re-hash on failed login")
			return nil
		},
	}

	svc := NewAuthService(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "test@example.com", "Wrongpass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Register_PasswordRules(t *testing.T) {
	tests := []struct {
		name     string
		password string
		confirm  string
		wantErr  error
	}{
		{"too short", "Ab1", "Ab1", ErrWeakPassword},
		{"no upper case", "abcdefg1", "abcdefg1", ErrWeakPassword},
		{"no digit", "Abcdefgh", "Abcdefgh", ErrWeakPassword},
		{"mismatch", "Abcdefg1", "Abcdefg2", ErrPasswordMismatch},
		{"strong password accepted", "Abcdefg1", "Abcdefg1", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
			err := svc.Register(context.Background(), "Test", "test@example.com", tc.password, tc.confirm)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockSessionRepo{})
	err := svc.Register(context.Background(), "", "test@example.com", "Abcdefg1", "Abcdefg1")
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	users := &mockUserRepo{
		getByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email}, nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})
	err := svc.Register(context.Background(), "Test", "taken@example.com", "Abcdefg1", "Abcdefg1")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_ValidateSession(t *testing.T) {
	now := time.Now()
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Email: "test@example.com"}, nil
		},
	}

	t.Run("valid", func(t *testing.T) {
		sessions := &mockSessionRepo{
			getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
				return &domain.Session{Token: token, UserID: 1, ExpiresAt: now.Add(time.Hour)}, nil
			},
		}
		svc := NewAuthService(users, sessions)
		user, err := svc.ValidateSession(context.Background(), "tok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != 1 {
			t.Errorf("expected user 1, got %d", user.ID)
		}
	})

	t.Run("expired", func(t *testing.T) {
		deleted := false
		sessions := &mockSessionRepo{
			getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
				return &domain.Session{Token: token, UserID: 1, ExpiresAt: now.Add(-time.Hour)}, nil
			},
			deleteFn: func(ctx context.Context, token string) error {
				deleted = true
				return nil
			},
		}
		svc := NewAuthService(users, sessions)
		_, err := svc.ValidateSession(context.Background(), "tok")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
		if !deleted {
			t.Error("expired session should be deleted")
		}
	})

	t.Run("missing", func(t *testing.T) {
		svc := NewAuthService(users, &mockSessionRepo{})
		_, err := svc.ValidateSession(context.Background(), "tok")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	oldPassword := "Oldpass12"
	hash, _ := bcrypt.GenerateFromPassword([]byte(oldPassword), bcrypt.DefaultCost)

	var stored string
	users := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, PasswordHash: string(hash)}, nil
		},
		updatePasswordFn: func(ctx context.Context, id int64, passwordHash string) error {
			stored = passwordHash
			return nil
		},
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	if err := svc.ChangePassword(context.Background(), 1, "wrong", "Newpass12", "Newpass12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), 1, oldPassword, "weak", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), 1, oldPassword, "Newpass12", "Newpass12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("Newpass12")); err != nil {
		t.Errorf("stored hash does not match the new password: %v", err)
	}
}

func TestAuthService_FirstRun(t *testing.T) {
	users := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) { return 0, nil },
	}
	svc := NewAuthService(users, &mockSessionRepo{})

	first, err := svc.FirstRun(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first {
		t.Error("zero accounts must report first run")
	}

	users.countFn = func(ctx context.Context) (int, error) { return 3, nil }
	first, err = svc.FirstRun(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first {
		t.Error("existing accounts must not report first run")
	}
}

func TestStrongPassword_AcceptsConforming(t *testing.T) {
	if !strongPassword("Abcdefg1") {
		t.Error("a password satisfying every rule must be accepted")
	}
	if strongPassword("abc") {
		t.Error("a weak password must be rejected")
	}
}
