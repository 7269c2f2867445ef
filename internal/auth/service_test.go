package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-lms/meridian-lms/internal/auth"
	"github.com/meridian-lms/meridian-lms/internal/shared"
	"github.com/meridian-lms/meridian-lms/internal/users"
	_ "github.com/meridian-lms/meridian-lms/testing"
)

type stubRepo struct {
	user     users.User
	findErr  error
	sessions []string
	deleted  []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (users.User, error) {
	if s.findErr != nil {
		return users.User{}, s.findErr
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, roleAtLogin string, expiresAt time.Time, ip, ua string) error {
	s.sessions = append(s.sessions, id)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(hashed)
}

func TestAuthenticate(t *testing.T) {
	repo := &stubRepo{user: users.User{
		ID:           1,
		Email:        "teach@meridian.local",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         users.RoleTeacher,
		Status:       users.StatusActive,
	}}
	svc := auth.NewService(repo)

	user, err := svc.Authenticate(context.Background(), "teach@meridian.local", "correct-horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 1 || user.Role != users.RoleTeacher {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	repo := &stubRepo{user: users.User{
		ID:           1,
		PasswordHash: hashPassword(t, "correct-horse"),
		Status:       users.StatusActive,
	}}
	svc := auth.NewService(repo)

	if _, err := svc.Authenticate(context.Background(), "teach@meridian.local", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := auth.NewService(&stubRepo{findErr: shared.ErrNotFound})

	if _, err := svc.Authenticate(context.Background(), "ghost@meridian.local", "whatever"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateInactiveAccounts(t *testing.T) {
	for _, status := range []string{users.StatusBanned, users.StatusDeleted} {
		repo := &stubRepo{user: users.User{
			ID:           1,
			PasswordHash: hashPassword(t, "correct-horse"),
			Status:       status,
		}}
		svc := auth.NewService(repo)

		_, err := svc.Authenticate(context.Background(), "teach@meridian.local", "correct-horse")
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			t.Fatalf("status %s: expected ErrInvalidCredentials, got %v", status, err)
		}
	}
}
