package users

import (
	"context"
	"errors"
	"strconv"

	"github.com/meridian-lms/meridian-lms/internal/audit"
)

// RepositoryPort defines data access methods for principals.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	UpdateRole(ctx context.Context, id int64, role string) error
}

// AuditRecorder is the best-effort audit seam. Record never returns an
// error; append failures stay inside the audit boundary.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service handles principal management business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditRecorder
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, recorder AuditRecorder) *Service {
	return &Service{repo: repo, audit: recorder}
}

// ListUsers returns all visible principals.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser fetches one principal.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// Ban marks the account banned. Active sessions for the user are
// invalidated on their next integrity poll.
func (s *Service) Ban(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusBanned, "banned user account")
}

// Unban restores a banned account to active.
func (s *Service) Unban(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, StatusActive, "restored user account")
}

// Delete soft-deletes the account. The row stays referenced by audit
// history and is never removed physically.
func (s *Service) Delete(ctx context.Context, id int64) error {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	err = s.repo.UpdateStatus(ctx, id, StatusDeleted)
	s.record(ctx, audit.Entry{
		ActionType:   audit.ActionDelete,
		Description:  "soft-deleted user account",
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(id, 10),
		ResourceName: user.Email,
		Outcome:      outcomeFor(err),
		OldValue:     user.Status,
		NewValue:     StatusDeleted,
	})
	return err
}

// ChangeRole assigns a new role. The old role claim in any live session
// stops matching, which invalidates that session on its next poll.
func (s *Service) ChangeRole(ctx context.Context, id int64, role string) error {
	if !ValidRole(role) {
		return errors.New("users: unknown role " + role)
	}
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == role {
		return nil
	}
	err = s.repo.UpdateRole(ctx, id, role)
	s.record(ctx, audit.Entry{
		ActionType:   audit.ActionUpdate,
		Description:  "changed user role",
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(id, 10),
		ResourceName: user.Email,
		Outcome:      outcomeFor(err),
		OldValue:     user.Role,
		NewValue:     role,
	})
	return err
}

func (s *Service) setStatus(ctx context.Context, id int64, status, description string) error {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Status == status {
		return nil
	}
	err = s.repo.UpdateStatus(ctx, id, status)
	s.record(ctx, audit.Entry{
		ActionType:   audit.ActionUpdate,
		Description:  description,
		ResourceType: "user",
		ResourceID:   strconv.FormatInt(id, 10),
		ResourceName: user.Email,
		Outcome:      outcomeFor(err),
		OldValue:     user.Status,
		NewValue:     status,
	})
	return err
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, entry)
}

func outcomeFor(err error) string {
	if err != nil {
		return audit.OutcomeFailed
	}
	return audit.OutcomeSuccess
}
