package user

import (
	"context"
	"errors"

	"github.com/achla24/LeaveEase/internal/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Directory resolves leave requests and actors to mail recipients.
type Directory struct {
	repo   Repository
	logger *zap.Logger
}

func NewDirectory(repo Repository, logger ...*zap.Logger) *Directory {
	l := zap.L().Named("user.directory")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.directory")
	}
	return &Directory{repo: repo, logger: l}
}

// ResolveForLeave tries the stored employee id, then the full name, then the
// username. A miss is not an error.
func (d *Directory) ResolveForLeave(ctx context.Context, ref notification.LeaveRef) (notification.Recipient, bool, error) {
	lookups := make([]func() (*User, error), 0, 3)
	if _, err := uuid.Parse(ref.EmployeeID); err == nil {
		lookups = append(lookups, func() (*User, error) { return d.repo.FindByID(ctx, ref.EmployeeID) })
	}
	if ref.EmployeeName != "" {
		lookups = append(lookups,
			func() (*User, error) { return d.repo.FindByFullName(ctx, ref.EmployeeName) },
			func() (*User, error) { return d.repo.FindByUsername(ctx, ref.EmployeeName) },
		)
	}

	for _, lookup := range lookups {
		u, err := lookup()
		if err == nil {
			return toRecipient(*u), true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return notification.Recipient{}, false, err
		}
	}

	d.logKnownUsers(ctx, ref)
	return notification.Recipient{}, false, nil
}

func (d *Directory) FindActor(ctx context.Context, userID string) (notification.Recipient, bool, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return notification.Recipient{}, false, nil
	}

	u, err := d.repo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notification.Recipient{}, false, nil
	}
	if err != nil {
		return notification.Recipient{}, false, err
	}
	return toRecipient(*u), true, nil
}

func (d *Directory) ActorEmail(ctx context.Context, userID string) (string, bool, error) {
	r, found, err := d.FindActor(ctx, userID)
	if err != nil || !found {
		return "", found, err
	}
	return r.Email, true, nil
}

func (d *Directory) logKnownUsers(ctx context.Context, ref notification.LeaveRef) {
	users, err := d.repo.FindAll(ctx)
	if err != nil {
		d.logger.Warn("list users for diagnostics failed", zap.Error(err))
		return
	}

	d.logger.Warn("no user matches leave request",
		zap.String("employee_id", ref.EmployeeID),
		zap.String("employee_name", ref.EmployeeName),
		zap.Int("known_users", len(users)),
	)
	for _, u := range users {
		d.logger.Info("known user",
			zap.String("username", u.Username),
			zap.String("full_name", u.FullName),
			zap.String("email", u.Email),
		)
	}
}

func toRecipient(u User) notification.Recipient {
	return notification.Recipient{
		ID:         u.ID.String(),
		Username:   u.Username,
		FullName:   u.FullName,
		Email:      u.Email,
		Department: u.Department,
		Role:       u.Role,
	}
}
