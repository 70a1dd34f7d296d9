package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	attendanceerrors "github.com/achla24/LeaveEase/internal/attendance/errors"
	"github.com/achla24/LeaveEase/internal/shared/contextutil"
	"github.com/achla24/LeaveEase/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// EmployeeFinder resolves an employee's account from their full name.
type EmployeeFinder interface {
	FindByFullName(ctx context.Context, fullName string) (*user.User, error)
}

// Actor is the authenticated caller.
type Actor struct {
	ID       string
	Username string
	FullName string
}

func (a Actor) name() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	MarkLate(ctx context.Context, actor Actor, req MarkLateRequest) (LateAttendanceResponse, error)
	GetMine(ctx context.Context, actor Actor) ([]LateAttendanceResponse, error)
	GetByEmployee(ctx context.Context, name string) ([]LateAttendanceResponse, error)
	GetByDate(ctx context.Context, date string) ([]LateAttendanceResponse, error)
	GetInRange(ctx context.Context, startDate, endDate string) ([]LateAttendanceResponse, error)
	CheckMine(ctx context.Context, actor Actor, date string) (LateCheckResponse, error)
	CountMine(ctx context.Context, actor Actor, year, month int) (LateCountResponse, error)
	Update(ctx context.Context, id string, req UpdateLateRequest) (LateAttendanceResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees EmployeeFinder
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employees EmployeeFinder, logger ...*zap.Logger) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) MarkLate(ctx context.Context, actor Actor, req MarkLateRequest) (LateAttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	name := strings.TrimSpace(req.EmployeeName)
	if name == "" {
		return LateAttendanceResponse{}, attendanceerrors.ErrEmployeeNameRequired
	}
	day, err := parseDate(req.Date)
	if err != nil {
		return LateAttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("mark late begin tx failed", zap.Error(err))
		return LateAttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	exists, err := qtx.ExistsByEmployeeAndDate(ctx, name, day)
	if err != nil {
		log.Error("mark late duplicate check failed", zap.Error(err))
		return LateAttendanceResponse{}, err
	}
	if exists {
		log.Warn("mark late rejected, already marked",
			zap.String("employee_name", name),
			zap.String("date", req.Date),
		)
		return LateAttendanceResponse{}, attendanceerrors.ErrAlreadyMarkedLate
	}

	now := s.now().UTC()
	rec := &LateAttendance{
		ID:           uuid.New(),
		EmployeeName: name,
		EmployeeID:   s.employeeID(ctx, name),
		Date:         day,
		Reason:       strings.TrimSpace(req.Reason),
		Notes:        strings.TrimSpace(req.Notes),
		MarkedBy:     actor.name(),
		MarkedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := qtx.Create(ctx, rec); err != nil {
		log.Error("mark late persist failed", zap.Error(err))
		return LateAttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("mark late commit failed", zap.Error(err))
		return LateAttendanceResponse{}, err
	}
	log.Info("employee marked late",
		zap.String("record_id", rec.ID.String()),
		zap.String("employee_name", name),
		zap.String("marked_by", rec.MarkedBy),
	)

	return mapToResponse(*rec), nil
}

// employeeID is empty when no account carries the name.
func (s *service) employeeID(ctx context.Context, name string) string {
	if s.employees == nil {
		return ""
	}
	u, err := s.employees.FindByFullName(ctx, name)
	if err != nil || u == nil {
		return ""
	}
	return u.ID.String()
}

func (s *service) GetMine(ctx context.Context, actor Actor) ([]LateAttendanceResponse, error) {
	return s.GetByEmployee(ctx, actor.name())
}

func (s *service) GetByEmployee(ctx context.Context, name string) ([]LateAttendanceResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, attendanceerrors.ErrEmployeeNameRequired
	}
	recs, err := s.repo.FindByEmployee(ctx, name)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(recs), nil
}

func (s *service) GetByDate(ctx context.Context, date string) ([]LateAttendanceResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.FindByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(recs), nil
}

func (s *service) GetInRange(ctx context.Context, startDate, endDate string) ([]LateAttendanceResponse, error) {
	from, err := parseDate(startDate)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(endDate)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return nil, attendanceerrors.ErrInvalidRange
	}
	recs, err := s.repo.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(recs), nil
}

func (s *service) CheckMine(ctx context.Context, actor Actor, date string) (LateCheckResponse, error) {
	day, err := parseDate(date)
	if err != nil {
		return LateCheckResponse{}, err
	}
	late, err := s.repo.ExistsByEmployeeAndDate(ctx, actor.name(), day)
	if err != nil {
		return LateCheckResponse{}, err
	}
	return LateCheckResponse{Date: day.Format(dateLayout), IsLate: late}, nil
}

func (s *service) CountMine(ctx context.Context, actor Actor, year, month int) (LateCountResponse, error) {
	if year < 1 || month < 1 || month > 12 {
		return LateCountResponse{}, attendanceerrors.ErrInvalidMonth
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	n, err := s.repo.CountByEmployeeBetween(ctx, actor.name(), from, to)
	if err != nil {
		return LateCountResponse{}, err
	}
	return LateCountResponse{Year: year, Month: month, LateDaysCount: n}, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLateRequest) (LateAttendanceResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(id); err != nil {
		return LateAttendanceResponse{}, attendanceerrors.ErrRecordNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LateAttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rec, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LateAttendanceResponse{}, attendanceerrors.ErrRecordNotFound
		}
		return LateAttendanceResponse{}, err
	}

	rec.Reason = strings.TrimSpace(req.Reason)
	rec.Notes = strings.TrimSpace(req.Notes)
	rec.UpdatedAt = s.now().UTC()
	if err := qtx.Update(ctx, rec); err != nil {
		log.Error("update late record failed", zap.String("record_id", id), zap.Error(err))
		return LateAttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LateAttendanceResponse{}, err
	}
	log.Info("late record updated", zap.String("record_id", id))

	return mapToResponse(*rec), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return attendanceerrors.ErrRecordNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return attendanceerrors.ErrRecordNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Info("late record deleted", zap.String("record_id", id))
	return nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, attendanceerrors.ErrInvalidDate
	}
	return t, nil
}

func mapToResponse(r LateAttendance) LateAttendanceResponse {
	return LateAttendanceResponse{
		ID:           r.ID.String(),
		EmployeeName: r.EmployeeName,
		EmployeeID:   r.EmployeeID,
		Date:         r.Date.Format(dateLayout),
		Reason:       r.Reason,
		Notes:        r.Notes,
		MarkedBy:     r.MarkedBy,
		MarkedAt:     r.MarkedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(recs []LateAttendance) []LateAttendanceResponse {
	out := make([]LateAttendanceResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, mapToResponse(r))
	}
	return out
}
