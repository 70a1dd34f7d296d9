package dashboard

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/shared/contextutil"
	"github.com/achla24/LeaveEase/internal/user"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	dateLayout = "2006-01-02"

	listLimit          = 5
	unassignedDept     = "Unassigned"
	quarterlyAllowance = leave.AnnualAllowance / 4
)

// LeaveReader is the read side of the leave store.
type LeaveReader interface {
	FindAll(ctx context.Context) ([]leave.LeaveRequest, error)
	FindByEmployee(ctx context.Context, name, id string) ([]leave.LeaveRequest, error)
	FindByStatus(ctx context.Context, status string) ([]leave.LeaveRequest, error)
	FindCurrentlyOnLeave(ctx context.Context, day time.Time) ([]leave.LeaveRequest, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type UserReader interface {
	FindAll(ctx context.Context) ([]user.User, error)
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

type Service interface {
	MyStats(ctx context.Context, actor Actor) (MyStatsResponse, error)
	Quarterly(ctx context.Context, actor Actor) (QuarterlyResponse, error)
	UpcomingLeaves(ctx context.Context) ([]UpcomingLeave, error)
	TeamOnLeave(ctx context.Context) ([]TeamMemberOnLeave, error)
	Notifications(ctx context.Context) ([]Notification, error)

	PendingRequests(ctx context.Context) ([]RequestSummary, error)
	AllRequests(ctx context.Context) ([]RequestSummary, error)
	EmployeeStats(ctx context.Context) (EmployeeStatsResponse, error)
	DepartmentStats(ctx context.Context) (DepartmentStatsResponse, error)
}

type service struct {
	leaves LeaveReader
	users  UserReader
	now    func() time.Time
	logger *zap.Logger
}

// NewService builds the dashboard reader. now defaults to time.Now.
func NewService(leaves LeaveReader, users UserReader, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("dashboard.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("dashboard.service")
	}
	if now == nil {
		now = time.Now
	}
	return &service{leaves: leaves, users: users, now: now, logger: l}
}

func (s *service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) MyStats(ctx context.Context, actor Actor) (MyStatsResponse, error) {
	today := s.today()
	mine, err := s.leaves.FindByEmployee(ctx, actor.name(), actor.ID)
	if err != nil {
		return MyStatsResponse{}, err
	}
	onLeave, err := s.leaves.FindCurrentlyOnLeave(ctx, today)
	if err != nil {
		return MyStatsResponse{}, err
	}

	yearStart := time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	thisYear := startingBetween(mine, yearStart, yearStart.AddDate(1, 0, -1))

	var approved, pending int
	for _, l := range thisYear {
		switch l.Status {
		case leave.StatusApproved:
			approved++
		case leave.StatusPending:
			pending++
		}
	}
	rate := 0
	if len(thisYear) > 0 {
		rate = int(math.Round(float64(approved) / float64(len(thisYear)) * 100))
	}
	taken := approvedDays(thisYear)

	contextutil.GetLogger(ctx, s.logger).Debug("dashboard stats computed",
		zap.String("employee_name", actor.name()),
		zap.Int("requests", len(thisYear)),
	)
	return MyStatsResponse{
		TotalLeaveTaken:    taken,
		RemainingDays:      max(0, leave.AnnualAllowance-taken),
		ApprovalRate:       rate,
		PendingRequests:    pending,
		TeamMembersOnLeave: len(onLeave),
		AnnualAllowance:    leave.AnnualAllowance,
	}, nil
}

// Quarterly splits the caller's approved days by the quarter each leave
// starts in.
func (s *service) Quarterly(ctx context.Context, actor Actor) (QuarterlyResponse, error) {
	year := s.today().Year()
	mine, err := s.leaves.FindByEmployee(ctx, actor.name(), actor.ID)
	if err != nil {
		return QuarterlyResponse{}, err
	}

	resp := QuarterlyResponse{
		Taken:           make(map[string]int, 4),
		Remaining:       make(map[string]int, 4),
		AnnualAllowance: leave.AnnualAllowance,
	}
	for q := 1; q <= 4; q++ {
		from := time.Date(year, time.Month(3*q-2), 1, 0, 0, 0, 0, time.UTC)
		taken := approvedDays(startingBetween(mine, from, from.AddDate(0, 3, -1)))
		key := fmt.Sprintf("Q%d", q)
		resp.Taken[key] = taken
		resp.Remaining[key] = max(0, quarterlyAllowance-taken)
		resp.TotalTakenThisYear += taken
	}
	resp.TotalRemainingThisYear = max(0, leave.AnnualAllowance-resp.TotalTakenThisYear)
	return resp, nil
}

// UpcomingLeaves lists the next approved leaves that have not started yet.
func (s *service) UpcomingLeaves(ctx context.Context) ([]UpcomingLeave, error) {
	today := s.today()
	approved, err := s.leaves.FindByStatus(ctx, leave.StatusApproved)
	if err != nil {
		return nil, err
	}

	out := make([]UpcomingLeave, 0, listLimit)
	for _, l := range approved {
		if !l.StartDate.After(today) {
			continue
		}
		out = append(out, UpcomingLeave{
			EmployeeName: l.EmployeeName,
			StartDate:    l.StartDate.Format(dateLayout),
			EndDate:      l.EndDate.Format(dateLayout),
			Duration:     l.Duration(),
			LeaveType:    l.LeaveType,
			Status:       l.Status,
		})
		if len(out) == listLimit {
			break
		}
	}
	return out, nil
}

func (s *service) TeamOnLeave(ctx context.Context) ([]TeamMemberOnLeave, error) {
	onLeave, err := s.leaves.FindCurrentlyOnLeave(ctx, s.today())
	if err != nil {
		return nil, err
	}

	out := make([]TeamMemberOnLeave, 0, len(onLeave))
	for _, l := range onLeave {
		out = append(out, TeamMemberOnLeave{
			EmployeeName: l.EmployeeName,
			StartDate:    l.StartDate.Format(dateLayout),
			EndDate:      l.EndDate.Format(dateLayout),
			LeaveType:    l.LeaveType,
			Reason:       l.Reason,
		})
	}
	return out, nil
}

// Notifications describes the most recently submitted requests. FindAll
// returns the newest first.
func (s *service) Notifications(ctx context.Context) ([]Notification, error) {
	all, err := s.leaves.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, listLimit)
	for _, l := range all[:min(listLimit, len(all))] {
		out = append(out, Notification{
			ID:           l.ID.String(),
			EmployeeName: l.EmployeeName,
			Status:       l.Status,
			CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
			Message:      notificationMessage(l.Status),
		})
	}
	return out, nil
}

func notificationMessage(status string) string {
	switch status {
	case leave.StatusPending:
		return "New leave request submitted"
	case leave.StatusApproved:
		return "Leave request has been approved"
	case leave.StatusRejected:
		return "Leave request has been rejected"
	default:
		return "Leave request updated"
	}
}

func (s *service) PendingRequests(ctx context.Context) ([]RequestSummary, error) {
	pending, err := s.leaves.FindByStatus(ctx, leave.StatusPending)
	if err != nil {
		return nil, err
	}
	return summarize(pending), nil
}

func (s *service) AllRequests(ctx context.Context) ([]RequestSummary, error) {
	all, err := s.leaves.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(all), nil
}

func (s *service) EmployeeStats(ctx context.Context) (EmployeeStatsResponse, error) {
	var (
		users   []user.User
		onLeave []leave.LeaveRequest
		counts  map[string]int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.users.FindAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		onLeave, err = s.leaves.FindCurrentlyOnLeave(gctx, s.today())
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.leaves.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return EmployeeStatsResponse{}, err
	}

	away := make(map[string]struct{}, len(onLeave))
	for _, l := range onLeave {
		away[strings.ToLower(l.EmployeeName)] = struct{}{}
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return EmployeeStatsResponse{
		TotalEmployees:   len(users),
		EmployeesOnLeave: len(away),
		EmployeesPresent: max(0, len(users)-len(away)),
		PendingApprovals: counts[leave.StatusPending],
		TotalRequests:    total,
		ApprovedRequests: counts[leave.StatusApproved],
	}, nil
}

// DepartmentStats counts requests per department of the requester. Requests
// from names without an account, or accounts without a department, are
// counted as Unassigned.
func (s *service) DepartmentStats(ctx context.Context) (DepartmentStatsResponse, error) {
	var (
		users  []user.User
		leaves []leave.LeaveRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.users.FindAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		leaves, err = s.leaves.FindAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return DepartmentStatsResponse{}, err
	}

	byID := make(map[string]string, len(users))
	byName := make(map[string]string, len(users))
	for _, u := range users {
		dept := strings.TrimSpace(u.Department)
		if dept == "" {
			dept = unassignedDept
		}
		byID[u.ID.String()] = dept
		byName[strings.ToLower(u.FullName)] = dept
	}

	counts := make(map[string]int64)
	for _, l := range leaves {
		dept, ok := byID[l.EmployeeID]
		if !ok {
			dept, ok = byName[strings.ToLower(l.EmployeeName)]
		}
		if !ok {
			dept = unassignedDept
		}
		counts[dept]++
	}
	return DepartmentStatsResponse{DepartmentLeaves: counts}, nil
}

func startingBetween(leaves []leave.LeaveRequest, from, to time.Time) []leave.LeaveRequest {
	var out []leave.LeaveRequest
	for _, l := range leaves {
		if !l.StartDate.Before(from) && !l.StartDate.After(to) {
			out = append(out, l)
		}
	}
	return out
}

func approvedDays(leaves []leave.LeaveRequest) int {
	days := 0
	for _, l := range leaves {
		if l.Status == leave.StatusApproved {
			days += l.Duration()
		}
	}
	return days
}

func summarize(leaves []leave.LeaveRequest) []RequestSummary {
	out := make([]RequestSummary, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, RequestSummary{
			ID:           l.ID.String(),
			EmployeeName: l.EmployeeName,
			StartDate:    l.StartDate.Format(dateLayout),
			EndDate:      l.EndDate.Format(dateLayout),
			Duration:     l.Duration(),
			LeaveType:    l.LeaveType,
			Reason:       l.Reason,
			Status:       l.Status,
			CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
