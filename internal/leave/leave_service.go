package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/achla24/LeaveEase/internal/events"
	leaveerrors "github.com/achla24/LeaveEase/internal/leave/errors"
	"github.com/achla24/LeaveEase/internal/messaging/kafka"
	"github.com/achla24/LeaveEase/internal/notification"
	notificationerrors "github.com/achla24/LeaveEase/internal/notification/errors"
	"github.com/achla24/LeaveEase/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Notifier delivers the notifications that follow a committed decision.
type Notifier interface {
	Notify(ctx context.Context, dec notification.Decision) notification.Outcome
	Generate(ctx context.Context, dec notification.Decision) (notification.Result, error)
	SendAsActor(ctx context.Context, dec notification.Decision) (notification.Result, error)
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

type Options struct {
	// SurfaceWebhookErrors adds the webhook outcome to approve, reject and
	// hr-action responses.
	SurfaceWebhookErrors bool
}

// NotificationError carries the decision result when the decision was saved
// but the email could not be delivered.
type NotificationError struct {
	Result DecisionResult
	Err    error
}

func (e *NotificationError) Error() string { return e.Err.Error() }
func (e *NotificationError) Unwrap() error { return e.Err }

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, status string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, id string) (LeaveResponse, error)
	GetMine(ctx context.Context, actor Actor) ([]LeaveResponse, error)
	Update(ctx context.Context, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (StatsResponse, error)

	Approve(ctx context.Context, actorID, id string) (DecisionResponse, error)
	Reject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResponse, error)
	HRAction(ctx context.Context, actorID, id string, req HRActionRequest) (DecisionResponse, error)

	AIApprove(ctx context.Context, actorID, id string) (DecisionResult, error)
	AIReject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResult, error)
	HRApprove(ctx context.Context, actorID, id string) (DecisionResult, error)
	HRReject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResult, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	notifier Notifier
	opts     Options
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outbox kafka.OutboxRepository,
	notifier Notifier,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		outbox:   outbox,
		notifier: notifier,
		opts:     opts,
		logger:   l,
	}
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create leave requested",
		zap.String("actor_id", actor.ID),
		zap.String("employee_name", req.EmployeeName),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	name, employeeID := requester(actor, req)
	if name == "" {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNameRequired
	}
	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		log.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	leaveType := strings.TrimSpace(req.LeaveType)
	if leaveType == "" {
		leaveType = DefaultLeaveType
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	l := &LeaveRequest{
		ID:           uuid.New(),
		EmployeeName: name,
		EmployeeID:   employeeID,
		StartDate:    startDate,
		EndDate:      endDate,
		Reason:       req.Reason,
		LeaveType:    leaveType,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := qtx.Create(ctx, l); err != nil {
		log.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_name", l.EmployeeName),
		zap.Int("duration", l.Duration()),
	)

	return mapToResponse(*l), nil
}

// requester fills the employee name and id from the caller when the body
// leaves them out. The caller's id is only attached to their own request.
func requester(actor Actor, req CreateLeaveRequest) (string, string) {
	name := strings.TrimSpace(req.EmployeeName)
	id := strings.TrimSpace(req.EmployeeID)

	if name == "" {
		name = actor.name()
		if id == "" {
			id = actor.ID
		}
		return name, id
	}
	if id == "" && (strings.EqualFold(name, actor.FullName) || strings.EqualFold(name, actor.Username)) {
		id = actor.ID
	}
	return name, id
}

// GetAll lists every request, or only those with the given status. Status
// matching ignores case.
func (s *service) GetAll(ctx context.Context, status string) ([]LeaveResponse, error) {
	var (
		leaves []LeaveRequest
		err    error
	)
	if status = canonicalStatus(status); status != "" {
		leaves, err = s.repo.FindByStatus(ctx, status)
	} else {
		leaves, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

func canonicalStatus(status string) string {
	status = strings.TrimSpace(status)
	for _, known := range []string{StatusPending, StatusApproved, StatusRejected} {
		if strings.EqualFold(status, known) {
			return known
		}
	}
	return status
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveResponse, error) {
	l, err := s.find(ctx, s.repo, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetMine(ctx context.Context, actor Actor) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, actor.name(), actor.ID)
	if err != nil {
		return nil, err
	}
	contextutil.GetLogger(ctx, s.logger).Debug("my leaves loaded",
		zap.String("employee_name", actor.name()),
		zap.Int("count", len(leaves)),
	)
	return mapToListResponse(leaves), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	startDate, endDate, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if l.Status != StatusPending {
		log.Warn("update leave rejected, not pending",
			zap.String("leave_id", id),
			zap.String("status", l.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrNotPending
	}

	l.EmployeeName = strings.TrimSpace(req.EmployeeName)
	l.StartDate = startDate
	l.EndDate = endDate
	l.Reason = req.Reason
	if lt := strings.TrimSpace(req.LeaveType); lt != "" {
		l.LeaveType = lt
	}
	l.UpdatedAt = time.Now().UTC()

	if err := qtx.Update(ctx, l); err != nil {
		log.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}
	log.Info("update leave success", zap.String("leave_id", id))

	return mapToResponse(*l), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrLeaveNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	contextutil.GetLogger(ctx, s.logger).Info("leave request deleted", zap.String("leave_id", id))
	return nil
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return StatsResponse{}, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	onLeave, err := s.repo.FindCurrentlyOnLeave(ctx, today)
	if err != nil {
		return StatsResponse{}, err
	}

	people := make(map[string]struct{}, len(onLeave))
	for _, l := range onLeave {
		people[strings.ToLower(l.EmployeeName)] = struct{}{}
	}

	resp := StatsResponse{
		Pending:          counts[StatusPending],
		Approved:         counts[StatusApproved],
		Rejected:         counts[StatusRejected],
		CurrentlyOnLeave: len(people),
	}
	for _, n := range counts {
		resp.Total += n
	}
	return resp, nil
}

func (s *service) Approve(ctx context.Context, actorID, id string) (DecisionResponse, error) {
	return s.decideAndNotify(ctx, actorID, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResponse, error) {
	return s.decideAndNotify(ctx, actorID, id, StatusRejected, rejectionReason)
}

func (s *service) HRAction(ctx context.Context, actorID, id string, req HRActionRequest) (DecisionResponse, error) {
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		return s.decideAndNotify(ctx, actorID, id, StatusApproved, "")
	case "reject":
		return s.decideAndNotify(ctx, actorID, id, StatusRejected, req.Reason)
	default:
		return DecisionResponse{}, leaveerrors.ErrInvalidAction
	}
}

// decideAndNotify runs the webhook-first notification after the decision
// commits. Its outcome never changes the response status.
func (s *service) decideAndNotify(ctx context.Context, actorID, id, status, reason string) (DecisionResponse, error) {
	l, err := s.decide(ctx, actorID, id, status, reason)
	if err != nil {
		return DecisionResponse{}, err
	}

	out := s.notifier.Notify(ctx, decisionFor(*l, actorID))
	resp := DecisionResponse{LeaveResponse: mapToResponse(*l)}
	if s.opts.SurfaceWebhookErrors {
		resp.Notification = notificationStatus(out)
	}
	return resp, nil
}

func (s *service) AIApprove(ctx context.Context, actorID, id string) (DecisionResult, error) {
	return s.decideAndGenerate(ctx, actorID, id, StatusApproved, "")
}

func (s *service) AIReject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResult, error) {
	return s.decideAndGenerate(ctx, actorID, id, StatusRejected, rejectionReason)
}

func (s *service) decideAndGenerate(ctx context.Context, actorID, id, status, reason string) (DecisionResult, error) {
	l, err := s.decide(ctx, actorID, id, status, reason)
	if err != nil {
		return DecisionResult{}, err
	}

	resp := mapToResponse(*l)
	result := DecisionResult{LeaveRequest: &resp, RejectionReason: l.RejectionReason}
	verb := verbFor(status)

	res, err := s.notifier.Generate(ctx, decisionFor(*l, actorID))
	if !res.EmployeeFound && err == nil {
		result.Message = "Employee not found"
		return result, nil
	}
	result.AIMethod = res.Tier
	result.EmployeeEmail = res.EmployeeEmail

	if err != nil {
		result.Message = "Leave " + verb + " but email failed: " + err.Error()
		return result, &NotificationError{Result: result, Err: err}
	}

	result.Success = true
	result.Message = "Leave " + verb + " and AI-powered email sent successfully"
	return result, nil
}

func (s *service) HRApprove(ctx context.Context, actorID, id string) (DecisionResult, error) {
	return s.decideAndSendAsActor(ctx, actorID, id, StatusApproved, "")
}

func (s *service) HRReject(ctx context.Context, actorID, id, rejectionReason string) (DecisionResult, error) {
	return s.decideAndSendAsActor(ctx, actorID, id, StatusRejected, rejectionReason)
}

func (s *service) decideAndSendAsActor(ctx context.Context, actorID, id, status, reason string) (DecisionResult, error) {
	l, err := s.decide(ctx, actorID, id, status, reason)
	if err != nil {
		return DecisionResult{}, err
	}

	resp := mapToResponse(*l)
	result := DecisionResult{LeaveRequest: &resp, RejectionReason: l.RejectionReason}
	verb := verbFor(status)

	res, err := s.notifier.SendAsActor(ctx, decisionFor(*l, actorID))
	if errors.Is(err, notificationerrors.ErrActorNotFound) {
		result.Message = leaveerrors.ErrHRUserNotFound.Message
		return result, nil
	}
	if !res.EmployeeFound && err == nil {
		result.Message = "Employee not found"
		return result, nil
	}

	result.EmailMethod = res.EmailMethod
	result.FromEmail = res.FromEmail
	result.ToEmail = res.ToEmail
	result.EmployeeEmail = res.EmployeeEmail
	result.HRUser = res.HRUser
	result.Note = res.Note

	if err != nil {
		result.Message = "Leave " + verb + " but email failed: " + err.Error()
		return result, &NotificationError{Result: result, Err: err}
	}

	result.Success = true
	if res.EmailMethod == notification.EmailMethodHRDirect {
		result.Message = "Leave " + verb + " and email sent from HR to Employee"
	} else {
		result.Message = "Leave " + verb + " and email sent (system fallback)"
	}
	return result, nil
}

// decide records the status change and its outbox event in one transaction.
// Any existing request may be decided again.
func (s *service) decide(ctx context.Context, actorID, id, status, reason string) (*LeaveRequest, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("leave decision requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", status),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("leave decision begin tx failed", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := s.find(ctx, qtx, id)
	if err != nil {
		return nil, err
	}

	previous := l.Status
	l.Status = status
	if status == StatusRejected && reason != "" {
		r := reason
		l.RejectionReason = &r
	} else {
		l.RejectionReason = nil
	}
	l.UpdatedAt = time.Now().UTC()

	if err := qtx.Update(ctx, l); err != nil {
		log.Error("leave decision persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", status),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.writeDecisionEvent(ctx, tx, l, actorID); err != nil {
		log.Error("leave decision outbox persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("leave decision commit failed", zap.String("leave_id", id), zap.Error(err))
		return nil, err
	}
	log.Info("leave decision saved",
		zap.String("leave_id", id),
		zap.String("from_status", previous),
		zap.String("status", status),
		zap.String("actor_id", actorID),
	)
	return l, nil
}

func (s *service) writeDecisionEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, actorID string) error {
	if s.outbox == nil {
		return nil
	}

	rid := contextutil.GetRequestID(ctx)
	event := events.LeaveDecidedEvent{
		EventType:       events.LeaveDecidedEventType,
		RequestID:       rid,
		LeaveID:         l.ID.String(),
		Status:          l.Status,
		EmployeeName:    l.EmployeeName,
		DecidedBy:       actorID,
		RejectionReason: l.RejectionReason,
		OccurredAt:      l.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: events.LeaveAggregateType,
		AggregateID:   l.ID.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveDecisionTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*LeaveRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	l, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrLeaveNotFound
		}
		return nil, err
	}
	return l, nil
}

func decisionFor(l LeaveRequest, actorID string) notification.Decision {
	dec := notification.Decision{
		Kind:    notification.KindApproved,
		Leave:   l.Snapshot(),
		ActorID: actorID,
	}
	if l.Status == StatusRejected {
		dec.Kind = notification.KindRejected
		if l.RejectionReason != nil {
			dec.RejectionReason = *l.RejectionReason
		}
	}
	return dec
}

func verbFor(status string) string {
	if status == StatusRejected {
		return "rejected"
	}
	return "approved"
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	return LeaveResponse{
		ID:              l.ID.String(),
		EmployeeName:    l.EmployeeName,
		EmployeeID:      l.EmployeeID,
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		Duration:        l.Duration(),
		Reason:          l.Reason,
		LeaveType:       l.LeaveType,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		CreatedAt:       l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       l.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
