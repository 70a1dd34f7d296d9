package notification

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/achla24/LeaveEase/internal/mailer"
	"github.com/achla24/LeaveEase/internal/metrics"
	notificationerrors "github.com/achla24/LeaveEase/internal/notification/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	strategyWebhookFirst = "webhook_first"
	strategyGenerate     = "generate"
	strategyAsActor      = "as_actor"
	strategyReminder     = "reminder"
	strategyTest         = "test"

	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"

	credentialNote = "Configure HR email credentials for direct HR-to-Employee communication"
)

type Mailer interface {
	SendHTML(ctx context.Context, msg mailer.Message) error
	SendPlain(ctx context.Context, msg mailer.Message) error
	SystemAddress() string
	Configured() bool
}

// Credentials returns a usable app password for a mailbox.
type Credentials interface {
	Lookup(ctx context.Context, email string) (string, bool)
}

type Deps struct {
	Directory   Directory
	Webhook     Webhook
	Waterfall   *Waterfall
	Smart       ContentGenerator
	Static      *StaticTemplate
	Mailer      Mailer
	Credentials Credentials
}

type Dispatcher struct {
	dir       Directory
	webhook   Webhook
	waterfall *Waterfall
	smart     ContentGenerator
	static    *StaticTemplate
	mail      Mailer
	creds     Credentials
	now       func() time.Time
	logger    *zap.Logger
}

func NewDispatcher(deps Deps, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("notification.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.dispatcher")
	}

	static := deps.Static
	if static == nil {
		static = NewStaticTemplate()
	}
	waterfall := deps.Waterfall
	if waterfall == nil {
		waterfall = NewWaterfall(static, nil, l)
	}
	smart := deps.Smart
	if smart == nil {
		smart = static
	}

	return &Dispatcher{
		dir:       deps.Directory,
		webhook:   deps.Webhook,
		waterfall: waterfall,
		smart:     smart,
		static:    static,
		mail:      deps.Mailer,
		creds:     deps.Credentials,
		now:       time.Now,
		logger:    l,
	}
}

// WithClock replaces the time source used for payload timestamps.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func newNotificationID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

func (d *Dispatcher) resolve(ctx context.Context, log *zap.Logger, leave LeaveSnapshot) (Recipient, bool) {
	employee, found, err := d.dir.ResolveForLeave(ctx, LeaveRef{EmployeeID: leave.EmployeeID, EmployeeName: leave.EmployeeName})
	if err != nil {
		log.Error("employee lookup failed", zap.Error(err))
		return Recipient{}, false
	}
	if !found {
		log.Warn("employee not found for leave request, skipping notification",
			zap.String("employee_name", leave.EmployeeName),
			zap.String("employee_id", leave.EmployeeID),
		)
		return Recipient{}, false
	}
	return employee, true
}

func (d *Dispatcher) actor(ctx context.Context, log *zap.Logger, actorID string) *Recipient {
	if actorID == "" {
		return nil
	}
	hr, found, err := d.dir.FindActor(ctx, actorID)
	if err != nil {
		log.Warn("hr actor lookup failed", zap.String("actor_id", actorID), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return &hr
}

// Notify posts the decision to the workflow webhook, then sends the
// HR-branded copy from the system account. When the webhook fails that copy
// is the fallback, so the employee gets exactly one direct email either way.
func (d *Dispatcher) Notify(ctx context.Context, dec Decision) Outcome {
	out := Outcome{NotificationID: newNotificationID()}
	log := d.logger.With(
		zap.String("notification_id", out.NotificationID),
		zap.String("strategy", strategyWebhookFirst),
		zap.String("leave_id", dec.Leave.ID),
		zap.String("kind", string(dec.Kind)),
	)

	employee, ok := d.resolve(ctx, log, dec.Leave)
	if !ok {
		metrics.ObserveNotification(strategyWebhookFirst, "none", "none", outcomeSkipped)
		return out
	}
	out.EmployeeFound = true
	hr := d.actor(ctx, log, dec.ActorID)

	if err := d.webhook.Send(ctx, decisionPayload(dec, employee, d.now())); err != nil {
		out.FallbackUsed = true
		out.Error = err.Error()
		log.Warn("webhook notification failed, falling back to direct email",
			zap.String("recipient", employee.Email),
			zap.Error(err),
		)
		metrics.ObserveNotification(strategyWebhookFirst, "webhook", "none", outcomeFailed)
	} else {
		out.WebhookDelivered = true
		log.Info("webhook notification delivered",
			zap.String("recipient", employee.Email),
			zap.String("channel", "webhook"),
		)
		metrics.ObserveNotification(strategyWebhookFirst, "webhook", "none", outcomeSent)
	}

	content := Content{Kind: dec.Kind, Leave: &dec.Leave, Employee: &employee, HR: hr, RejectionReason: dec.RejectionReason}
	body, err := d.static.Generate(ctx, content)
	if err != nil {
		body = lastResortBody(content)
	}

	msg := mailer.Message{
		FromName: content.hrName() + " (HR)",
		To:       employee.Email,
		Subject:  notifySubject(dec),
		Body:     body,
	}
	if hr != nil {
		msg.ReplyTo = hr.Email
	}

	if err := d.mail.SendHTML(ctx, msg); err != nil {
		if out.Error == "" {
			out.Error = err.Error()
		}
		log.Error("direct email failed",
			zap.String("sender", d.mail.SystemAddress()),
			zap.String("recipient", employee.Email),
			zap.String("tier", StaticTierName),
			zap.Error(err),
		)
		metrics.ObserveNotification(strategyWebhookFirst, "email", StaticTierName, outcomeFailed)
		return out
	}

	out.EmailSent = true
	log.Info("direct email sent",
		zap.String("sender", d.mail.SystemAddress()),
		zap.String("reply_to", msg.ReplyTo),
		zap.String("recipient", employee.Email),
		zap.String("channel", "email"),
		zap.String("tier", StaticTierName),
	)
	metrics.ObserveNotification(strategyWebhookFirst, "email", StaticTierName, outcomeSent)
	return out
}

// Generate runs the content waterfall and sends the result as system mail.
// A missing employee is reported through Result, not as an error.
func (d *Dispatcher) Generate(ctx context.Context, dec Decision) (Result, error) {
	res := Result{NotificationID: newNotificationID(), EmailMethod: EmailMethodSystem}
	log := d.logger.With(
		zap.String("notification_id", res.NotificationID),
		zap.String("strategy", strategyGenerate),
		zap.String("leave_id", dec.Leave.ID),
		zap.String("kind", string(dec.Kind)),
	)

	employee, ok := d.resolve(ctx, log, dec.Leave)
	if !ok {
		metrics.ObserveNotification(strategyGenerate, "none", "none", outcomeSkipped)
		return res, nil
	}
	res.EmployeeFound = true
	res.ToEmail = employee.Email
	res.EmployeeEmail = employee.Email

	hr := d.actor(ctx, log, dec.ActorID)
	if hr != nil {
		res.HRUser = hr.DisplayName()
	}

	content := Content{Kind: dec.Kind, Leave: &dec.Leave, Employee: &employee, HR: hr, RejectionReason: dec.RejectionReason}
	body, tier := d.waterfall.Generate(ctx, content)
	res.Tier = tier
	res.FromEmail = d.mail.SystemAddress()

	msg := mailer.Message{
		To:      employee.Email,
		Subject: generatedSubject(dec),
		Body:    body,
	}
	if hr != nil {
		msg.ReplyTo = hr.Email
	}

	if err := d.mail.SendHTML(ctx, msg); err != nil {
		log.Error("generated email failed",
			zap.String("sender", res.FromEmail),
			zap.String("recipient", employee.Email),
			zap.String("tier", tier),
			zap.Error(err),
		)
		metrics.ObserveNotification(strategyGenerate, "email", tier, outcomeFailed)
		return res, apperror.Wrap(err, notificationerrors.ErrDeliveryFailed.Code, notificationerrors.ErrDeliveryFailed.Message, notificationerrors.ErrDeliveryFailed.HTTPStatus)
	}

	log.Info("generated email sent",
		zap.String("sender", res.FromEmail),
		zap.String("recipient", employee.Email),
		zap.String("channel", "email"),
		zap.String("tier", tier),
	)
	metrics.ObserveNotification(strategyGenerate, "email", tier, outcomeSent)
	return res, nil
}

// SendAsActor mails the employee from the HR actor's own mailbox when a
// credential is on file, otherwise from the system account.
func (d *Dispatcher) SendAsActor(ctx context.Context, dec Decision) (Result, error) {
	res := Result{NotificationID: newNotificationID()}
	log := d.logger.With(
		zap.String("notification_id", res.NotificationID),
		zap.String("strategy", strategyAsActor),
		zap.String("leave_id", dec.Leave.ID),
		zap.String("kind", string(dec.Kind)),
	)

	hr := d.actor(ctx, log, dec.ActorID)
	if hr == nil {
		return res, notificationerrors.ErrActorNotFound
	}
	res.HRUser = hr.DisplayName()

	employee, ok := d.resolve(ctx, log, dec.Leave)
	if !ok {
		metrics.ObserveNotification(strategyAsActor, "none", "none", outcomeSkipped)
		return res, nil
	}
	res.EmployeeFound = true
	res.ToEmail = employee.Email
	res.EmployeeEmail = employee.Email

	content := Content{Kind: dec.Kind, Leave: &dec.Leave, Employee: &employee, HR: hr, RejectionReason: dec.RejectionReason}
	body, err := d.smart.Generate(ctx, content)
	res.Tier = d.smart.Name()
	if err != nil || body == "" {
		body, _ = d.static.Generate(ctx, content)
		res.Tier = StaticTierName
	}

	msg := mailer.Message{
		ReplyTo: hr.Email,
		To:      employee.Email,
		Subject: generatedSubject(dec),
		Body:    body,
	}

	if password, ok := d.creds.Lookup(ctx, hr.Email); ok {
		direct := msg
		direct.From = hr.Email
		direct.FromName = hr.DisplayName()
		direct.Credentials = &mailer.Credentials{Username: hr.Email, Password: password}

		err := d.mail.SendHTML(ctx, direct)
		if err == nil {
			res.EmailMethod = EmailMethodHRDirect
			res.FromEmail = hr.Email
			log.Info("hr direct email sent",
				zap.String("sender", hr.Email),
				zap.String("recipient", employee.Email),
				zap.String("channel", "email"),
				zap.String("tier", res.Tier),
			)
			metrics.ObserveNotification(strategyAsActor, "hr_direct", res.Tier, outcomeSent)
			return res, nil
		}

		log.Warn("hr direct email failed, using system account",
			zap.String("sender", hr.Email),
			zap.String("recipient", employee.Email),
			zap.Error(err),
		)
		metrics.ObserveNotification(strategyAsActor, "hr_direct", res.Tier, outcomeFailed)
	}

	res.EmailMethod = EmailMethodSystem
	res.FromEmail = d.mail.SystemAddress()
	res.Note = credentialNote
	msg.FromName = hr.DisplayName() + " (HR)"

	if err := d.mail.SendHTML(ctx, msg); err != nil {
		log.Error("system email failed",
			zap.String("sender", res.FromEmail),
			zap.String("recipient", employee.Email),
			zap.Error(err),
		)
		metrics.ObserveNotification(strategyAsActor, "email", res.Tier, outcomeFailed)
		return res, apperror.Wrap(err, notificationerrors.ErrDeliveryFailed.Code, notificationerrors.ErrDeliveryFailed.Message, notificationerrors.ErrDeliveryFailed.HTTPStatus)
	}

	log.Info("system email sent on behalf of hr",
		zap.String("sender", res.FromEmail),
		zap.String("reply_to", hr.Email),
		zap.String("recipient", employee.Email),
		zap.String("channel", "email"),
		zap.String("tier", res.Tier),
	)
	metrics.ObserveNotification(strategyAsActor, "email", res.Tier, outcomeSent)
	return res, nil
}

// Remind sends an upcoming-leave reminder, webhook first with the static
// reminder email as fallback.
func (d *Dispatcher) Remind(ctx context.Context, leave LeaveSnapshot) Outcome {
	out := Outcome{NotificationID: newNotificationID()}
	log := d.logger.With(
		zap.String("notification_id", out.NotificationID),
		zap.String("strategy", strategyReminder),
		zap.String("leave_id", leave.ID),
	)

	employee, ok := d.resolve(ctx, log, leave)
	if !ok {
		metrics.ObserveNotification(strategyReminder, "none", "none", outcomeSkipped)
		return out
	}
	out.EmployeeFound = true

	dec := Decision{Kind: KindReminder, Leave: leave}
	err := d.webhook.Send(ctx, decisionPayload(dec, employee, d.now()))
	if err == nil {
		out.WebhookDelivered = true
		log.Info("reminder delivered via webhook", zap.String("recipient", employee.Email))
		metrics.ObserveNotification(strategyReminder, "webhook", "none", outcomeSent)
		return out
	}
	out.FallbackUsed = true
	out.Error = err.Error()
	log.Warn("reminder webhook failed, falling back to email", zap.Error(err))
	metrics.ObserveNotification(strategyReminder, "webhook", "none", outcomeFailed)

	body, err := d.static.Generate(ctx, Content{Kind: KindReminder, Leave: &leave, Employee: &employee})
	if err != nil {
		body = lastResortBody(Content{Kind: KindReminder, Leave: &leave, Employee: &employee})
	}

	err = d.mail.SendHTML(ctx, mailer.Message{
		To:      employee.Email,
		Subject: "📅 Leave Reminder - " + leave.LeaveType,
		Body:    body,
	})
	if err != nil {
		out.Error = err.Error()
		log.Error("reminder email failed", zap.String("recipient", employee.Email), zap.Error(err))
		metrics.ObserveNotification(strategyReminder, "email", StaticTierName, outcomeFailed)
		return out
	}

	out.EmailSent = true
	log.Info("reminder email sent",
		zap.String("sender", d.mail.SystemAddress()),
		zap.String("recipient", employee.Email),
		zap.String("tier", StaticTierName),
	)
	metrics.ObserveNotification(strategyReminder, "email", StaticTierName, outcomeSent)
	return out
}

func (d *Dispatcher) TestWebhook(ctx context.Context) error {
	err := d.webhook.Send(ctx, TestPayload{
		Type:      "TEST",
		Message:   "Test notification from LeaveEase",
		Timestamp: d.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		d.logger.Warn("webhook test failed", zap.Error(err))
		metrics.ObserveNotification(strategyTest, "webhook", "none", outcomeFailed)
		return apperror.Wrap(err, notificationerrors.ErrWebhookUnavailable.Code, notificationerrors.ErrWebhookUnavailable.Message, notificationerrors.ErrWebhookUnavailable.HTTPStatus)
	}
	metrics.ObserveNotification(strategyTest, "webhook", "none", outcomeSent)
	return nil
}

// EmailConfigured reports whether outgoing mail has a system mailbox and
// credentials. Unconfigured mail is logged instead of sent.
func (d *Dispatcher) EmailConfigured() bool {
	return d.mail != nil && d.mail.Configured()
}

func (d *Dispatcher) TestEmail(ctx context.Context, to string) error {
	if to == "" {
		return notificationerrors.ErrTestEmailRequired
	}

	err := d.mail.SendHTML(ctx, mailer.Message{
		To:      to,
		Subject: "Test Email from LeaveEase",
		Body: fmt.Sprintf("<h2>Test Email</h2><p>This is a test email from LeaveEase sent at %s.</p><p>If you received this, email delivery is working.</p>",
			d.now().Format(time.RFC1123)),
	})
	if err != nil {
		metrics.ObserveNotification(strategyTest, "email", "none", outcomeFailed)
		return apperror.Wrap(err, notificationerrors.ErrDeliveryFailed.Code, notificationerrors.ErrDeliveryFailed.Message, notificationerrors.ErrDeliveryFailed.HTTPStatus)
	}
	metrics.ObserveNotification(strategyTest, "email", "none", outcomeSent)
	return nil
}

func notifySubject(dec Decision) string {
	if dec.Kind == KindRejected {
		return "❌ Leave Request Rejected - " + dec.Leave.LeaveType
	}
	return "✅ Leave Request Approved - " + dec.Leave.LeaveType
}

func generatedSubject(dec Decision) string {
	if dec.Kind == KindRejected {
		return "📋 Leave Request Update - " + dec.Leave.LeaveType
	}
	return "✅ Leave Request Approved - " + dec.Leave.LeaveType
}
