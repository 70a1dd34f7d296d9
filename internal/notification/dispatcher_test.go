package notification_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/achla24/LeaveEase/internal/mailer"
	"github.com/achla24/LeaveEase/internal/notification"
	notificationerrors "github.com/achla24/LeaveEase/internal/notification/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	employee *notification.Recipient
	actor    *notification.Recipient
	err      error
	refs     []notification.LeaveRef
}

func (f *fakeDirectory) ResolveForLeave(_ context.Context, ref notification.LeaveRef) (notification.Recipient, bool, error) {
	f.refs = append(f.refs, ref)
	if f.err != nil {
		return notification.Recipient{}, false, f.err
	}
	if f.employee == nil {
		return notification.Recipient{}, false, nil
	}
	return *f.employee, true, nil
}

func (f *fakeDirectory) FindActor(_ context.Context, _ string) (notification.Recipient, bool, error) {
	if f.actor == nil {
		return notification.Recipient{}, false, nil
	}
	return *f.actor, true, nil
}

type fakeWebhook struct {
	err      error
	payloads []any
}

func (f *fakeWebhook) Send(_ context.Context, payload any) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

type fakeMailer struct {
	err          error
	sent         []mailer.Message
	unconfigured bool
}

func (f *fakeMailer) SendHTML(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}
func (f *fakeMailer) SendPlain(_ context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}
func (f *fakeMailer) SystemAddress() string { return "system@company.com" }
func (f *fakeMailer) Configured() bool { return !f.unconfigured }

type fakeCreds struct {
	values map[string]string
}

func (f *fakeCreds) Lookup(_ context.Context, email string) (string, bool) {
	v, ok := f.values[email]
	return v, ok
}

func janeHR() *notification.Recipient {
	return &notification.Recipient{ID: "u-hr", Username: "jane", FullName: "Jane HR", Email: "jane.hr@gmail.com", Role: "HR"}
}

type dispatcherFixture struct {
	dir     *fakeDirectory
	webhook *fakeWebhook
	mail    *fakeMailer
	creds   *fakeCreds
	llm     *stubGenerator
	d       *notification.Dispatcher
}

func newDispatcher() *dispatcherFixture {
	f := &dispatcherFixture{
		dir:     &fakeDirectory{employee: johnDoe(), actor: janeHR()},
		webhook: &fakeWebhook{},
		mail:    &fakeMailer{},
		creds:   &fakeCreds{values: map[string]string{}},
		llm:     &stubGenerator{name: notification.OpenAITierName, err: errors.New("no api key")},
	}
	static := notification.NewStaticTemplate()
	smart := notification.NewSmartTemplate("hr@company.com or ext. 1234").WithChooser(func(int) int { return 0 })
	f.d = notification.NewDispatcher(notification.Deps{
		Directory:   f.dir,
		Webhook:     f.webhook,
		Waterfall:   notification.NewWaterfall(static, []notification.ContentGenerator{f.llm, smart}, zap.NewNop()),
		Smart:       smart,
		Static:      static,
		Mailer:      f.mail,
		Credentials: f.creds,
	}, zap.NewNop()).WithClock(func() time.Time { return date("2025-08-01") })
	return f
}

func approvedDecision() notification.Decision {
	return notification.Decision{Kind: notification.KindApproved, Leave: *annualLeave(), ActorID: "u-hr"}
}

func TestDispatcher_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("webhook delivered and hr branded copy sent", func(t *testing.T) {
		f := newDispatcher()

		out := f.d.Notify(ctx, approvedDecision())

		assert.True(t, out.EmployeeFound)
		assert.True(t, out.WebhookDelivered)
		assert.False(t, out.FallbackUsed)
		assert.True(t, out.EmailSent)
		assert.Len(t, out.NotificationID, 26)

		assert.Len(t, f.webhook.payloads, 1)
		p := f.webhook.payloads[0].(notification.DecisionPayload)
		assert.Equal(t, "LEAVE_APPROVED", p.Type)
		assert.Equal(t, "APPROVED", p.Action)
		assert.Equal(t, "high", p.Priority)
		assert.Equal(t, []string{"email", "whatsapp", "slack"}, p.Channels)
		assert.Equal(t, 6, p.Duration)
		assert.Equal(t, "john.doe@company.com", p.EmployeeEmail)
		assert.Equal(t, "2025-08-01T00:00:00Z", p.Timestamp)

		assert.Len(t, f.mail.sent, 1)
		msg := f.mail.sent[0]
		assert.Equal(t, "john.doe@company.com", msg.To)
		assert.Equal(t, "jane.hr@gmail.com", msg.ReplyTo)
		assert.Equal(t, "Jane HR (HR)", msg.FromName)
		assert.Equal(t, "✅ Leave Request Approved - Annual", msg.Subject)
	})

	t.Run("webhook failure falls back to exactly one email", func(t *testing.T) {
		f := newDispatcher()
		f.webhook.err = errors.New("dial tcp: connection refused")

		out := f.d.Notify(ctx, approvedDecision())

		assert.False(t, out.WebhookDelivered)
		assert.True(t, out.FallbackUsed)
		assert.True(t, out.EmailSent)
		assert.Equal(t, "dial tcp: connection refused", out.Error)
		assert.Len(t, f.webhook.payloads, 1)
		assert.Len(t, f.mail.sent, 1)
		assert.Contains(t, f.mail.sent[0].Subject, "Approved")
		assert.Contains(t, f.mail.sent[0].Subject, "Annual")
	})

	t.Run("rejection carries the reason", func(t *testing.T) {
		f := newDispatcher()
		dec := notification.Decision{Kind: notification.KindRejected, Leave: *annualLeave(), ActorID: "u-hr", RejectionReason: "Insufficient notice period"}

		f.d.Notify(ctx, dec)

		p := f.webhook.payloads[0].(notification.DecisionPayload)
		assert.Equal(t, "LEAVE_REJECTED", p.Type)
		assert.Equal(t, "Insufficient notice period", p.RejectionReason)
		assert.Equal(t, "❌ Leave Request Rejected - Annual", f.mail.sent[0].Subject)
		assert.Contains(t, f.mail.sent[0].Body, "Insufficient notice period")
	})

	t.Run("employee not found skips everything", func(t *testing.T) {
		f := newDispatcher()
		f.dir.employee = nil

		out := f.d.Notify(ctx, approvedDecision())

		assert.False(t, out.EmployeeFound)
		assert.Empty(t, f.webhook.payloads)
		assert.Empty(t, f.mail.sent)
		assert.Equal(t, "John Doe", f.dir.refs[0].EmployeeName)
	})

	t.Run("email failure is reported not raised", func(t *testing.T) {
		f := newDispatcher()
		f.mail.err = errors.New("smtp down")

		out := f.d.Notify(ctx, approvedDecision())

		assert.True(t, out.WebhookDelivered)
		assert.False(t, out.EmailSent)
		assert.Equal(t, "smtp down", out.Error)
	})
}

func TestDispatcher_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("falls through to smart template", func(t *testing.T) {
		f := newDispatcher()

		res, err := f.d.Generate(ctx, approvedDecision())

		assert.NoError(t, err)
		assert.True(t, res.EmployeeFound)
		assert.Equal(t, notification.SmartTierName, res.Tier)
		assert.Equal(t, notification.EmailMethodSystem, res.EmailMethod)
		assert.Equal(t, "system@company.com", res.FromEmail)
		assert.Equal(t, "john.doe@company.com", res.ToEmail)
		assert.Equal(t, "Jane HR", res.HRUser)
		assert.Equal(t, 1, f.llm.calls)
		assert.Empty(t, f.webhook.payloads)
		assert.Equal(t, "✅ Leave Request Approved - Annual", f.mail.sent[0].Subject)
	})

	t.Run("uses llm output when available", func(t *testing.T) {
		f := newDispatcher()
		f.llm.err = nil
		f.llm.body = "<p>AI body</p>"
		dec := notification.Decision{Kind: notification.KindRejected, Leave: *annualLeave(), ActorID: "u-hr", RejectionReason: "x"}

		res, err := f.d.Generate(ctx, dec)

		assert.NoError(t, err)
		assert.Equal(t, notification.OpenAITierName, res.Tier)
		assert.Equal(t, "<p>AI body</p>", f.mail.sent[0].Body)
		assert.Equal(t, "📋 Leave Request Update - Annual", f.mail.sent[0].Subject)
	})

	t.Run("transport failure is terminal", func(t *testing.T) {
		f := newDispatcher()
		f.mail.err = errors.New("smtp down")

		res, err := f.d.Generate(ctx, approvedDecision())

		assert.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, apperror.ToHTTP(err).Status)
		assert.Equal(t, "NOTIFICATION_FAILED", apperror.ToHTTP(err).Code)
		assert.True(t, res.EmployeeFound)
	})

	t.Run("employee not found", func(t *testing.T) {
		f := newDispatcher()
		f.dir.employee = nil

		res, err := f.d.Generate(ctx, approvedDecision())

		assert.NoError(t, err)
		assert.False(t, res.EmployeeFound)
		assert.Empty(t, f.mail.sent)
	})
}

func TestDispatcher_SendAsActor(t *testing.T) {
	ctx := context.Background()

	t.Run("hr direct with credential", func(t *testing.T) {
		f := newDispatcher()
		f.creds.values["jane.hr@gmail.com"] = "app-pass"

		res, err := f.d.SendAsActor(ctx, approvedDecision())

		assert.NoError(t, err)
		assert.Equal(t, notification.EmailMethodHRDirect, res.EmailMethod)
		assert.Equal(t, "jane.hr@gmail.com", res.FromEmail)
		assert.Empty(t, res.Note)
		msg := f.mail.sent[0]
		assert.Equal(t, "jane.hr@gmail.com", msg.From)
		assert.Equal(t, "app-pass", msg.Credentials.Password)
	})

	t.Run("system fallback without credential", func(t *testing.T) {
		f := newDispatcher()

		res, err := f.d.SendAsActor(ctx, approvedDecision())

		assert.NoError(t, err)
		assert.Equal(t, notification.EmailMethodSystem, res.EmailMethod)
		assert.Equal(t, "system@company.com", res.FromEmail)
		assert.Equal(t, "Configure HR email credentials for direct HR-to-Employee communication", res.Note)
		assert.Nil(t, f.mail.sent[0].Credentials)
		assert.Equal(t, "jane.hr@gmail.com", f.mail.sent[0].ReplyTo)
	})

	t.Run("direct failure falls back to system", func(t *testing.T) {
		f := newDispatcher()
		f.creds.values["jane.hr@gmail.com"] = "app-pass"
		f.mail.err = errors.New("auth failed")

		_, err := f.d.SendAsActor(ctx, approvedDecision())

		assert.Error(t, err)
		assert.Len(t, f.mail.sent, 2)
		assert.Nil(t, f.mail.sent[1].Credentials)
	})

	t.Run("actor not found", func(t *testing.T) {
		f := newDispatcher()
		f.dir.actor = nil

		_, err := f.d.SendAsActor(ctx, approvedDecision())

		assert.ErrorIs(t, err, notificationerrors.ErrActorNotFound)
		assert.Empty(t, f.mail.sent)
	})
}

func TestDispatcher_Remind(t *testing.T) {
	ctx := context.Background()

	t.Run("webhook reminder", func(t *testing.T) {
		f := newDispatcher()

		out := f.d.Remind(ctx, *annualLeave())

		assert.True(t, out.WebhookDelivered)
		assert.Empty(t, f.mail.sent)
		p := f.webhook.payloads[0].(notification.DecisionPayload)
		assert.Equal(t, "LEAVE_REMINDER", p.Type)
		assert.Equal(t, []string{"email"}, p.Channels)
		assert.Empty(t, p.Priority)
		assert.Empty(t, p.Action)
	})

	t.Run("email fallback", func(t *testing.T) {
		f := newDispatcher()
		f.webhook.err = errors.New("down")

		out := f.d.Remind(ctx, *annualLeave())

		assert.True(t, out.FallbackUsed)
		assert.True(t, out.EmailSent)
		assert.Equal(t, "📅 Leave Reminder - Annual", f.mail.sent[0].Subject)
	})
}

func TestDispatcher_Diagnostics(t *testing.T) {
	ctx := context.Background()

	f := newDispatcher()
	assert.NoError(t, f.d.TestWebhook(ctx))
	assert.Equal(t, "TEST", f.webhook.payloads[0].(notification.TestPayload).Type)

	f.webhook.err = errors.New("down")
	err := f.d.TestWebhook(ctx)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.ToHTTP(err).Status)

	assert.ErrorIs(t, f.d.TestEmail(ctx, ""), notificationerrors.ErrTestEmailRequired)
	assert.NoError(t, f.d.TestEmail(ctx, "ops@company.com"))
	assert.Equal(t, "Test Email from LeaveEase", f.mail.sent[0].Subject)

	assert.True(t, f.d.EmailConfigured())
	f.mail.unconfigured = true
	assert.False(t, f.d.EmailConfigured())
}
