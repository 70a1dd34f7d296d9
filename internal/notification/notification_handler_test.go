package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/achla24/LeaveEase/internal/notification"
	notificationerrors "github.com/achla24/LeaveEase/internal/notification/errors"
	"github.com/achla24/LeaveEase/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeDiagnostics struct {
	webhookFn    func(ctx context.Context) error
	emailFn      func(ctx context.Context, to string) error
	unconfigured bool
}

func (f *fakeDiagnostics) TestWebhook(ctx context.Context) error {
	return f.webhookFn(ctx)
}

func (f *fakeDiagnostics) TestEmail(ctx context.Context, to string) error {
	return f.emailFn(ctx, to)
}

func (f *fakeDiagnostics) EmailConfigured() bool {
	return !f.unconfigured
}

func newDiagContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/leaves/test-email", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestNotificationHandler_TestEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got string
		h := notification.NewHandler(&fakeDiagnostics{emailFn: func(_ context.Context, to string) error {
			got = to
			return nil
		}}, zap.NewNop())
		c, w := newDiagContext(http.MethodPost, `{"testEmail":"ops@company.com"}`)

		h.TestEmail(c)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), "Test email sent successfully!")
		assert.Contains(t, string(env.Data), `"configured":true`)
		assert.Equal(t, "ops@company.com", got)
	})

	t.Run("missing address", func(t *testing.T) {
		h := notification.NewHandler(&fakeDiagnostics{emailFn: func(context.Context, string) error {
			return notificationerrors.ErrTestEmailRequired
		}}, zap.NewNop())
		c, w := newDiagContext(http.MethodPost, `{}`)

		h.TestEmail(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, "Please provide testEmail in request body", env.Error.Message)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		h := notification.NewHandler(&fakeDiagnostics{}, zap.NewNop())
		c, w := newDiagContext(http.MethodPost, `{"to":"ops@company.com"}`)

		h.TestEmail(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delivery failure", func(t *testing.T) {
		h := notification.NewHandler(&fakeDiagnostics{emailFn: func(context.Context, string) error {
			e := notificationerrors.ErrDeliveryFailed
			return apperror.Wrap(errors.New("smtp down"), e.Code, e.Message, e.HTTPStatus)
		}}, zap.NewNop())
		c, w := newDiagContext(http.MethodPost, `{"testEmail":"ops@company.com"}`)

		h.TestEmail(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "NOTIFICATION_FAILED", env.Error.Code)
	})
}

func TestNotificationHandler_EmailStatus(t *testing.T) {
	cases := []struct {
		name         string
		unconfigured bool
		want         string
	}{
		{"configured", false, "Email configuration is working"},
		{"needs setup", true, "Email configuration needs setup"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := notification.NewHandler(&fakeDiagnostics{unconfigured: tc.unconfigured}, zap.NewNop())
			c, w := newDiagContext(http.MethodGet, "")

			h.EmailStatus(c)

			assert.Equal(t, http.StatusOK, w.Code)
			env := decodeEnvelope(t, w.Body.Bytes())
			var data struct {
				Configured bool   `json:"configured"`
				Message    string `json:"message"`
			}
			assert.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, !tc.unconfigured, data.Configured)
			assert.Equal(t, tc.want, data.Message)
		})
	}
}

func TestNotificationHandler_TestWebhook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := notification.NewHandler(&fakeDiagnostics{webhookFn: func(context.Context) error { return nil }}, zap.NewNop())
		c, w := newDiagContext(http.MethodGet, "")

		h.TestWebhook(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "N8N connection successful")
	})

	t.Run("unavailable", func(t *testing.T) {
		h := notification.NewHandler(&fakeDiagnostics{webhookFn: func(context.Context) error {
			e := notificationerrors.ErrWebhookUnavailable
			return apperror.Wrap(errors.New("connection refused"), e.Code, e.Message, e.HTTPStatus)
		}}, zap.NewNop())
		c, w := newDiagContext(http.MethodGet, "")

		h.TestWebhook(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "N8N connection failed", env.Error.Message)
	})
}
