package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const apiKeyHeader = "X-N8N-API-Key"

var decisionChannels = []string{"email", "whatsapp", "slack"}

type DecisionPayload struct {
	Type             string   `json:"type"`
	EmployeeName     string   `json:"employeeName"`
	EmployeeEmail    string   `json:"employeeEmail"`
	EmployeeUsername string   `json:"employeeUsername"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	LeaveType        string   `json:"leaveType"`
	Duration         int      `json:"duration"`
	Reason           string   `json:"reason"`
	RejectionReason  string   `json:"rejectionReason,omitempty"`
	LeaveRequestID   string   `json:"leaveRequestId"`
	Timestamp        string   `json:"timestamp"`
	Channels         []string `json:"channels"`
	Priority         string   `json:"priority,omitempty"`
	Action           string   `json:"action,omitempty"`
}

type TestPayload struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Webhook posts a notification event to the external workflow engine.
type Webhook interface {
	Send(ctx context.Context, payload any) error
}

type WebhookClient struct {
	url    string
	apiKey string
	client *http.Client
}

func NewWebhookClient(url, apiKey string, timeout time.Duration, client ...*http.Client) *WebhookClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &http.Client{Timeout: timeout}
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &WebhookClient{url: url, apiKey: apiKey, client: c}
}

func (w *WebhookClient) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set(apiKeyHeader, w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func decisionPayload(d Decision, employee Recipient, now time.Time) DecisionPayload {
	p := DecisionPayload{
		EmployeeName:     employee.DisplayName(),
		EmployeeEmail:    employee.Email,
		EmployeeUsername: employee.Username,
		StartDate:        d.Leave.StartDate.Format(shortDate),
		EndDate:          d.Leave.EndDate.Format(shortDate),
		LeaveType:        d.Leave.LeaveType,
		Duration:         d.Leave.Duration(),
		Reason:           d.Leave.Reason,
		LeaveRequestID:   d.Leave.ID,
		Timestamp:        now.UTC().Format(time.RFC3339),
	}

	switch d.Kind {
	case KindApproved:
		p.Type = "LEAVE_APPROVED"
		p.Action = "APPROVED"
		p.Priority = "high"
		p.Channels = decisionChannels
	case KindRejected:
		p.Type = "LEAVE_REJECTED"
		p.Action = "REJECTED"
		p.Priority = "high"
		p.Channels = decisionChannels
		p.RejectionReason = d.RejectionReason
		if p.RejectionReason == "" {
			p.RejectionReason = "No reason provided"
		}
	default:
		p.Type = "LEAVE_REMINDER"
		p.Channels = []string{"email"}
	}
	return p
}
