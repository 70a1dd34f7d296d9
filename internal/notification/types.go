package notification

import (
	"context"
	"strings"
	"time"
)

type Kind string

const (
	KindApproved Kind = "Approved"
	KindRejected Kind = "Rejected"
	KindReminder Kind = "Reminder"
)

// LeaveSnapshot is the part of a leave request a notification needs.
type LeaveSnapshot struct {
	ID              string
	EmployeeName    string
	EmployeeID      string
	LeaveType       string
	Reason          string
	Status          string
	RejectionReason string
	StartDate       time.Time
	EndDate         time.Time
}

// Duration counts both the first and the last day.
func (l LeaveSnapshot) Duration() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

type Recipient struct {
	ID         string
	Username   string
	FullName   string
	Email      string
	Department string
	Role       string
}

// FirstName is the first word of the full name, or the username.
func (r Recipient) FirstName() string {
	if f := strings.Fields(r.FullName); len(f) > 0 {
		return f[0]
	}
	return r.Username
}

func (r Recipient) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return r.Username
}

// LeaveRef carries the keys a leave request can be matched to a user by.
type LeaveRef struct {
	EmployeeID   string
	EmployeeName string
}

// Directory finds the people a notification is about.
type Directory interface {
	ResolveForLeave(ctx context.Context, ref LeaveRef) (Recipient, bool, error)
	FindActor(ctx context.Context, userID string) (Recipient, bool, error)
}

// Content is everything a generator renders from.
type Content struct {
	Kind            Kind
	Leave           *LeaveSnapshot
	Employee        *Recipient
	HR              *Recipient
	RejectionReason string
}

func (c Content) hrName() string {
	if c.HR != nil && c.HR.DisplayName() != "" {
		return c.HR.DisplayName()
	}
	return "HR"
}

// Decision is one HR action on a leave request, handed over after commit.
type Decision struct {
	Kind            Kind
	Leave           LeaveSnapshot
	ActorID         string
	RejectionReason string
}

// Outcome reports the webhook-first strategy.
type Outcome struct {
	NotificationID   string `json:"notificationId"`
	EmployeeFound    bool   `json:"employeeFound"`
	WebhookDelivered bool   `json:"webhookDelivered"`
	FallbackUsed     bool   `json:"fallbackUsed"`
	EmailSent        bool   `json:"emailSent"`
	Error            string `json:"error,omitempty"`
}

const (
	EmailMethodHRDirect = "HR Direct Email"
	EmailMethodSystem   = "System Email (AI-powered)"
)

// Result reports the direct-generation and send-as-actor strategies.
type Result struct {
	NotificationID string
	EmployeeFound  bool
	Tier           string
	EmailMethod    string
	FromEmail      string
	ToEmail        string
	EmployeeEmail  string
	HRUser         string
	Note           string
}
