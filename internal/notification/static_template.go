package notification

import (
	"bytes"
	"context"
	"html/template"
)

const (
	StaticTierName = "Basic Template"
	shortDate      = "2006-01-02"
)

// StaticTemplate is the fixed fallback body. It has no randomness and no
// external calls.
type StaticTemplate struct{}

func NewStaticTemplate() *StaticTemplate {
	return &StaticTemplate{}
}

func (t *StaticTemplate) Name() string { return StaticTierName }

type staticData struct {
	Name            string
	HRName          string
	LeaveType       string
	StartDate       string
	EndDate         string
	Duration        int
	Reason          string
	RejectionReason string
}

func (t *StaticTemplate) Generate(_ context.Context, c Content) (string, error) {
	data := staticData{
		Name:   "Employee",
		HRName: c.hrName(),
	}
	if c.Employee != nil {
		data.Name = c.Employee.DisplayName()
	}
	if c.Leave != nil {
		data.LeaveType = c.Leave.LeaveType
		data.StartDate = c.Leave.StartDate.Format(shortDate)
		data.EndDate = c.Leave.EndDate.Format(shortDate)
		data.Duration = c.Leave.Duration()
		data.Reason = c.Leave.Reason
	}

	tmpl := staticApprovedTmpl
	switch c.Kind {
	case KindRejected:
		tmpl = staticRejectedTmpl
		data.RejectionReason = c.RejectionReason
		if data.RejectionReason == "" {
			data.RejectionReason = "No reason provided"
		}
	case KindReminder:
		tmpl = staticReminderTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var staticApprovedTmpl = template.Must(template.New("static_approved").Parse(`
<h2>✅ Leave Request Approved</h2>
<p>Dear {{.Name}},</p>
<p>Great news! Your leave request has been approved.</p>
<ul>
	<li><strong>Type:</strong> {{.LeaveType}}</li>
	<li><strong>Start Date:</strong> {{.StartDate}}</li>
	<li><strong>End Date:</strong> {{.EndDate}}</li>
	<li><strong>Duration:</strong> {{.Duration}} days</li>
	<li><strong>Reason:</strong> {{.Reason}}</li>
</ul>
<h3>Before your leave</h3>
<ul>
	<li>Complete any pending urgent tasks</li>
	<li>Brief your team on ongoing projects</li>
	<li>Set up your out-of-office message</li>
	<li>Share emergency contact details with your manager</li>
</ul>
<p>Have a wonderful time off! 🌟</p>
<p>Best regards,<br>{{.HRName}}<br>HR Team</p>`))

var staticRejectedTmpl = template.Must(template.New("static_rejected").Parse(`
<h2>❌ Leave Request Update</h2>
<p>Dear {{.Name}},</p>
<p>We regret to inform you that your leave request has been declined.</p>
<ul>
	<li><strong>Type:</strong> {{.LeaveType}}</li>
	<li><strong>Start Date:</strong> {{.StartDate}}</li>
	<li><strong>End Date:</strong> {{.EndDate}}</li>
	<li><strong>Duration:</strong> {{.Duration}} days</li>
	<li><strong>Your Reason:</strong> {{.Reason}}</li>
</ul>
<div style="background-color: #fef2f2; padding: 12px; border-left: 4px solid #ef4444;">
	<strong>Reason for Decline:</strong> {{.RejectionReason}}
</div>
<h3>Next steps</h3>
<ul>
	<li>Contact HR to discuss the decision</li>
	<li>Consider alternative dates for your leave</li>
	<li>Submit a new request when appropriate</li>
</ul>
<p>We appreciate your understanding.</p>
<p>Best regards,<br>{{.HRName}}<br>HR Team</p>`))

var staticReminderTmpl = template.Must(template.New("static_reminder").Parse(`
<h2>🔔 Leave Reminder</h2>
<p>Dear {{.Name}},</p>
<p>This is a friendly reminder that your approved leave is starting soon.</p>
<ul>
	<li><strong>Type:</strong> {{.LeaveType}}</li>
	<li><strong>Start Date:</strong> {{.StartDate}}</li>
	<li><strong>End Date:</strong> {{.EndDate}}</li>
	<li><strong>Duration:</strong> {{.Duration}} days</li>
</ul>
<h3>Checklist</h3>
<ul>
	<li>Complete any pending urgent tasks</li>
	<li>Hand over ongoing work to your team</li>
	<li>Set up your out-of-office message</li>
	<li>Update your calendar</li>
	<li>Share emergency contact details with your manager</li>
</ul>
<p>Enjoy your well-deserved break! 🌴</p>
<p>Best regards,<br>HR Team</p>`))
