package notification

import (
	"bytes"
	"context"
	"html/template"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	SmartTierName = "Smart Template"
	longDate      = "Monday, January 2, 2006"
)

var (
	approvalClosings = []string{
		"We hope you have a wonderful and refreshing time off!",
		"Enjoy every moment of your well-deserved break!",
		"Take care and see you when you return, refreshed and ready!",
		"Have an amazing time away - you've earned it!",
	}

	rejectionEncouragements = []string{
		"We value you as an employee and want to work together to find a solution that works for everyone.",
		"Your well-being is important to us, and we're committed to finding a way to accommodate your needs.",
		"We appreciate your flexibility and understanding as we work through this together.",
		"Let's collaborate to find the best possible outcome for both you and the team.",
	}

	approvalHeaders = []string{
		"🎉 Great News!",
		"✅ Your Leave Request is Approved!",
	}

	rejectionNextSteps = []string{
		"Schedule a meeting with HR to discuss your needs",
		"Consider adjusting your leave dates",
		"Submit a revised request with alternative dates",
		"Explore partial leave or flexible work arrangements",
	}
)

// SmartTemplate assembles a message from context-aware phrasing with a little
// randomness so repeated notifications do not read identically.
type SmartTemplate struct {
	hrContact string
	intn      func(n int) int
}

func NewSmartTemplate(hrContact string) *SmartTemplate {
	if hrContact == "" {
		hrContact = "hr@company.com or ext. 1234"
	}
	return &SmartTemplate{hrContact: hrContact, intn: rand.IntN}
}

// WithChooser fixes the phrase selection, for deterministic output.
func (t *SmartTemplate) WithChooser(intn func(n int) int) *SmartTemplate {
	t.intn = intn
	return t
}

func (t *SmartTemplate) Name() string { return SmartTierName }

type smartData struct {
	Header          string
	Greeting        string
	LeaveType       string
	StartDate       string
	EndDate         string
	Duration        int
	Reason          string
	TypeMessage     string
	DurationMessage string
	SeasonMessage   string
	Checklist       []string
	Closing         string
	Empathy         string
	RejectionReason string
	Alternatives    []string
	NextSteps       []string
	Encouragement   string
	Contact         string
	HRName          string
}

func (t *SmartTemplate) Generate(_ context.Context, c Content) (string, error) {
	if c.Leave == nil || c.Employee == nil {
		return "", errIncomplete
	}

	l := c.Leave
	data := smartData{
		Greeting:  t.greeting(*c.Employee),
		LeaveType: l.LeaveType,
		StartDate: l.StartDate.Format(longDate),
		EndDate:   l.EndDate.Format(longDate),
		Duration:  l.Duration(),
		Reason:    l.Reason,
		Contact:   t.hrContact,
		HRName:    c.hrName(),
	}

	var tmpl *template.Template
	switch c.Kind {
	case KindApproved:
		tmpl = smartApprovedTmpl
		data.Header = t.choose(approvalHeaders)
		data.TypeMessage = leaveTypeMessage(l.LeaveType)
		data.DurationMessage = durationMessage(data.Duration)
		data.SeasonMessage = seasonMessage(l.StartDate)
		data.Checklist = preparationChecklist(l.LeaveType, data.Duration)
		data.Closing = t.choose(approvalClosings)
	case KindRejected:
		tmpl = smartRejectedTmpl
		data.Header = "📋 Leave Request Update"
		data.Empathy = empathyMessage(l.LeaveType)
		data.RejectionReason = c.RejectionReason
		if data.RejectionReason == "" {
			data.RejectionReason = "Not specified"
		}
		data.Alternatives = alternatives(c.RejectionReason)
		data.NextSteps = rejectionNextSteps
		data.Encouragement = t.choose(rejectionEncouragements)
	default:
		tmpl = smartReminderTmpl
		data.Header = "🔔 Your Leave Starts Soon"
		data.SeasonMessage = seasonMessage(l.StartDate)
		data.Checklist = preparationChecklist(l.LeaveType, data.Duration)
		data.Closing = t.choose(approvalClosings)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (t *SmartTemplate) choose(options []string) string {
	return options[t.intn(len(options))]
}

func (t *SmartTemplate) greeting(r Recipient) string {
	first := r.FirstName()
	options := []string{
		"Dear " + first + ",",
		"Hi " + first + ",",
		"Hello " + first + ",",
		"Dear " + r.DisplayName() + ",",
	}
	return t.choose(options)
}

func leaveTypeMessage(leaveType string) string {
	switch lt := strings.ToLower(leaveType); {
	case strings.Contains(lt, "annual"), strings.Contains(lt, "vacation"):
		return "Time to recharge and enjoy some well-deserved rest! 🌴"
	case strings.Contains(lt, "sick"):
		return "Take care of your health - that's the most important thing. 🏥"
	case strings.Contains(lt, "maternity"), strings.Contains(lt, "paternity"):
		return "Congratulations on this special time with your family! 👶"
	case strings.Contains(lt, "emergency"):
		return "We understand the urgency of your situation and support you. 🚨"
	case strings.Contains(lt, "study"):
		return "Investing in your education is investing in your future! 📚"
	default:
		return "We're happy to support your time away from work. ✨"
	}
}

func durationMessage(days int) string {
	switch {
	case days <= 1:
		return "A short break can be just as refreshing! 😊"
	case days <= 3:
		return "A few days away will help you come back refreshed and energized! 💪"
	case days <= 7:
		return "A week off is perfect for truly disconnecting and recharging! 🔋"
	default:
		return "An extended break - make the most of this valuable time! 🌟"
	}
}

func seasonMessage(start time.Time) string {
	switch start.Month() {
	case time.December, time.January, time.February:
		return "Perfect timing for some winter relaxation! ❄️"
	case time.March, time.April, time.May:
		return "Spring is a wonderful time to take a break! 🌸"
	case time.June, time.July, time.August:
		return "Summer vibes - enjoy the sunshine! ☀️"
	default:
		return "Autumn is beautiful - great choice for time off! 🍂"
	}
}

func preparationChecklist(leaveType string, days int) []string {
	var items []string
	if days >= 3 {
		items = []string{
			"Set up detailed out-of-office email responses",
			"Brief your team on ongoing projects and deadlines",
			"Prepare comprehensive handover documentation",
		}
	} else {
		items = []string{
			"Set up out-of-office email responses",
			"Inform your immediate team",
		}
	}

	if strings.Contains(strings.ToLower(leaveType), "sick") {
		return append(items,
			"Focus on your recovery - work can wait",
			"Keep HR updated on your expected return date",
		)
	}
	return append(items,
		"Complete urgent tasks before your leave starts",
		"Update project status and timelines",
	)
}

func empathyMessage(leaveType string) string {
	switch lt := strings.ToLower(leaveType); {
	case strings.Contains(lt, "sick"):
		return "Your health and well-being are our top priority, and we want to ensure you get the care you need."
	case strings.Contains(lt, "emergency"):
		return "We understand that emergencies require immediate attention and can be stressful situations."
	case strings.Contains(lt, "maternity"), strings.Contains(lt, "paternity"):
		return "We recognize how important this time is for you and your growing family."
	default:
		return "We truly appreciate you taking the time to plan ahead and submit your leave request."
	}
}

func alternatives(rejectionReason string) []string {
	var items []string
	switch r := strings.ToLower(rejectionReason); {
	case strings.Contains(r, "busy period"):
		items = []string{
			"Consider dates outside our peak business period",
			"Split your leave into shorter periods",
		}
	case strings.Contains(r, "staffing"):
		items = []string{
			"Coordinate coverage with your teammates",
			"Choose a different time when more staff are available",
		}
	default:
		items = []string{
			"Explore flexible or remote work arrangements",
			"Consider partial leave or reduced hours",
		}
	}
	return append(items,
		"Discuss project timelines with your manager",
		"Consider alternative dates that work for both you and the team",
	)
}

const smartStyle = `font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;`

var smartApprovedTmpl = template.Must(template.New("smart_approved").Parse(`
<div style="` + smartStyle + `">
	<h2 style="color: #16a34a;">{{.Header}}</h2>
	<p>{{.Greeting}}</p>
	<p>Your <strong>{{.LeaveType}}</strong> request has been approved. {{.TypeMessage}}</p>
	<div style="background-color: #f3f4f6; padding: 16px; border-radius: 8px;">
		<p><strong>From:</strong> {{.StartDate}}</p>
		<p><strong>To:</strong> {{.EndDate}}</p>
		<p><strong>Duration:</strong> {{.Duration}} day(s)</p>
		<p><strong>Reason:</strong> {{.Reason}}</p>
	</div>
	<p>{{.DurationMessage}} {{.SeasonMessage}}</p>
	<h3>Before you go</h3>
	<ul>{{range .Checklist}}
		<li>{{.}}</li>{{end}}
	</ul>
	<p>{{.Closing}}</p>
	<p>Best regards,<br>{{.HRName}}<br>HR Team<br>LeaveEase Management System</p>
</div>`))

var smartRejectedTmpl = template.Must(template.New("smart_rejected").Parse(`
<div style="` + smartStyle + `">
	<h2 style="color: #ea580c;">{{.Header}}</h2>
	<p>{{.Greeting}}</p>
	<p>{{.Empathy}}</p>
	<p>After careful consideration, we are unable to approve your <strong>{{.LeaveType}}</strong> request for {{.StartDate}} to {{.EndDate}} ({{.Duration}} day(s)).</p>
	<div style="background-color: #fef2f2; padding: 16px; border-left: 4px solid #ef4444;">
		<p><strong>Reason:</strong> {{.RejectionReason}}</p>
	</div>
	<h3>Some alternatives to consider</h3>
	<ul>{{range .Alternatives}}
		<li>{{.}}</li>{{end}}
	</ul>
	<h3>Next steps</h3>
	<ol>{{range .NextSteps}}
		<li>{{.}}</li>{{end}}
	</ol>
	<p>{{.Encouragement}}</p>
	<p>📞 Need to discuss? Contact HR at {{.Contact}}</p>
	<p>Best regards,<br>{{.HRName}}<br>HR Team<br>LeaveEase Management System</p>
</div>`))

var smartReminderTmpl = template.Must(template.New("smart_reminder").Parse(`
<div style="` + smartStyle + `">
	<h2 style="color: #2563eb;">{{.Header}}</h2>
	<p>{{.Greeting}}</p>
	<p>Just a reminder that your <strong>{{.LeaveType}}</strong> starts on {{.StartDate}} and runs until {{.EndDate}} ({{.Duration}} day(s)). {{.SeasonMessage}}</p>
	<h3>Checklist</h3>
	<ul>{{range .Checklist}}
		<li>{{.}}</li>{{end}}
	</ul>
	<p>{{.Closing}}</p>
	<p>Best regards,<br>{{.HRName}}<br>HR Team<br>LeaveEase Management System</p>
</div>`))
