package notification

import (
	"fmt"
	"strings"
)

func buildPrompt(c Content) string {
	var b strings.Builder

	switch c.Kind {
	case KindApproved:
		b.WriteString("Generate a professional, warm, and personalized email for approving a leave request.\n\n")
	case KindRejected:
		b.WriteString("Generate a professional, empathetic, and constructive email for rejecting a leave request.\n\n")
	default:
		b.WriteString("Generate a friendly reminder email for an employee whose approved leave starts soon.\n\n")
	}

	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Employee: %s (%s)\n", c.Employee.DisplayName(), c.Employee.Email)
	fmt.Fprintf(&b, "- HR Manager: %s\n", c.hrName())
	fmt.Fprintf(&b, "- Leave Type: %s\n", c.Leave.LeaveType)
	fmt.Fprintf(&b, "- Start Date: %s\n", c.Leave.StartDate.Format(longDate))
	fmt.Fprintf(&b, "- End Date: %s\n", c.Leave.EndDate.Format(longDate))
	fmt.Fprintf(&b, "- Duration: %d days\n", c.Leave.Duration())

	if c.Kind == KindRejected {
		fmt.Fprintf(&b, "- Employee's Reason: %s\n", c.Leave.Reason)
		reason := c.RejectionReason
		if reason == "" {
			reason = "Not specified"
		}
		fmt.Fprintf(&b, "- Rejection Reason: %s\n", reason)
	} else {
		fmt.Fprintf(&b, "- Reason: %s\n", c.Leave.Reason)
	}

	b.WriteString("\nRequirements:\n")
	switch c.Kind {
	case KindApproved:
		b.WriteString("- Professional but friendly tone\n")
		b.WriteString("- Include all leave details\n")
		b.WriteString("- Remind about handover and out-of-office setup\n")
		b.WriteString("- Wish them well for their time off\n")
		b.WriteString("- Keep it concise\n")
		b.WriteString("- Use emojis sparingly\n")
	case KindRejected:
		b.WriteString("- Empathetic and respectful tone\n")
		b.WriteString("- Clearly state the rejection reason\n")
		b.WriteString("- Suggest alternatives such as different dates or partial leave\n")
		b.WriteString("- Encourage them to discuss with HR and reapply\n")
		b.WriteString("- Keep it concise\n")
	default:
		b.WriteString("- Friendly tone\n")
		b.WriteString("- Include a short preparation checklist\n")
		b.WriteString("- Remind about handover to the team\n")
		b.WriteString("- Keep it concise\n")
	}
	fmt.Fprintf(&b, "- Sign off as %s, HR Team\n", c.hrName())
	b.WriteString("\nFormat as HTML email body.")

	return b.String()
}
