package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/achla24/LeaveEase/internal/leave"
	"github.com/achla24/LeaveEase/internal/shared/contextutil"
	"github.com/achla24/LeaveEase/internal/user"

	"go.uber.org/zap"
)

const (
	replyDateLayout = "Jan 02, 2006"
	recentLimit     = 5

	replyNoProfile = "I'm sorry, I couldn't find your user profile. Please contact HR."
	replyError     = "I'm sorry, I encountered an error. Please try again or contact HR."
)

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
}

type LeaveReader interface {
	FindByEmployee(ctx context.Context, name, id string) ([]leave.LeaveRequest, error)
	FindCurrentlyOnLeave(ctx context.Context, day time.Time) ([]leave.LeaveRequest, error)
}

// Assistant answers leave questions by keyword. Matching is on the
// lower-cased message and the first matching topic wins.
type Assistant struct {
	users  UserFinder
	leaves LeaveReader
	now    func() time.Time
	logger *zap.Logger
}

func NewAssistant(users UserFinder, leaves LeaveReader, logger ...*zap.Logger) *Assistant {
	l := zap.L().Named("chat.assistant")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("chat.assistant")
	}
	return &Assistant{users: users, leaves: leaves, now: time.Now, logger: l}
}

func (a *Assistant) WithClock(now func() time.Time) *Assistant {
	a.now = now
	return a
}

// Reply never fails; lookup errors are logged and answered with an apology.
func (a *Assistant) Reply(ctx context.Context, username, message string) string {
	log := contextutil.GetLogger(ctx, a.logger)

	u, err := a.users.FindByUsername(ctx, username)
	if err != nil || u == nil {
		log.Debug("chat user not found", zap.String("username", username), zap.Error(err))
		return replyNoProfile
	}

	reply, err := a.route(ctx, u, strings.ToLower(message))
	if err != nil {
		log.Error("chat reply failed", zap.String("username", username), zap.Error(err))
		return replyError
	}
	return reply
}

func (a *Assistant) route(ctx context.Context, u *user.User, msg string) (string, error) {
	switch {
	case containsAny(msg, "leave", "vacation"):
		return a.leaveTopic(ctx, u, msg)
	case containsAny(msg, "absent", "who is not here"):
		return a.absentToday(ctx)
	case containsAny(msg, "balance", "remaining"):
		return a.balance(ctx, u)
	case containsAny(msg, "help", "what can you do"):
		return helpMessage, nil
	default:
		return defaultMessage, nil
	}
}

func (a *Assistant) leaveTopic(ctx context.Context, u *user.User, msg string) (string, error) {
	switch {
	case containsAny(msg, "my leave", "my vacation"):
		return a.recent(ctx, u)
	case containsAny(msg, "pending", "waiting"):
		return a.byStatus(ctx, u, leave.StatusPending)
	case containsAny(msg, "approved", "confirmed"):
		return a.byStatus(ctx, u, leave.StatusApproved)
	case containsAny(msg, "rejected", "denied"):
		return a.byStatus(ctx, u, leave.StatusRejected)
	case containsAny(msg, "balance", "remaining"):
		return a.balance(ctx, u)
	default:
		return leaveTopicsMessage, nil
	}
}

func (a *Assistant) mine(ctx context.Context, u *user.User) ([]leave.LeaveRequest, error) {
	return a.leaves.FindByEmployee(ctx, u.FullName, u.ID.String())
}

func (a *Assistant) recent(ctx context.Context, u *user.User) (string, error) {
	leaves, err := a.mine(ctx, u)
	if err != nil {
		return "", err
	}
	if len(leaves) == 0 {
		return "You haven't submitted any leave requests yet.", nil
	}

	newest := make([]leave.LeaveRequest, len(leaves))
	copy(newest, leaves)
	sort.SliceStable(newest, func(i, j int) bool { return newest[i].CreatedAt.After(newest[j].CreatedAt) })

	var b strings.Builder
	b.WriteString("Your recent leave requests:\n")
	for _, l := range newest[:min(recentLimit, len(newest))] {
		fmt.Fprintf(&b, "• %s: %s to %s - %s\n", l.LeaveType,
			l.StartDate.Format(replyDateLayout), l.EndDate.Format(replyDateLayout), l.Status)
	}
	return b.String(), nil
}

func (a *Assistant) byStatus(ctx context.Context, u *user.User, status string) (string, error) {
	leaves, err := a.mine(ctx, u)
	if err != nil {
		return "", err
	}

	word := strings.ToLower(status)
	var b strings.Builder
	for _, l := range leaves {
		if l.Status != status {
			continue
		}
		if b.Len() == 0 {
			fmt.Fprintf(&b, "Your %s leave requests:\n", word)
		}
		fmt.Fprintf(&b, "• %s: %s to %s", l.LeaveType,
			l.StartDate.Format(replyDateLayout), l.EndDate.Format(replyDateLayout))
		if status == leave.StatusRejected {
			reason := "Not specified"
			if l.RejectionReason != nil && *l.RejectionReason != "" {
				reason = *l.RejectionReason
			}
			fmt.Fprintf(&b, " - Reason: %s\n", reason)
		} else {
			fmt.Fprintf(&b, " (%d days)\n", l.Duration())
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("You have no %s leave requests.", word), nil
	}
	return b.String(), nil
}

func (a *Assistant) absentToday(ctx context.Context) (string, error) {
	now := a.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	away, err := a.leaves.FindCurrentlyOnLeave(ctx, today)
	if err != nil {
		return "", err
	}
	if len(away) == 0 {
		return "Everyone is present today! 🎉", nil
	}

	var b strings.Builder
	b.WriteString("People on leave today:\n")
	for _, l := range away {
		fmt.Fprintf(&b, "• %s (%s)\n", l.EmployeeName, l.LeaveType)
	}
	return b.String(), nil
}

// balance counts approved days starting in the current calendar year.
func (a *Assistant) balance(ctx context.Context, u *user.User) (string, error) {
	leaves, err := a.mine(ctx, u)
	if err != nil {
		return "", err
	}

	year := a.now().UTC().Year()
	used := 0
	for _, l := range leaves {
		if l.Status == leave.StatusApproved && l.StartDate.Year() == year {
			used += l.Duration()
		}
	}
	return fmt.Sprintf("Your leave balance:\n• Total entitlement: %d days\n• Used: %d days\n• Remaining: %d days",
		leave.AnnualAllowance, used, max(0, leave.AnnualAllowance-used)), nil
}

func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

const leaveTopicsMessage = "I can help you with your leave information. You can ask about:\n" +
	"• My leave status\n" +
	"• Pending leave requests\n" +
	"• Approved leaves\n" +
	"• Leave balance\n" +
	"• Who is absent today"

const helpMessage = "🤖 I'm your AI HR Assistant! I can help you with:\n\n" +
	"📅 **Leave Information:**\n" +
	"• \"My leave status\" - Check your leave requests\n" +
	"• \"Pending leaves\" - View pending requests\n" +
	"• \"Approved leaves\" - View approved requests\n" +
	"• \"Leave balance\" - Check remaining days\n\n" +
	"👥 **Team Information:**\n" +
	"• \"Who is absent today\" - See who's on leave\n" +
	"• \"Who is not here\" - Check team absences\n\n" +
	"💡 **Other:**\n" +
	"• \"Help\" - Show this message\n\n" +
	"Just ask me anything about your leave or team!"

const defaultMessage = "I'm your AI HR Assistant! I can help you with leave information, " +
	"team absences, and more. Try asking:\n" +
	"• \"My leave status\"\n" +
	"• \"Who is absent today\"\n" +
	"• \"Leave balance\"\n" +
	"• \"Help\" for more options"
