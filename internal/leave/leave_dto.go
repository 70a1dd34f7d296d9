package leave

import "github.com/achla24/LeaveEase/internal/notification"

type CreateLeaveRequest struct {
	EmployeeName string `json:"employeeName" binding:"omitempty,max=150"`
	EmployeeID   string `json:"employeeId" binding:"omitempty,max=64"`
	StartDate    string `json:"startDate" binding:"required"`
	EndDate      string `json:"endDate" binding:"required"`
	Reason       string `json:"reason" binding:"required,max=1000"`
	LeaveType    string `json:"leaveType" binding:"omitempty,max=30"`
}

type UpdateLeaveRequest struct {
	EmployeeName string `json:"employeeName" binding:"required,max=150"`
	StartDate    string `json:"startDate" binding:"required"`
	EndDate      string `json:"endDate" binding:"required"`
	Reason       string `json:"reason" binding:"required,max=1000"`
	LeaveType    string `json:"leaveType" binding:"omitempty,max=30"`
}

type RejectLeaveRequest struct {
	RejectionReason string `json:"rejectionReason" binding:"max=1000"`
}

type HRActionRequest struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason" binding:"max=1000"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeName    string  `json:"employeeName"`
	EmployeeID      string  `json:"employeeId,omitempty"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Duration        int     `json:"duration"`
	Reason          string  `json:"reason"`
	LeaveType       string  `json:"leaveType"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejectionReason"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// DecisionResponse is the leave request after approve, reject or hr-action.
// Notification is only set when webhook failures are surfaced.
type DecisionResponse struct {
	LeaveResponse
	Notification *NotificationStatus `json:"notification,omitempty"`
}

type NotificationStatus struct {
	WebhookDelivered bool   `json:"webhookDelivered"`
	FallbackUsed     bool   `json:"fallbackUsed"`
	Error            string `json:"error,omitempty"`
}

type StatsResponse struct {
	Total            int64 `json:"total"`
	Pending          int64 `json:"pending"`
	Approved         int64 `json:"approved"`
	Rejected         int64 `json:"rejected"`
	CurrentlyOnLeave int   `json:"currentlyOnLeave"`
}

// DecisionResult is returned by the AI and HR notification variants.
type DecisionResult struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	AIMethod        string         `json:"aiMethod,omitempty"`
	EmailMethod     string         `json:"emailMethod,omitempty"`
	FromEmail       string         `json:"fromEmail,omitempty"`
	ToEmail         string         `json:"toEmail,omitempty"`
	EmployeeEmail   string         `json:"employeeEmail,omitempty"`
	HRUser          string         `json:"hrUser,omitempty"`
	RejectionReason *string        `json:"rejectionReason,omitempty"`
	Note            string         `json:"note,omitempty"`
	LeaveRequest    *LeaveResponse `json:"leaveRequest,omitempty"`
}

func notificationStatus(out notification.Outcome) *NotificationStatus {
	return &NotificationStatus{
		WebhookDelivered: out.WebhookDelivered,
		FallbackUsed:     out.FallbackUsed,
		Error:            out.Error,
	}
}
