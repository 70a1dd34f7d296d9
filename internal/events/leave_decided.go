package events

import "time"

const (
	LeaveDecisionTopic    = "leave.decision.v1"
	LeaveDecidedEventType = "leave.decided"
	LeaveAggregateType    = "leave_request"
)

// LeaveDecidedEvent is published once per approve or reject, after the
// status change has committed.
type LeaveDecidedEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id,omitempty"`
	LeaveID         string    `json:"leave_id"`
	Status          string    `json:"status"`
	EmployeeName    string    `json:"employee_name"`
	DecidedBy       string    `json:"decided_by"`
	RejectionReason *string   `json:"rejection_reason"`
	OccurredAt      time.Time `json:"occurred_at"`
}
