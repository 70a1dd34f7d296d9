package leave

import (
	"time"

	"github.com/achla24/LeaveEase/internal/notification"

	"github.com/google/uuid"
)

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"

	DefaultLeaveType = "Annual"

	// AnnualAllowance is the yearly leave entitlement in days.
	AnnualAllowance = 25
)

type LeaveRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeName string    `gorm:"type:varchar(150);not null;index:idx_leave_requests_employee_name"`
	EmployeeID   string    `gorm:"type:varchar(64);index:idx_leave_requests_employee_id"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_status_start"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Reason    string    `gorm:"type:text"`
	LeaveType string    `gorm:"type:varchar(30);not null;default:'Annual'"`

	Status          string  `gorm:"type:varchar(20);not null;default:'Pending';index:idx_leave_requests_status_start"`
	RejectionReason *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// Duration counts both the first and the last day.
func (l LeaveRequest) Duration() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// Snapshot is the view of the request handed to the notification pipeline.
func (l LeaveRequest) Snapshot() notification.LeaveSnapshot {
	snap := notification.LeaveSnapshot{
		ID:           l.ID.String(),
		EmployeeName: l.EmployeeName,
		EmployeeID:   l.EmployeeID,
		LeaveType:    l.LeaveType,
		Reason:       l.Reason,
		Status:       l.Status,
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
	}
	if l.RejectionReason != nil {
		snap.RejectionReason = *l.RejectionReason
	}
	return snap
}
