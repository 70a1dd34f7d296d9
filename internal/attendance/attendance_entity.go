package attendance

import (
	"time"

	"github.com/google/uuid"
)

// LateAttendance records one late arrival. An employee has at most one
// record per day.
type LateAttendance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeName string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_late_attendances_employee_date,priority:1"`
	EmployeeID   string    `gorm:"type:varchar(64);index"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_late_attendances_employee_date,priority:2;index"`
	Reason       string    `gorm:"type:text"`
	Notes        string    `gorm:"type:text"`
	MarkedBy     string    `gorm:"type:varchar(150);not null"`
	MarkedAt     time.Time `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LateAttendance) TableName() string { return "late_attendances" }
