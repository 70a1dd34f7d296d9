package attendance

type MarkLateRequest struct {
	EmployeeName string `json:"employeeName" binding:"required,max=150"`
	Date         string `json:"date" binding:"required"`
	Reason       string `json:"reason" binding:"max=1000"`
	Notes        string `json:"notes" binding:"max=1000"`
}

type UpdateLateRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
	Notes  string `json:"notes" binding:"max=1000"`
}

type LateAttendanceResponse struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employeeName"`
	EmployeeID   string `json:"employeeId,omitempty"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
	Notes        string `json:"notes"`
	MarkedBy     string `json:"markedBy"`
	MarkedAt     string `json:"markedAt"`
}

type LateCheckResponse struct {
	Date   string `json:"date"`
	IsLate bool   `json:"isLate"`
}

type LateCountResponse struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	LateDaysCount int64 `json:"lateDaysCount"`
}
