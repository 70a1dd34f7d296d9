package dashboard

type MyStatsResponse struct {
	TotalLeaveTaken    int `json:"totalLeaveTaken"`
	RemainingDays      int `json:"remainingDays"`
	ApprovalRate       int `json:"approvalRate"`
	PendingRequests    int `json:"pendingRequests"`
	TeamMembersOnLeave int `json:"teamMembersOnLeave"`
	AnnualAllowance    int `json:"annualAllowance"`
}

type QuarterlyResponse struct {
	Taken                  map[string]int `json:"taken"`
	Remaining              map[string]int `json:"remaining"`
	TotalTakenThisYear     int            `json:"totalTakenThisYear"`
	TotalRemainingThisYear int            `json:"totalRemainingThisYear"`
	AnnualAllowance        int            `json:"annualAllowance"`
}

type UpcomingLeave struct {
	EmployeeName string `json:"employeeName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Duration     int    `json:"duration"`
	LeaveType    string `json:"leaveType"`
	Status       string `json:"status"`
}

type TeamMemberOnLeave struct {
	EmployeeName string `json:"employeeName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	LeaveType    string `json:"leaveType"`
	Reason       string `json:"reason"`
}

type Notification struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employeeName"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
	Message      string `json:"message"`
}

// RequestSummary is a leave request as listed on the HR dashboard.
type RequestSummary struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employeeName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Duration     int    `json:"duration"`
	LeaveType    string `json:"leaveType"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

type EmployeeStatsResponse struct {
	TotalEmployees   int   `json:"totalEmployees"`
	EmployeesOnLeave int   `json:"employeesOnLeave"`
	EmployeesPresent int   `json:"employeesPresent"`
	PendingApprovals int64 `json:"pendingApprovals"`
	TotalRequests    int64 `json:"totalRequests"`
	ApprovedRequests int64 `json:"approvedRequests"`
}

type DepartmentStatsResponse struct {
	DepartmentLeaves map[string]int64 `json:"departmentLeaves"`
}
