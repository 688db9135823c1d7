package salary

import "time"

type Salary struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employeeId"`
	EmployeeUserID string    `json:"employeeUserId"`
	EmployeeName   string    `json:"employeeName"`
	StaffID        string    `json:"staffId"`
	DepartmentID   string    `json:"departmentId"`
	DepartmentName string    `json:"departmentName"`
	Base           float64   `json:"base"`
	CTC            float64   `json:"ctc"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Input is the edit form. Amounts are pointers so a missing value is
// distinguishable from zero.
type Input struct {
	Department string   `json:"department"`
	Employee   string   `json:"employee"`
	Base       *float64 `json:"base"`
	CTC        *float64 `json:"ctc"`
}

type Draft struct {
	DepartmentID string
	EmployeeID   string
	Base         float64
	CTC          float64
}

// Placement is the employee's current department and account.
type Placement struct {
	DepartmentID string
	UserID       string
}
