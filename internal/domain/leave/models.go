package leave

import "time"

// Kind selects which leave table a report lives in.
type Kind string

const (
	KindEmployee Kind = "employee"
	KindManager  Kind = "manager"
)

func (k Kind) Valid() bool {
	return k == KindEmployee || k == KindManager
}

const (
	StatusRejected = -1
	StatusPending  = 0
	StatusApproved = 1
)

const (
	TypeFullDay    = "Full-Day"
	TypeHalfDay    = "Half-Day"
	HalfFirst      = "First Half"
	HalfSecond     = "Second Half"
	dateLayout     = "2006-01-02"
	defaultListMax = 100
)

var (
	LeaveTypes   = []string{TypeFullDay, TypeHalfDay}
	HalfDayTypes = []string{HalfFirst, HalfSecond}
)

type Report struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"kind"`
	OwnerID       string    `json:"ownerId"`
	UserID        string    `json:"userId"`
	ApplicantName string    `json:"applicantName"`
	LeaveType     string    `json:"leaveType"`
	HalfDayType   *string   `json:"halfDayType"`
	StartDate     string    `json:"startDate"`
	EndDate       string    `json:"endDate"`
	Days          float64   `json:"days"`
	Message       string    `json:"message"`
	Status        int       `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (r Report) StatusLabel() string {
	switch r.Status {
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Input is the submitted leave form.
type Input struct {
	LeaveType   string `json:"leave_type"`
	HalfDayType string `json:"half_day_type"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Message     string `json:"message"`
}

// Draft is a validated Input.
type Draft struct {
	LeaveType   string
	HalfDayType *string
	Start       time.Time
	End         time.Time
	Message     string
}

type Filter struct {
	OwnerID    string
	TeamLeadID string
	Status     *int
}

// Coverage holds the approved leave covering a day for one user, taken
// from each leave table.
type Coverage struct {
	Employee *Report
	Manager  *Report
}
