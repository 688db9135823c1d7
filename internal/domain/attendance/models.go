package attendance

import (
	"net/http"
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
)

const (
	ActivityClockIn  = "clock_in"
	ActivityClockOut = "clock_out"
)

// Leave types as stored on leave reports.
const (
	LeaveFullDay    = "Full-Day"
	LeaveHalfDay    = "Half-Day"
	LeaveFirstHalf  = "First Half"
	LeaveSecondHalf = "Second Half"
)

const SuccessMessage = "Successfully clocked in!"

type Record struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Date         string     `json:"date"`
	ClockIn      time.Time  `json:"clockIn"`
	ClockOut     *time.Time `json:"clockOut"`
	DepartmentID *string    `json:"departmentId"`
	Status       Status     `json:"status"`
	IPAddress    string     `json:"ipAddress"`
	Notes        string     `json:"notes"`
	AutoClosed   bool       `json:"autoClosed"`
}

// Subject is the user clocking in.
type Subject struct {
	UserID      string
	UserType    int
	SecondShift bool
}

// Leave is an approved leave report covering the clock-in day.
type Leave struct {
	Type        string
	HalfDayType string
}

// Input is everything the clock-in decision depends on. Now must already be
// in the policy's time zone.
type Input struct {
	Subject        Subject
	Now            time.Time
	HasRecordToday bool
	EmployeeLeave  *Leave
	ManagerLeave   *Leave
}

type Filter struct {
	UserID       string
	DepartmentID string
	Status       string
	From         time.Time
	To           time.Time
}

type ExportRow struct {
	Record
	Name       string
	Email      string
	Department string
}

// Rejection is a refused clock-in or clock-out, shown to the user verbatim.
type Rejection struct {
	code    string
	message string
}

func (r *Rejection) Error() string { return r.message }
func (r *Rejection) Code() string  { return r.code }
func (r *Rejection) Status() int   { return http.StatusBadRequest }

// Is matches rejections by code so messages built from the policy compare
// equal to the package sentinels.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.code == r.code
}

var (
	ErrAlreadyClockedIn  = &Rejection{code: "already_clocked_in", message: "You are already clocked in for today."}
	ErrOnLeave           = &Rejection{code: "on_leave", message: "Cannot clock in on an approved leave day."}
	ErrFirstHalfLeave    = &Rejection{code: "first_half_leave", message: "For First Half leave, you can only clock in after 1:00 PM."}
	ErrSecondHalfLeave   = &Rejection{code: "second_half_leave", message: "For Second Half leave, you must clock in before 1:00 PM."}
	ErrNotClockedIn      = &Rejection{code: "not_clocked_in", message: "You have not clocked in today."}
	ErrAlreadyClockedOut = &Rejection{code: "already_clocked_out", message: "You have already clocked out for today."}
	ErrBusy              = &Rejection{code: "clock_in_in_progress", message: "A clock-in for today is already being processed."}
)

func firstHalfLeave(cutoff TimeOfDay) *Rejection {
	return &Rejection{
		code:    ErrFirstHalfLeave.code,
		message: "For First Half leave, you can only clock in after " + cutoff.Label() + ".",
	}
}

func secondHalfLeave(cutoff TimeOfDay) *Rejection {
	return &Rejection{
		code:    ErrSecondHalfLeave.code,
		message: "For Second Half leave, you must clock in before " + cutoff.Label() + ".",
	}
}

func tooEarly(earliest TimeOfDay, zone string) *Rejection {
	return &Rejection{
		code:    "too_early",
		message: "Clock-in is not allowed before " + earliest.Label() + " " + zone + ".",
	}
}
