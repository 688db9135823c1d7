package leave

import (
	"errors"
	"strings"
	"time"

	"hrdesk/internal/domain/form"
)

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// ReportDays counts a half-day report as 0.5.
func ReportDays(leaveType string, start, end time.Time) float64 {
	if leaveType == TypeHalfDay {
		return 0.5
	}
	days, err := CalculateDays(start, end)
	if err != nil {
		return 0
	}
	return days
}

// Validate checks the leave form against today's date.
func Validate(in Input, today time.Time) (Draft, error) {
	errs := form.New()
	draft := Draft{
		LeaveType: strings.TrimSpace(in.LeaveType),
		Message:   strings.TrimSpace(in.Message),
	}

	if errs.Required("leave_type", draft.LeaveType, "This field is required.") {
		errs.Enum("leave_type", draft.LeaveType, LeaveTypes, "Select a valid choice.")
	}
	half := strings.TrimSpace(in.HalfDayType)
	if draft.LeaveType == TypeHalfDay {
		if errs.Required("half_day_type", half, "Select which half of the day you are on leave.") {
			errs.Enum("half_day_type", half, HalfDayTypes, "Select a valid choice.")
			draft.HalfDayType = &half
		}
	}
	errs.Required("message", draft.Message, "This field is required.")

	start, okStart := errs.Date("start_date", in.StartDate)
	end, okEnd := errs.Date("end_date", in.EndDate)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if okStart && start.Before(today) {
		errs.Add("start_date", "Leave cannot start in the past.")
	}
	if okEnd && end.Before(today) {
		errs.Add("end_date", "Leave cannot end in the past.")
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("end_date", "End date cannot be before start date.")
		} else if draft.LeaveType == TypeHalfDay && !end.Equal(start) {
			errs.Add("end_date", "Half-day leave must start and end on the same day.")
		}
	}
	draft.Start, draft.End = start, end
	if err := errs.Err(); err != nil {
		return Draft{}, err
	}
	return draft, nil
}
