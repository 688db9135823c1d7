package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

func at(t *testing.T, p Policy, hhmm string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", "2024-06-03 "+hhmm, p.Location)
	require.NoError(t, err)
	return parsed
}

var (
	employee    = Subject{UserID: "e1", UserType: auth.UserTypeEmployee}
	manager     = Subject{UserID: "m1", UserType: auth.UserTypeManager}
	admin       = Subject{UserID: "a1", UserType: auth.UserTypeAdmin}
	secondShift = Subject{UserID: "s1", UserType: auth.UserTypeEmployee, SecondShift: true}

	fullDay    = &Leave{Type: LeaveFullDay}
	firstHalf  = &Leave{Type: LeaveHalfDay, HalfDayType: LeaveFirstHalf}
	secondHalf = &Leave{Type: LeaveHalfDay, HalfDayType: LeaveSecondHalf}
)

func TestEvaluateDecisionTable(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		name          string
		subject       Subject
		clock         string
		hasRecord     bool
		employeeLeave *Leave
		managerLeave  *Leave
		want          Status
		wantErr       *Rejection
		wantMessage   string
	}{
		{name: "employee on time", subject: employee, clock: "08:50:00", want: StatusPresent},
		{name: "employee at nominal start", subject: employee, clock: "09:00:00", want: StatusPresent},
		{name: "employee inside grace", subject: employee, clock: "09:30:00", want: StatusPresent},
		{name: "employee just after grace", subject: employee, clock: "09:30:01", want: StatusLate},
		{name: "employee at 9:35 is late", subject: employee, clock: "09:35:00", want: StatusLate},
		{name: "employee at 1 PM is still late", subject: employee, clock: "13:00:00", want: StatusLate},
		{name: "employee after 1 PM is half day", subject: employee, clock: "13:00:01", want: StatusHalfDay},
		{name: "employee at earliest", subject: employee, clock: "08:45:00", want: StatusPresent},
		{
			name: "employee before 8:45", subject: employee, clock: "08:44:59",
			wantErr: &Rejection{code: "too_early"}, wantMessage: "Clock-in is not allowed before 8:45 AM IST.",
		},
		{name: "manager may start at 8:30", subject: manager, clock: "08:30:00", want: StatusPresent},
		{
			name: "manager before 8:30", subject: manager, clock: "08:29:00",
			wantErr: &Rejection{code: "too_early"}, wantMessage: "Clock-in is not allowed before 8:30 AM IST.",
		},
		{name: "admin at 8:40", subject: admin, clock: "08:40:00", want: StatusPresent},
		{name: "already has record", subject: employee, clock: "09:00:00", hasRecord: true, wantErr: ErrAlreadyClockedIn},
		{name: "record check wins over leave", subject: employee, clock: "09:00:00", hasRecord: true, employeeLeave: fullDay, wantErr: ErrAlreadyClockedIn},
		{name: "full day employee leave", subject: employee, clock: "09:00:00", employeeLeave: fullDay, wantErr: ErrOnLeave},
		{name: "first half leave morning", subject: employee, clock: "10:00:00", employeeLeave: firstHalf, wantErr: ErrFirstHalfLeave},
		{name: "first half leave at 1 PM", subject: employee, clock: "13:00:00", employeeLeave: firstHalf, want: StatusHalfDay},
		{name: "first half leave afternoon", subject: employee, clock: "14:10:00", employeeLeave: firstHalf, want: StatusHalfDay},
		{name: "second half leave morning", subject: employee, clock: "09:00:00", employeeLeave: secondHalf, want: StatusHalfDay},
		{name: "second half leave at 1 PM", subject: employee, clock: "13:00:00", employeeLeave: secondHalf, wantErr: ErrSecondHalfLeave},
		{
			name: "second half leave too early", subject: employee, clock: "08:00:00", employeeLeave: secondHalf,
			wantErr: &Rejection{code: "too_early"}, wantMessage: "Clock-in is not allowed before 8:45 AM IST.",
		},
		{name: "manager full day leave", subject: manager, clock: "09:00:00", managerLeave: fullDay, wantErr: ErrOnLeave},
		{name: "manager half day leave first shift", subject: manager, clock: "09:00:00", managerLeave: firstHalf, want: StatusPresent},
		{name: "second shift default", subject: secondShift, clock: "15:00:00", want: StatusPresent},
		{name: "second shift ignores earliest", subject: secondShift, clock: "06:00:00", want: StatusPresent},
		{name: "second shift manager half day", subject: secondShift, clock: "15:00:00", managerLeave: secondHalf, want: StatusHalfDay},
		{name: "second shift manager full day", subject: secondShift, clock: "15:00:00", managerLeave: fullDay, wantErr: ErrOnLeave},
		{name: "second shift employee full day", subject: secondShift, clock: "15:00:00", employeeLeave: fullDay, wantErr: ErrOnLeave},
		{name: "second shift employee first half afternoon", subject: secondShift, clock: "15:00:00", employeeLeave: firstHalf, want: StatusPresent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Evaluate(Input{
				Subject:        tc.subject,
				Now:            at(t, p, tc.clock),
				HasRecordToday: tc.hasRecord,
				EmployeeLeave:  tc.employeeLeave,
				ManagerLeave:   tc.managerLeave,
			})
			if tc.wantErr != nil {
				var rej *Rejection
				require.True(t, errors.As(err, &rej), "expected rejection, got %v", err)
				assert.Equal(t, tc.wantErr.Code(), rej.Code())
				if tc.wantMessage != "" {
					assert.Equal(t, tc.wantMessage, rej.Error())
				}
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRejectionMessages(t *testing.T) {
	assert.Equal(t, "You are already clocked in for today.", ErrAlreadyClockedIn.Error())
	assert.Equal(t, "Cannot clock in on an approved leave day.", ErrOnLeave.Error())
	assert.Equal(t, "For First Half leave, you can only clock in after 1:00 PM.", ErrFirstHalfLeave.Error())
	assert.Equal(t, "For Second Half leave, you must clock in before 1:00 PM.", ErrSecondHalfLeave.Error())
	assert.Equal(t, 400, ErrOnLeave.Status())
}

func TestHalfDayLeaveMessagesFollowCutoff(t *testing.T) {
	p, err := NewPolicy(config.Attendance{Timezone: "Asia/Kolkata", ZoneLabel: "IST", LeaveCutoff: "14:30"})
	require.NoError(t, err)

	_, err = p.Evaluate(Input{
		Subject:       employee,
		Now:           at(t, p, "14:00:00"),
		EmployeeLeave: &Leave{Type: LeaveHalfDay, HalfDayType: LeaveFirstHalf},
	})
	require.ErrorIs(t, err, ErrFirstHalfLeave)
	assert.Equal(t, "For First Half leave, you can only clock in after 2:30 PM.", err.Error())

	_, err = p.Evaluate(Input{
		Subject:       employee,
		Now:           at(t, p, "14:30:00"),
		EmployeeLeave: &Leave{Type: LeaveHalfDay, HalfDayType: LeaveSecondHalf},
	})
	require.ErrorIs(t, err, ErrSecondHalfLeave)
	assert.Equal(t, "For Second Half leave, you must clock in before 2:30 PM.", err.Error())
}

func TestTimeOfDay(t *testing.T) {
	d, err := ParseTimeOfDay("08:45")
	require.NoError(t, err)
	assert.Equal(t, At(8, 45), d)
	assert.Equal(t, "8:45 AM", d.Label())
	assert.Equal(t, "1:00 PM", At(13, 0).Label())
	assert.Equal(t, "12:00 AM", At(0, 0).Label())
	assert.Equal(t, "12:30 PM", At(12, 30).Label())

	for _, bad := range []string{"", "8", "24:00", "08:60", "ab:cd"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewPolicyOverrides(t *testing.T) {
	p, err := NewPolicy(config.Attendance{Timezone: "UTC", ZoneLabel: "UTC", Late: "09:45", EarliestEmployee: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, p.Location)
	assert.Equal(t, At(9, 45), p.Late)
	assert.Equal(t, At(8, 30), p.EarliestDefault)

	status, err := p.Evaluate(Input{Subject: employee, Now: time.Date(2024, 6, 3, 9, 40, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, StatusPresent, status)

	_, err = p.Evaluate(Input{Subject: employee, Now: time.Date(2024, 6, 3, 7, 59, 0, 0, time.UTC)})
	require.Error(t, err)
	assert.Equal(t, "Clock-in is not allowed before 8:00 AM UTC.", err.Error())
}

func TestNewPolicyRejectsBadValues(t *testing.T) {
	_, err := NewPolicy(config.Attendance{Timezone: "Nowhere/City"})
	assert.Error(t, err)
	_, err = NewPolicy(config.Attendance{Late: "25:00"})
	assert.Error(t, err)
	_, err = NewPolicy(config.Attendance{Late: "14:00", HalfDay: "13:00"})
	assert.Error(t, err)
}

func TestPolicyDayUsesZone(t *testing.T) {
	p := DefaultPolicy()
	// 20:00 UTC on the 2nd is 01:30 IST on the 3rd.
	day := p.Day(time.Date(2024, 6, 2, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), day)
}
