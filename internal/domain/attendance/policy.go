package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

// TimeOfDay is an offset from local midnight.
type TimeOfDay time.Duration

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time of day %q: want HH:MM", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time of day %q: bad hour", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q: bad minute", value)
	}
	return At(h, m), nil
}

func At(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func Clock(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond()))
}

// Label renders the time as "8:45 AM".
func (t TimeOfDay) Label() string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

type Policy struct {
	Location         *time.Location
	ZoneLabel        string
	EarliestEmployee TimeOfDay
	EarliestDefault  TimeOfDay
	OnTime           TimeOfDay
	Late             TimeOfDay
	HalfDay          TimeOfDay
	LeaveCutoff      TimeOfDay
}

func DefaultPolicy() Policy {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return Policy{
		Location:         loc,
		ZoneLabel:        "IST",
		EarliestEmployee: At(8, 45),
		EarliestDefault:  At(8, 30),
		OnTime:           At(9, 0),
		Late:             At(9, 30),
		HalfDay:          At(13, 0),
		LeaveCutoff:      At(13, 0),
	}
}

func NewPolicy(cfg config.Attendance) (Policy, error) {
	p := DefaultPolicy()
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return Policy{}, fmt.Errorf("attendance timezone: %w", err)
		}
		p.Location = loc
	}
	if cfg.ZoneLabel != "" {
		p.ZoneLabel = cfg.ZoneLabel
	}
	fields := []struct {
		raw string
		dst *TimeOfDay
	}{
		{cfg.EarliestEmployee, &p.EarliestEmployee},
		{cfg.EarliestDefault, &p.EarliestDefault},
		{cfg.OnTime, &p.OnTime},
		{cfg.Late, &p.Late},
		{cfg.HalfDay, &p.HalfDay},
		{cfg.LeaveCutoff, &p.LeaveCutoff},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		parsed, err := ParseTimeOfDay(f.raw)
		if err != nil {
			return Policy{}, err
		}
		*f.dst = parsed
	}
	if !(p.OnTime <= p.Late && p.Late <= p.HalfDay) {
		return Policy{}, fmt.Errorf("attendance thresholds must satisfy on_time <= late <= half_day")
	}
	return p, nil
}

// Local converts t to the policy zone.
func (p Policy) Local(t time.Time) time.Time {
	return t.In(p.Location)
}

// Day returns the calendar day of t in the policy zone as a UTC midnight.
func (p Policy) Day(t time.Time) time.Time {
	y, m, d := p.Local(t).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p Policy) earliest(userType int) TimeOfDay {
	if userType == auth.UserTypeEmployee {
		return p.EarliestEmployee
	}
	return p.EarliestDefault
}

// Evaluate decides a clock-in. It returns the status for the new record or
// a *Rejection.
func (p Policy) Evaluate(in Input) (Status, error) {
	if in.HasRecordToday {
		return "", ErrAlreadyClockedIn
	}
	now := Clock(in.Now)

	if lv := in.EmployeeLeave; lv != nil {
		if lv.Type == LeaveFullDay {
			return "", ErrOnLeave
		}
		switch lv.HalfDayType {
		case LeaveFirstHalf:
			if now < p.LeaveCutoff {
				return "", firstHalfLeave(p.LeaveCutoff)
			}
		case LeaveSecondHalf:
			if now >= p.LeaveCutoff {
				return "", secondHalfLeave(p.LeaveCutoff)
			}
		}
	}
	if lv := in.ManagerLeave; lv != nil && lv.Type == LeaveFullDay {
		return "", ErrOnLeave
	}

	if in.Subject.SecondShift {
		if lv := in.ManagerLeave; lv != nil && lv.Type == LeaveHalfDay {
			return StatusHalfDay, nil
		}
		return StatusPresent, nil
	}

	earliest := p.earliest(in.Subject.UserType)
	if now < earliest {
		return "", tooEarly(earliest, p.ZoneLabel)
	}
	switch {
	case now > p.HalfDay || in.EmployeeLeave != nil:
		return StatusHalfDay, nil
	case now > p.Late:
		return StatusLate, nil
	default:
		return StatusPresent, nil
	}
}
