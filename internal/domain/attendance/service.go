package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/leave"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/platform/lock"
)

const clockInLockTTL = 10 * time.Second

// EventCounter receives clock-in and clock-out outcomes.
type EventCounter interface {
	Incr(event string)
}

type Service struct {
	store    StoreAPI
	leaves   LeaveFinder
	locker   lock.Locker
	notifier Notifier
	Policy   Policy
	Now      func() time.Time
	Events   EventCounter
}

func NewService(store StoreAPI, leaves LeaveFinder, locker lock.Locker, notifier Notifier, policy Policy) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		store:    store,
		leaves:   leaves,
		locker:   locker,
		notifier: notifier,
		Policy:   policy,
		Now:      time.Now,
	}
}

func toLeave(r *leave.Report) *Leave {
	if r == nil {
		return nil
	}
	lv := &Leave{Type: r.LeaveType}
	if r.HalfDayType != nil {
		lv.HalfDayType = *r.HalfDayType
	}
	return lv
}

// ClockIn records today's attendance for the user or returns a *Rejection.
func (s *Service) ClockIn(ctx context.Context, userID, notes, ip string) (Record, error) {
	rec, err := s.clockIn(ctx, userID, notes, ip)
	s.count("clock_in", string(rec.Status), err)
	return rec, err
}

// count records "<op>.<status>" on success and "<op>.rejected.<code>" for
// rejections. Other errors are not counted.
func (s *Service) count(op, outcome string, err error) {
	if s.Events == nil {
		return
	}
	var rej *Rejection
	switch {
	case err == nil:
		s.Events.Incr(op + "." + outcome)
	case errors.As(err, &rej):
		s.Events.Incr(op + ".rejected." + rej.Code())
	}
}

func (s *Service) clockIn(ctx context.Context, userID, notes, ip string) (Record, error) {
	now := s.Policy.Local(s.Now())
	day := s.Policy.Day(now)

	key := fmt.Sprintf("clock-in:%s:%s", userID, day.Format(dateLayout))
	release, err := s.locker.Acquire(ctx, key, clockInLockTTL)
	switch {
	case errors.Is(err, lock.ErrHeld):
		return Record{}, ErrBusy
	case err != nil:
		// The unique (user_id, date) constraint still holds without the lock.
		slog.Warn("clock-in lock unavailable", "user", userID, "err", err)
	default:
		defer release()
	}

	subject, err := s.store.Subject(ctx, userID)
	if err != nil {
		return Record{}, fmt.Errorf("load user: %w", err)
	}
	has, err := s.store.HasRecord(ctx, userID, day)
	if err != nil {
		return Record{}, err
	}
	var cov leave.Coverage
	if !has && s.leaves != nil {
		if cov, err = s.leaves.ActiveOn(ctx, userID, day); err != nil {
			return Record{}, err
		}
	}

	status, err := s.Policy.Evaluate(Input{
		Subject:        subject,
		Now:            now,
		HasRecordToday: has,
		EmployeeLeave:  toLeave(cov.Employee),
		ManagerLeave:   toLeave(cov.Manager),
	})
	if err != nil {
		return Record{}, err
	}

	dept, err := s.store.ProfileDepartment(ctx, userID)
	if err != nil {
		return Record{}, fmt.Errorf("load department: %w", err)
	}
	return s.store.CreateRecord(ctx, Record{
		UserID:       userID,
		Date:         day.Format(dateLayout),
		ClockIn:      now,
		DepartmentID: dept,
		Status:       status,
		IPAddress:    ip,
		Notes:        notes,
	})
}

func (s *Service) ClockOut(ctx context.Context, userID string) (Record, error) {
	rec, err := s.clockOut(ctx, userID)
	s.count("clock_out", "ok", err)
	return rec, err
}

func (s *Service) clockOut(ctx context.Context, userID string) (Record, error) {
	now := s.Policy.Local(s.Now())
	rec, err := s.store.RecordFor(ctx, userID, s.Policy.Day(now))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotClockedIn
	}
	if err != nil {
		return Record{}, err
	}
	if rec.ClockOut != nil {
		return Record{}, ErrAlreadyClockedOut
	}
	closed, err := s.store.ClockOut(ctx, rec.ID, userID, now)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrAlreadyClockedOut
	}
	return closed, err
}

// Today returns the caller's record for the current day, or nil.
func (s *Service) Today(ctx context.Context, userID string) (*Record, error) {
	rec, err := s.store.RecordFor(ctx, userID, s.Policy.Day(s.Now()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]Record, int, error) {
	return s.store.List(ctx, Filter{UserID: userID}, limit, offset)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	return s.store.List(ctx, filter, limit, offset)
}

// Export renders every record of the month containing month as an .xlsx
// workbook.
func (s *Service) Export(ctx context.Context, month time.Time) ([]byte, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	rows, err := s.store.ExportRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return WriteWorkbook(rows, s.Policy.Location)
}

// AutoCloseStale closes records left open on earlier days and tells the
// affected users. It satisfies jobs.AutoCloser.
func (s *Service) AutoCloseStale(ctx context.Context, now time.Time) (int64, error) {
	users, err := s.store.CloseStale(ctx, s.Policy.Day(now), s.Policy.Location.String())
	if err != nil {
		return 0, err
	}
	if s.notifier != nil && len(users) > 0 {
		if err := s.notifier.Notify(ctx, users, notifications.TypeAutoClockOut,
			"Automatic clock-out", "You did not clock out, so your attendance was closed at the end of the day."); err != nil {
			slog.Warn("auto clock-out notification failed", "users", len(users), "err", err)
		}
	}
	return int64(len(users)), nil
}
