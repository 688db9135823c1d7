package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/platform/lock"
	"hrdesk/internal/platform/metrics"
)

type memStore struct {
	subjects map[string]Subject
	records  map[string]Record // userID|date
	dept     *string
	stale    []string
	filter   Filter
}

func newMemStore() *memStore {
	return &memStore{subjects: map[string]Subject{}, records: map[string]Record{}}
}

func recKey(userID string, day time.Time) string {
	return userID + "|" + day.Format(dateLayout)
}

func (m *memStore) Subject(_ context.Context, userID string) (Subject, error) {
	sub, ok := m.subjects[userID]
	if !ok {
		return Subject{}, pgx.ErrNoRows
	}
	return sub, nil
}

func (m *memStore) HasRecord(_ context.Context, userID string, day time.Time) (bool, error) {
	_, ok := m.records[recKey(userID, day)]
	return ok, nil
}

func (m *memStore) ProfileDepartment(context.Context, string) (*string, error) {
	return m.dept, nil
}

func (m *memStore) CreateRecord(_ context.Context, rec Record) (Record, error) {
	key := rec.UserID + "|" + rec.Date
	if _, ok := m.records[key]; ok {
		return Record{}, ErrAlreadyClockedIn
	}
	rec.ID = "rec-" + rec.UserID
	m.records[key] = rec
	return rec, nil
}

func (m *memStore) RecordFor(_ context.Context, userID string, day time.Time) (Record, error) {
	rec, ok := m.records[recKey(userID, day)]
	if !ok {
		return Record{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (m *memStore) ClockOut(_ context.Context, recordID, userID string, at time.Time) (Record, error) {
	for key, rec := range m.records {
		if rec.ID == recordID && rec.UserID == userID && rec.ClockOut == nil {
			rec.ClockOut = &at
			m.records[key] = rec
			return rec, nil
		}
	}
	return Record{}, pgx.ErrNoRows
}

func (m *memStore) List(_ context.Context, filter Filter, _, _ int) ([]Record, int, error) {
	m.filter = filter
	return nil, 0, nil
}

func (m *memStore) ExportRows(context.Context, time.Time, time.Time) ([]ExportRow, error) {
	return nil, nil
}

func (m *memStore) CloseStale(context.Context, time.Time, string) ([]string, error) {
	return m.stale, nil
}

type stubLeaves struct {
	cov leave.Coverage
}

func (s stubLeaves) ActiveOn(context.Context, string, time.Time) (leave.Coverage, error) {
	return s.cov, nil
}

type captureNotifier struct {
	users []string
	ntype string
}

func (c *captureNotifier) Notify(_ context.Context, userIDs []string, ntype, _, _ string) error {
	c.users = userIDs
	c.ntype = ntype
	return nil
}

func newTestService(t *testing.T, clock string, cov leave.Coverage) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	store.subjects["e1"] = Subject{UserID: "e1", UserType: auth.UserTypeEmployee}
	store.subjects["s1"] = Subject{UserID: "s1", UserType: auth.UserTypeEmployee, SecondShift: true}
	p := DefaultPolicy()
	svc := NewService(store, stubLeaves{cov: cov}, lock.NewLocal(), &captureNotifier{}, p)
	now := at(t, p, clock)
	svc.Now = func() time.Time { return now.UTC() }
	return svc, store
}

func TestClockInCreatesRecord(t *testing.T) {
	svc, store := newTestService(t, "09:40:00", leave.Coverage{})
	dept := "dept-1"
	store.dept = &dept

	rec, err := svc.ClockIn(context.Background(), "e1", "train delay", "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, StatusLate, rec.Status)
	assert.Equal(t, "2024-06-03", rec.Date)
	assert.Equal(t, "10.0.0.7", rec.IPAddress)
	assert.Equal(t, "train delay", rec.Notes)
	require.NotNil(t, rec.DepartmentID)
	assert.Equal(t, "dept-1", *rec.DepartmentID)
	assert.Equal(t, svc.Policy.Location, rec.ClockIn.Location())
}

func TestClockInTwiceRejected(t *testing.T) {
	svc, _ := newTestService(t, "09:05:00", leave.Coverage{})
	_, err := svc.ClockIn(context.Background(), "e1", "", "")
	require.NoError(t, err)

	_, err = svc.ClockIn(context.Background(), "e1", "", "")
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
	assert.Equal(t, "You are already clocked in for today.", err.Error())
}

func TestClockOutcomesAreCounted(t *testing.T) {
	svc, _ := newTestService(t, "09:40:00", leave.Coverage{})
	collector := metrics.New()
	svc.Events = collector
	ctx := context.Background()

	_, err := svc.ClockIn(ctx, "e1", "", "")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "e1", "", "")
	require.Error(t, err)
	_, err = svc.ClockOut(ctx, "e1")
	require.NoError(t, err)
	_, err = svc.ClockIn(ctx, "missing", "", "")
	require.Error(t, err)

	assert.Equal(t, uint64(1), collector.Event("clock_in.late"))
	assert.Equal(t, uint64(1), collector.Event("clock_in.rejected.already_clocked_in"))
	assert.Equal(t, uint64(1), collector.Event("clock_out.ok"))
	events := collector.Snapshot()["events"].(map[string]uint64)
	assert.Len(t, events, 3, "lookup failures are not outcomes")
}

func TestClockInOnApprovedLeave(t *testing.T) {
	cov := leave.Coverage{Employee: &leave.Report{LeaveType: leave.TypeFullDay}}
	svc, store := newTestService(t, "10:00:00", cov)
	_, err := svc.ClockIn(context.Background(), "e1", "", "")
	assert.ErrorIs(t, err, ErrOnLeave)
	assert.Empty(t, store.records)
}

func TestClockInHalfDayLeave(t *testing.T) {
	half := leave.HalfFirst
	cov := leave.Coverage{Employee: &leave.Report{LeaveType: leave.TypeHalfDay, HalfDayType: &half}}

	svc, _ := newTestService(t, "11:00:00", cov)
	_, err := svc.ClockIn(context.Background(), "e1", "", "")
	assert.ErrorIs(t, err, ErrFirstHalfLeave)

	svc, _ = newTestService(t, "13:30:00", cov)
	rec, err := svc.ClockIn(context.Background(), "e1", "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusHalfDay, rec.Status)
}

func TestClockInSecondShiftManagerHalfDay(t *testing.T) {
	cov := leave.Coverage{Manager: &leave.Report{LeaveType: leave.TypeHalfDay}}
	svc, _ := newTestService(t, "07:00:00", cov)
	rec, err := svc.ClockIn(context.Background(), "s1", "", "")
	require.NoError(t, err)
	assert.Equal(t, StatusHalfDay, rec.Status)
}

func TestClockInTooEarly(t *testing.T) {
	svc, _ := newTestService(t, "08:40:00", leave.Coverage{})
	_, err := svc.ClockIn(context.Background(), "e1", "", "")
	require.Error(t, err)
	assert.Equal(t, "Clock-in is not allowed before 8:45 AM IST.", err.Error())
}

func TestClockInBusyWhileLocked(t *testing.T) {
	svc, _ := newTestService(t, "09:05:00", leave.Coverage{})
	release, err := svc.locker.Acquire(context.Background(), "clock-in:e1:2024-06-03", time.Minute)
	require.NoError(t, err)
	defer release()

	_, err = svc.ClockIn(context.Background(), "e1", "", "")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestClockInUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, "09:05:00", leave.Coverage{})
	_, err := svc.ClockIn(context.Background(), "ghost", "", "")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestClockOut(t *testing.T) {
	svc, _ := newTestService(t, "09:05:00", leave.Coverage{})
	ctx := context.Background()

	_, err := svc.ClockOut(ctx, "e1")
	assert.ErrorIs(t, err, ErrNotClockedIn)

	_, err = svc.ClockIn(ctx, "e1", "", "")
	require.NoError(t, err)
	rec, err := svc.ClockOut(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, rec.ClockOut)

	_, err = svc.ClockOut(ctx, "e1")
	assert.ErrorIs(t, err, ErrAlreadyClockedOut)
}

func TestTodayAndHistory(t *testing.T) {
	svc, store := newTestService(t, "09:05:00", leave.Coverage{})
	ctx := context.Background()

	rec, err := svc.Today(ctx, "e1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = svc.ClockIn(ctx, "e1", "", "")
	require.NoError(t, err)
	rec, err = svc.Today(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, rec)

	_, _, err = svc.History(ctx, "e1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "e1", store.filter.UserID)
}

func TestAutoCloseStaleNotifies(t *testing.T) {
	svc, store := newTestService(t, "09:05:00", leave.Coverage{})
	store.stale = []string{"e1", "m1"}

	n, err := svc.AutoCloseStale(context.Background(), svc.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	notifier := svc.notifier.(*captureNotifier)
	assert.Equal(t, []string{"e1", "m1"}, notifier.users)
	assert.Equal(t, notifications.TypeAutoClockOut, notifier.ntype)
}
