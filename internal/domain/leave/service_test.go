package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/notifications"
)

type fakeStore struct {
	profiles  map[string]string // kind:userID -> profile id
	leads     map[string]string // employee profile -> lead user id
	reports   map[string]Report
	approved  map[Kind]*Report
	lastList  Filter
	created   []Draft
	nextID    int
	statusErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[string]string{},
		leads:    map[string]string{},
		reports:  map[string]Report{},
		approved: map[Kind]*Report{},
	}
}

func (f *fakeStore) ProfileID(_ context.Context, kind Kind, userID string) (string, error) {
	id, ok := f.profiles[string(kind)+":"+userID]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return id, nil
}

func (f *fakeStore) TeamLeadUserID(_ context.Context, employeeProfileID string) (string, error) {
	return f.leads[employeeProfileID], nil
}

func (f *fakeStore) CreateReport(_ context.Context, kind Kind, ownerID string, draft Draft) (Report, error) {
	f.nextID++
	f.created = append(f.created, draft)
	r := Report{
		ID:            "r" + string(rune('0'+f.nextID)),
		Kind:          kind,
		OwnerID:       ownerID,
		ApplicantName: "Asha Rao",
		LeaveType:     draft.LeaveType,
		HalfDayType:   draft.HalfDayType,
		StartDate:     draft.Start.Format(dateLayout),
		EndDate:       draft.End.Format(dateLayout),
		Status:        StatusPending,
	}
	f.reports[r.ID] = r
	return r, nil
}

func (f *fakeStore) GetReport(_ context.Context, kind Kind, id string) (Report, error) {
	r, ok := f.reports[id]
	if !ok || r.Kind != kind {
		return Report{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeStore) ListReports(_ context.Context, _ Kind, filter Filter, _, _ int) ([]Report, int, error) {
	f.lastList = filter
	return nil, 0, nil
}

func (f *fakeStore) SetStatus(_ context.Context, _ Kind, id string, status int, _ string) (bool, error) {
	if f.statusErr != nil {
		return false, f.statusErr
	}
	r := f.reports[id]
	if r.Status != StatusPending {
		return false, nil
	}
	r.Status = status
	f.reports[id] = r
	return true, nil
}

func (f *fakeStore) ApprovedOn(_ context.Context, kind Kind, _ string, _ time.Time) (*Report, error) {
	return f.approved[kind], nil
}

type sent struct {
	to    []string
	ntype string
	admin bool
}

type fakeNotifier struct {
	sent []sent
}

func (n *fakeNotifier) Notify(_ context.Context, userIDs []string, ntype, _, _ string) error {
	n.sent = append(n.sent, sent{to: userIDs, ntype: ntype})
	return nil
}

func (n *fakeNotifier) NotifyAdmins(_ context.Context, extra []string, ntype, _, _ string) error {
	n.sent = append(n.sent, sent{to: extra, ntype: ntype, admin: true})
	return nil
}

var (
	employee = auth.UserContext{UserID: "u-emp", UserType: auth.UserTypeEmployee, RoleName: auth.RoleEmployee}
	lead     = auth.UserContext{UserID: "u-lead", UserType: auth.UserTypeManager, RoleName: auth.RoleManager}
	other    = auth.UserContext{UserID: "u-other", UserType: auth.UserTypeManager, RoleName: auth.RoleManager}
	admin    = auth.UserContext{UserID: "u-admin", UserType: auth.UserTypeAdmin, RoleName: auth.RoleAdmin}
)

func newService() (*Service, *fakeStore, *fakeNotifier) {
	store := newFakeStore()
	store.profiles["employee:u-emp"] = "emp-1"
	store.profiles["manager:u-lead"] = "mgr-1"
	store.profiles["manager:u-other"] = "mgr-2"
	store.leads["emp-1"] = "u-lead"
	n := &fakeNotifier{}
	svc := NewService(store, n, func() time.Time { return today })
	return svc, store, n
}

func validInput() Input {
	return Input{LeaveType: TypeFullDay, StartDate: "2024-06-04", EndDate: "2024-06-05", Message: "wedding"}
}

func TestApplyEmployeeNotifiesLeadAndAdmins(t *testing.T) {
	svc, store, n := newService()
	report, err := svc.Apply(context.Background(), employee, validInput())
	require.NoError(t, err)
	assert.Equal(t, KindEmployee, report.Kind)
	assert.Equal(t, "emp-1", report.OwnerID)
	require.Len(t, store.created, 1)

	require.Len(t, n.sent, 1)
	assert.True(t, n.sent[0].admin)
	assert.Equal(t, []string{"u-lead"}, n.sent[0].to)
	assert.Equal(t, notifications.TypeLeaveSubmitted, n.sent[0].ntype)
}

func TestApplyManagerNotifiesAdminsOnly(t *testing.T) {
	svc, _, n := newService()
	report, err := svc.Apply(context.Background(), lead, validInput())
	require.NoError(t, err)
	assert.Equal(t, KindManager, report.Kind)
	require.Len(t, n.sent, 1)
	assert.Empty(t, n.sent[0].to)
}

func TestApplyRejectsAdminAndInvalidForm(t *testing.T) {
	svc, store, _ := newService()
	_, err := svc.Apply(context.Background(), admin, validInput())
	assert.ErrorIs(t, err, ErrCannotApply)

	in := validInput()
	in.StartDate = "2024-06-01"
	_, err = svc.Apply(context.Background(), employee, in)
	issues := issuesOf(t, err)
	assert.Contains(t, issues, "start_date")
	assert.Empty(t, store.created)
}

func TestApplyWithoutProfile(t *testing.T) {
	svc, _, _ := newService()
	ghost := auth.UserContext{UserID: "u-ghost", UserType: auth.UserTypeEmployee}
	_, err := svc.Apply(context.Background(), ghost, validInput())
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestReviewPermissions(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService()
	report, err := svc.Apply(ctx, employee, validInput())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, other, KindEmployee, report.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Approve(ctx, employee, KindEmployee, report.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := svc.Approve(ctx, lead, KindEmployee, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	last := n.sent[len(n.sent)-1]
	assert.Equal(t, notifications.TypeLeaveApproved, last.ntype)

	_, err = svc.Reject(ctx, admin, KindEmployee, report.ID)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestManagerLeaveOnlyAdminReviews(t *testing.T) {
	ctx := context.Background()
	svc, _, n := newService()
	report, err := svc.Apply(ctx, lead, validInput())
	require.NoError(t, err)

	_, err = svc.Reject(ctx, other, KindManager, report.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	rejected, err := svc.Reject(ctx, admin, KindManager, report.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, notifications.TypeLeaveRejected, n.sent[len(n.sent)-1].ntype)
}

func TestReviewMissingAndStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()
	_, err := svc.Approve(ctx, admin, KindEmployee, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	report, err := svc.Apply(ctx, employee, validInput())
	require.NoError(t, err)
	store.statusErr = errors.New("db down")
	_, err = svc.Approve(ctx, admin, KindEmployee, report.ID)
	assert.EqualError(t, err, "db down")
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService()

	_, _, err := svc.List(ctx, admin, KindEmployee, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, Filter{}, store.lastList)

	_, _, err = svc.List(ctx, lead, KindEmployee, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "mgr-1", store.lastList.TeamLeadID)

	_, _, err = svc.List(ctx, lead, KindManager, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "mgr-1", store.lastList.OwnerID)

	_, _, err = svc.List(ctx, employee, KindManager, nil, 10, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestActiveOn(t *testing.T) {
	svc, store, _ := newService()
	half := HalfFirst
	store.approved[KindEmployee] = &Report{LeaveType: TypeHalfDay, HalfDayType: &half}

	cov, err := svc.ActiveOn(context.Background(), "u-emp", today)
	require.NoError(t, err)
	require.NotNil(t, cov.Employee)
	assert.Equal(t, TypeHalfDay, cov.Employee.LeaveType)
	assert.Nil(t, cov.Manager)
}
