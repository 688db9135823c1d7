package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/form"
	"hrdesk/internal/domain/notifications"
)

type memStore struct {
	items     map[string]Feedback
	lastOwner string
}

func (m *memStore) ProfileID(_ context.Context, kind Kind, userID string) (string, error) {
	if userID == "u-ghost" {
		return "", pgx.ErrNoRows
	}
	return string(kind) + "-" + userID, nil
}

func (m *memStore) Create(_ context.Context, kind Kind, ownerID, text string) (Feedback, error) {
	f := Feedback{ID: "f1", Kind: kind, OwnerID: ownerID, UserID: "u-emp", AuthorName: "Asha Rao", Feedback: text}
	m.items[f.ID] = f
	return f, nil
}

func (m *memStore) Get(_ context.Context, _ Kind, id string) (Feedback, error) {
	f, ok := m.items[id]
	if !ok {
		return Feedback{}, pgx.ErrNoRows
	}
	return f, nil
}

func (m *memStore) List(_ context.Context, _ Kind, ownerID string, _, _ int) ([]Feedback, int, error) {
	m.lastOwner = ownerID
	return nil, 0, nil
}

func (m *memStore) SetReply(_ context.Context, _ Kind, id, reply string) (bool, error) {
	f, ok := m.items[id]
	if !ok {
		return false, nil
	}
	f.Reply = reply
	m.items[id] = f
	return true, nil
}

type recorder struct {
	types []string
	to    [][]string
}

func (r *recorder) Notify(_ context.Context, ids []string, ntype, _, _ string) error {
	r.types = append(r.types, ntype)
	r.to = append(r.to, ids)
	return nil
}

func (r *recorder) NotifyAdmins(_ context.Context, extra []string, ntype, _, _ string) error {
	r.types = append(r.types, ntype)
	r.to = append(r.to, extra)
	return nil
}

var (
	emp   = auth.UserContext{UserID: "u-emp", UserType: auth.UserTypeEmployee}
	admin = auth.UserContext{UserID: "u-admin", UserType: auth.UserTypeAdmin}
)

func TestSubmitAndReply(t *testing.T) {
	ctx := context.Background()
	store := &memStore{items: map[string]Feedback{}}
	rec := &recorder{}
	svc := NewService(store, rec)

	f, err := svc.Submit(ctx, emp, Input{Feedback: "  More parking please  "})
	require.NoError(t, err)
	assert.Equal(t, "More parking please", f.Feedback)
	assert.Equal(t, "employee-u-emp", f.OwnerID)

	replied, err := svc.Reply(ctx, KindEmployee, f.ID, ReplyInput{Reply: "Noted"})
	require.NoError(t, err)
	assert.Equal(t, "Noted", replied.Reply)
	assert.Equal(t, []string{notifications.TypeFeedbackSubmitted, notifications.TypeFeedbackReplied}, rec.types)
	assert.Equal(t, []string{"u-emp"}, rec.to[1])

	_, err = svc.Reply(ctx, KindEmployee, "missing", ReplyInput{Reply: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(&memStore{items: map[string]Feedback{}}, nil)

	_, err := svc.Submit(context.Background(), emp, Input{})
	var fe *form.Errors
	require.True(t, errors.As(err, &fe))
	assert.True(t, fe.Has("feedback"))

	_, err = svc.Submit(context.Background(), admin, Input{Feedback: "hi"})
	assert.ErrorIs(t, err, ErrCannotSend)

	ghost := auth.UserContext{UserID: "u-ghost", UserType: auth.UserTypeManager}
	_, err = svc.Submit(context.Background(), ghost, Input{Feedback: "hi"})
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestListScopes(t *testing.T) {
	ctx := context.Background()
	store := &memStore{items: map[string]Feedback{}}
	svc := NewService(store, nil)

	_, _, err := svc.List(ctx, admin, KindManager, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, store.lastOwner)

	_, _, err = svc.List(ctx, emp, KindEmployee, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "employee-u-emp", store.lastOwner)

	_, _, err = svc.List(ctx, emp, KindManager, 10, 0)
	assert.ErrorIs(t, err, ErrForbidden)
}
