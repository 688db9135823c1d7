package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/form"
	"hrdesk/internal/domain/notifications"
)

var (
	ErrNotFound    = form.NotFound("feedback_not_found", "Feedback not found.")
	ErrNoProfile   = form.NotFound("profile_not_found", "No staff profile exists for this account.")
	ErrCannotSend  = form.Forbidden("forbidden", "Only managers and employees can send feedback.")
	ErrForbidden   = form.Forbidden("forbidden", "You cannot view this feedback.")
	defaultLimit   = 100
	requiredReason = "This field is required."
)

type StoreAPI interface {
	ProfileID(ctx context.Context, kind Kind, userID string) (string, error)
	Create(ctx context.Context, kind Kind, ownerID, text string) (Feedback, error)
	Get(ctx context.Context, kind Kind, id string) (Feedback, error)
	List(ctx context.Context, kind Kind, ownerID string, limit, offset int) ([]Feedback, int, error)
	SetReply(ctx context.Context, kind Kind, id, reply string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, userIDs []string, ntype, title, body string) error
	NotifyAdmins(ctx context.Context, extra []string, ntype, title, body string) error
}

type Service struct {
	store    StoreAPI
	notifier Notifier
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

func kindFor(userType int) (Kind, bool) {
	switch userType {
	case auth.UserTypeEmployee:
		return KindEmployee, true
	case auth.UserTypeManager:
		return KindManager, true
	default:
		return "", false
	}
}

func (s *Service) Submit(ctx context.Context, user auth.UserContext, in Input) (Feedback, error) {
	kind, ok := kindFor(user.UserType)
	if !ok {
		return Feedback{}, ErrCannotSend
	}
	errs := form.New()
	text := strings.TrimSpace(in.Feedback)
	errs.Required("feedback", text, requiredReason)
	if err := errs.Err(); err != nil {
		return Feedback{}, err
	}
	ownerID, err := s.store.ProfileID(ctx, kind, user.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Feedback{}, ErrNoProfile
	}
	if err != nil {
		return Feedback{}, err
	}
	f, err := s.store.Create(ctx, kind, ownerID, text)
	if err != nil {
		return Feedback{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyAdmins(ctx, nil, notifications.TypeFeedbackSubmitted, "New feedback", f.AuthorName+" sent feedback."); err != nil {
			slog.Warn("feedback notification failed", "feedback", f.ID, "err", err)
		}
	}
	return f, nil
}

// List returns every item to admins and the caller's own feedback otherwise.
func (s *Service) List(ctx context.Context, user auth.UserContext, kind Kind, limit, offset int) ([]Feedback, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if user.IsAdmin() {
		return s.store.List(ctx, kind, "", limit, offset)
	}
	own, ok := kindFor(user.UserType)
	if !ok || own != kind {
		return nil, 0, ErrForbidden
	}
	ownerID, err := s.store.ProfileID(ctx, kind, user.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrNoProfile
	}
	if err != nil {
		return nil, 0, err
	}
	return s.store.List(ctx, kind, ownerID, limit, offset)
}

// Reply stores the admin's answer and notifies the author.
func (s *Service) Reply(ctx context.Context, kind Kind, id string, in ReplyInput) (Feedback, error) {
	errs := form.New()
	reply := strings.TrimSpace(in.Reply)
	errs.Required("reply", reply, requiredReason)
	if err := errs.Err(); err != nil {
		return Feedback{}, err
	}
	updated, err := s.store.SetReply(ctx, kind, id, reply)
	if err != nil {
		return Feedback{}, err
	}
	if !updated {
		return Feedback{}, ErrNotFound
	}
	f, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return Feedback{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, []string{f.UserID}, notifications.TypeFeedbackReplied, "Feedback reply", reply); err != nil {
			slog.Warn("feedback reply notification failed", "feedback", f.ID, "err", err)
		}
	}
	return f, nil
}
