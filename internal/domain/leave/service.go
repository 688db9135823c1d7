package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/form"
	"hrdesk/internal/domain/notifications"
)

var (
	ErrNotFound        = form.NotFound("leave_not_found", "Leave report not found.")
	ErrNoProfile       = form.NotFound("profile_not_found", "No staff profile exists for this account.")
	ErrCannotApply     = form.Forbidden("forbidden", "Only managers and employees can apply for leave.")
	ErrForbidden       = form.Forbidden("forbidden", "You cannot review this leave report.")
	ErrAlreadyReviewed = form.Conflict("leave_already_reviewed", "This leave report has already been reviewed.")
)

type Service struct {
	store    StoreAPI
	notifier Notifier
	// Today returns the current local date.
	Today func() time.Time
}

func NewService(store StoreAPI, notifier Notifier, today func() time.Time) *Service {
	if today == nil {
		today = time.Now
	}
	return &Service{store: store, notifier: notifier, Today: today}
}

// KindFor maps a user type to the leave table it applies into.
func KindFor(userType int) (Kind, bool) {
	switch userType {
	case auth.UserTypeEmployee:
		return KindEmployee, true
	case auth.UserTypeManager:
		return KindManager, true
	default:
		return "", false
	}
}

func (s *Service) profileID(ctx context.Context, kind Kind, userID string) (string, error) {
	id, err := s.store.ProfileID(ctx, kind, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoProfile
	}
	return id, err
}

// Apply validates and stores a leave report for the caller, then notifies
// the reviewers.
func (s *Service) Apply(ctx context.Context, user auth.UserContext, in Input) (Report, error) {
	kind, ok := KindFor(user.UserType)
	if !ok {
		return Report{}, ErrCannotApply
	}
	draft, err := Validate(in, s.Today())
	if err != nil {
		return Report{}, err
	}
	ownerID, err := s.profileID(ctx, kind, user.UserID)
	if err != nil {
		return Report{}, err
	}
	report, err := s.store.CreateReport(ctx, kind, ownerID, draft)
	if err != nil {
		return Report{}, err
	}

	var extra []string
	if kind == KindEmployee {
		lead, err := s.store.TeamLeadUserID(ctx, ownerID)
		if err != nil {
			slog.Warn("team lead lookup failed", "report", report.ID, "err", err)
		}
		extra = append(extra, lead)
	}
	if s.notifier != nil {
		body := fmt.Sprintf("%s applied for %s leave from %s to %s.", report.ApplicantName, report.LeaveType, report.StartDate, report.EndDate)
		if err := s.notifier.NotifyAdmins(ctx, extra, notifications.TypeLeaveSubmitted, "New leave application", body); err != nil {
			slog.Warn("leave submission notification failed", "report", report.ID, "err", err)
		}
	}
	return report, nil
}

// List returns the reports of kind visible to the caller: admins see all,
// managers see their team's employee reports, everyone sees their own.
func (s *Service) List(ctx context.Context, user auth.UserContext, kind Kind, status *int, limit, offset int) ([]Report, int, error) {
	if limit <= 0 {
		limit = defaultListMax
	}
	filter := Filter{Status: status}
	switch {
	case user.IsAdmin():
	case user.UserType == auth.UserTypeManager && kind == KindEmployee:
		leadID, err := s.profileID(ctx, KindManager, user.UserID)
		if err != nil {
			return nil, 0, err
		}
		filter.TeamLeadID = leadID
	default:
		own, ok := KindFor(user.UserType)
		if !ok || own != kind {
			return nil, 0, ErrForbidden
		}
		ownerID, err := s.profileID(ctx, kind, user.UserID)
		if err != nil {
			return nil, 0, err
		}
		filter.OwnerID = ownerID
	}
	return s.store.ListReports(ctx, kind, filter, limit, offset)
}

func (s *Service) Get(ctx context.Context, user auth.UserContext, kind Kind, id string) (Report, error) {
	report, err := s.store.GetReport(ctx, kind, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	if report.UserID == user.UserID {
		return report, nil
	}
	if err := s.canReview(ctx, user, report); err != nil {
		return Report{}, err
	}
	return report, nil
}

func (s *Service) canReview(ctx context.Context, user auth.UserContext, report Report) error {
	if user.IsAdmin() {
		return nil
	}
	if user.UserType != auth.UserTypeManager || report.Kind != KindEmployee {
		return ErrForbidden
	}
	lead, err := s.store.TeamLeadUserID(ctx, report.OwnerID)
	if err != nil {
		return err
	}
	if lead == "" || lead != user.UserID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Approve(ctx context.Context, reviewer auth.UserContext, kind Kind, id string) (Report, error) {
	return s.review(ctx, reviewer, kind, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, reviewer auth.UserContext, kind Kind, id string) (Report, error) {
	return s.review(ctx, reviewer, kind, id, StatusRejected)
}

func (s *Service) review(ctx context.Context, reviewer auth.UserContext, kind Kind, id string, status int) (Report, error) {
	report, err := s.store.GetReport(ctx, kind, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}
	if err := s.canReview(ctx, reviewer, report); err != nil {
		return Report{}, err
	}
	updated, err := s.store.SetStatus(ctx, kind, id, status, reviewer.UserID)
	if err != nil {
		return Report{}, err
	}
	if !updated {
		return Report{}, ErrAlreadyReviewed
	}
	report.Status = status

	if s.notifier != nil {
		ntype := notifications.TypeLeaveApproved
		if status == StatusRejected {
			ntype = notifications.TypeLeaveRejected
		}
		body := fmt.Sprintf("Your %s leave from %s to %s was %s.", report.LeaveType, report.StartDate, report.EndDate, report.StatusLabel())
		if err := s.notifier.Notify(ctx, []string{report.UserID}, ntype, "Leave application "+report.StatusLabel(), body); err != nil {
			slog.Warn("leave review notification failed", "report", report.ID, "err", err)
		}
	}
	return report, nil
}

// ActiveOn returns the approved leave covering day for the user from both
// the employee and the manager tables.
func (s *Service) ActiveOn(ctx context.Context, userID string, day time.Time) (Coverage, error) {
	var cov Coverage
	var err error
	if cov.Employee, err = s.store.ApprovedOn(ctx, KindEmployee, userID, day); err != nil {
		return Coverage{}, fmt.Errorf("employee leave lookup: %w", err)
	}
	if cov.Manager, err = s.store.ApprovedOn(ctx, KindManager, userID, day); err != nil {
		return Coverage{}, fmt.Errorf("manager leave lookup: %w", err)
	}
	return cov, nil
}
