package salary

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
	ErrNotFound  = form.NotFound("salary_not_found", "No salary has been recorded for this employee.")
	ErrForbidden = form.Forbidden("forbidden", "You cannot view this salary.")
)

const defaultLimit = 100

type StoreAPI interface {
	DepartmentExists(ctx context.Context, id string) (bool, error)
	Placement(ctx context.Context, employeeID string) (*Placement, error)
	Upsert(ctx context.Context, d Draft, updatedBy string) (Salary, error)
	ByEmployee(ctx context.Context, employeeID string) (Salary, error)
	ByUser(ctx context.Context, userID string) (Salary, error)
	List(ctx context.Context, departmentID string, limit, offset int) ([]Salary, int, error)
}

type Notifier interface {
	Notify(ctx context.Context, userIDs []string, ntype, title, body string) error
}

type Service struct {
	store    StoreAPI
	notifier Notifier
	Now      func() time.Time
}

func NewService(store StoreAPI, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier, Now: time.Now}
}

// Edit validates the form and upserts the employee's salary.
func (s *Service) Edit(ctx context.Context, actor auth.UserContext, in Input) (Salary, error) {
	errs := form.New()
	d := validate(in, errs)

	var placement *Placement
	if !errs.Has("department") {
		ok, err := s.store.DepartmentExists(ctx, d.DepartmentID)
		if err != nil {
			return Salary{}, err
		}
		if !ok {
			errs.Add("department", choiceReason)
		}
	}
	if !errs.Has("employee") {
		p, err := s.store.Placement(ctx, d.EmployeeID)
		if err != nil {
			return Salary{}, err
		}
		if p == nil {
			errs.Add("employee", choiceReason)
		}
		placement = p
	}
	if placement != nil && !errs.Has("department") && placement.DepartmentID != d.DepartmentID {
		errs.Add("employee", memberReason)
	}
	if err := errs.Err(); err != nil {
		return Salary{}, err
	}

	saved, err := s.store.Upsert(ctx, d, actor.UserID)
	if err != nil {
		return Salary{}, err
	}
	if s.notifier != nil {
		body := fmt.Sprintf("Your salary was updated. Base %.2f, CTC %.2f.", saved.Base, saved.CTC)
		if err := s.notifier.Notify(ctx, []string{saved.EmployeeUserID}, notifications.TypeSalaryUpdated, "Salary updated", body); err != nil {
			slog.Warn("salary notification failed", "employee", saved.EmployeeID, "err", err)
		}
	}
	return saved, nil
}

func (s *Service) ForEmployee(ctx context.Context, employeeID string) (Salary, error) {
	return notFound(s.store.ByEmployee(ctx, employeeID))
}

// Mine returns the caller's own salary. Only employees have one.
func (s *Service) Mine(ctx context.Context, user auth.UserContext) (Salary, error) {
	if user.UserType != auth.UserTypeEmployee {
		return Salary{}, ErrForbidden
	}
	return notFound(s.store.ByUser(ctx, user.UserID))
}

func (s *Service) List(ctx context.Context, departmentID string, limit, offset int) ([]Salary, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return s.store.List(ctx, departmentID, limit, offset)
}

// Slip renders the PDF for employeeID. Non-admins may only fetch their own.
func (s *Service) Slip(ctx context.Context, user auth.UserContext, employeeID string) ([]byte, Salary, error) {
	var (
		sal Salary
		err error
	)
	if user.IsAdmin() {
		sal, err = s.ForEmployee(ctx, employeeID)
	} else {
		sal, err = s.Mine(ctx, user)
		if err == nil && employeeID != "" && sal.EmployeeID != employeeID {
			err = ErrForbidden
		}
	}
	if err != nil {
		return nil, Salary{}, err
	}
	pdf, err := RenderSlip(sal, s.Now())
	if err != nil {
		return nil, Salary{}, err
	}
	return pdf, sal, nil
}

func notFound(sal Salary, err error) (Salary, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, ErrNotFound
	}
	return sal, err
}
