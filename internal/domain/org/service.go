package org

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/domain/form"
)

var (
	ErrDivisionNotFound   = form.NotFound("not_found", "Division not found.")
	ErrDepartmentNotFound = form.NotFound("not_found", "Department not found.")
)

type StoreAPI interface {
	ListDivisions(ctx context.Context) ([]Division, error)
	GetDivision(ctx context.Context, id string) (Division, error)
	CreateDivision(ctx context.Context, name string) (Division, error)
	UpdateDivision(ctx context.Context, id, name string) (Division, error)
	DeleteDivision(ctx context.Context, id string) (bool, error)
	ListDepartments(ctx context.Context, divisionID string) ([]Department, error)
	GetDepartment(ctx context.Context, id string) (Department, error)
	CreateDepartment(ctx context.Context, name, divisionID string) (Department, error)
	UpdateDepartment(ctx context.Context, id, name, divisionID string) (Department, error)
	DeleteDepartment(ctx context.Context, id string) (bool, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func notFound(err, mapped error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return mapped
	}
	return err
}

func duplicate(err error, field, reason string) error {
	if errors.Is(err, ErrDuplicate) {
		errs := form.New()
		errs.Add(field, reason)
		return errs
	}
	return err
}

func (s *Service) ListDivisions(ctx context.Context) ([]Division, error) {
	return s.store.ListDivisions(ctx)
}

func (s *Service) GetDivision(ctx context.Context, id string) (Division, error) {
	d, err := s.store.GetDivision(ctx, id)
	return d, notFound(err, ErrDivisionNotFound)
}

func validateDivision(in DivisionInput) (string, error) {
	errs := form.New()
	name := strings.TrimSpace(in.Name)
	errs.Required("name", name, "This field is required.")
	return name, errs.Err()
}

func (s *Service) CreateDivision(ctx context.Context, in DivisionInput) (Division, error) {
	name, err := validateDivision(in)
	if err != nil {
		return Division{}, err
	}
	d, err := s.store.CreateDivision(ctx, name)
	return d, duplicate(err, "name", "Division with this Name already exists.")
}

func (s *Service) UpdateDivision(ctx context.Context, id string, in DivisionInput) (Division, error) {
	name, err := validateDivision(in)
	if err != nil {
		return Division{}, err
	}
	d, err := s.store.UpdateDivision(ctx, id, name)
	return d, duplicate(notFound(err, ErrDivisionNotFound), "name", "Division with this Name already exists.")
}

func (s *Service) DeleteDivision(ctx context.Context, id string) error {
	ok, err := s.store.DeleteDivision(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDivisionNotFound
	}
	return nil
}

func (s *Service) ListDepartments(ctx context.Context, divisionID string) ([]Department, error) {
	return s.store.ListDepartments(ctx, divisionID)
}

func (s *Service) GetDepartment(ctx context.Context, id string) (Department, error) {
	d, err := s.store.GetDepartment(ctx, id)
	return d, notFound(err, ErrDepartmentNotFound)
}

func (s *Service) validateDepartment(ctx context.Context, in DepartmentInput) (string, string, error) {
	errs := form.New()
	name := strings.TrimSpace(in.Name)
	division := strings.TrimSpace(in.Division)
	errs.Required("name", name, "This field is required.")
	if errs.Required("division", division, "This field is required.") {
		_, err := s.store.GetDivision(ctx, division)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			errs.Add("division", "Select a valid choice. That choice is not one of the available choices.")
		case err != nil:
			return "", "", err
		}
	}
	return name, division, errs.Err()
}

func (s *Service) CreateDepartment(ctx context.Context, in DepartmentInput) (Department, error) {
	name, division, err := s.validateDepartment(ctx, in)
	if err != nil {
		return Department{}, err
	}
	d, err := s.store.CreateDepartment(ctx, name, division)
	return d, duplicate(err, "name", "Department with this Name and Division already exists.")
}

func (s *Service) UpdateDepartment(ctx context.Context, id string, in DepartmentInput) (Department, error) {
	name, division, err := s.validateDepartment(ctx, in)
	if err != nil {
		return Department{}, err
	}
	d, err := s.store.UpdateDepartment(ctx, id, name, division)
	return d, duplicate(notFound(err, ErrDepartmentNotFound), "name", "Department with this Name and Division already exists.")
}

func (s *Service) DeleteDepartment(ctx context.Context, id string) error {
	ok, err := s.store.DeleteDepartment(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDepartmentNotFound
	}
	return nil
}
