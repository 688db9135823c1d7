package org

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrdesk/internal/platform/querier"
)

// ErrDuplicate is returned when a unique name constraint is violated.
var ErrDuplicate = errors.New("duplicate name")

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func (s *Store) ListDivisions(ctx context.Context) ([]Division, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, created_at, updated_at
    FROM divisions
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Division
	for rows.Next() {
		var d Division
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDivision(ctx context.Context, id string) (Division, error) {
	var d Division
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, created_at, updated_at
    FROM divisions
    WHERE id::text = $1
  `, id).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) CreateDivision(ctx context.Context, name string) (Division, error) {
	var d Division
	err := s.DB.QueryRow(ctx, `
    INSERT INTO divisions (name)
    VALUES ($1)
    RETURNING id, name, created_at, updated_at
  `, name).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	return d, mapUnique(err)
}

func (s *Store) UpdateDivision(ctx context.Context, id, name string) (Division, error) {
	var d Division
	err := s.DB.QueryRow(ctx, `
    UPDATE divisions
    SET name = $1, updated_at = now()
    WHERE id::text = $2
    RETURNING id, name, created_at, updated_at
  `, name, id).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	return d, mapUnique(err)
}

func (s *Store) DeleteDivision(ctx context.Context, id string) (bool, error) {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM divisions WHERE id::text = $1", id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const departmentSelect = `
    SELECT d.id, d.name, d.division_id, v.name, d.created_at, d.updated_at
    FROM departments d
    JOIN divisions v ON v.id = d.division_id
  `

func scanDepartment(row pgx.Row) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.DivisionID, &d.DivisionName, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) ListDepartments(ctx context.Context, divisionID string) ([]Department, error) {
	rows, err := s.DB.Query(ctx, departmentSelect+`
    WHERE $1 = '' OR d.division_id::text = $1
    ORDER BY v.name, d.name
  `, divisionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, id string) (Department, error) {
	return scanDepartment(s.DB.QueryRow(ctx, departmentSelect+" WHERE d.id::text = $1", id))
}

func (s *Store) CreateDepartment(ctx context.Context, name, divisionID string) (Department, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, division_id)
    VALUES ($1, $2)
    RETURNING id
  `, name, divisionID).Scan(&id); err != nil {
		return Department{}, mapUnique(err)
	}
	return s.GetDepartment(ctx, id)
}

func (s *Store) UpdateDepartment(ctx context.Context, id, name, divisionID string) (Department, error) {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE departments
    SET name = $1, division_id = $2, updated_at = now()
    WHERE id::text = $3
  `, name, divisionID, id)
	if err != nil {
		return Department{}, mapUnique(err)
	}
	if cmd.RowsAffected() == 0 {
		return Department{}, pgx.ErrNoRows
	}
	return s.GetDepartment(ctx, id)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) (bool, error) {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM departments WHERE id::text = $1", id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
