package salary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

const salarySelect = `
    SELECT s.id, s.employee_id, e.user_id, u.first_name || ' ' || u.last_name, e.employee_id,
      s.department_id, d.name, s.base, s.ctc, s.updated_at
    FROM employee_salaries s
    JOIN employees e ON e.id = s.employee_id
    JOIN users u ON u.id = e.user_id
    JOIN departments d ON d.id = s.department_id
  `

func scanSalary(row pgx.Row) (Salary, error) {
	var s Salary
	err := row.Scan(&s.ID, &s.EmployeeID, &s.EmployeeUserID, &s.EmployeeName, &s.StaffID,
		&s.DepartmentID, &s.DepartmentName, &s.Base, &s.CTC, &s.UpdatedAt)
	return s, err
}

func (s *Store) DepartmentExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM departments WHERE id::text = $1)", id).Scan(&exists)
	return exists, err
}

// Placement returns nil when the employee does not exist.
func (s *Store) Placement(ctx context.Context, employeeID string) (*Placement, error) {
	var p Placement
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(department_id::text, ''), user_id
    FROM employees
    WHERE id::text = $1
  `, employeeID).Scan(&p.DepartmentID, &p.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) Upsert(ctx context.Context, d Draft, updatedBy string) (Salary, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_salaries (employee_id, department_id, base, ctc, updated_by)
    VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid)
    ON CONFLICT (employee_id) DO UPDATE
    SET department_id = EXCLUDED.department_id,
        base = EXCLUDED.base,
        ctc = EXCLUDED.ctc,
        updated_by = EXCLUDED.updated_by,
        updated_at = now()
    RETURNING id
  `, d.EmployeeID, d.DepartmentID, d.Base, d.CTC, updatedBy).Scan(&id); err != nil {
		return Salary{}, fmt.Errorf("upsert salary: %w", err)
	}
	return scanSalary(s.DB.QueryRow(ctx, salarySelect+" WHERE s.id = $1", id))
}

func (s *Store) ByEmployee(ctx context.Context, employeeID string) (Salary, error) {
	return scanSalary(s.DB.QueryRow(ctx, salarySelect+" WHERE s.employee_id::text = $1", employeeID))
}

func (s *Store) ByUser(ctx context.Context, userID string) (Salary, error) {
	return scanSalary(s.DB.QueryRow(ctx, salarySelect+" WHERE e.user_id = $1", userID))
}

func (s *Store) List(ctx context.Context, departmentID string, limit, offset int) ([]Salary, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if departmentID != "" {
		args = append(args, departmentID)
		where += fmt.Sprintf(" AND s.department_id::text = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employee_salaries s"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, salarySelect+where+fmt.Sprintf(" ORDER BY u.first_name, u.last_name LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Salary
	for rows.Next() {
		item, err := scanSalary(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}
