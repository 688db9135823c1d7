package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type tableSpec struct {
	reports string
	owners  string
	ownerFK string
}

func tables(kind Kind) tableSpec {
	if kind == KindManager {
		return tableSpec{reports: "leave_reports_manager", owners: "managers", ownerFK: "manager_id"}
	}
	return tableSpec{reports: "leave_reports_employee", owners: "employees", ownerFK: "employee_id"}
}

func (s *Store) ProfileID(ctx context.Context, kind Kind, userID string) (string, error) {
	t := tables(kind)
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM "+t.owners+" WHERE user_id = $1", userID).Scan(&id)
	return id, err
}

func (s *Store) TeamLeadUserID(ctx context.Context, employeeProfileID string) (string, error) {
	var userID string
	err := s.DB.QueryRow(ctx, `
    SELECT m.user_id
    FROM employees e
    JOIN managers m ON m.id = e.team_lead_id
    WHERE e.id = $1
  `, employeeProfileID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return userID, err
}

func (s *Store) selectReport(t tableSpec) string {
	return `
    SELECT r.id, r.` + t.ownerFK + `, o.user_id, u.first_name || ' ' || u.last_name,
      r.leave_type, r.half_day_type, r.start_date, r.end_date, r.message, r.status,
      r.created_at, r.updated_at
    FROM ` + t.reports + ` r
    JOIN ` + t.owners + ` o ON o.id = r.` + t.ownerFK + `
    JOIN users u ON u.id = o.user_id
  `
}

func scanReport(row pgx.Row, kind Kind) (Report, error) {
	var r Report
	var start, end time.Time
	if err := row.Scan(&r.ID, &r.OwnerID, &r.UserID, &r.ApplicantName, &r.LeaveType, &r.HalfDayType,
		&start, &end, &r.Message, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Report{}, err
	}
	r.Kind = kind
	r.StartDate = start.Format(dateLayout)
	r.EndDate = end.Format(dateLayout)
	r.Days = ReportDays(r.LeaveType, start, end)
	return r, nil
}

func (s *Store) CreateReport(ctx context.Context, kind Kind, ownerID string, draft Draft) (Report, error) {
	t := tables(kind)
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO `+t.reports+` (`+t.ownerFK+`, leave_type, half_day_type, start_date, end_date, message, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, ownerID, draft.LeaveType, draft.HalfDayType, draft.Start, draft.End, draft.Message, StatusPending).Scan(&id); err != nil {
		return Report{}, fmt.Errorf("insert leave report: %w", err)
	}
	return s.GetReport(ctx, kind, id)
}

func (s *Store) GetReport(ctx context.Context, kind Kind, id string) (Report, error) {
	t := tables(kind)
	return scanReport(s.DB.QueryRow(ctx, s.selectReport(t)+" WHERE r.id = $1", id), kind)
}

func (s *Store) ListReports(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]Report, int, error) {
	t := tables(kind)
	where := " WHERE 1=1"
	args := []any{}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where += fmt.Sprintf(" AND r.%s = $%d", t.ownerFK, len(args))
	}
	if filter.TeamLeadID != "" && kind == KindEmployee {
		args = append(args, filter.TeamLeadID)
		where += fmt.Sprintf(" AND o.team_lead_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM `+t.reports+` r
    JOIN `+t.owners+` o ON o.id = r.`+t.ownerFK+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := s.selectReport(t) + where + " ORDER BY r.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// SetStatus only moves pending reports. It reports false when the report
// was already reviewed.
func (s *Store) SetStatus(ctx context.Context, kind Kind, id string, status int, reviewerID string) (bool, error) {
	t := tables(kind)
	tag, err := s.DB.Exec(ctx, `
    UPDATE `+t.reports+`
    SET status = $1, reviewed_by = $2, updated_at = now()
    WHERE id = $3 AND status = $4
  `, status, reviewerID, id, StatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ApprovedOn returns the approved report of the given kind covering day for
// the user, or nil. Full-day reports win over half-day ones.
func (s *Store) ApprovedOn(ctx context.Context, kind Kind, userID string, day time.Time) (*Report, error) {
	t := tables(kind)
	r, err := scanReport(s.DB.QueryRow(ctx, s.selectReport(t)+`
    WHERE o.user_id = $1 AND r.status = $2 AND r.start_date <= $3 AND r.end_date >= $3
    ORDER BY (r.leave_type = 'Full-Day') DESC, r.created_at DESC
    LIMIT 1
  `, userID, StatusApproved, day), kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
