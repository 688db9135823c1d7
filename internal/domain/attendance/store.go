package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"hrdesk/internal/platform/querier"
)

const dateLayout = "2006-01-02"

type Store struct {
	DB querier.TxBeginner
}

func NewStore(db querier.TxBeginner) *Store {
	return &Store{DB: db}
}

const recordColumns = `id, user_id, date, clock_in, clock_out, department_id, status, ip_address, notes, auto_closed`

func scanRecord(row pgx.Row, extra ...any) (Record, error) {
	var r Record
	var day time.Time
	dest := append([]any{&r.ID, &r.UserID, &day, &r.ClockIn, &r.ClockOut, &r.DepartmentID, &r.Status, &r.IPAddress, &r.Notes, &r.AutoClosed}, extra...)
	if err := row.Scan(dest...); err != nil {
		return Record{}, err
	}
	r.Date = day.Format(dateLayout)
	return r, nil
}

func (s *Store) Subject(ctx context.Context, userID string) (Subject, error) {
	sub := Subject{UserID: userID}
	err := s.DB.QueryRow(ctx, `
    SELECT user_type, is_second_shift
    FROM users
    WHERE id = $1 AND status = 'active'
  `, userID).Scan(&sub.UserType, &sub.SecondShift)
	return sub, err
}

func (s *Store) HasRecord(ctx context.Context, userID string, day time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM attendance_records WHERE user_id = $1 AND date = $2)
  `, userID, day).Scan(&exists)
	return exists, err
}

// ProfileDepartment prefers the employee profile over the manager one.
func (s *Store) ProfileDepartment(ctx context.Context, userID string) (*string, error) {
	var dept *string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(
      (SELECT department_id FROM employees WHERE user_id = $1),
      (SELECT department_id FROM managers WHERE user_id = $1)
    )
  `, userID).Scan(&dept)
	return dept, err
}

func insertActivity(ctx context.Context, q querier.Querier, userID, activity, recordID string) error {
	_, err := q.Exec(ctx, `
    INSERT INTO activity_feed (user_id, activity_type, related_record_id)
    VALUES ($1,$2,$3)
  `, userID, activity, recordID)
	return err
}

// CreateRecord inserts the record and its clock_in activity in one
// transaction. A duplicate day maps to ErrAlreadyClockedIn.
func (s *Store) CreateRecord(ctx context.Context, rec Record) (Record, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created, err := scanRecord(tx.QueryRow(ctx, `
    INSERT INTO attendance_records (user_id, date, clock_in, department_id, status, ip_address, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING `+recordColumns,
		rec.UserID, rec.Date, rec.ClockIn, rec.DepartmentID, rec.Status, rec.IPAddress, rec.Notes))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrAlreadyClockedIn
		}
		return Record{}, fmt.Errorf("insert attendance record: %w", err)
	}
	if err := insertActivity(ctx, tx, rec.UserID, ActivityClockIn, created.ID); err != nil {
		return Record{}, fmt.Errorf("insert activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return created, nil
}

func (s *Store) RecordFor(ctx context.Context, userID string, day time.Time) (Record, error) {
	return scanRecord(s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE user_id = $1 AND date = $2
  `, userID, day))
}

// ClockOut closes an open record. It returns pgx.ErrNoRows when the record
// is already closed.
func (s *Store) ClockOut(ctx context.Context, recordID, userID string, at time.Time) (Record, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Record{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec, err := scanRecord(tx.QueryRow(ctx, `
    UPDATE attendance_records
    SET clock_out = $1
    WHERE id = $2 AND user_id = $3 AND clock_out IS NULL
    RETURNING `+recordColumns, at, recordID, userID))
	if err != nil {
		return Record{}, err
	}
	if err := insertActivity(ctx, tx, userID, ActivityClockOut, rec.ID); err != nil {
		return Record{}, fmt.Errorf("insert activity: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func buildWhere(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND a.user_id = $%d", len(args))
	}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND a.department_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND a.status = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND a.date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND a.date <= $%d", len(args))
	}
	return where, args
}

func (s *Store) List(ctx context.Context, filter Filter, limit, offset int) ([]Record, int, error) {
	where, args := buildWhere(filter)

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records a"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
    SELECT a.id, a.user_id, a.date, a.clock_in, a.clock_out, a.department_id, a.status, a.ip_address, a.notes, a.auto_closed
    FROM attendance_records a` + where + " ORDER BY a.date DESC, a.clock_in DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

func (s *Store) ExportRows(ctx context.Context, from, to time.Time) ([]ExportRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.user_id, a.date, a.clock_in, a.clock_out, a.department_id, a.status, a.ip_address, a.notes, a.auto_closed,
      u.first_name || ' ' || u.last_name, u.email, COALESCE(d.name, '')
    FROM attendance_records a
    JOIN users u ON u.id = a.user_id
    LEFT JOIN departments d ON d.id = a.department_id
    WHERE a.date >= $1 AND a.date <= $2
    ORDER BY a.date, u.last_name, u.first_name
  `, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var row ExportRow
		rec, err := scanRecord(rows, &row.Name, &row.Email, &row.Department)
		if err != nil {
			return nil, err
		}
		row.Record = rec
		out = append(out, row)
	}
	return out, rows.Err()
}

// CloseStale sets clock_out to the end of the record's own day, in zone, for
// every record left open before the given day. It returns the affected users.
func (s *Store) CloseStale(ctx context.Context, before time.Time, zone string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    UPDATE attendance_records
    SET clock_out = (date + time '23:59:59') AT TIME ZONE $2, auto_closed = true
    WHERE clock_out IS NULL AND date < $1
    RETURNING user_id
  `, before, zone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
