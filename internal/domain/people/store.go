package people

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	cryptoutil "hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/querier"
)

const dateLayout = "2006-01-02"

type Store struct {
	DB     querier.TxBeginner
	Crypto *cryptoutil.Service
}

func NewStore(db querier.TxBeginner, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

type tableSpec struct {
	profiles string
	idColumn string
}

func tables(kind Kind) tableSpec {
	if kind == KindManager {
		return tableSpec{profiles: "managers", idColumn: "manager_id"}
	}
	return tableSpec{profiles: "employees", idColumn: "employee_id"}
}

const accountColumns = `u.id, u.email, u.first_name, u.last_name, u.gender, u.address, u.phone_number,
      u.profile_pic, u.user_type, u.is_second_shift, u.status, u.created_at, u.updated_at`

func accountDest(a *Account) []any {
	return []any{&a.ID, &a.Email, &a.FirstName, &a.LastName, &a.Gender, &a.Address, &a.PhoneNumber,
		&a.ProfilePic, &a.UserType, &a.SecondShift, &a.Status, &a.CreatedAt, &a.UpdatedAt}
}

func (s *Store) EmailTaken(ctx context.Context, email, excludeUserID string) (bool, error) {
	var taken bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1) AND ($2 = '' OR id::text <> $2))
  `, email, excludeUserID).Scan(&taken)
	return taken, err
}

func (s *Store) StaffIDTaken(ctx context.Context, kind Kind, staffID, excludeID string) (bool, error) {
	t := tables(kind)
	var taken bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM `+t.profiles+` WHERE `+t.idColumn+` = $1 AND ($2 = '' OR id::text <> $2))
  `, staffID, excludeID).Scan(&taken)
	return taken, err
}

func (s *Store) ManagerExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM managers WHERE id::text = $1)", id).Scan(&exists)
	return exists, err
}

func (s *Store) TeamSize(ctx context.Context, managerID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE team_lead_id = $1", managerID).Scan(&n)
	return n, err
}

func insertUser(ctx context.Context, q querier.Querier, d UserDraft, userType int, hash string) (string, error) {
	var id string
	err := q.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, gender, address, phone_number, user_type, is_second_shift)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, d.Email, hash, d.FirstName, d.LastName, d.Gender, d.Address, d.PhoneNumber, userType, d.SecondShift).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func updateUser(ctx context.Context, q querier.Querier, userID string, d UserDraft, hash *string) error {
	cmd, err := q.Exec(ctx, `
    UPDATE users
    SET email = $1,
        first_name = $2,
        last_name = $3,
        gender = $4,
        address = $5,
        phone_number = $6,
        is_second_shift = $7,
        password_hash = COALESCE($8, password_hash),
        updated_at = now()
    WHERE id = $9
  `, d.Email, d.FirstName, d.LastName, d.Gender, d.Address, d.PhoneNumber, d.SecondShift, hash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, userID string, d UserDraft, hash *string) error {
	return updateUser(ctx, s.DB, userID, d, hash)
}

func (s *Store) DeleteUser(ctx context.Context, userID string) (bool, error) {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *Store) GetAccount(ctx context.Context, userID string) (Account, error) {
	var a Account
	err := s.DB.QueryRow(ctx, "SELECT "+accountColumns+" FROM users u WHERE u.id = $1", userID).Scan(accountDest(&a)...)
	return a, err
}

// SetProfilePic stores the new media path and returns the previous one.
func (s *Store) SetProfilePic(ctx context.Context, userID, rel string) (string, error) {
	var previous string
	err := s.DB.QueryRow(ctx, `
    UPDATE users u
    SET profile_pic = $1, updated_at = now()
    FROM (SELECT id, profile_pic FROM users WHERE id = $2) old
    WHERE u.id = old.id
    RETURNING old.profile_pic
  `, rel, userID).Scan(&previous)
	return previous, err
}

func (s *Store) CreateAdmin(ctx context.Context, d UserDraft, userType int, hash string) (Admin, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Admin{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID, err := insertUser(ctx, tx, d, userType, hash)
	if err != nil {
		return Admin{}, err
	}
	var id string
	if err := tx.QueryRow(ctx, "INSERT INTO admins (user_id) VALUES ($1) RETURNING id", userID).Scan(&id); err != nil {
		return Admin{}, fmt.Errorf("insert admin: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Admin{}, err
	}
	return s.GetAdmin(ctx, id)
}

func (s *Store) GetAdmin(ctx context.Context, id string) (Admin, error) {
	var a Admin
	dest := append([]any{&a.ID}, accountDest(&a.User)...)
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, `+accountColumns+`
    FROM admins a
    JOIN users u ON u.id = a.user_id
    WHERE a.id = $1
  `, id).Scan(dest...)
	return a, err
}

func (s *Store) ListAdmins(ctx context.Context, limit, offset int) ([]Admin, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM admins").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, `+accountColumns+`
    FROM admins a
    JOIN users u ON u.id = a.user_id
    ORDER BY u.last_name, u.first_name
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Admin
	for rows.Next() {
		var a Admin
		if err := rows.Scan(append([]any{&a.ID}, accountDest(&a.User)...)...); err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (s *Store) staffSelect(kind Kind) string {
	t := tables(kind)
	extra := "p.designation, p.team_lead_id::text"
	if kind == KindManager {
		extra = "'', NULL::text"
	}
	return `
    SELECT p.id, p.` + t.idColumn + `, p.division_id::text, p.department_id::text, ` + extra + `,
      p.emergency_contact, p.date_of_joining, p.aadhar_card, p.aadhar_card_enc, p.pan_card, p.pan_card_enc,
      p.bond_start, p.bond_end, p.created_at, p.updated_at,
      ` + accountColumns + `
    FROM ` + t.profiles + ` p
    JOIN users u ON u.id = p.user_id
  `
}

func (s *Store) scanStaff(row pgx.Row, kind Kind) (Staff, error) {
	st := Staff{Kind: kind}
	var emergency []byte
	var joined, bondStart, bondEnd time.Time
	var aadhar, pan cryptoutil.Field
	dest := []any{&st.ID, &st.StaffID, &st.DivisionID, &st.DepartmentID, &st.Designation, &st.TeamLeadID,
		&emergency, &joined, &aadhar.Plain, &aadhar.Enc, &pan.Plain, &pan.Enc,
		&bondStart, &bondEnd, &st.CreatedAt, &st.UpdatedAt}
	if err := row.Scan(append(dest, accountDest(&st.User)...)...); err != nil {
		return Staff{}, err
	}
	if len(emergency) > 0 {
		if err := json.Unmarshal(emergency, &st.Emergency); err != nil {
			return Staff{}, fmt.Errorf("decode emergency contact: %w", err)
		}
	}
	st.DateOfJoining = joined.Format(dateLayout)
	st.BondStart = bondStart.Format(dateLayout)
	st.BondEnd = bondEnd.Format(dateLayout)
	st.AadharCard = s.Crypto.Open(aadhar)
	st.PanCard = s.Crypto.Open(pan)
	return st, nil
}

func (s *Store) GetStaff(ctx context.Context, kind Kind, id string) (Staff, error) {
	return s.scanStaff(s.DB.QueryRow(ctx, s.staffSelect(kind)+" WHERE p.id = $1", id), kind)
}

func (s *Store) StaffByUser(ctx context.Context, kind Kind, userID string) (Staff, error) {
	return s.scanStaff(s.DB.QueryRow(ctx, s.staffSelect(kind)+" WHERE p.user_id = $1", userID), kind)
}

func (s *Store) ListStaff(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]Staff, int, error) {
	t := tables(kind)
	where := " WHERE 1=1"
	args := []any{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		where += fmt.Sprintf(" AND p.department_id = $%d", len(args))
	}
	if filter.TeamLeadID != "" && kind == KindEmployee {
		args = append(args, filter.TeamLeadID)
		where += fmt.Sprintf(" AND p.team_lead_id = $%d", len(args))
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM "+t.profiles+" p"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := s.staffSelect(kind) + where + " ORDER BY u.last_name, u.first_name"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		st, err := s.scanStaff(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, st)
	}
	return out, total, rows.Err()
}

func (s *Store) seal(d StaffDraft) (cryptoutil.Field, cryptoutil.Field, error) {
	aadhar, err := s.Crypto.Seal(d.AadharCard)
	if err != nil {
		return cryptoutil.Field{}, cryptoutil.Field{}, fmt.Errorf("seal aadhar: %w", err)
	}
	pan, err := s.Crypto.Seal(d.PanCard)
	if err != nil {
		return cryptoutil.Field{}, cryptoutil.Field{}, fmt.Errorf("seal pan: %w", err)
	}
	return aadhar, pan, nil
}

// CreateStaff inserts the account and the profile in one transaction.
func (s *Store) CreateStaff(ctx context.Context, kind Kind, d StaffDraft, hash string) (Staff, error) {
	aadhar, pan, err := s.seal(d)
	if err != nil {
		return Staff{}, err
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Staff{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	userID, err := insertUser(ctx, tx, d.User, kind.UserType(), hash)
	if err != nil {
		return Staff{}, err
	}

	var id string
	if kind == KindManager {
		err = tx.QueryRow(ctx, `
      INSERT INTO managers (user_id, manager_id, division_id, department_id, emergency_contact, date_of_joining,
        aadhar_card, aadhar_card_enc, pan_card, pan_card_enc, bond_start, bond_end)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
      RETURNING id
    `, userID, d.StaffID, d.DivisionID, d.DepartmentID, d.Emergency, d.DateOfJoining,
			aadhar.Plain, aadhar.Enc, pan.Plain, pan.Enc, d.BondStart, d.BondEnd).Scan(&id)
	} else {
		err = tx.QueryRow(ctx, `
      INSERT INTO employees (user_id, employee_id, division_id, department_id, designation, team_lead_id,
        emergency_contact, date_of_joining, aadhar_card, aadhar_card_enc, pan_card, pan_card_enc, bond_start, bond_end)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
      RETURNING id
    `, userID, d.StaffID, d.DivisionID, d.DepartmentID, d.Designation, d.TeamLeadID, d.Emergency, d.DateOfJoining,
			aadhar.Plain, aadhar.Enc, pan.Plain, pan.Enc, d.BondStart, d.BondEnd).Scan(&id)
	}
	if err != nil {
		return Staff{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Staff{}, err
	}
	return s.GetStaff(ctx, kind, id)
}

// UpdateStaff rewrites the account and the profile. A nil hash keeps the
// current password.
func (s *Store) UpdateStaff(ctx context.Context, kind Kind, id, userID string, d StaffDraft, hash *string) (Staff, error) {
	aadhar, pan, err := s.seal(d)
	if err != nil {
		return Staff{}, err
	}
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Staff{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := updateUser(ctx, tx, userID, d.User, hash); err != nil {
		return Staff{}, err
	}
	if kind == KindManager {
		_, err = tx.Exec(ctx, `
      UPDATE managers
      SET manager_id = $1, division_id = $2, department_id = $3, emergency_contact = $4, date_of_joining = $5,
        aadhar_card = $6, aadhar_card_enc = $7, pan_card = $8, pan_card_enc = $9, bond_start = $10, bond_end = $11,
        updated_at = now()
      WHERE id = $12
    `, d.StaffID, d.DivisionID, d.DepartmentID, d.Emergency, d.DateOfJoining,
			aadhar.Plain, aadhar.Enc, pan.Plain, pan.Enc, d.BondStart, d.BondEnd, id)
	} else {
		_, err = tx.Exec(ctx, `
      UPDATE employees
      SET employee_id = $1, division_id = $2, department_id = $3, designation = $4, team_lead_id = $5,
        emergency_contact = $6, date_of_joining = $7, aadhar_card = $8, aadhar_card_enc = $9, pan_card = $10,
        pan_card_enc = $11, bond_start = $12, bond_end = $13, updated_at = now()
      WHERE id = $14
    `, d.StaffID, d.DivisionID, d.DepartmentID, d.Designation, d.TeamLeadID, d.Emergency, d.DateOfJoining,
			aadhar.Plain, aadhar.Enc, pan.Plain, pan.Enc, d.BondStart, d.BondEnd, id)
	}
	if err != nil {
		return Staff{}, fmt.Errorf("update %s: %w", kind, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Staff{}, err
	}
	return s.GetStaff(ctx, kind, id)
}
