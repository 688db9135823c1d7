package feedback

import (
	"context"
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

type tableSpec struct {
	feedback string
	owners   string
	ownerFK  string
}

func tables(kind Kind) tableSpec {
	if kind == KindManager {
		return tableSpec{feedback: "feedback_manager", owners: "managers", ownerFK: "manager_id"}
	}
	return tableSpec{feedback: "feedback_employee", owners: "employees", ownerFK: "employee_id"}
}

func selectFeedback(t tableSpec) string {
	return `
    SELECT f.id, f.` + t.ownerFK + `, o.user_id, u.first_name || ' ' || u.last_name,
      f.feedback, f.reply, f.created_at, f.updated_at
    FROM ` + t.feedback + ` f
    JOIN ` + t.owners + ` o ON o.id = f.` + t.ownerFK + `
    JOIN users u ON u.id = o.user_id
  `
}

func scanFeedback(row pgx.Row, kind Kind) (Feedback, error) {
	f := Feedback{Kind: kind}
	err := row.Scan(&f.ID, &f.OwnerID, &f.UserID, &f.AuthorName, &f.Feedback, &f.Reply, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (s *Store) ProfileID(ctx context.Context, kind Kind, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM "+tables(kind).owners+" WHERE user_id = $1", userID).Scan(&id)
	return id, err
}

func (s *Store) Create(ctx context.Context, kind Kind, ownerID, text string) (Feedback, error) {
	t := tables(kind)
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO `+t.feedback+` (`+t.ownerFK+`, feedback)
    VALUES ($1, $2)
    RETURNING id
  `, ownerID, text).Scan(&id); err != nil {
		return Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return s.Get(ctx, kind, id)
}

func (s *Store) Get(ctx context.Context, kind Kind, id string) (Feedback, error) {
	return scanFeedback(s.DB.QueryRow(ctx, selectFeedback(tables(kind))+" WHERE f.id::text = $1", id), kind)
}

// List returns feedback of kind, restricted to ownerID when set.
func (s *Store) List(ctx context.Context, kind Kind, ownerID string, limit, offset int) ([]Feedback, int, error) {
	t := tables(kind)
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM `+t.feedback+` WHERE $1 = '' OR `+t.ownerFK+`::text = $1
  `, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, selectFeedback(t)+`
    WHERE $1 = '' OR f.`+t.ownerFK+`::text = $1
    ORDER BY f.created_at DESC
    LIMIT $2 OFFSET $3
  `, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		f, err := scanFeedback(rows, kind)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (s *Store) SetReply(ctx context.Context, kind Kind, id, reply string) (bool, error) {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE `+tables(kind).feedback+`
    SET reply = $1, updated_at = now()
    WHERE id::text = $2
  `, reply, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
