package auth

import (
	"context"

	"hrdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

type AuthUser struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	UserType  int
	Password  string
}

func (s *Store) FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, first_name, last_name, user_type, password_hash
    FROM users
    WHERE email = $1 AND status = 'active'
  `, email).Scan(&out.ID, &out.Email, &out.FirstName, &out.LastName, &out.UserType, &out.Password)
	return out, err
}

func (s *Store) FindUserByID(ctx context.Context, id string) (AuthUser, error) {
	var out AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, first_name, last_name, user_type, password_hash
    FROM users
    WHERE id = $1
  `, id).Scan(&out.ID, &out.Email, &out.FirstName, &out.LastName, &out.UserType, &out.Password)
	return out, err
}
