package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	FindUserByID(ctx context.Context, id string) (AuthUser, error)
}

type Service struct {
	Store    UserStore
	Secret   string
	TokenTTL time.Duration
}

func NewService(store UserStore, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TokenTTL: ttl}
}

type Session struct {
	Token string
	User  AuthUser
}

// Login checks the credentials and issues a signed token. Unknown emails and
// bad passwords both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	token, err := GenerateToken(s.Secret, Claims{
		UserID:   user.ID,
		UserType: user.UserType,
		RoleName: RoleForUserType(user.UserType),
	}, s.TokenTTL)
	if err != nil {
		return Session{}, err
	}
	user.Password = ""
	return Session{Token: token, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (AuthUser, error) {
	user, err := s.Store.FindUserByID(ctx, userID)
	user.Password = ""
	return user, err
}
