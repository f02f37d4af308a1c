// README: Client registration and login.
package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wireconnect/internal/types"
)

var (
	ErrNotFound       = errors.New("client not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrBadCredentials = errors.New("invalid email or password")
	ErrBadRequest     = errors.New("bad request")
)

type accounts interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, id types.ID) (*Client, error)
	GetByEmail(ctx context.Context, email string) (*Client, error)
}

type Service struct {
	store accounts
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RegisterCommand struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*Client, error) {
	cmd.Email = strings.ToLower(strings.TrimSpace(cmd.Email))
	if cmd.Name == "" || cmd.Email == "" || len(cmd.Password) < 8 {
		return nil, ErrBadRequest
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	c := &Client{
		ID:           types.ID(uuid.NewString()),
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Client, error) {
	c, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Client, error) {
	return s.store.Get(ctx, id)
}
