// README: Client store backed by PostgreSQL.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wireconnect/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *Client) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO clients (id, name, email, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(c.ID), c.Name, c.Email, c.Phone, c.PasswordHash, c.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Client, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, created_at
		FROM clients WHERE id = $1`, string(id)))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Client, error) {
	return s.scanOne(s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, created_at
		FROM clients WHERE email = $1`, email))
}

func (s *Store) scanOne(row pgx.Row) (*Client, error) {
	var c Client
	var id string
	err := row.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	c.ID = types.ID(id)
	return &c, nil
}
