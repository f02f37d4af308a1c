// README: Redis-backed bearer-token sessions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"wireconnect/internal/types"
)

const (
	RoleClient     = "client"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

type Session struct {
	UserID   types.ID  `json:"user_id"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// Verifier is what the auth middleware needs; tests stub it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Issue creates a session and returns the opaque bearer token.
func (s *Store) Issue(ctx context.Context, userID types.ID, role string) (string, error) {
	sess := Session{UserID: userID, Role: role, IssuedAt: time.Now()}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, sessionKey(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (s *Store) Verify(ctx context.Context, token string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, ErrInvalidToken
	}
	return &sess, nil
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}
