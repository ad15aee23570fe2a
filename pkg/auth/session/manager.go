package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Store is the key/value surface sessions persist to. *redis.Client satisfies it.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	AccessSessionKey(accessID string) string
	AccountSessionsKey(accountID string) string
}

// Manager maps access token ids (jti) to refresh tokens and indexes them per
// account so every session of an account can be revoked at once.
type Manager struct {
	store Store
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Issued pairs a fresh access id with its refresh token.
type Issued struct {
	AccessID     string
	RefreshToken string
}

// NewManager constructs a session manager. The refresh TTL must outlive the access token.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// Issue starts a new session for the account and returns its access id and refresh token.
func (m *Manager) Issue(ctx context.Context, accountID uuid.UUID) (Issued, error) {
	if accountID == uuid.Nil {
		return Issued{}, fmt.Errorf("account id is required")
	}
	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID)
	if err != nil {
		return Issued{}, err
	}
	indexKey := m.store.AccountSessionsKey(accountID.String())
	if err := m.store.SAdd(ctx, indexKey, accessID); err != nil {
		return Issued{}, fmt.Errorf("indexing session: %w", err)
	}
	// the index lives as long as its newest session
	if err := m.store.Expire(ctx, indexKey, m.ttl); err != nil {
		return Issued{}, fmt.Errorf("indexing session: %w", err)
	}
	return Issued{AccessID: accessID, RefreshToken: token}, nil
}

// Generate creates a refresh token for the provided access ID and stores it.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), token, m.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Rotate checks the refresh token against the session of oldAccessID, then
// replaces that session with a new one. A token can be rotated only once.
func (m *Manager) Rotate(ctx context.Context, accountID uuid.UUID, oldAccessID, provided string) (Issued, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Issued{}, ErrInvalidRefreshToken
	}

	key := m.store.AccessSessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		return Issued{}, wrapNotFound(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return Issued{}, ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, key); err != nil {
		return Issued{}, err
	}
	if accountID != uuid.Nil {
		if err := m.store.SRem(ctx, m.store.AccountSessionsKey(accountID.String()), oldAccessID); err != nil {
			return Issued{}, err
		}
	}
	return m.Issue(ctx, accountID)
}

// Revoke deletes the refresh mapping tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// RevokeAccount ends every session issued to the account and returns how many
// were indexed. Access tokens already handed out fail the session check from
// then on.
func (m *Manager) RevokeAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	if accountID == uuid.Nil {
		return 0, fmt.Errorf("account id is required")
	}
	indexKey := m.store.AccountSessionsKey(accountID.String())
	accessIDs, err := m.store.SMembers(ctx, indexKey)
	if err != nil && !errors.Is(err, redislib.Nil) {
		return 0, fmt.Errorf("listing sessions: %w", err)
	}
	keys := make([]string, 0, len(accessIDs)+1)
	for _, id := range accessIDs {
		keys = append(keys, m.store.AccessSessionKey(id))
	}
	keys = append(keys, indexKey)
	if err := m.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("revoking sessions: %w", err)
	}
	return len(accessIDs), nil
}

// HasSession reports whether the access ID still has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
