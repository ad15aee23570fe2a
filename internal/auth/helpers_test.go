package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/accounts"
	"github.com/angelmondragon/listingz-backend/pkg/auth/session"
	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/angelmondragon/listingz-backend/pkg/mailer"
	"github.com/angelmondragon/listingz-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "listingz",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 120,
}

var testPasswordConfig = config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1}

func newTestRepo(t *testing.T) *accounts.Repository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Account{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, _ := conn.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return accounts.NewRepository(conn)
}

// seedAccount creates a confirmed, active account with the given password.
func seedAccount(t *testing.T, repo *accounts.Repository, email, password string) *models.Account {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	ctx := context.Background()
	account, err := repo.Create(ctx, accounts.CreateAccountDTO{
		Name:         "Seed",
		Email:        email,
		PasswordHash: hash,
		Role:         enums.AccountRoleUser,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := repo.ConfirmEmail(ctx, account.ID, time.Now()); err != nil {
		t.Fatalf("confirm email: %v", err)
	}
	account.IsEmailConfirmed = true
	return account
}

type stubSessionManager struct {
	mu       sync.Mutex
	sessions map[string]string
	seq      int
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]string{}}
}

func (s *stubSessionManager) Issue(ctx context.Context, accountID uuid.UUID) (session.Issued, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	issued := session.Issued{
		AccessID:     fmt.Sprintf("access-%d", s.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", s.seq),
	}
	s.sessions[issued.AccessID] = issued.RefreshToken
	return issued, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, accountID uuid.UUID, oldAccessID, provided string) (session.Issued, error) {
	s.mu.Lock()
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		s.mu.Unlock()
		return session.Issued{}, session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	s.mu.Unlock()
	return s.Issue(ctx, accountID)
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accessID)
	return nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("expected a sent message")
	}
	return m.sent[len(m.sent)-1]
}

func tokenFromURL(t *testing.T, link string) string {
	t.Helper()
	idx := strings.Index(link, "token=")
	if idx < 0 {
		t.Fatalf("no token in %q", link)
	}
	return link[idx+len("token="):]
}

func seedUnconfirmed(t *testing.T, repo *accounts.Repository, email, password string) *models.Account {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account, err := repo.Create(context.Background(), accounts.CreateAccountDTO{
		Name:              "Unconfirmed",
		Email:             email,
		PasswordHash:      hash,
		ConfirmationToken: "pending-" + email,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}
