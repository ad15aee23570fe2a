package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/propagation"
	"github.com/angelmondragon/listingz-backend/pkg/db/models"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
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
	return conn
}

func mustCreateAccount(t *testing.T, repo *Repository, email string, role enums.AccountRole) *models.Account {
	t.Helper()
	account, err := repo.Create(context.Background(), CreateAccountDTO{
		Name:         "Test " + email,
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []propagation.StatusChange
	outcome propagation.Outcome
}

func (n *recordingNotifier) Notify(ctx context.Context, change propagation.StatusChange) propagation.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	outcome := n.outcome
	if outcome == "" {
		outcome = propagation.OutcomeDelivered
	}
	res := propagation.Result{EventID: change.EventID, Outcome: outcome, Attempts: 1}
	if outcome == propagation.OutcomeFailed {
		res.Error = "listings service unreachable"
	}
	return res
}

func fixedClock() func() time.Time {
	ts := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func newTestService(t *testing.T, notifier propagation.Notifier) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	svc, err := NewService(ServiceParams{Repo: repo, Notifier: notifier, Clock: fixedClock()})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo
}
