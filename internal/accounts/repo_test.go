package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/repo"
	"github.com/angelmondragon/listingz-backend/pkg/db"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateDefaults(t *testing.T) {
	r := NewRepository(openTestDB(t))
	account := mustCreateAccount(t, r, "  Sam@Example.com ", "")

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, "sam@example.com", account.Email)
	assert.Equal(t, enums.AccountRoleUser, account.Role)
	assert.Equal(t, enums.AccountStatusActive, account.Status)
	assert.False(t, account.IsEmailConfirmed)

	found, err := r.FindByEmail(context.Background(), "SAM@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	r := NewRepository(openTestDB(t))
	mustCreateAccount(t, r, "dup@example.com", enums.AccountRoleUser)

	_, err := r.Create(context.Background(), CreateAccountDTO{Name: "x", Email: "DUP@example.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryStatusAndTokens(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(openTestDB(t))
	account := mustCreateAccount(t, r, "tokens@example.com", enums.AccountRoleUser)
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, r.UpdateStatus(ctx, account.ID, enums.AccountStatusInactive, now))
	reloaded, err := r.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, reloaded.Status)

	require.NoError(t, r.SetResetToken(ctx, account.ID, "reset-1", now.Add(time.Hour)))
	byToken, err := r.FindByResetToken(ctx, "reset-1")
	require.NoError(t, err)
	require.NotNil(t, byToken.ResetTokenExpiresAt)

	require.NoError(t, r.UpdatePassword(ctx, account.ID, "new-hash", now))
	_, err = r.FindByResetToken(ctx, "reset-1")
	assert.True(t, repo.IsNotFound(err), "reset token must be consumed")

	err = r.UpdateStatus(ctx, uuid.New(), enums.AccountStatusActive, now)
	assert.True(t, repo.IsNotFound(err))
}

func TestRepositoryConfirmEmail(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(openTestDB(t))
	created, err := r.Create(ctx, CreateAccountDTO{Name: "c", Email: "c@example.com", PasswordHash: "h", ConfirmationToken: "confirm-1"})
	require.NoError(t, err)

	found, err := r.FindByConfirmationToken(ctx, "confirm-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, r.ConfirmEmail(ctx, created.ID, time.Now()))
	reloaded, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsEmailConfirmed)
	assert.Nil(t, reloaded.ConfirmationToken)
}

func TestRepositoryExistsByEmailExcludesSelf(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(openTestDB(t))
	a := mustCreateAccount(t, r, "a@example.com", enums.AccountRoleUser)

	taken, err := r.ExistsByEmail(ctx, "a@example.com", a.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = r.ExistsByEmail(ctx, "A@example.com", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
}
