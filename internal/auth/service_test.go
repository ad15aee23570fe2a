package auth

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/listingz-backend/internal/accounts"
	pkgAuth "github.com/angelmondragon/listingz-backend/pkg/auth"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestService(t *testing.T) (Service, *stubSessionManager, *accounts.Repository) {
	t.Helper()
	repo := newTestRepo(t)
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		AccountRepo:    repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig,
	})
	require.NoError(t, err)
	return svc, sessions, repo
}

func TestServiceLoginIssuesTokens(t *testing.T) {
	svc, sessions, repo := buildTestService(t)
	account := seedAccount(t, repo, "login@example.com", "secret1")

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "LOGIN@example.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, enums.AccountRoleUser, claims.Role)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, sessions.sessions[claims.ID], resp.RefreshToken)
	require.NotNil(t, resp.User.LastLoginAt)
}

func TestServiceLoginRejections(t *testing.T) {
	svc, _, repo := buildTestService(t)
	seedAccount(t, repo, "active@example.com", "secret1")
	inactive := seedAccount(t, repo, "inactive@example.com", "secret1")
	require.NoError(t, repo.UpdateStatus(context.Background(), inactive.ID, enums.AccountStatusInactive, time.Now()))

	cases := []struct {
		name    string
		req     LoginRequest
		message string
	}{
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "secret1"}, invalidCredentialsMessage},
		{"wrong password", LoginRequest{Email: "active@example.com", Password: "nope"}, invalidCredentialsMessage},
		{"deactivated", LoginRequest{Email: "inactive@example.com", Password: "secret1"}, deactivatedMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.req)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
			assert.Equal(t, tc.message, typed.Message())
		})
	}
}

func TestServiceLoginRequiresConfirmedEmail(t *testing.T) {
	svc, _, repo := buildTestService(t)
	seedUnconfirmed(t, repo, "fresh@example.com", "secret1")

	_, err := svc.Login(context.Background(), LoginRequest{Email: "fresh@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Equal(t, unconfirmedMessage, pkgerrors.As(err).Message())
}

func TestServiceRefreshRotatesOnce(t *testing.T) {
	svc, _, repo := buildTestService(t)
	account := seedAccount(t, repo, "refresh@example.com", "secret1")

	login, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: "secret1"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	require.NoError(t, err)

	input := RefreshInput{UserID: account.ID, AccessTokenID: claims.ID, RefreshToken: login.RefreshToken}
	rotated, err := svc.Refresh(context.Background(), input)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = svc.Refresh(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceRefreshRejectsDeactivatedAccount(t *testing.T) {
	svc, sessions, repo := buildTestService(t)
	account := seedAccount(t, repo, "gone@example.com", "secret1")

	login, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: "secret1"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), account.ID, enums.AccountStatusInactive, time.Now()))

	_, err = svc.Refresh(context.Background(), RefreshInput{UserID: account.ID, AccessTokenID: claims.ID, RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.NotContains(t, sessions.sessions, claims.ID)

	_, err = svc.Refresh(context.Background(), RefreshInput{UserID: uuid.New(), AccessTokenID: "x", RefreshToken: "y"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessions, repo := buildTestService(t)
	account := seedAccount(t, repo, "logout@example.com", "secret1")

	login, err := svc.Login(context.Background(), LoginRequest{Email: account.Email, Password: "secret1"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	assert.NotContains(t, sessions.sessions, claims.ID)
	assert.True(t, pkgerrors.IsCode(svc.Logout(context.Background(), ""), pkgerrors.CodeUnauthorized))
}
