package accounts

import (
	"context"
	"testing"

	"github.com/angelmondragon/listingz-backend/internal/propagation"
	"github.com/angelmondragon/listingz-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeStatusWritesThenPropagates(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, r := newTestService(t, notifier)
	account := mustCreateAccount(t, r, "owner@example.com", enums.AccountRoleUser)

	res, err := svc.ChangeStatus(context.Background(), account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, res.Account.Status)
	assert.Equal(t, propagation.OutcomeDelivered, res.Propagation.Outcome)
	assert.Equal(t, "User status changed to Inactive", res.Message())

	require.Len(t, notifier.changes, 1)
	assert.Equal(t, account.ID, notifier.changes[0].AccountID)
	assert.False(t, notifier.changes[0].IsActive)

	stored, err := r.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, stored.Status)
}

func TestChangeStatusSameStatusStillPropagates(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, r := newTestService(t, notifier)
	account := mustCreateAccount(t, r, "same@example.com", enums.AccountRoleUser)

	_, err := svc.ChangeStatus(context.Background(), account.ID, true)
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), account.ID, true)
	require.NoError(t, err)
	assert.Len(t, notifier.changes, 2)
	assert.NotEqual(t, notifier.changes[0].EventID, notifier.changes[1].EventID)
}

func TestChangeStatusKeepsWriteWhenPropagationFails(t *testing.T) {
	notifier := &recordingNotifier{outcome: propagation.OutcomeFailed}
	svc, r := newTestService(t, notifier)
	account := mustCreateAccount(t, r, "isolated@example.com", enums.AccountRoleUser)

	res, err := svc.ChangeStatus(context.Background(), account.ID, false)
	require.NoError(t, err, "propagation failure must not fail the status change")
	assert.Equal(t, propagation.OutcomeFailed, res.Propagation.Outcome)

	stored, err := r.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, stored.Status)
}

func TestChangeStatusUnknownAccount(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newTestService(t, notifier)

	_, err := svc.ChangeStatus(context.Background(), uuid.New(), false)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, notifier.changes)
}

func TestDeleteSelf(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, r := newTestService(t, notifier)
	self := mustCreateAccount(t, r, "self@example.com", enums.AccountRoleUser)
	other := mustCreateAccount(t, r, "other@example.com", enums.AccountRoleUser)

	_, err := svc.DeleteSelf(context.Background(), self.ID, other.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	res, err := svc.DeleteSelf(context.Background(), self.ID, self.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, res.Account.Status)

	stored, err := r.FindByID(context.Background(), self.ID)
	require.NoError(t, err, "account row must remain after delete")
	assert.Equal(t, enums.AccountStatusInactive, stored.Status)
	require.Len(t, notifier.changes, 1)
	assert.False(t, notifier.changes[0].IsActive)
}

func TestGetAndListAuthorization(t *testing.T) {
	svc, r := newTestService(t, &recordingNotifier{})
	admin := mustCreateAccount(t, r, "admin@example.com", enums.AccountRoleAdmin)
	user := mustCreateAccount(t, r, "user@example.com", enums.AccountRoleUser)
	ctx := context.Background()

	got, err := svc.Get(ctx, Actor{ID: user.ID, Role: enums.AccountRoleUser}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Get(ctx, Actor{ID: user.ID, Role: enums.AccountRoleUser}, admin.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Get(ctx, Actor{ID: admin.ID, Role: enums.AccountRoleAdmin}, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.List(ctx, Actor{ID: user.ID, Role: enums.AccountRoleUser})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	all, err := svc.List(ctx, Actor{ID: admin.ID, Role: enums.AccountRoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc, r := newTestService(t, &recordingNotifier{})
	a := mustCreateAccount(t, r, "a@example.com", enums.AccountRoleUser)
	mustCreateAccount(t, r, "b@example.com", enums.AccountRoleUser)
	actor := Actor{ID: a.ID, Role: enums.AccountRoleUser}

	_, err := svc.Update(context.Background(), actor, a.ID, UpdateAccountRequest{Name: "A", Email: "B@example.com"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	updated, err := svc.Update(context.Background(), actor, a.ID, UpdateAccountRequest{Name: " Alex ", Email: "alex@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alex", updated.Name)
	assert.Equal(t, "alex@example.com", updated.Email)
}

type recordingRevoker struct {
	revoked []uuid.UUID
	err     error
}

func (r *recordingRevoker) RevokeAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	r.revoked = append(r.revoked, accountID)
	return 2, r.err
}

func TestChangeStatusDeactivationRevokesSessions(t *testing.T) {
	revoker := &recordingRevoker{}
	r := NewRepository(openTestDB(t))
	svc, err := NewService(ServiceParams{Repo: r, Notifier: &recordingNotifier{}, Sessions: revoker, Clock: fixedClock()})
	require.NoError(t, err)
	account := mustCreateAccount(t, r, "revoke@example.com", enums.AccountRoleUser)
	ctx := context.Background()

	_, err = svc.ChangeStatus(ctx, account.ID, true)
	require.NoError(t, err)
	assert.Empty(t, revoker.revoked, "activation keeps sessions")

	_, err = svc.DeleteSelf(ctx, account.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{account.ID}, revoker.revoked)

	// a revoke failure does not undo the status write
	revoker.err = assert.AnError
	res, err := svc.ChangeStatus(ctx, account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enums.AccountStatusInactive, res.Account.Status)
	assert.Len(t, revoker.revoked, 2)
}
