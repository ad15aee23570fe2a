package propagation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StatusChange is emitted whenever an account's status is written. EventID is
// stable across retries and doubles as the Idempotency-Key sent to the peer.
type StatusChange struct {
	EventID    uuid.UUID
	AccountID  uuid.UUID
	IsActive   bool
	OccurredAt time.Time
}

// NewStatusChange stamps a fresh event for the account.
func NewStatusChange(accountID uuid.UUID, isActive bool, now time.Time) StatusChange {
	return StatusChange{
		EventID:    uuid.New(),
		AccountID:  accountID,
		IsActive:   isActive,
		OccurredAt: now.UTC(),
	}
}

// Outcome is what happened to a status change by the time Notify returned.
type Outcome string

const (
	// OutcomeDelivered means the listings service acknowledged the change.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeQueued means the change was handed to the background dispatcher.
	OutcomeQueued Outcome = "queued"
	// OutcomeFailed means delivery was attempted and did not succeed.
	OutcomeFailed Outcome = "failed"
	// OutcomeDropped means the dispatcher queue was full or closed.
	OutcomeDropped Outcome = "dropped"
)

// Result reports a propagation outcome to the caller. It never carries a
// failure as an error value: the account write has already committed.
type Result struct {
	EventID  uuid.UUID `json:"event_id"`
	Outcome  Outcome   `json:"outcome"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error,omitempty"`
}

// Notifier hands a status change to the listings service.
type Notifier interface {
	Notify(ctx context.Context, change StatusChange) Result
}

// OwnerStatusPayload is the JSON body accepted by the listings service.
type OwnerStatusPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	IsActive bool      `json:"is_active"`
}
