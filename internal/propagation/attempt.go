package propagation

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
)

type statusSender interface {
	PropagateStatus(ctx context.Context, change StatusChange) error
}

func attempt(ctx context.Context, sender statusSender, rec *metrics.PropagationMetrics, change StatusChange) error {
	started := time.Now()
	err := sender.PropagateStatus(ctx, change)
	rec.ObserveAttempt(err == nil, time.Since(started))
	return err
}

func permanent(err error) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && !respErr.Retryable()
}

func changeFields(ctx context.Context, logg *logger.Logger, change StatusChange) context.Context {
	return logg.WithFields(ctx, map[string]any{
		"event_id":   change.EventID.String(),
		"account_id": change.AccountID.String(),
		"is_active":  change.IsActive,
	})
}
