package propagation

import (
	"context"
	"fmt"

	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
)

// Inline delivers within the caller's request with a single attempt. Failures
// are logged and counted, then reported in the Result.
type Inline struct {
	sender  statusSender
	logg    *logger.Logger
	metrics *metrics.PropagationMetrics
}

// NewInline builds a synchronous notifier.
func NewInline(sender statusSender, logg *logger.Logger, rec *metrics.PropagationMetrics) (*Inline, error) {
	if sender == nil {
		return nil, fmt.Errorf("status sender is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Inline{sender: sender, logg: logg, metrics: rec}, nil
}

func (n *Inline) Notify(ctx context.Context, change StatusChange) Result {
	result := Result{EventID: change.EventID, Attempts: 1}
	ctx = changeFields(ctx, n.logg, change)

	if err := attempt(ctx, n.sender, n.metrics, change); err != nil {
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		n.metrics.IncOutcome(string(OutcomeFailed))
		n.logg.Error(ctx, "propagation.failed", err)
		return result
	}

	result.Outcome = OutcomeDelivered
	n.metrics.IncOutcome(string(OutcomeDelivered))
	n.logg.Info(ctx, "propagation.delivered")
	return result
}
