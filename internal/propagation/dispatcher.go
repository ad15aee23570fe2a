package propagation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/listingz-backend/pkg/config"
	"github.com/angelmondragon/listingz-backend/pkg/logger"
	"github.com/angelmondragon/listingz-backend/pkg/metrics"
)

// DispatcherParams bundles the dependencies required to build a Dispatcher.
type DispatcherParams struct {
	Sender  statusSender
	Logger  *logger.Logger
	Metrics *metrics.PropagationMetrics
	Config  config.PropagationConfig
}

// Dispatcher queues status changes in memory and delivers them from a single
// worker with exponential backoff. The queue does not survive a restart.
type Dispatcher struct {
	sender      statusSender
	logg        *logger.Logger
	metrics     *metrics.PropagationMetrics
	queue       chan StatusChange
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	sleep       func(context.Context, time.Duration) error

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	running sync.Once
}

// NewDispatcher validates the params and allocates the queue. Call Run to start delivering.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Sender == nil {
		return nil, errors.New("status sender is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	cfg := params.Config
	if cfg.QueueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive")
	}
	base := cfg.BaseBackoff
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff < base {
		maxBackoff = base
	}
	return &Dispatcher{
		sender:      params.Sender,
		logg:        logg,
		metrics:     params.Metrics,
		queue:       make(chan StatusChange, cfg.QueueSize),
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: base,
		maxBackoff:  maxBackoff,
		sleep:       sleepCtx,
		done:        make(chan struct{}),
	}, nil
}

// Notify enqueues the change without blocking. A full or stopped queue drops it.
func (d *Dispatcher) Notify(ctx context.Context, change StatusChange) Result {
	result := Result{EventID: change.EventID}
	ctx = changeFields(ctx, d.logg, change)

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return d.drop(ctx, result, "dispatcher stopped")
	}

	select {
	case d.queue <- change:
		result.Outcome = OutcomeQueued
		d.metrics.IncOutcome(string(OutcomeQueued))
		d.metrics.SetQueueDepth(len(d.queue))
		d.logg.Debug(ctx, "propagation.queued")
		return result
	default:
		return d.drop(ctx, result, "dispatcher queue full")
	}
}

func (d *Dispatcher) drop(ctx context.Context, result Result, reason string) Result {
	result.Outcome = OutcomeDropped
	result.Error = reason
	d.metrics.IncOutcome(string(OutcomeDropped))
	d.logg.Warn(d.logg.WithField(ctx, "reason", reason), "propagation.dropped")
	return result
}

// Run delivers queued changes until ctx is cancelled. Changes still queued at
// that point are logged and counted as abandoned.
func (d *Dispatcher) Run(ctx context.Context) error {
	started := false
	d.running.Do(func() { started = true })
	if !started {
		return errors.New("dispatcher already running")
	}
	defer close(d.done)

	for {
		select {
		case <-ctx.Done():
			d.shutdown(ctx)
			return nil
		case change := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.deliver(ctx, change)
		}
	}
}

// Done is closed once Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) shutdown(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	pending := len(d.queue)
	for i := 0; i < pending; i++ {
		change := <-d.queue
		d.metrics.IncAbandoned()
		d.logg.Warn(changeFields(context.WithoutCancel(ctx), d.logg, change), "propagation.abandoned_on_shutdown")
	}
	d.metrics.SetQueueDepth(0)
}

func (d *Dispatcher) deliver(ctx context.Context, change StatusChange) {
	ctx = changeFields(ctx, d.logg, change)
	backoff := time.Duration(0)

	for i := 1; i <= d.maxAttempts; i++ {
		err := attempt(ctx, d.sender, d.metrics, change)
		if err == nil {
			d.metrics.IncOutcome(string(OutcomeDelivered))
			d.logg.Info(d.logg.WithField(ctx, "attempts", i), "propagation.delivered")
			return
		}

		attemptCtx := d.logg.WithField(ctx, "attempt", i)
		if permanent(err) || i == d.maxAttempts {
			d.metrics.IncOutcome(string(OutcomeFailed))
			d.metrics.IncAbandoned()
			d.logg.Error(attemptCtx, "propagation.abandoned", err)
			return
		}
		d.logg.Warn(d.logg.WithField(attemptCtx, "error", err.Error()), "propagation.retrying")

		backoff = nextBackoff(backoff, d.baseBackoff, d.maxBackoff)
		if err := d.sleep(ctx, withJitter(backoff)); err != nil {
			// Shutting down mid-retry; the change is lost with the queue.
			d.metrics.IncAbandoned()
			d.logg.Warn(context.WithoutCancel(attemptCtx), "propagation.abandoned_on_shutdown")
			return
		}
	}
}
