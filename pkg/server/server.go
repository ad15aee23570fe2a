package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/listingz-backend/pkg/logger"
)

const defaultShutdownTimeout = 15 * time.Second

// Run serves srv on ln until ctx is cancelled, then drains in-flight requests
// for at most timeout. A nil ln listens on srv.Addr.
func Run(ctx context.Context, logg *logger.Logger, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	if srv == nil {
		return fmt.Errorf("http server is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	if ln == nil {
		var err error
		ln, err = net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logg.Info(logg.WithField(ctx, "addr", ln.Addr().String()), "http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server stopped: %w", err)
	case <-ctx.Done():
	}

	// ctx is already cancelled; shutdown gets its own deadline
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	logg.Info(shutdownCtx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// CloseAll closes every non-nil closer and reports all failures together.
func CloseAll(closers ...io.Closer) error {
	var err error
	for _, c := range closers {
		if c == nil {
			continue
		}
		err = multierr.Append(err, c.Close())
	}
	return err
}
