package propagation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/listingz-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
)

const (
	// OwnerStatusPath is the listings endpoint that applies owner status.
	OwnerStatusPath = "/internal/v1/products/owner-status"

	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderServiceToken   = "X-Service-Token"

	maxDrainBytes = 64 << 10
)

// ResponseError captures a non-2xx reply from the listings service.
type ResponseError struct {
	StatusCode int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("listings service responded %d", e.StatusCode)
}

// Retryable reports whether the same request may succeed later.
func (e *ResponseError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Client posts owner status changes to the listings service.
type Client struct {
	endpoint     string
	serviceToken string
	http         *http.Client
}

// NewClient builds a client for the configured peer. Every request is bounded
// by cfg.Timeout.
func NewClient(cfg config.PropagationConfig, serviceToken string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.PeerURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse peer url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("peer url %q must be absolute", cfg.PeerURL)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("propagation timeout must be positive")
	}
	return &Client{
		endpoint:     base.String() + OwnerStatusPath,
		serviceToken: serviceToken,
		http:         &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// PropagateStatus makes one delivery attempt. Any failure is returned as a
// Dependency error; a non-2xx reply wraps a *ResponseError.
func (c *Client) PropagateStatus(ctx context.Context, change StatusChange) error {
	body, err := json.Marshal(OwnerStatusPayload{UserID: change.AccountID, IsActive: change.IsActive})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode owner status payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build owner status request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderIdempotencyKey, change.EventID.String())
	if c.serviceToken != "" {
		req.Header.Set(HeaderServiceToken, c.serviceToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listings service unreachable")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, &ResponseError{StatusCode: resp.StatusCode}, "listings service rejected owner status").
			WithDetails(map[string]any{"status": resp.StatusCode})
	}
	return nil
}
