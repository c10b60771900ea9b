// Package auth integrates the external role-gate service. The gate is
// consulted per request with the caller's bearer token and the role set
// the endpoint permits.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/cinedex-cloud/cinedex/internal/domain"
)

// RoleGuest marks an endpoint as open: the gate is skipped entirely.
const RoleGuest = "guest"

// Config holds the gate endpoint and its retry budget.
type Config struct {
	URL             string
	RequestTimeout  time.Duration
	InitialInterval time.Duration
	Multiplier      float64
	MaxElapsedTime  time.Duration
}

// ApplyDefaults fills zero fields with conservative defaults.
func (c *Config) ApplyDefaults() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 3 * time.Second
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = 100 * time.Millisecond
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.MaxElapsedTime <= 0 {
		c.MaxElapsedTime = 5 * time.Second
	}
}

// Gate checks a caller's credential against the external authorization
// service with bounded retry on connectivity failures.
type Gate struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewGate creates a gate client. An empty URL disables the gate: every
// request is allowed.
func NewGate(cfg Config, logger *zap.Logger) *Gate {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

type checkRequest struct {
	Roles []string `json:"roles"`
}

// Allow returns nil when the credential grants one of the permitted roles.
// A role set containing "guest" bypasses the gate. 401 maps to
// ErrAuthenticationRequired, 403 to ErrForbidden, and an unreachable gate
// to ErrServiceUnavailable after the retry budget runs out.
func (g *Gate) Allow(ctx context.Context, token string, roles []string) error {
	if g.cfg.URL == "" || slices.Contains(roles, RoleGuest) {
		return nil
	}
	if token == "" {
		return fmt.Errorf("%w: missing credential", domain.ErrAuthenticationRequired)
	}

	body, err := json.Marshal(checkRequest{Roles: roles})
	if err != nil {
		return fmt.Errorf("encode role check: %w", err)
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, g.check(ctx, token, body)
	},
		backoff.WithBackOff(&backoff.ExponentialBackOff{
			InitialInterval:     g.cfg.InitialInterval,
			RandomizationFactor: backoff.DefaultRandomizationFactor,
			Multiplier:          g.cfg.Multiplier,
			MaxInterval:         2 * time.Second,
		}),
		backoff.WithMaxElapsedTime(g.cfg.MaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			g.logger.Warn("retrying auth gate",
				zap.Duration("next_attempt_in", next), zap.Error(err))
		}),
	)
	if err == nil {
		return nil
	}
	// Permanent outcomes come back as-is; anything left is connectivity.
	switch {
	case isDomainAuthErr(err):
		return err
	default:
		return fmt.Errorf("%w: auth gate: %s", domain.ErrServiceUnavailable, err)
	}
}

// check performs one gate round trip. Status outcomes are permanent;
// transport failures are left retryable.
func (g *Gate) check(ctx context.Context, token string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build auth request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth gate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return backoff.Permanent(domain.ErrAuthenticationRequired)
	case resp.StatusCode == http.StatusForbidden:
		return backoff.Permanent(domain.ErrForbidden)
	default:
		return backoff.Permanent(fmt.Errorf("auth gate returned status %d", resp.StatusCode))
	}
}

func isDomainAuthErr(err error) bool {
	return errors.Is(err, domain.ErrAuthenticationRequired) || errors.Is(err, domain.ErrForbidden)
}
