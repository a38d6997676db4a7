package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// readyPollInterval is the initial spacing between readiness rounds.
const readyPollInterval = 250 * time.Millisecond

// readyPollCap bounds the spacing between readiness rounds.
const readyPollCap = 5 * time.Second

// ErrNotReady is returned by a readiness round in which no provider
// answered the health probe.
var ErrNotReady = errors.New("no provider ready")

// WaitReady polls the configured providers with the health probe method
// until one of them answers, and returns that provider's name. Rounds are
// spaced with exponential backoff. It blocks until a provider is ready or
// the context is done, so callers bound it with a deadline.
func (c *Client) WaitReady(ctx context.Context) (string, error) {
	if len(c.gov.Providers()) == 0 {
		return "", ErrNoProviders
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = readyPollInterval
	b.MaxInterval = readyPollCap

	round := func() (string, error) {
		for _, name := range c.gov.Providers() {
			if _, err := c.CallProvider(ctx, name, MethodGetHealth, nil); err == nil {
				return name, nil
			}
			if ctx.Err() != nil {
				return "", backoff.Permanent(ctx.Err())
			}
		}
		return "", ErrNotReady
	}

	notify := func(err error, next time.Duration) {
		c.logger.Debug("providers not ready, waiting",
			"error", err.Error(),
			"next_attempt_in", next,
		)
	}

	return backoff.Retry(ctx, round, backoff.WithBackOff(b), backoff.WithNotify(notify))
}
