package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"helios-hq/sluice/pkg/config"
	"helios-hq/sluice/pkg/governor"
	"helios-hq/sluice/pkg/telemetry/logging"
)

// DefaultMaxAttempts bounds admissions plus dispatches per CallProvider
// when the provider configuration does not set max_retries.
const DefaultMaxAttempts = 3

// DefaultTimeout bounds a single HTTP exchange when the provider
// configuration does not set one.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response body is carried in
// error messages.
const maxErrorBody = 512

// Client is the governed JSON-RPC client. Every call passes through the
// governor: admission before the request goes out, outcome recording
// after the exchange, response caching for cache-eligible calls.
type Client struct {
	mu  sync.RWMutex
	cfg *config.Config

	gov     *governor.Governor
	httpc   *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the HTTP client used for dispatch.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a governed client over a loaded configuration and
// its governor.
func NewClient(cfg *config.Config, gov *governor.Governor, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		gov: gov,
		httpc: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With("component", "rpc")
	return c
}

// Call tries each configured provider in name order until one returns a
// result. Providers whose admission is denied or whose endpoints all
// fail are skipped with their errors collected.
func (c *Client) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	providers := c.gov.Providers()
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, name := range providers {
		result, err := c.CallProvider(ctx, name, method, params)
		if err == nil {
			return result, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

// CallProvider issues a governed JSON-RPC call to one provider. Rate
// limit denials wait NextRetryDelay and retry within the attempt budget;
// an open circuit fails fast so the caller can rotate providers. Each
// admitted dispatch walks the provider's endpoints in order.
func (c *Client) CallProvider(ctx context.Context, provider, method string, params any) (json.RawMessage, error) {
	p, _ := c.provider(provider)

	attempts := DefaultMaxAttempts
	if p.MaxRetries > 0 {
		attempts = p.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		decision := c.gov.Admit(ctx, provider, method, params)
		if decision.CacheHit() {
			c.metrics.RecordRequest(provider, "cached")
			return json.RawMessage(decision.Cached), nil
		}
		if decision.Denied() {
			if decision.Reason == governor.ReasonCircuitOpen {
				// An open breaker will not close within this retry budget.
				c.metrics.RecordRequest(provider, "denied")
				return nil, &DeniedError{Provider: provider, Reason: decision.Reason}
			}
			lastErr = &DeniedError{Provider: provider, Reason: decision.Reason}
			if err := sleep(ctx, c.gov.NextRetryDelay(provider, attempt)); err != nil {
				return nil, err
			}
			continue
		}

		result, err := c.exchange(ctx, provider, p, method, params)
		if err == nil {
			c.metrics.RecordRequest(provider, "success")
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		if attempt < attempts {
			c.metrics.RecordRetry(provider)
			if err := sleep(ctx, c.gov.NextRetryDelay(provider, attempt)); err != nil {
				return nil, err
			}
		}
	}

	c.metrics.RecordRequest(provider, resultLabel(lastErr))
	return nil, lastErr
}

// exchange performs one admitted dispatch, walking the provider's
// endpoints in order and feeding the outcome back to the governor.
func (c *Client) exchange(ctx context.Context, provider string, p config.ProviderConfig, method string, params any) (json.RawMessage, error) {
	req := NewRequest(method, params)
	ctx = logging.WithRequestID(ctx, req.ID)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoints := append([]string{p.URL}, p.FallbackURLs...)
	var lastErr error
	for i, endpoint := range endpoints {
		result, err := c.post(ctx, provider, p, endpoint, body)
		if err == nil {
			c.gov.RecordOutcome(ctx, provider, governor.Success())
			c.gov.CacheResponse(ctx, provider, method, params, result)
			return result, nil
		}
		lastErr = err

		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			// The provider answered; the request itself was rejected.
			// Rotating endpoints will not change that.
			c.gov.RecordOutcome(ctx, provider, governor.Success())
			return nil, err
		}

		// Caller cancellation is not a provider outcome.
		if ctx.Err() != nil {
			return nil, err
		}

		c.gov.RecordOutcome(ctx, provider, governor.Failure(statusOf(err)))
		if i+1 < len(endpoints) {
			c.logger.WarnContext(ctx, "endpoint failed, trying fallback",
				"provider", provider,
				"url", endpoint,
				"error", err.Error(),
			)
		}
	}
	return nil, lastErr
}

// post sends the serialized envelope to one endpoint and maps the
// response onto the error taxonomy.
func (c *Client) post(ctx context.Context, provider string, p config.ProviderConfig, endpoint string, body []byte) (json.RawMessage, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: "invalid endpoint", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	c.metrics.ObserveRequestDuration(provider, time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Provider: provider, Timeout: timeout}
		}
		return nil, &ProviderError{Provider: provider, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: "read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Message:    truncate(string(respBody), maxErrorBody),
		}
	}

	var envelope Response
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, &ProviderError{Provider: provider, Message: "malformed response", Cause: err}
	}
	if envelope.Error != nil {
		return nil, &RPCError{
			Provider: provider,
			Code:     envelope.Error.Code,
			Message:  envelope.Error.Message,
		}
	}
	return envelope.Result, nil
}

// ApplyConfig swaps in a new configuration. The governor is re-seeded
// separately by its own ApplyConfig.
func (c *Client) ApplyConfig(cfg *config.Config) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
}

// Governor returns the governor this client dispatches through.
func (c *Client) Governor() *governor.Governor {
	return c.gov
}

func (c *Client) provider(name string) (config.ProviderConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Provider(name)
}

// retryable reports whether another attempt could produce a different
// result. JSON-RPC level rejections and client errors other than 429
// are terminal.
func retryable(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return false
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == 0:
			return true
		case pe.StatusCode == http.StatusTooManyRequests:
			return true
		case pe.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	var te *TimeoutError
	return errors.As(err, &te)
}

// statusOf maps an exchange error onto the status code fed back to the
// governor. Timeouts and transport failures carry no HTTP status.
func statusOf(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return governor.StatusTransport
}

func resultLabel(err error) string {
	var de *DeniedError
	if errors.As(err, &de) {
		return "denied"
	}
	return "error"
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
