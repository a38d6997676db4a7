package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Health statuses as they appear in endpoint responses.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// defaultCheckTimeout bounds a single component check.
const defaultCheckTimeout = 5 * time.Second

// CheckFunc probes one component. A nil return means healthy; an error
// carries the reason the component is not.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one component check.
type CheckResult struct {
	// Status is "ok" or "unhealthy".
	Status string `json:"status"`

	// Message carries the failure reason for unhealthy components.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// Status aggregates the component checks into the daemon's overall
// health. Liveness reports "ok"; readiness reports "ready" or
// "degraded" plus the per-component breakdown.
type Status struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Checker runs named component checks for the readiness probe.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a Checker. A zero timeout selects the default per-check
// timeout of five seconds.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout == 0 {
		checkTimeout = defaultCheckTimeout
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: checkTimeout,
	}
}

// RegisterCheck adds a component check under the given name, replacing
// any previous check with that name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// ListChecks returns the registered check names, sorted.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is alive. It never runs
// component checks, so it stays fast enough for tight probe intervals.
func (c *Checker) CheckLiveness(ctx context.Context) Status {
	return Status{Status: StatusOK, Timestamp: time.Now()}
}

// CheckReadiness runs every registered check concurrently and folds the
// results into one Status. Any failing component degrades the overall
// status; with nothing registered the daemon counts as ready.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := Status{
		Status:    StatusReady,
		Checks:    make(map[string]CheckResult, len(checks)),
		Timestamp: time.Now(),
	}
	if len(checks) == 0 {
		return status
	}

	type namedResult struct {
		name   string
		result CheckResult
	}

	resultCh := make(chan namedResult, len(checks))
	for name, check := range checks {
		go func(name string, check CheckFunc) {
			resultCh <- namedResult{name: name, result: c.runCheck(ctx, check)}
		}(name, check)
	}

	for range checks {
		r := <-resultCh
		status.Checks[r.name] = r.result
		if r.result.Status == StatusUnhealthy {
			status.Status = StatusDegraded
		}
	}
	return status
}

// runCheck executes one check under the per-check timeout. The check
// runs in its own goroutine so a stuck component cannot hold up the
// probe response past the deadline.
func (c *Checker) runCheck(ctx context.Context, check CheckFunc) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- check(checkCtx)
	}()

	var result CheckResult
	select {
	case err := <-errCh:
		result.Status = StatusOK
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
	case <-checkCtx.Done():
		result.Status = StatusUnhealthy
		result.Message = "health check timeout"
	}
	result.Duration = time.Since(start)
	return result
}
