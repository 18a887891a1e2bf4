package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tracknfresh/tracknfresh-web/internal/metrics"
)

// defaultInterval replaces non-positive probe intervals.
const defaultInterval = 30 * time.Second

// HealthChecker is implemented by component-level checkers (food service, identity provider).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds the dependency checkers into the snapshot served
// by /healthz. Each dependency's transitions are logged and exported as a gauge.
type ServiceHealthChecker struct {
	deps []HealthChecker
	log  zerolog.Logger

	mu      sync.RWMutex
	evalled bool
	up      bool
	since   time.Time
	status  map[string]bool
}

// NewServiceHealthChecker starts out down until the first evaluation sees every dependency up.
func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{
		deps:   deps,
		log:    log,
		status: make(map[string]bool, len(deps)),
	}
}

// IsHealthy reports the aggregate from the last evaluation.
func (h *ServiceHealthChecker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.up
}

// Since is when the aggregate last changed. Zero before the first evaluation.
func (h *ServiceHealthChecker) Since() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.since
}

// Components reports each dependency as of the last evaluation.
func (h *ServiceHealthChecker) Components() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]bool, len(h.status))
	for name, ok := range h.status {
		out[name] = ok
	}
	return out
}

// Evaluate samples every dependency once and records what changed.
func (h *ServiceHealthChecker) Evaluate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	all := true
	var down []string
	for _, c := range h.deps {
		name, ok := c.Name(), c.IsHealthy()
		metrics.SetDependencyUp(name, ok)
		if !ok {
			all = false
			down = append(down, name)
		}
		prev, seen := h.status[name]
		h.status[name] = ok
		switch {
		case seen && prev == ok:
		case ok:
			h.log.Info().Str("dependency", name).Msg("dependency reachable")
		default:
			h.log.Warn().Str("dependency", name).Msg("dependency unreachable")
		}
	}

	if h.evalled && all == h.up {
		return
	}
	h.evalled = true
	h.up = all
	h.since = now
	if all {
		h.log.Info().Msg("all dependencies reachable")
		return
	}
	sort.Strings(down)
	h.log.Error().Strs("down", down).Msg("pages backed by unreachable dependencies will show error views")
}

// Start evaluates immediately, then on every tick until ctx is done.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Evaluate()
		}
	}
}
