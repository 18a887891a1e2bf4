package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker monitors a dependency by calling its HealthPing periodically.
type PingChecker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker creates a checker for target, reported under name.
func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	pc := &PingChecker{
		name:         name,
		target:       target,
		log:          log,
		probeTimeout: probeTimeout,
	}
	pc.healthy.Store(0) // start unhealthy until first successful probe
	return pc
}

// Name returns the checker name.
func (pc *PingChecker) Name() string { return pc.name }

// IsHealthy returns the cached health status (non-blocking).
func (pc *PingChecker) IsHealthy() bool { return pc.healthy.Load() == 1 }

// Start begins periodic health checking.
func (pc *PingChecker) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pc.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pc.Check(ctx)
		}
	}
}

// Check runs a single probe and updates the cached status.
func (pc *PingChecker) Check(ctx context.Context) {
	to := pc.probeTimeout
	if to <= 0 {
		to = 2 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	if err := pc.target.HealthPing(checkCtx); err != nil {
		pc.log.Error().Stack().
			Str("checker", pc.name).
			Err(err).
			Msg("health check failed")
		pc.healthy.Store(0)
		return
	}
	pc.healthy.Store(1)
}
