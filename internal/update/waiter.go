package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adamancini/autoupdater/internal/types"
)

// DefaultPollInterval is how often ProcessWaiter re-checks a live process.
const DefaultPollInterval = 250 * time.Millisecond

// ProcessWaiter blocks until an OS process has exited.
type ProcessWaiter struct {
	logger       *zap.Logger
	pollInterval time.Duration
	alive        func(pid int) bool
}

// NewProcessWaiter creates a waiter that polls at DefaultPollInterval.
func NewProcessWaiter(logger *zap.Logger) *ProcessWaiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessWaiter{
		logger:       logger,
		pollInterval: DefaultPollInterval,
		alive:        pidAlive,
	}
}

// WithPollInterval overrides the liveness polling interval.
func (w *ProcessWaiter) WithPollInterval(d time.Duration) *ProcessWaiter {
	if d > 0 {
		w.pollInterval = d
	}
	return w
}

// Wait returns once pid is no longer running. A pid of 0, or one that does
// not exist, returns immediately. The wait ends early with an error only if
// ctx is done; a deadline on ctx surfaces as ErrWaitTimeout.
func (w *ProcessWaiter) Wait(ctx context.Context, pid int) error {
	if pid == 0 {
		return nil
	}
	if pid < 0 {
		return &ConfigError{Err: fmt.Errorf("%w: %d", ErrInvalidPID, pid)}
	}
	if !w.alive(pid) {
		w.logger.Debug("process not running, nothing to wait for", zap.Int("pid", pid))
		return nil
	}

	w.logger.Info("waiting for process to exit",
		zap.Int("pid", pid),
		zap.String("name", processName(pid)),
	)
	start := time.Now()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				err = fmt.Errorf("%w (pid %d)", ErrWaitTimeout, pid)
			}
			return stepErr(types.StepWait, "", err)
		case <-ticker.C:
			if !w.alive(pid) {
				w.logger.Info("process exited",
					zap.Int("pid", pid),
					zap.Duration("waited", time.Since(start)),
				)
				return nil
			}
		}
	}
}
