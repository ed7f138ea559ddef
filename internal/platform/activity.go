package platform

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultAwayThreshold = 5 * time.Minute
	DefaultPollInterval  = 30 * time.Second
)

// ActivityCallbacks receive away/return transitions.
type ActivityCallbacks struct {
	OnAway   func()
	OnReturn func()
}

// ActivityMonitor polls an IdleProvider and reports when the user leaves
// the machine and when they come back.
type ActivityMonitor struct {
	provider  IdleProvider
	threshold time.Duration
	interval  time.Duration
	callbacks ActivityCallbacks
	logger    *slog.Logger
	away      bool
}

// NewActivityMonitor creates a monitor. Zero durations use the defaults.
func NewActivityMonitor(provider IdleProvider, threshold, interval time.Duration, callbacks ActivityCallbacks, logger *slog.Logger) *ActivityMonitor {
	if threshold <= 0 {
		threshold = DefaultAwayThreshold
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityMonitor{
		provider:  provider,
		threshold: threshold,
		interval:  interval,
		callbacks: callbacks,
		logger:    logger.With("component", "activity"),
	}
}

// Run polls until ctx is done. It returns early when the platform cannot
// report idle time.
func (monitor *ActivityMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(monitor.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := monitor.Poll(); errors.Is(err, ErrIdleUnsupported) {
				monitor.logger.Info("idle detection unavailable")
				return
			}
		}
	}
}

// Poll reads the idle duration once and fires a callback on transitions.
func (monitor *ActivityMonitor) Poll() error {
	idle, err := monitor.provider.IdleDuration()
	if err != nil {
		if !errors.Is(err, ErrIdleUnsupported) {
			monitor.logger.Warn("read idle duration", "error", err)
		}
		return err
	}
	switch {
	case !monitor.away && idle >= monitor.threshold:
		monitor.away = true
		if monitor.callbacks.OnAway != nil {
			monitor.callbacks.OnAway()
		}
	case monitor.away && idle < monitor.threshold:
		monitor.away = false
		if monitor.callbacks.OnReturn != nil {
			monitor.callbacks.OnReturn()
		}
	}
	return nil
}
