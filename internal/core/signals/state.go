// Package signals tracks behavioural signals (focus time, idle navigation,
// skipped breaks) and decides when a cognitive alert may be shown.
package signals

import (
	"time"

	"focusguard/internal/core/model"
)

// TaskFocus accumulates focus time for a single task.
// Start is non-zero while time is being accumulated.
type TaskFocus struct {
	Start time.Time
	Total time.Duration
}

// Accumulating reports whether the task is currently being tracked.
func (focus TaskFocus) Accumulating() bool {
	return !focus.Start.IsZero()
}

// State is the immutable signal snapshot. Values are replaced, never mutated,
// by Reduce.
type State struct {
	AlertHistory        []model.AlertType
	LastAlertTime       time.Time
	ConsecutiveSessions int
	NavigationStartTime time.Time
	TaskFocusTimes      map[string]TaskFocus
	LastUserAction      time.Time
}

// NewState returns a freshly initialised state.
func NewState() State {
	return State{
		AlertHistory:   []model.AlertType{},
		TaskFocusTimes: map[string]TaskFocus{},
	}
}

// HasShown reports whether alert is already in the history.
func (state State) HasShown(alert model.AlertType) bool {
	for _, shown := range state.AlertHistory {
		if shown == alert {
			return true
		}
	}
	return false
}

// Navigating reports whether idle-navigation tracking is active.
func (state State) Navigating() bool {
	return !state.NavigationStartTime.IsZero()
}

func (state State) clone() State {
	next := state
	next.AlertHistory = append([]model.AlertType{}, state.AlertHistory...)
	next.TaskFocusTimes = make(map[string]TaskFocus, len(state.TaskFocusTimes))
	for id, focus := range state.TaskFocusTimes {
		next.TaskFocusTimes[id] = focus
	}
	return next
}
