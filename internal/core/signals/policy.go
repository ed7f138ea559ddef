package signals

import (
	"time"

	"focusguard/internal/core/model"
)

const (
	ExcessiveTimeThreshold        = 60 * time.Minute
	MissingBreakSessionsThreshold = 3
	ProlongedNavigationThreshold  = 10 * time.Minute
	MinAlertInterval              = 15 * time.Minute

	// freshDayAfter clears the alert history at load when the last alert is older.
	freshDayAfter = 24 * time.Hour
)

// Thresholds groups the alert limits. Production code uses DefaultThresholds.
type Thresholds struct {
	ExcessiveTime        time.Duration
	MissingBreakSessions int
	ProlongedNavigation  time.Duration
	MinAlertInterval     time.Duration
}

// DefaultThresholds returns the compiled-in alert limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExcessiveTime:        ExcessiveTimeThreshold,
		MissingBreakSessions: MissingBreakSessionsThreshold,
		ProlongedNavigation:  ProlongedNavigationThreshold,
		MinAlertInterval:     MinAlertInterval,
	}
}

// Conditions describes what the user is doing at evaluation time.
type Conditions struct {
	// ActiveTaskID is the task of the running focus session, if any.
	ActiveTaskID string
}

// ShouldShowAlert is false while the rate limit window since the last alert
// is open or when alert was already shown this session.
func ShouldShowAlert(state State, alert model.AlertType, now time.Time, minInterval time.Duration) bool {
	if !state.LastAlertTime.IsZero() && now.Sub(state.LastAlertTime) < minInterval {
		return false
	}
	return !state.HasShown(alert)
}

// TaskFocusTime returns the committed focus time of a task plus the running
// window when it is being tracked.
func TaskFocusTime(state State, taskID string, now time.Time) time.Duration {
	focus, ok := state.TaskFocusTimes[taskID]
	if !ok {
		return 0
	}
	if focus.Accumulating() {
		if elapsed := now.Sub(focus.Start); elapsed > 0 {
			return focus.Total + elapsed
		}
	}
	return focus.Total
}

// NavigationTime returns how long the user has been navigating without acting.
func NavigationTime(state State, now time.Time) time.Duration {
	if !state.Navigating() {
		return 0
	}
	if elapsed := now.Sub(state.NavigationStartTime); elapsed > 0 {
		return elapsed
	}
	return 0
}

// Eligible reports whether the raw condition for alert holds, ignoring
// deduplication and rate limiting.
func Eligible(state State, alert model.AlertType, conditions Conditions, now time.Time, thresholds Thresholds) bool {
	switch alert {
	case model.AlertExcessiveTime:
		if conditions.ActiveTaskID == "" {
			return false
		}
		return TaskFocusTime(state, conditions.ActiveTaskID, now) >= thresholds.ExcessiveTime
	case model.AlertMissingBreak:
		return thresholds.MissingBreakSessions > 0 && state.ConsecutiveSessions >= thresholds.MissingBreakSessions
	case model.AlertProlongedNavigation:
		if conditions.ActiveTaskID != "" {
			return false
		}
		return NavigationTime(state, now) >= thresholds.ProlongedNavigation
	}
	return false
}

// Evaluate returns the highest priority alert that is both eligible and
// permitted by ShouldShowAlert. An alert already shown this session yields to
// the next eligible one.
func Evaluate(state State, conditions Conditions, now time.Time, thresholds Thresholds) (model.AlertType, bool) {
	for _, alert := range model.AlertPriority {
		if !Eligible(state, alert, conditions, now, thresholds) {
			continue
		}
		if ShouldShowAlert(state, alert, now, thresholds.MinAlertInterval) {
			return alert, true
		}
	}
	return "", false
}
