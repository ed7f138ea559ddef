package signals

import (
	"time"

	"focusguard/internal/core/model"
)

// Action is one of the named state transitions. Each action carries the time
// it happened at so Reduce stays free of clock reads.
type Action interface {
	Name() string
	isAction()
}

// ShowAlert adds Type to the history and stamps the last alert time.
type ShowAlert struct {
	Type model.AlertType
	At   time.Time
}

// DismissAlert removes Type from the history.
type DismissAlert struct {
	Type model.AlertType
}

// IncrementSessions counts a completed focus session.
type IncrementSessions struct{}

// ResetSessions zeroes the consecutive session count.
type ResetSessions struct{}

// StartNavigation begins idle navigation. It is a no-op while navigating.
type StartNavigation struct {
	At time.Time
}

// StopNavigation ends idle navigation.
type StopNavigation struct{}

// StartTaskFocus opens a focus window. It is a no-op while one is open.
type StartTaskFocus struct {
	TaskID string
	At     time.Time
}

// StopTaskFocus adds the open window to the task total.
type StopTaskFocus struct {
	TaskID string
	At     time.Time
}

// UpdateUserAction records activity and ends idle navigation.
type UpdateUserAction struct {
	At time.Time
}

// ResetSession clears the alert history at an explicit session boundary.
type ResetSession struct{}

func (ShowAlert) Name() string         { return "show_alert" }
func (DismissAlert) Name() string      { return "dismiss_alert" }
func (IncrementSessions) Name() string { return "increment_sessions" }
func (ResetSessions) Name() string     { return "reset_sessions" }
func (StartNavigation) Name() string   { return "start_navigation" }
func (StopNavigation) Name() string    { return "stop_navigation" }
func (StartTaskFocus) Name() string    { return "start_task_focus" }
func (StopTaskFocus) Name() string     { return "stop_task_focus" }
func (UpdateUserAction) Name() string  { return "update_user_action" }
func (ResetSession) Name() string      { return "reset_session" }

func (ShowAlert) isAction()         {}
func (DismissAlert) isAction()      {}
func (IncrementSessions) isAction() {}
func (ResetSessions) isAction()     {}
func (StartNavigation) isAction()   {}
func (StopNavigation) isAction()    {}
func (StartTaskFocus) isAction()    {}
func (StopTaskFocus) isAction()     {}
func (UpdateUserAction) isAction()  {}
func (ResetSession) isAction()      {}

// Reduce applies action to state and returns the resulting state. The input
// state is never modified.
func Reduce(state State, action Action) State {
	next := state.clone()

	switch action := action.(type) {
	case ShowAlert:
		if !next.HasShown(action.Type) {
			next.AlertHistory = append(next.AlertHistory, action.Type)
		}
		next.LastAlertTime = action.At
	case DismissAlert:
		filtered := next.AlertHistory[:0]
		for _, shown := range next.AlertHistory {
			if shown != action.Type {
				filtered = append(filtered, shown)
			}
		}
		next.AlertHistory = filtered
	case IncrementSessions:
		next.ConsecutiveSessions++
	case ResetSessions:
		next.ConsecutiveSessions = 0
	case StartNavigation:
		if next.NavigationStartTime.IsZero() {
			next.NavigationStartTime = action.At
		}
	case StopNavigation:
		next.NavigationStartTime = time.Time{}
	case StartTaskFocus:
		if action.TaskID == "" {
			return state
		}
		focus := next.TaskFocusTimes[action.TaskID]
		if focus.Accumulating() {
			return state
		}
		focus.Start = action.At
		next.TaskFocusTimes[action.TaskID] = focus
	case StopTaskFocus:
		focus, ok := next.TaskFocusTimes[action.TaskID]
		if !ok || !focus.Accumulating() {
			return state
		}
		if elapsed := action.At.Sub(focus.Start); elapsed > 0 {
			focus.Total += elapsed
		}
		focus.Start = time.Time{}
		next.TaskFocusTimes[action.TaskID] = focus
	case UpdateUserAction:
		next.LastUserAction = action.At
		next.NavigationStartTime = time.Time{}
	case ResetSession:
		next.AlertHistory = []model.AlertType{}
		next.LastAlertTime = time.Time{}
	default:
		return state
	}

	return next
}
