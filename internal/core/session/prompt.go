package session

import (
	"time"

	"focusguard/internal/core/model"
)

// PromptKind identifies which session-complete prompt is open.
type PromptKind string

const (
	PromptFocusComplete PromptKind = "focus_complete"
	PromptBreakComplete PromptKind = "break_complete"
)

// ActionID names a prompt decision.
type ActionID string

const (
	ActionStartBreak    ActionID = "start_break"
	ActionContinueFocus ActionID = "continue_focus"
	ActionFinishTask    ActionID = "finish_task"
	ActionStartFocus    ActionID = "start_focus"
	ActionEndFocus      ActionID = "end_focus"
)

// Label returns the button text for an action.
func (action ActionID) Label() string {
	switch action {
	case ActionStartBreak:
		return "Start break"
	case ActionContinueFocus:
		return "Keep focusing"
	case ActionFinishTask:
		return "Finish task"
	case ActionStartFocus:
		return "Start new focus"
	case ActionEndFocus:
		return "End focus"
	}
	return string(action)
}

// Prompt is a forced-choice dialog. It closes only through one of Actions.
type Prompt struct {
	Kind    PromptKind
	TaskID  string
	Task    model.Task
	HasTask bool
	Actions []ActionID
	// PreventClose tells the renderer to ignore escape and outside clicks.
	PreventClose bool
	Session      uint64
}

// Offers reports whether action is one of the prompt choices.
func (prompt Prompt) Offers(action ActionID) bool {
	for _, offered := range prompt.Actions {
		if offered == action {
			return true
		}
	}
	return false
}

// Title returns the heading for the prompt.
func (prompt Prompt) Title() string {
	if prompt.Kind == PromptBreakComplete {
		return "Break is over"
	}
	return "Focus session complete"
}

// Alert describes a visible advisory banner.
type Alert struct {
	Type           model.AlertType
	TaskID         string
	FocusTime      time.Duration
	NavigationTime time.Duration
	Sessions       int
	ShownAt        time.Time
}

// Message returns a short, plain-language banner text.
func (alert Alert) Message() string {
	switch alert.Type {
	case model.AlertExcessiveTime:
		return "You have been on this task for a long time. A short break can help."
	case model.AlertMissingBreak:
		return "Several focus sessions in a row without a break. Consider resting."
	case model.AlertProlongedNavigation:
		return "Looking for something to do? Pick one small task to start."
	}
	return ""
}

// Presenter renders prompts and banners. Calls may arrive from any goroutine.
type Presenter interface {
	ShowPrompt(prompt Prompt)
	HidePrompt()
	ShowAlert(alert Alert)
	HideAlert()
}

type nopPresenter struct{}

func (nopPresenter) ShowPrompt(Prompt) {}
func (nopPresenter) HidePrompt()       {}
func (nopPresenter) ShowAlert(Alert)   {}
func (nopPresenter) HideAlert()        {}
