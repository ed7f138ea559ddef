// Package session watches the focus/break coordinator, opens the
// session-complete prompts and surfaces cognitive alerts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"focusguard/internal/core/model"
	"focusguard/internal/core/signals"
	"focusguard/internal/core/timekeeper"
)

var (
	// ErrNoPrompt indicates an action was chosen while no prompt is open.
	ErrNoPrompt = errors.New("no prompt is open")
	// ErrActionUnavailable indicates the action is not offered by the open prompt.
	ErrActionUnavailable = errors.New("action not available")
)

// TaskSource is the task repository as seen by the controller.
type TaskSource interface {
	GetTask(id string) (model.Task, bool)
	RefreshTask(ctx context.Context, id string) error
	UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus) error
}

// SubtaskCompleter is implemented by task sources that can tick off subtasks.
type SubtaskCompleter interface {
	CompleteSubtask(ctx context.Context, taskID, subtaskID string) error
}

// Timers is the focus/break coordinator.
type Timers interface {
	Snapshot() timekeeper.Snapshot
	StartFocus(taskID string) error
	StartBreak(taskID string) error
	PauseFocus()
	ResumeFocus()
	StopFocus()
	StopBreak()
	StopAll()
}

// Options wires a Controller.
type Options struct {
	Timers    Timers
	Tasks     TaskSource
	Signals   *signals.Store
	Presenter Presenter
	Logger    *slog.Logger
}

// Controller turns timer transitions into prompts, runs prompt decisions
// against the timers, task source and signal store, and keeps at most one
// alert banner visible.
type Controller struct {
	mu        sync.Mutex
	timers    Timers
	tasks     TaskSource
	signals   *signals.Store
	presenter Presenter
	logger    *slog.Logger

	last       timekeeper.Snapshot
	prompt     *Prompt
	prompted   uint64
	cachedTask *model.Task
	alert      *Alert
}

// New creates a Controller. Timers, Tasks and Signals are required.
func New(options Options) *Controller {
	if options.Presenter == nil {
		options.Presenter = nopPresenter{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Controller{
		timers:    options.Timers,
		tasks:     options.Tasks,
		signals:   options.Signals,
		presenter: options.Presenter,
		logger:    options.Logger.With("component", "session"),
		last:      timekeeper.Snapshot{Phase: timekeeper.PhaseIdle},
	}
}

// Run processes coordinator events until ctx is done or events is closed.
// Events only wake the controller; the coordinator snapshot is re-read each
// time so dropped or stale events cannot desynchronise it.
func (controller *Controller) Run(ctx context.Context, events <-chan timekeeper.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			controller.Sync(ctx)
		}
	}
}

// Sync compares the coordinator state with the last one seen and reacts to
// the difference, then re-evaluates alerts.
func (controller *Controller) Sync(ctx context.Context) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.syncLocked(ctx)
}

func (controller *Controller) syncLocked(ctx context.Context) {
	previous := controller.last
	current := controller.timers.Snapshot()
	controller.last = current

	if controller.prompt != nil && controller.prompt.Session != current.Session {
		controller.closePromptLocked()
	}

	controller.trackFocusLocked(previous, current)

	switch {
	case current.Phase == timekeeper.PhaseFocusCompleted && current.TaskID != "" && current.Session != controller.prompted:
		controller.openFocusPromptLocked(ctx, current)
	case current.Phase == timekeeper.PhaseBreakEnded && current.Session != controller.prompted:
		controller.openBreakPromptLocked(current)
	case current.Phase == timekeeper.PhaseIdle && current.TaskID == "":
		if previous.Phase != timekeeper.PhaseIdle || previous.TaskID != "" {
			controller.closePromptLocked()
			controller.cachedTask = nil
			controller.signals.StartNavigation()
		}
	}

	controller.evaluateAlertsLocked(current)
}

func (controller *Controller) trackFocusLocked(previous, current timekeeper.Snapshot) {
	wasFocusing := previous.Phase == timekeeper.PhaseFocusing
	isFocusing := current.Phase == timekeeper.PhaseFocusing
	sameTask := previous.TaskID == current.TaskID

	if wasFocusing && (!isFocusing || !sameTask) {
		controller.signals.StopTaskFocus(previous.TaskID)
	}
	if isFocusing && (!wasFocusing || !sameTask) {
		controller.signals.StopNavigation()
		controller.signals.StartTaskFocus(current.TaskID)
	}
}

func (controller *Controller) openFocusPromptLocked(ctx context.Context, current timekeeper.Snapshot) {
	controller.prompted = current.Session
	task, ok := controller.fetchTaskLocked(ctx, current.TaskID)

	prompt := Prompt{
		Kind:         PromptFocusComplete,
		TaskID:       current.TaskID,
		Actions:      []ActionID{ActionStartBreak, ActionContinueFocus},
		PreventClose: true,
		Session:      current.Session,
	}
	if ok {
		prompt.Task = task
		prompt.HasTask = true
		if !task.HasIncompleteSubtasks() {
			prompt.Actions = append(prompt.Actions, ActionFinishTask)
		}
	}
	controller.showPromptLocked(prompt)
}

func (controller *Controller) openBreakPromptLocked(current timekeeper.Snapshot) {
	controller.prompted = current.Session
	controller.showPromptLocked(Prompt{
		Kind:         PromptBreakComplete,
		TaskID:       current.TaskID,
		Actions:      []ActionID{ActionStartFocus, ActionEndFocus},
		PreventClose: true,
		Session:      current.Session,
	})
}

func (controller *Controller) fetchTaskLocked(ctx context.Context, taskID string) (model.Task, bool) {
	if task, ok := controller.tasks.GetTask(taskID); ok {
		controller.cachedTask = &task
		return task, true
	}
	if err := controller.tasks.RefreshTask(ctx, taskID); err != nil {
		controller.logger.Warn("refresh task failed", "task", taskID, "error", err)
		controller.cachedTask = nil
		return model.Task{}, false
	}
	task, ok := controller.tasks.GetTask(taskID)
	if !ok {
		controller.cachedTask = nil
		return model.Task{}, false
	}
	controller.cachedTask = &task
	return task, true
}

func (controller *Controller) showPromptLocked(prompt Prompt) {
	controller.prompt = &prompt
	controller.logger.Info("session prompt opened", "kind", prompt.Kind, "task", prompt.TaskID, "actions", len(prompt.Actions))
	controller.presenter.ShowPrompt(prompt)
}

func (controller *Controller) closePromptLocked() {
	if controller.prompt == nil {
		return
	}
	controller.prompt = nil
	controller.presenter.HidePrompt()
}

// Prompt returns the open prompt, if any.
func (controller *Controller) Prompt() (Prompt, bool) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.prompt == nil {
		return Prompt{}, false
	}
	return *controller.prompt, true
}

// Choose runs a prompt decision, records it as a user action and closes the
// prompt. Task status failures are logged; the timers still change and the
// prompt still closes. A prompt left over from an earlier session is closed
// instead and ErrNoPrompt is returned.
func (controller *Controller) Choose(ctx context.Context, action ActionID) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.prompt == nil {
		return ErrNoPrompt
	}
	prompt := *controller.prompt
	if controller.timers.Snapshot().Session != prompt.Session {
		controller.syncLocked(ctx)
		return ErrNoPrompt
	}
	if !prompt.Offers(action) {
		return fmt.Errorf("%w: %s", ErrActionUnavailable, action)
	}

	err := controller.applyLocked(ctx, prompt, action)
	controller.signals.UpdateUserAction()
	controller.logger.Info("session prompt decided", "kind", prompt.Kind, "task", prompt.TaskID, "action", action)
	controller.closePromptLocked()
	controller.syncLocked(ctx)
	return err
}

func (controller *Controller) applyLocked(ctx context.Context, prompt Prompt, action ActionID) error {
	taskID := prompt.TaskID
	switch action {
	case ActionStartBreak:
		controller.timers.StopFocus()
		return controller.timers.StartBreak(taskID)
	case ActionContinueFocus:
		if err := controller.timers.StartFocus(taskID); err != nil {
			return err
		}
		controller.signals.IncrementSessions()
	case ActionFinishTask:
		controller.updateStatusLocked(ctx, taskID, model.TaskStatusDone)
		controller.timers.StopFocus()
		controller.signals.ResetSessions()
	case ActionStartFocus:
		controller.timers.StopBreak()
		if err := controller.timers.StartFocus(taskID); err != nil {
			return err
		}
		controller.signals.ResetSessions()
	case ActionEndFocus:
		controller.updateStatusLocked(ctx, taskID, model.TaskStatusTodo)
		controller.timers.StopAll()
		controller.signals.ResetSessions()
	}
	return nil
}

func (controller *Controller) updateStatusLocked(ctx context.Context, taskID string, status model.TaskStatus) {
	if err := controller.tasks.UpdateTaskStatus(ctx, taskID, status); err != nil {
		controller.logger.Error("update task status failed", "task", taskID, "status", status, "error", err)
	}
}

// StartTask records a user action, marks the task in progress and starts a
// focus session for it.
func (controller *Controller) StartTask(ctx context.Context, taskID string) error {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if err := controller.timers.StartFocus(taskID); err != nil {
		return fmt.Errorf("start focus: %w", err)
	}
	controller.signals.UpdateUserAction()
	controller.updateStatusLocked(ctx, taskID, model.TaskStatusInProgress)
	controller.syncLocked(ctx)
	return nil
}

// PauseFocus pauses the running focus session.
func (controller *Controller) PauseFocus(ctx context.Context) {
	controller.userTimerAction(ctx, controller.timers.PauseFocus)
}

// ResumeFocus resumes a paused focus session.
func (controller *Controller) ResumeFocus(ctx context.Context) {
	controller.userTimerAction(ctx, controller.timers.ResumeFocus)
}

// StopFocus abandons the current focus session.
func (controller *Controller) StopFocus(ctx context.Context) {
	controller.userTimerAction(ctx, controller.timers.StopFocus)
}

// StopBreak ends the current break without a prompt.
func (controller *Controller) StopBreak(ctx context.Context) {
	controller.userTimerAction(ctx, controller.timers.StopBreak)
}

func (controller *Controller) userTimerAction(ctx context.Context, action func()) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	action()
	controller.signals.UpdateUserAction()
	controller.syncLocked(ctx)
}

// CompleteSubtask ticks off a subtask and counts as a user action.
func (controller *Controller) CompleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	completer, ok := controller.tasks.(SubtaskCompleter)
	if !ok {
		return fmt.Errorf("complete subtask: %w", errors.ErrUnsupported)
	}
	if err := completer.CompleteSubtask(ctx, taskID, subtaskID); err != nil {
		return fmt.Errorf("complete subtask: %w", err)
	}
	controller.RecordUserAction(ctx)
	return nil
}

// RecordNavigation marks the start of idle navigation. It is ignored while a
// focus or break session is active.
func (controller *Controller) RecordNavigation(ctx context.Context) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.startNavigationLocked()
}

func (controller *Controller) startNavigationLocked() {
	if controller.last.Phase != timekeeper.PhaseIdle || controller.last.TaskID != "" {
		return
	}
	controller.signals.StartNavigation()
	controller.evaluateAlertsLocked(controller.last)
}

// RecordAway ends idle navigation while the user is away from the machine.
// Time away does not count as browsing.
func (controller *Controller) RecordAway(ctx context.Context) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if !controller.signals.State().Navigating() {
		return
	}
	controller.signals.StopNavigation()
	controller.evaluateAlertsLocked(controller.last)
}

// RecordReturn resumes idle navigation when the user comes back without a
// running focus session.
func (controller *Controller) RecordReturn(ctx context.Context) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.startNavigationLocked()
}

// RecordUserAction records activity, which ends idle navigation.
func (controller *Controller) RecordUserAction(ctx context.Context) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.signals.UpdateUserAction()
	controller.evaluateAlertsLocked(controller.last)
}

// Close commits the running focus window and ends navigation tracking. Call
// it before the process exits so the stored totals stay exact.
func (controller *Controller) Close() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.last.Phase == timekeeper.PhaseFocusing {
		controller.signals.StopTaskFocus(controller.last.TaskID)
	}
	if controller.signals.State().Navigating() {
		controller.signals.StopNavigation()
	}
}
