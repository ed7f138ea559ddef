package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/signals"
	"focusguard/internal/core/timekeeper"
)

type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time { return clock.now }

type fakeTasks struct {
	mu         sync.Mutex
	cached     map[string]model.Task
	remote     map[string]model.Task
	refreshErr error
	updateErr  error
	refreshes  int
	statuses   map[string]model.TaskStatus
}

func newFakeTasks(tasks ...model.Task) *fakeTasks {
	fake := &fakeTasks{
		cached:   map[string]model.Task{},
		remote:   map[string]model.Task{},
		statuses: map[string]model.TaskStatus{},
	}
	for _, task := range tasks {
		fake.cached[task.ID] = task
		fake.remote[task.ID] = task
	}
	return fake
}

func (fake *fakeTasks) GetTask(id string) (model.Task, bool) {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	task, ok := fake.cached[id]
	return task, ok
}

func (fake *fakeTasks) RefreshTask(ctx context.Context, id string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	fake.refreshes++
	if fake.refreshErr != nil {
		return fake.refreshErr
	}
	task, ok := fake.remote[id]
	if !ok {
		return errors.New("task not found")
	}
	fake.cached[id] = task
	return nil
}

func (fake *fakeTasks) UpdateTaskStatus(ctx context.Context, id string, status model.TaskStatus) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.updateErr != nil {
		return fake.updateErr
	}
	fake.statuses[id] = status
	return nil
}

func (fake *fakeTasks) CompleteSubtask(ctx context.Context, taskID, subtaskID string) error {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	task := fake.cached[taskID]
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Completed = true
		}
	}
	fake.cached[taskID] = task
	return nil
}

type fakePresenter struct {
	prompts     []Prompt
	promptsOpen bool
	alerts      []Alert
	alertOpen   bool
}

func (presenter *fakePresenter) ShowPrompt(prompt Prompt) {
	presenter.prompts = append(presenter.prompts, prompt)
	presenter.promptsOpen = true
}

func (presenter *fakePresenter) HidePrompt() { presenter.promptsOpen = false }

func (presenter *fakePresenter) ShowAlert(alert Alert) {
	presenter.alerts = append(presenter.alerts, alert)
	presenter.alertOpen = true
}

func (presenter *fakePresenter) HideAlert() { presenter.alertOpen = false }

type memoryKV struct {
	values map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]string{}}
}

func (kv *memoryKV) Get(key string) (string, bool, error) {
	value, ok := kv.values[key]
	return value, ok, nil
}

func (kv *memoryKV) Set(key, value string) error {
	kv.values[key] = value
	return nil
}

type harness struct {
	clock     *fakeClock
	keeper    *timekeeper.TimeKeeper
	store     *signals.Store
	tasks     *fakeTasks
	presenter *fakePresenter
	ctrl      *Controller
}

const (
	testFocus = 30 * time.Second
	testBreak = 10 * time.Second
)

func newHarness(t *testing.T, tasks *fakeTasks) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keeper := timekeeper.New(model.TimeKeeperConfig{
		Focus:      model.SessionConfig{Duration: testFocus},
		ShortBreak: model.SessionConfig{Duration: testBreak},
	}, timekeeper.Config{TickInterval: time.Second, Clock: clock.Now})
	store := signals.NewStore(signals.Options{
		Clock:  clock.Now,
		Logger: logger,
		Thresholds: signals.Thresholds{
			ExcessiveTime:        time.Hour,
			MissingBreakSessions: 3,
			ProlongedNavigation:  5 * time.Minute,
			MinAlertInterval:     time.Minute,
		},
	})
	presenter := &fakePresenter{}
	ctrl := New(Options{
		Timers:    keeper,
		Tasks:     tasks,
		Signals:   store,
		Presenter: presenter,
		Logger:    logger,
	})
	return &harness{clock: clock, keeper: keeper, store: store, tasks: tasks, presenter: presenter, ctrl: ctrl}
}

func (h *harness) advance(delta time.Duration) {
	h.clock.now = h.clock.now.Add(delta)
	h.keeper.Advance(delta)
	h.ctrl.Sync(context.Background())
}

func (h *harness) completeFocus(t *testing.T) Prompt {
	t.Helper()
	h.advance(h.keeper.Snapshot().Remaining)
	prompt, ok := h.ctrl.Prompt()
	if !ok || prompt.Kind != PromptFocusComplete {
		t.Fatalf("expected focus prompt, got %+v (%v)", prompt, ok)
	}
	return prompt
}

func (h *harness) completeBreak(t *testing.T) Prompt {
	t.Helper()
	h.advance(h.keeper.Snapshot().Remaining)
	prompt, ok := h.ctrl.Prompt()
	if !ok || prompt.Kind != PromptBreakComplete {
		t.Fatalf("expected break prompt, got %+v (%v)", prompt, ok)
	}
	return prompt
}

func TestFocusCompletionThenStartBreak(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1", Title: "Write report"}))

	if err := h.ctrl.StartTask(ctx, "t1"); err != nil {
		t.Fatalf("start task: %v", err)
	}
	if h.tasks.statuses["t1"] != model.TaskStatusInProgress {
		t.Fatalf("expected task marked in progress")
	}

	prompt := h.completeFocus(t)
	if !prompt.PreventClose {
		t.Fatalf("expected prompt to prevent close")
	}
	if !prompt.Offers(ActionFinishTask) {
		t.Fatalf("expected finish to be offered for task without subtasks")
	}

	if err := h.ctrl.Choose(ctx, ActionStartBreak); err != nil {
		t.Fatalf("choose: %v", err)
	}
	snapshot := h.keeper.Snapshot()
	if snapshot.Focus().Phase != timekeeper.TimerIdle {
		t.Fatalf("expected focus idle, got %s", snapshot.Focus().Phase)
	}
	if view := snapshot.Break(); view.Phase != timekeeper.TimerRunning || view.ActiveTaskID != "t1" {
		t.Fatalf("expected break running for t1, got %+v", view)
	}
	if _, ok := h.ctrl.Prompt(); ok || h.presenter.promptsOpen {
		t.Fatalf("expected prompt closed")
	}
}

func TestFinishNotOfferedWithOpenSubtasks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1", Subtasks: []model.Subtask{{ID: "s1"}}}))
	_ = h.ctrl.StartTask(ctx, "t1")

	prompt := h.completeFocus(t)
	if prompt.Offers(ActionFinishTask) {
		t.Fatalf("expected finish to be withheld")
	}
	if err := h.ctrl.Choose(ctx, ActionFinishTask); !errors.Is(err, ErrActionUnavailable) {
		t.Fatalf("expected ErrActionUnavailable, got %v", err)
	}
	if _, ok := h.ctrl.Prompt(); !ok {
		t.Fatalf("expected prompt to stay open after rejected action")
	}
}

func TestTaskFetchFailureStillOpensPrompt(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks()
	tasks.refreshErr = errors.New("offline")
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")

	prompt := h.completeFocus(t)
	if prompt.HasTask || prompt.Offers(ActionFinishTask) {
		t.Fatalf("expected prompt without task data, got %+v", prompt)
	}
	if tasks.refreshes != 1 {
		t.Fatalf("expected one refresh attempt, got %d", tasks.refreshes)
	}
}

func TestTaskFetchFallsBackToRefresh(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks()
	tasks.remote["t1"] = model.Task{ID: "t1", Title: "Remote"}
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")

	prompt := h.completeFocus(t)
	if !prompt.HasTask || prompt.Task.Title != "Remote" {
		t.Fatalf("expected refreshed task, got %+v", prompt)
	}
}

func TestContinueFocusCountsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	first := h.completeFocus(t)

	if err := h.ctrl.Choose(ctx, ActionContinueFocus); err != nil {
		t.Fatalf("choose: %v", err)
	}
	snapshot := h.keeper.Snapshot()
	if snapshot.Phase != timekeeper.PhaseFocusing || snapshot.TaskID != "t1" || snapshot.Session == first.Session {
		t.Fatalf("expected a new focus session, got %+v", snapshot)
	}
	state := h.store.State()
	if state.ConsecutiveSessions != 1 {
		t.Fatalf("expected 1 consecutive session, got %d", state.ConsecutiveSessions)
	}
	if !state.LastUserAction.Equal(h.clock.now) {
		t.Fatalf("expected user action recorded")
	}
}

func TestFinishTaskResetsSessions(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1"})
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	_ = h.ctrl.Choose(ctx, ActionContinueFocus)
	h.completeFocus(t)

	if err := h.ctrl.Choose(ctx, ActionFinishTask); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if tasks.statuses["t1"] != model.TaskStatusDone {
		t.Fatalf("expected task done, got %q", tasks.statuses["t1"])
	}
	if phase := h.keeper.Snapshot().Phase; phase != timekeeper.PhaseIdle {
		t.Fatalf("expected idle, got %s", phase)
	}
	if sessions := h.store.State().ConsecutiveSessions; sessions != 0 {
		t.Fatalf("expected sessions reset, got %d", sessions)
	}
}

func TestStatusUpdateFailureStillCloses(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1"})
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	tasks.updateErr = errors.New("remote down")

	if err := h.ctrl.Choose(ctx, ActionFinishTask); err != nil {
		t.Fatalf("expected best-effort finish, got %v", err)
	}
	if _, ok := h.ctrl.Prompt(); ok {
		t.Fatalf("expected prompt closed")
	}
	if phase := h.keeper.Snapshot().Phase; phase != timekeeper.PhaseIdle {
		t.Fatalf("expected timers stopped, got %s", phase)
	}
}

func TestBreakCompletionStartFocus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	_ = h.ctrl.Choose(ctx, ActionContinueFocus)
	h.completeFocus(t)
	_ = h.ctrl.Choose(ctx, ActionStartBreak)
	h.completeBreak(t)

	if err := h.ctrl.Choose(ctx, ActionStartFocus); err != nil {
		t.Fatalf("choose: %v", err)
	}
	snapshot := h.keeper.Snapshot()
	if snapshot.Focus().Phase != timekeeper.TimerRunning || snapshot.Break().Phase != timekeeper.TimerIdle {
		t.Fatalf("expected focus running and break idle, got %+v", snapshot)
	}
	if sessions := h.store.State().ConsecutiveSessions; sessions != 0 {
		t.Fatalf("expected honoured break to reset sessions, got %d", sessions)
	}
}

func TestBreakCompletionEndFocus(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1"})
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	_ = h.ctrl.Choose(ctx, ActionStartBreak)
	h.completeBreak(t)

	if err := h.ctrl.Choose(ctx, ActionEndFocus); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if tasks.statuses["t1"] != model.TaskStatusTodo {
		t.Fatalf("expected task reverted to todo, got %q", tasks.statuses["t1"])
	}
	snapshot := h.keeper.Snapshot()
	if snapshot.Phase != timekeeper.PhaseIdle || snapshot.TaskID != "" {
		t.Fatalf("expected both timers stopped, got %+v", snapshot)
	}
}

func TestPromptOpensOncePerSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")

	h.advance(2 * testFocus)
	h.ctrl.Sync(ctx)
	h.ctrl.Sync(ctx)
	if len(h.presenter.prompts) != 1 {
		t.Fatalf("expected a single prompt, got %d", len(h.presenter.prompts))
	}
}

func TestFullStopClosesPrompt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)

	h.keeper.StopAll()
	h.ctrl.Sync(ctx)
	if _, ok := h.ctrl.Prompt(); ok || h.presenter.promptsOpen {
		t.Fatalf("expected prompt to close on full stop")
	}
	if !h.store.State().Navigating() {
		t.Fatalf("expected idle navigation tracking to begin")
	}
}

func TestChooseWithoutPrompt(t *testing.T) {
	h := newHarness(t, newFakeTasks())
	if err := h.ctrl.Choose(context.Background(), ActionStartBreak); !errors.Is(err, ErrNoPrompt) {
		t.Fatalf("expected ErrNoPrompt, got %v", err)
	}
}

func TestFocusTimeAccumulatesOnlyWhileFocusing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")

	h.advance(5 * time.Second)
	h.ctrl.PauseFocus(ctx)
	h.clock.now = h.clock.now.Add(time.Minute)
	h.ctrl.Sync(ctx)
	if got := h.store.TaskFocusTime("t1"); got != 5*time.Second {
		t.Fatalf("expected 5s while paused, got %v", got)
	}

	h.ctrl.ResumeFocus(ctx)
	h.completeFocus(t)
	if got := h.store.TaskFocusTime("t1"); got != testFocus {
		t.Fatalf("expected full focus duration committed, got %v", got)
	}
}

func TestMissingBreakAlertAfterThreeContinues(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")

	for i := 0; i < 3; i++ {
		h.completeFocus(t)
		if err := h.ctrl.Choose(ctx, ActionContinueFocus); err != nil {
			t.Fatalf("continue %d: %v", i, err)
		}
	}

	alert, ok := h.ctrl.VisibleAlert()
	if !ok || alert.Type != model.AlertMissingBreak {
		t.Fatalf("expected missing_break banner, got %+v (%v)", alert, ok)
	}
	if h.store.ShouldShowAlert(model.AlertMissingBreak) {
		t.Fatalf("expected dedup after showing")
	}
	if len(h.presenter.alerts) != 1 {
		t.Fatalf("expected one banner, got %d", len(h.presenter.alerts))
	}
}

func TestExcessiveTimeAlertTakesPriority(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	h.keeper.UpdateConfig(model.TimeKeeperConfig{
		Focus:      model.SessionConfig{Duration: 2 * time.Hour},
		ShortBreak: model.SessionConfig{Duration: testBreak},
	})
	for i := 0; i < 3; i++ {
		h.store.IncrementSessions()
	}
	_ = h.ctrl.StartTask(ctx, "t1")

	alert, ok := h.ctrl.VisibleAlert()
	if !ok || alert.Type != model.AlertMissingBreak {
		t.Fatalf("expected missing_break before the focus threshold, got %+v (%v)", alert, ok)
	}

	h.ctrl.DismissAlert()
	h.advance(61 * time.Minute)
	alert, ok = h.ctrl.VisibleAlert()
	if !ok || alert.Type != model.AlertExcessiveTime {
		t.Fatalf("expected excessive_time ahead of missing_break, got %+v (%v)", alert, ok)
	}
	if alert.FocusTime < time.Hour {
		t.Fatalf("expected focus time on the banner, got %v", alert.FocusTime)
	}
}

func TestDismissAlertHidesBanner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks())
	h.ctrl.RecordNavigation(ctx)
	h.advance(6 * time.Minute)

	alert, ok := h.ctrl.VisibleAlert()
	if !ok || alert.Type != model.AlertProlongedNavigation {
		t.Fatalf("expected navigation banner, got %+v (%v)", alert, ok)
	}
	h.ctrl.DismissAlert()
	if _, ok := h.ctrl.VisibleAlert(); ok || h.presenter.alertOpen {
		t.Fatalf("expected banner hidden")
	}
	if h.store.State().HasShown(model.AlertProlongedNavigation) {
		t.Fatalf("expected dismissal to clear history entry")
	}
}

func TestBannerExpiresWhenConditionLapses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks())
	h.ctrl.RecordNavigation(ctx)
	h.advance(6 * time.Minute)
	if _, ok := h.ctrl.VisibleAlert(); !ok {
		t.Fatalf("expected navigation banner")
	}

	h.ctrl.RecordUserAction(ctx)
	if _, ok := h.ctrl.VisibleAlert(); ok {
		t.Fatalf("expected banner to expire after user action")
	}
	if !h.store.State().HasShown(model.AlertProlongedNavigation) {
		t.Fatalf("expected expired alert to stay in history")
	}
}

func TestCompleteSubtaskRecordsUserAction(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1", Subtasks: []model.Subtask{{ID: "s1"}}})
	h := newHarness(t, tasks)
	h.ctrl.RecordNavigation(ctx)

	if err := h.ctrl.CompleteSubtask(ctx, "t1", "s1"); err != nil {
		t.Fatalf("complete subtask: %v", err)
	}
	if h.store.State().Navigating() {
		t.Fatalf("expected navigation cleared")
	}
	task, _ := tasks.GetTask("t1")
	if task.HasIncompleteSubtasks() {
		t.Fatalf("expected subtask completed")
	}
}

func TestRunStopsWhenEventsClose(t *testing.T) {
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	events := h.keeper.Subscribe(8)
	done := make(chan struct{})
	go func() {
		h.ctrl.Run(context.Background(), events)
		close(done)
	}()

	h.keeper.Start()
	_ = h.keeper.StartFocus("t1")
	h.keeper.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("expected Run to return after events closed")
	}
}

func TestAwayPausesNavigation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	h.ctrl.RecordNavigation(ctx)
	h.advance(2 * time.Minute)

	h.ctrl.RecordAway(ctx)
	if h.store.State().Navigating() {
		t.Fatalf("expected navigation stopped while away")
	}
	h.advance(10 * time.Minute)
	if _, ok := h.ctrl.VisibleAlert(); ok {
		t.Fatalf("expected no navigation alert for time away")
	}

	h.ctrl.RecordReturn(ctx)
	if !h.store.State().Navigating() {
		t.Fatalf("expected navigation to resume on return")
	}

	if err := h.ctrl.StartTask(ctx, "t1"); err != nil {
		t.Fatalf("start task: %v", err)
	}
	h.ctrl.RecordAway(ctx)
	h.ctrl.RecordReturn(ctx)
	if h.store.State().Navigating() {
		t.Fatalf("expected no navigation while focusing")
	}
}

func TestNewSessionClosesStalePrompt(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1"}, model.Task{ID: "t2"})
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)

	if err := h.ctrl.StartTask(ctx, "t2"); err != nil {
		t.Fatalf("start t2: %v", err)
	}
	if _, ok := h.ctrl.Prompt(); ok || h.presenter.promptsOpen {
		t.Fatalf("expected t1 prompt closed once t2 started")
	}
	if err := h.ctrl.Choose(ctx, ActionFinishTask); !errors.Is(err, ErrNoPrompt) {
		t.Fatalf("expected ErrNoPrompt, got %v", err)
	}
	if tasks.statuses["t1"] == model.TaskStatusDone {
		t.Fatalf("expected t1 left unfinished")
	}
	snapshot := h.keeper.Snapshot()
	if snapshot.Phase != timekeeper.PhaseFocusing || snapshot.TaskID != "t2" {
		t.Fatalf("expected t2 still focusing, got %+v", snapshot)
	}
}

func TestChooseIgnoresPromptFromUnsyncedSession(t *testing.T) {
	ctx := context.Background()
	tasks := newFakeTasks(model.Task{ID: "t1"}, model.Task{ID: "t2"})
	h := newHarness(t, tasks)
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)

	_ = h.keeper.StartFocus("t2")
	if err := h.ctrl.Choose(ctx, ActionFinishTask); !errors.Is(err, ErrNoPrompt) {
		t.Fatalf("expected ErrNoPrompt, got %v", err)
	}
	if h.keeper.Snapshot().TaskID != "t2" || tasks.statuses["t1"] == model.TaskStatusDone {
		t.Fatalf("expected t2 untouched and t1 not finished")
	}
}

func TestChooseRecordsUserAction(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	before := h.store.State().LastUserAction

	if err := h.ctrl.Choose(ctx, ActionStartBreak); err != nil {
		t.Fatalf("choose: %v", err)
	}
	if !h.store.State().LastUserAction.After(before) {
		t.Fatalf("expected prompt decision recorded as user action")
	}
}

func TestCloseCommitsFocusAcrossRestart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	kv := newMemoryKV()
	h.store = signals.NewStore(signals.Options{KV: kv, Clock: h.clock.Now, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	h.ctrl = New(Options{Timers: h.keeper, Tasks: h.tasks, Signals: h.store, Presenter: h.presenter})

	_ = h.ctrl.StartTask(ctx, "t1")
	h.advance(10 * time.Second)
	h.ctrl.Close()
	if got := h.store.TaskFocusTime("t1"); got != 10*time.Second {
		t.Fatalf("expected 10s committed on close, got %v", got)
	}

	h.clock.now = h.clock.now.Add(12 * time.Hour)
	restarted := newHarness(t, h.tasks)
	restarted.clock.now = h.clock.now
	restarted.store = signals.NewStore(signals.Options{KV: kv, Clock: restarted.clock.Now, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	restarted.ctrl = New(Options{Timers: restarted.keeper, Tasks: restarted.tasks, Signals: restarted.store, Presenter: restarted.presenter})

	_ = restarted.ctrl.StartTask(ctx, "t1")
	restarted.advance(time.Second)
	if got := restarted.store.TaskFocusTime("t1"); got != 11*time.Second {
		t.Fatalf("expected downtime excluded, got %v", got)
	}
	if _, ok := restarted.ctrl.VisibleAlert(); ok {
		t.Fatalf("expected no alert right after restart")
	}
}

func TestStopBreakEndsBreakWithoutPrompt(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	h.completeFocus(t)
	_ = h.ctrl.Choose(ctx, ActionStartBreak)

	h.ctrl.StopBreak(ctx)
	if snapshot := h.keeper.Snapshot(); snapshot.Phase != timekeeper.PhaseIdle {
		t.Fatalf("expected idle after stopping break, got %s", snapshot.Phase)
	}
	if _, ok := h.ctrl.Prompt(); ok {
		t.Fatalf("expected no prompt")
	}
}

func TestRecordNavigationIgnoredWhileFocusing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, newFakeTasks(model.Task{ID: "t1"}))
	_ = h.ctrl.StartTask(ctx, "t1")
	h.ctrl.RecordNavigation(ctx)
	if h.store.State().Navigating() {
		t.Fatalf("expected navigation not tracked during focus")
	}
}
