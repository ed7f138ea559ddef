package signals

import (
	"log/slog"
	"sync"
	"time"

	"focusguard/internal/core/model"
)

// StorageKey is the single key the state is persisted under.
const StorageKey = "focusguard.signals"

// KV is a session-scoped text key-value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Options configures a Store.
type Options struct {
	KV         KV
	Key        string
	Clock      func() time.Time
	Logger     *slog.Logger
	Thresholds Thresholds
}

// Store owns the signal state. It is the only writer, and every change goes
// through Dispatch so the state is persisted after each transition.
type Store struct {
	mu         sync.Mutex
	state      State
	kv         KV
	key        string
	clock      func() time.Time
	logger     *slog.Logger
	thresholds Thresholds
	listeners  []func(State)
}

// NewStore loads the persisted state, falling back to defaults when the
// stored text is missing or unreadable. Focus and navigation windows still
// open in the stored state are closed without crediting them.
func NewStore(options Options) *Store {
	if options.Key == "" {
		options.Key = StorageKey
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Thresholds == (Thresholds{}) {
		options.Thresholds = DefaultThresholds()
	}

	store := &Store{
		kv:         options.KV,
		key:        options.Key,
		clock:      options.Clock,
		logger:     options.Logger.With("component", "signals"),
		thresholds: options.Thresholds,
	}
	store.state = store.load()
	return store
}

func (store *Store) load() State {
	if store.kv == nil {
		return NewState()
	}
	raw, ok, err := store.kv.Get(store.key)
	if err != nil {
		store.logger.Warn("read signal state failed, using defaults", "error", err)
		return NewState()
	}
	if !ok {
		return NewState()
	}
	state, err := Decode(raw, store.clock())
	if err != nil {
		store.logger.Warn("signal state partially restored", "error", err)
	}
	return closeOpenWindows(state)
}

// Subscribe registers a listener called with every new state.
func (store *Store) Subscribe(listener func(State)) {
	if listener == nil {
		return
	}
	store.mu.Lock()
	store.listeners = append(store.listeners, listener)
	store.mu.Unlock()
}

// Dispatch applies action, persists the result and notifies listeners.
func (store *Store) Dispatch(action Action) State {
	store.mu.Lock()
	next := Reduce(store.state, action)
	store.state = next
	store.persistLocked(action)
	listeners := append([]func(State){}, store.listeners...)
	store.mu.Unlock()

	for _, listener := range listeners {
		listener(next.clone())
	}
	return next.clone()
}

func (store *Store) persistLocked(action Action) {
	if store.kv == nil {
		return
	}
	raw, err := Encode(store.state)
	if err != nil {
		store.logger.Error("encode signal state failed", "action", action.Name(), "error", err)
		return
	}
	if err := store.kv.Set(store.key, raw); err != nil {
		store.logger.Error("persist signal state failed", "action", action.Name(), "error", err)
	}
}

// State returns a copy of the current state.
func (store *Store) State() State {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.state.clone()
}

// Thresholds returns the alert limits in use.
func (store *Store) Thresholds() Thresholds {
	return store.thresholds
}

// Now returns the store clock reading.
func (store *Store) Now() time.Time {
	return store.clock()
}

// ShowAlert records alert as shown now.
func (store *Store) ShowAlert(alert model.AlertType) State {
	return store.Dispatch(ShowAlert{Type: alert, At: store.clock()})
}

// DismissAlert removes alert from the history.
func (store *Store) DismissAlert(alert model.AlertType) State {
	return store.Dispatch(DismissAlert{Type: alert})
}

// IncrementSessions counts a focus session completed without a break.
func (store *Store) IncrementSessions() State {
	return store.Dispatch(IncrementSessions{})
}

// ResetSessions zeroes the consecutive session count.
// ResetSession clears the alert history and last alert time.
func (store *Store) ResetSessions() State {
	return store.Dispatch(ResetSessions{})
}

// StartNavigation starts idle-navigation tracking unless already tracking.
func (store *Store) StartNavigation() State {
	return store.Dispatch(StartNavigation{At: store.clock()})
}

// StopNavigation ends idle-navigation tracking.
func (store *Store) StopNavigation() State {
	return store.Dispatch(StopNavigation{})
}

// StartTaskFocus opens a focus window for taskID.
func (store *Store) StartTaskFocus(taskID string) State {
	return store.Dispatch(StartTaskFocus{TaskID: taskID, At: store.clock()})
}

// StopTaskFocus folds the open focus window of taskID into its total.
func (store *Store) StopTaskFocus(taskID string) State {
	return store.Dispatch(StopTaskFocus{TaskID: taskID, At: store.clock()})
}

// UpdateUserAction records user activity, which ends idle navigation.
func (store *Store) UpdateUserAction() State {
	return store.Dispatch(UpdateUserAction{At: store.clock()})
}

// ResetSession clears the alert history and last alert time.
func (store *Store) ResetSession() State {
	return store.Dispatch(ResetSession{})
}

// ShouldShowAlert applies rate limiting and deduplication to alert.
func (store *Store) ShouldShowAlert(alert model.AlertType) bool {
	return ShouldShowAlert(store.State(), alert, store.clock(), store.thresholds.MinAlertInterval)
}

// TaskFocusTime returns the focus time of taskID including any running window.
func (store *Store) TaskFocusTime(taskID string) time.Duration {
	return TaskFocusTime(store.State(), taskID, store.clock())
}

// NavigationTime returns the current idle-navigation duration.
func (store *Store) NavigationTime() time.Duration {
	return NavigationTime(store.State(), store.clock())
}

// Evaluate picks the alert to surface now, if any.
func (store *Store) Evaluate(conditions Conditions) (model.AlertType, bool) {
	return Evaluate(store.State(), conditions, store.clock(), store.thresholds)
}
