package timekeeper

import (
	"errors"
	"sync"
	"time"

	"focusguard/internal/core/model"
)

// ErrNoTask indicates a session was started without a task id.
var ErrNoTask = errors.New("session requires a task id")

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        func() time.Time
}

// TimeKeeper is the focus/break state machine. It owns both countdowns and
// publishes every transition and tick to subscribers.
type TimeKeeper struct {
	mu        sync.Mutex
	config    model.TimeKeeperConfig
	options   Config
	phase     Phase
	taskID    string
	remaining time.Duration
	duration  time.Duration
	session   uint64
	events    []chan Event
	stopCh    chan struct{}
	running   bool
}

// New creates a TimeKeeper with the provided configuration.
func New(config model.TimeKeeperConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return &TimeKeeper{
		config:  config.Normalized(),
		options: options,
		phase:   PhaseIdle,
		stopCh:  make(chan struct{}),
	}
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Start launches the ticking loop.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.running {
		keeper.mu.Unlock()
		return
	}
	keeper.running = true
	keeper.mu.Unlock()

	go keeper.run()
}

// Stop terminates the ticking loop and closes observers.
func (keeper *TimeKeeper) Stop() {
	keeper.mu.Lock()
	if !keeper.running {
		keeper.mu.Unlock()
		return
	}
	close(keeper.stopCh)
	keeper.running = false
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Snapshot returns the current state.
func (keeper *TimeKeeper) Snapshot() Snapshot {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.snapshotLocked(keeper.options.Clock())
}

// UpdateConfig replaces session durations. Running sessions keep their length.
func (keeper *TimeKeeper) UpdateConfig(config model.TimeKeeperConfig) {
	keeper.mu.Lock()
	keeper.config = config.Normalized()
	keeper.mu.Unlock()
}

// StartFocus begins a new focus session for taskID, ending any break.
func (keeper *TimeKeeper) StartFocus(taskID string) error {
	if taskID == "" {
		return ErrNoTask
	}
	keeper.mu.Lock()
	keeper.enterLocked(PhaseFocusing, taskID, keeper.config.Focus.Duration)
	keeper.mu.Unlock()
	return nil
}

// StartBreak begins a break for taskID, ending any focus session.
func (keeper *TimeKeeper) StartBreak(taskID string) error {
	if taskID == "" {
		return ErrNoTask
	}
	keeper.mu.Lock()
	keeper.enterLocked(PhaseBreaking, taskID, keeper.config.ShortBreak.Duration)
	keeper.mu.Unlock()
	return nil
}

// PauseFocus freezes a running focus session.
func (keeper *TimeKeeper) PauseFocus() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.phase != PhaseFocusing {
		return
	}
	keeper.transitionLocked(func() { keeper.phase = PhaseFocusPaused })
}

// ResumeFocus continues a paused focus session.
func (keeper *TimeKeeper) ResumeFocus() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.phase != PhaseFocusPaused {
		return
	}
	keeper.transitionLocked(func() { keeper.phase = PhaseFocusing })
}

// StopFocus discards the focus session and its task.
func (keeper *TimeKeeper) StopFocus() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	switch keeper.phase {
	case PhaseFocusing, PhaseFocusPaused, PhaseFocusCompleted:
		keeper.resetLocked()
	}
}

// StopBreak discards the break and its task.
func (keeper *TimeKeeper) StopBreak() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	switch keeper.phase {
	case PhaseBreaking, PhaseBreakEnded:
		keeper.resetLocked()
	}
}

// StopAll returns to idle whatever is running.
func (keeper *TimeKeeper) StopAll() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.phase == PhaseIdle && keeper.taskID == "" {
		return
	}
	keeper.resetLocked()
}

// Advance moves the countdown forward by delta as if that much time ticked by.
func (keeper *TimeKeeper) Advance(delta time.Duration) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.advanceLocked(delta, keeper.options.Clock())
}

func (keeper *TimeKeeper) run() {
	ticker := time.NewTicker(keeper.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-keeper.stopCh:
			return
		case <-ticker.C:
			keeper.tick()
		}
	}
}

func (keeper *TimeKeeper) tick() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if !keeper.running {
		return
	}
	keeper.advanceLocked(keeper.options.TickInterval, keeper.options.Clock())
}

func (keeper *TimeKeeper) advanceLocked(delta time.Duration, now time.Time) {
	if keeper.phase != PhaseFocusing && keeper.phase != PhaseBreaking {
		current := keeper.snapshotLocked(now)
		keeper.emitLocked(Event{Type: EventProgress, Previous: current, Current: current})
		return
	}

	previous := keeper.snapshotLocked(now)
	keeper.remaining -= delta
	if keeper.remaining > 0 {
		keeper.emitLocked(Event{Type: EventProgress, Previous: previous, Current: keeper.snapshotLocked(now)})
		return
	}

	keeper.remaining = 0
	if keeper.phase == PhaseFocusing {
		keeper.phase = PhaseFocusCompleted
	} else {
		keeper.phase = PhaseBreakEnded
	}
	keeper.emitLocked(Event{Type: EventStateChange, Previous: previous, Current: keeper.snapshotLocked(now)})
}

func (keeper *TimeKeeper) enterLocked(phase Phase, taskID string, duration time.Duration) {
	keeper.transitionLocked(func() {
		keeper.phase = phase
		keeper.taskID = taskID
		keeper.duration = duration
		keeper.remaining = duration
		keeper.session++
	})
}

func (keeper *TimeKeeper) resetLocked() {
	keeper.transitionLocked(func() {
		keeper.phase = PhaseIdle
		keeper.taskID = ""
		keeper.duration = 0
		keeper.remaining = 0
	})
}

func (keeper *TimeKeeper) transitionLocked(change func()) {
	now := keeper.options.Clock()
	previous := keeper.snapshotLocked(now)
	change()
	keeper.emitLocked(Event{Type: EventStateChange, Previous: previous, Current: keeper.snapshotLocked(now)})
}

func (keeper *TimeKeeper) snapshotLocked(now time.Time) Snapshot {
	return Snapshot{
		Phase:     keeper.phase,
		TaskID:    keeper.taskID,
		Remaining: keeper.remaining,
		Duration:  keeper.duration,
		Session:   keeper.session,
		At:        now,
	}
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	events := append([]chan Event(nil), keeper.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
