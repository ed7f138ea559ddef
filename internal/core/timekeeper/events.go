package timekeeper

import "time"

// Phase is the coordinator mode. A single phase owns both timers, so focus
// and break can never run at the same time.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseFocusing       Phase = "focusing"
	PhaseFocusPaused    Phase = "focus_paused"
	PhaseFocusCompleted Phase = "focus_completed"
	PhaseBreaking       Phase = "breaking"
	PhaseBreakEnded     Phase = "break_ended"
)

// TimerPhase is the phase of an individual timer view.
type TimerPhase string

const (
	TimerIdle       TimerPhase = "idle"
	TimerRunning    TimerPhase = "running"
	TimerPaused     TimerPhase = "paused"
	TimerBreakEnded TimerPhase = "break_ended"
)

// TimerState is the view of one timer.
type TimerState struct {
	Phase        TimerPhase
	ActiveTaskID string
	Remaining    time.Duration
}

// Snapshot is the coordinator state at one instant.
type Snapshot struct {
	Phase     Phase
	TaskID    string
	Remaining time.Duration
	Duration  time.Duration
	// Session increases every time a focus or break session starts.
	Session uint64
	At      time.Time
}

// Focus returns the focus timer view. A completed focus reads as idle with
// the task id still set.
func (snapshot Snapshot) Focus() TimerState {
	switch snapshot.Phase {
	case PhaseFocusing:
		return TimerState{Phase: TimerRunning, ActiveTaskID: snapshot.TaskID, Remaining: snapshot.Remaining}
	case PhaseFocusPaused:
		return TimerState{Phase: TimerPaused, ActiveTaskID: snapshot.TaskID, Remaining: snapshot.Remaining}
	case PhaseFocusCompleted:
		return TimerState{Phase: TimerIdle, ActiveTaskID: snapshot.TaskID}
	}
	return TimerState{Phase: TimerIdle}
}

// Break returns the break timer view.
func (snapshot Snapshot) Break() TimerState {
	switch snapshot.Phase {
	case PhaseBreaking:
		return TimerState{Phase: TimerRunning, ActiveTaskID: snapshot.TaskID, Remaining: snapshot.Remaining}
	case PhaseBreakEnded:
		return TimerState{Phase: TimerBreakEnded, ActiveTaskID: snapshot.TaskID}
	}
	return TimerState{Phase: TimerIdle}
}

// EventType defines the type of TimeKeeper event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Event represents a TimeKeeper update for observers.
type Event struct {
	Type     EventType
	Previous Snapshot
	Current  Snapshot
}
