package signals

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"focusguard/internal/core/model"
)

type persistedFocus struct {
	StartTime int64 `json:"startTime"`
	TotalTime int64 `json:"totalTime"`
}

type persistedState struct {
	AlertHistory        []model.AlertType         `json:"alertHistory"`
	LastAlertTime       int64                     `json:"lastAlertTime"`
	ConsecutiveSessions int                       `json:"consecutiveSessions"`
	NavigationStartTime int64                     `json:"navigationStartTime"`
	TaskFocusTimes      map[string]persistedFocus `json:"taskFocusTimes"`
	LastUserAction      int64                     `json:"lastUserAction"`
}

// Encode serialises state as JSON text. Times are Unix milliseconds, zero
// meaning absent.
func Encode(state State) (string, error) {
	payload := persistedState{
		AlertHistory:        append([]model.AlertType{}, state.AlertHistory...),
		LastAlertTime:       toMillis(state.LastAlertTime),
		ConsecutiveSessions: state.ConsecutiveSessions,
		NavigationStartTime: toMillis(state.NavigationStartTime),
		TaskFocusTimes:      make(map[string]persistedFocus, len(state.TaskFocusTimes)),
		LastUserAction:      toMillis(state.LastUserAction),
	}
	for id, focus := range state.TaskFocusTimes {
		payload.TaskFocusTimes[id] = persistedFocus{
			StartTime: toMillis(focus.Start),
			TotalTime: focus.Total.Milliseconds(),
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal signal state: %w", err)
	}
	return string(data), nil
}

// Decode parses persisted text field by field. A field that fails validation
// keeps its default while the others are still applied; the returned error
// lists every rejected field. Empty input yields a fresh state and no error.
func Decode(raw string, now time.Time) (State, error) {
	state := NewState()
	if raw == "" {
		return state, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return state, fmt.Errorf("parse signal state: %w", err)
	}

	var errs []error
	if value, ok := fields["alertHistory"]; ok {
		var history []model.AlertType
		if err := json.Unmarshal(value, &history); err != nil {
			errs = append(errs, fmt.Errorf("alertHistory: %w", err))
		} else {
			for _, alert := range history {
				if alert.Valid() && !state.HasShown(alert) {
					state.AlertHistory = append(state.AlertHistory, alert)
				}
			}
		}
	}
	if value, ok := fields["lastAlertTime"]; ok {
		parsed, err := decodeMillis(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("lastAlertTime: %w", err))
		}
		state.LastAlertTime = parsed
	}
	if value, ok := fields["consecutiveSessions"]; ok {
		var sessions int
		if err := json.Unmarshal(value, &sessions); err != nil || sessions < 0 {
			errs = append(errs, fmt.Errorf("consecutiveSessions: invalid value %s", value))
		} else {
			state.ConsecutiveSessions = sessions
		}
	}
	if value, ok := fields["navigationStartTime"]; ok {
		parsed, err := decodeMillis(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("navigationStartTime: %w", err))
		}
		state.NavigationStartTime = parsed
	}
	if value, ok := fields["taskFocusTimes"]; ok {
		var entries map[string]json.RawMessage
		if err := json.Unmarshal(value, &entries); err != nil {
			errs = append(errs, fmt.Errorf("taskFocusTimes: %w", err))
		}
		for id, entry := range entries {
			var focus persistedFocus
			if err := json.Unmarshal(entry, &focus); err != nil || id == "" || focus.StartTime < 0 || focus.TotalTime < 0 {
				errs = append(errs, fmt.Errorf("taskFocusTimes[%q]: invalid entry", id))
				continue
			}
			state.TaskFocusTimes[id] = TaskFocus{
				Start: fromMillis(focus.StartTime),
				Total: time.Duration(focus.TotalTime) * time.Millisecond,
			}
		}
	}
	if value, ok := fields["lastUserAction"]; ok {
		parsed, err := decodeMillis(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("lastUserAction: %w", err))
		}
		state.LastUserAction = parsed
	}

	return applyFreshDay(state, now), errors.Join(errs...)
}

// closeOpenWindows drops focus and navigation windows left open by a previous
// process. The time between that process and now is not credited.
func closeOpenWindows(state State) State {
	state.NavigationStartTime = time.Time{}
	for id, focus := range state.TaskFocusTimes {
		focus.Start = time.Time{}
		state.TaskFocusTimes[id] = focus
	}
	return state
}

// applyFreshDay forgets alerts shown on a previous day.
func applyFreshDay(state State, now time.Time) State {
	if state.LastAlertTime.IsZero() || now.Sub(state.LastAlertTime) <= freshDayAfter {
		return state
	}
	state.AlertHistory = []model.AlertType{}
	state.LastAlertTime = time.Time{}
	return state
}

func decodeMillis(value json.RawMessage) (time.Time, error) {
	var millis int64
	if err := json.Unmarshal(value, &millis); err != nil {
		return time.Time{}, err
	}
	if millis < 0 {
		return time.Time{}, fmt.Errorf("negative timestamp %d", millis)
	}
	return fromMillis(millis), nil
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UnixMilli()
}

func fromMillis(millis int64) time.Time {
	if millis <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}
