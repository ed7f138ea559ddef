package session

import (
	"focusguard/internal/core/model"
	"focusguard/internal/core/signals"
	"focusguard/internal/core/timekeeper"
)

func conditionsFor(snapshot timekeeper.Snapshot) signals.Conditions {
	if snapshot.Phase != timekeeper.PhaseFocusing {
		return signals.Conditions{}
	}
	return signals.Conditions{ActiveTaskID: snapshot.TaskID}
}

// evaluateAlertsLocked hides a banner whose condition lapsed and shows the
// highest priority permitted alert when no banner is visible.
func (controller *Controller) evaluateAlertsLocked(current timekeeper.Snapshot) {
	conditions := conditionsFor(current)
	state := controller.signals.State()
	now := controller.signals.Now()
	thresholds := controller.signals.Thresholds()

	if controller.alert != nil {
		visible := *controller.alert
		stillEligible := signals.Eligible(state, visible.Type, conditions, now, thresholds)
		if visible.Type == model.AlertExcessiveTime && visible.TaskID != conditions.ActiveTaskID {
			stillEligible = false
		}
		if stillEligible {
			return
		}
		controller.alert = nil
		controller.presenter.HideAlert()
	}

	alertType, ok := signals.Evaluate(state, conditions, now, thresholds)
	if !ok {
		return
	}
	controller.signals.ShowAlert(alertType)
	alert := Alert{
		Type:           alertType,
		TaskID:         conditions.ActiveTaskID,
		FocusTime:      signals.TaskFocusTime(state, conditions.ActiveTaskID, now),
		NavigationTime: signals.NavigationTime(state, now),
		Sessions:       state.ConsecutiveSessions,
		ShownAt:        now,
	}
	controller.alert = &alert
	controller.logger.Info("alert shown", "alert", alertType, "task", alert.TaskID)
	controller.presenter.ShowAlert(alert)
}

// VisibleAlert returns the banner currently shown, if any.
func (controller *Controller) VisibleAlert() (Alert, bool) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.alert == nil {
		return Alert{}, false
	}
	return *controller.alert, true
}

// DismissAlert hides the banner and permits its type to be shown again once
// the rate limit allows.
func (controller *Controller) DismissAlert() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.alert == nil {
		return
	}
	controller.signals.DismissAlert(controller.alert.Type)
	controller.alert = nil
	controller.presenter.HideAlert()
}
