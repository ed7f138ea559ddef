package model

// AlertType names a cognitive advisory banner.
type AlertType string

const (
	AlertExcessiveTime       AlertType = "excessive_time"
	AlertMissingBreak        AlertType = "missing_break"
	AlertProlongedNavigation AlertType = "prolonged_navigation"
)

// AlertPriority lists alert types from most to least important.
var AlertPriority = []AlertType{
	AlertExcessiveTime,
	AlertMissingBreak,
	AlertProlongedNavigation,
}

// Valid reports whether alert is a known alert type.
func (alert AlertType) Valid() bool {
	switch alert {
	case AlertExcessiveTime, AlertMissingBreak, AlertProlongedNavigation:
		return true
	}
	return false
}
