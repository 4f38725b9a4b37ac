package domain

import "strings"

// PacingStatus classifies a pacing percentage against configured thresholds.
type PacingStatus string

const (
	StatusGood    PacingStatus = "good"
	StatusWarning PacingStatus = "warning"
	StatusBad     PacingStatus = "bad"
)

var pacingStatusLabels = map[PacingStatus]string{
	StatusGood:    "On Pace",
	StatusWarning: "Close",
	StatusBad:     "Behind",
}

var pacingStatusValues = map[string]PacingStatus{
	"good":    StatusGood,
	"warning": StatusWarning,
	"bad":     StatusBad,
}

// PacingStatusLabel returns a human-readable label for a pacing status.
func PacingStatusLabel(status PacingStatus) string {
	if label, ok := pacingStatusLabels[status]; ok {
		return label
	}

	return "Unknown"
}

// ParsePacingStatus returns the status for a given value (case-insensitive).
func ParsePacingStatus(value string) (PacingStatus, bool) {
	status, ok := pacingStatusValues[strings.ToLower(value)]

	return status, ok
}
