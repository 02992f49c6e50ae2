// Package campaign models outbound-dialing campaigns as reported by the
// campaign service and derives display progress from them.
package campaign

// Status is the lifecycle state reported by the campaign service.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var statusLabels = map[Status]string{
	StatusDraft:     "Draft",
	StatusPending:   "Queued",
	StatusActive:    "Dialing",
	StatusPaused:    "Halted",
	StatusStopped:   "Terminated",
	StatusCompleted: "Finished",
	StatusFailed:    "Failed",
}

// Label is the operator-facing name for s. Unknown statuses are returned
// as-is.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsFinished reports whether the campaign will make no more calls.
func (s Status) IsFinished() bool {
	return s == StatusCompleted || s == StatusStopped || s == StatusFailed
}
