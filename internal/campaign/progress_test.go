package campaign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_UsesMonitoringWhenPresent(t *testing.T) {
	s := Summary{Status: StatusActive, TotalContacts: 3}
	m := &MonitoringSnapshot{PendingContacts: 1, InProgressContacts: 1, CompletedContacts: 1, FailedContacts: 1}

	v := Progress(s, m)

	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 2, v.Processed)
	assert.Equal(t, 1, v.Pending)
	assert.Equal(t, 1, v.InProgress)
	assert.Equal(t, 67, v.Percent)
	assert.Equal(t, "Dialing", v.StatusLabel)
}

func TestProgress_CompletedIsAlwaysFull(t *testing.T) {
	v := Progress(Summary{Status: StatusCompleted, TotalContacts: 10, SuccessfulCalls: 9, FailedCalls: 1}, nil)
	assert.Equal(t, 100, v.Percent)

	v = Progress(Summary{Status: StatusCompleted, TotalContacts: 10, SuccessfulCalls: 2}, nil)
	assert.Equal(t, 100, v.Percent, "completed overrides counts")

	v = Progress(Summary{Status: StatusCompleted}, nil)
	assert.Equal(t, 100, v.Percent, "completed overrides zero total")
}

func TestProgress_FromSummaryCounts(t *testing.T) {
	v := Progress(Summary{Status: StatusPaused, TotalContacts: 8, SuccessfulCalls: 3, FailedCalls: 1}, nil)

	assert.Equal(t, 4, v.Processed)
	assert.Equal(t, 4, v.Pending)
	assert.Equal(t, 0, v.InProgress)
	assert.Equal(t, 50, v.Percent)
	assert.Equal(t, "Halted", v.StatusLabel)
}

func TestProgress_EdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		summary     Summary
		monitoring  *MonitoringSnapshot
		wantPercent int
		wantPending int
	}{
		{"zero total", Summary{Status: StatusActive}, nil, 0, 0},
		{"processed beyond total", Summary{Status: StatusActive, TotalContacts: 2, SuccessfulCalls: 5}, nil, 100, 0},
		{"negative counts", Summary{Status: StatusActive, TotalContacts: -4, SuccessfulCalls: -1}, nil, 0, 0},
		{"monitoring beyond total", Summary{Status: StatusActive, TotalContacts: 1}, &MonitoringSnapshot{CompletedContacts: 3}, 100, 0},
		{"round half up", Summary{Status: StatusActive, TotalContacts: 8, SuccessfulCalls: 1}, nil, 13, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Progress(tt.summary, tt.monitoring)
			assert.Equal(t, tt.wantPercent, v.Percent)
			assert.Equal(t, tt.wantPending, v.Pending)
		})
	}
}

func TestStatusLabel(t *testing.T) {
	tests := map[Status]string{
		StatusActive:    "Dialing",
		StatusPaused:    "Halted",
		StatusPending:   "Queued",
		StatusCompleted: "Finished",
		StatusStopped:   "Terminated",
		StatusDraft:     "Draft",
		StatusFailed:    "Failed",
		"archived":      "archived",
	}
	for s, want := range tests {
		assert.Equal(t, want, s.Label(), "Status(%q).Label()", s)
	}
}

func TestProgress_Finished(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusStopped, StatusFailed} {
		assert.True(t, Progress(Summary{Status: s, TotalContacts: 2}, nil).Finished, "status %s", s)
	}
	for _, s := range []Status{StatusDraft, StatusPending, StatusActive, StatusPaused, "archived"} {
		assert.False(t, Progress(Summary{Status: s, TotalContacts: 2}, nil).Finished, "status %s", s)
	}
}
