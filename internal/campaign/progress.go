package campaign

import "math"

// Summary is the subset of a campaign record that progress is derived from.
type Summary struct {
	ID              string  `json:"id,omitempty"`
	UserUID         string  `json:"user_uid,omitempty"`
	Name            string  `json:"name,omitempty"`
	Status          Status  `json:"status"`
	Provider        string  `json:"provider,omitempty"`
	TrunkName       string  `json:"trunk_name,omitempty"`
	TotalContacts   int     `json:"total_contacts"`
	SuccessfulCalls int     `json:"successful_calls"`
	FailedCalls     int     `json:"failed_calls"`
	CallsPerSecond  float64 `json:"calls_per_second,omitempty"`
	MaxConcurrent   int     `json:"max_concurrent,omitempty"`
}

// MonitoringSnapshot holds live per-contact counts. When present it
// supersedes the summary's call counters.
type MonitoringSnapshot struct {
	CampaignID         string `json:"campaign_id,omitempty"`
	PendingContacts    int    `json:"pending_contacts"`
	InProgressContacts int    `json:"in_progress_contacts"`
	CompletedContacts  int    `json:"completed_contacts"`
	FailedContacts     int    `json:"failed_contacts"`
}

// ProgressView is the derived, display-ready progress of a campaign.
type ProgressView struct {
	Total       int    `json:"total"`
	Processed   int    `json:"processed"`
	Pending     int    `json:"pending"`
	InProgress  int    `json:"inProgress"`
	Percent     int    `json:"percent"`
	Status      Status `json:"status"`
	StatusLabel string `json:"statusLabel"`
	Finished    bool   `json:"finished"`
}

// Progress derives a ProgressView. monitoring may be nil.
//
// Percent is round(processed/total*100) clamped to 0..100, 0 when total is 0,
// and always 100 for completed campaigns. Negative counts count as zero.
func Progress(s Summary, monitoring *MonitoringSnapshot) ProgressView {
	v := ProgressView{
		Total:       nonNegative(s.TotalContacts),
		Status:      s.Status,
		StatusLabel: s.Status.Label(),
		Finished:    s.Status.IsFinished(),
	}

	if monitoring != nil {
		v.Processed = nonNegative(monitoring.CompletedContacts) + nonNegative(monitoring.FailedContacts)
		v.Pending = nonNegative(monitoring.PendingContacts)
		v.InProgress = nonNegative(monitoring.InProgressContacts)
	} else {
		v.Processed = nonNegative(s.SuccessfulCalls) + nonNegative(s.FailedCalls)
		v.Pending = max(0, v.Total-v.Processed)
	}

	if v.Total > 0 {
		v.Percent = int(math.Round(float64(v.Processed) / float64(v.Total) * 100))
	}
	if s.Status == StatusCompleted {
		v.Percent = 100
	}
	v.Percent = min(100, max(0, v.Percent))
	return v
}

func nonNegative(n int) int {
	return max(0, n)
}
