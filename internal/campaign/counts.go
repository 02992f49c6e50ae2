package campaign

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// count decodes a counter the campaign service may send as an integer, a
// whole float or a numeric string. Anything else, including null, is 0.
type count int

func (c *count) UnmarshalJSON(data []byte) error {
	*c = count(parseCount(data))
	return nil
}

func parseCount(data []byte) int {
	s := string(bytes.TrimSpace(data))
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return 0
		}
		s = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// UnmarshalJSON decodes a campaign record, reading malformed counters as 0.
func (s *Summary) UnmarshalJSON(data []byte) error {
	type plain Summary
	aux := struct {
		*plain
		TotalContacts   count `json:"total_contacts"`
		SuccessfulCalls count `json:"successful_calls"`
		FailedCalls     count `json:"failed_calls"`
		MaxConcurrent   count `json:"max_concurrent"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.TotalContacts = int(aux.TotalContacts)
	s.SuccessfulCalls = int(aux.SuccessfulCalls)
	s.FailedCalls = int(aux.FailedCalls)
	s.MaxConcurrent = int(aux.MaxConcurrent)
	return nil
}

// UnmarshalJSON decodes live counters, reading malformed values as 0.
func (m *MonitoringSnapshot) UnmarshalJSON(data []byte) error {
	type plain MonitoringSnapshot
	aux := struct {
		*plain
		PendingContacts    count `json:"pending_contacts"`
		InProgressContacts count `json:"in_progress_contacts"`
		CompletedContacts  count `json:"completed_contacts"`
		FailedContacts     count `json:"failed_contacts"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.PendingContacts = int(aux.PendingContacts)
	m.InProgressContacts = int(aux.InProgressContacts)
	m.CompletedContacts = int(aux.CompletedContacts)
	m.FailedContacts = int(aux.FailedContacts)
	return nil
}
