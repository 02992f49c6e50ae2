package web

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/outreach/internal/contacts"
	"github.com/JonMunkholm/outreach/internal/logging"
)

// handlePreview analyzes an uploaded contact file. With a campaign_id the
// preview is saved for that campaign.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.fileRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	result, err := s.service.Analyze(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleDedupe returns the cleaned file as a CSV attachment.
func (s *Server) handleDedupe(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.fileRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	file, err := s.service.Dedupe(r.Context(), req)
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	w.Header().Set("X-Total-Contacts", strconv.Itoa(file.Result.TotalContacts))
	w.Header().Set("X-Duplicates-Removed", strconv.Itoa(file.Result.Duplicates.Count))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Content); err != nil {
		logging.FromContext(r.Context()).Warn("write deduped csv", "error", err)
	}
}

type searchRequest struct {
	Contacts  []contacts.Contact `json:"contacts"`
	Query     string             `json:"query"`
	Fields    []string           `json:"fields"`
	Threshold float64            `json:"threshold"`
}

type searchResponse struct {
	Results []contacts.Contact `json:"results"`
	Count   int                `json:"count"`
}

// handleSearch fuzzy-filters contacts sent in the body.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Threshold < 0 {
		req.Threshold = 0
	}

	results := s.service.SearchContacts(req.Contacts, req.Query, req.Fields, req.Threshold)
	writeJSON(w, r, http.StatusOK, newSearchResponse(results))
}

func newSearchResponse(results []contacts.Contact) searchResponse {
	if results == nil {
		results = []contacts.Contact{}
	}
	return searchResponse{Results: results, Count: len(results)}
}
