package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/outreach/internal/campaign"
	"github.com/JonMunkholm/outreach/internal/core"
	"github.com/JonMunkholm/outreach/internal/preview"
)

func (s *Server) handleListPreviews(w http.ResponseWriter, r *http.Request) {
	ids, err := s.service.PreviewCampaignIDs(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"campaignIds": ids})
}

func (s *Server) handleClearPreviews(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.ClearPreviews(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cleared": n})
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.Preview(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (s *Server) handleDeletePreview(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeletePreview(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearchPreview searches a campaign's saved preview with ?q=,
// optional ?fields=a,b and ?threshold=.
func (s *Server) handleSearchPreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	threshold, err := parseThreshold(q.Get("threshold"))
	if err != nil {
		fail(w, r, err)
		return
	}

	results, err := s.service.SearchPreview(r.Context(), chi.URLParam(r, "campaignID"),
		q.Get("q"), splitFields(q.Get("fields")), threshold)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSearchResponse(results))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.CampaignConfig(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cfg)
}

// handlePutConfig saves the local config. The campaign in the path wins
// over any campaignId in the body.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var cfg preview.CampaignConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		fail(w, r, err)
		return
	}
	cfg.CampaignID = chi.URLParam(r, "campaignID")

	saved, err := s.service.SaveConfig(r.Context(), cfg)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, saved)
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteConfig(r.Context(), chi.URLParam(r, "campaignID")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type progressRequest struct {
	Campaign   campaign.Summary             `json:"campaign"`
	Monitoring *campaign.MonitoringSnapshot `json:"monitoring"`
}

// handleComputeProgress derives progress from counters the caller already has.
func (s *Server) handleComputeProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, campaign.Progress(req.Campaign, req.Monitoring))
}

// handleGetProgress fetches the campaign and its live counters from the
// campaign service and derives progress.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	v, err := s.service.Progress(r.Context(), chi.URLParam(r, "campaignID"), core.UserUIDFromContext(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, v)
}

// handleUploadContacts cleans an uploaded file and forwards it to the
// campaign service.
func (s *Server) handleUploadContacts(w http.ResponseWriter, r *http.Request) {
	req, cleanup, err := s.fileRequest(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	ctx := r.Context()
	if s.cfg.Upload.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Upload.Timeout)
		defer cancel()
	}

	result, err := s.service.UploadContacts(ctx, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}
