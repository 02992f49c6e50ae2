package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/outreach/internal/core"
)

const (
	// multipartMemory is how much of a form ParseMultipartForm keeps in
	// memory before spilling file parts to disk.
	multipartMemory = 8 << 20

	// formOverhead allows for multipart boundaries and small fields on top
	// of the file itself.
	formOverhead = 1 << 20

	maxJSONBody = 10 << 20
)

// handleHealth reports liveness and parse-slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"uploads": s.service.LimiterStatus(),
		"backend": s.service.BackendConfigured(),
	})
}

// fileRequest reads the multipart "file" field and the optional
// campaign_id and default_country fields. Call the returned cleanup once
// the request is handled.
func (s *Server) fileRequest(w http.ResponseWriter, r *http.Request) (core.FileRequest, func(), error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return core.FileRequest{}, nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return core.FileRequest{}, nil, errNoFile
		}
		return core.FileRequest{}, nil, fmt.Errorf("%w: %v", errBadJSON, err)
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return core.FileRequest{}, nil, errNoFile
	}

	campaignID := chi.URLParam(r, "campaignID")
	if campaignID == "" {
		campaignID = strings.TrimSpace(r.FormValue("campaign_id"))
	}

	req := core.FileRequest{
		CampaignID:     campaignID,
		UserUID:        strings.TrimSpace(r.FormValue("user_uid")),
		FileName:       header.Filename,
		DefaultCountry: strings.TrimSpace(r.FormValue("default_country")),
		Body:           file,
	}
	return req, func() { closeFile(file); cleanup() }, nil
}

func closeFile(f multipart.File) {
	if f != nil {
		f.Close()
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxJSONBody)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after JSON value", errBadJSON)
	}
	return nil
}

// splitFields parses a comma-separated field list, dropping blanks.
func splitFields(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// parseThreshold reads an optional non-negative number; 0 means the
// service default.
func parseThreshold(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: threshold must be a non-negative number", errBadJSON)
	}
	return f, nil
}
