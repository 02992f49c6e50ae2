package campaign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/outreach/internal/logging"
)

// maxErrorBody caps how much of a failed response is kept in an APIError.
const maxErrorBody = 4 << 10

// ErrNoUserUID is returned when a call is made without the owning user.
var ErrNoUserUID = errors.New("campaign api: user_uid is required")

// APIError is a non-2xx response from the campaign service.
type APIError struct {
	Status int
	Body   string
	Detail string // "detail" field of a JSON error body, if any
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("campaign api: status %d: %s", e.Status, msg)
}

// NotFound reports whether the service answered 404.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// UploadResponse is returned by the service after a contact upload.
type UploadResponse struct {
	Message    string `json:"message"`
	TotalRows  int    `json:"total_rows"`
	CampaignID string `json:"campaign_id"`
}

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the campaign service REST API.
type Client struct {
	baseURL string
	http    HTTPDoer
}

// NewClient returns a client for baseURL. A nil doer gets an *http.Client
// with the given timeout.
func NewClient(baseURL string, doer HTTPDoer, timeout time.Duration) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
	}
}

// GetCampaign fetches GET /campaigns/{id}.
func (c *Client) GetCampaign(ctx context.Context, campaignID, userUID string) (*Summary, error) {
	var s Summary
	if err := c.getJSON(ctx, "/campaigns/"+url.PathEscape(campaignID), userUID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetMonitoringStats fetches GET /monitoring/campaigns/{id}/stats.
func (c *Client) GetMonitoringStats(ctx context.Context, campaignID, userUID string) (*MonitoringSnapshot, error) {
	var m MonitoringSnapshot
	path := "/monitoring/campaigns/" + url.PathEscape(campaignID) + "/stats"
	if err := c.getJSON(ctx, path, userUID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UploadContacts posts a CSV as multipart field "file" to
// /campaigns/{id}/upload-csv.
func (c *Client) UploadContacts(ctx context.Context, campaignID, userUID, fileName string, csv io.Reader) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, csv); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	path := "/campaigns/" + url.PathEscape(campaignID) + "/upload-csv"
	req, err := c.newRequest(ctx, http.MethodPost, path, userUID, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path, userUID string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, userUID, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path, userUID string, body io.Reader) (*http.Request, error) {
	if userUID == "" {
		return nil, ErrNoUserUID
	}
	u := c.baseURL + path + "?" + url.Values{"user_uid": {userUID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("campaign api: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("campaign api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	logging.FromContext(req.Context()).Debug("campaign api call",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{Status: resp.StatusCode, Body: string(raw)}
		var detail struct {
			Detail any `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil {
			if s, ok := detail.Detail.(string); ok {
				apiErr.Detail = s
			}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("campaign api: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
