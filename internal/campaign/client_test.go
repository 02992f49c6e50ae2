package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/campaigns/c-1", r.URL.Path)
		assert.Equal(t, "user 1", r.URL.Query().Get("user_uid"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":               "c-1",
			"name":             "March leads",
			"status":           "active",
			"total_contacts":   10,
			"successful_calls": 4,
			"failed_calls":     1,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil, 0)
	got, err := c.GetCampaign(context.Background(), "c-1", "user 1")
	require.NoError(t, err)

	assert.Equal(t, "March leads", got.Name)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 10, got.TotalContacts)
	assert.Equal(t, 50, Progress(*got, nil).Percent)
}

func TestClient_GetCampaign_LenientCounters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"active","total_contacts":10.0,"successful_calls":"4","failed_calls":null}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil, 0).GetCampaign(context.Background(), "c1", "u")
	require.NoError(t, err)

	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 10, got.TotalContacts)
	assert.Equal(t, 4, got.SuccessfulCalls)
	assert.Equal(t, 0, got.FailedCalls)
	assert.Equal(t, 40, Progress(*got, nil).Percent)
}

func TestClient_GetMonitoringStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/monitoring/campaigns/c-1/stats", r.URL.Path)
		_, _ = io.WriteString(w, `{"pending_contacts":1,"in_progress_contacts":2,"completed_contacts":3,"failed_contacts":4}`)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil, 0).GetMonitoringStats(context.Background(), "c-1", "u")
	require.NoError(t, err)
	assert.Equal(t, MonitoringSnapshot{PendingContacts: 1, InProgressContacts: 2, CompletedContacts: 3, FailedContacts: 4}, *got)
}

func TestClient_UploadContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/campaigns/c-9/upload-csv", r.URL.Path)
		assert.Equal(t, "u", r.URL.Query().Get("user_uid"))

		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "leads_deduped.csv", hdr.Filename)
		assert.Equal(t, "name,phone_number\na,+919122833772\n", string(body))

		_, _ = io.WriteString(w, `{"message":"ok","total_rows":1,"campaign_id":"c-9"}`)
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil, 0).UploadContacts(context.Background(), "c-9", "u",
		"leads_deduped.csv", strings.NewReader("name,phone_number\na,+919122833772\n"))
	require.NoError(t, err)
	assert.Equal(t, UploadResponse{Message: "ok", TotalRows: 1, CampaignID: "c-9"}, *resp)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Campaign not found"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).GetCampaign(context.Background(), "missing", "u")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Campaign not found", apiErr.Detail)
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "campaign api: status 404: Campaign not found", err.Error())
}

func TestClient_APIErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil, 0).GetMonitoringStats(context.Background(), "c", "u")
	assert.EqualError(t, err, "campaign api: status 502: boom")
}

func TestClient_RequiresUserUID(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", nil, 0).GetCampaign(context.Background(), "c", "")
	assert.ErrorIs(t, err, ErrNoUserUID)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, nil, 0).GetCampaign(ctx, "c", "u")
	assert.ErrorIs(t, err, context.Canceled)
}
