package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/outreach/internal/campaign"
	"github.com/JonMunkholm/outreach/internal/contacts"
	"github.com/JonMunkholm/outreach/internal/logging"
	"github.com/JonMunkholm/outreach/internal/preview"
	"github.com/JonMunkholm/outreach/internal/search"
)

var (
	ErrBackendNotConfigured = errors.New("campaign backend not configured")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnknownCountry       = errors.New("unknown country")
	ErrNoContacts           = errors.New("no valid contacts in file")
)

// CampaignBackend is the part of the campaign service the core calls.
// *campaign.Client implements it.
type CampaignBackend interface {
	GetCampaign(ctx context.Context, campaignID, userUID string) (*campaign.Summary, error)
	GetMonitoringStats(ctx context.Context, campaignID, userUID string) (*campaign.MonitoringSnapshot, error)
	UploadContacts(ctx context.Context, campaignID, userUID, fileName string, csv io.Reader) (*campaign.UploadResponse, error)
}

// ServiceConfig holds the tunables Service needs.
type ServiceConfig struct {
	DefaultCountry string
	FuzzyThreshold float64
	MaxFileSize    int64 // bytes; 0 means unlimited
	MaxConcurrent  int
	MaxWait        time.Duration
}

// Service is the entry point for every contact and campaign operation.
// It is safe for concurrent use.
type Service struct {
	cfg     ServiceConfig
	limiter *UploadLimiter
	cache   *preview.Cache
	backend CampaignBackend
}

// NewService builds a Service. cache may be nil for an in-memory cache and
// backend may be nil when no campaign service is configured.
func NewService(cfg ServiceConfig, cache *preview.Cache, backend CampaignBackend) *Service {
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = contacts.DefaultCountry
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = search.DefaultThreshold
	}
	if cache == nil {
		cache = preview.NewCache(preview.NewMemoryStore(), 0)
	}
	return &Service{
		cfg:     cfg,
		limiter: NewUploadLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		cache:   cache,
		backend: backend,
	}
}

// FileRequest is one uploaded contact file.
type FileRequest struct {
	CampaignID     string // optional for Analyze and Dedupe
	UserUID        string // falls back to UserUIDFromContext
	FileName       string
	DefaultCountry string // falls back to the service default
	Body           io.Reader
}

// AnalyzeResult is the outcome of Analyze.
type AnalyzeResult struct {
	ID               string                `json:"id"`
	FileName         string                `json:"fileName"`
	Result           *contacts.ParseResult `json:"result"`
	Preview          *preview.PreviewCache `json:"preview,omitempty"`
	ProcessingTimeMs int64                 `json:"processingTimeMs"`
}

// Analyze parses a contact file. With a CampaignID the preview is saved so
// later requests can show or search it.
func (s *Service) Analyze(ctx context.Context, req FileRequest) (*AnalyzeResult, error) {
	start := time.Now()
	res, err := s.parse(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &AnalyzeResult{
		ID:       uuid.NewString(),
		FileName: req.FileName,
		Result:   res,
	}
	if req.CampaignID != "" {
		p, err := s.cache.SavePreview(ctx, req.CampaignID, req.FileName, res)
		if err != nil {
			return nil, fmt.Errorf("save preview: %w", err)
		}
		out.Preview = p
	}
	out.ProcessingTimeMs = time.Since(start).Milliseconds()

	logging.WithFields(ctx,
		"analysis_id", out.ID,
		"campaign_id", req.CampaignID,
		"file", req.FileName,
	).Info("contact file analyzed",
		"rows", res.TotalRows,
		"contacts", res.TotalContacts,
		"duplicates", res.Duplicates.Count,
		"invalid", res.Invalid.Count,
		"duration_ms", out.ProcessingTimeMs,
	)
	return out, nil
}

// DedupedFile is a cleaned contact file ready to download or upload.
type DedupedFile struct {
	FileName string
	Content  []byte
	Result   *contacts.ParseResult
}

// Dedupe parses a file and re-exports its unique, normalized contacts.
func (s *Service) Dedupe(ctx context.Context, req FileRequest) (*DedupedFile, error) {
	res, err := s.parse(ctx, req)
	if err != nil {
		return nil, err
	}
	return exportFile(req.FileName, res)
}

func exportFile(name string, res *contacts.ParseResult) (*DedupedFile, error) {
	var buf bytes.Buffer
	if err := contacts.WriteCSV(&buf, res.Contacts, res.FieldNames); err != nil {
		return nil, fmt.Errorf("export contacts: %w", err)
	}
	return &DedupedFile{
		FileName: contacts.DedupedFileName(name),
		Content:  buf.Bytes(),
		Result:   res,
	}, nil
}

// UploadResult summarizes a file sent to the campaign service.
type UploadResult struct {
	CampaignID        string                   `json:"campaignId"`
	FileName          string                   `json:"fileName"`
	TotalRows         int                      `json:"totalRows"`
	TotalContacts     int                      `json:"totalContacts"`
	DuplicatesRemoved int                      `json:"duplicatesRemoved"`
	InvalidRows       int                      `json:"invalidRows"`
	Backend           *campaign.UploadResponse `json:"backend"`
}

// UploadContacts cleans a file and uploads the result to the campaign
// service. The saved preview for the campaign is refreshed on success.
func (s *Service) UploadContacts(ctx context.Context, req FileRequest) (*UploadResult, error) {
	if s.backend == nil {
		return nil, ErrBackendNotConfigured
	}
	if req.CampaignID == "" {
		return nil, preview.ErrNoCampaignID
	}
	userUID := s.userUID(ctx, req.UserUID)

	res, err := s.parse(ctx, req)
	if err != nil {
		return nil, err
	}
	if res.TotalContacts == 0 {
		return nil, ErrNoContacts
	}
	file, err := exportFile(req.FileName, res)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.UploadContacts(ctx, req.CampaignID, userUID, file.FileName, bytes.NewReader(file.Content))
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "campaign_id", req.CampaignID, "file", file.FileName)
	if _, err := s.cache.SavePreview(ctx, req.CampaignID, req.FileName, res); err != nil {
		logger.Warn("refresh preview after upload failed", "error", err)
	}
	logger.Info("contacts uploaded",
		"contacts", res.TotalContacts,
		"duplicates", res.Duplicates.Count,
		"backend_rows", resp.TotalRows,
	)

	return &UploadResult{
		CampaignID:        req.CampaignID,
		FileName:          file.FileName,
		TotalRows:         res.TotalRows,
		TotalContacts:     res.TotalContacts,
		DuplicatesRemoved: res.Duplicates.Count,
		InvalidRows:       res.Invalid.Count,
		Backend:           resp,
	}, nil
}

// Progress fetches a campaign and its live counters and derives progress.
// Live counters are optional: if that call fails the summary counts are used.
func (s *Service) Progress(ctx context.Context, campaignID, userUID string) (*campaign.ProgressView, error) {
	if s.backend == nil {
		return nil, ErrBackendNotConfigured
	}
	userUID = s.userUID(ctx, userUID)

	summary, err := s.backend.GetCampaign(ctx, campaignID, userUID)
	if err != nil {
		return nil, err
	}
	stats, err := s.backend.GetMonitoringStats(ctx, campaignID, userUID)
	if err != nil {
		logging.FromContext(ctx).Warn("monitoring stats unavailable, using campaign counters",
			"campaign_id", campaignID,
			"error", err,
		)
		stats = nil
	}

	v := campaign.Progress(*summary, stats)
	return &v, nil
}

// SearchContacts filters list. A threshold <= 0 uses the configured one.
func (s *Service) SearchContacts(list []contacts.Contact, query string, fields []string, threshold float64) []contacts.Contact {
	if threshold <= 0 {
		threshold = s.cfg.FuzzyThreshold
	}
	return contacts.SearchThreshold(list, query, threshold, fields...)
}

// SearchPreview searches the saved preview of a campaign.
func (s *Service) SearchPreview(ctx context.Context, campaignID, query string, fields []string, threshold float64) ([]contacts.Contact, error) {
	p, err := s.cache.LoadPreview(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.SearchContacts(p.Preview, query, fields, threshold), nil
}

func (s *Service) Preview(ctx context.Context, campaignID string) (*preview.PreviewCache, error) {
	return s.cache.LoadPreview(ctx, campaignID)
}

func (s *Service) DeletePreview(ctx context.Context, campaignID string) error {
	return s.cache.DeletePreview(ctx, campaignID)
}

func (s *Service) PreviewCampaignIDs(ctx context.Context) ([]string, error) {
	return s.cache.PreviewCampaignIDs(ctx)
}

func (s *Service) ClearPreviews(ctx context.Context) (int, error) {
	return s.cache.ClearPreviews(ctx)
}

func (s *Service) SaveConfig(ctx context.Context, cfg preview.CampaignConfig) (*preview.CampaignConfig, error) {
	return s.cache.SaveConfig(ctx, cfg)
}

func (s *Service) CampaignConfig(ctx context.Context, campaignID string) (*preview.CampaignConfig, error) {
	return s.cache.LoadConfig(ctx, campaignID)
}

func (s *Service) DeleteConfig(ctx context.Context, campaignID string) error {
	return s.cache.DeleteConfig(ctx, campaignID)
}

// LimiterStatus reports parse-slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight parses finish or ctx ends.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// BackendConfigured reports whether campaign-service calls are possible.
func (s *Service) BackendConfigured() bool {
	return s.backend != nil
}

func (s *Service) parse(ctx context.Context, req FileRequest) (*contacts.ParseResult, error) {
	country := req.DefaultCountry
	if country == "" {
		country = s.cfg.DefaultCountry
	}
	if _, ok := contacts.LookupCountry(country); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	body := req.Body
	if s.cfg.MaxFileSize > 0 {
		body = &sizeLimitReader{r: body, remaining: s.cfg.MaxFileSize, limit: s.cfg.MaxFileSize}
	}
	return contacts.ParseReader(body, contacts.Options{DefaultCountry: country})
}

func (s *Service) userUID(ctx context.Context, uid string) string {
	if uid != "" {
		return uid
	}
	return UserUIDFromContext(ctx)
}

// sizeLimitReader fails with ErrFileTooLarge once more than limit bytes have
// been read, rather than silently truncating like io.LimitReader.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
	limit     int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, l.limit)
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, l.limit)
	}
	return n, err
}
