package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/outreach/internal/contacts"
)

const (
	previewKeyPrefix = "campaign_csv_preview_"
	configKeyPrefix  = "campaign_local_config_"

	// DefaultPreviewLimit is how many contacts a saved preview keeps.
	DefaultPreviewLimit = 50
)

// ErrNoCampaignID is returned when a record is saved without a campaign.
var ErrNoCampaignID = errors.New("campaign id is required")

// PreviewCache is the stored summary of an analyzed contact file.
type PreviewCache struct {
	ID                string             `json:"id"`
	CampaignID        string             `json:"campaignId"`
	UploadedAt        time.Time          `json:"uploadedAt"`
	FileName          string             `json:"fileName"`
	TotalRows         int                `json:"totalRows"`
	TotalContacts     int                `json:"totalContacts"`
	DuplicatesFound   int                `json:"duplicatesFound"`
	DuplicateNumbers  []string           `json:"duplicateNumbers"`
	InvalidRows       int                `json:"invalidRows"`
	FieldNames        []string           `json:"fieldNames"`
	Preview           []contacts.Contact `json:"preview"`
	PhoneColumnName   string             `json:"phoneColumnName"`
	SourcePhoneColumn string             `json:"sourcePhoneColumn"`
}

// CampaignConfig is the dialing setup an operator picked for a campaign.
type CampaignConfig struct {
	CampaignID  string    `json:"campaignId"`
	AssistantID string    `json:"assistantId"`
	TrunkName   string    `json:"trunkName"`
	Provider    string    `json:"provider,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cache stores previews and campaign configs as JSON in a Store.
type Cache struct {
	store        Store
	previewLimit int
	now          func() time.Time
}

// NewCache returns a Cache over store keeping at most previewLimit contacts
// per preview (DefaultPreviewLimit when <= 0).
func NewCache(store Store, previewLimit int) *Cache {
	if previewLimit <= 0 {
		previewLimit = DefaultPreviewLimit
	}
	return &Cache{store: store, previewLimit: previewLimit, now: time.Now}
}

// NewPreview builds the preview record for a parse result without saving it.
func (c *Cache) NewPreview(campaignID, fileName string, res *contacts.ParseResult) *PreviewCache {
	n := min(len(res.Contacts), c.previewLimit)
	sample := make([]contacts.Contact, n)
	for i, c := range res.Contacts[:n] {
		sample[i] = contacts.Contact{Row: c.Clone(), Line: c.Line}
	}

	return &PreviewCache{
		ID:                uuid.NewString(),
		CampaignID:        campaignID,
		UploadedAt:        c.now().UTC(),
		FileName:          fileName,
		TotalRows:         res.TotalRows,
		TotalContacts:     res.TotalContacts,
		DuplicatesFound:   res.Duplicates.Count,
		DuplicateNumbers:  res.Duplicates.Numbers,
		InvalidRows:       res.Invalid.Count,
		FieldNames:        res.FieldNames,
		Preview:           sample,
		PhoneColumnName:   res.PhoneColumnName,
		SourcePhoneColumn: res.SourcePhoneColumn,
	}
}

// SavePreview stores the preview of res for campaignID, replacing any
// earlier one.
func (c *Cache) SavePreview(ctx context.Context, campaignID, fileName string, res *contacts.ParseResult) (*PreviewCache, error) {
	if campaignID == "" {
		return nil, ErrNoCampaignID
	}
	p := c.NewPreview(campaignID, fileName, res)
	if err := c.put(ctx, previewKeyPrefix+campaignID, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPreview returns the saved preview. Missing and unreadable entries are
// both ErrNotFound.
func (c *Cache) LoadPreview(ctx context.Context, campaignID string) (*PreviewCache, error) {
	var p PreviewCache
	if err := c.get(ctx, previewKeyPrefix+campaignID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Cache) DeletePreview(ctx context.Context, campaignID string) error {
	return c.store.Delete(ctx, previewKeyPrefix+campaignID)
}

// PreviewCampaignIDs lists campaigns that have a saved preview.
func (c *Cache) PreviewCampaignIDs(ctx context.Context) ([]string, error) {
	keys, err := c.store.Keys(ctx, previewKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = strings.TrimPrefix(k, previewKeyPrefix)
	}
	return ids, nil
}

// ClearPreviews deletes every saved preview and returns how many there were.
func (c *Cache) ClearPreviews(ctx context.Context) (int, error) {
	ids, err := c.PreviewCampaignIDs(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := c.DeletePreview(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

// SaveConfig stores cfg, stamping UpdatedAt.
func (c *Cache) SaveConfig(ctx context.Context, cfg CampaignConfig) (*CampaignConfig, error) {
	if cfg.CampaignID == "" {
		return nil, ErrNoCampaignID
	}
	cfg.UpdatedAt = c.now().UTC()
	if err := c.put(ctx, configKeyPrefix+cfg.CampaignID, cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Cache) LoadConfig(ctx context.Context, campaignID string) (*CampaignConfig, error) {
	var cfg CampaignConfig
	if err := c.get(ctx, configKeyPrefix+campaignID, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Cache) DeleteConfig(ctx context.Context, campaignID string) error {
	return c.store.Delete(ctx, configKeyPrefix+campaignID)
}

func (c *Cache) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.store.Set(ctx, key, data)
}

func (c *Cache) get(ctx context.Context, key string, v any) error {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		// A half-written or foreign entry is treated like no entry.
		return ErrNotFound
	}
	return nil
}
