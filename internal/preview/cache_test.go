package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/outreach/internal/contacts"
)

func parsed(t *testing.T, csv string) *contacts.ParseResult {
	t.Helper()
	res, err := contacts.Parse(csv, contacts.Options{DefaultCountry: "IN"})
	require.NoError(t, err)
	return res
}

func fixedCache(store Store, limit int) *Cache {
	c := NewCache(store, limit)
	c.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestCache_SaveLoadPreview(t *testing.T) {
	ctx := context.Background()
	c := fixedCache(NewMemoryStore(), 2)
	res := parsed(t, "Name,phone\namol,+917795957544\ndup,7795957544\nshashwat,9122833772\npriya,+14155550123\n")

	saved, err := c.SavePreview(ctx, "c-1", "leads.csv", res)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Len(t, saved.Preview, 2, "preview is capped")

	got, err := c.LoadPreview(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "c-1", got.CampaignID)
	assert.Equal(t, "leads.csv", got.FileName)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), got.UploadedAt)
	assert.Equal(t, 4, got.TotalRows)
	assert.Equal(t, 3, got.TotalContacts)
	assert.Equal(t, 1, got.DuplicatesFound)
	assert.Equal(t, []string{"+917795957544"}, got.DuplicateNumbers)
	assert.Equal(t, []string{"Name", "phone_number"}, got.FieldNames)
	assert.Equal(t, "phone_number", got.PhoneColumnName)
	assert.Equal(t, "phone", got.SourcePhoneColumn)
	require.Len(t, got.Preview, 2)
	assert.Equal(t, []string{"Name", "phone_number"}, got.Preview[0].Keys())
	assert.Equal(t, "+919122833772", got.Preview[1].PhoneNumber())
}

func TestCache_PreviewLifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewCache(NewMemoryStore(), 0)
	res := parsed(t, "phone\n9122833772\n")

	for _, id := range []string{"b", "a"} {
		_, err := c.SavePreview(ctx, id, "f.csv", res)
		require.NoError(t, err)
	}
	_, err := c.SaveConfig(ctx, CampaignConfig{CampaignID: "a", AssistantID: "as-1", TrunkName: "t"})
	require.NoError(t, err)

	ids, err := c.PreviewCampaignIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, c.DeletePreview(ctx, "a"))
	_, err = c.LoadPreview(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := c.ClearPreviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ids, err = c.PreviewCampaignIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = c.LoadConfig(ctx, "a")
	assert.NoError(t, err, "clearing previews keeps configs")
}

func TestCache_CorruptEntryIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, previewKeyPrefix+"x", []byte("{not json")))

	_, err := NewCache(store, 0).LoadPreview(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_Config(t *testing.T) {
	ctx := context.Background()
	c := fixedCache(NewMemoryStore(), 0)

	_, err := c.SaveConfig(ctx, CampaignConfig{})
	assert.ErrorIs(t, err, ErrNoCampaignID)

	saved, err := c.SaveConfig(ctx, CampaignConfig{CampaignID: "c-1", AssistantID: "as-9", TrunkName: "main", Provider: "vobiz"})
	require.NoError(t, err)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := c.LoadConfig(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, *saved, *got)

	require.NoError(t, c.DeleteConfig(ctx, "c-1"))
	_, err = c.LoadConfig(ctx, "c-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_RequiresCampaignID(t *testing.T) {
	_, err := NewCache(NewMemoryStore(), 0).SavePreview(context.Background(), "", "f.csv", &contacts.ParseResult{})
	assert.ErrorIs(t, err, ErrNoCampaignID)
}

func TestCache_OverRedis(t *testing.T) {
	s, _ := newRedisStore(t, time.Minute)
	c := NewCache(s, 0)
	ctx := context.Background()

	_, err := c.SavePreview(ctx, "r-1", "f.csv", parsed(t, "mobile,name\n07795957544,x\n"))
	require.NoError(t, err)

	got, err := c.LoadPreview(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "+917795957544", got.Preview[0].PhoneNumber())
	assert.Equal(t, "mobile", got.SourcePhoneColumn)
}

func TestCache_OverPostgresKeepsRowOrder(t *testing.T) {
	s := NewPostgresStore(newFakeDB())
	c := NewCache(s, 0)
	ctx := context.Background()

	_, err := c.SavePreview(ctx, "p-1", "f.csv", parsed(t, "zone,name,phone,a\nN,amol,9122833772,x\n"))
	require.NoError(t, err)

	got, err := c.LoadPreview(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, got.Preview, 1)
	assert.Equal(t, []string{"zone", "name", "phone_number", "a"}, got.Preview[0].Keys())
	assert.Equal(t, got.FieldNames, got.Preview[0].Keys())
}

func TestCache_PreviewDoesNotShareRows(t *testing.T) {
	c := NewCache(NewMemoryStore(), 5)
	res := parsed(t, "name,phone\namol,9122833772\n")

	p := c.NewPreview("c-1", "f.csv", res)
	p.Preview[0].Set("name", "changed")

	assert.Equal(t, "amol", res.Contacts[0].Value("name"))
	assert.Equal(t, 2, p.Preview[0].Line)
}
