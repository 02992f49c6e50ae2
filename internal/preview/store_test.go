package preview

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "campaign_csv_preview_b", []byte(`{"n":2}`)))
	require.NoError(t, s.Set(ctx, "campaign_csv_preview_a", []byte(`{"n":1}`)))
	require.NoError(t, s.Set(ctx, "campaign_local_config_a", []byte(`{"n":3}`)))

	got, err := s.Get(ctx, "campaign_csv_preview_a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(got))

	require.NoError(t, s.Set(ctx, "campaign_csv_preview_a", []byte(`{"n":10}`)))
	got, err = s.Get(ctx, "campaign_csv_preview_a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":10}`, string(got))

	keys, err := s.Keys(ctx, "campaign_csv_preview_")
	require.NoError(t, err)
	assert.Equal(t, []string{"campaign_csv_preview_a", "campaign_csv_preview_b"}, keys)

	require.NoError(t, s.Delete(ctx, "campaign_csv_preview_a"))
	require.NoError(t, s.Delete(ctx, "campaign_csv_preview_a"), "deleting twice is fine")
	_, err = s.Get(ctx, "campaign_csv_preview_a")
	assert.ErrorIs(t, err, ErrNotFound)

	keys, err = s.Keys(ctx, "nothing_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.Set(context.Background(), "k", v))
	v[0] = 'x'

	got, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "outreach:", ttl), mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t, 0)
	storeContract(t, s)
}

func TestRedisStore_NamespaceAndTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "campaign_csv_preview_x", []byte(`{}`)))
	assert.True(t, mr.Exists("outreach:campaign_csv_preview_x"))
	assert.Equal(t, time.Hour, mr.TTL("outreach:campaign_csv_preview_x"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(ctx, "campaign_csv_preview_x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newRedisStore(t, 0)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

// fakeDB is a DBTX over a map that understands the statements PostgresStore
// issues.
type fakeDB struct {
	rows    map[string]string
	execErr error
	stmts   []string
	cutoff  time.Time
}

func newFakeDB() *fakeDB { return &fakeDB{rows: make(map[string]string)} }

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.stmts = append(f.stmts, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	switch sql {
	case upsertEntry:
		f.rows[args[0].(string)] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case deleteEntry:
		delete(f.rows, args[0].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	case pruneEntries:
		f.cutoff = args[0].(time.Time)
		return pgconn.NewCommandTag("DELETE 3"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	prefix := args[0].(string)
	var keys []string
	for k := range f.rows {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &fakeRows{keys: keys, i: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	return fakeRow{value: v, ok: ok}
}

type fakeRow struct {
	value string
	ok    bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.ok {
		return pgx.ErrNoRows
	}
	*dest[0].(*[]byte) = []byte(r.value)
	return nil
}

type fakeRows struct {
	keys []string
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { r.i++; return r.i < len(r.keys) }
func (r *fakeRows) Values() ([]any, error)                       { return []any{r.keys[r.i]}, nil }
func (r *fakeRows) RawValues() [][]byte                          { return [][]byte{[]byte(r.keys[r.i])} }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.keys[r.i]
	return nil
}

func TestPostgresStore(t *testing.T) {
	db := newFakeDB()
	s := NewPostgresStore(db)
	require.NoError(t, s.EnsureSchema(context.Background()))
	require.Len(t, db.stmts, 2)
	assert.Contains(t, db.stmts[0], "CREATE TABLE IF NOT EXISTS preview_cache")
	assert.Contains(t, db.stmts[1], "TYPE JSON USING")

	storeContract(t, s)
}

func TestPostgresStore_ValueColumnKeepsKeyOrder(t *testing.T) {
	// JSONB normalizes key order; only JSON keeps the document as written.
	assert.Regexp(t, `value\s+JSON NOT NULL`, createPreviewTable)
	assert.NotContains(t, strings.ToUpper(createPreviewTable), "JSONB")
}

func TestPostgresStore_WrapsErrors(t *testing.T) {
	db := newFakeDB()
	db.execErr = errors.New("connection refused")
	s := NewPostgresStore(db)

	err := s.Set(context.Background(), "k", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save preview entry k")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPostgresStore_Prune(t *testing.T) {
	db := newFakeDB()
	s := NewPostgresStore(db)
	cutoff := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	n, err := s.Prune(context.Background(), cutoff)

	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, cutoff, db.cutoff)

	db.execErr = errors.New("timeout")
	_, err = s.Prune(context.Background(), cutoff)
	assert.ErrorContains(t, err, "prune preview entries")
}
