package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-crm/internal/listview"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Load(ctx, "leads")
	require.ErrorIs(t, err, listview.ErrStateNotFound)

	buf := []byte(`{"page":2}`)
	require.NoError(t, m.Save(ctx, "leads", buf))
	buf[2] = 'X'

	got, err := m.Load(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, `{"page":2}`, string(got))
}

func TestRedisRoundTripWithTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedis(client, "crm:list", time.Hour)

	_, err := store.Load(ctx, "leads")
	require.ErrorIs(t, err, listview.ErrStateNotFound)

	require.NoError(t, store.Save(ctx, "leads", []byte(`{"page":3}`)))
	assert.True(t, mr.Exists("crm:list:leads"))
	assert.Equal(t, time.Hour, mr.TTL("crm:list:leads"))

	got, err := store.Load(ctx, "leads")
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":3}`, string(got))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, "leads")
	assert.ErrorIs(t, err, listview.ErrStateNotFound)
}

func TestRedisLoadSlidesTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedis(client, "crm:list", time.Hour)
	require.NoError(t, store.Save(ctx, "leads", []byte(`{"page":3}`)))

	mr.FastForward(45 * time.Minute)
	assert.Equal(t, 15*time.Minute, mr.TTL("crm:list:leads"))
	_, err := store.Load(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL("crm:list:leads"))

	mr.FastForward(45 * time.Minute)
	got, err := store.Load(ctx, "leads")
	require.NoError(t, err, "reads keep the state alive")
	assert.JSONEq(t, `{"page":3}`, string(got))
}

func TestRedisScopedKeys(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedis(client, "", 0)

	alice := store.Scoped("sess-a")
	bob := store.Scoped("sess-b")
	require.NoError(t, alice.Save(ctx, "leads", []byte(`{"search":"acme"}`)))

	assert.True(t, mr.Exists("listview:sess-a:leads"))
	_, err := bob.Load(ctx, "leads")
	assert.ErrorIs(t, err, listview.ErrStateNotFound)
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	store := NewRedis(client, "crm:list", 0)
	mr.Close()

	_, err := store.Load(ctx, "leads")
	require.Error(t, err)
	assert.NotErrorIs(t, err, listview.ErrStateNotFound)
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "views.json")
	f := NewFile(path)

	_, err := f.Load(ctx, "leads")
	require.ErrorIs(t, err, listview.ErrStateNotFound)

	require.NoError(t, f.Save(ctx, "leads", []byte(`{"page":2}`)))
	require.NoError(t, f.Save(ctx, "vendors", []byte(`{"search":"acme"}`)))

	reopened := NewFile(path)
	got, err := reopened.Load(ctx, "leads")
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":2}`, string(got))
	got, err = reopened.Load(ctx, "vendors")
	require.NoError(t, err)
	assert.JSONEq(t, `{"search":"acme"}`, string(got))
}

func TestFileRejectsInvalidJSON(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "views.json"))
	assert.Error(t, f.Save(context.Background(), "leads", []byte("{nope")))
}

func TestFileCorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "views.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	f := NewFile(path)

	_, err := f.Load(ctx, "leads")
	require.Error(t, err)
	assert.NotErrorIs(t, err, listview.ErrStateNotFound)

	require.NoError(t, f.Save(ctx, "leads", []byte(`{"page":1}`)))
	got, err := f.Load(ctx, "leads")
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":1}`, string(got))
}

func TestStoreOverFile(t *testing.T) {
	ctx := context.Background()
	f := NewFile(filepath.Join(t.TempDir(), "views.json"))

	s := listview.NewStore(ctx, listview.StoreConfig{Key: "products", Persister: f})
	s.SetExtraFilter(ctx, "isActive", "true")

	restored := listview.NewStore(ctx, listview.StoreConfig{Key: "products", Persister: f})
	assert.Equal(t, "true", restored.State().ExtraFilters["isActive"])
}
