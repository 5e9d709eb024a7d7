package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)}
}

func TestStore_GetSet(t *testing.T) {
	clock := newClock()
	s := New("", nil, WithClock(clock.Now))

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, s.Set("key", "value", time.Hour))

		var got string
		require.True(t, s.Get("key", &got))
		assert.Equal(t, "value", got)
	})

	t.Run("missing key", func(t *testing.T) {
		var got string
		assert.False(t, s.Get("missing", &got))
	})

	t.Run("overwrite resets ttl", func(t *testing.T) {
		require.NoError(t, s.Set("k", 1, time.Minute))
		clock.Advance(50 * time.Second)
		require.NoError(t, s.Set("k", 2, time.Minute))
		clock.Advance(50 * time.Second)

		var got int
		require.True(t, s.Get("k", &got))
		assert.Equal(t, 2, got)
	})

	t.Run("wrong destination type", func(t *testing.T) {
		require.NoError(t, s.Set("str", "text", time.Hour))
		var got int
		assert.False(t, s.Get("str", &got))
	})
}

func TestStore_TTLExpiry(t *testing.T) {
	clock := newClock()
	s := New("", nil, WithClock(clock.Now))

	require.NoError(t, s.Set("teachers", map[int]string{7: "A. Kowalski"}, time.Hour))

	clock.Advance(59 * time.Minute)
	var got map[int]string
	require.True(t, s.Get("teachers", &got), "entry must be served before ttl")
	assert.Equal(t, map[int]string{7: "A. Kowalski"}, got)

	clock.Advance(2 * time.Minute)
	got = nil
	assert.False(t, s.Get("teachers", &got), "entry must not be served after ttl")
	assert.Nil(t, got)
}

func TestStore_RoundTrip(t *testing.T) {
	clock := newClock()
	path := filepath.Join(t.TempDir(), "nested", "cache.json")

	type record struct {
		ID   int            `json:"id"`
		Name string         `json:"name"`
		Data map[string]int `json:"data"`
	}

	s := Open(path, nil, WithClock(clock.Now))
	require.Equal(t, 0, s.Len())
	require.NoError(t, s.Set("teachers", map[int]string{1: "a", 2: "b"}, 24*time.Hour))
	require.NoError(t, s.Set("teachers__1", record{ID: 1, Name: "a", Data: map[string]int{"x": 3}}, time.Hour))
	require.NoError(t, s.Set("short", "gone", time.Minute))
	require.NoError(t, s.Close())

	clock.Advance(30 * time.Minute)
	reloaded := Open(path, nil, WithClock(clock.Now))

	var list map[int]string
	require.True(t, reloaded.Get("teachers", &list))
	assert.Equal(t, map[int]string{1: "a", 2: "b"}, list)

	var rec record
	require.True(t, reloaded.Get("teachers__1", &rec))
	assert.Equal(t, record{ID: 1, Name: "a", Data: map[string]int{"x": 3}}, rec)

	var short string
	assert.False(t, reloaded.Get("short", &short))

	clock.Advance(time.Hour)
	assert.False(t, reloaded.Get("teachers__1", &rec), "ttl keeps counting across restarts")
}

func TestStore_FlushDropsExpired(t *testing.T) {
	clock := newClock()
	path := filepath.Join(t.TempDir(), "cache.json")

	s := New(path, nil, WithClock(clock.Now))
	require.NoError(t, s.Set("old", 1, time.Second))
	require.NoError(t, s.Set("new", 2, time.Hour))
	clock.Advance(time.Minute)
	require.NoError(t, s.Flush())

	reloaded := Open(path, nil, WithClock(clock.Now))
	assert.Equal(t, 1, reloaded.Len())
}

func TestOpen_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "absent.json"), nil)
	assert.Equal(t, 0, s.Len())
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := Open(path, nil)
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Set("k", "v", time.Hour))
	require.NoError(t, s.Close())

	var got string
	assert.True(t, Open(path, nil).Get("k", &got))
	assert.Equal(t, "v", got)
}

func TestOpen_NullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	s := Open(path, nil)
	assert.Equal(t, 0, s.Len())
	require.NoError(t, s.Set("teachers", 1, time.Hour))

	var got int
	require.True(t, s.Get("teachers", &got))
	assert.Equal(t, 1, got)
}

func TestStore_CloseOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	s := New(path, nil)
	require.NoError(t, s.Set("k", "v", time.Hour))
	require.NoError(t, s.Close())

	require.NoError(t, os.Remove(path))
	require.NoError(t, s.Close())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "second Close must not write again")
}

func TestStore_FlushFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	s := New(filepath.Join(blocker, "cache.json"), nil)
	require.NoError(t, s.Set("k", "v", time.Hour))
	assert.Error(t, s.Close())
}
