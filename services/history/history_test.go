package history

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/services/prompt"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store, err := kvdb.Open(log, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := New(log, store)
	clock := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return service
}

func TestRecordAndGet(t *testing.T) {
	assert := require.New(t)
	service := newTestService(t)
	req := prompt.Request{Purpose: "テスト動画", SceneDescription: "美しい風景", OutputLanguage: prompt.English}

	recorded, err := service.Record(req, "A sweeping aerial shot")
	assert.NoError(err)
	assert.NotEmpty(recorded.ID)

	fetched, err := service.Get(recorded.ID)
	assert.NoError(err)
	assert.Equal(recorded, fetched)
	assert.Equal(prompt.English, fetched.Request.OutputLanguage)
}

func TestGetMissingEntry(t *testing.T) {
	service := newTestService(t)

	_, err := service.Get("missing")

	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestListIsNewestFirstAndLimited(t *testing.T) {
	assert := require.New(t)
	service := newTestService(t)
	req := prompt.Request{Purpose: "p", SceneDescription: "s"}

	for _, text := range []string{"one", "two", "three"} {
		_, err := service.Record(req, text)
		assert.NoError(err)
	}

	entries, err := service.List(2)
	assert.NoError(err)
	assert.Len(entries, 2)
	assert.Equal("three", entries[0].Prompt)
	assert.Equal("two", entries[1].Prompt)

	all, err := service.List(0)
	assert.NoError(err)
	assert.Len(all, 3)
}
