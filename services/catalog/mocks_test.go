package catalog

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mockIndexer struct {
	indexed map[string]searchdb.Document
	deleted []string
	fail    bool
}

func newMockIndexer() *mockIndexer {
	return &mockIndexer{indexed: make(map[string]searchdb.Document)}
}

func (m *mockIndexer) BuildIndex(documents []searchdb.Document) error {
	if m.fail {
		return errors.New("index unavailable")
	}
	for _, doc := range documents {
		m.indexed[doc.ID] = doc
	}
	return nil
}

func (m *mockIndexer) DeleteDocuments(documentIDs []string) error {
	if m.fail {
		return errors.New("index unavailable")
	}
	for _, id := range documentIDs {
		delete(m.indexed, id)
		m.deleted = append(m.deleted, id)
	}
	return nil
}

// newTestService returns a catalog backed by a temporary bbolt file whose clock advances one
// minute per call.
func newTestService(t *testing.T) (*Service, *mockIndexer) {
	t.Helper()
	store, err := kvdb.Open(newTestLogger(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	indexer := newMockIndexer()
	service := New(newTestLogger(), store, indexer)

	clock := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return service, indexer
}
