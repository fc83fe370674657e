package index

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mockIndexer struct {
	mu      sync.Mutex
	indexed map[string]searchdb.Document
	failing bool
}

func (m *mockIndexer) BuildIndex(documents []searchdb.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("index unavailable")
	}
	for _, doc := range documents {
		m.indexed[doc.ID] = doc
	}
	return nil
}

func (m *mockIndexer) DeleteDocuments(documentIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range documentIDs {
		delete(m.indexed, id)
	}
	return nil
}

func (m *mockIndexer) GetAllIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.indexed))
	for id := range m.indexed {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockIndexer) ids() []string {
	ids, _ := m.GetAllIDs()
	sort.Strings(ids)
	return ids
}

func (m *mockIndexer) document(id string) searchdb.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexed[id]
}

type mockTools struct {
	tools   []catalog.Tool
	release chan struct{}
}

func (m *mockTools) List() ([]catalog.Tool, error) {
	if m.release != nil {
		<-m.release
	}
	return m.tools, nil
}

func newTestService(t *testing.T, indexer Indexer, tools ToolSource) *Service {
	t.Helper()
	store, err := kvdb.Open(newTestLogger(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	service := New(ctx, newTestLogger(), indexer, tools, store)
	t.Cleanup(func() {
		cancel()
		<-service.Done()
		store.Close()
	})

	return service
}

func startBuild(t *testing.T, service *Service, requestID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return service.Build(requestID) == nil
	}, time.Second, 5*time.Millisecond, "worker never accepted the request")
}

func waitForStatus(t *testing.T, service *Service, requestID string, expected int) {
	t.Helper()
	require.Eventually(t, func() bool {
		status, err := service.GetStatus(requestID)
		return err == nil && status == expected
	}, 2*time.Second, 5*time.Millisecond, "request never reached status %d", expected)
}

func manyTools(n int) []catalog.Tool {
	tools := make([]catalog.Tool, n)
	for i := range tools {
		tools[i] = catalog.Tool{ID: "tool-" + strconv.Itoa(i), ToolName: "Tool " + strconv.Itoa(i), Category: "video"}
	}
	return tools
}

func TestBuildIndexesToolsAndRemovesStaleDocuments(t *testing.T) {
	assert := require.New(t)
	indexer := &mockIndexer{indexed: map[string]searchdb.Document{
		"deleted-tool": {ID: "deleted-tool"},
	}}
	tools := &mockTools{tools: []catalog.Tool{
		{ID: "a", ToolName: "Runway", Category: "video"},
		{ID: "b", ToolName: "Midjourney", Category: "image"},
	}}
	service := newTestService(t, indexer, tools)

	startBuild(t, service, "request-1")
	waitForStatus(t, service, "request-1", ProgressStatusComplete)

	assert.Equal([]string{"a", "b"}, indexer.ids())
	assert.Equal("Runway", indexer.document("a").Name)
}

func TestBuildWithManyTools(t *testing.T) {
	indexer := &mockIndexer{indexed: map[string]searchdb.Document{}}
	service := newTestService(t, indexer, &mockTools{tools: manyTools(250)})

	startBuild(t, service, "request-1")
	waitForStatus(t, service, "request-1", ProgressStatusComplete)

	require.Len(t, indexer.ids(), 250)
}

func TestBuildRejectsConcurrentRequests(t *testing.T) {
	assert := require.New(t)
	tools := &mockTools{tools: manyTools(3), release: make(chan struct{})}
	service := newTestService(t, &mockIndexer{indexed: map[string]searchdb.Document{}}, tools)

	startBuild(t, service, "first")

	err := service.Build("second")
	assert.ErrorIs(err, ErrIndexingInProgress)

	status, err := service.GetStatus("first")
	assert.NoError(err)
	assert.Equal(ProgressStatusQueued, status)

	close(tools.release)
	waitForStatus(t, service, "first", ProgressStatusComplete)
}

func TestBuildFailureIsRecorded(t *testing.T) {
	indexer := &mockIndexer{indexed: map[string]searchdb.Document{}, failing: true}
	service := newTestService(t, indexer, &mockTools{tools: manyTools(2)})

	startBuild(t, service, "request-1")

	waitForStatus(t, service, "request-1", ProgressStatusFailed)
}

func TestGetStatusUnknownRequest(t *testing.T) {
	service := newTestService(t, &mockIndexer{indexed: map[string]searchdb.Document{}}, &mockTools{})

	_, err := service.GetStatus("missing")

	require.ErrorIs(t, err, ErrRequestNotFound)
}

var progressTestCases = []struct {
	name     string
	done     int
	total    int
	expected int
}{
	{name: "NothingDone", done: 0, total: 10, expected: 20},
	{name: "NothingToDo", done: 0, total: 0, expected: 20},
	{name: "Halfway", done: 5, total: 10, expected: 60},
	{name: "AllDone", done: 10, total: 10, expected: 100},
	{name: "Overshoot", done: 12, total: 10, expected: 100},
}

func TestGetProgressPercentage(t *testing.T) {
	for _, testCase := range progressTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, getProgressPercentage(testCase.done, testCase.total, ProgressStatusStep2, ProgressStatusComplete))
		})
	}
}

func TestWorkerStopsOnlyAfterRunningRebuildReturns(t *testing.T) {
	assert := require.New(t)
	store, err := kvdb.Open(newTestLogger(), filepath.Join(t.TempDir(), "index.db"))
	assert.NoError(err)
	t.Cleanup(func() { store.Close() })

	indexer := &mockIndexer{indexed: map[string]searchdb.Document{}}
	tools := &mockTools{
		tools:   []catalog.Tool{{ID: "a", ToolName: "Sora", Category: "video"}},
		release: make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	service := New(ctx, newTestLogger(), indexer, tools, store)
	startBuild(t, service, "req-1")

	cancel()
	assert.Never(func() bool {
		select {
		case <-service.Done():
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond, "worker stopped while a rebuild was still running")

	close(tools.release)
	select {
	case <-service.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the rebuild returned")
	}

	status, err := service.GetStatus("req-1")
	assert.NoError(err)
	assert.Equal(ProgressStatusFailed, status, "a cancelled rebuild should be marked failed")
	assert.Empty(indexer.ids(), "nothing should be indexed after cancellation")
}
