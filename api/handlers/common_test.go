// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/llm"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/retry"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/meghashyamc/toolshelf/services/history"
	"github.com/meghashyamc/toolshelf/services/index"
	"github.com/meghashyamc/toolshelf/services/prompt"
	"github.com/meghashyamc/toolshelf/services/toolsearch"
	"github.com/meghashyamc/toolshelf/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router    *gin.Engine
	catalog   *catalog.Service
	searchDB  *searchdb.BleveDB
	completer *mockCompleter
}

type mockCompleter struct {
	mu           sync.Mutex
	calls        int
	CompleteFunc func(ctx context.Context, req llm.Request) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.CompleteFunc == nil {
		return "A slow aerial shot over a misty valley at dawn", nil
	}
	return m.CompleteFunc(ctx, req)
}

func (m *mockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestLogger() logger.Logger {

	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func setupTestServer(t *testing.T, assert *require.Assertions, generateMiddleware ...gin.HandlerFunc) *testServer {
	t.Helper()
	tempDir := t.TempDir()
	testLogger := newTestLogger()

	searchDB, err := searchdb.Open(testLogger, filepath.Join(tempDir, "tools.bleve"))
	assert.NoError(err, "could not create search database")

	kvDB, err := kvdb.Open(testLogger, filepath.Join(tempDir, "toolshelf.db"))
	assert.NoError(err, "could not create kv database")

	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	ctx, cancel := context.WithCancel(context.Background())
	var indexService *index.Service
	t.Cleanup(func() {
		cancel()
		if indexService != nil {
			<-indexService.Done()
		}
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	completer := &mockCompleter{}
	catalogService := catalog.New(testLogger, kvDB, searchDB)
	promptClient := prompt.NewClient(testLogger, completer, validator, retry.Policy{MaxRetries: 3, InitialDelay: time.Millisecond})

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupTools(router, testLogger, catalogService, validator)
	SetupSearch(router, testLogger, toolsearch.New(testLogger, catalogService, searchDB), validator)
	indexService = index.New(ctx, testLogger, searchDB, catalogService, kvDB)
	SetupIndex(router, testLogger, indexService)
	SetupPrompts(router, testLogger, promptClient, history.New(testLogger, kvDB), validator, generateMiddleware...)

	return &testServer{router: router, catalog: catalogService, searchDB: searchDB, completer: completer}
}

func seedTools(assert *require.Assertions, server *testServer, inputs ...catalog.Input) []*catalog.Tool {
	tools := make([]*catalog.Tool, 0, len(inputs))
	for _, input := range inputs {
		tool, err := server.catalog.Create(input)
		assert.NoError(err, "could not seed tool")
		tools = append(tools, tool)
	}
	return tools
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}

// decodeResponse unmarshals the response envelope into a generic map.
func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder) map[string]any {
	var responseMap map[string]any
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &responseMap), "could not unmarshal response %s", w.Body.String())
	return responseMap
}

// assertSubset checks that every key in expected is present in actual with the same value,
// descending into nested maps and comparing lists element by element.
func assertSubset(assert *require.Assertions, expected any, actual any) {
	switch expectedValue := expected.(type) {
	case map[string]any:
		actualMap, ok := actual.(map[string]any)
		assert.True(ok, "expected an object, got %v", actual)
		for key, value := range expectedValue {
			actualValue, ok := actualMap[key]
			assert.True(ok, "missing key %q in %v", key, actualMap)
			assertSubset(assert, value, actualValue)
		}
	case []any:
		actualList, ok := actual.([]any)
		assert.True(ok, "expected a list, got %v", actual)
		assert.Len(actualList, len(expectedValue))
		for i := range expectedValue {
			assertSubset(assert, expectedValue[i], actualList[i])
		}
	default:
		assert.Equal(expected, actual)
	}
}
