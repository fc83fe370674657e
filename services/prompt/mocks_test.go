package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/meghashyamc/toolshelf/llm"
	"github.com/meghashyamc/toolshelf/logger"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type mockCompleter struct {
	mu           sync.Mutex
	calls        int
	lastRequest  llm.Request
	CompleteFunc func(ctx context.Context, attempt int, req llm.Request) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	m.calls++
	attempt := m.calls
	m.lastRequest = req
	m.mu.Unlock()

	if m.CompleteFunc == nil {
		return "", nil
	}
	return m.CompleteFunc(ctx, attempt, req)
}

func (m *mockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func apiError(status int) error {
	return &llm.APIError{Provider: "test", Status: status, Err: fmt.Errorf("status %d", status)}
}
