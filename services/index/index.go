// Package index rebuilds the full-text tool index from the catalog in the background.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/catalog"
)

// Indexer represents the search database operations needed for a rebuild
type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
	GetAllIDs() ([]string, error)
}

// ToolSource lists the tools that should be searchable.
type ToolSource interface {
	List() ([]catalog.Tool, error)
}

// StatusStore keeps the progress of each rebuild request.
type StatusStore interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
}

const (
	ProgressStatusQueued   = 0
	ProgressStatusStep1    = 10
	ProgressStatusStep2    = 20
	ProgressStatusComplete = 100
	ProgressStatusFailed   = -1

	rebuildBatchSize     = 100
	maxIndexBuildingTime = 10 * time.Minute
)

var (
	ErrIndexingInProgress = errors.New("indexing already in progress")
	ErrRequestNotFound    = errors.New("request not found")
)

type Service struct {
	logger      logger.Logger
	indexer     Indexer
	tools       ToolSource
	statusStore StatusStore
	buildIndexC chan string
	done        chan struct{}
}

func New(ctx context.Context, logger logger.Logger, indexer Indexer, tools ToolSource, statusStore StatusStore) *Service {
	indexService := &Service{
		logger:      logger,
		indexer:     indexer,
		tools:       tools,
		statusStore: statusStore,
		buildIndexC: make(chan string),
		done:        make(chan struct{}),
	}

	go indexService.build(ctx)
	return indexService
}

// Build hands a rebuild to the background worker. Only one rebuild runs at a time.
func (s *Service) Build(requestID string) error {

	s.setRequestStatus(requestID, ProgressStatusQueued)

	select {
	// This leads to s.rebuild being called
	case s.buildIndexC <- requestID:
		return nil
	default:
		s.logger.Warn("request to index while indexing is already in progress", "request_id", requestID)
		s.setRequestStatus(requestID, ProgressStatusFailed)
		return ErrIndexingInProgress
	}
}

// Done is closed once the worker has stopped after ctx was cancelled. A rebuild that was running
// has returned by then, so the stores it writes to can be closed.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// GetStatus retrieves the progress percentage of a rebuild request
func (s *Service) GetStatus(requestID string) (int, error) {
	value, err := s.statusStore.Get(kvdb.BucketRequests, requestID)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return 0, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
		}
		return 0, err
	}

	status, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid status value: %w", err)
	}

	return status, nil
}

func (s *Service) build(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case requestID := <-s.buildIndexC:
			rebuildCtx, cancel := context.WithTimeout(ctx, maxIndexBuildingTime)
			s.rebuild(rebuildCtx, requestID)
			cancel()
		case <-ctx.Done():
			s.logger.Info("index service stopped", "reason", ctx.Err())
			return
		}
	}
}

func (s *Service) rebuild(ctx context.Context, requestID string) {
	tools, err := s.tools.List()
	if err != nil {
		s.fail(requestID, err)
		return
	}
	s.setRequestStatus(requestID, ProgressStatusStep1)

	if err := s.removeStaleDocuments(tools); err != nil {
		s.fail(requestID, err)
		return
	}
	s.setRequestStatus(requestID, ProgressStatusStep2)

	s.logger.Info("rebuilding tool index", "request_id", requestID, "tools", len(tools))
	for start := 0; start < len(tools); start += rebuildBatchSize {
		if ctx.Err() != nil {
			s.fail(requestID, ctx.Err())
			return
		}

		end := min(start+rebuildBatchSize, len(tools))
		documents := make([]searchdb.Document, 0, end-start)
		for _, tool := range tools[start:end] {
			documents = append(documents, tool.Document())
		}

		if err := s.indexer.BuildIndex(documents); err != nil {
			s.fail(requestID, fmt.Errorf("failed to index tools: %w", err))
			return
		}
		s.setRequestStatus(requestID, getProgressPercentage(end, len(tools), ProgressStatusStep2, ProgressStatusComplete))
	}

	s.setRequestStatus(requestID, ProgressStatusComplete)
	s.logger.Info("finished rebuilding tool index", "request_id", requestID)
}

// removeStaleDocuments drops indexed documents whose tool no longer exists.
func (s *Service) removeStaleDocuments(tools []catalog.Tool) error {
	indexedIDs, err := s.indexer.GetAllIDs()
	if err != nil {
		return fmt.Errorf("failed to list indexed documents: %w", err)
	}

	current := make(map[string]struct{}, len(tools))
	for _, tool := range tools {
		current[tool.ID] = struct{}{}
	}

	var stale []string
	for _, id := range indexedIDs {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	s.logger.Info("removing stale documents from index", "stale_documents", len(stale))
	if err := s.indexer.DeleteDocuments(stale); err != nil {
		return fmt.Errorf("failed to delete documents from search index: %w", err)
	}

	return nil
}

func (s *Service) fail(requestID string, err error) {
	s.logger.Error("failed to rebuild index", "request_id", requestID, "err", err.Error())
	s.setRequestStatus(requestID, ProgressStatusFailed)
}

func (s *Service) setRequestStatus(requestID string, status int) {
	if err := s.statusStore.Set(kvdb.BucketRequests, requestID, strconv.Itoa(status)); err != nil {
		s.logger.Error("failed to update request status", "request_id", requestID, "progress", status, "err", err.Error())
	}
}

func getProgressPercentage(done int, total int, initial int, final int) int {
	if done == 0 || total == 0 {
		return initial
	}

	if done >= total {
		return final
	}

	progress := float64(done) / float64(total)
	result := float64(initial) + progress*float64(final-initial)

	return int(result)

}
