// Package catalog stores AI tools and keeps the full-text index in step with them.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
)

var ErrToolNotFound = errors.New("tool not found")

// Store is the key-value storage the catalog persists tools in.
type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	Update(bucket string, key string, modify func(current string) (string, error)) error
	Delete(bucket string, key string) error
	GetAll(bucket string) (map[string]string, error)
}

// Indexer is the part of the search database that has to follow catalog changes.
type Indexer interface {
	BuildIndex(documents []searchdb.Document) error
	DeleteDocuments(documentIDs []string) error
}

type Service struct {
	logger  logger.Logger
	store   Store
	indexer Indexer
	now     func() time.Time
}

func New(logger logger.Logger, store Store, indexer Indexer) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		indexer: indexer,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(input Input) (*Tool, error) {
	now := s.now()
	tool := Tool{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	tool.apply(input)

	if err := s.save(tool); err != nil {
		return nil, err
	}
	s.syncIndex(tool)

	s.logger.Info("created tool", "id", tool.ID, "tool_name", tool.ToolName)
	return &tool, nil
}

func (s *Service) Get(id string) (*Tool, error) {
	value, err := s.store.Get(kvdb.BucketTools, id)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, id)
		}
		return nil, err
	}

	var tool Tool
	if err := json.Unmarshal([]byte(value), &tool); err != nil {
		s.logger.Error("failed to unmarshal tool", "id", id, "err", err.Error())
		return nil, fmt.Errorf("failed to unmarshal tool %s: %w", id, err)
	}

	return &tool, nil
}

// List returns every tool, newest first.
func (s *Service) List() ([]Tool, error) {
	values, err := s.store.GetAll(kvdb.BucketTools)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	tools := make([]Tool, 0, len(values))
	for id, value := range values {
		var tool Tool
		if err := json.Unmarshal([]byte(value), &tool); err != nil {
			s.logger.Warn("skipping tool that could not be decoded", "id", id, "err", err.Error())
			continue
		}
		tools = append(tools, tool)
	}

	sort.Slice(tools, func(i, j int) bool {
		if tools[i].CreatedAt.Equal(tools[j].CreatedAt) {
			return tools[i].ID < tools[j].ID
		}
		return tools[i].CreatedAt.After(tools[j].CreatedAt)
	})

	return tools, nil
}

// Update applies input to an existing tool. The stored tool is read and rewritten in a single
// store transaction, so an update never recreates a tool deleted in the meantime.
func (s *Service) Update(id string, input Input) (*Tool, error) {
	now := s.now()

	var tool Tool
	err := s.store.Update(kvdb.BucketTools, id, func(current string) (string, error) {
		if err := json.Unmarshal([]byte(current), &tool); err != nil {
			s.logger.Error("failed to unmarshal tool", "id", id, "err", err.Error())
			return "", fmt.Errorf("failed to unmarshal tool %s: %w", id, err)
		}

		tool.apply(input)
		tool.UpdatedAt = now

		data, err := json.Marshal(tool)
		if err != nil {
			s.logger.Error("failed to marshal tool", "id", id, "err", err.Error())
			return "", fmt.Errorf("failed to marshal tool %s: %w", id, err)
		}
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, id)
		}
		s.logger.Error("failed to update tool", "id", id, "err", err.Error())
		return nil, err
	}
	s.syncIndex(tool)

	s.logger.Info("updated tool", "id", tool.ID)
	return &tool, nil
}

func (s *Service) Delete(id string) error {
	if err := s.store.Delete(kvdb.BucketTools, id); err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return fmt.Errorf("%w: %s", ErrToolNotFound, id)
		}
		return err
	}

	if err := s.indexer.DeleteDocuments([]string{id}); err != nil {
		s.logger.Warn("tool deleted but search index is out of sync, reindex to repair", "id", id, "err", err.Error())
	}

	s.logger.Info("deleted tool", "id", id)
	return nil
}

// Categories returns the distinct categories in use, sorted.
func (s *Service) Categories() ([]string, error) {
	tools, err := s.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, tool := range tools {
		if _, ok := seen[tool.Category]; ok {
			continue
		}
		seen[tool.Category] = struct{}{}
		categories = append(categories, tool.Category)
	}
	sort.Strings(categories)

	return categories, nil
}

func (t *Tool) apply(input Input) {
	t.ToolName = strings.TrimSpace(input.ToolName)
	t.Category = strings.TrimSpace(input.Category)
	t.Rating = input.Rating
	t.Description = strings.TrimSpace(input.Description)
	t.URL = strings.TrimSpace(input.URL)
}

func (s *Service) save(tool Tool) error {
	data, err := json.Marshal(tool)
	if err != nil {
		s.logger.Error("failed to marshal tool", "id", tool.ID, "err", err.Error())
		return fmt.Errorf("failed to marshal tool %s: %w", tool.ID, err)
	}

	if err := s.store.Set(kvdb.BucketTools, tool.ID, string(data)); err != nil {
		s.logger.Error("failed to save tool", "id", tool.ID, "err", err.Error())
		return fmt.Errorf("failed to save tool %s: %w", tool.ID, err)
	}

	return nil
}

func (s *Service) syncIndex(tool Tool) {
	if err := s.indexer.BuildIndex([]searchdb.Document{tool.Document()}); err != nil {
		s.logger.Warn("tool saved but search index is out of sync, reindex to repair", "id", tool.ID, "err", err.Error())
	}
}
