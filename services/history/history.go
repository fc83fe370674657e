// Package history keeps the video prompts that were generated successfully.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/prompt"
)

const DefaultListLimit = 20

var ErrEntryNotFound = errors.New("prompt history entry not found")

type Entry struct {
	ID        string         `json:"id"`
	Request   prompt.Request `json:"request"`
	Prompt    string         `json:"prompt"`
	CreatedAt time.Time      `json:"created_at"`
}

type Store interface {
	Set(bucket string, key string, value string) error
	Get(bucket string, key string) (string, error)
	GetAll(bucket string) (map[string]string, error)
}

type Service struct {
	logger logger.Logger
	store  Store
	now    func() time.Time
}

func New(logger logger.Logger, store Store) *Service {
	return &Service{
		logger: logger,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Record(req prompt.Request, generated string) (*Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Request:   req,
		Prompt:    generated,
		CreatedAt: s.now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("failed to marshal prompt history entry", "err", err.Error())
		return nil, fmt.Errorf("failed to marshal prompt history entry: %w", err)
	}

	if err := s.store.Set(kvdb.BucketPrompts, entry.ID, string(data)); err != nil {
		s.logger.Error("failed to save prompt history entry", "id", entry.ID, "err", err.Error())
		return nil, fmt.Errorf("failed to save prompt history entry: %w", err)
	}

	return &entry, nil
}

func (s *Service) Get(id string) (*Entry, error) {
	value, err := s.store.Get(kvdb.BucketPrompts, id)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) || errors.Is(err, kvdb.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt history entry %s: %w", id, err)
	}

	return &entry, nil
}

// List returns at most limit entries, newest first. A non-positive limit uses DefaultListLimit.
func (s *Service) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	values, err := s.store.GetAll(kvdb.BucketPrompts)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt history: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for id, value := range values {
		var entry Entry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			s.logger.Warn("skipping prompt history entry that could not be decoded", "id", id, "err", err.Error())
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return entries[:min(limit, len(entries))], nil
}
