// Package toolsearch answers catalog searches, either with combinable filters evaluated in
// memory or with full-text queries against the search index.
package toolsearch

import (
	"fmt"

	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/search"
	"github.com/meghashyamc/toolshelf/services/catalog"
)

type ToolLister interface {
	List() ([]catalog.Tool, error)
}

type Searcher interface {
	Search(queryString string, limit int, offset int) (*searchdb.Response, error)
}

type Service struct {
	logger   logger.Logger
	tools    ToolLister
	searcher Searcher
}

// AdvancedResult is one page of filtered tools together with the total number of matches.
type AdvancedResult struct {
	Tools []catalog.Tool `json:"tools"`
	Total int            `json:"total"`
}

func New(logger logger.Logger, tools ToolLister, searcher Searcher) *Service {
	return &Service{
		logger:   logger,
		tools:    tools,
		searcher: searcher,
	}
}

// Advanced filters the whole catalog (newest first) and returns the page starting at offset.
func (s *Service) Advanced(cond search.Condition, limit int, offset int) (*AdvancedResult, error) {
	tools, err := s.tools.List()
	if err != nil {
		s.logger.Error("could not load tools for search", "err", err.Error())
		return nil, fmt.Errorf("could not load tools for search: %w", err)
	}

	matches := search.AdvancedSearch(cond, tools)
	total := search.ResultCount(matches)

	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}

	s.logger.Debug("advanced search", "operator", string(cond.Operator), "total", total)
	return &AdvancedResult{Tools: matches[start:end], Total: total}, nil
}

func (s *Service) FullText(queryString string, limit int, offset int) (*searchdb.Response, error) {
	return s.searcher.Search(queryString, limit, offset)
}
