package searchdb

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/meghashyamc/toolshelf/config"
	"github.com/meghashyamc/toolshelf/logger"
)

const indexingBatchSize = 100

// lowercaseKeywordAnalyzer indexes a whole field value as one lowercased token.
const lowercaseKeywordAnalyzer = "lowercase_keyword"

const (
	indexFieldName        = "name"
	indexFieldCategory    = "category"
	indexFieldDescription = "description"
	indexFieldURL         = "url"
	indexFieldRating      = "rating"
	indexFieldCreatedAt   = "created_at"
)

type BleveDB struct {
	indexPath string
	logger    logger.Logger
	index     bleve.Index
}

func New(logger logger.Logger, cfg *config.Config) (*BleveDB, error) {
	return Open(logger, filepath.Join(cfg.GetStoragePath(), cfg.GetIndexPath()))
}

// Open creates the index at indexPath, or opens it if it already exists.
func Open(logger logger.Logger, indexPath string) (*BleveDB, error) {
	indexMapping, err := createIndexMapping()
	if err != nil {
		logger.Error("could not create index mapping", "err", err.Error())
		return nil, err
	}

	index, err := bleve.New(indexPath, indexMapping)
	if err != nil {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Error("could not open index", "path", indexPath, "err", err.Error())
			return nil, err
		}
	}
	return &BleveDB{indexPath: indexPath, logger: logger, index: index}, nil
}

// BuildIndex adds or replaces documents in batches.
func (b *BleveDB) BuildIndex(documents []Document) error {

	batch := b.index.NewBatch()

	for i, doc := range documents {

		err := batch.Index(doc.ID, doc)
		if err != nil {
			b.logger.Error("could not index document", "id", doc.ID, "err", err.Error())
			return err
		}

		if (i+1)%indexingBatchSize == 0 {
			err = b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not index documents", "err", err.Error())
			return err
		}
	}

	return nil
}

func createIndexMapping() (mapping.IndexMapping, error) {

	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(lowercaseKeywordAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []any{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt(indexFieldName, nameFieldMapping)

	// Category matches whole values ignoring case, URL matches exactly
	categoryFieldMapping := bleve.NewTextFieldMapping()
	categoryFieldMapping.Analyzer = lowercaseKeywordAnalyzer
	docMapping.AddFieldMappingsAt(indexFieldCategory, categoryFieldMapping)

	urlFieldMapping := bleve.NewTextFieldMapping()
	urlFieldMapping.Analyzer = keyword.Name
	urlFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(indexFieldURL, urlFieldMapping)

	descriptionFieldMapping := bleve.NewTextFieldMapping()
	descriptionFieldMapping.Analyzer = standard.Name
	descriptionFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(indexFieldDescription, descriptionFieldMapping)

	docMapping.AddFieldMappingsAt(indexFieldRating, bleve.NewNumericFieldMapping())
	docMapping.AddFieldMappingsAt(indexFieldCreatedAt, bleve.NewDateTimeFieldMapping())

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping, nil
}

func (b *BleveDB) Search(queryString string, limit int, offset int) (*Response, error) {
	start := time.Now()

	searchRequest := bleve.NewSearchRequestOptions(b.buildSearchQuery(queryString), limit, offset, false)
	searchRequest.Fields = []string{indexFieldName, indexFieldCategory, indexFieldURL, indexFieldRating}

	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.AddField(indexFieldDescription)

	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("search failed", "err", err.Error())
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		result := Result{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if name, ok := hit.Fields[indexFieldName].(string); ok {
			result.Name = name
		}
		if category, ok := hit.Fields[indexFieldCategory].(string); ok {
			result.Category = category
		}
		if url, ok := hit.Fields[indexFieldURL].(string); ok {
			result.URL = url
		}
		if rating, ok := hit.Fields[indexFieldRating].(float64); ok {
			result.Rating = rating
		}
		if fragments := hit.Fragments[indexFieldDescription]; len(fragments) > 0 {
			result.Snippet = fragments[0]
		}

		results[i] = result
	}

	return &Response{
		Results:    results,
		Total:      searchResult.Total,
		MaxScore:   searchResult.MaxScore,
		SearchTime: time.Since(start).String(),
	}, nil
}

// buildSearchQuery requires every quoted phrase to appear in the name or description and
// scores the remaining terms across name, category and description.
func (b *BleveDB) buildSearchQuery(queryString string) query.Query {

	const (
		boostForName         = 3.0
		boostForCategory     = 2.0
		boostForDescription  = 1.0
		boostForPhraseMatch  = 5.0
		boostForPartialMatch = 1.5
	)

	queryString = strings.ToLower(strings.TrimSpace(queryString))

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}

	quoted, remaining := parseQuotedQuery(queryString)

	var required []query.Query
	for _, phrase := range quoted {
		namePhrase := bleve.NewMatchPhraseQuery(phrase)
		namePhrase.SetField(indexFieldName)
		namePhrase.SetBoost(boostForPhraseMatch)

		descriptionPhrase := bleve.NewMatchPhraseQuery(phrase)
		descriptionPhrase.SetField(indexFieldDescription)
		descriptionPhrase.SetBoost(boostForPhraseMatch)

		required = append(required, bleve.NewDisjunctionQuery(namePhrase, descriptionPhrase))
	}

	if remaining == "" {
		if len(required) == 0 {
			return bleve.NewMatchAllQuery()
		}
		return bleve.NewConjunctionQuery(required...)
	}

	disjunctQuery := bleve.NewDisjunctionQuery()

	nameQuery := bleve.NewMatchQuery(remaining)
	nameQuery.SetField(indexFieldName)
	nameQuery.SetBoost(boostForName)
	disjunctQuery.AddQuery(nameQuery)

	for _, term := range categoryTerms(remaining) {
		categoryQuery := bleve.NewTermQuery(term)
		categoryQuery.SetField(indexFieldCategory)
		categoryQuery.SetBoost(boostForCategory)
		disjunctQuery.AddQuery(categoryQuery)
	}

	descriptionQuery := bleve.NewMatchQuery(remaining)
	descriptionQuery.SetField(indexFieldDescription)
	descriptionQuery.SetBoost(boostForDescription)
	disjunctQuery.AddQuery(descriptionQuery)

	if len(remaining) > 2 && !strings.Contains(remaining, " ") {
		prefixQuery := bleve.NewPrefixQuery(remaining)
		prefixQuery.SetField(indexFieldName)
		prefixQuery.SetBoost(boostForPartialMatch)
		disjunctQuery.AddQuery(prefixQuery)
	}

	if len(required) == 0 {
		return disjunctQuery
	}

	return bleve.NewConjunctionQuery(append(required, disjunctQuery)...)
}

// categoryTerms lists the candidate category values in the remaining query: the whole text,
// for multi-word categories, followed by each of its words.
func categoryTerms(remaining string) []string {
	words := strings.Fields(remaining)
	if len(words) <= 1 {
		return words
	}

	return append([]string{remaining}, words...)
}

var quotedPhrase = regexp.MustCompile(`"([^"]*)"`)

// parseQuotedQuery splits a query into its non-empty quoted phrases and the remaining terms,
// with whitespace collapsed in both.
func parseQuotedQuery(queryString string) ([]string, string) {
	var quoted []string
	for _, match := range quotedPhrase.FindAllStringSubmatch(queryString, -1) {
		phrase := strings.Join(strings.Fields(match[1]), " ")
		if phrase != "" {
			quoted = append(quoted, phrase)
		}
	}

	remaining := quotedPhrase.ReplaceAllString(queryString, " ")
	return quoted, strings.Join(strings.Fields(remaining), " ")
}

func (b *BleveDB) DeleteDocuments(documentIDs []string) error {
	batch := b.index.NewBatch()

	for i, docID := range documentIDs {
		batch.Delete(docID)

		if (i+1)%indexingBatchSize == 0 {
			err := b.index.Batch(batch)
			if err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			b.logger.Error("could not delete documents", "err", err.Error())
			return err
		}
	}

	return nil
}

// GetAllIDs lists the IDs of every indexed document.
func (b *BleveDB) GetAllIDs() ([]string, error) {
	count, err := b.index.DocCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []string{}, nil
	}

	searchRequest := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	searchResult, err := b.index.Search(searchRequest)
	if err != nil {
		b.logger.Error("could not list indexed documents", "err", err.Error())
		return nil, err
	}

	ids := make([]string, len(searchResult.Hits))
	for i, hit := range searchResult.Hits {
		ids[i] = hit.ID
	}

	return ids, nil
}

func (b *BleveDB) GetDocCount() (uint64, error) {
	return b.index.DocCount()
}

func (b *BleveDB) Close() error {

	if b.index != nil {
		if err := b.index.Close(); err != nil {
			b.logger.Error("could not close search index", "err", err.Error())
			return err
		}
	}
	return nil
}
