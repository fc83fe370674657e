package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/search"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/meghashyamc/toolshelf/services/toolsearch"
	"github.com/meghashyamc/toolshelf/validation"
)

type SearchRequest struct {
	Query string `form:"query" validate:"required,not_blank,max=1000"`
	PageParams
}

type SearchResponse struct {
	Results     []searchdb.Result `json:"results"`
	PageDetails Pagination        `json:"page_details"`
}

type AdvancedSearchRequest struct {
	Keyword     string              `json:"keyword" validate:"max=200"`
	Operator    search.Operator     `json:"operator" validate:"valid_enum"`
	Categories  []string            `json:"category" validate:"max=50,dive,max=100"`
	RatingRange *search.RatingRange `json:"rating_range"`
	DateRange   *search.DateRange   `json:"date_range"`
	PageParams
}

func (r AdvancedSearchRequest) condition() search.Condition {
	return search.Condition{
		Keyword:    r.Keyword,
		Operator:   r.Operator,
		Categories: r.Categories,
		Rating:     r.RatingRange,
		Dates:      r.DateRange,
	}
}

type AdvancedSearchResponse struct {
	Tools       []catalog.Tool `json:"tools"`
	PageDetails Pagination     `json:"page_details"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *toolsearch.Service, validator *validation.Validator) {
	router.GET("/tools/search", handleSearch(service, logger, validator))
	router.POST("/tools/advanced-search", handleAdvancedSearch(service, logger, validator))
}

func handleSearch(service *toolsearch.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		limit, offset := request.limitAndOffset()
		results, err := service.FullText(request.Query, limit, offset)
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		setTotalCountHeader(c, int(results.Total))
		writeResponse(c, SearchResponse{
			Results:     results.Results,
			PageDetails: calculatePagination(int(results.Total), limit, offset),
		}, http.StatusOK, nil)
	}
}

func handleAdvancedSearch(service *toolsearch.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := AdvancedSearchRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from advanced search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate advanced search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		limit, offset := request.limitAndOffset()
		result, err := service.Advanced(request.condition(), limit, offset)
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		setTotalCountHeader(c, result.Total)
		writeResponse(c, AdvancedSearchResponse{
			Tools:       result.Tools,
			PageDetails: calculatePagination(result.Total, limit, offset),
		}, http.StatusOK, nil)
	}
}
