package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const HeaderPaginationTotalCount = "X-Pagination-Total-Count"

const (
	defaultResultsPerPage = 20
	maxResultsPerPage     = 100
	maxPage               = 10000
)

type response struct {
	Data   any      `json:"data"`
	Errors []string `json:"errors"`
}

func writeResponse(c *gin.Context, data interface{}, statusCode int, errors []string) {

	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return

	}

	response := response{
		Data:   data,
		Errors: errors,
	}

	c.JSON(statusCode, response)
}

// PageParams are the pagination parameters accepted by list and search endpoints.
type PageParams struct {
	PerPage int `form:"per_page" json:"per_page" validate:"min=0,max=100"`
	Page    int `form:"page" json:"page" validate:"min=0,max=10000"`
}

func (p *PageParams) setDefaults() {
	if p.PerPage == 0 {
		p.PerPage = defaultResultsPerPage
	}

	if p.Page == 0 {
		p.Page = 1
	}
}

// limitAndOffset clamps the page and page size to their accepted ranges, so the offset is
// never negative and never larger than maxPage*maxResultsPerPage.
func (p PageParams) limitAndOffset() (int, int) {
	perPage := min(max(p.PerPage, 1), maxResultsPerPage)
	page := min(max(p.Page, 1), maxPage)
	return perPage, (page - 1) * perPage
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
	TotalResults int  `json:"total_results"`
}

func calculatePagination(total, limit, offset int) Pagination {
	pageSize := limit
	currentPage := (offset / limit) + 1
	totalPages := (total + pageSize - 1) / pageSize

	if totalPages == 0 {
		totalPages = 1
	}

	return Pagination{
		CurrentPage:  currentPage,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		HasNextPage:  currentPage < totalPages,
		HasPrevPage:  currentPage > 1,
		TotalResults: total,
	}
}

func setTotalCountHeader(c *gin.Context, total int) {
	c.Header(HeaderPaginationTotalCount, strconv.Itoa(total))
}
