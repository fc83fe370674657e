package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/meghashyamc/toolshelf/validation"
)

type ToolListResponse struct {
	Tools       []catalog.Tool `json:"tools"`
	PageDetails Pagination     `json:"page_details"`
}

func SetupTools(router *gin.Engine, logger logger.Logger, service *catalog.Service, validator *validation.Validator) {
	router.POST("/tools", handleCreateTool(service, logger, validator))
	router.GET("/tools", handleListTools(service, logger, validator))
	router.GET("/tools/categories", handleListCategories(service, logger))
	router.GET("/tools/:id", handleGetTool(service, logger))
	router.PUT("/tools/:id", handleUpdateTool(service, logger, validator))
	router.DELETE("/tools/:id", handleDeleteTool(service, logger))
}

func handleCreateTool(service *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindToolInput(c, logger, validator)
		if !ok {
			return
		}

		tool, err := service.Create(input)
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, tool, http.StatusCreated, nil)
	}
}

func handleListTools(service *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := PageParams{}
		if err := c.ShouldBindQuery(&params); err != nil {
			logger.Warn("could not extract pagination params", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}
		params.setDefaults()

		if err := validator.Validate(params); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		tools, err := service.List()
		if err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		limit, offset := params.limitAndOffset()
		start := min(max(offset, 0), len(tools))
		end := min(start+limit, len(tools))

		setTotalCountHeader(c, len(tools))
		writeResponse(c, ToolListResponse{
			Tools:       tools[start:end],
			PageDetails: calculatePagination(len(tools), limit, offset),
		}, http.StatusOK, nil)
	}
}

func handleListCategories(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := service.Categories()
		if err != nil {
			logger.Error("could not list categories", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, categories, http.StatusOK, nil)
	}
}

func handleGetTool(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tool, err := service.Get(c.Param("id"))
		if err != nil {
			writeToolError(c, logger, err)
			return
		}

		writeResponse(c, tool, http.StatusOK, nil)
	}
}

func handleUpdateTool(service *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		input, ok := bindToolInput(c, logger, validator)
		if !ok {
			return
		}

		tool, err := service.Update(c.Param("id"), input)
		if err != nil {
			writeToolError(c, logger, err)
			return
		}

		writeResponse(c, tool, http.StatusOK, nil)
	}
}

func handleDeleteTool(service *catalog.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Delete(c.Param("id")); err != nil {
			writeToolError(c, logger, err)
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}

func bindToolInput(c *gin.Context, logger logger.Logger, validator *validation.Validator) (catalog.Input, bool) {
	input := catalog.Input{}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warn("could not extract expected params from tool request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
		return input, false
	}

	if err := validator.Validate(input); err != nil {
		logger.Warn("could not validate tool request", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return input, false
	}

	return input, true
}

func writeToolError(c *gin.Context, logger logger.Logger, err error) {
	c.Abort()
	if errors.Is(err, catalog.ErrToolNotFound) {
		writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
		return
	}

	logger.Error("tool request failed", "err", err.Error())
	writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
}
