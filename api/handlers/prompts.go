package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/history"
	"github.com/meghashyamc/toolshelf/services/prompt"
	"github.com/meghashyamc/toolshelf/validation"
)

type PromptResponse struct {
	ID        string    `json:"id,omitempty"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

type PromptHistoryRequest struct {
	Limit int `form:"limit" validate:"min=0,max=100"`
}

// SetupPrompts registers the prompt routes. generateMiddleware only guards generation.
func SetupPrompts(router *gin.Engine, logger logger.Logger, client *prompt.Client, historyService *history.Service, validator *validation.Validator, generateMiddleware ...gin.HandlerFunc) {
	generateHandlers := append(generateMiddleware, handleGenerateVideoPrompt(client, historyService, logger, validator))
	router.POST("/prompts/video", generateHandlers...)
	router.GET("/prompts", handleListPrompts(historyService, logger, validator))
	router.GET("/prompts/:id", handleGetPrompt(historyService, logger))
}

func handleGenerateVideoPrompt(client *prompt.Client, historyService *history.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := prompt.Request{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from prompt request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate prompt request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		generated, err := client.GenerateVideoPrompt(c.Request.Context(), request)
		if err != nil {
			c.Abort()
			writeResponse(c, nil, promptErrorStatus(err), []string{err.Error()})
			return
		}

		promptResponse := PromptResponse{Prompt: generated, CreatedAt: time.Now().UTC()}
		entry, err := historyService.Record(request, generated)
		if err != nil {
			logger.Warn("generated prompt was not saved to history", "err", err.Error())
		} else {
			promptResponse.ID = entry.ID
			promptResponse.CreatedAt = entry.CreatedAt
		}

		writeResponse(c, promptResponse, http.StatusOK, nil)
	}
}

func promptErrorStatus(err error) int {
	switch {
	case errors.Is(err, prompt.ErrValidation):
		return http.StatusNotAcceptable
	case errors.Is(err, prompt.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, prompt.ErrServer), errors.Is(err, prompt.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleListPrompts(historyService *history.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := PromptHistoryRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from prompt history request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		entries, err := historyService.List(request.Limit)
		if err != nil {
			logger.Error("could not list prompt history", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, entries, http.StatusOK, nil)
	}
}

func handleGetPrompt(historyService *history.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, err := historyService.Get(c.Param("id"))
		if err != nil {
			c.Abort()
			if errors.Is(err, history.ErrEntryNotFound) {
				writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
				return
			}
			logger.Error("could not get prompt history entry", "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, entry, http.StatusOK, nil)
	}
}
