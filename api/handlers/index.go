package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/services/index"
)

type IndexResponse struct {
	ID       string `json:"id"`
	Progress int    `json:"progress"`
}

func SetupIndex(router *gin.Engine, logger logger.Logger, service *index.Service) {
	router.POST("/index", handleIndex(service, logger))
	router.GET("/index/:id", handleGetIndexStatus(service, logger))
}

func handleIndex(service *index.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()

		if err := service.Build(requestID); err != nil {
			c.Abort()
			if errors.Is(err, index.ErrIndexingInProgress) {
				writeResponse(c, nil, http.StatusConflict, []string{err.Error()})
				return
			}
			logger.Error("could not start indexing", "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, IndexResponse{ID: requestID}, http.StatusAccepted, nil)
	}
}

func handleGetIndexStatus(service *index.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")
		if _, err := uuid.Parse(requestID); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{"request id must be a uuid"})
			return
		}

		progress, err := service.GetStatus(requestID)
		if err != nil {
			c.Abort()
			if errors.Is(err, index.ErrRequestNotFound) {
				writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
				return
			}
			logger.Error("could not get index status", "request_id", requestID, "err", err.Error())
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		status := http.StatusAccepted
		switch progress {
		case index.ProgressStatusComplete:
			status = http.StatusOK
		case index.ProgressStatusFailed:
			status = http.StatusInternalServerError
		}

		writeResponse(c, IndexResponse{ID: requestID, Progress: progress}, status, nil)
	}
}
