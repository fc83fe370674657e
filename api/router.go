package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/api/handlers"
	"golang.org/x/time/rate"
)

func (s *server) setupRoutes(router *gin.Engine) {
	router.GET("/health", health())

	limiter := rate.NewLimiter(rate.Limit(s.cfg.GetPromptRateLimit()), s.cfg.GetPromptRateBurst())

	handlers.SetupTools(router, s.logger, s.catalog, s.validator)
	handlers.SetupSearch(router, s.logger, s.toolSearch, s.validator)
	handlers.SetupIndex(router, s.logger, s.indexer)
	handlers.SetupPrompts(router, s.logger, s.promptClient, s.history, s.validator, rateLimitMiddleware(s.logger, limiter))
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())
	router.Use(authMiddleware())

	return router
}
