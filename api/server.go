package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/toolshelf/config"
	"github.com/meghashyamc/toolshelf/db/kvdb"
	"github.com/meghashyamc/toolshelf/db/searchdb"
	"github.com/meghashyamc/toolshelf/llm"
	"github.com/meghashyamc/toolshelf/logger"
	"github.com/meghashyamc/toolshelf/retry"
	"github.com/meghashyamc/toolshelf/services/catalog"
	"github.com/meghashyamc/toolshelf/services/history"
	"github.com/meghashyamc/toolshelf/services/index"
	"github.com/meghashyamc/toolshelf/services/prompt"
	"github.com/meghashyamc/toolshelf/services/toolsearch"
	"github.com/meghashyamc/toolshelf/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg          *config.Config
	router       *gin.Engine
	httpServer   *http.Server
	kvdb         *kvdb.BoltDB
	searchdb     *searchdb.BleveDB
	validator    *validation.Validator
	logger       logger.Logger
	catalog      *catalog.Service
	toolSearch   *toolsearch.Service
	indexer      *index.Service
	history      *history.Service
	promptClient *prompt.Client
}

// Run serves the HTTP API until ctx is cancelled or the process is interrupted. The stores are
// closed only after the index worker has stopped.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		s.closeStores()
		return err
	}
	s.setupRouter()

	err := s.serve(ctx)

	cancel()
	<-s.indexer.Done()
	s.closeStores()

	return err
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	completer, err := llm.New(ctx, s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating completion client", "provider", s.cfg.GetLLMProvider(), "err", err.Error())
		return err
	}

	policy := retry.Policy{
		MaxRetries:   s.cfg.GetRetryMaxRetries(),
		InitialDelay: s.cfg.GetRetryInitialDelay(),
	}

	s.catalog = catalog.New(s.logger, s.kvdb, s.searchdb)
	s.toolSearch = toolsearch.New(s.logger, s.catalog, s.searchdb)
	s.indexer = index.New(ctx, s.logger, s.searchdb, s.catalog, s.kvdb)
	s.history = history.New(s.logger, s.kvdb)
	s.promptClient = prompt.NewClient(s.logger, completer, s.validator, policy)

	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	s.setupRoutes(router)

	s.router = router
}

func (s *server) serve(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}

	serveErrC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrC <- err
		}
		close(serveErrC)
	}()

	select {
	case err := <-serveErrC:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}

func (s *server) closeStores() {
	if s.searchdb != nil {
		s.searchdb.Close()
	}
	if s.kvdb != nil {
		s.kvdb.Close()
	}
}
