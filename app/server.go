package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/htol/bookshelf/api"
	"github.com/htol/bookshelf/config"
	"github.com/htol/bookshelf/logger"
	"github.com/htol/bookshelf/repo"
	"github.com/htol/bookshelf/service"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Server owns the HTTP server and the storage handle it was built with
type Server struct {
	storage *repo.Repo
	service *service.Service
	server  *http.Server
	config  *config.Config
}

func NewServer(storage *repo.Repo, cfg *config.Config) *Server {
	svc := service.New(storage)
	return &Server{
		storage: storage,
		service: svc,
		config:  cfg,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      api.NewHandler(svc),
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		},
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server listening", "port", s.config.Server.Port, "url", fmt.Sprintf("http://localhost:%d", s.config.Server.Port))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	logger.Info("Server stopped")
	return err
}

func (s *Server) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return err
		}
	}
	return nil
}
