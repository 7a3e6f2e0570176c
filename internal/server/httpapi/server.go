// Package httpapi exposes the sync services over HTTP/JSON.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kentxun/anymind/internal/logging"
	"github.com/kentxun/anymind/internal/protocol"
	"github.com/kentxun/anymind/internal/server/config"
	"github.com/kentxun/anymind/internal/server/models"
)

// SpaceAPI is the part of services.SpaceService the handlers use.
type SpaceAPI interface {
	Create(ctx context.Context, name string) (*models.Space, string, error)
	Authenticate(ctx context.Context, spaceID, secret string) (*models.Space, error)
}

// SyncAPI is the part of services.SyncService the handlers use.
type SyncAPI interface {
	Push(ctx context.Context, spaceID, deviceID string, in []models.IncomingChange) ([]models.PushResult, int64, error)
	Pull(ctx context.Context, spaceID string, since int64, limit int) ([]*models.Record, int64, error)
}

type Server struct {
	address         string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	spaces          SpaceAPI
	sync            SyncAPI
	logger          logging.Logger
}

func NewServer(cfg *config.Config, l logging.Logger, spaces SpaceAPI, sync SyncAPI) *Server {
	return &Server{
		address:         cfg.Address,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
		spaces:          spaces,
		sync:            sync,
		logger:          l.With("module", "http_server"),
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(protocol.PathHealth, s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc(protocol.PathSpaces, s.handleCreateSpace).Methods(http.MethodPost)
	router.HandleFunc(protocol.PathPush, s.handlePush).Methods(http.MethodPost)
	router.HandleFunc(protocol.PathPull, s.handlePull).Methods(http.MethodPost)
	router.Use(s.logRequests)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully within the
// configured timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
