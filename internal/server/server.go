package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authservice "github.com/fundbridge/donate/internal/application/auth"
	"github.com/fundbridge/donate/internal/server/handlers"
	"github.com/fundbridge/donate/internal/server/middleware"
	"github.com/fundbridge/donate/pkg/config"
)

type Server struct {
	Handlers   *handlers.Handlers
	AuthSvc    authservice.IAuthService
	Cfg        *config.Config
	Logger     zerolog.Logger
	Router     *gin.Engine
	httpServer *http.Server
}

func New(cfg *config.Config, h *handlers.Handlers, authSvc authservice.IAuthService, logger zerolog.Logger) *Server {
	if cfg.Server.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	return &Server{
		Handlers: h,
		AuthSvc:  authSvc,
		Cfg:      cfg,
		Logger:   logger,
		Router:   router,
	}
}

func (s *Server) SetupRouter() {
	mw := middleware.NewMiddleware(s.AuthSvc, s.Cfg.Security.AllowedOrigins, s.Logger)
	mw.SetupMiddleware(s.Router)
	s.Handlers.SetupHandlers(s.Router, mw)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         s.Cfg.Server.Host + ":" + s.Cfg.Server.Port,
		Handler:      s.Router,
		ReadTimeout:  durationOr(s.Cfg.Server.ReadTimeout, 20*time.Second),
		WriteTimeout: durationOr(s.Cfg.Server.WriteTimeout, 20*time.Second),
	}

	errCh := make(chan error, 1)
	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to start server")
		}
		return err
	case <-ctx.Done():
	}
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	s.Logger.Info().Msg("Server exited gracefully")
	return nil
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
