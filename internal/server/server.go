package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ButyrinIA/feedrank/internal/config"
	"github.com/ButyrinIA/feedrank/internal/engagement"
	"github.com/ButyrinIA/feedrank/internal/feed"
	"github.com/ButyrinIA/feedrank/internal/live"
	"github.com/ButyrinIA/feedrank/internal/logger"
	"github.com/ButyrinIA/feedrank/internal/pager"
	"github.com/ButyrinIA/feedrank/internal/storage"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const (
	shutdownTimeout = 10 * time.Second
	tokenTTL        = 24 * time.Hour
)

type Server struct {
	cfg        *config.Config
	storage    storage.Storage
	feed       *feed.Service
	engagement *engagement.Engine
	hub        *live.Hub
	tokens     *tokenIssuer
	limiter    *rateLimiter
	handler    http.Handler
	log        *logrus.Entry
}

func New(cfg *config.Config, store storage.Storage) *Server {
	pg := pager.Pager{DefaultLimit: cfg.Feed.DefaultLimit, MaxLimit: cfg.Feed.MaxLimit}
	hub := live.NewHub()

	s := &Server{
		cfg:     cfg,
		storage: store,
		feed:    feed.NewService(store, pg),
		engagement: engagement.New(store, engagement.Options{
			MaxRetries:   cfg.Engagement.MaxRetries,
			RetryBackoff: cfg.Engagement.RetryBackoff,
			Pager:        pg,
			Notifier:     hub,
		}),
		hub:     hub,
		tokens:  newTokenIssuer(cfg.Auth.JWTSecret, tokenTTL),
		limiter: newRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		log:     logger.For("server"),
	}

	// CORS -> логирование -> маршрутизатор
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.routes())
	s.handler = s.logRequests(corsHandler)
	return s
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	if s.cfg.Auth.DevTokens {
		router.GET("/token", s.handleToken)
	}
	router.GET("/feed", s.handleFeed)
	router.GET("/trending", s.handleTrending)
	router.GET("/posts/:id/comments", s.handleComments)
	router.POST("/posts/:id/engagement", s.limiter.Limit(s.handleEngagement))
	router.POST("/viewer-state", s.handleViewerState)
	router.GET("/posts/:id/live", s.handleLive)
	return router
}

// Run слушает порт до SIGINT/SIGTERM, затем корректно завершает соединения
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve работает до отмены ctx
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Server.Port,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}
	srv.RegisterOnShutdown(s.hub.Stop)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("сервер запущен")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("получен сигнал остановки, завершаем соединения")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("сервер остановлен")
	return nil
}
