package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liamcoop/prescreen/eligibility"
	"github.com/liamcoop/prescreen/internal/config"
	"github.com/liamcoop/prescreen/internal/logger"
)

// Server is a stateless JSON front for the classifier and scorer. Each
// request builds its own session; nothing outlives the request.
type Server struct {
	cfg    *config.Config
	scorer *eligibility.Scorer
	now    func() time.Time
	router *chi.Mux
}

func NewServer(cfg *config.Config, scorer *eligibility.Scorer) *Server {
	if scorer == nil {
		scorer = eligibility.Default()
	}

	s := &Server{
		cfg:    cfg,
		scorer: scorer,
		now:    time.Now,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Classification
		r.Post("/classify", s.handleClassify)
		r.Post("/documents", s.handleUpload)

		// Evaluation
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/export", s.handleExport)
		r.Post("/contact", s.handleContact)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func main() {
	cfg, err := config.Load(".", "./configs")
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if err := logger.Setup(context.Background(), logger.Options{
		Level:       cfg.Log.Level,
		SampleRate:  cfg.Log.SampleRate,
		OTELEnabled: cfg.Log.OTELEnabled,
		ServiceName: cfg.Log.ServiceName,
	}); err != nil {
		logger.Warn("logger setup incomplete", "error", err)
	}

	server := NewServer(cfg, eligibility.Default())

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := logger.Shutdown(ctx); err != nil {
		logger.Error("logger shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
