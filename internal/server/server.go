// Package server serves the interactive demo UI and the JSON prediction API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"housepredict/internal/common/config"
	"housepredict/internal/common/logger"
	"housepredict/internal/predictor"
	"housepredict/internal/store"
)

type Server struct {
	cfg        config.HTTPConfig
	log        logger.Logger
	pred       *predictor.Predictor
	cache      *store.PredictionCache
	recorder   store.Recorder
	handler    http.Handler
	httpServer *http.Server
}

type Option func(*Server)

// WithCache enables the Redis prediction cache.
func WithCache(c *store.PredictionCache) Option {
	return func(s *Server) { s.cache = c }
}

// WithRecorder enables the prediction audit log.
func WithRecorder(r store.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

func New(cfg config.HTTPConfig, pred *predictor.Predictor, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:  cfg,
		log:  log.WithFields(map[string]interface{}{"component": "server"}),
		pred: pred,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/predict", s.handlePredict)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	s.handler = s.withMiddleware(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
