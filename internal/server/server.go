// Package server exposes the gateway HTTP API: the claims resource with its
// Django-compatible paginated envelope, the assistant endpoints, health and
// metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"claims-gateway/internal/chat"
	"claims-gateway/internal/claims"
	"claims-gateway/internal/common/config"
	"claims-gateway/internal/common/logger"
)

type Server struct {
	httpServer *http.Server
	service    *claims.Service
	chat       *chat.Conversation
	logger     logger.Logger
}

func New(cfg config.ServerConfig, service *claims.Service, conversation *chat.Conversation, log logger.Logger) *Server {
	s := &Server{
		service: service,
		chat:    conversation,
		logger:  log.WithFields(map[string]interface{}{"component": "http-server"}),
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.logRequests(mux),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /claims/api/claims/", s.handleList)
	mux.HandleFunc("POST /claims/api/claims/", s.handleCreate)
	mux.HandleFunc("GET /claims/api/claims/filter_by_damage_score/", s.handleFilterByDamageScore)
	mux.HandleFunc("GET /claims/api/claims/filter_by_repair_amount/", s.handleFilterByRepairAmount)
	mux.HandleFunc("GET /claims/api/claims/{id}/", s.handleGet)
	mux.HandleFunc("PUT /claims/api/claims/{id}/", s.handleUpdate)
	mux.HandleFunc("DELETE /claims/api/claims/{id}/", s.handleDelete)
	mux.HandleFunc("POST /claims/api/rag/", s.handleRag)
	mux.HandleFunc("POST /claims/api/chat/", s.handleChat)
	mux.HandleFunc("GET /claims/api/chat/{session}/", s.handleChatHistory)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the configured handler chain. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("starting http server", map[string]interface{}{
		"address": s.httpServer.Addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server", nil)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)
		s.logger.Debug("request handled", map[string]interface{}{
			"method":    r.Method,
			"path":      r.URL.Path,
			"requestId": requestID,
			"duration":  time.Since(start).String(),
		})
	})
}
