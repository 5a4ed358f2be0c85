// Package server exposes the health endpoint and, in webhook mode, the
// route Telegram posts updates to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// HealthText is the body of GET /
const HealthText = "Bot is up ✅"

// NewRouter builds the HTTP routes. webhook may be nil when the bot long-polls.
func NewRouter(webhookPath string, webhook http.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(HealthText))
	})

	if webhook != nil {
		r.Post(webhookPath, webhook.ServeHTTP)
	}

	return r
}

// UpdateProcessor dispatches one Telegram update to the registered handlers
type UpdateProcessor interface {
	ProcessUpdate(u tele.Update)
}

// UpdateHandler decodes webhook posts and hands them straight to the bot.
// Dispatch does not depend on the poller having started, so updates that
// arrive while the bot is still registering its webhook are not stalled.
func UpdateHandler(bot UpdateProcessor, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var update tele.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			logger.Warn("Failed to decode webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bot.ProcessUpdate(update)
		w.WriteHeader(http.StatusOK)
	})
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// the webhook path embeds the bot token, so only the route pattern is logged
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			if route != "/" && route != "/health" {
				route = "webhook"
			}

			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// Server wraps the HTTP listener
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New creates a server listening on port
func New(port string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         ":" + port,
			Handler:      handler,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background. errc receives a listener failure.
func (s *Server) Start(errc chan<- error) {
	go func() {
		s.logger.Info("Server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
