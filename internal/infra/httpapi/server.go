package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ReminderChecker runs one reminder scan pass.
type ReminderChecker interface {
	CheckOnce(ctx context.Context) error
}

const tickTimeout = time.Minute

// Server exposes the reminder scan over HTTP so an external cron (serverless
// deployments without a long-lived scheduler) can drive the ticks.
type Server struct {
	checker    ReminderChecker
	cronSecret string
	logger     *logrus.Entry
}

func NewServer(checker ReminderChecker, cronSecret string, logger *logrus.Entry) *Server {
	return &Server{
		checker:    checker,
		cronSecret: cronSecret,
		logger:     logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(s.cronAuthMiddleware).Get("/", s.handleTick)

	return r
}

// cronAuthMiddleware compares the bearer token against the configured cron
// secret. An empty secret leaves the endpoint open.
func (s *Server) cronAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cronSecret == "" {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if token != s.cronSecret {
			s.logger.WithField("remote_addr", r.RemoteAddr).Warn("Tick request rejected: bad or missing token")
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tickTimeout)
	defer cancel()

	started := time.Now()
	if err := s.checker.CheckOnce(ctx); err != nil {
		s.logger.WithError(err).Error("Reminder check failed")
		writeError(w, http.StatusInternalServerError, "check_failed")
		return
	}
	s.logger.WithField("duration", time.Since(started).String()).Info("Reminder check completed")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
