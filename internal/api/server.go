// Package api serves sensor state over HTTP. It only answers requests;
// nothing is pushed to clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/j-veylop/manx-utilities-tui/internal/logger"
	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

const (
	defaultHistoryLimit = 48
	shutdownTimeout     = 5 * time.Second
)

// Provider exposes the sensor data the API serves.
type Provider interface {
	States() []models.SensorState
	State(t models.ReadingType) (models.SensorState, bool)
	History(t models.ReadingType, limit int) []models.Reading
	JournalStats(ctx context.Context) (*models.JournalStats, error)
	JournalReadings(ctx context.Context, t models.ReadingType, limit int) (*models.JournalReadings, error)
	JournalFailures(ctx context.Context, limit int) ([]models.FetchFailure, error)
}

// Server is the HTTP status API.
type Server struct {
	provider   Provider
	logger     *slog.Logger
	httpServer *http.Server
}

// HistoryResponse is the body of the history endpoint.
type HistoryResponse struct {
	Type     models.ReadingType `json:"type"`
	Unit     string             `json:"unit"`
	Readings []models.Reading   `json:"readings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a server listening on addr.
func New(addr string, provider Provider, l *slog.Logger) *Server {
	s := &Server{
		provider: provider,
		logger:   logger.OrDiscard(l),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)

	router.HandleFunc("/api/sensors", s.sensorsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sensors/{type}", s.sensorHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sensors/{type}/history", s.historyHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/journal", s.journalHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/journal/readings/{type}", s.journalReadingsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/journal/failures", s.journalFailuresHandler).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.writeError(w, http.StatusNotFound, "not found")
	})

	return s.logRequests(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sensorsHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.provider.States())
}

func (s *Server) sensorHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readingType(w, r)
	if !ok {
		return
	}
	state, found := s.provider.State(t)
	if !found {
		s.writeError(w, http.StatusNotFound, "unknown sensor "+t.String())
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readingType(w, r)
	if !ok {
		return
	}
	state, found := s.provider.State(t)
	if !found {
		s.writeError(w, http.StatusNotFound, "unknown sensor "+t.String())
		return
	}

	limit, ok := s.limit(w, r)
	if !ok {
		return
	}

	readings := s.provider.History(t, limit)
	if readings == nil {
		readings = []models.Reading{}
	}
	s.writeJSON(w, http.StatusOK, HistoryResponse{
		Type:     t,
		Unit:     state.Profile.Unit,
		Readings: readings,
	})
}

func (s *Server) journalHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.provider.JournalStats(r.Context())
	if err != nil {
		s.logger.Error("failed to read journal stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "journal unavailable")
		return
	}
	if stats == nil {
		s.writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) journalReadingsHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.readingType(w, r)
	if !ok {
		return
	}
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}

	readings, err := s.provider.JournalReadings(r.Context(), t, limit)
	if err != nil {
		s.journalError(w, err)
		return
	}
	if readings.Recent == nil {
		readings.Recent = []models.JournalEntry{}
	}
	s.writeJSON(w, http.StatusOK, readings)
}

func (s *Server) journalFailuresHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.limit(w, r)
	if !ok {
		return
	}

	failures, err := s.provider.JournalFailures(r.Context(), limit)
	if err != nil {
		s.journalError(w, err)
		return
	}
	if failures == nil {
		failures = []models.FetchFailure{}
	}
	s.writeJSON(w, http.StatusOK, failures)
}

func (s *Server) journalError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrJournalDisabled) {
		s.writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	s.logger.Error("failed to query journal", "error", err)
	s.writeError(w, http.StatusInternalServerError, "journal unavailable")
}

// limit parses the optional limit query parameter.
func (s *Server) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) readingType(w http.ResponseWriter, r *http.Request) (models.ReadingType, bool) {
	t, err := models.ParseReadingType(mux.Vars(r)["type"])
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return 0, false
	}
	return t, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
