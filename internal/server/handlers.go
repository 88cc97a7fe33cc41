package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scholium/arxsearch/internal/embedding"
	"github.com/scholium/arxsearch/internal/metrics"
	"github.com/scholium/arxsearch/internal/retrieval"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status   string `json:"status"`
	Articles int    `json:"articles"`
	Vectors  int    `json:"vectors"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	opts := retrieval.Options{
		Categories: q["category"],
		Sort:       retrieval.SortMode(q.Get("sort")),
	}

	var err error
	if opts.K, err = intParam(q.Get("k")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid k")
		return
	}
	if opts.YearFrom, err = intParam(q.Get("year_from")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid year_from")
		return
	}
	if opts.YearTo, err = intParam(q.Get("year_to")); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid year_to")
		return
	}

	resp, err := s.engine.Search(r.Context(), q.Get("q"), opts)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.writeSearchError(w, err)
		return
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	s.writeJSON(w, http.StatusOK, resp)
}

// writeSearchError maps engine errors to HTTP statuses.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, retrieval.ErrEmptyQuery), errors.Is(err, retrieval.ErrInvalidSort):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, retrieval.ErrNoIndex):
		s.writeError(w, http.StatusServiceUnavailable, "index not built yet")
	case errors.Is(err, embedding.ErrUnavailable):
		s.writeError(w, http.StatusBadGateway, "embedding provider unavailable")
	default:
		s.logger.Error("search failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	art, err := s.db.GetByID(id)
	if err != nil {
		s.logger.Error("article lookup failed", zap.String("id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if art == nil {
		s.writeError(w, http.StatusNotFound, "article not found")
		return
	}

	s.writeJSON(w, http.StatusOK, art)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.db.Count()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "metadata store unreachable")
		return
	}

	vectors := 0
	if store := s.handle.Current(); store != nil {
		vectors = store.Size()
	}

	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Articles: count,
		Vectors:  vectors,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// intParam parses an optional non-negative integer query parameter.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("not a non-negative integer")
	}
	return n, nil
}
