// Package server exposes the explorer views as a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/crystaleda-cli/internal/explorer"
)

// RequestIDHeader carries the per-request id on every response.
const RequestIDHeader = "X-Request-ID"

// Server routes API requests to an explorer.
type Server struct {
	exp      *explorer.Explorer
	log      *log.Logger
	debug    bool
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	mux      *http.ServeMux
}

// New builds a Server with its own metrics registry. A nil logger discards output.
func New(exp *explorer.Explorer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		exp:      exp,
		log:      logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crystaleda",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crystaleda",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		mux: http.NewServeMux(),
	}
	s.registry.MustRegister(s.requests, s.latency, collectors.NewGoCollector())

	s.route("GET /api/v1/overview", s.handleOverview)
	s.route("GET /api/v1/chemicals", s.handleChemicals)
	s.route("GET /api/v1/chemicals/{name}", s.handleChemical)
	s.route("GET /api/v1/chemicals/{name}/summary", s.handleSummary)
	s.route("GET /api/v1/chemicals/{name}/concentration", s.handleConcentration)
	s.route("GET /api/v1/chemicals/{name}/ph", s.handlePH)
	s.route("GET /api/v1/chemicals/{name}/cooccurrence", s.handleCooccurrence)
	s.route("GET /api/v1/proteins/{id}", s.handleProtein)
	s.route("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// SetDebug logs every request when on.
func (s *Server) SetDebug(on bool) { s.debug = on }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers h under pattern with request ids, metrics and debug logging.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		h(rec, r)
		elapsed := time.Since(start)
		s.requests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		s.latency.WithLabelValues(pattern).Observe(elapsed.Seconds())
		if s.debug {
			s.log.Printf("debug: %s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, elapsed, id)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// viewError maps explorer errors to responses.
func viewError(w http.ResponseWriter, err error) {
	if errors.Is(err, explorer.ErrEmptySelection) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.exp.Overview(r.Context()))
}

func (s *Server) handleChemicals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.exp.Chemicals(r.Context()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	v, err := s.exp.Summary(r.Context(), r.PathValue("name"))
	if err != nil {
		viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleChemical(w http.ResponseWriter, r *http.Request) {
	q, err := concentrationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.exp.Chemical(r.Context(), r.PathValue("name"), q)
	if err != nil {
		viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleConcentration(w http.ResponseWriter, r *http.Request) {
	q, err := concentrationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.exp.Concentration(r.Context(), r.PathValue("name"), q)
	if err != nil {
		viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePH(w http.ResponseWriter, r *http.Request) {
	showAll, err := boolParam(r, "show_all")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.exp.PH(r.Context(), r.PathValue("name"), showAll)
	if err != nil {
		viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCooccurrence(w http.ResponseWriter, r *http.Request) {
	v, err := s.exp.Cooccurrence(r.Context(), r.PathValue("name"))
	if err != nil {
		viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleProtein(w http.ResponseWriter, r *http.Request) {
	v, err := s.exp.Protein(r.Context(), r.PathValue("id"))
	if err != nil {
		viewError(w, err)
		return
	}
	if !v.Found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("protein %s not found", v.ProteinID))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func concentrationQuery(r *http.Request) (explorer.ConcentrationQuery, error) {
	var q explorer.ConcentrationQuery
	var err error
	if q.BinWidthMM, err = floatParam(r, "bin_mm"); err != nil {
		return q, err
	}
	if q.BinWidthPct, err = floatParam(r, "bin_pct"); err != nil {
		return q, err
	}
	if q.ShowAll, err = boolParam(r, "show_all"); err != nil {
		return q, err
	}
	return q, nil
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return f, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return b, nil
}
