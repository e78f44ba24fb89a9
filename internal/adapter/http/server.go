// Package http exposes the analytics layer to the presentation tier:
// health, readiness and metrics probes, delimited-text and spreadsheet
// exports, rankings, and the explicit reload control.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/altiplano-labs/frost-risk-service/internal/config"
	"github.com/altiplano-labs/frost-risk-service/internal/domain"
	"github.com/altiplano-labs/frost-risk-service/internal/export"
	"github.com/altiplano-labs/frost-risk-service/internal/observability"
	"github.com/altiplano-labs/frost-risk-service/internal/store"
)

// DatasetProvider is the slice of the session store the server consumes.
type DatasetProvider interface {
	Snapshot() (*store.Snapshot, bool)
	Reload(ctx context.Context) (*store.Snapshot, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the analytics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   DatasetProvider
	logger     *slog.Logger
	metrics    *observability.Metrics
	topK       int
}

// NewServer creates the HTTP server with probe, export, and query routes.
func NewServer(cfg *config.Config, provider DatasetProvider, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
		metrics:  metrics,
		topK:     cfg.TopKDefault,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/districts.csv", s.handleDistrictsCSV)
	mux.HandleFunc("GET /v1/districts.xlsx", s.handleDistrictsXLSX)
	mux.HandleFunc("GET /v1/high-risk.csv", s.handleHighRiskCSV)
	mux.HandleFunc("GET /v1/departments.csv", s.handleDepartmentsCSV)
	mux.HandleFunc("GET /v1/summary.json", s.handleSummaryJSON)
	mux.HandleFunc("GET /v1/rankings.json", s.handleRankings)
	mux.HandleFunc("GET /v1/map.png", s.handleMap)
	mux.HandleFunc("POST /v1/reload", s.handleReload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// snapshot fetches the session snapshot or answers 503 when nothing has
// loaded yet (the analytics layer never operates on partial data).
func (s *Server) snapshot(w http.ResponseWriter) (*store.Snapshot, bool) {
	snap, ok := s.provider.Snapshot()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dataset not loaded"})
		return nil, false
	}
	return snap, true
}

func (s *Server) handleDistrictsCSV(w http.ResponseWriter, r *http.Request) {
	s.metrics.Queries.WithLabelValues("districts_csv").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="temperatura_minima_peru_completo.csv"`)
	s.export(func() error {
		return export.WriteTableCSV(w, filter.Apply(snap.Table))
	})
}

func (s *Server) handleDistrictsXLSX(w http.ResponseWriter, r *http.Request) {
	s.metrics.Queries.WithLabelValues("districts_xlsx").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="temperatura_minima_peru_completo.xlsx"`)
	s.export(func() error {
		return export.WriteTableXLSX(w, filter.Apply(snap.Table))
	})
}

func (s *Server) handleHighRiskCSV(w http.ResponseWriter, r *http.Request) {
	s.metrics.Queries.WithLabelValues("high_risk_csv").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	// The session threshold comes from the full table; a user-chosen cut is
	// an explicit override, never a recomputation over a subset.
	threshold := snap.Threshold
	if v, ok, err := queryFloat(r, "threshold"); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	} else if ok {
		threshold = v
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="distritos_alto_riesgo.csv"`)
	s.export(func() error {
		return export.WriteTableCSV(w, domain.HighRisk(snap.Table, threshold))
	})
}

func (s *Server) handleDepartmentsCSV(w http.ResponseWriter, _ *http.Request) {
	s.metrics.Queries.WithLabelValues("departments_csv").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agregados_departamentales.csv"`)
	s.export(func() error {
		return export.WriteAggregatesCSV(w, domain.AggregateByDepartment(snap.Table))
	})
}

func (s *Server) handleSummaryJSON(w http.ResponseWriter, _ *http.Request) {
	s.metrics.Queries.WithLabelValues("summary_json").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Metrics-Consistent", strconv.FormatBool(snap.MetricsConsistent))
	s.export(func() error {
		return export.WriteSummaryJSON(w, snap.Summary)
	})
}

// rankingEntry is one row of the rankings response.
type rankingEntry struct {
	Department string  `json:"department"`
	Province   string  `json:"province"`
	District   string  `json:"district"`
	MeanTemp   float64 `json:"mean_temp"`
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	s.metrics.Queries.WithLabelValues("rankings_json").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	k := s.topK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid k"})
			return
		}
		// Negative or zero k is a defined-empty ranking, not an error.
		k = n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"risk_threshold": snap.Threshold,
		"k":              k,
		"coldest":        rankingEntries(domain.TopK(snap.Table, k, true)),
		"warmest":        rankingEntries(domain.TopK(snap.Table, k, false)),
	})
}

func rankingEntries(table domain.DistrictTable) []rankingEntry {
	out := make([]rankingEntry, len(table))
	for i, r := range table {
		out[i] = rankingEntry{
			Department: r.Department,
			Province:   r.Province,
			District:   r.District,
			MeanTemp:   r.Mean,
		}
	}
	return out
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	s.metrics.Queries.WithLabelValues("map_png").Inc()
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	if snap.MapImage == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "static map unavailable for this dataset",
		})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(snap.MapImage) //nolint:errcheck // best-effort binary response
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.metrics.Queries.WithLabelValues("reload").Inc()
	snap, err := s.provider.Reload(r.Context())
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrSourceNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":         snap.Source,
		"rows":           snap.Report.Rows,
		"risk_threshold": snap.Threshold,
		"loaded_at":      snap.LoadedAt,
	})
}

// export runs a render function and observes its duration.
func (s *Server) export(render func() error) {
	start := time.Now()
	if err := render(); err != nil {
		// Headers are already sent; all we can do is log.
		s.logger.Error("export failed mid-stream", "error", err)
		return
	}
	s.metrics.ExportDuration.Observe(time.Since(start).Seconds())
}

// filterFromQuery builds the compound filter from department, min_temp and
// max_temp parameters. Absent parameters are no-ops; an inverted range is
// legal and matches nothing.
func filterFromQuery(r *http.Request) (domain.Filter, error) {
	f := domain.Filter{Department: r.URL.Query().Get("department")}

	lo, hasLo, err := queryFloat(r, "min_temp")
	if err != nil {
		return domain.Filter{}, err
	}
	hi, hasHi, err := queryFloat(r, "max_temp")
	if err != nil {
		return domain.Filter{}, err
	}
	if hasLo || hasHi {
		if !hasLo {
			lo = math.Inf(-1)
		}
		if !hasHi {
			hi = math.Inf(1)
		}
		f.Range = &domain.TempRange{Lo: lo, Hi: hi}
	}
	return f, nil
}

func queryFloat(r *http.Request, key string) (float64, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s", key)
	}
	return v, true, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
