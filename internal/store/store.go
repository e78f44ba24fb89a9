// Package store owns the session lifecycle of the district dataset: an
// ordered search across configured source directories, a one-time load
// memoized for the session, and explicit reload as the only invalidation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/altiplano-labs/frost-risk-service/internal/config"
	"github.com/altiplano-labs/frost-risk-service/internal/domain"
	"github.com/altiplano-labs/frost-risk-service/internal/observability"
)

// ErrSourceNotFound means no configured directory contained a readable stats
// file. The error message lists every candidate tried.
var ErrSourceNotFound = errors.New("no readable dataset source")

// Snapshot is one immutable, fully validated view of the dataset. Derived
// views (rankings, aggregates, filtered subsets) are computed fresh from it
// per query and never written back.
type Snapshot struct {
	Table     domain.DistrictTable
	Summary   domain.SummaryMetrics
	Threshold float64 // risk threshold over the full unfiltered table
	Report    domain.LoadReport
	Source    string // directory the dataset was loaded from
	LoadedAt  time.Time

	// MapImage is the optional static map, opaque bytes. Nil when absent;
	// absence is a diagnostic, never an error.
	MapImage []byte

	// MetricsConsistent records whether the stated summary document
	// reconciled against the table; Findings holds the disagreements.
	MetricsConsistent bool
	MetricsFindings   []string
}

// ReloadEvent describes a completed dataset (re)load for downstream
// consumers, e.g. presentation caches that must invalidate.
type ReloadEvent struct {
	Source            string    `json:"source"`
	Rows              int       `json:"rows"`
	HighRiskDistricts int       `json:"high_risk_districts"`
	RiskThreshold     float64   `json:"risk_threshold"`
	LoadedAt          time.Time `json:"loaded_at"`
}

// ReloadPublisher receives a notification after each successful load.
// Publishing is fire-and-forget: failures are logged, never fatal.
type ReloadPublisher interface {
	PublishReload(ctx context.Context, event ReloadEvent) error
}

// Store memoizes the dataset for the session. All analytics are pure
// functions over the snapshot, so concurrent readers need no coordination
// beyond the swap itself.
type Store struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher ReloadPublisher

	mu   sync.RWMutex
	snap *Snapshot
}

// New creates a Store. publisher may be nil to disable reload notifications.
func New(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, publisher ReloadPublisher) *Store {
	return &Store{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		publisher: publisher,
	}
}

// Load returns the memoized snapshot, loading it on first use. Loader errors
// are terminal: no partial snapshot is ever installed.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return s.Reload(ctx)
}

// Reload discards the memoized snapshot and loads from the configured
// sources again. The swap is atomic: readers see either the old or the new
// snapshot, never a partial one.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	snap, err := s.loadSnapshot()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Info("dataset loaded",
		"source", snap.Source,
		"rows", snap.Report.Rows,
		"skipped", snap.Report.Skipped+snap.Report.Duplicates,
		"missing_means", snap.Report.MissingMeans,
		"risk_threshold", snap.Threshold,
		"metrics_consistent", snap.MetricsConsistent,
	)
	s.publish(ctx, snap)
	return snap, nil
}

// Snapshot returns the current snapshot without touching I/O.
func (s *Store) Snapshot() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.snap != nil
}

// CheckReadiness reports ready once a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if _, ok := s.Snapshot(); !ok {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

func (s *Store) loadSnapshot() (*Snapshot, error) {
	dir, err := s.findSource()
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("not_found").Inc()
		return nil, err
	}

	statsFile, err := os.Open(filepath.Join(dir, s.cfg.StatsFile))
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("open stats file: %w", err)
	}
	defer statsFile.Close()

	table, report, err := domain.ParseStatsCSV(statsFile)
	if err != nil {
		s.countParseFailure(err)
		return nil, fmt.Errorf("load stats table from %s: %w", dir, err)
	}

	summaryFile, err := os.Open(filepath.Join(dir, s.cfg.SummaryFile))
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("open summary document: %w", err)
	}
	defer summaryFile.Close()

	summary, err := domain.ParseSummaryJSON(summaryFile)
	if err != nil {
		s.countParseFailure(err)
		return nil, fmt.Errorf("load summary document from %s: %w", dir, err)
	}

	snap := &Snapshot{
		Table:     table,
		Summary:   summary,
		Threshold: domain.RiskThreshold(table, s.cfg.RiskQuantile),
		Report:    report,
		Source:    dir,
		LoadedAt:  domain.Clock().Now(),
	}

	if err := s.reconcile(snap); err != nil {
		return nil, err
	}
	s.loadMapAsset(snap, dir)

	s.metrics.DatasetLoads.WithLabelValues("success").Inc()
	s.setSnapshotGauges(snap)
	return snap, nil
}

// findSource walks the configured directories in order and returns the first
// one containing a readable stats file.
func (s *Store) findSource() (string, error) {
	var tried []string
	for _, dir := range s.cfg.DataDirs {
		path := filepath.Join(dir, s.cfg.StatsFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			if len(tried) > 0 {
				s.logger.Debug("dataset source search skipped candidates", "tried", tried, "chosen", dir)
			}
			return dir, nil
		}
		tried = append(tried, path)
	}
	return "", fmt.Errorf("%w: tried %s", ErrSourceNotFound, strings.Join(tried, ", "))
}

// reconcile cross-references the stated summary against recomputation.
// Inconsistency is fatal only under STRICT_METRICS; otherwise it is recorded
// on the snapshot and surfaced via log and gauge.
func (s *Store) reconcile(snap *Snapshot) error {
	err := domain.Reconcile(snap.Summary, snap.Table, s.cfg.RiskQuantile, s.cfg.MetricsTolerance)
	if err == nil {
		snap.MetricsConsistent = true
		return nil
	}

	var incons *domain.InconsistentMetricsError
	if errors.As(err, &incons) {
		snap.MetricsFindings = incons.Findings
	}
	if s.cfg.StrictMetrics {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		return fmt.Errorf("reconcile summary metrics: %w", err)
	}
	s.logger.Warn("summary metrics inconsistent with table", "findings", snap.MetricsFindings)
	return nil
}

// loadMapAsset reads the optional static map. Absence degrades to a logged
// diagnostic and a zeroed gauge.
func (s *Store) loadMapAsset(snap *Snapshot, dir string) {
	if s.cfg.MapFile == "" {
		return
	}
	path := filepath.Join(dir, s.cfg.MapFile)
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("static map unavailable", "path", path, "error", err)
		s.metrics.MapAssetPresent.Set(0)
		return
	}
	snap.MapImage = data
	s.metrics.MapAssetPresent.Set(1)
}

func (s *Store) countParseFailure(err error) {
	var schemaErr *domain.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		s.metrics.DatasetLoads.WithLabelValues("schema").Inc()
	case errors.Is(err, domain.ErrEmptyDataset):
		s.metrics.DatasetLoads.WithLabelValues("empty").Inc()
	default:
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
	}
}

func (s *Store) setSnapshotGauges(snap *Snapshot) {
	s.metrics.DatasetRows.Set(float64(snap.Report.Rows))
	s.metrics.DatasetMissing.Set(float64(snap.Report.MissingMeans))
	s.metrics.DatasetSkipped.Set(float64(snap.Report.Skipped + snap.Report.Duplicates))
	s.metrics.RiskThreshold.Set(snap.Threshold)
	s.metrics.HighRiskDistricts.Set(float64(domain.CountHighRisk(snap.Table, snap.Threshold)))
	if snap.MetricsConsistent {
		s.metrics.MetricsConsistent.Set(1)
	} else {
		s.metrics.MetricsConsistent.Set(0)
	}
}

func (s *Store) publish(ctx context.Context, snap *Snapshot) {
	if s.publisher == nil {
		return
	}
	event := ReloadEvent{
		Source:            snap.Source,
		Rows:              snap.Report.Rows,
		HighRiskDistricts: domain.CountHighRisk(snap.Table, snap.Threshold),
		RiskThreshold:     snap.Threshold,
		LoadedAt:          snap.LoadedAt,
	}
	if err := s.publisher.PublishReload(ctx, event); err != nil {
		s.logger.Warn("reload notification failed", "error", err)
		s.metrics.ReloadPublishErrors.Inc()
		return
	}
	s.metrics.ReloadEventsPublished.Inc()
}
