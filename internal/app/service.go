// Package service runs the scoring pipeline and serves its results to the
// HTTP API.
//
// A run fetches the guild's recent reports from the provider, flattens them
// into records, aggregates per-character scores and publishes the result to
// the scoreboard store. A failed run publishes nothing, so readers keep
// seeing the last good scoreboard.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/guildscore/internal/adapters/repository"
	"github.com/okian/guildscore/internal/domain/extract"
	"github.com/okian/guildscore/internal/domain/model"
	"github.com/okian/guildscore/internal/domain/scoring"
	"github.com/okian/guildscore/internal/domain/types"
	"github.com/okian/guildscore/pkg/logger"
	"github.com/okian/guildscore/pkg/metrics"
)

// Provider supplies raw report data.
type Provider interface {
	LookupGuildID(ctx context.Context, name, server, region string) (int, error)
	ListReports(ctx context.Context, guildID, limit int) ([]model.Report, error)
}

// Guild identifies the guild being scored.
type Guild struct {
	Name   string
	Server string
	Region string
}

// Service implements the API dependencies for the scoreboard.
type Service struct {
	mu    sync.RWMutex
	runMu sync.Mutex // one run at a time

	// Core components
	provider  Provider
	store     repository.Store
	extractor *extract.Extractor

	// Configuration
	guild       Guild
	reportLimit int
	threshold   int
	interval    time.Duration

	// State
	guildID   int
	runs      int
	failures  int
	lastError error
	lastRunAt time.Time
	started   bool
	stopCh    chan struct{}
	triggerCh chan struct{}
	wg        sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service around provider with default configuration.
func New(provider Provider, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		guild:       Guild{Name: "Legal Tender", Server: "Lightbringer", Region: "US"},
		reportLimit: 5,
		threshold:   75,
		interval:    15 * time.Minute,
		triggerCh:   make(chan struct{}, 1),
		logger:      logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.extractor = extract.New(extract.WithLogger(s.logger.Named("extract")))

	return s
}

// Refresh runs the pipeline once and publishes the result. On error nothing
// is published and the previous scoreboard stays in place.
func (s *Service) Refresh(ctx context.Context) (repository.Snapshot, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	log := s.logger

	snap, stage, err := s.run(ctx, runID, start)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.runs++
	s.lastRunAt = start
	s.lastError = err
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordRun(metrics.StatusFailure, elapsed)
		metrics.RecordError("service", stage)
		log.Error(ctx, "scoring run failed",
			logger.String("run_id", runID),
			logger.String("stage", stage),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return repository.Snapshot{}, err
	}

	metrics.RecordRun(metrics.StatusSuccess, elapsed)
	log.Info(ctx, "scoring run published",
		logger.String("run_id", runID),
		logger.String("guild", s.guild.Name),
		logger.Int("reports", snap.Meta.Reports),
		logger.Int("fights", snap.Meta.Fights),
		logger.Int("characters", snap.Meta.Characters),
		logger.Duration("elapsed", elapsed),
	)
	return snap, nil
}

// run executes the pipeline stages and reports which one failed.
func (s *Service) run(ctx context.Context, runID string, start time.Time) (repository.Snapshot, string, error) {
	guildID, err := s.resolveGuild(ctx)
	if err != nil {
		return repository.Snapshot{}, "lookup", fmt.Errorf("lookup guild: %w", err)
	}

	reports, err := s.provider.ListReports(ctx, guildID, s.reportLimit)
	if err != nil {
		return repository.Snapshot{}, "fetch", fmt.Errorf("list reports: %w", err)
	}
	metrics.AddReportsFetched(len(reports))

	records, err := s.extractor.Extract(ctx, reports)
	if err != nil {
		return repository.Snapshot{}, "extract", fmt.Errorf("extract records: %w", err)
	}
	metrics.AddRecordsExtracted(len(records))

	scores, err := scoring.Aggregate(records, s.threshold)
	if err != nil {
		return repository.Snapshot{}, "aggregate", fmt.Errorf("aggregate scores: %w", err)
	}

	snap := repository.Snapshot{
		Meta: repository.Meta{
			RunID:      runID,
			Guild:      s.guild.Name,
			Server:     s.guild.Server,
			Region:     s.guild.Region,
			GuildID:    guildID,
			Threshold:  s.threshold,
			Reports:    len(reports),
			Fights:     scoring.CountFights(records),
			Records:    len(records),
			Characters: len(scores),
			StartedAt:  start.UTC(),
			Duration:   time.Since(start),
		},
		Scores: scores,
	}
	if err := s.store.Replace(ctx, snap); err != nil {
		return repository.Snapshot{}, "publish", fmt.Errorf("publish scoreboard: %w", err)
	}
	return snap, "", nil
}

func (s *Service) resolveGuild(ctx context.Context) (int, error) {
	s.mu.RLock()
	id := s.guildID
	s.mu.RUnlock()
	if id != 0 {
		return id, nil
	}

	id, err := s.provider.LookupGuildID(ctx, s.guild.Name, s.guild.Server, s.guild.Region)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.guildID = id
	s.mu.Unlock()
	return id, nil
}

// Start launches the refresh loop: one run immediately, then one per
// interval or per Trigger, until Stop or ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.stopCh = make(chan struct{})
	s.started = true

	s.wg.Add(1)
	go s.loop(ctx, s.stopCh)

	s.logger.Info(ctx, "scoring service started",
		logger.String("guild", s.guild.Name),
		logger.Duration("interval", s.interval),
		logger.Int("report_limit", s.reportLimit),
		logger.Int("percentile_threshold", s.threshold),
	)
	return nil
}

func (s *Service) loop(ctx context.Context, stop <-chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run loop errors are already logged and counted by Refresh.
	_, _ = s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx)
		case <-s.triggerCh:
			_, _ = s.Refresh(ctx)
			ticker.Reset(s.interval)
		}
	}
}

// Trigger asks the refresh loop for an immediate run. It returns false when a
// request is already pending.
func (s *Service) Trigger() bool {
	select {
	case s.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop gracefully shuts down the refresh loop.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "scoring service stopped")
}

// TopN returns the first n scoreboard rows ordered by key.
func (s *Service) TopN(ctx context.Context, key types.SortKey, n int) ([]types.ScoreEntry, error) {
	return s.store.TopN(ctx, key, n)
}

// Rank returns one character's row ordered by key.
func (s *Service) Rank(ctx context.Context, name string, key types.SortKey) (types.ScoreEntry, error) {
	return s.store.Rank(ctx, name, key)
}

// Snapshot returns the metadata of the published scoreboard.
func (s *Service) Snapshot(ctx context.Context) (repository.Meta, error) {
	return s.store.Meta(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":              s.started,
		"guild":                s.guild.Name,
		"server":               s.guild.Server,
		"region":               s.guild.Region,
		"report_limit":         s.reportLimit,
		"percentile_threshold": s.threshold,
		"refresh_interval":     s.interval.String(),
		"runs":                 s.runs,
		"failures":             s.failures,
		"characters":           s.store.Count(context.Background()),
	}
	if !s.lastRunAt.IsZero() {
		stats["last_run_at"] = s.lastRunAt.UTC()
	}
	if s.lastError != nil {
		stats["last_error"] = s.lastError.Error()
	}
	return stats
}
