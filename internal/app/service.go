// Package service provides the ranking session facade that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/queue"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/worker"
	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/internal/catalog"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/graph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/ranking"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
	"github.com/0xJagger/poc-geo-tier-list/pkg/metrics"
)

const (
	defaultQueueSize      = 16
	defaultPrepareTimeout = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Service owns one ranking session over a catalog and the edit preparation
// pipeline. Every call is serialized, so each state transition observes the
// state left by the previous one.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog  catalog.Catalog
	session  *ranking.Session
	builder  *graph.Builder
	tracker  *prepare.Tracker
	preparer prepare.Preparer
	queue    *queue.InMemoryQueue
	worker   *worker.InMemoryWorker

	// Configuration
	policy         scoring.Policy
	queueSize      int
	prepareTimeout time.Duration
	idGenerator    graph.IDGenerator

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScorePolicy sets how assigned scores are admitted.
func WithScorePolicy(p scoring.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithPreparer sets the edit preparation backend.
func WithPreparer(p prepare.Preparer) Option {
	return func(s *Service) {
		if p != nil {
			s.preparer = p
		}
	}
}

// WithQueueSize sets the maximum number of pending preparations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPrepareTimeout bounds a single preparation call.
func WithPrepareTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.prepareTimeout = d
		}
	}
}

// WithIDGenerator replaces the random relation identifiers.
func WithIDGenerator(gen graph.IDGenerator) Option {
	return func(s *Service) {
		s.idGenerator = gen
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over cat.
func New(cat catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		catalog:        cat,
		policy:         scoring.NewPolicy(),
		queueSize:      defaultQueueSize,
		prepareTimeout: defaultPrepareTimeout,
		tracker:        prepare.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.preparer == nil {
		s.preparer = prepare.NewLocalPreparer()
	}
	s.session = ranking.NewSession(cat.Items,
		ranking.WithPolicy(s.policy),
		ranking.WithRecomputeHook(metrics.RecordOrderRecompute),
	)
	var builderOpts []graph.Option
	if s.idGenerator != nil {
		builderOpts = append(builderOpts, graph.WithIDGenerator(s.idGenerator))
	}
	s.builder = graph.NewBuilder(cat.List, cat.Items, builderOpts...)

	metrics.UpdateTotalItems(len(cat.Items))
	metrics.UpdateRankedItems(0)
	metrics.UpdateFrozen(false)
	return s
}

// Start launches the preparation worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s.preparer, s.tracker,
		worker.WithName("prepare"),
		worker.WithTimeout(s.prepareTimeout),
	)
	go s.worker.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "tier list service started",
		logger.String("list", s.catalog.List.ID),
		logger.Int("items", len(s.catalog.Items)),
		logger.String("scoreMode", string(s.policy.Mode())),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop closes the preparation queue and waits for the worker.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	_ = s.queue.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker shutdown", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "tier list service stopped")
}

// Items lists the catalog with each item's ranking state.
func (s *Service) Items(_ context.Context) []types.ItemView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.ItemView, 0, len(s.catalog.Items))
	for _, it := range s.catalog.Items {
		score, ok := s.session.Score(it.ID)
		if !ok {
			score = scoring.DefaultScore
		}
		out = append(out, types.ItemView{
			ItemID: it.ID,
			Name:   it.Name,
			Glyph:  it.Glyph,
			Ranked: s.session.IsRanked(it.ID),
			Score:  score,
		})
	}
	return out
}

// Ranking returns the display order.
func (s *Service) Ranking(_ context.Context) types.Ranking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranking()
}

func (s *Service) ranking() types.Ranking {
	order := s.session.Order()
	entries := make([]types.Entry, 0, len(order))
	for i, id := range order {
		it, _ := s.catalog.Item(id)
		score, ok := s.session.Score(id)
		if !ok {
			score = scoring.DefaultScore
		}
		entries = append(entries, types.Entry{
			Position: i + 1,
			ItemID:   id,
			Name:     it.Name,
			Glyph:    it.Glyph,
			Score:    score,
		})
	}
	return types.Ranking{Entries: entries, Active: s.session.Active(), Frozen: s.session.Frozen()}
}

// InsertRank adds id to the ranking and reports whether it was newly added.
func (s *Service) InsertRank(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, err := s.session.InsertRank(id)
	if err != nil {
		return false, err
	}
	if added {
		metrics.RecordRankMutation("insert")
		s.observe()
		score, _ := s.session.Score(id)
		s.logger.Debug(ctx, "item ranked", logger.String("item", id), logger.Float64("score", score))
	}
	return added, nil
}

// RemoveRank drops id from the ranking and reports whether it was ranked.
func (s *Service) RemoveRank(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.session.RemoveRank(id)
	if err != nil {
		return false, err
	}
	if removed {
		metrics.RecordRankMutation("remove")
		s.observe()
		s.logger.Debug(ctx, "item unranked", logger.String("item", id))
	}
	return removed, nil
}

// SetScore assigns a score and returns the stored value.
func (s *Service) SetScore(ctx context.Context, id string, v float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.session.SetScore(id, v)
	if err != nil {
		if errors.Is(err, scoring.ErrScoreOutOfRange) {
			metrics.RecordScoreRejection()
		}
		return 0, err
	}
	metrics.RecordScoreUpdate()
	s.logger.Debug(ctx, "score set",
		logger.String("item", id),
		logger.Float64("requested", v),
		logger.Float64("stored", stored),
		logger.Bool("frozen", s.session.Frozen()),
	)
	return stored, nil
}

// BeginAdjustment freezes the display order around id and returns the item
// whose adjustment it ended, if any.
func (s *Service) BeginAdjustment(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, err := s.session.BeginAdjustment(id)
	if err != nil {
		return "", err
	}
	if previous != "" {
		metrics.RecordAdjustment("preempted")
	}
	metrics.RecordAdjustment("begin")
	metrics.UpdateFrozen(true)
	s.logger.Debug(ctx, "adjustment started", logger.String("item", id), logger.String("previous", previous))
	return previous, nil
}

// EndAdjustment thaws the display order. It reports whether an adjustment
// was active.
func (s *Service) EndAdjustment(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.session.Active()
	if !s.session.EndAdjustment() {
		return false
	}
	metrics.RecordAdjustment("end")
	metrics.UpdateFrozen(false)
	s.logger.Debug(ctx, "adjustment ended", logger.String("item", active))
	return true
}

// Reset clears every score, the ranking and any adjustment.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Reset()
	metrics.RecordRankMutation("reset")
	s.observe()
	s.logger.Info(ctx, "ranking reset")
}

func (s *Service) observe() {
	metrics.UpdateRankedItems(s.session.RankedCount())
	metrics.UpdateFrozen(s.session.Frozen())
}

// Graph builds the knowledge graph from the current state.
func (s *Service) Graph(_ context.Context) graph.KnowledgeGraph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buildGraph()
}

func (s *Service) buildGraph() graph.KnowledgeGraph {
	start := time.Now()
	g := s.builder.Build(s.session.Ranked(), s.session.Score)
	metrics.RecordGraphBuild("knowledge")
	metrics.RecordGraphBuildLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateGraphSize(g.Stats())
	return g
}

// PropertyGraph builds the export shape from the current state.
func (s *Service) PropertyGraph(_ context.Context) propertygraph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.propertyGraph()
}

func (s *Service) propertyGraph() propertygraph.Graph {
	pg := propertygraph.Convert(s.buildGraph())
	metrics.RecordGraphBuild("property")
	return pg
}

// GraphStats summarizes the current graph.
func (s *Service) GraphStats(_ context.Context) types.GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entities, relations := s.buildGraph().Stats()
	return types.GraphStats{
		Entities:  entities,
		Relations: relations,
		Ranked:    s.session.RankedCount(),
		Total:     len(s.catalog.Items),
	}
}

// Prepare snapshots the property graph and queues it for preparation.
// With nothing ranked it returns ErrNothingRanked and leaves the status
// untouched.
func (s *Service) Prepare(ctx context.Context, meta prepare.Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.RankedCount() == 0 {
		metrics.RecordPreparation("rejected")
		return ErrNothingRanked
	}
	if !s.started {
		return ErrNotStarted
	}

	gen := s.tracker.Begin()
	job := queue.Job{Generation: gen, Graph: s.propertyGraph(), Meta: meta}
	if !s.queue.Enqueue(ctx, job) {
		s.tracker.Fail(gen, ErrBackpressure.Error())
		metrics.RecordPreparation("backpressure")
		return ErrBackpressure
	}
	s.logger.Info(ctx, "edit preparation queued",
		logger.String("title", meta.Title),
		logger.Int("relations", len(job.Graph.Relations)),
	)
	return nil
}

// Preparation returns the preparation status.
func (s *Service) Preparation(_ context.Context) prepare.State {
	return s.tracker.State()
}

// PreparedBundle returns the last prepared bundle, if any.
func (s *Service) PreparedBundle(_ context.Context) (prepare.Bundle, bool) {
	return s.tracker.Bundle()
}

// ResetPreparation clears prepared state back to idle.
func (s *Service) ResetPreparation(ctx context.Context) {
	s.tracker.Reset()
	s.logger.Debug(ctx, "preparation reset")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"list":          s.catalog.List.ID,
		"totalItems":    len(s.catalog.Items),
		"rankedItems":   s.session.RankedCount(),
		"frozen":        s.session.Frozen(),
		"scoreMode":     string(s.policy.Mode()),
		"preparation":   string(s.tracker.State().Status),
		"queueCapacity": s.queueSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
	}
	return stats
}
