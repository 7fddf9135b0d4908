package ranking

import (
	"fmt"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
)

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithPolicy sets the score admission policy.
func WithPolicy(p scoring.Policy) Option {
	return func(s *Session) {
		s.policy = p
	}
}

// WithRecomputeHook registers a callback invoked after every live order
// recomputation with its duration.
func WithRecomputeHook(fn func(time.Duration)) Option {
	return func(s *Session) {
		s.onRecompute = fn
	}
}

// Session owns the ranking state for one catalog. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	known       map[string]struct{}
	store       *ScoreStore
	ranked      *RankedSet
	stabilizer  Stabilizer
	policy      scoring.Policy
	onRecompute func(time.Duration)
}

// NewSession creates an empty session over items.
func NewSession(items []model.Item, opts ...Option) *Session {
	s := &Session{
		known:  make(map[string]struct{}, len(items)),
		store:  NewScoreStore(),
		ranked: NewRankedSet(),
		policy: scoring.NewPolicy(),
	}
	for _, it := range items {
		s.known[it.ID] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) check(id string) error {
	if _, ok := s.known[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return nil
}

func (s *Session) recompute() {
	start := time.Now()
	if s.stabilizer.Recompute(s.ranked, s.store) && s.onRecompute != nil {
		s.onRecompute(time.Since(start))
	}
}

// InsertRank adds id to the ranking. An item without a score joins tied
// with the lowest ranked score, or at the floor when nothing is ranked.
// It reports false when id was already ranked.
func (s *Session) InsertRank(id string) (bool, error) {
	if err := s.check(id); err != nil {
		return false, err
	}
	if s.ranked.Has(id) {
		return false, nil
	}
	if _, ok := s.store.Get(id); !ok {
		s.store.Set(id, scoring.JoinScore(s.store.Values()))
	}
	s.ranked.Add(id)
	s.recompute()
	return true, nil
}

// RemoveRank drops id and its score. It reports false when id was not ranked.
func (s *Session) RemoveRank(id string) (bool, error) {
	if err := s.check(id); err != nil {
		return false, err
	}
	removed := s.ranked.Remove(id)
	s.store.Delete(id)
	if removed {
		s.recompute()
	}
	return removed, nil
}

// SetScore assigns a score to a ranked item and returns the stored value.
// The display order only moves while no adjustment is active.
func (s *Session) SetScore(id string, v float64) (float64, error) {
	if err := s.check(id); err != nil {
		return 0, err
	}
	if !s.ranked.Has(id) {
		return 0, fmt.Errorf("%w: %q", ErrNotRanked, id)
	}
	stored, err := s.policy.Normalize(v)
	if err != nil {
		return 0, err
	}
	s.store.Set(id, stored)
	s.recompute()
	return stored, nil
}

// BeginAdjustment freezes the display order while id is adjusted. An
// adjustment already in progress is ended first; its item is returned.
func (s *Session) BeginAdjustment(id string) (string, error) {
	if err := s.check(id); err != nil {
		return "", err
	}
	if !s.ranked.Has(id) {
		return "", fmt.Errorf("%w: %q", ErrNotRanked, id)
	}
	previous := s.stabilizer.Active()
	if s.stabilizer.Frozen() {
		s.thaw()
	}
	s.stabilizer.Freeze(id)
	return previous, nil
}

// EndAdjustment returns the order to live mode and re-sorts it. It reports
// whether an adjustment was active.
func (s *Session) EndAdjustment() bool {
	if !s.stabilizer.Frozen() {
		return false
	}
	s.thaw()
	return true
}

func (s *Session) thaw() {
	start := time.Now()
	s.stabilizer.Thaw(s.ranked, s.store)
	if s.onRecompute != nil {
		s.onRecompute(time.Since(start))
	}
}

// Reset clears every score, the ranked set and any adjustment.
func (s *Session) Reset() {
	s.store.Clear()
	s.ranked.Clear()
	s.stabilizer.Clear()
}

// Order returns the display order.
func (s *Session) Order() []string {
	return s.stabilizer.View(s.ranked, s.store)
}

// Score returns the score of id and whether it is set.
func (s *Session) Score(id string) (float64, bool) {
	return s.store.Get(id)
}

// Scores returns a copy of the score store.
func (s *Session) Scores() map[string]float64 {
	return s.store.Snapshot()
}

// IsRanked reports whether id is ranked.
func (s *Session) IsRanked(id string) bool {
	return s.ranked.Has(id)
}

// Ranked returns ranked ids in insertion order.
func (s *Session) Ranked() []string {
	return s.ranked.IDs()
}

// RankedCount returns the number of ranked items.
func (s *Session) RankedCount() int {
	return s.ranked.Len()
}

// Active returns the item under adjustment, or "".
func (s *Session) Active() string {
	return s.stabilizer.Active()
}

// Frozen reports whether an adjustment holds the order.
func (s *Session) Frozen() bool {
	return s.stabilizer.Frozen()
}

// Policy returns the score admission policy.
func (s *Session) Policy() scoring.Policy {
	return s.policy
}
