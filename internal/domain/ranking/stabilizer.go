package ranking

import (
	"sort"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
)

// Stabilizer derives the display order. While an adjustment is active the
// order is frozen at its last live value so the list does not reorder under
// a gesture.
type Stabilizer struct {
	order  []string
	active string
	frozen bool
}

// Frozen reports whether an adjustment is holding the order.
func (s *Stabilizer) Frozen() bool { return s.frozen }

// Active returns the item being adjusted, or "".
func (s *Stabilizer) Active() string { return s.active }

// Recompute refreshes the cached order from the live state. It is a no-op
// while frozen and reports whether the cache changed.
func (s *Stabilizer) Recompute(set *RankedSet, store *ScoreStore) bool {
	if s.frozen {
		return false
	}
	s.order = liveOrder(set.IDs(), store)
	return true
}

// Freeze holds the current order for an adjustment of id. A previous
// adjustment, if any, is replaced.
func (s *Stabilizer) Freeze(id string) {
	s.active = id
	s.frozen = true
}

// Thaw ends the adjustment and recomputes immediately.
func (s *Stabilizer) Thaw(set *RankedSet, store *ScoreStore) {
	s.active = ""
	s.frozen = false
	s.Recompute(set, store)
}

// Clear drops the cache and any adjustment.
func (s *Stabilizer) Clear() {
	s.order = nil
	s.active = ""
	s.frozen = false
}

// View returns the order to display. The cache is filtered to current
// membership, and members missing from it are appended in live order.
func (s *Stabilizer) View(set *RankedSet, store *ScoreStore) []string {
	out := make([]string, 0, set.Len())
	seen := make(map[string]struct{}, len(s.order))
	for _, id := range s.order {
		if set.Has(id) {
			out = append(out, id)
			seen[id] = struct{}{}
		}
	}
	if len(out) == set.Len() {
		return out
	}
	var missing []string
	for _, id := range set.IDs() {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return append(out, liveOrder(missing, store)...)
}

// liveOrder sorts ids by descending score. The sort is stable so equal
// scores keep the order of ids.
func liveOrder(ids []string, store *ScoreStore) []string {
	out := append([]string(nil), ids...)
	score := func(id string) float64 {
		if v, ok := store.Get(id); ok {
			return v
		}
		return scoring.DefaultScore
	}
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) > score(out[j])
	})
	return out
}
