// Package ranking holds the ranking state of a session: which items are
// ranked, the score each holds and the order they are displayed in.
package ranking

// ScoreStore maps item identifiers to scores.
type ScoreStore struct {
	scores map[string]float64
}

// NewScoreStore creates an empty store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{scores: make(map[string]float64)}
}

// Get returns the score of id and whether one is set.
func (s *ScoreStore) Get(id string) (float64, bool) {
	v, ok := s.scores[id]
	return v, ok
}

// Set assigns a score.
func (s *ScoreStore) Set(id string, v float64) {
	s.scores[id] = v
}

// Delete removes the score of id.
func (s *ScoreStore) Delete(id string) {
	delete(s.scores, id)
}

// Len returns the number of scored items.
func (s *ScoreStore) Len() int {
	return len(s.scores)
}

// Values returns every stored score in no particular order.
func (s *ScoreStore) Values() []float64 {
	out := make([]float64, 0, len(s.scores))
	for _, v := range s.scores {
		out = append(out, v)
	}
	return out
}

// Snapshot returns a copy of the mapping.
func (s *ScoreStore) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// Clear drops every score.
func (s *ScoreStore) Clear() {
	clear(s.scores)
}

// RankedSet is the set of ranked item identifiers. Iteration follows
// insertion order.
type RankedSet struct {
	ids   []string
	index map[string]int
}

// NewRankedSet creates an empty set.
func NewRankedSet() *RankedSet {
	return &RankedSet{index: make(map[string]int)}
}

// Add inserts id and reports whether it was absent.
func (r *RankedSet) Add(id string) bool {
	if _, ok := r.index[id]; ok {
		return false
	}
	r.index[id] = len(r.ids)
	r.ids = append(r.ids, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (r *RankedSet) Remove(id string) bool {
	pos, ok := r.index[id]
	if !ok {
		return false
	}
	r.ids = append(r.ids[:pos], r.ids[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.ids); i++ {
		r.index[r.ids[i]] = i
	}
	return true
}

// Has reports membership.
func (r *RankedSet) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the set size.
func (r *RankedSet) Len() int {
	return len(r.ids)
}

// IDs returns the members in insertion order.
func (r *RankedSet) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Clear empties the set.
func (r *RankedSet) Clear() {
	r.ids = r.ids[:0]
	clear(r.index)
}
