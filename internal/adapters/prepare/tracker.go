package prepare

import (
	"sync"
	"time"
)

// Status is the preparation status signal.
type Status string

// Preparation statuses.
const (
	StatusIdle      Status = "idle"
	StatusPreparing Status = "preparing"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// State is a snapshot of the tracker.
type State struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Bundle    *Bundle   `json:"bundle,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker holds the status and result of the most recent preparation.
// Every Begin and Reset starts a new generation; results reported for an
// older generation are dropped. It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	state State
	gen   uint64
	now   func() time.Time
}

// NewTracker creates an idle tracker.
func NewTracker() *Tracker {
	t := &Tracker{now: time.Now}
	t.state = State{Status: StatusIdle, UpdatedAt: t.now()}
	return t
}

// Begin marks a preparation as in flight, clears the previous result and
// returns the generation the outcome must be reported under.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.state = State{Status: StatusPreparing, UpdatedAt: t.now()}
	return t.gen
}

// Succeed records a prepared bundle. It reports false when gen is stale.
func (t *Tracker) Succeed(gen uint64, b Bundle) bool {
	return t.finish(gen, State{Status: StatusSuccess, Bundle: &b})
}

// Fail records a failure with a human-readable message. It reports false
// when gen is stale.
func (t *Tracker) Fail(gen uint64, msg string) bool {
	return t.finish(gen, State{Status: StatusError, Message: msg})
}

// Reset clears prepared state back to idle.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.state = State{Status: StatusIdle, UpdatedAt: t.now()}
}

// State returns a snapshot.
func (t *Tracker) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Bundle returns the last prepared bundle, if any.
func (t *Tracker) Bundle() (Bundle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.state.Bundle == nil {
		return Bundle{}, false
	}
	return *t.state.Bundle, true
}

func (t *Tracker) finish(gen uint64, s State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.state.Status != StatusPreparing {
		return false
	}
	s.UpdatedAt = t.now()
	t.state = s
	return true
}
