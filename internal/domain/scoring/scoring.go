// Package scoring defines the score domain and how assigned values are
// admitted into a session.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Score domain constants.
const (
	// DefaultScore is shown for unranked items and used when a ranked item
	// has no score during sorting.
	DefaultScore = 50.0
	// FloorScore is the score given to the first item entering an empty ranking.
	FloorScore = 1.0
	MinScore   = 1.0
	MaxScore   = 100.0
)

// Mode selects how out-of-range values are treated.
type Mode string

const (
	// ModePermissive stores values as-is.
	ModePermissive Mode = "permissive"
	// ModeClamp pins values into [MinScore, MaxScore].
	ModeClamp Mode = "clamp"
	// ModeReject refuses values outside [MinScore, MaxScore].
	ModeReject Mode = "reject"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePermissive:
		return ModePermissive, nil
	case ModeClamp:
		return ModeClamp, nil
	case ModeReject:
		return ModeReject, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithMode sets the out-of-range handling mode.
func WithMode(mode Mode) Option {
	return func(p *Policy) {
		if mode != "" {
			p.mode = mode
		}
	}
}

// Policy admits score values into a session.
type Policy struct {
	mode Mode
}

// NewPolicy creates a permissive policy unless configured otherwise.
func NewPolicy(opts ...Option) Policy {
	p := Policy{mode: ModePermissive}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Mode reports the configured mode.
func (p Policy) Mode() Mode {
	if p.mode == "" {
		return ModePermissive
	}
	return p.mode
}

// Normalize returns the value to store for v.
func (p Policy) Normalize(v float64) (float64, error) {
	switch p.Mode() {
	case ModeClamp:
		if math.IsNaN(v) {
			return 0, fmt.Errorf("%w: NaN", ErrScoreOutOfRange)
		}
		return math.Max(MinScore, math.Min(MaxScore, v)), nil
	case ModeReject:
		if math.IsNaN(v) || v < MinScore || v > MaxScore {
			return 0, fmt.Errorf("%w: %v not in [%v, %v]", ErrScoreOutOfRange, v, MinScore, MaxScore)
		}
		return v, nil
	default:
		return v, nil
	}
}

// JoinScore is the score of an item entering the ranking: the lowest
// existing score, or FloorScore when nothing is ranked.
func JoinScore(existing []float64) float64 {
	if len(existing) == 0 {
		return FloorScore
	}
	lowest := existing[0]
	for _, s := range existing[1:] {
		if s < lowest {
			lowest = s
		}
	}
	return lowest
}
