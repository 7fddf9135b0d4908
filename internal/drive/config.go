package drive

import "time"

// Config holds configuration for a drive run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Steps      int           // Number of gestures to generate
	Seed       int64         // Script seed; equal seeds give equal scripts
	Timeout    time.Duration // HTTP request timeout
	Reset      bool          // Reset the session before driving
	Prepare    bool          // Prepare edits after driving and wait for the outcome
	ScriptFile string        // Replay this script instead of generating one
	OutputFile string        // Output file for the gesture script
	LogFile    string        // Log file for drive output
	LogFormat  string        // text or json
	Verbose    bool          // Log every gesture
}

// Gesture kinds.
const (
	GestureInsert      = "insert"
	GestureRemove      = "remove"
	GestureBeginAdjust = "adjust_begin"
	GestureScore       = "score"
	GestureEndAdjust   = "adjust_end"
)

// Gesture is one user interaction replayed against the service.
type Gesture struct {
	Kind   string   `json:"kind" yaml:"kind"`
	ItemID string   `json:"item_id,omitempty" yaml:"item_id,omitempty"`
	Score  *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Stats holds drive statistics.
type Stats struct {
	GesturesGenerated int
	GesturesApplied   int
	GesturesRejected  int
	Inserts           int
	Removes           int
	ScoreUpdates      int
	Adjustments       int
	RankedAtEnd       int
	EditOperations    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
