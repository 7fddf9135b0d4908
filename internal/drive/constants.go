package drive

import "time"

// Script shape constants.
const (
	maxScoresPerAdjustment = 4
	scoreStep              = 0.5
	minScore               = 1.0
	maxScore               = 100.0
)

// Gesture weights out of weightTotal.
const (
	weightInsert = 4
	weightAdjust = 4
	weightRemove = 1
	weightScore  = 1
	weightTotal  = weightInsert + weightAdjust + weightRemove + weightScore
)

// Runner configuration constants.
const (
	preparePollInterval  = 50 * time.Millisecond
	preparePollAttempts  = 200
	PercentageMultiplier = 100
)

// File permission constants.
const (
	logFilePermission   = 0o600
	directoryPermission = 0o750
)
