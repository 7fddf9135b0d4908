package service

import (
	"errors"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/queue"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/ranking"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrNothingRanked = ranking.ErrNothingRanked
	ErrBackpressure  = queue.ErrBackpressure
)
