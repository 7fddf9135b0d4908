package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/mq/queue"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/ranking"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
)

// NewKind tags kind with the operation that produced it.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// WrapKind annotates err with op and kind so both match errors.Is.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps an error to an HTTP status and a response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ranking.ErrUnknownItem), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ranking.ErrNotRanked):
		return http.StatusConflict, "not_ranked"
	case errors.Is(err, ranking.ErrNothingRanked):
		return http.StatusUnprocessableEntity, "nothing_ranked"
	case errors.Is(err, scoring.ErrScoreOutOfRange):
		return http.StatusUnprocessableEntity, "score_out_of_range"
	case errors.Is(err, queue.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
