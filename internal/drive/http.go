package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
)

// HTTPClient talks to a running tier list service.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for baseURL with a per-request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, strings.TrimSpace(e.Body))
}

// do sends body as JSON (when non-nil) and decodes a 2xx response into out
// (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Debug(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// Health checks the service answers its health route.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Items fetches the catalog with ranking state.
func (c *HTTPClient) Items(ctx context.Context) ([]types.ItemView, error) {
	var items []types.ItemView
	err := c.do(ctx, http.MethodGet, "/items", nil, &items)
	return items, err
}

// Ranking fetches the display order.
func (c *HTTPClient) Ranking(ctx context.Context) (types.Ranking, error) {
	var r types.Ranking
	err := c.do(ctx, http.MethodGet, "/ranking", nil, &r)
	return r, err
}

// PropertyGraph fetches the property graph export.
func (c *HTTPClient) PropertyGraph(ctx context.Context) (propertygraph.Graph, error) {
	var g propertygraph.Graph
	err := c.do(ctx, http.MethodGet, "/export/property-graph?format=json", nil, &g)
	return g, err
}

// Reset clears the session.
func (c *HTTPClient) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/ranking/reset", nil, nil)
}

// Apply replays one gesture.
func (c *HTTPClient) Apply(ctx context.Context, g Gesture) error {
	switch g.Kind {
	case GestureInsert:
		return c.do(ctx, http.MethodPost, "/ranking/items/"+url.PathEscape(g.ItemID), nil, nil)
	case GestureRemove:
		return c.do(ctx, http.MethodDelete, "/ranking/items/"+url.PathEscape(g.ItemID), nil, nil)
	case GestureScore:
		if g.Score == nil {
			return fmt.Errorf("score gesture for %s has no score", g.ItemID)
		}
		return c.do(ctx, http.MethodPut, "/ranking/items/"+url.PathEscape(g.ItemID)+"/score", map[string]float64{"score": *g.Score}, nil)
	case GestureBeginAdjust:
		return c.do(ctx, http.MethodPost, "/ranking/adjust/begin", map[string]string{"item_id": g.ItemID}, nil)
	case GestureEndAdjust:
		return c.do(ctx, http.MethodPost, "/ranking/adjust/end", nil, nil)
	default:
		return fmt.Errorf("unknown gesture kind %q", g.Kind)
	}
}

// Prepare requests edit preparation.
func (c *HTTPClient) Prepare(ctx context.Context, meta prepare.Metadata) error {
	return c.do(ctx, http.MethodPost, "/edits/prepare", meta, nil)
}

// Preparation fetches the preparation state.
func (c *HTTPClient) Preparation(ctx context.Context) (prepare.State, error) {
	var s prepare.State
	err := c.do(ctx, http.MethodGet, "/edits", nil, &s)
	return s, err
}

// applyScript replays gestures in order and tallies outcomes.
func applyScript(ctx context.Context, client *HTTPClient, config *Config, script Script, stats *Stats) error {
	logger.Get().Info(ctx, "replaying gestures", logger.Int("count", len(script.Gestures)))

	for i, g := range script.Gestures {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled after %d gestures: %w", i, err)
		}
		if err := client.Apply(ctx, g); err != nil {
			stats.GesturesRejected++
			logger.Get().Warn(ctx, "gesture rejected",
				logger.Int("index", i),
				logger.String("kind", g.Kind),
				logger.String("itemId", g.ItemID),
				logger.Error(err))
			continue
		}
		stats.GesturesApplied++
		switch g.Kind {
		case GestureInsert:
			stats.Inserts++
		case GestureRemove:
			stats.Removes++
		case GestureScore:
			stats.ScoreUpdates++
		case GestureBeginAdjust:
			stats.Adjustments++
		}
		if config.Verbose {
			fields := []logger.Field{logger.Int("index", i), logger.String("kind", g.Kind), logger.String("itemId", g.ItemID)}
			if g.Score != nil {
				fields = append(fields, logger.Float64("score", *g.Score))
			}
			logger.Get().Debug(ctx, "gesture applied", fields...)
		}
	}

	logger.Get().Info(ctx, "gesture replay completed",
		logger.Int("applied", stats.GesturesApplied),
		logger.Int("rejected", stats.GesturesRejected))
	return nil
}
