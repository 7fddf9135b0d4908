package prepare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 4 << 20
)

// HTTPOption applies a configuration option to the HTTPPreparer.
type HTTPOption func(*HTTPPreparer)

// WithHTTPClient sets the client used for preparation calls.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPPreparer) {
		if c != nil {
			p.client = c
		}
	}
}

// HTTPPreparer delegates preparation to a remote service.
type HTTPPreparer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPPreparer creates an HTTPPreparer posting to endpoint.
func NewHTTPPreparer(endpoint string, opts ...HTTPOption) *HTTPPreparer {
	p := &HTTPPreparer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type prepareRequest struct {
	Graph       propertygraph.Graph `json:"graph"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
}

type prepareFailure struct {
	Error string `json:"error"`
}

// Prepare posts g with meta and decodes the returned bundle.
func (p *HTTPPreparer) Prepare(ctx context.Context, g propertygraph.Graph, meta Metadata) (Bundle, error) {
	body, err := json.Marshal(prepareRequest{Graph: g, Title: meta.Title, Description: meta.Description})
	if err != nil {
		return Bundle{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Bundle{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrPrepareFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: read response: %w", ErrPrepareFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		var f prepareFailure
		if json.Unmarshal(raw, &f) == nil && f.Error != "" {
			msg = f.Error
		}
		if msg == "" {
			msg = resp.Status
		}
		return Bundle{}, fmt.Errorf("%w: %s", ErrPrepareFailed, msg)
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: decode bundle: %w", ErrPrepareFailed, err)
	}
	return b, nil
}
