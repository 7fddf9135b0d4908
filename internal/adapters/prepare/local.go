package prepare

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
)

const (
	defaultMinLatency = 80 * time.Millisecond
	defaultMaxLatency = 150 * time.Millisecond
	defaultRandomSeed = 42
	defaultName       = "tier-list-edit"
)

// LocalOption applies a configuration option to the LocalPreparer.
type LocalOption func(*LocalPreparer)

// WithLatencyRange sets the simulated service latency. A zero range disables it.
func WithLatencyRange(minLatency, maxLatency time.Duration) LocalOption {
	return func(p *LocalPreparer) {
		if minLatency >= 0 && maxLatency >= minLatency {
			p.minLatency = minLatency
			p.maxLatency = maxLatency
		}
	}
}

// WithSeed sets the latency jitter seed.
func WithSeed(seed int64) LocalOption {
	return func(p *LocalPreparer) {
		p.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // jitter only
	}
}

// LocalPreparer builds edit documents in-process, simulating the latency of
// a remote preparation service.
type LocalPreparer struct {
	minLatency time.Duration
	maxLatency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocalPreparer creates a LocalPreparer with configuration options.
func NewLocalPreparer(opts ...LocalOption) *LocalPreparer {
	p := &LocalPreparer{
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // jitter only
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LocalPreparer) latency() time.Duration {
	span := p.maxLatency - p.minLatency
	if span <= 0 {
		return p.minLatency
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minLatency + time.Duration(p.rng.Int63n(int64(span)))
}

// Prepare builds the operation batch for g.
func (p *LocalPreparer) Prepare(ctx context.Context, g propertygraph.Graph, meta Metadata) (Bundle, error) {
	if len(g.Relations) == 0 {
		return Bundle{}, fmt.Errorf("%w: %w", ErrPrepareFailed, ErrEmptyGraph)
	}

	if d := p.latency(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Bundle{}, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	doc, sum := BuildDocument(g, meta)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: encode document: %w", ErrPrepareFailed, err)
	}
	return Bundle{Name: doc.Name, Document: raw, Summary: sum}, nil
}

// BuildDocument lays out the operations for g: each entity is created and
// then has its properties set, followed by each relation and its properties.
// Property keys are emitted in sorted order.
func BuildDocument(g propertygraph.Graph, meta Metadata) (Document, Summary) {
	name := strings.TrimSpace(meta.Title)
	if name == "" {
		name = defaultName
	}
	doc := Document{Name: name, Description: meta.Description, Ops: []Op{}}
	var sum Summary

	for _, e := range g.Entities {
		doc.Ops = append(doc.Ops, Op{Type: OpCreateEntity, ID: e.ID})
		sum.Entities++
		for _, k := range sortedKeys(e.Properties) {
			doc.Ops = append(doc.Ops, Op{Type: OpSetProperty, Target: e.ID, Key: k, Value: e.Properties[k]})
			sum.Properties++
		}
	}
	for _, r := range g.Relations {
		doc.Ops = append(doc.Ops, Op{Type: OpCreateRelation, ID: r.ID, From: r.From, To: r.To})
		sum.Relations++
		for _, k := range sortedKeys(r.Properties) {
			doc.Ops = append(doc.Ops, Op{Type: OpSetProperty, Target: r.ID, Key: k, Value: r.Properties[k]})
			sum.Properties++
		}
	}
	sum.Total = len(doc.Ops)
	return doc, sum
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
