package drive

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
)

// Snapshot is the service state read back after a replay.
type Snapshot struct {
	Items   []types.ItemView
	Ranking types.Ranking
	Graph   propertygraph.Graph
}

// Verify checks a snapshot against the membership the script predicts and
// against itself. All problems are reported together.
func Verify(script Script, snap Snapshot) error {
	var errs []error

	if snap.Ranking.Frozen || snap.Ranking.Active != "" {
		errs = append(errs, fmt.Errorf("order still frozen on %q", snap.Ranking.Active))
	}

	order := make([]string, len(snap.Ranking.Entries))
	for i, e := range snap.Ranking.Entries {
		order[i] = e.ItemID
		if e.Position != i+1 {
			errs = append(errs, fmt.Errorf("entry %s has position %d, want %d", e.ItemID, e.Position, i+1))
		}
		if i > 0 && e.Score > snap.Ranking.Entries[i-1].Score {
			errs = append(errs, fmt.Errorf("entry %d (%s, %.2f) outranks entry %d (%s, %.2f)",
				i+1, e.ItemID, e.Score, i, snap.Ranking.Entries[i-1].ItemID, snap.Ranking.Entries[i-1].Score))
		}
	}

	got := append([]string(nil), order...)
	sort.Strings(got)
	if !equalStrings(got, script.Ranked) {
		errs = append(errs, fmt.Errorf("ranked items %v, want %v", got, script.Ranked))
	}

	scores := map[string]float64{}
	for _, e := range snap.Ranking.Entries {
		scores[e.ItemID] = e.Score
	}
	for _, it := range snap.Items {
		s, ranked := scores[it.ItemID]
		if it.Ranked != ranked {
			errs = append(errs, fmt.Errorf("item %s ranked=%t but ranking says %t", it.ItemID, it.Ranked, ranked))
			continue
		}
		if ranked && it.Score != s {
			errs = append(errs, fmt.Errorf("item %s score %.2f, ranking has %.2f", it.ItemID, it.Score, s))
		}
	}

	if len(snap.Graph.Relations) != len(snap.Ranking.Entries) {
		errs = append(errs, fmt.Errorf("property graph has %d relations, want %d", len(snap.Graph.Relations), len(snap.Ranking.Entries)))
	}
	for _, r := range snap.Graph.Relations {
		want, ok := scores[r.To]
		if !ok {
			errs = append(errs, fmt.Errorf("relation %s targets unranked item %s", r.ID, r.To))
			continue
		}
		if v, ok := r.Properties[propertygraph.PropScore].(float64); !ok || v != want {
			errs = append(errs, fmt.Errorf("relation %s score %v, want %.2f", r.ID, r.Properties[propertygraph.PropScore], want))
		}
	}

	return errors.Join(errs...)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// verifyResults reads the service state back and verifies it.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, script Script, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	var snap Snapshot
	var err error
	if snap.Items, err = client.Items(ctx); err != nil {
		return err
	}
	if snap.Ranking, err = client.Ranking(ctx); err != nil {
		return err
	}
	if snap.Graph, err = client.PropertyGraph(ctx); err != nil {
		return err
	}
	stats.RankedAtEnd = len(snap.Ranking.Entries)

	if err := Verify(script, snap); err != nil {
		return err
	}

	displayTopItems(ctx, snap.Ranking, config.Verbose)
	logger.Get().Info(ctx, "result verification completed")
	return nil
}

// displayTopItems logs the head of the final order.
func displayTopItems(ctx context.Context, r types.Ranking, verbose bool) {
	topN := 5
	if verbose || len(r.Entries) < topN {
		topN = len(r.Entries)
	}
	for _, e := range r.Entries[:topN] {
		logger.Get().Info(ctx, "ranked",
			logger.Int("position", e.Position),
			logger.String("itemId", e.ItemID),
			logger.String("name", e.Name),
			logger.Float64("score", e.Score))
	}
}
