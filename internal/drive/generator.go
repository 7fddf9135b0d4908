package drive

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/0xJagger/poc-geo-tier-list/pkg/logger"
)

// Script is a generated gesture sequence and the ranked membership it
// leaves behind.
type Script struct {
	Seed     int64     `json:"seed" yaml:"seed"`
	Gestures []Gesture `json:"gestures" yaml:"gestures"`
	Ranked   []string  `json:"ranked" yaml:"ranked"`
}

// GenerateScript builds roughly steps gestures over itemIDs. Every gesture
// is valid at the point it is replayed, and adjustment blocks are always
// closed, so the final order is live.
func GenerateScript(itemIDs []string, steps int, seed int64) Script {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible scripts, not security
	g := &scriptGen{rng: rng, ranked: map[string]bool{}, unranked: append([]string(nil), itemIDs...)}

	for len(g.gestures) < steps && len(itemIDs) > 0 {
		switch pick := rng.Intn(weightTotal); {
		case len(g.ranked) == 0 || pick < weightInsert:
			if !g.insert() {
				g.adjust()
			}
		case pick < weightInsert+weightAdjust:
			g.adjust()
		case pick < weightInsert+weightAdjust+weightRemove:
			g.remove()
		default:
			g.score(g.pickRanked())
		}
	}

	ranked := make([]string, 0, len(g.ranked))
	for id := range g.ranked {
		ranked = append(ranked, id)
	}
	sort.Strings(ranked)
	return Script{Seed: seed, Gestures: g.gestures, Ranked: ranked}
}

type scriptGen struct {
	rng      *rand.Rand
	gestures []Gesture
	ranked   map[string]bool
	unranked []string
}

func (g *scriptGen) emit(kind, id string, score *float64) {
	g.gestures = append(g.gestures, Gesture{Kind: kind, ItemID: id, Score: score})
}

func (g *scriptGen) insert() bool {
	if len(g.unranked) == 0 {
		return false
	}
	i := g.rng.Intn(len(g.unranked))
	id := g.unranked[i]
	g.unranked = append(g.unranked[:i], g.unranked[i+1:]...)
	g.ranked[id] = true
	g.emit(GestureInsert, id, nil)
	return true
}

func (g *scriptGen) remove() {
	id := g.pickRanked()
	delete(g.ranked, id)
	g.unranked = append(g.unranked, id)
	g.emit(GestureRemove, id, nil)
}

func (g *scriptGen) adjust() {
	id := g.pickRanked()
	g.emit(GestureBeginAdjust, id, nil)
	for n := 1 + g.rng.Intn(maxScoresPerAdjustment); n > 0; n-- {
		g.score(id)
	}
	g.emit(GestureEndAdjust, "", nil)
}

func (g *scriptGen) score(id string) {
	v := minScore + float64(g.rng.Intn(int((maxScore-minScore)/scoreStep)+1))*scoreStep
	g.emit(GestureScore, id, &v)
}

// pickRanked returns a ranked id in a seed-stable way.
func (g *scriptGen) pickRanked() string {
	ids := make([]string, 0, len(g.ranked))
	for id := range g.ranked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[g.rng.Intn(len(ids))]
}

func generateScript(ctx context.Context, config *Config, itemIDs []string, stats *Stats) (Script, error) {
	if len(itemIDs) == 0 {
		return Script{}, fmt.Errorf("catalog has no items")
	}
	script := GenerateScript(itemIDs, config.Steps, config.Seed)
	stats.GesturesGenerated = len(script.Gestures)
	logger.Get().Info(ctx, "generated gesture script",
		logger.Int("gestures", len(script.Gestures)),
		logger.Int("rankedAtEnd", len(script.Ranked)),
		logger.Any("seed", config.Seed))
	return script, nil
}
