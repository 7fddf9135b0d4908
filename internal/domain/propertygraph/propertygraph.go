// Package propertygraph flattens a knowledge graph into the generic
// entity/relation-with-properties shape used for export.
package propertygraph

import (
	"encoding/json"
	"fmt"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/graph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
)

// Property keys.
const (
	PropName     = "name"
	PropRankType = "rank_type"
	PropScore    = "score"
)

// Entity is a node with free-form properties.
type Entity struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// Relation is an edge with free-form properties.
type Relation struct {
	ID         string         `json:"id"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Properties map[string]any `json:"properties"`
}

// Graph is the export shape.
type Graph struct {
	Entities  []Entity   `json:"entities"`
	Relations []Relation `json:"relations"`
}

// Convert projects g. Entities of unrecognized kinds get empty properties.
func Convert(g graph.KnowledgeGraph) Graph {
	out := Graph{
		Entities:  make([]Entity, 0, len(g.Entities)),
		Relations: make([]Relation, 0, len(g.Relations)),
	}
	for _, e := range g.Entities {
		if e == nil {
			continue
		}
		out.Entities = append(out.Entities, Entity{ID: e.EntityID(), Properties: properties(e)})
	}
	for _, r := range g.Relations {
		out.Relations = append(out.Relations, Relation{
			ID:         r.ID,
			From:       r.From,
			To:         r.To,
			Properties: map[string]any{PropScore: r.Score},
		})
	}
	return out
}

func properties(e model.Entity) map[string]any {
	switch v := e.(type) {
	case model.RankList:
		return map[string]any{PropName: v.Name, PropRankType: v.RankType}
	case *model.RankList:
		return map[string]any{PropName: v.Name, PropRankType: v.RankType}
	case model.Item:
		return map[string]any{PropName: v.Name}
	case *model.Item:
		return map[string]any{PropName: v.Name}
	default:
		return map[string]any{}
	}
}

// Stats counts the graph's entities and relations.
func (g Graph) Stats() (entities, relations int) {
	return len(g.Entities), len(g.Relations)
}

// MarshalDocument encodes g as the indented JSON export document.
func (g Graph) MarshalDocument() ([]byte, error) {
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode property graph: %w", err)
	}
	return raw, nil
}
