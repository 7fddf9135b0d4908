// Package graph projects ranking state into a typed knowledge graph: the
// rank list and every item as entities, one scored relation per ranked item.
package graph

import (
	"github.com/google/uuid"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
)

// Relation links the rank list to a ranked item.
type Relation struct {
	ID    string  `json:"id"`
	From  string  `json:"from"`
	To    string  `json:"to"`
	Score float64 `json:"score"`
}

// KnowledgeGraph is a snapshot of the ranking as entities and relations.
// It is rebuilt from state and never mutated afterwards.
type KnowledgeGraph struct {
	Entities  []model.Entity `json:"entities"`
	Relations []Relation     `json:"relations"`
}

// Stats counts the graph's entities and relations.
func (g KnowledgeGraph) Stats() (entities, relations int) {
	return len(g.Entities), len(g.Relations)
}

// ScoreLookup returns the score of a ranked item.
type ScoreLookup func(id string) (float64, bool)

// IDGenerator produces relation identifiers.
type IDGenerator func() string

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithIDGenerator replaces the random relation identifiers.
func WithIDGenerator(gen IDGenerator) Option {
	return func(b *Builder) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// Builder projects ranking state over a fixed list and item sequence.
type Builder struct {
	list  model.RankList
	items []model.Item
	newID IDGenerator
}

// NewBuilder creates a builder for list and items.
func NewBuilder(list model.RankList, items []model.Item, opts ...Option) *Builder {
	b := &Builder{
		list:  list,
		items: append([]model.Item(nil), items...),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the graph for the ranked ids. Every ranked id with a score
// yields one relation with a fresh identifier; relation identity does not
// carry across builds.
func (b *Builder) Build(ranked []string, scores ScoreLookup) KnowledgeGraph {
	entities := make([]model.Entity, 0, len(b.items)+1)
	entities = append(entities, b.list)
	for _, it := range b.items {
		entities = append(entities, it)
	}

	relations := make([]Relation, 0, len(ranked))
	for _, id := range ranked {
		score, ok := scores(id)
		if !ok {
			continue
		}
		relations = append(relations, Relation{
			ID:    b.newID(),
			From:  b.list.ID,
			To:    id,
			Score: score,
		})
	}
	return KnowledgeGraph{Entities: entities, Relations: relations}
}

// List returns the rank list entity.
func (b *Builder) List() model.RankList { return b.list }

// Items returns the item sequence.
func (b *Builder) Items() []model.Item {
	return append([]model.Item(nil), b.items...)
}
