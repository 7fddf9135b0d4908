// Package model contains the entities a ranking session works over.
package model

// Kind discriminates the entity variants carried by a knowledge graph.
type Kind string

const (
	KindRankList Kind = "rank_list"
	KindItem     Kind = "item"
	KindOther    Kind = "other"
)

// Entity is a node of the knowledge graph. The concrete type is one of
// RankList, Item or Generic.
type Entity interface {
	EntityID() string
	Kind() Kind
}

// Item is a rankable object supplied by the caller.
type Item struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Glyph string `json:"emoji" yaml:"glyph"`
}

func (i Item) EntityID() string { return i.ID }
func (i Item) Kind() Kind       { return KindItem }

// RankList is the single list a session builds.
type RankList struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	RankType string `json:"rank_type" yaml:"rank_type"`
}

func (l RankList) EntityID() string { return l.ID }
func (l RankList) Kind() Kind       { return KindRankList }

// Generic is any entity that is neither a list nor an item.
type Generic struct {
	ID    string         `json:"id"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

func (g Generic) EntityID() string { return g.ID }
func (g Generic) Kind() Kind       { return KindOther }
