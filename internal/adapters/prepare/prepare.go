// Package prepare turns an exported property graph into a batch of edit
// operations for an external knowledge base and tracks the status of the
// last preparation.
package prepare

import (
	"context"
	"encoding/json"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
)

// Operation types found in an edit document.
const (
	OpCreateEntity   = "create_entity"
	OpSetProperty    = "set_property"
	OpCreateRelation = "create_relation"
)

// Metadata names the edit being prepared.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Summary counts the operations in a prepared edit.
type Summary struct {
	Total      int `json:"total"`
	Entities   int `json:"entities"`
	Properties int `json:"properties"`
	Relations  int `json:"relations"`
}

// Bundle is a prepared edit: a named document plus its operation counts.
type Bundle struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
	Summary  Summary         `json:"summary"`
}

// Preparer converts a property graph into a Bundle.
type Preparer interface {
	Prepare(ctx context.Context, g propertygraph.Graph, meta Metadata) (Bundle, error)
}

// Op is one entry of an edit document.
type Op struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
	Target string `json:"target,omitempty"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
}

// Document is the edit document carried by a Bundle.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Ops         []Op   `json:"ops"`
}
