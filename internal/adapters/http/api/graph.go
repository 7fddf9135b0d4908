package api

import (
	"net/http"

	"github.com/0xJagger/poc-geo-tier-list/internal/domain/graph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/model"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
)

// GraphHandler serves the graph projections.
type GraphHandler struct {
	deps GraphDependencies
}

// NewGraphHandler creates a new graph handler.
func NewGraphHandler(deps GraphDependencies) *GraphHandler {
	return &GraphHandler{deps: deps}
}

type entityView struct {
	ID     string       `json:"id"`
	Kind   model.Kind   `json:"kind"`
	Entity model.Entity `json:"entity"`
}

type graphResponse struct {
	Entities  []entityView     `json:"entities"`
	Relations []graph.Relation `json:"relations"`
	Stats     types.GraphStats `json:"stats"`
}

// HandleGraph handles GET /graph requests.
func (h *GraphHandler) HandleGraph(w http.ResponseWriter, r *http.Request) {
	g := h.deps.Graph(r.Context())
	resp := graphResponse{
		Entities:  make([]entityView, 0, len(g.Entities)),
		Relations: g.Relations,
		Stats:     h.deps.GraphStats(r.Context()),
	}
	for _, e := range g.Entities {
		if e == nil {
			continue
		}
		resp.Entities = append(resp.Entities, entityView{ID: e.EntityID(), Kind: e.Kind(), Entity: e})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandlePropertyGraph handles GET /graph/property requests.
func (h *GraphHandler) HandlePropertyGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.PropertyGraph(r.Context()))
}
