// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/graph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/propertygraph"
	"github.com/0xJagger/poc-geo-tier-list/internal/domain/types"
)

// RankingDependencies covers the ranking session operations.
type RankingDependencies interface {
	Items(ctx context.Context) []types.ItemView
	Ranking(ctx context.Context) types.Ranking
	InsertRank(ctx context.Context, id string) (bool, error)
	RemoveRank(ctx context.Context, id string) (bool, error)
	SetScore(ctx context.Context, id string, v float64) (float64, error)
	BeginAdjustment(ctx context.Context, id string) (string, error)
	EndAdjustment(ctx context.Context) bool
	Reset(ctx context.Context)
}

// GraphDependencies covers the graph projections.
type GraphDependencies interface {
	Graph(ctx context.Context) graph.KnowledgeGraph
	PropertyGraph(ctx context.Context) propertygraph.Graph
	GraphStats(ctx context.Context) types.GraphStats
}

// EditDependencies covers edit preparation.
type EditDependencies interface {
	Prepare(ctx context.Context, meta prepare.Metadata) error
	Preparation(ctx context.Context) prepare.State
	PreparedBundle(ctx context.Context) (prepare.Bundle, bool)
	ResetPreparation(ctx context.Context)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingDependencies
	GraphDependencies
	EditDependencies
}

// Ranking mirrors the display order returned by ranking routes.
type Ranking = types.Ranking

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rankingHandler *RankingHandler
	graphHandler   *GraphHandler
	exportHandler  *ExportHandler
	editsHandler   *EditsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		rankingHandler: NewRankingHandler(deps),
		graphHandler:   NewGraphHandler(deps),
		exportHandler:  NewExportHandler(deps, deps, DefaultFormats()),
		editsHandler:   NewEditsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("/healthz", "healthz", s.healthHandler.HandleHealth)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("GET /items", "items", s.rankingHandler.HandleItems)
	route("GET /ranking", "ranking", s.rankingHandler.HandleRanking)
	route("POST /ranking/reset", "ranking_reset", s.rankingHandler.HandleReset)
	route("POST /ranking/items/{id}", "ranking_insert", s.rankingHandler.HandleInsert)
	route("DELETE /ranking/items/{id}", "ranking_remove", s.rankingHandler.HandleRemove)
	route("PUT /ranking/items/{id}/score", "ranking_score", s.rankingHandler.HandleSetScore)
	route("POST /ranking/adjust/begin", "adjust_begin", s.rankingHandler.HandleBeginAdjustment)
	route("POST /ranking/adjust/end", "adjust_end", s.rankingHandler.HandleEndAdjustment)

	route("GET /graph", "graph", s.graphHandler.HandleGraph)
	route("GET /graph/property", "graph_property", s.graphHandler.HandlePropertyGraph)

	route("GET /export/{artifact}", "export", s.exportHandler.HandleExport)

	route("POST /edits/prepare", "edits_prepare", s.editsHandler.HandlePrepare)
	route("GET /edits", "edits", s.editsHandler.HandleStatus)
	route("POST /edits/reset", "edits_reset", s.editsHandler.HandleReset)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error body.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// decodeBody reads a JSON request body into v. Unknown fields are rejected.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}
