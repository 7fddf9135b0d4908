package api

import (
	"net/http"
	"strings"
)

// RankingHandler handles the ranking session routes.
type RankingHandler struct {
	deps RankingDependencies
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies) *RankingHandler {
	return &RankingHandler{deps: deps}
}

type scoreRequest struct {
	Score *float64 `json:"score"`
}

type adjustRequest struct {
	ItemID string `json:"item_id"`
}

type mutationResponse struct {
	ItemID  string  `json:"item_id"`
	Changed bool    `json:"changed"`
	Ranking Ranking `json:"ranking"`
}

type scoreResponse struct {
	ItemID  string  `json:"item_id"`
	Score   float64 `json:"score"`
	Ranking Ranking `json:"ranking"`
}

type adjustResponse struct {
	Active   string  `json:"active,omitempty"`
	Previous string  `json:"previous,omitempty"`
	Ended    bool    `json:"ended"`
	Ranking  Ranking `json:"ranking"`
}

// HandleItems handles GET /items requests.
func (h *RankingHandler) HandleItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Items(r.Context()))
}

// HandleRanking handles GET /ranking requests.
func (h *RankingHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Ranking(r.Context()))
}

// HandleReset handles POST /ranking/reset requests.
func (h *RankingHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.deps.Reset(r.Context())
	writeJSON(w, http.StatusOK, h.deps.Ranking(r.Context()))
}

// HandleInsert handles POST /ranking/items/{id} requests.
func (h *RankingHandler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	const op = "api.insert_rank"
	id := r.PathValue("id")
	added, err := h.deps.InsertRank(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, mutationResponse{ItemID: id, Changed: added, Ranking: h.deps.Ranking(r.Context())})
}

// HandleRemove handles DELETE /ranking/items/{id} requests.
func (h *RankingHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_rank"
	id := r.PathValue("id")
	removed, err := h.deps.RemoveRank(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, mutationResponse{ItemID: id, Changed: removed, Ranking: h.deps.Ranking(r.Context())})
}

// HandleSetScore handles PUT /ranking/items/{id}/score requests.
func (h *RankingHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_score"
	id := r.PathValue("id")
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Score == nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissing("score")))
		return
	}
	stored, err := h.deps.SetScore(r.Context(), id, *req.Score)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{ItemID: id, Score: stored, Ranking: h.deps.Ranking(r.Context())})
}

// HandleBeginAdjustment handles POST /ranking/adjust/begin requests.
func (h *RankingHandler) HandleBeginAdjustment(w http.ResponseWriter, r *http.Request) {
	const op = "api.begin_adjustment"
	var req adjustRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		writeFailure(w, WrapKind(op, ErrBadRequest, errMissing("item_id")))
		return
	}
	previous, err := h.deps.BeginAdjustment(r.Context(), req.ItemID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, adjustResponse{Active: req.ItemID, Previous: previous, Ranking: h.deps.Ranking(r.Context())})
}

// HandleEndAdjustment handles POST /ranking/adjust/end requests.
func (h *RankingHandler) HandleEndAdjustment(w http.ResponseWriter, r *http.Request) {
	ended := h.deps.EndAdjustment(r.Context())
	writeJSON(w, http.StatusOK, adjustResponse{Ended: ended, Ranking: h.deps.Ranking(r.Context())})
}
