package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/0xJagger/poc-geo-tier-list/internal/adapters/prepare"
)

// EditsHandler handles edit preparation routes.
type EditsHandler struct {
	deps EditDependencies
}

// NewEditsHandler creates a new edits handler.
func NewEditsHandler(deps EditDependencies) *EditsHandler {
	return &EditsHandler{deps: deps}
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandlePrepare handles POST /edits/prepare requests. An empty body
// prepares with no title or description.
func (h *EditsHandler) HandlePrepare(w http.ResponseWriter, r *http.Request) {
	const op = "api.prepare_edits"
	var meta prepare.Metadata
	if err := decodeBody(r, &meta); err != nil && !errors.Is(err, io.EOF) {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Prepare(r.Context(), meta); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: string(prepare.StatusPreparing)})
}

// HandleStatus handles GET /edits requests.
func (h *EditsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Preparation(r.Context()))
}

// HandleReset handles POST /edits/reset requests.
func (h *EditsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.deps.ResetPreparation(r.Context())
	writeJSON(w, http.StatusOK, h.deps.Preparation(r.Context()))
}
