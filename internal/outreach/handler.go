// HTTP handlers for the outreach service.
//
// Routes:
//
//	GET  /tracking                    → grouped candidate collection (filters via query)
//	POST /tracking/bulk/contact       → contact many candidates
//	POST /tracking/bulk/resend        → resend to no_response candidates
//	POST /tracking/bulk/status        → change status for many candidates
//	POST /tracking/{id}/note          → append a note
//	POST /tracking/{id}/status/force  → operator override outside the table
//	POST /tracking/{id}/stage         → move the funnel application stage
package outreach

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"talentflow/outreach-service/internal/funnel"
)

// Handler wires the orchestrator and query surface to HTTP.
type Handler struct {
	store    CandidateStore
	orch     *Orchestrator
	reporter *Reporter
	stages   *funnel.Store
}

// NewHandler returns a configured Handler. reporter may be nil (no event
// publishing, e.g. in tests).
func NewHandler(store CandidateStore, orch *Orchestrator, reporter *Reporter, stages *funnel.Store) *Handler {
	return &Handler{store: store, orch: orch, reporter: reporter, stages: stages}
}

// RegisterRoutes mounts all tracking routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tracking", h.listTracking)
	r.Post("/tracking/bulk/contact", h.bulkContact)
	r.Post("/tracking/bulk/resend", h.bulkResend)
	r.Post("/tracking/bulk/status", h.bulkStatus)
	r.Post("/tracking/{id}/note", h.addNote)
	r.Post("/tracking/{id}/status/force", h.forceStatus)
	r.Post("/tracking/{id}/stage", h.moveStage)
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// listTracking returns the candidate collection grouped by status, after
// applying the optional ?role=, ?status= (repeatable) and ?search= filters.
func (h *Handler) listTracking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters Filters
	for _, raw := range q["status"] {
		st, err := ParseStatus(raw)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		filters.Status = append(filters.Status, st)
	}
	filters.Search = q.Get("search")

	candidates, err := h.store.FetchTracking(r.Context(), q.Get("role"))
	if err != nil {
		slog.Error("fetch tracking failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	filtered := ApplyFilters(candidates, filters)
	jsonOK(w, struct {
		ByStatus map[Status][]Candidate `json:"byStatus"`
		Total    int                    `json:"total"`
	}{
		ByStatus: GroupByStatus(filtered),
		Total:    len(filtered),
	})
}

// ─── Bulk operations ─────────────────────────────────────────────────────────

func (h *Handler) bulkContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CandidateIDs []string `json:"candidateIds"`
		Channel      string   `json:"channel"`
		Template     string   `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	channel, ok := ParseChannel(body.Channel)
	if !ok {
		jsonError(w, "channel must be email or whatsapp", http.StatusBadRequest)
		return
	}

	res, err := h.orch.ContactMultiple(r.Context(), body.CandidateIDs, channel, body.Template)
	h.respondBulk(w, r, ActionContact, res, err)
}

func (h *Handler) bulkResend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CandidateIDs  []string `json:"candidateIds"`
		CustomMessage string   `json:"customMessage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	res, err := h.orch.ResendToNoResponse(r.Context(), body.CandidateIDs, body.CustomMessage)
	h.respondBulk(w, r, ActionResend, res, err)
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CandidateIDs []string `json:"candidateIds"`
		NewStatus    string   `json:"newStatus"`
		Notes        *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	target, err := ParseStatus(body.NewStatus)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, rerr := h.orch.UpdateStatus(r.Context(), body.CandidateIDs, target, body.Notes)
	h.respondBulk(w, r, ActionUpdateStatus, res, rerr)
}

// ─── Single-candidate operations ─────────────────────────────────────────────

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Note) == "" {
		jsonError(w, "body must contain note", http.StatusBadRequest)
		return
	}

	res, err := h.orch.AddNote(r.Context(), chi.URLParam(r, "id"), body.Note)
	h.respondBulk(w, r, ActionAddNote, res, err)
}

func (h *Handler) forceStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NewStatus string  `json:"newStatus"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	target, err := ParseStatus(body.NewStatus)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	c, err := h.orch.ForceStatus(r.Context(), chi.URLParam(r, "id"), target, body.Notes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		slog.Error("force status failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, c)
}

func (h *Handler) moveStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ToStage   string  `json:"toStage"`
		ChangedBy *string `json:"changedBy"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	to, err := funnel.ParseStage(body.ToStage)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	app, err := h.stages.MoveStage(r.Context(), chi.URLParam(r, "id"), to, body.ChangedBy, body.Notes)
	if err != nil {
		var moveErr *funnel.MoveError
		switch {
		case errors.Is(err, funnel.ErrApplicationNotFound):
			jsonError(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &moveErr):
			jsonError(w, moveErr.Error(), http.StatusBadRequest)
		default:
			slog.Error("move stage failed", "err", err)
			jsonError(w, "database error", http.StatusInternalServerError)
		}
		return
	}
	jsonOK(w, app)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// respondBulk writes one bulk result, publishing the aggregate notification
// first. A *BatchError means nothing was attempted and maps to 503 so the
// caller can retry the whole batch.
func (h *Handler) respondBulk(w http.ResponseWriter, r *http.Request, action string, res *BulkResult, err error) {
	if err != nil {
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			jsonError(w, batchErr.Error(), http.StatusServiceUnavailable)
			return
		}
		slog.Error("bulk operation failed", "action", action, "err", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if h.reporter != nil {
		h.reporter.Report(r.Context(), action, res)
	}
	jsonOK(w, res)
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
