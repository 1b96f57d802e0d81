package api

import (
	"encoding/json"
	"net/http"
	"time"

	"online-poll-system/internal/domain/poll"
	"online-poll-system/internal/platform/apperr"
)

type createPollRequest struct {
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	ExpiresAt   *string  `json:"expires_at"`
	Options     []string `json:"options"`
}

type addOptionRequest struct {
	Text string `json:"text"`
}

// @Summary     Create a poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Param       request  body      createPollRequest  true  "Poll payload"
// @Success     201      {object}  map[string]int64
// @Failure     400      {object}  map[string]string  "invalid body"
// @Failure     403      {object}  map[string]string  "forbidden"
// @Router      /api/v1/polls [post]
func (h *Handler) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}

	p := &poll.Poll{
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   parseTimePtr(req.ExpiresAt),
		CreatorID:   userIDFromCtx(r),
	}

	opts := make([]poll.Option, 0, len(req.Options))
	for _, text := range req.Options {
		opts = append(opts, poll.Option{Text: text})
	}

	id, err := h.pollSvc.Create(r.Context(), p, opts)
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", err.Error(), err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.pollSvc.ListActive(r.Context(), time.Now())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *Handler) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	p, opts, err := h.pollSvc.Get(r.Context(), id)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"poll":    p,
		"options": opts,
	})
}

// @Summary     Add an option to a poll
// @Tags        polls
// @Security    BearerAuth
// @Accept      json
// @Param       id       path      int64             true  "Poll ID"
// @Param       request  body      addOptionRequest  true  "Option text"
// @Success     201      {object}  poll.Option
// @Failure     400      {object}  map[string]string  "invalid body or poll expired"
// @Failure     403      {object}  map[string]string  "forbidden"
// @Failure     404      {object}  map[string]string  "not found"
// @Router      /api/v1/polls/{id}/options [post]
func (h *Handler) handleAddOption(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	var req addOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid body", err))
		return
	}
	if req.Text == "" {
		errorResponse(w, apperr.BadRequest("invalid_input", "text is required", nil))
		return
	}

	o, err := h.pollSvc.AddOption(r.Context(), id, req.Text, time.Now())
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleDeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		errorResponse(w, apperr.BadRequest("invalid_input", "invalid poll id", err))
		return
	}

	if err := h.pollSvc.Delete(r.Context(), id); err != nil {
		errorResponse(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
