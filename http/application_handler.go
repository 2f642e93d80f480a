package http

import (
	"errors"
	"net/http"

	"loan-referral/form"
	"loan-referral/repository"
	"loan-referral/service"
)

type fieldsRequest struct {
	Values map[string]form.Value `json:"values" validate:"required,min=1"`
}

type jumpRequest struct {
	Section *int `json:"section" validate:"required,gte=0"`
}

// ApplicationHandler drives multi-step application sessions.
type ApplicationHandler struct {
	service *service.ApplicationService
}

func NewApplicationHandler(service *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session could not be created")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), r.PathValue("id"))
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Fields(w http.ResponseWriter, r *http.Request) {
	var in fieldsRequest
	if !decode(w, r, &in) {
		return
	}
	view, err := h.service.Change(r.Context(), r.PathValue("id"), in.Values)
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Next(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Next(r.Context(), r.PathValue("id"))
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Previous(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Previous(r.Context(), r.PathValue("id"))
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Jump(w http.ResponseWriter, r *http.Request) {
	var in jumpRequest
	if !decode(w, r, &in) {
		return
	}
	view, err := h.service.JumpTo(r.Context(), r.PathValue("id"), *in.Section)
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Submit(r.Context(), r.PathValue("id"))
	h.respond(w, view, err)
}

func (h *ApplicationHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), r.PathValue("id")); err != nil {
		h.respond(w, service.ApplicationView{}, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respond maps service outcomes to status codes. A blocked or failed
// transition still carries the session view so the client can show it.
func (h *ApplicationHandler) respond(w http.ResponseWriter, view service.ApplicationView, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view)
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "application not found")
	case errors.Is(err, form.ErrSectionBlocked):
		writeJSON(w, http.StatusUnprocessableEntity, view)
	case errors.Is(err, form.ErrUnknownField),
		errors.Is(err, form.ErrJumpAhead),
		errors.Is(err, form.ErrSectionRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, form.ErrSubmitInProgress),
		errors.Is(err, form.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, form.ErrSubmissionFailed):
		writeJSON(w, http.StatusBadGateway, view)
	default:
		writeError(w, http.StatusInternalServerError, "application could not be processed")
	}
}
