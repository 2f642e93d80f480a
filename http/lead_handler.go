package http

import (
	"errors"
	"net/http"

	"loan-referral/domain"
	"loan-referral/form"
	"loan-referral/service"
)

type LeadHandler struct {
	service *service.LeadService
}

func NewLeadHandler(service *service.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Apply takes a single-step application. Field-level problems come back as
// 422 with the form's messages; they are not request errors.
func (h *LeadHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var in domain.InitialApplication
	if !decode(w, r, &in) {
		return
	}

	out, err := h.service.Apply(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, out)
	case errors.Is(err, form.ErrSectionBlocked):
		writeJSON(w, http.StatusUnprocessableEntity, out)
	case errors.Is(err, form.ErrSubmissionFailed):
		writeJSON(w, http.StatusBadGateway, out)
	default:
		writeError(w, http.StatusInternalServerError, "lead could not be processed")
	}
}
