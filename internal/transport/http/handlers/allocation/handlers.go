package allocationhandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corvid/internal/domain/allocation"
	"corvid/internal/transport/http/api"
	"corvid/internal/transport/http/middleware"
	"corvid/internal/transport/http/shared"
)

type Handler struct {
	Service *allocation.Service
}

func NewHandler(service *allocation.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/allocations/{modID}", h.handleGetSubmitted)
	r.Post("/submit-allocation", h.handleSubmit)
	r.Post("/save-draft-allocation", h.handleSaveDraft)
	r.Get("/draft-allocations/{modID}", h.handleGetDraft)
	r.Delete("/unsubmit-allocation/{modID}", h.handleUnsubmit)
	r.Delete("/draft-allocations/{modID}", h.handleClearDraft)
	r.Get("/allocation-status/{modID}", h.handleStatus)
	r.Get("/allocation-summary/{modID}", h.handleSummary)
}

type submissionPayload struct {
	ModID       string            `json:"modId"`
	BreakoutID  string            `json:"breakoutId"`
	SubmittedBy string            `json:"submittedBy"`
	Allocations []allocation.Line `json:"allocations"`
	Notes       string            `json:"notes"`
}

func (p submissionPayload) toSubmission() allocation.Submission {
	return allocation.Submission{
		ModID:       p.ModID,
		BreakoutID:  p.BreakoutID,
		SubmittedBy: p.SubmittedBy,
		Lines:       p.Allocations,
		Notes:       p.Notes,
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	err := h.Service.Submit(r.Context(), payload.toSubmission())
	if handled := writeSubmissionError(w, r, err, "allocation submit failed"); handled {
		return
	}
	api.Created(w, map[string]string{"status": allocation.StatusSubmitted}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeSubmission(w, r)
	if !ok {
		return
	}

	err := h.Service.SaveDraft(r.Context(), payload.toSubmission())
	if handled := writeSubmissionError(w, r, err, "draft save failed"); handled {
		return
	}
	api.Success(w, map[string]string{"status": allocation.StatusDraftSaved}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSubmitted(w http.ResponseWriter, r *http.Request) {
	modID, breakoutID, submittedBy, ok := readKeys(w, r, true)
	if !ok {
		return
	}

	view, err := h.Service.Submitted(r.Context(), modID, breakoutID, submittedBy)
	if err != nil {
		log.Printf("get allocations failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "allocations_failed", "failed to load allocations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	modID, breakoutID, submittedBy, ok := readKeys(w, r, true)
	if !ok {
		return
	}

	view, err := h.Service.Draft(r.Context(), modID, breakoutID, submittedBy)
	if err != nil {
		log.Printf("get draft failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "draft_failed", "failed to load draft", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, view, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUnsubmit(w http.ResponseWriter, r *http.Request) {
	modID, breakoutID, submittedBy, ok := readKeys(w, r, true)
	if !ok {
		return
	}

	if err := h.Service.Unsubmit(r.Context(), modID, breakoutID, submittedBy); err != nil {
		log.Printf("unsubmit failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "unsubmit_failed", "failed to retract allocation", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": allocation.StatusNoDraft}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleClearDraft(w http.ResponseWriter, r *http.Request) {
	modID, breakoutID, submittedBy, ok := readKeys(w, r, true)
	if !ok {
		return
	}

	if err := h.Service.ClearDraft(r.Context(), modID, breakoutID, submittedBy); err != nil {
		log.Printf("clear draft failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "clear_draft_failed", "failed to clear draft", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": allocation.StatusNoDraft}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	modID, breakoutID, submittedBy, ok := readKeys(w, r, false)
	if !ok {
		return
	}

	approver, err := h.Service.ApproverStatusFor(r.Context(), modID, breakoutID)
	if err != nil {
		log.Printf("approver status failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "status_failed", "failed to compute status", middleware.GetRequestID(r.Context()))
		return
	}

	out := map[string]string{"approverStatus": approver}
	if submittedBy != "" {
		voter, err := h.Service.VoterStatusFor(r.Context(), modID, breakoutID, submittedBy)
		if err != nil {
			log.Printf("voter status failed: %v", err)
			api.Fail(w, http.StatusInternalServerError, "status_failed", "failed to compute status", middleware.GetRequestID(r.Context()))
			return
		}
		out["voterStatus"] = voter
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	modID := chi.URLParam(r, "modID")
	breakoutID := r.URL.Query().Get("breakoutId")

	summary, err := h.Service.Summary(r.Context(), modID, breakoutID)
	if err != nil {
		log.Printf("allocation summary failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build allocation summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (submissionPayload, bool) {
	var payload submissionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return payload, false
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	v.Required("submittedBy", payload.SubmittedBy, "submittedBy is required")
	for _, line := range payload.Allocations {
		v.Percent("allocations", line.Percent)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return payload, false
	}
	return payload, true
}

// writeSubmissionError maps service errors onto the response envelope and
// reports whether it wrote one.
func writeSubmissionError(w http.ResponseWriter, r *http.Request, err error, logPrefix string) bool {
	if err == nil {
		return false
	}
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, allocation.ErrEmptySubmission):
		api.Fail(w, http.StatusBadRequest, "empty_submission", err.Error(), requestID)
	case errors.Is(err, allocation.ErrTotalNotHundred):
		api.Fail(w, http.StatusBadRequest, "total_not_hundred", err.Error(), requestID)
	case errors.Is(err, allocation.ErrBreakoutRequired):
		api.Fail(w, http.StatusBadRequest, "breakout_required", err.Error(), requestID)
	case errors.Is(err, allocation.ErrNomineeUnknown), errors.Is(err, allocation.ErrSubmitterUnknown):
		api.Fail(w, http.StatusBadRequest, "unknown_employee", err.Error(), requestID)
	default:
		log.Printf("%s: %v", logPrefix, err)
		api.Fail(w, http.StatusInternalServerError, "allocation_failed", "allocation operation failed", requestID)
	}
	return true
}

func readKeys(w http.ResponseWriter, r *http.Request, requireSubmitter bool) (modID, breakoutID, submittedBy string, ok bool) {
	modID = chi.URLParam(r, "modID")
	breakoutID = r.URL.Query().Get("breakoutId")
	submittedBy = r.URL.Query().Get("submittedBy")
	if requireSubmitter && submittedBy == "" {
		api.Fail(w, http.StatusBadRequest, "submitter_required", "submittedBy is required", middleware.GetRequestID(r.Context()))
		return "", "", "", false
	}
	return modID, breakoutID, submittedBy, true
}
