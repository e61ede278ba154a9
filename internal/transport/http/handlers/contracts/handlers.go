package contractshandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corvid/internal/domain/contracts"
	"corvid/internal/transport/http/api"
	"corvid/internal/transport/http/middleware"
	"corvid/internal/transport/http/shared"
)

type Handler struct {
	Service *contracts.Service
	Store   *contracts.Store
}

func NewHandler(service *contracts.Service) *Handler {
	return &Handler{Service: service, Store: service.Store()}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/exec-data", h.handleExecData)
	r.Get("/mods/{modID}", h.handleModDetails)
	r.Get("/user-mods", h.handleUserMods)
	r.Get("/breakouts/{modID}", h.handleListBreakouts)
	r.Post("/submit-breakout", h.handleSubmitBreakout)
	r.Post("/update-breakouts", h.handleUpdateBreakouts)
	r.Delete("/breakouts/{breakoutID}", h.handleDeleteBreakout)
	r.Get("/capture-leads/{modID}", h.handleListCaptureLeads)
	r.Post("/submit-capture-leads", h.handleSubmitCaptureLeads)
	r.Post("/flag-for-approval", h.handleFlagForApproval)
}

func (h *Handler) handleExecData(w http.ResponseWriter, r *http.Request) {
	mods, err := h.Store.ListMods(r.Context())
	if err != nil {
		log.Printf("exec data failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "exec_data_failed", "failed to list contract mods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, mods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleModDetails(w http.ResponseWriter, r *http.Request) {
	modID := chi.URLParam(r, "modID")
	details, err := h.Store.GetModDetails(r.Context(), modID)
	if errors.Is(err, contracts.ErrModNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("mod details failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "mod_details_failed", "failed to load mod details", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUserMods(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if identity, ok := middleware.GetIdentity(r.Context()); ok {
			email = identity.Email
		}
	}
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "email_required", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	mods, err := h.Store.ListModsForCaptureLead(r.Context(), email)
	if errors.Is(err, contracts.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("user mods failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "user_mods_failed", "failed to list mods for user", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, mods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListBreakouts(w http.ResponseWriter, r *http.Request) {
	modID := chi.URLParam(r, "modID")
	breakouts, err := h.Store.ListBreakouts(r.Context(), modID)
	if err != nil {
		log.Printf("list breakouts failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "breakouts_failed", "failed to list breakouts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, breakouts, middleware.GetRequestID(r.Context()))
}

type submitBreakoutPayload struct {
	ModID         string  `json:"modId"`
	ChargeCode    string  `json:"chargeCode"`
	FundingAmount float64 `json:"fundingAmount"`
	FundingType   string  `json:"fundingType"`
}

func (h *Handler) handleSubmitBreakout(w http.ResponseWriter, r *http.Request) {
	var payload submitBreakoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	v.Required("chargeCode", payload.ChargeCode, "chargeCode is required")
	v.Positive("fundingAmount", payload.FundingAmount, "fundingAmount must be positive")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	breakoutID, err := h.Service.CreateBreakout(r.Context(), payload.ModID, contracts.BreakoutInput{
		ChargeCode:    payload.ChargeCode,
		FundingAmount: payload.FundingAmount,
		FundingType:   payload.FundingType,
	})
	if errors.Is(err, contracts.ErrModNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("submit breakout failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "breakout_create_failed", "failed to create breakout", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"breakoutId": breakoutID}, middleware.GetRequestID(r.Context()))
}

type updateBreakoutsPayload struct {
	ModID     string                   `json:"modId"`
	Breakouts []contracts.BreakoutInput `json:"breakouts"`
}

func (h *Handler) handleUpdateBreakouts(w http.ResponseWriter, r *http.Request) {
	var payload updateBreakoutsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	for _, b := range payload.Breakouts {
		if b.ChargeCode == "" {
			v.Add("breakouts", "every breakout needs a chargeCode")
		}
		if b.FundingAmount <= 0 {
			v.Add("breakouts", "every breakout needs a positive fundingAmount")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	breakouts, err := h.Service.ReplaceBreakouts(r.Context(), payload.ModID, payload.Breakouts)
	var mismatch *contracts.FundingMismatchError
	if errors.As(err, &mismatch) {
		api.FailWithDetails(w, http.StatusBadRequest, "funding_mismatch", "breakout funding must equal the parent mod funding",
			map[string]any{
				"parentFunding":    mismatch.ParentFunding,
				"submittedFunding": mismatch.SubmittedFunding,
				"remaining":        mismatch.Remaining(),
			},
			middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, contracts.ErrModNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("update breakouts failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "breakouts_update_failed", "failed to update breakouts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, breakouts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteBreakout(w http.ResponseWriter, r *http.Request) {
	breakoutID := chi.URLParam(r, "breakoutID")
	err := h.Service.DeleteBreakout(r.Context(), breakoutID)
	if errors.Is(err, contracts.ErrBreakoutNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "breakout not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("delete breakout failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "breakout_delete_failed", "failed to delete breakout", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"deleted": breakoutID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCaptureLeads(w http.ResponseWriter, r *http.Request) {
	unit := contracts.UnitRef{
		ModID:      chi.URLParam(r, "modID"),
		BreakoutID: r.URL.Query().Get("breakoutId"),
	}
	leads, err := h.Store.ListCaptureLeads(r.Context(), unit)
	if err != nil {
		log.Printf("capture leads failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "capture_leads_failed", "failed to list capture leads", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, leads, middleware.GetRequestID(r.Context()))
}

type submitCaptureLeadsPayload struct {
	ModID         string   `json:"modId"`
	BreakoutID    string   `json:"breakoutId"`
	EmployeeNames []string `json:"employeeNames"`
}

func (h *Handler) handleSubmitCaptureLeads(w http.ResponseWriter, r *http.Request) {
	var payload submitCaptureLeadsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if payload.ModID == "" && payload.BreakoutID == "" {
		v.Add("modId", "either modId or breakoutId is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	unit := contracts.UnitRef{ModID: payload.ModID, BreakoutID: payload.BreakoutID}
	leads, err := h.Service.ReplaceCaptureLeads(r.Context(), unit, payload.EmployeeNames)
	if errors.Is(err, contracts.ErrUnitAmbiguous) {
		api.Fail(w, http.StatusBadRequest, "unit_ambiguous", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if errors.Is(err, contracts.ErrModNotFound) || errors.Is(err, contracts.ErrBreakoutNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod or breakout not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("submit capture leads failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "capture_leads_update_failed", "failed to update capture leads", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, leads, middleware.GetRequestID(r.Context()))
}

type flagPayload struct {
	ModID      string `json:"modId"`
	BreakoutID string `json:"breakoutId"`
	Flagged    bool   `json:"flagged"`
}

func (h *Handler) handleFlagForApproval(w http.ResponseWriter, r *http.Request) {
	var payload flagPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.ModID == "" && payload.BreakoutID == "" {
		api.Fail(w, http.StatusBadRequest, "unit_required", "either modId or breakoutId is required", middleware.GetRequestID(r.Context()))
		return
	}

	unit := contracts.UnitRef{ModID: payload.ModID, BreakoutID: payload.BreakoutID}
	err := h.Service.SetFlag(r.Context(), unit, payload.Flagged)
	if errors.Is(err, contracts.ErrModNotFound) || errors.Is(err, contracts.ErrBreakoutNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod or breakout not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("flag for approval failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "flag_failed", "failed to update approval flag", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"flagged": payload.Flagged}, middleware.GetRequestID(r.Context()))
}
