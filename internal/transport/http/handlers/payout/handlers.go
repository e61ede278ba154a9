package payouthandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"corvid/internal/domain/payout"
	"corvid/internal/transport/http/api"
	"corvid/internal/transport/http/middleware"
	"corvid/internal/transport/http/shared"
)

type Handler struct {
	Service   *payout.Service
	ExportDir string
}

func NewHandler(service *payout.Service, exportDir string) *Handler {
	return &Handler{Service: service, ExportDir: exportDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/approve-payouts", h.handleApprove)
	r.Get("/approved-payouts/{modID}", h.handleListApproved)
	r.Get("/approved-payouts-summary", h.handleSummary)
	r.Get("/payout-history", h.handleHistory)
	r.Get("/payout-history/export", h.handleHistoryExport)
	r.Post("/payout-percentage", h.handleSavePercentage)
	r.Get("/payout-percentages", h.handleListPercentages)
	r.Post("/expected-profit", h.handleSaveExpectedProfit)
	r.Get("/historical-payouts", h.handleListHistorical)
	r.Post("/save-draft-approval", h.handleSaveDraftApproval)
	r.Get("/draft-approval/{modID}", h.handleGetDraftApproval)
	r.Post("/submit-tips", h.handleSubmitTips)
	r.Get("/submitted-tips", h.handleListTips)
	r.Post("/update-tip", h.handleUpdateTip)
	r.Delete("/delete-tip", h.handleDeleteTip)
}

type approvePayload struct {
	ModID            string              `json:"modId"`
	BreakoutID       string              `json:"breakoutId"`
	Payouts          []payout.PayoutLine `json:"payouts"`
	FinancialNotes   string              `json:"financialNotes"`
	PayoutPercentage *float64            `json:"payoutPercentage"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var payload approvePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	if len(payload.Payouts) == 0 {
		v.Add("payouts", "at least one payout line is required")
	}
	if payload.PayoutPercentage != nil {
		v.Percent("payoutPercentage", *payload.PayoutPercentage)
	}
	for _, line := range payload.Payouts {
		if line.Override != nil {
			v.Percent("payouts", *line.Override)
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	results, err := h.Service.Approve(r.Context(), payout.ApproveRequest{
		ModID:            payload.ModID,
		BreakoutID:       payload.BreakoutID,
		Payouts:          payload.Payouts,
		FinancialNotes:   payload.FinancialNotes,
		PayoutPercentage: payload.PayoutPercentage,
	})
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payout.ErrUnitNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "mod or breakout not found", requestID)
	case errors.Is(err, payout.ErrNoPayoutPercentage):
		api.Fail(w, http.StatusBadRequest, "no_payout_percentage", err.Error(), requestID)
	case errors.Is(err, payout.ErrEmployeeNotFound):
		api.Fail(w, http.StatusBadRequest, "unknown_employee", err.Error(), requestID)
	case errors.Is(err, payout.ErrEmptyApproval):
		api.Fail(w, http.StatusBadRequest, "empty_approval", err.Error(), requestID)
	case err != nil:
		log.Printf("approve payouts failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "approval_failed", "failed to approve payouts", requestID)
	default:
		api.Created(w, results, requestID)
	}
}

func (h *Handler) handleListApproved(w http.ResponseWriter, r *http.Request) {
	modID := chi.URLParam(r, "modID")
	breakoutID := r.URL.Query().Get("breakoutId")

	approved, err := h.Service.ListApproved(r.Context(), modID, breakoutID)
	if err != nil {
		log.Printf("list approved failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "approved_failed", "failed to list approved payouts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, approved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		log.Printf("payout summary failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build payout summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	email := historyEmail(r)
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "email_required", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	history, err := h.Service.History(r.Context(), email)
	if errors.Is(err, payout.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("payout history failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "history_failed", "failed to load payout history", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	email := historyEmail(r)
	if email == "" {
		api.Fail(w, http.StatusBadRequest, "email_required", "email is required", middleware.GetRequestID(r.Context()))
		return
	}

	path, err := h.Service.GenerateStatementPDF(r.Context(), email, h.ExportDir)
	if errors.Is(err, payout.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("statement export failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate payout statement", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

type percentagePayload struct {
	ModID            string  `json:"modId"`
	BreakoutID       string  `json:"breakoutId"`
	PayoutPercentage float64 `json:"payoutPercentage"`
}

func (h *Handler) handleSavePercentage(w http.ResponseWriter, r *http.Request) {
	var payload percentagePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	v.Percent("payoutPercentage", payload.PayoutPercentage)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	saved, err := h.Service.SavePercentage(r.Context(), payload.ModID, payload.BreakoutID, payload.PayoutPercentage)
	if errors.Is(err, payout.ErrUnitNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "mod or breakout not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("save percentage failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "percentage_failed", "failed to save payout percentage", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, saved, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListPercentages(w http.ResponseWriter, r *http.Request) {
	percentages, err := h.Service.ListPercentages(r.Context())
	if err != nil {
		log.Printf("list percentages failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "percentages_failed", "failed to list payout percentages", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, percentages, middleware.GetRequestID(r.Context()))
}

type expectedProfitPayload struct {
	ChargeCode     string `json:"chargeCode"`
	FundingType    string `json:"fundingType"`
	ExpectedProfit string `json:"expectedProfit"`
}

func (h *Handler) handleSaveExpectedProfit(w http.ResponseWriter, r *http.Request) {
	var payload expectedProfitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("chargeCode", payload.ChargeCode, "chargeCode is required")
	v.Required("fundingType", payload.FundingType, "fundingType is required")
	v.Enum("expectedProfit", payload.ExpectedProfit, payout.ExpectedProfitBuckets, "must be one of <0, 5, 10, 15, >15")
	v.Required("expectedProfit", payload.ExpectedProfit, "expectedProfit is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	err := h.Service.SaveExpectedProfit(r.Context(), payload.ChargeCode, payload.FundingType, payload.ExpectedProfit)
	if errors.Is(err, payout.ErrUnknownBucket) {
		api.Fail(w, http.StatusBadRequest, "unknown_bucket", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("save expected profit failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "expected_profit_failed", "failed to save expected profit", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"expectedProfit": payload.ExpectedProfit}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHistorical(w http.ResponseWriter, r *http.Request) {
	historical, err := h.Service.ListHistorical(r.Context())
	if err != nil {
		log.Printf("historical payouts failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "historical_failed", "failed to list historical payouts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, historical, middleware.GetRequestID(r.Context()))
}

type draftApprovalPayload struct {
	ModID          string `json:"modId"`
	BreakoutID     string `json:"breakoutId"`
	FinancialNotes string `json:"financialNotes"`
}

func (h *Handler) handleSaveDraftApproval(w http.ResponseWriter, r *http.Request) {
	var payload draftApprovalPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("modId", payload.ModID, "modId is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.SaveDraftApproval(r.Context(), payload.ModID, payload.BreakoutID, payload.FinancialNotes); err != nil {
		log.Printf("save draft approval failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "draft_approval_failed", "failed to save draft approval", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"draftKey": payout.Key(payload.ModID, payload.BreakoutID)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetDraftApproval(w http.ResponseWriter, r *http.Request) {
	modID := chi.URLParam(r, "modID")
	breakoutID := r.URL.Query().Get("breakoutId")

	draft, err := h.Service.DraftApproval(r.Context(), modID, breakoutID)
	if err != nil {
		log.Printf("get draft approval failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "draft_approval_failed", "failed to load draft approval", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, draft, middleware.GetRequestID(r.Context()))
}

type tipLine struct {
	EmployeeID    string  `json:"employeeId"`
	TipAllocation float64 `json:"tipAllocation"`
}

type submitTipsPayload struct {
	SubmittedBy string    `json:"submittedBy"`
	Tips        []tipLine `json:"tips"`
}

func (h *Handler) handleSubmitTips(w http.ResponseWriter, r *http.Request) {
	var payload submitTipsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("submittedBy", payload.SubmittedBy, "submittedBy is required")
	if len(payload.Tips) == 0 {
		v.Add("tips", "at least one tip is required")
	}
	for _, tip := range payload.Tips {
		if tip.EmployeeID == "" {
			v.Add("tips", "every tip needs an employeeId")
		}
		if tip.TipAllocation <= 0 {
			v.Add("tips", "every tip needs a positive tipAllocation")
		}
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created := make([]payout.Tip, 0, len(payload.Tips))
	for _, line := range payload.Tips {
		tip, err := h.Service.CreateTip(r.Context(), line.EmployeeID, payload.SubmittedBy, line.TipAllocation)
		if errors.Is(err, payout.ErrEmployeeNotFound) {
			api.Fail(w, http.StatusBadRequest, "unknown_employee", err.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			log.Printf("submit tips failed: %v", err)
			api.Fail(w, http.StatusInternalServerError, "tips_failed", "failed to submit tips", middleware.GetRequestID(r.Context()))
			return
		}
		created = append(created, tip)
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTips(w http.ResponseWriter, r *http.Request) {
	tips, err := h.Service.ListTips(r.Context())
	if err != nil {
		log.Printf("list tips failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "tips_failed", "failed to list tips", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, tips, middleware.GetRequestID(r.Context()))
}

type updateTipPayload struct {
	EmployeeID    string  `json:"employeeId"`
	SubmittedBy   string  `json:"submittedBy"`
	TipAllocation float64 `json:"tipAllocation"`
}

func (h *Handler) handleUpdateTip(w http.ResponseWriter, r *http.Request) {
	var payload updateTipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employeeId is required")
	v.Required("submittedBy", payload.SubmittedBy, "submittedBy is required")
	v.Positive("tipAllocation", payload.TipAllocation, "tipAllocation must be positive")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	err := h.Service.UpdateTip(r.Context(), payload.EmployeeID, payload.SubmittedBy, payload.TipAllocation)
	if errors.Is(err, payout.ErrTipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "tip not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("update tip failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "tip_update_failed", "failed to update tip", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]float64{"tipAllocation": payload.TipAllocation}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTip(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	submittedBy := r.URL.Query().Get("submittedBy")
	if employeeID == "" || submittedBy == "" {
		api.Fail(w, http.StatusBadRequest, "keys_required", "employeeId and submittedBy are required", middleware.GetRequestID(r.Context()))
		return
	}

	err := h.Service.DeleteTip(r.Context(), employeeID, submittedBy)
	if errors.Is(err, payout.ErrTipNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "tip not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		log.Printf("delete tip failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "tip_delete_failed", "failed to delete tip", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"deleted": employeeID}, middleware.GetRequestID(r.Context()))
}

func historyEmail(r *http.Request) string {
	if email := r.URL.Query().Get("email"); email != "" {
		return email
	}
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		return identity.Email
	}
	return ""
}
