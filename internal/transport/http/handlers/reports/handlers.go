package reportshandler

import (
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"corvid/internal/domain/reports"
	"corvid/internal/transport/http/api"
	"corvid/internal/transport/http/middleware"
	"corvid/internal/transport/http/shared"
)

type Handler struct {
	Store     *reports.Store
	ExportDir string
}

func NewHandler(store *reports.Store, exportDir string) *Handler {
	return &Handler{Store: store, ExportDir: exportDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/data", h.handleIncomeData)
	r.Get("/income", h.handleConsolidatedIncome)
	r.Get("/balance", h.handleConsolidatedBalance)
	r.Get("/net-income", h.handleNetIncome)
	r.Get("/financial-summary", h.handleBalanceSummary)
	r.Get("/income-summary", h.handleIncomeSummary)
	r.Get("/income-summary/export", h.handleIncomeSummaryExport)
	r.Get("/income-chart", h.handleIncomeChart)
}

func (h *Handler) handleIncomeData(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 500, 5000)
	filter := reports.IncomeDataFilter{
		Category: r.URL.Query().Get("category"),
		Entity:   r.URL.Query().Get("entity"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a number", middleware.GetRequestID(r.Context()))
			return
		}
		filter.Year = year
	}

	data, err := h.Store.ListIncomeData(r.Context(), filter)
	if err != nil {
		log.Printf("income data failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "income_data_failed", "failed to load income data", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, data, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleConsolidatedIncome(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.Store.ConsolidatedIncome(r.Context(), r.URL.Query().Get("entity"))
	if err != nil {
		log.Printf("consolidated income failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "income_failed", "failed to load consolidated income", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, grouped, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleConsolidatedBalance(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.Store.ConsolidatedBalance(r.Context(), r.URL.Query().Get("entity"))
	if err != nil {
		log.Printf("consolidated balance failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "balance_failed", "failed to load consolidated balance", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, grouped, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleNetIncome(w http.ResponseWriter, r *http.Request) {
	period, ok := requiredInt(w, r, "period")
	if !ok {
		return
	}

	net, err := h.Store.NetIncome(r.Context(), r.URL.Query().Get("entity"), period)
	if err != nil {
		log.Printf("net income failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "net_income_failed", "failed to load net income", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, net, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalanceSummary(w http.ResponseWriter, r *http.Request) {
	year, period, entity, ok := summaryParams(w, r)
	if !ok {
		return
	}

	summary, err := h.Store.BalanceSummary(r.Context(), year, period, entity)
	if err != nil {
		log.Printf("balance summary failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "balance_summary_failed", "failed to load balance summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleIncomeSummary(w http.ResponseWriter, r *http.Request) {
	year, period, entity, ok := summaryParams(w, r)
	if !ok {
		return
	}

	summary, err := h.Store.IncomeSummary(r.Context(), year, period, entity)
	if err != nil {
		log.Printf("income summary failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "income_summary_failed", "failed to load income summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleIncomeSummaryExport(w http.ResponseWriter, r *http.Request) {
	year, period, entity, ok := summaryParams(w, r)
	if !ok {
		return
	}

	path, err := h.Store.ExportIncomeSummaryXLSX(r.Context(), year, period, entity, h.ExportDir)
	if err != nil {
		log.Printf("income summary export failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export income summary", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	http.ServeFile(w, r, path)
}

func (h *Handler) handleIncomeChart(w http.ResponseWriter, r *http.Request) {
	year, ok := requiredInt(w, r, "year")
	if !ok {
		return
	}
	entity := r.URL.Query().Get("entity")
	if entity == "" {
		entity = reports.ConsolidatedEntity
	}

	chart, err := h.Store.IncomeChart(r.Context(), year, entity, r.URL.Query().Get("category"))
	if err != nil {
		log.Printf("income chart failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "income_chart_failed", "failed to load income chart data", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, chart, middleware.GetRequestID(r.Context()))
}

func requiredInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		api.Fail(w, http.StatusBadRequest, name+"_required", name+" is required", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_"+name, name+" must be a number", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return value, true
}

func summaryParams(w http.ResponseWriter, r *http.Request) (year, period int, entity string, ok bool) {
	year, ok = requiredInt(w, r, "year")
	if !ok {
		return 0, 0, "", false
	}
	period, ok = requiredInt(w, r, "period")
	if !ok {
		return 0, 0, "", false
	}
	entity = r.URL.Query().Get("entity")
	if entity == "" {
		entity = reports.ConsolidatedEntity
	}
	return year, period, entity, true
}
