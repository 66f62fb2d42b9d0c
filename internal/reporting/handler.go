package reporting

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// Handler serves the read-only report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/pl/cash", h.cashPL)
	r.Get("/pl/accrual", h.accrualPL)
	r.Get("/bs/cash", h.cashBS)
	r.Get("/bs/accrual", h.accrualBS)
	r.Get("/depreciation", h.depreciation)
	r.Get("/shareholder", h.shareholder)
	r.Get("/overview", h.overview)
}

func parseDate(r *http.Request, name string) time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (h *Handler) cashPL(w http.ResponseWriter, r *http.Request) {
	operatingOnly := r.URL.Query().Get("operating_only") == "true"
	report, err := h.service.CashProfitLoss(r.Context(), parseDate(r, "start"), parseDate(r, "end"), operatingOnly)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) accrualPL(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.AccrualProfitLoss(r.Context(), parseDate(r, "start"), parseDate(r, "end"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) cashBS(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CashBalanceSheet(r.Context(), parseDate(r, "as_of"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) accrualBS(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.AccrualBalanceSheet(r.Context(), parseDate(r, "as_of"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) depreciation(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Depreciation(r.Context(), parseDate(r, "start"), parseDate(r, "end"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if report.Rows == nil {
		report.Rows = []DepreciationRow{}
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) shareholder(w http.ResponseWriter, r *http.Request) {
	asOf := parseDate(r, "as_of")
	if asOf.IsZero() {
		asOf = time.Now()
	}
	report, err := h.service.Shareholder(r.Context(), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Overview(r.Context(), parseDate(r, "start"), parseDate(r, "end"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve shared.ValidationError
	switch {
	case errors.As(err, &ve):
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	default:
		h.logger.Error("report request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
