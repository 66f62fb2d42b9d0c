package adjustment

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// Handler manages adjustment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers adjustment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listAdjustments)
	r.Post("/", h.createAdjustment)
	r.Get("/{id}", h.getAdjustment)
}

type createAdjustmentRequest struct {
	Type        string `json:"type" validate:"required,oneof=OUTSTANDING_EXPENSE PREPAID_EXPENSE ACCRUED_INCOME UNEARNED_INCOME"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (h *Handler) createAdjustment(w http.ResponseWriter, r *http.Request) {
	var req createAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondValidator(w, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, "amount", "not a valid decimal")
		return
	}
	date, _ := time.Parse("2006-01-02", req.Date)
	actor := shared.ActorFromContext(r.Context())

	adj, err := h.service.Create(r.Context(), CreateAdjustmentInput{
		Type:        Type(req.Type),
		Date:        date,
		Amount:      amount,
		Description: req.Description,
		RecordedBy:  actor.ID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, adj)
}

func (h *Handler) listAdjustments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListAdjustmentsRequest{Type: Type(q.Get("type"))}
	if from := q.Get("from"); from != "" {
		req.From, _ = time.Parse("2006-01-02", from)
	}
	if to := q.Get("to"); to != "" {
		req.To, _ = time.Parse("2006-01-02", to)
	}
	if limit := q.Get("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}

	adjustments, err := h.service.List(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if adjustments == nil {
		adjustments = []Adjustment{}
	}
	shared.RespondJSON(w, http.StatusOK, adjustments)
}

func (h *Handler) getAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid adjustment id")
		return
	}
	adj, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, adj)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve shared.ValidationError
	switch {
	case errors.As(err, &ve):
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	case errors.Is(err, shared.ErrActorRequired):
		shared.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("adjustment request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
