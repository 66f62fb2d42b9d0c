package settlement

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

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// MetricsPort counts recorded settlements.
type MetricsPort interface {
	CountSettlement(kind string)
}

// Handler manages settlement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	metrics  MetricsPort
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics MetricsPort) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), metrics: metrics}
}

// MountRoutes registers settlement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listSettlements)
	r.Post("/", h.recordSettlement)
	r.Get("/{id}", h.getSettlement)
}

type recordSettlementRequest struct {
	Kind               string `json:"kind" validate:"required,oneof=RECEIPT PAYMENT CAPITAL_INJECTION"`
	Date               string `json:"date" validate:"required,datetime=2006-01-02"`
	Amount             string `json:"amount" validate:"required"`
	LinkedObligationID int64  `json:"linked_obligation_id"`
	PaymentMode        string `json:"payment_mode" validate:"required"`
	DocumentType       string `json:"document_type"`
	DocumentNumber     string `json:"document_number"`
	Category           string `json:"category"`
	Subcategory        string `json:"subcategory"`
}

func (h *Handler) recordSettlement(w http.ResponseWriter, r *http.Request) {
	var req recordSettlementRequest
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

	result, err := h.service.Record(r.Context(), RecordSettlementInput{
		Kind:               Kind(req.Kind),
		Date:               date,
		Amount:             amount,
		LinkedObligationID: req.LinkedObligationID,
		PaymentMode:        req.PaymentMode,
		DocumentType:       req.DocumentType,
		DocumentNumber:     req.DocumentNumber,
		Category:           req.Category,
		Subcategory:        req.Subcategory,
		RecordedBy:         actor.ID,
		IdempotencyKey:     r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.CountSettlement(string(result.Settlement.Kind))
	}
	shared.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) listSettlements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListSettlementsRequest{Kind: Kind(q.Get("kind"))}
	if from := q.Get("from"); from != "" {
		req.From, _ = time.Parse("2006-01-02", from)
	}
	if to := q.Get("to"); to != "" {
		req.To, _ = time.Parse("2006-01-02", to)
	}
	if recordedBy := q.Get("recorded_by"); recordedBy != "" {
		req.RecordedBy, _ = strconv.ParseInt(recordedBy, 10, 64)
	}
	if limit := q.Get("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}

	settlements, err := h.service.List(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if settlements == nil {
		settlements = []Settlement{}
	}
	shared.RespondJSON(w, http.StatusOK, settlements)
}

func (h *Handler) getSettlement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid settlement id")
		return
	}
	settlement, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, settlement)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve shared.ValidationError
	var insufficient InsufficientBalanceError
	var missingType MissingDocumentTypeError
	var missingNumber MissingDocumentNumberError
	var mismatch ObligationKindMismatchError
	switch {
	case errors.As(err, &ve):
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	case errors.As(err, &insufficient):
		shared.RespondError(w, http.StatusConflict, insufficient.Error())
	case errors.As(err, &missingType):
		shared.RespondError(w, http.StatusUnprocessableEntity, missingType.Error())
	case errors.As(err, &missingNumber):
		shared.RespondError(w, http.StatusUnprocessableEntity, missingNumber.Error())
	case errors.As(err, &mismatch):
		shared.RespondError(w, http.StatusConflict, mismatch.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		shared.RespondError(w, http.StatusConflict, "settlement already recorded for this idempotency key")
	case errors.Is(err, shared.ErrActorRequired):
		shared.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, accrual.ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("settlement request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
