package accrual

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

	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// Handler manages accrual ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers accrual routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/entries", h.createEntry)
	r.Get("/entries", h.listEntries)
	r.Get("/entries/{id}", h.getEntry)
	r.Get("/obligations", h.listObligations)
	r.Get("/obligations/{id}", h.getObligation)
	r.Get("/obligations/aging", h.obligationAging)
}

type createEntryRequest struct {
	Kind         string `json:"kind" validate:"required,oneof=REVENUE EXPENSE"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Counterparty string `json:"counterparty_name" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Subcategory  string `json:"subcategory"`
	Amount       string `json:"amount" validate:"required"`
	DueDate      string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Description  string `json:"description"`
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
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
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, _ := time.Parse("2006-01-02", req.DueDate)
		dueDate = &parsed
	}
	actor := shared.ActorFromContext(r.Context())

	created, err := h.service.CreateEntry(r.Context(), CreateEntryInput{
		Kind:             EntryKind(req.Kind),
		Date:             date,
		CounterpartyName: req.Counterparty,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		Amount:           amount,
		DueDate:          dueDate,
		Description:      req.Description,
		RecordedBy:       actor.ID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListEntriesRequest{
		Kind:         EntryKind(q.Get("kind")),
		Counterparty: q.Get("counterparty"),
	}
	if from := q.Get("from"); from != "" {
		req.From, _ = time.Parse("2006-01-02", from)
	}
	if to := q.Get("to"); to != "" {
		req.To, _ = time.Parse("2006-01-02", to)
	}
	if limit := q.Get("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}

	entries, err := h.service.ListEntries(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	shared.RespondJSON(w, http.StatusOK, entries)
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid entry id")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, entry)
}

func (h *Handler) listObligations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListObligationsRequest{
		Kind:         ObligationKind(q.Get("kind")),
		Status:       ObligationStatus(q.Get("status")),
		Counterparty: q.Get("counterparty"),
	}
	if limit := q.Get("limit"); limit != "" {
		req.Limit, _ = strconv.Atoi(limit)
	}

	obligations, err := h.service.ListObligations(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if obligations == nil {
		obligations = []Obligation{}
	}
	shared.RespondJSON(w, http.StatusOK, obligations)
}

func (h *Handler) getObligation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid obligation id")
		return
	}
	obligation, err := h.service.GetObligation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, obligation)
}

func (h *Handler) obligationAging(w http.ResponseWriter, r *http.Request) {
	kind := ObligationKind(r.URL.Query().Get("kind"))
	asOf := time.Now()
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			shared.RespondFieldError(w, http.StatusBadRequest, "as_of", "invalid date")
			return
		}
		asOf = parsed
	}
	bucket, err := h.service.CalculateAging(r.Context(), kind, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, bucket)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve shared.ValidationError
	var unknown category.UnknownClassificationError
	switch {
	case errors.As(err, &ve):
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	case errors.As(err, &unknown):
		shared.RespondError(w, http.StatusUnprocessableEntity, unknown.Error())
	case errors.Is(err, shared.ErrActorRequired):
		shared.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("accrual request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
