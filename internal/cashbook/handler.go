package cashbook

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

// Handler manages cash book endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cash book routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listEntries)
	r.Post("/", h.createEntry)
	r.Get("/{id}", h.getEntry)
	r.Delete("/{id}", h.deleteEntry)
}

type createEntryRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=INCOME EXPENSE"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory"`
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description"`
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
	actor := shared.ActorFromContext(r.Context())

	entry, err := h.service.CreateEntry(r.Context(), CreateEntryInput{
		Kind:        EntryKind(req.Kind),
		Date:        date,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      amount,
		Description: req.Description,
		RecordedBy:  actor.ID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := ListEntriesRequest{
		Kind:     EntryKind(q.Get("kind")),
		Category: q.Get("category"),
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

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid entry id")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.DeleteEntry(r.Context(), id, actor.ID); err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
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
		h.logger.Error("cashbook request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
