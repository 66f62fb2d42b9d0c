package assets

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

// Handler manages asset register endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers asset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listAssets)
	r.Post("/", h.createAsset)
	r.Get("/{id}", h.getAsset)
	r.Put("/{id}", h.updateAsset)
	r.Post("/{id}/retire", h.retireAsset)
}

type assetRequest struct {
	Name            string `json:"name" validate:"required"`
	PurchaseDate    string `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	PurchaseCost    string `json:"purchase_cost" validate:"required"`
	SalvageValue    string `json:"salvage_value"`
	UsefulLifeYears int    `json:"useful_life_years" validate:"required,gt=0"`
}

func (h *Handler) decodeAsset(w http.ResponseWriter, r *http.Request) (UpdateAssetInput, bool) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return UpdateAssetInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondValidator(w, err)
		return UpdateAssetInput{}, false
	}
	cost, err := decimal.NewFromString(req.PurchaseCost)
	if err != nil {
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, "purchase_cost", "not a valid decimal")
		return UpdateAssetInput{}, false
	}
	salvage := decimal.Zero
	if req.SalvageValue != "" {
		salvage, err = decimal.NewFromString(req.SalvageValue)
		if err != nil {
			shared.RespondFieldError(w, http.StatusUnprocessableEntity, "salvage_value", "not a valid decimal")
			return UpdateAssetInput{}, false
		}
	}
	date, _ := time.Parse("2006-01-02", req.PurchaseDate)
	actor := shared.ActorFromContext(r.Context())
	return UpdateAssetInput{
		Name:            req.Name,
		PurchaseDate:    date,
		PurchaseCost:    cost,
		SalvageValue:    salvage,
		UsefulLifeYears: req.UsefulLifeYears,
		RecordedBy:      actor.ID,
	}, true
}

func (h *Handler) createAsset(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeAsset(w, r)
	if !ok {
		return
	}
	asset, err := h.service.Create(r.Context(), CreateAssetInput(input))
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, asset)
}

func (h *Handler) updateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid asset id")
		return
	}
	input, ok := h.decodeAsset(w, r)
	if !ok {
		return
	}
	asset, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, asset)
}

func (h *Handler) retireAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid asset id")
		return
	}
	actor := shared.ActorFromContext(r.Context())
	if err := h.service.Retire(r.Context(), id, actor.ID); err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) getAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid asset id")
		return
	}
	asset, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, asset)
}

func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	includeRetired := r.URL.Query().Get("include_retired") == "true"
	assets, err := h.service.List(r.Context(), includeRetired)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if assets == nil {
		assets = []Asset{}
	}
	shared.RespondJSON(w, http.StatusOK, assets)
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
		h.logger.Error("assets request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
