package category

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// Handler manages category registry endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers category routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listCategories)
	r.Post("/", h.createCategory)
	r.Get("/{id}", h.getCategory)
	r.Post("/{id}/subcategories", h.addSubcategory)
	r.Post("/{id}/deactivate", h.deactivateCategory)
}

type createCategoryRequest struct {
	Name          string   `json:"name" validate:"required"`
	Kind          string   `json:"kind" validate:"required,oneof=INCOME EXPENSE"`
	Type          string   `json:"type" validate:"omitempty,oneof=income capital"`
	Subcategories []string `json:"subcategories" validate:"omitempty,dive,required"`
	Description   string   `json:"description"`
}

type addSubcategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Kind: Kind(r.URL.Query().Get("kind")),
		Type: r.URL.Query().Get("type"),
	}
	categories, err := h.service.ListActive(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if categories == nil {
		categories = []Category{}
	}
	shared.RespondJSON(w, http.StatusOK, categories)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid category id")
		return
	}
	cat, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, cat)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondValidator(w, err)
		return
	}
	created, err := h.service.Create(r.Context(), CreateCategoryInput{
		Name:          req.Name,
		Kind:          Kind(req.Kind),
		Type:          req.Type,
		Subcategories: req.Subcategories,
		Description:   req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) addSubcategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid category id")
		return
	}
	var req addSubcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		shared.RespondValidator(w, err)
		return
	}
	updated, err := h.service.AddSubcategory(r.Context(), id, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, updated)
}

func (h *Handler) deactivateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		shared.RespondFieldError(w, http.StatusBadRequest, "id", "invalid category id")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	shared.RespondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve shared.ValidationError
	var dupCat DuplicateCategoryError
	var dupSub DuplicateSubcategoryError
	switch {
	case errors.As(err, &ve):
		shared.RespondFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	case errors.As(err, &dupCat), errors.As(err, &dupSub):
		shared.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		shared.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("category request failed", slog.Any("error", err))
		shared.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
