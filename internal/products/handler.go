package products

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// Handler exposes the product CRUD surface.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate) *Handler {
	return &Handler{logger: logger, service: service, validate: validate}
}

// MountRoutes mounts the product routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto DTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Error(w, "Error saving the product", httpx.Validation("The product cannot be null"))
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Error(w, "Error saving the product", httpx.Validation(err.Error()))
		return
	}

	out, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.logger.Error("create product failed", slog.Any("error", err))
		httpx.Error(w, "Error saving the product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"product": out})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "Error updating the product")
	if !ok {
		return
	}
	var dto DTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.Error(w, "Error updating the product", httpx.Validation("The product cannot be null"))
		return
	}
	if err := h.validate.Struct(dto); err != nil {
		httpx.Error(w, "Error updating the product", httpx.Validation(err.Error()))
		return
	}

	out, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.logger.Error("update product failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.Error(w, "Error updating the product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": out})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "Error deleting the product")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete product failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.Error(w, "Error deleting the product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "Product not found")
	if !ok {
		return
	}
	out, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.ErrorMessage(w, err.Error(), err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": out})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.ErrorMessage(w, "Internal error", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, message, httpx.Validation("The id must be a number"))
		return 0, false
	}
	return id, true
}
