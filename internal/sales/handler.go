package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/almacen-erp/almacen-erp/internal/platform/cache"
	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
)

// cachePrefix namespaces every sale payload in the cache so a single
// invalidation sweep after a write covers all read endpoints.
const cachePrefix = "sales:"

// Handler exposes the sale endpoints. Read endpoints go through the cache
// store; writes invalidate the whole sales namespace.
type Handler struct {
	logger  *slog.Logger
	service *Service
	cache   *cache.Store
}

// NewHandler builds Handler. cache may be nil, reads then always hit the
// database.
func NewHandler(logger *slog.Logger, service *Service, store *cache.Store) *Handler {
	return &Handler{logger: logger, service: service, cache: store}
}

// MountRoutes mounts the sale routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/between", h.ListBetween)
	r.Get("/month", h.ListByMonth)
	r.Get("/year", h.ListByYear)
	r.Get("/client/{clientId}", h.ListByClient)
	r.Get("/user/{userId}", h.ListByUser)
	r.Get("/product/{productId}", h.ListByProduct)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto DTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		createError(w, "Error saving the sale", httpx.Validation("The sale or its details cannot be null or empty"))
		return
	}

	out, err := h.service.Create(r.Context(), dto)
	if err != nil {
		h.logger.Error("create sale failed", slog.Any("error", err))
		createError(w, "Error saving the sale", err)
		return
	}
	h.invalidate(r.Context())
	httpx.JSON(w, http.StatusCreated, map[string]any{"sale": out})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id", "Error deleting the sale")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete sale failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.Error(w, "Error deleting the sale", err)
		return
	}
	h.invalidate(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "id", "Sale not found")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%sid:%d", cachePrefix, id), func(w http.ResponseWriter, err error) {
		httpx.ErrorMessage(w, err.Error(), err)
	}, func(ctx context.Context) (any, error) {
		out, err := h.service.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sale": out}, nil
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, cachePrefix+"list:all", listError, func(ctx context.Context) (any, error) {
		out, err := h.service.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListByClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "clientId", "Internal error")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%slist:client:%d", cachePrefix, id), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListByClient(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "userId", "Internal error")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%slist:user:%d", cachePrefix, id), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListByUser(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r, "productId", "Internal error")
	if !ok {
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%slist:product:%d", cachePrefix, id), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListByProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		httpx.Error(w, "Internal error", httpx.Validation("Invalid month number. The month number must be between 1 and 12"))
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%slist:month:%d", cachePrefix, month), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListByMonth(ctx, month)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.Error(w, "Internal error", httpx.Validation("The year must be in a valid range (2020-9999)"))
		return
	}
	h.serveCached(w, r, fmt.Sprintf("%slist:year:%d", cachePrefix, year), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListByYear(ctx, year)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

func (h *Handler) ListBetween(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	h.serveCached(w, r, fmt.Sprintf("%slist:between:%s:%s", cachePrefix, start, end), listError, func(ctx context.Context) (any, error) {
		out, err := h.service.ListBetween(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return map[string]any{"sales": out}, nil
	})
}

// serveCached serves the endpoint payload out of the cache, filling it from
// load on a miss. Errors from load are never cached.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, respondErr func(http.ResponseWriter, error), load func(context.Context) (any, error)) {
	payload, err := h.cache.Fetch(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(out)
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// listError is the failure envelope shared by the list endpoints.
func listError(w http.ResponseWriter, err error) {
	httpx.Error(w, "Internal error", err)
}

// createError renders every rejected sale as a bad request, dangling
// references included. Only unexpected failures surface as 500.
func createError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, httpx.ErrNotFound),
		errors.Is(err, httpx.ErrValidation),
		errors.Is(err, httpx.ErrIllegalArgument):
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorBody{Message: message, Error: err.Error()})
	default:
		httpx.JSON(w, http.StatusInternalServerError, httpx.ErrorBody{Message: message})
	}
}

func (h *Handler) invalidate(ctx context.Context) {
	if err := h.cache.InvalidatePrefix(ctx, cachePrefix); err != nil {
		h.logger.Warn("cache invalidation failed", slog.Any("error", err))
	}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httpx.Error(w, message, httpx.Validation("The id must be a number"))
		return 0, false
	}
	return id, true
}
