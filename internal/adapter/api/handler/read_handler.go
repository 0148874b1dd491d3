package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/V4T54L/storesync/internal/domain"
)

// ReadHandler serves the read-only rows consumed by downstream analytics:
// products, customers, and orders filtered by tenant and date range. There is
// no write path through this surface.
type ReadHandler struct {
	tenants domain.TenantRepository
	store   domain.ReadRepository
	logger  *slog.Logger
}

// NewReadHandler creates a new ReadHandler.
func NewReadHandler(tenants domain.TenantRepository, store domain.ReadRepository, logger *slog.Logger) *ReadHandler {
	return &ReadHandler{tenants: tenants, store: store, logger: logger}
}

// Products handles GET /api/products?shop=...&from=...&to=...
func (h *ReadHandler) Products(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filterFromRequest(w, r)
	if !ok {
		return
	}
	products, err := h.store.ListProducts(r.Context(), f)
	if err != nil {
		h.listError(w, "products", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": emptyIfNil(products)})
}

// Customers handles GET /api/customers?shop=...&from=...&to=...
func (h *ReadHandler) Customers(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filterFromRequest(w, r)
	if !ok {
		return
	}
	customers, err := h.store.ListCustomers(r.Context(), f)
	if err != nil {
		h.listError(w, "customers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": emptyIfNil(customers)})
}

// Orders handles GET /api/orders?shop=...&from=...&to=...
func (h *ReadHandler) Orders(w http.ResponseWriter, r *http.Request) {
	f, ok := h.filterFromRequest(w, r)
	if !ok {
		return
	}
	orders, err := h.store.ListOrders(r.Context(), f)
	if err != nil {
		h.listError(w, "orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": emptyIfNil(orders)})
}

// filterFromRequest resolves the shop query parameter to a tenant and parses
// the optional RFC3339 date range. It writes the error response itself and
// returns ok=false when the request cannot be served.
func (h *ReadHandler) filterFromRequest(w http.ResponseWriter, r *http.Request) (domain.ReadFilter, bool) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shop query parameter is required"})
		return domain.ReadFilter{}, false
	}

	tenant, err := h.tenants.ResolveByDomain(r.Context(), shop)
	if errors.Is(err, domain.ErrTenantNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "tenant not found"})
		return domain.ReadFilter{}, false
	}
	if err != nil {
		h.logger.Error("tenant resolution failed for read request", "shop_domain", shop, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return domain.ReadFilter{}, false
	}

	f := domain.ReadFilter{TenantID: tenant.ID}
	for param, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": param + " must be RFC3339"})
			return domain.ReadFilter{}, false
		}
		*dst = t
	}
	return f, true
}

func (h *ReadHandler) listError(w http.ResponseWriter, entity string, err error) {
	h.logger.Error("failed to list "+entity, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// emptyIfNil keeps empty result sets serializing as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
