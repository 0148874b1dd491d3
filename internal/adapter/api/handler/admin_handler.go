package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/V4T54L/storesync/internal/domain"
)

// AdminHandler serves the tenant provisioning surface. It lives on the admin
// server, never on the public ingest listener: registering a secret for a
// domain is the trust anchor for everything the tenant later delivers, so it
// must stay an explicit administrative action.
type AdminHandler struct {
	tenants domain.TenantRepository
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tenants domain.TenantRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{tenants: tenants, logger: logger}
}

type upsertSecretRequest struct {
	ShopDomain    string `json:"shopDomain"`
	WebhookSecret string `json:"webhookSecret"`
}

// UpsertTenantSecret provisions a tenant or rotates its webhook secret.
func (h *AdminHandler) UpsertTenantSecret(w http.ResponseWriter, r *http.Request) {
	var req upsertSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.ShopDomain == "" || req.WebhookSecret == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shopDomain and webhookSecret are required"})
		return
	}

	tenantID, err := h.tenants.UpsertSecret(r.Context(), req.ShopDomain, req.WebhookSecret)
	if err != nil {
		h.logger.Error("failed to upsert tenant secret", "shop_domain", req.ShopDomain, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update webhook secret"})
		return
	}

	h.logger.Info("tenant webhook secret updated", "shop_domain", req.ShopDomain, "tenant_id", tenantID)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "webhook secret updated successfully",
		"tenantId": tenantID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
