package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/storesync/internal/adapter/api/handler"
	"github.com/V4T54L/storesync/internal/domain"
)

// NewAdminRouter creates the router for the administrative server: tenant
// provisioning and secret rotation. Mounted on the admin listener alongside
// /metrics, kept off the public ingest listener.
func NewAdminRouter(tenants domain.TenantRepository, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	adminHandler := handler.NewAdminHandler(tenants, logger)
	mux.HandleFunc("POST /admin/tenant-secret", adminHandler.UpsertTenantSecret)

	return mux
}
