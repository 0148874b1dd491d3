package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/storesync/internal/adapter/api/handler"
	"github.com/V4T54L/storesync/internal/adapter/metrics"
	"github.com/V4T54L/storesync/internal/domain"
	"github.com/V4T54L/storesync/internal/pkg/config"
	"github.com/V4T54L/storesync/internal/usecase"
)

// NewRouter creates and configures the public HTTP router: the webhook
// ingestion endpoint and the downstream read API.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	tenants domain.TenantRepository,
	store domain.ReadRepository,
	syncUseCase *usecase.SyncWebhookUseCase,
	m *metrics.IngestMetrics,
) http.Handler {
	mux := http.NewServeMux()

	webhookHandler := handler.NewWebhookHandler(tenants, syncUseCase, logger, m, cfg.MaxBodySize)
	mux.Handle("POST /webhooks", webhookHandler)

	readHandler := handler.NewReadHandler(tenants, store, logger)
	mux.HandleFunc("GET /api/products", readHandler.Products)
	mux.HandleFunc("GET /api/customers", readHandler.Customers)
	mux.HandleFunc("GET /api/orders", readHandler.Orders)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
