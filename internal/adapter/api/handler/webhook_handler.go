package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/V4T54L/storesync/internal/adapter/metrics"
	"github.com/V4T54L/storesync/internal/domain"
	"github.com/V4T54L/storesync/internal/signature"
	"github.com/V4T54L/storesync/internal/usecase"
)

// Transport headers carrying the authentication material and routing topic.
const (
	SignatureHeader  = "X-Shopify-Hmac-Sha256"
	ShopDomainHeader = "X-Shopify-Shop-Domain"
	TopicHeader      = "X-Shopify-Topic"
)

// WebhookHandler is the inbound gateway: it drives one ingestion request
// end-to-end (headers → tenant resolution → signature verification → parse →
// dispatch) and maps every outcome to a status code. The sender reacts purely
// to status codes (5xx redelivers, 4xx does not), so the code chosen on each
// path is the retry contract, not a reflection of whichever error surfaced
// first.
type WebhookHandler struct {
	tenants     domain.TenantRepository
	sync        *usecase.SyncWebhookUseCase
	logger      *slog.Logger
	metrics     *metrics.IngestMetrics
	maxBodySize int64
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(tenants domain.TenantRepository, sync *usecase.SyncWebhookUseCase, logger *slog.Logger, m *metrics.IngestMetrics, maxBodySize int64) *WebhookHandler {
	return &WebhookHandler{
		tenants:     tenants,
		sync:        sync,
		logger:      logger,
		metrics:     m,
		maxBodySize: maxBodySize,
	}
}

// ServeHTTP processes one webhook delivery.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	sig := r.Header.Get(SignatureHeader)
	shopDomain := r.Header.Get(ShopDomainHeader)
	topicHeader := r.Header.Get(TopicHeader)

	if sig == "" || shopDomain == "" || topicHeader == "" {
		h.count("error_validation", topicHeader)
		http.Error(w, "missing required webhook headers", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.count("error_validation", topicHeader)
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.count("error_validation", topicHeader)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		h.count("error_validation", topicHeader)
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	tenant, err := h.tenants.ResolveByDomain(ctx, shopDomain)
	if errors.Is(err, domain.ErrTenantNotFound) {
		h.logger.Warn("webhook for unknown tenant", "shop_domain", shopDomain)
		h.count("error_not_found", topicHeader)
		http.Error(w, "tenant not found", http.StatusNotFound)
		return
	}
	if err != nil {
		// Resolution failure is always a 5xx so the sender retries, but the
		// metric label still distinguishes transient store faults from data
		// faults, matching the dispatch path below.
		h.logger.Error("tenant resolution failed", "shop_domain", shopDomain, "error", err)
		if domain.IsTransientStore(err) {
			h.count("error_transient", topicHeader)
		} else {
			h.count("error_processing", topicHeader)
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if tenant.WebhookSecret == "" {
		// Operator fault, not the sender's: surfaced as a 5xx so redelivery
		// keeps the event alive until the secret is provisioned.
		h.logger.Error("tenant has no webhook secret configured", "shop_domain", shopDomain, "tenant_id", tenant.ID)
		h.count("error_config", topicHeader)
		http.Error(w, "webhook secret not configured", http.StatusInternalServerError)
		return
	}

	// Verification runs on the exact received bytes, before any JSON parsing,
	// so an unparseable body still gets an authentication verdict instead of
	// becoming a parse oracle for forged payloads.
	if !signature.Verify(tenant.WebhookSecret, body, sig) {
		h.logger.Warn("webhook signature mismatch", "shop_domain", shopDomain)
		h.metrics.SignatureFailures.Inc()
		h.count("error_auth", topicHeader)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if !json.Valid(body) {
		h.count("error_validation", topicHeader)
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	topic := domain.ParseTopic(topicHeader)

	// Handlers receive the tenant's internal id, never the public shop
	// domain.
	outcome, err := h.sync.Dispatch(ctx, topic, tenant.ID, body)
	if err != nil {
		if domain.IsTransientStore(err) {
			h.logger.Error("transient storage failure processing webhook", "topic", topic.String(), "tenant_id", tenant.ID, "error", err)
			h.count("error_transient", topicHeader)
			http.Error(w, "storage unavailable, retry", http.StatusInternalServerError)
			return
		}
		h.logger.Error("failed to process webhook", "topic", topic.String(), "tenant_id", tenant.ID, "error", err)
		h.count("error_processing", topicHeader)
		http.Error(w, "failed to process webhook", http.StatusUnprocessableEntity)
		return
	}

	if err := h.tenants.TouchActivity(ctx, tenant.ID); err != nil {
		h.logger.Warn("failed to record tenant activity", "tenant_id", tenant.ID, "error", err)
	}

	if outcome == usecase.OutcomeIgnored {
		h.count("ignored", topicHeader)
	} else {
		h.count("synced", topicHeader)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// count records one delivery outcome. The topic label is the parsed canonical
// name so arbitrary header values cannot explode label cardinality.
func (h *WebhookHandler) count(outcome, topicHeader string) {
	h.metrics.WebhooksTotal.WithLabelValues(outcome, domain.ParseTopic(topicHeader).String()).Inc()
}
