package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/V4T54L/storesync/internal/adapter/metrics"
	"github.com/V4T54L/storesync/internal/domain"
	"github.com/V4T54L/storesync/internal/domain/mocks"
	"github.com/V4T54L/storesync/internal/signature"
	"github.com/V4T54L/storesync/internal/usecase"
)

const (
	testShopDomain = "store-a.myshopify.com"
	testSecret     = "s1"
)

func newTestHandler(tenants *mocks.MockTenantRepository, repo *mocks.MockSyncRepository) *WebhookHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewIngestMetrics(prometheus.NewRegistry())
	uc := usecase.NewSyncWebhookUseCase(repo, logger)
	return NewWebhookHandler(tenants, uc, logger, m, 1<<20)
}

func seedTenants() *mocks.MockTenantRepository {
	return &mocks.MockTenantRepository{
		TenantsByDomain: map[string]*domain.Tenant{
			testShopDomain: {ID: "tenant-a", ShopDomain: testShopDomain, WebhookSecret: testSecret},
			"unconfigured.myshopify.com": {ID: "tenant-b", ShopDomain: "unconfigured.myshopify.com"},
		},
	}
}

func TestWebhookHandlerStatusMapping(t *testing.T) {
	productBody := `{"id": 555, "title": "Widget", "vendor": "Acme"}`

	tests := []struct {
		name           string
		shopDomain     string
		topic          string
		body           string
		signature      string // "valid" computes the real signature over body
		syncErr        error
		expectedStatus int
	}{
		{
			name:           "missing signature header",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           productBody,
			signature:      "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing shop domain header",
			shopDomain:     "",
			topic:          "products/create",
			body:           productBody,
			signature:      "valid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing topic header",
			shopDomain:     testShopDomain,
			topic:          "",
			body:           productBody,
			signature:      "valid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty body",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           "",
			signature:      "deadbeef",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown tenant",
			shopDomain:     "nobody.myshopify.com",
			topic:          "products/create",
			body:           productBody,
			signature:      "deadbeef",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "tenant without secret",
			shopDomain:     "unconfigured.myshopify.com",
			topic:          "products/create",
			body:           productBody,
			signature:      "deadbeef",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "signature mismatch",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           productBody,
			signature:      signature.Compute("wrong-secret", []byte(productBody)),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed JSON with valid signature",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           `{"id": 555,`,
			signature:      "valid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown topic acknowledged",
			shopDomain:     testShopDomain,
			topic:          "inventory_levels/update",
			body:           `{"inventory_item_id": 1}`,
			signature:      "valid",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "successful synchronization",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           productBody,
			signature:      "valid",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "transient storage failure",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           productBody,
			signature:      "valid",
			syncErr:        &domain.StoreError{Kind: domain.KindTransient, Op: "upsert product", Err: errors.New("connection refused")},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "non-transient handler failure",
			shopDomain:     testShopDomain,
			topic:          "products/create",
			body:           productBody,
			signature:      "valid",
			syncErr:        &domain.StoreError{Kind: domain.KindData, Op: "upsert product", Err: errors.New("value too long")},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockSyncRepository{ProductErr: tt.syncErr}
			h := newTestHandler(seedTenants(), repo)

			req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(tt.body))
			if tt.shopDomain != "" {
				req.Header.Set(ShopDomainHeader, tt.shopDomain)
			}
			if tt.topic != "" {
				req.Header.Set(TopicHeader, tt.topic)
			}
			sig := tt.signature
			if sig == "valid" {
				sig = signature.Compute(testSecret, []byte(tt.body))
			}
			if sig != "" {
				req.Header.Set(SignatureHeader, sig)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body: %s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}
}

func TestWebhookHandlerResolveFailureMetricKind(t *testing.T) {
	productBody := `{"id": 555, "title": "Widget"}`

	tests := []struct {
		name            string
		resolveErr      error
		expectedOutcome string
	}{
		{
			name:            "transient resolve failure",
			resolveErr:      &domain.StoreError{Kind: domain.KindTransient, Op: "resolve tenant", Err: errors.New("connection refused")},
			expectedOutcome: "error_transient",
		},
		{
			name:            "data resolve failure",
			resolveErr:      &domain.StoreError{Kind: domain.KindData, Op: "resolve tenant", Err: errors.New("malformed row")},
			expectedOutcome: "error_processing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenants := seedTenants()
			tenants.ResolveErr = tt.resolveErr
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			m := metrics.NewIngestMetrics(prometheus.NewRegistry())
			uc := usecase.NewSyncWebhookUseCase(&mocks.MockSyncRepository{}, logger)
			h := NewWebhookHandler(tenants, uc, logger, m, 1<<20)

			req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(productBody))
			req.Header.Set(ShopDomainHeader, testShopDomain)
			req.Header.Set(TopicHeader, "products/create")
			req.Header.Set(SignatureHeader, signature.Compute(testSecret, []byte(productBody)))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rr.Code)
			}
			got := testutil.ToFloat64(m.WebhooksTotal.WithLabelValues(tt.expectedOutcome, "products/create"))
			if got != 1 {
				t.Errorf("webhooks_total{outcome=%q} = %v, want 1", tt.expectedOutcome, got)
			}
		})
	}
}

func TestWebhookHandlerUnknownTopicLeavesStoreUntouched(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	h := newTestHandler(seedTenants(), repo)

	body := `{"inventory_item_id": 1, "available": 3}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(body))
	req.Header.Set(ShopDomainHeader, testShopDomain)
	req.Header.Set(TopicHeader, "inventory_levels/update")
	req.Header.Set(SignatureHeader, signature.Compute(testSecret, []byte(body)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(repo.Products)+len(repo.Customers)+len(repo.Orders) != 0 {
		t.Error("unknown topic must not write to the store")
	}
}

func TestWebhookHandlerVerifiesExactBytes(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	h := newTestHandler(seedTenants(), repo)

	// Sign one byte-form of the payload, deliver a semantically identical but
	// byte-different form. Verification must fail: it runs on received bytes,
	// not on a re-encoded document.
	signed := `{"id":555,"title":"Widget"}`
	delivered := `{"id": 555, "title": "Widget"}`

	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(delivered))
	req.Header.Set(ShopDomainHeader, testShopDomain)
	req.Header.Set(TopicHeader, "products/create")
	req.Header.Set(SignatureHeader, signature.Compute(testSecret, []byte(signed)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for byte-different payload", rr.Code)
	}
}

func TestWebhookHandlerSuccessWritesProduct(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	tenants := seedTenants()
	h := newTestHandler(tenants, repo)

	body := `{"id": 555, "title": "Widget", "vendor": "Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewBufferString(body))
	req.Header.Set(ShopDomainHeader, testShopDomain)
	req.Header.Set(TopicHeader, "products/create")
	req.Header.Set(SignatureHeader, signature.Compute(testSecret, []byte(body)))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if len(repo.Products) != 1 {
		t.Fatalf("expected 1 product row, got %d", len(repo.Products))
	}
	p := repo.Products[0]
	if p.ExternalProductID != "555" || p.TenantID != "tenant-a" || p.Title != "Widget" || p.Vendor != "Acme" {
		t.Errorf("unexpected product: %+v", p)
	}
	if len(tenants.TouchedTenants) != 1 || tenants.TouchedTenants[0] != "tenant-a" {
		t.Errorf("expected tenant activity touch for tenant-a, got %v", tenants.TouchedTenants)
	}
}
