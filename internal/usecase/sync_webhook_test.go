package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/V4T54L/storesync/internal/domain"
	"github.com/V4T54L/storesync/internal/domain/mocks"
)

func newTestUseCase(repo *mocks.MockSyncRepository) *SyncWebhookUseCase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSyncWebhookUseCase(repo, logger)
}

func TestDispatchProductCreate(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"id": 555, "title": "Widget", "vendor": "Acme"}`)
	outcome, err := uc.Dispatch(context.Background(), domain.TopicProductCreate, "tenant-1", payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome != OutcomeSynced {
		t.Errorf("expected OutcomeSynced, got %v", outcome)
	}
	if len(repo.Products) != 1 {
		t.Fatalf("expected 1 product upsert, got %d", len(repo.Products))
	}

	p := repo.Products[0]
	if p.ExternalProductID != "555" {
		t.Errorf("external product id = %q, want %q", p.ExternalProductID, "555")
	}
	if p.TenantID != "tenant-1" {
		t.Errorf("tenant id = %q, want %q", p.TenantID, "tenant-1")
	}
	if p.Title != "Widget" || p.Vendor != "Acme" {
		t.Errorf("unexpected product fields: %+v", p)
	}
}

func TestDispatchProductStringID(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	// Quoted and numeric ids must normalize to the same natural key.
	payload := []byte(`{"id": "555", "title": "Widget", "vendor": "Acme"}`)
	if _, err := uc.Dispatch(context.Background(), domain.TopicProductCreate, "tenant-1", payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.Products[0].ExternalProductID != "555" {
		t.Errorf("external product id = %q, want %q", repo.Products[0].ExternalProductID, "555")
	}
}

func TestDispatchProductMissingID(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"title": "Widget"}`)
	_, err := uc.Dispatch(context.Background(), domain.TopicProductCreate, "tenant-1", payload)

	var procErr *domain.ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
	if len(repo.Products) != 0 {
		t.Errorf("expected no upsert for invalid payload, got %d", len(repo.Products))
	}
}

func TestDispatchCustomerCreate(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"id": 42, "email": "a@b.com", "first_name": "A", "last_name": "B"}`)
	if _, err := uc.Dispatch(context.Background(), domain.TopicCustomerCreate, "tenant-1", payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.Customers) != 1 {
		t.Fatalf("expected 1 customer upsert, got %d", len(repo.Customers))
	}

	c := repo.Customers[0]
	if c.ExternalCustomerID != "42" || c.Email != "a@b.com" || c.FirstName != "A" || c.LastName != "B" {
		t.Errorf("unexpected customer fields: %+v", c)
	}
}

func TestDispatchOrderWithEmbeddedCustomer(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{
		"id": 900,
		"current_total_price": "19.99",
		"financial_status": "paid",
		"created_at": "2024-01-01T00:00:00Z",
		"customer": {"id": 42, "email": "a@b.com", "first_name": "A", "last_name": "B"}
	}`)
	outcome, err := uc.Dispatch(context.Background(), domain.TopicOrderCreate, "tenant-1", payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome != OutcomeSynced {
		t.Errorf("expected OutcomeSynced, got %v", outcome)
	}

	if len(repo.Orders) != 1 {
		t.Fatalf("expected 1 order upsert, got %d", len(repo.Orders))
	}
	if len(repo.OrderCustomers) != 1 || repo.OrderCustomers[0] == nil {
		t.Fatal("expected the embedded customer to be passed with the order upsert")
	}

	o := repo.Orders[0]
	if o.ExternalOrderID != "900" {
		t.Errorf("external order id = %q, want %q", o.ExternalOrderID, "900")
	}
	want := decimal.RequireFromString("19.99")
	if !o.TotalPrice.Equal(want) {
		t.Errorf("total price = %s, want exactly %s", o.TotalPrice, want)
	}
	if o.FinancialStatus != "paid" {
		t.Errorf("financial status = %q, want %q", o.FinancialStatus, "paid")
	}
	wantTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !o.CreatedAt.Equal(wantTime) {
		t.Errorf("created at = %s, want %s", o.CreatedAt, wantTime)
	}
	if o.CustomerID == nil {
		t.Error("expected order to be linked to the embedded customer's internal id")
	}

	embedded := repo.OrderCustomers[0]
	if embedded.ExternalCustomerID != "42" || embedded.TenantID != "tenant-1" {
		t.Errorf("unexpected embedded customer: %+v", embedded)
	}
}

func TestDispatchOrderWithoutCustomer(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"id": 901, "current_total_price": 5.50, "financial_status": "pending", "created_at": "2024-02-01T10:00:00Z"}`)
	if _, err := uc.Dispatch(context.Background(), domain.TopicOrderCreate, "tenant-1", payload); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.Customers) != 0 {
		t.Errorf("expected no customer upsert, got %d", len(repo.Customers))
	}
	if repo.Orders[0].CustomerID != nil {
		t.Error("expected nil customer reference for an order without an embedded customer")
	}
	if repo.OrderCustomers[0] != nil {
		t.Error("expected nil embedded customer to be passed to the gateway")
	}
}

func TestDispatchOrderMissingCreatedAt(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"id": 902, "current_total_price": "1.00", "financial_status": "paid"}`)
	_, err := uc.Dispatch(context.Background(), domain.TopicOrderCreate, "tenant-1", payload)

	var procErr *domain.ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
	if len(repo.Orders) != 0 {
		t.Errorf("expected no order upsert, got %d", len(repo.Orders))
	}
}

func TestDispatchIgnoredTopic(t *testing.T) {
	repo := &mocks.MockSyncRepository{}
	uc := newTestUseCase(repo)

	payload := []byte(`{"inventory_item_id": 1, "available": 3}`)
	outcome, err := uc.Dispatch(context.Background(), domain.TopicIgnored, "tenant-1", payload)
	if err != nil {
		t.Fatalf("expected no error for ignored topic, got %v", err)
	}
	if outcome != OutcomeIgnored {
		t.Errorf("expected OutcomeIgnored, got %v", outcome)
	}
	if len(repo.Products)+len(repo.Customers)+len(repo.Orders) != 0 {
		t.Error("ignored topic must leave the datastore untouched")
	}
}

func TestDispatchPropagatesStoreError(t *testing.T) {
	storeErr := &domain.StoreError{Kind: domain.KindTransient, Op: "upsert product", Err: errors.New("connection refused")}
	repo := &mocks.MockSyncRepository{ProductErr: storeErr}
	uc := newTestUseCase(repo)

	payload := []byte(`{"id": 555, "title": "Widget"}`)
	_, err := uc.Dispatch(context.Background(), domain.TopicProductCreate, "tenant-1", payload)
	if !domain.IsTransientStore(err) {
		t.Fatalf("expected transient store error to propagate, got %v", err)
	}
}
