package mocks

import (
	"context"
	"sync"

	"github.com/V4T54L/storesync/internal/domain"
)

// MockTenantRepository is an in-memory implementation of
// domain.TenantRepository for testing.
type MockTenantRepository struct {
	mu sync.Mutex

	// TenantsByDomain seeds the directory.
	TenantsByDomain map[string]*domain.Tenant

	ResolveErr error
	UpsertErr  error

	UpsertedSecrets map[string]string
	TouchedTenants  []string
}

func (m *MockTenantRepository) ResolveByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}
	t, ok := m.TenantsByDomain[shopDomain]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *MockTenantRepository) UpsertSecret(ctx context.Context, shopDomain, webhookSecret string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return "", m.UpsertErr
	}
	if m.UpsertedSecrets == nil {
		m.UpsertedSecrets = make(map[string]string)
	}
	m.UpsertedSecrets[shopDomain] = webhookSecret
	if t, ok := m.TenantsByDomain[shopDomain]; ok {
		t.WebhookSecret = webhookSecret
		return t.ID, nil
	}
	return "tenant-" + shopDomain, nil
}

func (m *MockTenantRepository) TouchActivity(ctx context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TouchedTenants = append(m.TouchedTenants, tenantID)
	return nil
}

// MockSyncRepository is an in-memory implementation of domain.SyncRepository
// and domain.ReadRepository for testing. It records every upsert it receives.
type MockSyncRepository struct {
	mu sync.Mutex

	Products  []domain.Product
	Customers []domain.Customer
	Orders    []domain.Order

	ProductErr  error
	CustomerErr error
	OrderErr    error

	// OrderCustomers records the embedded customer passed with each
	// UpsertOrder call (nil when the payload carried none).
	OrderCustomers []*domain.Customer
}

func (m *MockSyncRepository) UpsertProduct(ctx context.Context, p *domain.Product) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProductErr != nil {
		return "", m.ProductErr
	}
	m.Products = append(m.Products, *p)
	return "product-" + p.ExternalProductID, nil
}

func (m *MockSyncRepository) UpsertCustomer(ctx context.Context, c *domain.Customer) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CustomerErr != nil {
		return "", m.CustomerErr
	}
	m.Customers = append(m.Customers, *c)
	return "customer-" + c.ExternalCustomerID, nil
}

func (m *MockSyncRepository) UpsertOrder(ctx context.Context, o *domain.Order, customer *domain.Customer) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OrderErr != nil {
		return "", m.OrderErr
	}
	if customer != nil {
		m.Customers = append(m.Customers, *customer)
		id := "customer-" + customer.ExternalCustomerID
		o.CustomerID = &id
	}
	m.Orders = append(m.Orders, *o)
	m.OrderCustomers = append(m.OrderCustomers, customer)
	return "order-" + o.ExternalOrderID, nil
}

func (m *MockSyncRepository) ListProducts(ctx context.Context, f domain.ReadFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.Products {
		if p.TenantID == f.TenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockSyncRepository) ListCustomers(ctx context.Context, f domain.ReadFilter) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Customer
	for _, c := range m.Customers {
		if c.TenantID == f.TenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockSyncRepository) ListOrders(ctx context.Context, f domain.ReadFilter) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Order
	for _, o := range m.Orders {
		if o.TenantID != f.TenantID {
			continue
		}
		if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
			continue
		}
		// To is exclusive, mirroring the created_at < $3 bound in the
		// Postgres gateway.
		if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
