package domain

import (
	"context"
	"time"
)

// TenantRepository is the tenant directory: resolution of a tenant's identity
// and signing secret by its public shop domain, plus the administrative
// secret-rotation path. Implementations must never create tenants as a side
// effect of resolution.
type TenantRepository interface {
	// ResolveByDomain returns ErrTenantNotFound when no tenant exists for the
	// shop domain.
	ResolveByDomain(ctx context.Context, shopDomain string) (*Tenant, error)

	// UpsertSecret provisions a tenant or rotates its webhook secret and
	// returns the tenant id.
	UpsertSecret(ctx context.Context, shopDomain, webhookSecret string) (string, error)

	// TouchActivity records that the tenant delivered a webhook. Best-effort;
	// callers may ignore the error.
	TouchActivity(ctx context.Context, tenantID string) error
}

// SyncRepository is the persistence gateway for synchronized commerce
// entities. Every write is an atomic upsert keyed by (external id, tenant id)
// at the storage layer, so concurrent duplicate deliveries of the same event
// collapse onto one row without application-level locking. Returned errors
// are StoreError values carrying a retry classification.
type SyncRepository interface {
	// UpsertProduct writes the product and returns its internal id. On
	// conflict the incoming title and vendor win.
	UpsertProduct(ctx context.Context, p *Product) (string, error)

	// UpsertCustomer writes the customer and returns its internal id. On
	// conflict the incoming email and name win.
	UpsertCustomer(ctx context.Context, c *Customer) (string, error)

	// UpsertOrder writes the order and, when customer is non-nil, the embedded
	// customer first, linking the order to the customer's internal id. Both
	// writes happen in one transaction: a partial outcome is never observable.
	UpsertOrder(ctx context.Context, o *Order, customer *Customer) (string, error)
}

// ReadFilter scopes a downstream read to one tenant and an optional upstream
// creation-time range. Zero time bounds are unbounded.
type ReadFilter struct {
	TenantID string
	From     time.Time
	To       time.Time
}

// ReadRepository is the read-only surface consumed by downstream analytics.
// There is no write path from that side.
type ReadRepository interface {
	ListProducts(ctx context.Context, f ReadFilter) ([]Product, error)
	ListCustomers(ctx context.Context, f ReadFilter) ([]Customer, error)
	ListOrders(ctx context.Context, f ReadFilter) ([]Order, error)
}
