package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/V4T54L/storesync/internal/domain"
)

// TenantRepository implements the tenant directory on PostgreSQL. Resolution
// is strictly read-only: tenants come into existence only through
// UpsertSecret, driven by the admin surface.
type TenantRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTenantRepository creates a new PostgreSQL tenant repository.
func NewTenantRepository(db *sql.DB, logger *slog.Logger) *TenantRepository {
	return &TenantRepository{db: db, logger: logger.With("component", "tenant_repository")}
}

// ResolveByDomain looks up a tenant by its public shop domain.
func (r *TenantRepository) ResolveByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	const query = `
		SELECT id, shop_domain, COALESCE(webhook_secret, ''), created_at, updated_at
		FROM tenants
		WHERE shop_domain = $1`

	var t domain.Tenant
	err := r.db.QueryRowContext(ctx, query, shopDomain).Scan(
		&t.ID, &t.ShopDomain, &t.WebhookSecret, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, classify("resolve tenant", err)
	}
	return &t, nil
}

// UpsertSecret provisions a tenant or rotates its webhook secret, returning
// the tenant id either way.
func (r *TenantRepository) UpsertSecret(ctx context.Context, shopDomain, webhookSecret string) (string, error) {
	const query = `
		INSERT INTO tenants (id, shop_domain, webhook_secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (shop_domain) DO UPDATE SET
			webhook_secret = EXCLUDED.webhook_secret,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), shopDomain, webhookSecret).Scan(&id)
	if err != nil {
		return "", classify("upsert tenant secret", err)
	}
	return id, nil
}

// TouchActivity bumps the tenant's updated_at so operators can see which
// stores are still delivering webhooks.
func (r *TenantRepository) TouchActivity(ctx context.Context, tenantID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tenants SET updated_at = NOW() WHERE id = $1`, tenantID)
	if err != nil {
		return classify("touch tenant activity", err)
	}
	return nil
}
