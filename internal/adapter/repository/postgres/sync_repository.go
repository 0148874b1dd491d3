package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/V4T54L/storesync/internal/domain"
)

// SyncRepository implements the persistence gateway for synchronized commerce
// entities on PostgreSQL. Idempotency lives in the storage layer: every write
// is INSERT ... ON CONFLICT on the natural key, never a check-then-insert
// sequence, so concurrent duplicate deliveries collapse onto one row without
// surfacing duplicate-key errors.
type SyncRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSyncRepository creates a new PostgreSQL sync repository.
func NewSyncRepository(db *sql.DB, logger *slog.Logger) *SyncRepository {
	return &SyncRepository{db: db, logger: logger.With("component", "sync_repository")}
}

// queryRower is satisfied by both *sql.DB and *sql.Tx, letting the customer
// upsert run standalone or inside the order transaction.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpsertProduct writes the product keyed by (external_product_id, tenant_id).
// On conflict the incoming title and vendor overwrite the stored values;
// last write wins across out-of-order deliveries.
func (r *SyncRepository) UpsertProduct(ctx context.Context, p *domain.Product) (string, error) {
	const query = `
		INSERT INTO products (id, external_product_id, tenant_id, title, vendor)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_product_id, tenant_id) DO UPDATE SET
			title = EXCLUDED.title,
			vendor = EXCLUDED.vendor,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), p.ExternalProductID, p.TenantID, p.Title, p.Vendor,
	).Scan(&id)
	if err != nil {
		return "", classify("upsert product", err)
	}
	return id, nil
}

// UpsertCustomer writes the customer keyed by (external_customer_id, tenant_id).
func (r *SyncRepository) UpsertCustomer(ctx context.Context, c *domain.Customer) (string, error) {
	id, err := upsertCustomer(ctx, r.db, c)
	if err != nil {
		return "", classify("upsert customer", err)
	}
	return id, nil
}

// UpsertOrder writes the order keyed by (external_order_id, tenant_id). When
// customer is non-nil the embedded customer is upserted first and the order
// linked to its internal id, both inside one transaction; either both rows
// commit or neither does.
func (r *SyncRepository) UpsertOrder(ctx context.Context, o *domain.Order, customer *domain.Customer) (string, error) {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", classify("begin order transaction", err)
	}
	defer txn.Rollback() // no-op after Commit

	customerID := o.CustomerID
	if customer != nil {
		id, err := upsertCustomer(ctx, txn, customer)
		if err != nil {
			return "", classify("upsert embedded customer", err)
		}
		customerID = &id
	}

	const query = `
		INSERT INTO orders (id, external_order_id, tenant_id, customer_id, total_price, financial_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (external_order_id, tenant_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			total_price = EXCLUDED.total_price,
			financial_status = EXCLUDED.financial_status,
			created_at = EXCLUDED.created_at,
			updated_at = NOW()
		RETURNING id`

	var id string
	err = txn.QueryRowContext(ctx, query,
		uuid.NewString(), o.ExternalOrderID, o.TenantID, customerID,
		o.TotalPrice, o.FinancialStatus, o.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", classify("upsert order", err)
	}

	if err := txn.Commit(); err != nil {
		return "", classify("commit order transaction", err)
	}
	return id, nil
}

func upsertCustomer(ctx context.Context, q queryRower, c *domain.Customer) (string, error) {
	const query = `
		INSERT INTO customers (id, external_customer_id, tenant_id, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (external_customer_id, tenant_id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := q.QueryRowContext(ctx, query,
		uuid.NewString(), c.ExternalCustomerID, c.TenantID, c.Email, c.FirstName, c.LastName,
	).Scan(&id)
	return id, err
}

// ListProducts returns the tenant's products, newest first.
func (r *SyncRepository) ListProducts(ctx context.Context, f domain.ReadFilter) ([]domain.Product, error) {
	const query = `
		SELECT id, external_product_id, tenant_id, title, vendor, created_at, updated_at
		FROM products
		WHERE tenant_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, f.TenantID, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.ExternalProductID, &p.TenantID, &p.Title, &p.Vendor, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, classify("scan product", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list products", err)
	}
	return out, nil
}

// ListCustomers returns the tenant's customers, newest first.
func (r *SyncRepository) ListCustomers(ctx context.Context, f domain.ReadFilter) ([]domain.Customer, error) {
	const query = `
		SELECT id, external_customer_id, tenant_id, email, first_name, last_name, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, f.TenantID, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, classify("list customers", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.ExternalCustomerID, &c.TenantID, &c.Email, &c.FirstName, &c.LastName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, classify("scan customer", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list customers", err)
	}
	return out, nil
}

// ListOrders returns the tenant's orders filtered by upstream creation time,
// newest first.
func (r *SyncRepository) ListOrders(ctx context.Context, f domain.ReadFilter) ([]domain.Order, error) {
	const query = `
		SELECT id, external_order_id, tenant_id, customer_id, total_price, financial_status, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, f.TenantID, nullTime(f.From), nullTime(f.To))
	if err != nil {
		return nil, classify("list orders", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var customerID sql.NullString
		if err := rows.Scan(&o.ID, &o.ExternalOrderID, &o.TenantID, &customerID, &o.TotalPrice, &o.FinancialStatus, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, classify("scan order", err)
		}
		if customerID.Valid {
			o.CustomerID = &customerID.String
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list orders", err)
	}
	return out, nil
}

// nullTime maps a zero time to SQL NULL so the range predicates collapse to
// unbounded.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
