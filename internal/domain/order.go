package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a synchronized order row keyed by (ExternalOrderID, TenantID).
// CustomerID references the tenant's own customer row and is nil when the
// upstream payload carried no customer. TotalPrice is an exact decimal;
// monetary amounts are never held as binary floats. CreatedAt is the upstream
// event time, not the time we ingested the event.
type Order struct {
	ID              string          `json:"id"`
	ExternalOrderID string          `json:"external_order_id"`
	TenantID        string          `json:"tenant_id"`
	CustomerID      *string         `json:"customer_id,omitempty"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	FinancialStatus string          `json:"financial_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
