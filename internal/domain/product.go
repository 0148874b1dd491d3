package domain

import "time"

// Product is a synchronized product row. (ExternalProductID, TenantID) is the
// natural key: repeated deliveries of the same upstream product collapse onto
// one row.
type Product struct {
	ID                string    `json:"id"`
	ExternalProductID string    `json:"external_product_id"`
	TenantID          string    `json:"tenant_id"`
	Title             string    `json:"title"`
	Vendor            string    `json:"vendor"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
