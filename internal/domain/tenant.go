package domain

import "time"

// Tenant is an independently managed store whose synchronized data must never
// mix with another tenant's. Tenants are provisioned explicitly through the
// admin surface; the ingestion path never creates one.
type Tenant struct {
	ID            string    `json:"id"`
	ShopDomain    string    `json:"shop_domain"`
	WebhookSecret string    `json:"webhook_secret,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
