package domain

import "time"

// Customer is a synchronized customer row keyed by (ExternalCustomerID, TenantID).
// It is written by the customer handler directly, or implicitly by the order
// handler when an order embeds a customer sub-object.
type Customer struct {
	ID                 string    `json:"id"`
	ExternalCustomerID string    `json:"external_customer_id"`
	TenantID           string    `json:"tenant_id"`
	Email              string    `json:"email"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
