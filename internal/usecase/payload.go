package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// externalID is an upstream identifier. The platform serializes ids as JSON
// numbers, but partners and replay tooling frequently quote them; both forms
// must normalize to the same natural key or redelivery stops being idempotent.
type externalID string

func (id *externalID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = externalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("external id must be a number or string: %w", err)
	}
	*id = externalID(n.String())
	return nil
}

// productPayload is the subset of a products/create event the pipeline
// synchronizes.
type productPayload struct {
	ID     externalID `json:"id"`
	Title  string     `json:"title"`
	Vendor string     `json:"vendor"`
}

// customerPayload covers both customers/create events and the customer
// sub-object embedded in orders.
type customerPayload struct {
	ID        externalID `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
}

// orderPayload is the subset of an orders/create event the pipeline
// synchronizes. current_total_price arrives as a decimal-looking string or
// number; decimal.Decimal parses either exactly.
type orderPayload struct {
	ID              externalID       `json:"id"`
	TotalPrice      decimal.Decimal  `json:"current_total_price"`
	FinancialStatus string           `json:"financial_status"`
	CreatedAt       time.Time        `json:"created_at"`
	Customer        *customerPayload `json:"customer"`
}
