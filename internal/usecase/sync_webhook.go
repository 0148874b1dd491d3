package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/V4T54L/storesync/internal/domain"
)

// Outcome is the result of dispatching one authenticated webhook.
type Outcome int

const (
	// OutcomeSynced means a handler persisted the event.
	OutcomeSynced Outcome = iota
	// OutcomeIgnored means the topic is outside the processed set. The event
	// is acknowledged so the sender stops redelivering it.
	OutcomeIgnored
)

// SyncWebhookUseCase routes an authenticated, well-formed webhook to the
// handler for its topic. Each handler performs an idempotent upsert keyed by
// (external id, tenant id) through the persistence gateway; redelivery of the
// same event is harmless by construction.
type SyncWebhookUseCase struct {
	repo   domain.SyncRepository
	logger *slog.Logger
}

// NewSyncWebhookUseCase creates a new SyncWebhookUseCase.
func NewSyncWebhookUseCase(repo domain.SyncRepository, logger *slog.Logger) *SyncWebhookUseCase {
	return &SyncWebhookUseCase{
		repo:   repo,
		logger: logger,
	}
}

// Dispatch matches the topic exhaustively and invokes its handler with the
// raw payload and the tenant's internal id. Callers have already verified the
// signature and checked that payload is valid JSON.
func (uc *SyncWebhookUseCase) Dispatch(ctx context.Context, topic domain.Topic, tenantID string, payload []byte) (Outcome, error) {
	switch topic {
	case domain.TopicProductCreate:
		return OutcomeSynced, uc.syncProduct(ctx, tenantID, payload)
	case domain.TopicCustomerCreate:
		return OutcomeSynced, uc.syncCustomer(ctx, tenantID, payload)
	case domain.TopicOrderCreate:
		return OutcomeSynced, uc.syncOrder(ctx, tenantID, payload)
	case domain.TopicIgnored:
		uc.logger.Info("ignoring webhook for unhandled topic", "tenant_id", tenantID)
		return OutcomeIgnored, nil
	default:
		// Unreachable: ParseTopic only produces the variants above.
		uc.logger.Warn("unmatched topic variant", "topic", topic, "tenant_id", tenantID)
		return OutcomeIgnored, nil
	}
}

func (uc *SyncWebhookUseCase) syncProduct(ctx context.Context, tenantID string, payload []byte) error {
	var p productPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return &domain.ProcessingError{Msg: "failed to decode product payload", Err: err}
	}
	if p.ID == "" {
		return &domain.ProcessingError{Msg: "product payload has no id"}
	}

	id, err := uc.repo.UpsertProduct(ctx, &domain.Product{
		ExternalProductID: string(p.ID),
		TenantID:          tenantID,
		Title:             p.Title,
		Vendor:            p.Vendor,
	})
	if err != nil {
		return err
	}

	uc.logger.Debug("product synchronized", "product_id", id, "external_product_id", string(p.ID), "tenant_id", tenantID)
	return nil
}

func (uc *SyncWebhookUseCase) syncCustomer(ctx context.Context, tenantID string, payload []byte) error {
	var c customerPayload
	if err := json.Unmarshal(payload, &c); err != nil {
		return &domain.ProcessingError{Msg: "failed to decode customer payload", Err: err}
	}
	if c.ID == "" {
		return &domain.ProcessingError{Msg: "customer payload has no id"}
	}

	id, err := uc.repo.UpsertCustomer(ctx, customerFromPayload(&c, tenantID))
	if err != nil {
		return err
	}

	uc.logger.Debug("customer synchronized", "customer_id", id, "external_customer_id", string(c.ID), "tenant_id", tenantID)
	return nil
}

func (uc *SyncWebhookUseCase) syncOrder(ctx context.Context, tenantID string, payload []byte) error {
	var o orderPayload
	if err := json.Unmarshal(payload, &o); err != nil {
		return &domain.ProcessingError{Msg: "failed to decode order payload", Err: err}
	}
	if o.ID == "" {
		return &domain.ProcessingError{Msg: "order payload has no id"}
	}
	if o.CreatedAt.IsZero() {
		return &domain.ProcessingError{Msg: "order payload has no created_at"}
	}

	var embedded *domain.Customer
	if o.Customer != nil {
		if o.Customer.ID == "" {
			return &domain.ProcessingError{Msg: "embedded customer has no id"}
		}
		embedded = customerFromPayload(o.Customer, tenantID)
	}

	// The gateway writes the embedded customer and the order in one
	// transaction; a customer row without its order is never observable.
	id, err := uc.repo.UpsertOrder(ctx, &domain.Order{
		ExternalOrderID: string(o.ID),
		TenantID:        tenantID,
		TotalPrice:      o.TotalPrice,
		FinancialStatus: o.FinancialStatus,
		CreatedAt:       o.CreatedAt,
	}, embedded)
	if err != nil {
		return err
	}

	uc.logger.Debug("order synchronized", "order_id", id, "external_order_id", string(o.ID), "tenant_id", tenantID)
	return nil
}

func customerFromPayload(c *customerPayload, tenantID string) *domain.Customer {
	return &domain.Customer{
		ExternalCustomerID: string(c.ID),
		TenantID:           tenantID,
		Email:              c.Email,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
	}
}
