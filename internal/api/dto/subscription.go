package dto

import (
	"context"
	"time"

	"github.com/flexprice/plancatalog/internal/domain/subscription"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
)

type CreateSubscriptionRequest struct {
	CustomerID    string `json:"customer_id" validate:"required"`
	PlanVersionID string `json:"plan_version_id" validate:"required"`
	// StartDate defaults to now
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.EndDate != nil && r.StartDate != nil && !r.EndDate.After(*r.StartDate) {
		return ierr.NewError("end_date must be after start_date").
			WithHint("End date must be after the start date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	start := time.Now().UTC()
	if r.StartDate != nil {
		start = r.StartDate.UTC()
	}
	return &subscription.Subscription{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		CustomerID:    r.CustomerID,
		PlanVersionID: r.PlanVersionID,
		Status:        types.SubscriptionStatusActive,
		StartDate:     start,
		EndDate:       r.EndDate,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]
