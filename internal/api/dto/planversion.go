package dto

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/planversion"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type RecurringChargeRequest struct {
	Name           string               `json:"name" validate:"required"`
	ChargeTiming   types.ChargeTiming   `json:"charge_timing,omitempty"`
	ChargeBehavior types.ChargeBehavior `json:"charge_behavior,omitempty"`
	Amount         decimal.Decimal      `json:"amount" validate:"nonneg_decimal"`
}

// ToRecurringCharge fills the defaults of the optional enums
func (r RecurringChargeRequest) ToRecurringCharge() planversion.RecurringCharge {
	c := planversion.RecurringCharge{
		Name:           r.Name,
		ChargeTiming:   r.ChargeTiming,
		ChargeBehavior: r.ChargeBehavior,
		Amount:         r.Amount,
	}
	if c.ChargeTiming == "" {
		c.ChargeTiming = types.ChargeTimingInAdvance
	}
	if c.ChargeBehavior == "" {
		c.ChargeBehavior = types.ChargeBehaviorProrate
	}
	return c
}

func toRecurringCharges(reqs []RecurringChargeRequest) planversion.RecurringCharges {
	return lo.Map(reqs, func(r RecurringChargeRequest, _ int) planversion.RecurringCharge {
		return r.ToRecurringCharge()
	})
}

func validateRecurringCharges(reqs []RecurringChargeRequest) error {
	for _, r := range reqs {
		if err := validator.ValidateRequest(r); err != nil {
			return err
		}
	}
	return toRecurringCharges(reqs).Validate()
}

type CreatePlanVersionRequest struct {
	PlanID           string                   `json:"plan_id" validate:"required"`
	Description      string                   `json:"description"`
	RecurringCharges []RecurringChargeRequest `json:"recurring_charges"`
	MakeActive       bool                     `json:"make_active"`
	// MakeActiveType defaults to replace_immediately when make_active is set
	MakeActiveType *types.MakeActiveType `json:"make_active_type,omitempty"`
	// ReplaceImmediatelyType is only accepted with replace_immediately and
	// defaults to end_current_subscription_and_bill
	ReplaceImmediatelyType *types.ReplaceImmediatelyType `json:"replace_immediately_type,omitempty"`
}

func (r *CreatePlanVersionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := validateRecurringCharges(r.RecurringCharges); err != nil {
		return err
	}
	_, err := r.ActivationPolicy()
	return err
}

// ActivationPolicy decodes the activation flags of the request
func (r *CreatePlanVersionRequest) ActivationPolicy() (planversion.ActivationPolicy, error) {
	return planversion.NewActivationPolicy(r.MakeActive, r.MakeActiveType, r.ReplaceImmediatelyType)
}

// ToPlanVersion builds the new version in the inactive state, activation is
// applied by the service once the version number is allocated
func (r *CreatePlanVersionRequest) ToPlanVersion(ctx context.Context, version int) *planversion.PlanVersion {
	return &planversion.PlanVersion{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_VERSION),
		PlanID:           r.PlanID,
		Version:          version,
		Status:           types.PlanVersionStatusInactive,
		Description:      r.Description,
		RecurringCharges: toRecurringCharges(r.RecurringCharges),
		EnvironmentID:    types.GetEnvironmentID(ctx),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

type PlanVersionResponse struct {
	*planversion.PlanVersion
	ActiveSubscriptions int `json:"active_subscriptions"`
}

type UpdatePlanVersionRequest struct {
	Description *string                  `json:"description,omitempty"`
	Status      *types.PlanVersionStatus `json:"status,omitempty"`
}

func (r *UpdatePlanVersionRequest) Validate() error {
	if r.Status == nil {
		return nil
	}
	allowed := []types.PlanVersionStatus{
		types.PlanVersionStatusActive,
		types.PlanVersionStatusInactive,
		types.PlanVersionStatusArchived,
	}
	if !lo.Contains(allowed, *r.Status) {
		return ierr.NewError("unsupported plan version status transition").
			WithHint("A plan version can only be set to active, inactive or archived").
			WithReportableDetails(map[string]any{
				"status":         *r.Status,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type ListPlanVersionsResponse = types.ListResponse[*PlanVersionResponse]
