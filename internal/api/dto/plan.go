package dto

import (
	"context"
	"strings"

	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
	"github.com/samber/lo"
)

type CreatePlanRequest struct {
	Name      string             `json:"plan_name" validate:"required"`
	Duration  types.PlanDuration `json:"plan_duration" validate:"required"`
	ProductID string             `json:"product_id" validate:"required"`
	// InitialVersion becomes version 1 and the display version of the plan
	InitialVersion *CreateInitialVersionRequest `json:"initial_version"`
	Tags           []PlanTagRequest             `json:"tags,omitempty"`
}

type CreateInitialVersionRequest struct {
	Description      string                   `json:"description"`
	RecurringCharges []RecurringChargeRequest `json:"recurring_charges"`
}

type PlanTagRequest struct {
	TagName  string `json:"tag_name" validate:"required"`
	TagColor string `json:"tag_color,omitempty"`
	TagHex   string `json:"tag_hex,omitempty"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.Duration.Validate(); err != nil {
		return err
	}

	if r.InitialVersion == nil {
		return ierr.NewError("initial_version is required").
			WithHint("A plan must be created together with its initial version").
			Mark(ierr.ErrValidation)
	}

	if err := validateRecurringCharges(r.InitialVersion.RecurringCharges); err != nil {
		return err
	}

	return validateTags(r.Tags)
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:          strings.TrimSpace(r.Name),
		Duration:      r.Duration,
		ProductID:     r.ProductID,
		Status:        types.PlanStatusActive,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// ToPlanVersion builds version 1 of planID, active from the start
func (r *CreateInitialVersionRequest) ToPlanVersion(ctx context.Context, planID string) *planversion.PlanVersion {
	return &planversion.PlanVersion{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_VERSION),
		PlanID:           planID,
		Version:          1,
		Status:           types.PlanVersionStatusActive,
		Description:      r.Description,
		RecurringCharges: toRecurringCharges(r.RecurringCharges),
		EnvironmentID:    types.GetEnvironmentID(ctx),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

// ToTags converts the requested tags into unsaved tags of planID. Duplicates
// are not removed here.
func ToTags(ctx context.Context, planID string, reqs []PlanTagRequest) []*plan.Tag {
	return lo.Map(reqs, func(r PlanTagRequest, _ int) *plan.Tag {
		return &plan.Tag{
			PlanID:   planID,
			TenantID: types.GetTenantID(ctx),
			TagName:  r.TagName,
			TagColor: r.TagColor,
			TagHex:   r.TagHex,
		}
	})
}

func validateTags(tags []PlanTagRequest) error {
	for _, t := range tags {
		if strings.TrimSpace(t.TagName) == "" {
			return ierr.NewError("tag_name can not be empty").
				WithHint("Every tag needs a name").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

type PlanResponse struct {
	*plan.Plan
	DisplayVersion *PlanVersionResponse   `json:"display_version"`
	Versions       []*PlanVersionResponse `json:"versions"`
}

type UpdatePlanRequest struct {
	Name   *string           `json:"plan_name,omitempty"`
	Status *types.PlanStatus `json:"status,omitempty"`
	// Tags replaces the tag set of the plan when present, an empty list
	// removes every tag
	Tags []PlanTagRequest `json:"tags,omitempty"`
}

func (r *UpdatePlanRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ierr.NewError("name can not be empty").
			WithHint("Plan name can not be empty").
			Mark(ierr.ErrValidation)
	}
	if r.Status != nil {
		if err := r.Status.Validate(); err != nil {
			return err
		}
	}
	return validateTags(r.Tags)
}

// ListPlansResponse represents the response for listing plans
type ListPlansResponse = types.ListResponse[*PlanResponse]
