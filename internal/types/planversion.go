package types

import (
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/samber/lo"
)

// PlanVersionStatus is the lifecycle status of a plan version
type PlanVersionStatus string

const (
	// PlanVersionStatusActive marks the display version offered to new subscribers
	PlanVersionStatusActive PlanVersionStatus = "active"
	// PlanVersionStatusInactive versions are neither offered nor billed
	PlanVersionStatusInactive PlanVersionStatus = "inactive"
	// PlanVersionStatusGrandfathered versions keep serving their existing subscribers
	PlanVersionStatusGrandfathered PlanVersionStatus = "grandfathered"
	// PlanVersionStatusRetiring versions are swapped out at each subscriber's renewal
	PlanVersionStatusRetiring PlanVersionStatus = "retiring"
	PlanVersionStatusArchived PlanVersionStatus = "archived"
)

func (s PlanVersionStatus) String() string {
	return string(s)
}

func (s PlanVersionStatus) Validate() error {
	allowed := []PlanVersionStatus{
		PlanVersionStatusActive,
		PlanVersionStatusInactive,
		PlanVersionStatusGrandfathered,
		PlanVersionStatusRetiring,
		PlanVersionStatusArchived,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid plan version status").
			WithHint("Invalid plan version status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsSubscribable reports whether new subscriptions may still reference a
// version with this status
func (s PlanVersionStatus) IsSubscribable() bool {
	return s == PlanVersionStatusActive ||
		s == PlanVersionStatusGrandfathered ||
		s == PlanVersionStatusRetiring
}

// MakeActiveType selects what happens to the current display version when a
// new version is made active
type MakeActiveType string

const (
	MakeActiveTypeReplaceImmediately            MakeActiveType = "replace_immediately"
	MakeActiveTypeReplaceOnActiveVersionRenewal MakeActiveType = "replace_on_active_version_renewal"
	MakeActiveTypeGrandfatherActive             MakeActiveType = "grandfather_active"
)

func (t MakeActiveType) String() string {
	return string(t)
}

func (t MakeActiveType) Validate() error {
	allowed := []MakeActiveType{
		MakeActiveTypeReplaceImmediately,
		MakeActiveTypeReplaceOnActiveVersionRenewal,
		MakeActiveTypeGrandfatherActive,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid make active type").
			WithHint("Invalid make_active_type").
			WithReportableDetails(map[string]any{
				"make_active_type": t,
				"allowed_values":   allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ReplaceImmediatelyType selects what happens to subscriptions of the replaced
// version under MakeActiveTypeReplaceImmediately
type ReplaceImmediatelyType string

const (
	ReplaceImmediatelyEndCurrentSubscriptionAndBill  ReplaceImmediatelyType = "end_current_subscription_and_bill"
	ReplaceImmediatelyEndCurrentSubscriptionDontBill ReplaceImmediatelyType = "end_current_subscription_dont_bill"
	ReplaceImmediatelyChangeSubscriptionPlan         ReplaceImmediatelyType = "change_subscription_plan"
)

func (t ReplaceImmediatelyType) String() string {
	return string(t)
}

func (t ReplaceImmediatelyType) Validate() error {
	allowed := []ReplaceImmediatelyType{
		ReplaceImmediatelyEndCurrentSubscriptionAndBill,
		ReplaceImmediatelyEndCurrentSubscriptionDontBill,
		ReplaceImmediatelyChangeSubscriptionPlan,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid replace immediately type").
			WithHint("Invalid replace_immediately_type").
			WithReportableDetails(map[string]any{
				"replace_immediately_type": t,
				"allowed_values":           allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChargeTiming decides whether a recurring charge is billed at the start or
// the end of the period
type ChargeTiming string

const (
	ChargeTimingInAdvance ChargeTiming = "in_advance"
	ChargeTimingInArrears ChargeTiming = "in_arrears"
)

func (t ChargeTiming) Validate() error {
	allowed := []ChargeTiming{ChargeTimingInAdvance, ChargeTimingInArrears}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid charge timing").
			WithHint("Charge timing must be in_advance or in_arrears").
			WithReportableDetails(map[string]any{
				"charge_timing":  t,
				"allowed_values": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChargeBehavior decides how a recurring charge behaves on partial periods
type ChargeBehavior string

const (
	ChargeBehaviorProrate    ChargeBehavior = "prorate"
	ChargeBehaviorChargeFull ChargeBehavior = "charge_full"
)

func (b ChargeBehavior) Validate() error {
	allowed := []ChargeBehavior{ChargeBehaviorProrate, ChargeBehaviorChargeFull}
	if !lo.Contains(allowed, b) {
		return ierr.NewError("invalid charge behavior").
			WithHint("Charge behavior must be prorate or charge_full").
			WithReportableDetails(map[string]any{
				"charge_behavior": b,
				"allowed_values":  allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PlanVersionFilter represents the filter options for plan versions
type PlanVersionFilter struct {
	*QueryFilter

	PlanIDs       []string            `json:"plan_ids,omitempty" form:"plan_ids"`
	VersionIDs    []string            `json:"version_ids,omitempty" form:"version_ids"`
	VersionStatus []PlanVersionStatus `json:"status,omitempty" form:"status"`
}

// NewPlanVersionFilter creates a new plan version filter with default options
func NewPlanVersionFilter() *PlanVersionFilter {
	return &PlanVersionFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitPlanVersionFilter creates a new plan version filter without pagination
func NewNoLimitPlanVersionFilter() *PlanVersionFilter {
	return &PlanVersionFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

// WithPlanIDs restricts the filter to the given plans
func (f *PlanVersionFilter) WithPlanIDs(planIDs ...string) *PlanVersionFilter {
	f.PlanIDs = planIDs
	return f
}

// WithStatus restricts the filter to the given statuses
func (f *PlanVersionFilter) WithStatus(statuses ...PlanVersionStatus) *PlanVersionFilter {
	f.VersionStatus = statuses
	return f
}

// Validate validates the filter options
func (f *PlanVersionFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.VersionStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit implements BaseFilter interface
func (f *PlanVersionFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset implements BaseFilter interface
func (f *PlanVersionFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

// GetSort implements BaseFilter interface
func (f *PlanVersionFilter) GetSort() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetSort()
	}
	return f.QueryFilter.GetSort()
}

// GetOrder implements BaseFilter interface
func (f *PlanVersionFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOrder()
	}
	return f.QueryFilter.GetOrder()
}

func (f *PlanVersionFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
