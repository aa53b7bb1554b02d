package types

import (
	"time"

	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the status of a subscription record
type SubscriptionStatus string

const (
	SubscriptionStatusActive SubscriptionStatus = "active"
	SubscriptionStatusEnded  SubscriptionStatus = "ended"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusEnded,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionFilter represents the filter options for subscriptions
type SubscriptionFilter struct {
	*QueryFilter

	CustomerID string `json:"customer_id,omitempty" form:"customer_id"`
	// PlanID is resolved by the service into PlanVersionIDs, repositories ignore it
	PlanID         string   `json:"plan_id,omitempty" form:"plan_id"`
	PlanVersionIDs []string `json:"plan_version_ids,omitempty" form:"plan_version_ids"`
	// ActiveOnly is resolved by the service into ActiveAt = now
	ActiveOnly bool `json:"active_only,omitempty" form:"active_only"`
	// ActiveAt keeps only subscriptions that are billing at this instant
	ActiveAt *time.Time `json:"active_at,omitempty" form:"active_at" time_format:"2006-01-02T15:04:05Z07:00"`
	// OpenAt keeps subscriptions that have not ended at this instant,
	// including those scheduled to start later
	OpenAt *time.Time `json:"-" form:"-"`
}

// NewSubscriptionFilter creates a new subscription filter with default options
func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitSubscriptionFilter creates a new subscription filter without pagination
func NewNoLimitSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

// WithPlanVersionIDs restricts the filter to the given plan versions
func (f *SubscriptionFilter) WithPlanVersionIDs(ids ...string) *SubscriptionFilter {
	f.PlanVersionIDs = ids
	return f
}

// WithActiveAt keeps only subscriptions billing at t
func (f *SubscriptionFilter) WithActiveAt(t time.Time) *SubscriptionFilter {
	f.ActiveAt = lo.ToPtr(t)
	return f
}

// WithOpenAt keeps only subscriptions that have not ended at t
func (f *SubscriptionFilter) WithOpenAt(t time.Time) *SubscriptionFilter {
	f.OpenAt = lo.ToPtr(t)
	return f
}

// Validate validates the filter options
func (f *SubscriptionFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit implements BaseFilter interface
func (f *SubscriptionFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset implements BaseFilter interface
func (f *SubscriptionFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

// GetSort implements BaseFilter interface
func (f *SubscriptionFilter) GetSort() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetSort()
	}
	return f.QueryFilter.GetSort()
}

// GetOrder implements BaseFilter interface
func (f *SubscriptionFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOrder()
	}
	return f.QueryFilter.GetOrder()
}

func (f *SubscriptionFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

// SubscriptionEndReason records why a subscription stopped billing
type SubscriptionEndReason string

const (
	SubscriptionEndReasonNone SubscriptionEndReason = ""
	// SubscriptionEndReasonVersionReplaced is set when a replace_immediately
	// activation ends the subscriptions of the outgoing version
	SubscriptionEndReasonVersionReplaced SubscriptionEndReason = "plan_version_replaced"
	SubscriptionEndReasonCancelled       SubscriptionEndReason = "cancelled"
)
