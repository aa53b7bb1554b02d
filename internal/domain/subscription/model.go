package subscription

import (
	"time"

	"github.com/flexprice/plancatalog/internal/types"
)

// Subscription is the minimal record plan lifecycle rules need: which
// customer bills against which plan version, and when.
type Subscription struct {
	ID            string                      `db:"id" json:"id"`
	CustomerID    string                      `db:"customer_id" json:"customer_id"`
	PlanVersionID string                      `db:"plan_version_id" json:"plan_version_id"`
	Status        types.SubscriptionStatus    `db:"status" json:"status"`
	StartDate     time.Time                   `db:"start_date" json:"start_date"`
	EndDate       *time.Time                  `db:"end_date" json:"end_date,omitempty"`
	EndedReason   types.SubscriptionEndReason `db:"ended_reason" json:"ended_reason,omitempty"`
	// BilledOnEnd tells invoicing whether the final partial period is charged
	BilledOnEnd   bool   `db:"billed_on_end" json:"billed_on_end"`
	EnvironmentID string `db:"environment_id" json:"environment_id"`
	types.BaseModel
}

// IsOpenAt reports whether the subscription still references its plan version
// at t, either billing already or scheduled to start later
func (s *Subscription) IsOpenAt(t time.Time) bool {
	if s.Status != types.SubscriptionStatusActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(t)
}

// IsActiveAt reports whether the subscription is billing at t
func (s *Subscription) IsActiveAt(t time.Time) bool {
	return s.IsOpenAt(t) && !s.StartDate.After(t)
}

// HasStartedAt reports whether the first billing period began at or before t
func (s *Subscription) HasStartedAt(t time.Time) bool {
	return !s.StartDate.After(t)
}

// End stops the subscription at t
func (s *Subscription) End(t time.Time, reason types.SubscriptionEndReason, bill bool) {
	s.Status = types.SubscriptionStatusEnded
	s.EndDate = &t
	s.EndedReason = reason
	s.BilledOnEnd = bill
}
