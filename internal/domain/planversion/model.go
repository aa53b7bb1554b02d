package planversion

import (
	"database/sql/driver"
	"encoding/json"

	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/shopspring/decimal"
)

type PlanVersion struct {
	ID               string                  `db:"id" json:"id"`
	PlanID           string                  `db:"plan_id" json:"plan_id"`
	Version          int                     `db:"version" json:"version"`
	Status           types.PlanVersionStatus `db:"status" json:"status"`
	Description      string                  `db:"description" json:"description"`
	RecurringCharges RecurringCharges        `db:"recurring_charges" json:"recurring_charges"`
	EnvironmentID    string                  `db:"environment_id" json:"environment_id"`
	types.BaseModel
}

// IsDisplayable reports whether the version may be the display version of its plan
func (v *PlanVersion) IsDisplayable() bool {
	return v.Status != types.PlanVersionStatusArchived
}

// RecurringCharge is a flat amount billed once per plan period
type RecurringCharge struct {
	Name           string               `json:"name"`
	ChargeTiming   types.ChargeTiming   `json:"charge_timing"`
	ChargeBehavior types.ChargeBehavior `json:"charge_behavior"`
	Amount         decimal.Decimal      `json:"amount"`
}

func (c RecurringCharge) Validate() error {
	if c.Name == "" {
		return ierr.NewError("recurring charge name is required").
			WithHint("Every recurring charge needs a name").
			Mark(ierr.ErrValidation)
	}
	if err := c.ChargeTiming.Validate(); err != nil {
		return err
	}
	if err := c.ChargeBehavior.Validate(); err != nil {
		return err
	}
	if c.Amount.IsNegative() {
		return ierr.NewError("recurring charge amount must not be negative").
			WithHint("Amount must be zero or greater").
			WithReportableDetails(map[string]any{
				"name":   c.Name,
				"amount": c.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RecurringCharges is stored as a JSONB array, order is preserved
type RecurringCharges []RecurringCharge

func (r RecurringCharges) Validate() error {
	for _, c := range r {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Value implements driver.Valuer
func (r RecurringCharges) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner
func (r *RecurringCharges) Scan(value interface{}) error {
	if value == nil {
		*r = RecurringCharges{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return ierr.NewErrorf("unsupported type for recurring charges: %T", value).
			Mark(ierr.ErrDatabase)
	}

	if err := json.Unmarshal(data, r); err != nil {
		return ierr.WithError(err).
			WithHint("Stored recurring charges are not valid JSON").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
