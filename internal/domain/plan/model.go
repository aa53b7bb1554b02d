package plan

import (
	"time"

	"github.com/flexprice/plancatalog/internal/types"
)

type Plan struct {
	ID            string             `db:"id" json:"id"`
	Name          string             `db:"name" json:"name"`
	Duration      types.PlanDuration `db:"duration" json:"duration"`
	ProductID     string             `db:"product_id" json:"product_id"`
	EnvironmentID string             `db:"environment_id" json:"environment_id"`
	Status        types.PlanStatus   `db:"status" json:"status"`
	// DisplayVersionID points at the single active version, nil when the
	// plan currently has none
	DisplayVersionID *string `db:"display_version_id" json:"display_version_id"`

	Tags []*Tag `db:"-" json:"tags"`

	types.BaseModel
}

// HasDisplayVersion reports whether the plan currently has an active version
func (p *Plan) HasDisplayVersion() bool {
	return p.DisplayVersionID != nil && *p.DisplayVersionID != ""
}

// IsArchived reports whether the plan has been archived
func (p *Plan) IsArchived() bool {
	return p.Status == types.PlanStatusArchived
}

// Tag is a label attached to a plan. Names are unique per plan ignoring case.
type Tag struct {
	ID        string `db:"id" json:"-"`
	PlanID    string `db:"plan_id" json:"-"`
	TenantID  string `db:"tenant_id" json:"-"`
	TagName   string `db:"tag_name" json:"tag_name"`
	TagColor  string `db:"tag_color" json:"tag_color"`
	TagHex    string `db:"tag_hex" json:"tag_hex"`
	CreatedBy string `db:"created_by" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"-"`
}
