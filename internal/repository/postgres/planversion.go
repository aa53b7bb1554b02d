package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
)

const planVersionColumns = `id, tenant_id, environment_id, plan_id, version, status, description,
	recurring_charges, created_at, updated_at, created_by, updated_by`

var planVersionSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"version":    "version",
}

type planVersionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanVersionRepository(db *postgres.DB, logger *logger.Logger) planversion.Repository {
	return &planVersionRepository{db: db, logger: logger}
}

func (r *planVersionRepository) Create(ctx context.Context, v *planversion.PlanVersion) error {
	query := `
		INSERT INTO plan_versions (
			id,
			tenant_id,
			environment_id,
			plan_id,
			version,
			status,
			description,
			recurring_charges,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:environment_id,
			:plan_id,
			:version,
			:status,
			:description,
			:recurring_charges,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating plan version",
		"plan_version_id", v.ID,
		"plan_id", v.PlanID,
		"version", v.Version,
		"status", v.Status,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, v); err != nil {
		return mapError(err, "Plan version", map[string]any{
			"plan_id": v.PlanID,
			"version": v.Version,
		})
	}
	return nil
}

func (r *planVersionRepository) Get(ctx context.Context, id string) (*planversion.PlanVersion, error) {
	query := `SELECT ` + planVersionColumns + ` FROM plan_versions
		WHERE id = $1 AND tenant_id = $2 AND environment_id = $3`

	var v planversion.PlanVersion
	err := r.db.GetQuerier(ctx).GetContext(ctx, &v, query, id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx))
	if err != nil {
		return nil, mapError(err, "Plan version", map[string]any{"plan_version_id": id})
	}
	return &v, nil
}

func (r *planVersionRepository) filter(ctx context.Context, f *types.PlanVersionFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("tenant_id = ?", types.GetTenantID(ctx))
	w.add("environment_id = ?", types.GetEnvironmentID(ctx))
	if f == nil {
		return w
	}
	if len(f.PlanIDs) > 0 {
		w.add("plan_id IN (?)", f.PlanIDs)
	}
	if len(f.VersionIDs) > 0 {
		w.add("id IN (?)", f.VersionIDs)
	}
	if len(f.VersionStatus) > 0 {
		statuses := make([]string, len(f.VersionStatus))
		for i, s := range f.VersionStatus {
			statuses[i] = string(s)
		}
		w.add("status IN (?)", statuses)
	}
	return w
}

func (r *planVersionRepository) List(ctx context.Context, f *types.PlanVersionFilter) ([]*planversion.PlanVersion, error) {
	q := r.db.GetQuerier(ctx)
	var bf types.BaseFilter
	if f != nil {
		bf = f
	}
	query, args, err := buildQuery(q.Rebind, `SELECT `+planVersionColumns+` FROM plan_versions`,
		r.filter(ctx, f), bf, planVersionSortColumns)
	if err != nil {
		return nil, err
	}

	versions := []*planversion.PlanVersion{}
	if err := q.SelectContext(ctx, &versions, query, args...); err != nil {
		return nil, mapError(err, "Plan version", nil)
	}
	return versions, nil
}

func (r *planVersionRepository) Count(ctx context.Context, f *types.PlanVersionFilter) (int, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := buildCount(q.Rebind, "plan_versions", r.filter(ctx, f))
	if err != nil {
		return 0, err
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, mapError(err, "Plan version", nil)
	}
	return count, nil
}

func (r *planVersionRepository) Update(ctx context.Context, v *planversion.PlanVersion) error {
	query := `
		UPDATE plan_versions
		SET status = :status,
			description = :description,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND environment_id = :environment_id
	`

	r.logger.Debugw("updating plan version",
		"plan_version_id", v.ID,
		"status", v.Status,
	)

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, v)
	if err != nil {
		return mapError(err, "Plan version", map[string]any{"plan_version_id": v.ID})
	}
	return checkAffected(res, "Plan version", map[string]any{"plan_version_id": v.ID})
}

func (r *planVersionRepository) MaxVersion(ctx context.Context, planID string) (int, error) {
	query := `SELECT COALESCE(MAX(version), 0) FROM plan_versions WHERE plan_id = $1 AND tenant_id = $2`

	var maxVersion int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &maxVersion, query, planID, types.GetTenantID(ctx)); err != nil {
		return 0, mapError(err, "Plan version", map[string]any{"plan_id": planID})
	}
	return maxVersion, nil
}
