package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
)

const planColumns = `id, tenant_id, environment_id, product_id, name, duration, status,
	display_version_id, created_at, updated_at, created_by, updated_by`

var planSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id,
			tenant_id,
			environment_id,
			product_id,
			name,
			duration,
			status,
			display_version_id,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:environment_id,
			:product_id,
			:name,
			:duration,
			:status,
			:display_version_id,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating plan",
		"plan_id", p.ID,
		"tenant_id", p.TenantID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return mapError(err, "Plan", map[string]any{"plan_id": p.ID})
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	return r.get(ctx, id, false)
}

func (r *planRepository) GetForUpdate(ctx context.Context, id string) (*plan.Plan, error) {
	return r.get(ctx, id, true)
}

func (r *planRepository) get(ctx context.Context, id string, lock bool) (*plan.Plan, error) {
	q := r.db.GetQuerier(ctx)
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND tenant_id = $2 AND environment_id = $3`
	if lock {
		query += ` FOR UPDATE`
	}

	var p plan.Plan
	err := q.GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx))
	if err != nil {
		return nil, mapError(err, "Plan", map[string]any{"plan_id": id})
	}
	return &p, nil
}

func (r *planRepository) filter(ctx context.Context, f *types.PlanFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("tenant_id = ?", types.GetTenantID(ctx))
	w.add("environment_id = ?", types.GetEnvironmentID(ctx))
	if f == nil {
		return w
	}
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if len(f.PlanIDs) > 0 {
		w.add("id IN (?)", f.PlanIDs)
	}
	return w
}

func (r *planRepository) List(ctx context.Context, f *types.PlanFilter) ([]*plan.Plan, error) {
	q := r.db.GetQuerier(ctx)
	var bf types.BaseFilter
	if f != nil {
		bf = f
	}
	query, args, err := buildQuery(q.Rebind, `SELECT `+planColumns+` FROM plans`, r.filter(ctx, f), bf, planSortColumns)
	if err != nil {
		return nil, err
	}

	plans := []*plan.Plan{}
	if err := q.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, mapError(err, "Plan", nil)
	}
	return plans, nil
}

func (r *planRepository) Count(ctx context.Context, f *types.PlanFilter) (int, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := buildCount(q.Rebind, "plans", r.filter(ctx, f))
	if err != nil {
		return 0, err
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, mapError(err, "Plan", nil)
	}
	return count, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE plans
		SET name = :name,
			status = :status,
			display_version_id = :display_version_id,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND environment_id = :environment_id
	`

	r.logger.Debugw("updating plan",
		"plan_id", p.ID,
		"tenant_id", p.TenantID,
		"status", p.Status,
	)

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p)
	if err != nil {
		return mapError(err, "Plan", map[string]any{"plan_id": p.ID})
	}
	return checkAffected(res, "Plan", map[string]any{"plan_id": p.ID})
}

type planTagRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPlanTagRepository(db *postgres.DB, logger *logger.Logger) plan.TagRepository {
	return &planTagRepository{db: db, logger: logger}
}

func (r *planTagRepository) ListByPlan(ctx context.Context, planID string) ([]*plan.Tag, error) {
	query := `
		SELECT id, plan_id, tenant_id, tag_name, tag_color, tag_hex, created_by, created_at
		FROM plan_tags
		WHERE plan_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, id ASC
	`

	tags := []*plan.Tag{}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &tags, query, planID, types.GetTenantID(ctx)); err != nil {
		return nil, mapError(err, "Plan tag", map[string]any{"plan_id": planID})
	}
	return tags, nil
}

func (r *planTagRepository) CreateMany(ctx context.Context, tags []*plan.Tag) error {
	if len(tags) == 0 {
		return nil
	}

	query := `
		INSERT INTO plan_tags (id, plan_id, tenant_id, tag_name, tag_color, tag_hex, created_by, created_at)
		VALUES (:id, :plan_id, :tenant_id, :tag_name, :tag_color, :tag_hex, :created_by, :created_at)
	`

	r.logger.Debugw("creating plan tags", "plan_id", tags[0].PlanID, "count", len(tags))

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, tags); err != nil {
		return mapError(err, "Plan tag", map[string]any{"plan_id": tags[0].PlanID})
	}
	return nil
}

func (r *planTagRepository) DeleteMany(ctx context.Context, planID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}

	q := r.db.GetQuerier(ctx)
	w := &whereBuilder{}
	w.add("plan_id = ?", planID)
	w.add("tenant_id = ?", types.GetTenantID(ctx))
	w.add("id IN (?)", tagIDs)
	query, args, err := expand(q.Rebind, "DELETE FROM plan_tags"+w.sql(), w.args)
	if err != nil {
		return err
	}

	r.logger.Debugw("deleting plan tags", "plan_id", planID, "count", len(tagIDs))

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return mapError(err, "Plan tag", map[string]any{"plan_id": planID})
	}
	return nil
}
