package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/subscription"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
)

const subscriptionColumns = `id, tenant_id, environment_id, customer_id, plan_version_id, status,
	start_date, end_date, ended_reason, billed_on_end, created_at, updated_at, created_by, updated_by`

var subscriptionSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			tenant_id,
			environment_id,
			customer_id,
			plan_version_id,
			status,
			start_date,
			end_date,
			ended_reason,
			billed_on_end,
			created_at,
			updated_at,
			created_by,
			updated_by
		)
		VALUES (
			:id,
			:tenant_id,
			:environment_id,
			:customer_id,
			:plan_version_id,
			:status,
			:start_date,
			:end_date,
			:ended_reason,
			:billed_on_end,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)
	`

	r.logger.Debugw("creating subscription",
		"subscription_id", s.ID,
		"plan_version_id", s.PlanVersionID,
	)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s); err != nil {
		return mapError(err, "Subscription", map[string]any{"subscription_id": s.ID})
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
		WHERE id = $1 AND tenant_id = $2 AND environment_id = $3`

	var s subscription.Subscription
	err := r.db.GetQuerier(ctx).GetContext(ctx, &s, query, id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx))
	if err != nil {
		return nil, mapError(err, "Subscription", map[string]any{"subscription_id": id})
	}
	return &s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan_version_id = :plan_version_id,
			status = :status,
			end_date = :end_date,
			ended_reason = :ended_reason,
			billed_on_end = :billed_on_end,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id
	`

	r.logger.Debugw("updating subscription",
		"subscription_id", s.ID,
		"status", s.Status,
		"plan_version_id", s.PlanVersionID,
	)

	res, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, s)
	if err != nil {
		return mapError(err, "Subscription", map[string]any{"subscription_id": s.ID})
	}
	return checkAffected(res, "Subscription", map[string]any{"subscription_id": s.ID})
}

func (r *subscriptionRepository) filter(ctx context.Context, f *types.SubscriptionFilter) *whereBuilder {
	w := &whereBuilder{}
	w.add("tenant_id = ?", types.GetTenantID(ctx))
	w.add("environment_id = ?", types.GetEnvironmentID(ctx))
	if f == nil {
		return w
	}
	if f.CustomerID != "" {
		w.add("customer_id = ?", f.CustomerID)
	}
	if len(f.PlanVersionIDs) > 0 {
		w.add("plan_version_id IN (?)", f.PlanVersionIDs)
	}
	if f.ActiveAt != nil {
		w.add("status = ?", string(types.SubscriptionStatusActive))
		w.add("start_date <= ?", *f.ActiveAt)
		w.add("(end_date IS NULL OR end_date > ?)", *f.ActiveAt)
	}
	if f.OpenAt != nil {
		w.add("status = ?", string(types.SubscriptionStatusActive))
		w.add("(end_date IS NULL OR end_date > ?)", *f.OpenAt)
	}
	return w
}

func (r *subscriptionRepository) List(ctx context.Context, f *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	q := r.db.GetQuerier(ctx)
	var bf types.BaseFilter
	if f != nil {
		bf = f
	}
	query, args, err := buildQuery(q.Rebind, `SELECT `+subscriptionColumns+` FROM subscriptions`,
		r.filter(ctx, f), bf, subscriptionSortColumns)
	if err != nil {
		return nil, err
	}

	subs := []*subscription.Subscription{}
	if err := q.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, mapError(err, "Subscription", nil)
	}
	return subs, nil
}

func (r *subscriptionRepository) Count(ctx context.Context, f *types.SubscriptionFilter) (int, error) {
	q := r.db.GetQuerier(ctx)
	query, args, err := buildCount(q.Rebind, "subscriptions", r.filter(ctx, f))
	if err != nil {
		return 0, err
	}

	var count int
	if err := q.GetContext(ctx, &count, query, args...); err != nil {
		return 0, mapError(err, "Subscription", nil)
	}
	return count, nil
}
