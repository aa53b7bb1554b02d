package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return postgres.NewFromSQLX(sqlx.NewDb(sqlDB, "postgres"), logger.NewNopLogger()), mock
}

func testCtx() context.Context {
	ctx := types.SetTenantID(context.Background(), "tenant_1")
	return context.WithValue(ctx, types.CtxUserID, "user_1")
}

var planRowColumns = []string{
	"id", "tenant_id", "environment_id", "product_id", "name", "duration", "status",
	"display_version_id", "created_at", "updated_at", "created_by", "updated_by",
}

func TestPlanRepository_GetForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	rows := sqlmock.NewRows(planRowColumns).AddRow(
		"plan_1", "tenant_1", "", "prod_1", "Pro", "monthly", "active",
		"pver_1", now, now, "user_1", "user_1",
	)
	mock.ExpectQuery(`SELECT (.+) FROM plans WHERE id = \$1 AND tenant_id = \$2 AND environment_id = \$3 FOR UPDATE`).
		WithArgs("plan_1", "tenant_1", "").
		WillReturnRows(rows)

	p, err := repo.GetForUpdate(testCtx(), "plan_1")
	require.NoError(t, err)
	assert.Equal(t, "Pro", p.Name)
	assert.Equal(t, types.PlanDurationMonthly, p.Duration)
	require.True(t, p.HasDisplayVersion())
	assert.Equal(t, "pver_1", *p.DisplayVersionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanRepository(db, logger.NewNopLogger())

	mock.ExpectQuery(`SELECT (.+) FROM plans WHERE id = \$1`).
		WithArgs("missing", "tenant_1", "").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(testCtx(), "missing")
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_ListAppliesFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanRepository(db, logger.NewNopLogger())

	filter := types.NewPlanFilter()
	filter.Status = lo.ToPtr(types.PlanStatusActive)
	filter.PlanIDs = []string{"plan_1", "plan_2"}
	filter.Limit = lo.ToPtr(10)

	mock.ExpectQuery(`SELECT (.+) FROM plans WHERE tenant_id = \$1 AND environment_id = \$2 AND status = \$3 AND id IN \(\$4, \$5\) ORDER BY created_at DESC, id DESC LIMIT \$6 OFFSET \$7`).
		WithArgs("tenant_1", "", "active", "plan_1", "plan_2", 10, 0).
		WillReturnRows(sqlmock.NewRows(planRowColumns))

	plans, err := repo.List(testCtx(), filter)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanRepository(db, logger.NewNopLogger())

	mock.ExpectExec(`UPDATE plans`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(testCtx(), &plan.Plan{ID: "plan_x", Status: types.PlanStatusActive})
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanVersionRepository_CreateDuplicateVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanVersionRepository(db, logger.NewNopLogger())

	mock.ExpectExec(`INSERT INTO plan_versions`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_plan_versions_plan_version"})

	err := repo.Create(testCtx(), &planversion.PlanVersion{
		ID:      "pver_2",
		PlanID:  "plan_1",
		Version: 1,
		Status:  types.PlanVersionStatusInactive,
		RecurringCharges: planversion.RecurringCharges{{
			Name:           "base",
			ChargeTiming:   types.ChargeTimingInAdvance,
			ChargeBehavior: types.ChargeBehaviorProrate,
			Amount:         decimal.NewFromInt(10),
		}},
	})
	require.Error(t, err)
	assert.True(t, ierr.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanVersionRepository_MaxVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanVersionRepository(db, logger.NewNopLogger())

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) FROM plan_versions WHERE plan_id = \$1 AND tenant_id = \$2`).
		WithArgs("plan_1", "tenant_1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))

	v, err := repo.MaxVersion(testCtx(), "plan_1")
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanVersionRepository_GetDecodesCharges(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanVersionRepository(db, logger.NewNopLogger())
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "environment_id", "plan_id", "version", "status", "description",
		"recurring_charges", "created_at", "updated_at", "created_by", "updated_by",
	}).AddRow(
		"pver_1", "tenant_1", "", "plan_1", 1, "active", "first",
		[]byte(`[{"name":"base","charge_timing":"in_advance","charge_behavior":"charge_full","amount":"25"}]`),
		now, now, "user_1", "user_1",
	)
	mock.ExpectQuery(`SELECT (.+) FROM plan_versions`).
		WithArgs("pver_1", "tenant_1", "").
		WillReturnRows(rows)

	v, err := repo.Get(testCtx(), "pver_1")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version)
	require.Len(t, v.RecurringCharges, 1)
	assert.True(t, v.RecurringCharges[0].Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, types.ChargeBehaviorChargeFull, v.RecurringCharges[0].ChargeBehavior)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_CountActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNopLogger())
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	filter := types.NewNoLimitSubscriptionFilter().
		WithPlanVersionIDs("pver_1").
		WithActiveAt(at)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subscriptions WHERE tenant_id = \$1 AND environment_id = \$2 AND plan_version_id IN \(\$3\) AND status = \$4 AND start_date <= \$5 AND \(end_date IS NULL OR end_date > \$6\)`).
		WithArgs("tenant_1", "", "pver_1", "active", at, at).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.Count(testCtx(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_CountOpenIncludesScheduled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNopLogger())
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	filter := types.NewNoLimitSubscriptionFilter().
		WithPlanVersionIDs("pver_1", "pver_2").
		WithOpenAt(at)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM subscriptions WHERE tenant_id = \$1 AND environment_id = \$2 AND plan_version_id IN \(\$3, \$4\) AND status = \$5 AND \(end_date IS NULL OR end_date > \$6\)$`).
		WithArgs("tenant_1", "", "pver_1", "pver_2", "active", at).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(testCtx(), filter)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepository_UpdateDatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubscriptionRepository(db, logger.NewNopLogger())

	mock.ExpectExec(`UPDATE subscriptions`).WillReturnError(errors.New("connection reset"))

	err := repo.Update(testCtx(), &subscription.Subscription{ID: "subs_1"})
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTagRepository_DeleteMany(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanTagRepository(db, logger.NewNopLogger())

	mock.ExpectExec(`DELETE FROM plan_tags WHERE plan_id = \$1 AND tenant_id = \$2 AND id IN \(\$3, \$4\)`).
		WithArgs("plan_1", "tenant_1", "tag_1", "tag_2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.DeleteMany(testCtx(), "plan_1", []string{"tag_1", "tag_2"}))
	require.NoError(t, repo.DeleteMany(testCtx(), "plan_1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlanRepository(db, logger.NewNopLogger())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO plans`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := ierr.NewError("boom").Mark(ierr.ErrValidation)
	err := db.WithTx(testCtx(), func(ctx context.Context) error {
		if err := repo.Create(ctx, &plan.Plan{ID: "plan_1", Status: types.PlanStatusActive}); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxNestedUsesSavepoint(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SAVEPOINT sp_1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`RELEASE SAVEPOINT sp_1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := db.WithTx(testCtx(), func(ctx context.Context) error {
		return db.WithTx(ctx, func(ctx context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
