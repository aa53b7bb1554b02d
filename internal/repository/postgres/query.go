package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pq error code for unique_violation
const pqUniqueViolation = "23505"

// whereBuilder accumulates AND-ed conditions written with ? placeholders.
// Slice arguments are expanded by sqlx.In before the query is rebound.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildQuery appends the conditions, ordering and pagination of filter to base.
// sortable maps api sort fields to columns, unknown fields fall back to created_at.
func buildQuery(
	rebind func(string) string,
	base string,
	w *whereBuilder,
	filter types.BaseFilter,
	sortable map[string]string,
) (string, []interface{}, error) {
	query := base + w.sql()
	args := w.args

	if filter != nil {
		column, ok := sortable[filter.GetSort()]
		if !ok {
			column = "created_at"
		}
		order := "DESC"
		if filter.GetOrder() == types.OrderAsc {
			order = "ASC"
		}
		// id breaks ties between rows created in the same transaction
		query += fmt.Sprintf(" ORDER BY %s %s, id %s", column, order, order)

		if !filter.IsUnlimited() {
			query += " LIMIT ? OFFSET ?"
			args = append(args, filter.GetLimit(), filter.GetOffset())
		}
	}

	return expand(rebind, query, args)
}

// buildCount returns a COUNT(*) over the same conditions
func buildCount(rebind func(string) string, table string, w *whereBuilder) (string, []interface{}, error) {
	return expand(rebind, "SELECT COUNT(*) FROM "+table+w.sql(), w.args)
}

func expand(rebind func(string) string, query string, args []interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, ierr.WithError(err).
			WithHint("Failed to build query").
			Mark(ierr.ErrSystem)
	}
	return rebind(query), args, nil
}

// mapError converts driver errors into the error kinds the api understands
func mapError(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Database error while accessing %s", strings.ToLower(entity)).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}

// checkAffected turns an UPDATE that touched no row into a not found error
func checkAffected(res sql.Result, entity string, details map[string]any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, entity, details)
	}
	if n == 0 {
		return ierr.NewErrorf("%s not found", strings.ToLower(entity)).
			WithHintf("%s not found", entity).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
