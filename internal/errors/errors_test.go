package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewError("missing initial version").Mark(ErrValidation), http.StatusBadRequest},
		{"invalid operation", NewError("plan has subscriptions").Mark(ErrInvalidOperation), http.StatusBadRequest},
		{"not found", NewError("plan not found").Mark(ErrNotFound), http.StatusNotFound},
		{"version conflict", NewError("duplicate version").Mark(ErrVersionConflict), http.StatusConflict},
		{"database", WithError(errors.New("conn reset")).Mark(ErrDatabase), http.StatusInternalServerError},
		{"unmarked", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestBuilderKeepsHintsAndMarks(t *testing.T) {
	err := NewErrorf("plan %s not found", "plan_1").
		WithHint("Plan not found").
		WithReportableDetails(map[string]any{"plan_id": "plan_1"}).
		Mark(ErrNotFound)

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Contains(t, errors.GetAllHints(err), "Plan not found")
	assert.Contains(t, err.Error(), "plan plan_1 not found")
}
