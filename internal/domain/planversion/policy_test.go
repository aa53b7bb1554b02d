package planversion

import (
	"testing"

	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivationPolicy(t *testing.T) {
	tests := []struct {
		name        string
		makeActive  bool
		activeType  *types.MakeActiveType
		replaceType *types.ReplaceImmediatelyType
		want        ActivationPolicy
		wantErr     bool
	}{
		{
			name: "inactive",
			want: KeepInactive{},
		},
		{
			name:       "active defaults to replace immediately and bill",
			makeActive: true,
			want:       ReplaceImmediately{Mode: types.ReplaceImmediatelyEndCurrentSubscriptionAndBill},
		},
		{
			name:        "replace immediately with explicit mode",
			makeActive:  true,
			activeType:  lo.ToPtr(types.MakeActiveTypeReplaceImmediately),
			replaceType: lo.ToPtr(types.ReplaceImmediatelyChangeSubscriptionPlan),
			want:        ReplaceImmediately{Mode: types.ReplaceImmediatelyChangeSubscriptionPlan},
		},
		{
			name:       "grandfather",
			makeActive: true,
			activeType: lo.ToPtr(types.MakeActiveTypeGrandfatherActive),
			want:       GrandfatherActive{},
		},
		{
			name:       "renewal",
			makeActive: true,
			activeType: lo.ToPtr(types.MakeActiveTypeReplaceOnActiveVersionRenewal),
			want:       ReplaceOnActiveVersionRenewal{},
		},
		{
			name:        "replace type with grandfather is rejected",
			makeActive:  true,
			activeType:  lo.ToPtr(types.MakeActiveTypeGrandfatherActive),
			replaceType: lo.ToPtr(types.ReplaceImmediatelyEndCurrentSubscriptionDontBill),
			wantErr:     true,
		},
		{
			name:       "unknown make active type",
			makeActive: true,
			activeType: lo.ToPtr(types.MakeActiveType("sometimes")),
			wantErr:    true,
		},
		{
			name:        "options without make_active",
			replaceType: lo.ToPtr(types.ReplaceImmediatelyEndCurrentSubscriptionDontBill),
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewActivationPolicy(tt.makeActive, tt.activeType, tt.replaceType)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutgoingStatus(t *testing.T) {
	tests := []struct {
		policy  ActivationPolicy
		hasSubs bool
		want    types.PlanVersionStatus
	}{
		{ReplaceImmediately{}, true, types.PlanVersionStatusInactive},
		{ReplaceImmediately{}, false, types.PlanVersionStatusInactive},
		{GrandfatherActive{}, true, types.PlanVersionStatusGrandfathered},
		{GrandfatherActive{}, false, types.PlanVersionStatusInactive},
		{ReplaceOnActiveVersionRenewal{}, true, types.PlanVersionStatusRetiring},
		{ReplaceOnActiveVersionRenewal{}, false, types.PlanVersionStatusInactive},
		{KeepInactive{}, true, types.PlanVersionStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.policy.Name(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.OutgoingStatus(tt.hasSubs))
		})
	}
}

func TestRecurringChargesScan(t *testing.T) {
	var charges RecurringCharges
	require.NoError(t, charges.Scan([]byte(`[{"name":"base","charge_timing":"in_advance","charge_behavior":"prorate","amount":"10.5"}]`)))
	require.Len(t, charges, 1)
	assert.Equal(t, "10.5", charges[0].Amount.String())
	assert.NoError(t, charges.Validate())

	require.NoError(t, charges.Scan(nil))
	assert.Empty(t, charges)

	assert.Error(t, charges.Scan(42))
}
