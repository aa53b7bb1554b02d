package subscription

import (
	"testing"
	"time"

	"github.com/flexprice/plancatalog/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestIsActiveAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"open ended", Subscription{Status: types.SubscriptionStatusActive, StartDate: past}, true},
		{"ends later", Subscription{Status: types.SubscriptionStatusActive, StartDate: past, EndDate: &future}, true},
		{"already ended by date", Subscription{Status: types.SubscriptionStatusActive, StartDate: past, EndDate: &past}, false},
		{"not started", Subscription{Status: types.SubscriptionStatusActive, StartDate: future}, false},
		{"ended status", Subscription{Status: types.SubscriptionStatusEnded, StartDate: past}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsActiveAt(now))
		})
	}
}

func TestIsOpenAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"billing", Subscription{Status: types.SubscriptionStatusActive, StartDate: past}, true},
		{"scheduled", Subscription{Status: types.SubscriptionStatusActive, StartDate: future}, true},
		{"already ended by date", Subscription{Status: types.SubscriptionStatusActive, StartDate: past, EndDate: &past}, false},
		{"ended status", Subscription{Status: types.SubscriptionStatusEnded, StartDate: future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsOpenAt(now))
		})
	}
}

func TestEnd(t *testing.T) {
	now := time.Now().UTC()
	s := &Subscription{Status: types.SubscriptionStatusActive, StartDate: now.Add(-time.Hour)}
	s.End(now, types.SubscriptionEndReasonVersionReplaced, true)

	assert.Equal(t, types.SubscriptionStatusEnded, s.Status)
	assert.Equal(t, types.SubscriptionEndReasonVersionReplaced, s.EndedReason)
	assert.True(t, s.BilledOnEnd)
	assert.False(t, s.IsActiveAt(now))
}
