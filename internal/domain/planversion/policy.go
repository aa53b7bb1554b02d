package planversion

import (
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
)

// ActivationPolicy decides how a newly created version relates to the
// plan's current display version. The set of policies is closed.
type ActivationPolicy interface {
	// Name is the label used for logs and metrics
	Name() string
	// Activates reports whether the new version becomes the display version
	Activates() bool
	// OutgoingStatus is the status the previous display version moves to
	OutgoingStatus(hasActiveSubscriptions bool) types.PlanVersionStatus

	activationPolicy()
}

// KeepInactive creates the version without touching the display version
type KeepInactive struct{}

// ReplaceImmediately swaps the display version now and applies Mode to the
// subscriptions of the outgoing version
type ReplaceImmediately struct {
	Mode types.ReplaceImmediatelyType
}

// GrandfatherActive keeps existing subscribers on the outgoing version indefinitely
type GrandfatherActive struct{}

// ReplaceOnActiveVersionRenewal moves subscribers at their next renewal
type ReplaceOnActiveVersionRenewal struct{}

func (KeepInactive) Name() string { return "keep_inactive" }

func (KeepInactive) Activates() bool { return false }

func (KeepInactive) OutgoingStatus(bool) types.PlanVersionStatus {
	return types.PlanVersionStatusActive
}

func (KeepInactive) activationPolicy() {}

func (ReplaceImmediately) Name() string { return string(types.MakeActiveTypeReplaceImmediately) }

func (ReplaceImmediately) Activates() bool { return true }

func (ReplaceImmediately) OutgoingStatus(bool) types.PlanVersionStatus {
	return types.PlanVersionStatusInactive
}

func (ReplaceImmediately) activationPolicy() {}

func (GrandfatherActive) Name() string { return string(types.MakeActiveTypeGrandfatherActive) }

func (GrandfatherActive) Activates() bool { return true }

func (GrandfatherActive) OutgoingStatus(hasActiveSubscriptions bool) types.PlanVersionStatus {
	if !hasActiveSubscriptions {
		return types.PlanVersionStatusInactive
	}
	return types.PlanVersionStatusGrandfathered
}

func (GrandfatherActive) activationPolicy() {}

func (ReplaceOnActiveVersionRenewal) Name() string {
	return string(types.MakeActiveTypeReplaceOnActiveVersionRenewal)
}

func (ReplaceOnActiveVersionRenewal) Activates() bool { return true }

func (ReplaceOnActiveVersionRenewal) OutgoingStatus(hasActiveSubscriptions bool) types.PlanVersionStatus {
	if !hasActiveSubscriptions {
		return types.PlanVersionStatusInactive
	}
	return types.PlanVersionStatusRetiring
}

func (ReplaceOnActiveVersionRenewal) activationPolicy() {}

// NewActivationPolicy maps the request flags onto a policy. A
// replace_immediately_type given with any policy other than
// replace_immediately is rejected instead of ignored.
func NewActivationPolicy(
	makeActive bool,
	makeActiveType *types.MakeActiveType,
	replaceType *types.ReplaceImmediatelyType,
) (ActivationPolicy, error) {
	if !makeActive {
		if makeActiveType != nil || replaceType != nil {
			return nil, ierr.NewError("activation options given for an inactive version").
				WithHint("make_active_type and replace_immediately_type require make_active to be true").
				Mark(ierr.ErrValidation)
		}
		return KeepInactive{}, nil
	}

	t := types.MakeActiveTypeReplaceImmediately
	if makeActiveType != nil {
		if err := makeActiveType.Validate(); err != nil {
			return nil, err
		}
		t = *makeActiveType
	}

	if replaceType != nil && t != types.MakeActiveTypeReplaceImmediately {
		return nil, ierr.NewError("replace_immediately_type is only valid with replace_immediately").
			WithHint("Remove replace_immediately_type or use make_active_type replace_immediately").
			WithReportableDetails(map[string]any{
				"make_active_type":         t,
				"replace_immediately_type": *replaceType,
			}).
			Mark(ierr.ErrValidation)
	}

	switch t {
	case types.MakeActiveTypeGrandfatherActive:
		return GrandfatherActive{}, nil
	case types.MakeActiveTypeReplaceOnActiveVersionRenewal:
		return ReplaceOnActiveVersionRenewal{}, nil
	default:
		mode := types.ReplaceImmediatelyEndCurrentSubscriptionAndBill
		if replaceType != nil {
			if err := replaceType.Validate(); err != nil {
				return nil, err
			}
			mode = *replaceType
		}
		return ReplaceImmediately{Mode: mode}, nil
	}
}
