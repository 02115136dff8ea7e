package charge

import "strings"

// Action is the canonical reaction to a vendor status.
type Action int

const (
	// ActionPassthrough records the raw status without a transition.
	ActionPassthrough Action = iota
	// ActionMarkPaid completes the order payment.
	ActionMarkPaid
	// ActionCancel cancels the order.
	ActionCancel
)

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionMarkPaid:
		return "mark_paid"
	case ActionCancel:
		return "cancel"
	default:
		return "passthrough"
	}
}

// VendorStatus is a provider status classified into the canonical vocabulary.
type VendorStatus struct {
	Raw    string
	Action Action
}

// vendorActions is the single mapping table from vendor strings to actions.
var vendorActions = map[string]Action{
	"paid":      ActionMarkPaid,
	"success":   ActionMarkPaid,
	"confirmed": ActionMarkPaid,
	"expired":   ActionCancel,
}

// ClassifyStatus maps a raw vendor status to its canonical action.
// Unknown values keep their raw string and map to ActionPassthrough.
func ClassifyStatus(raw string) VendorStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	return VendorStatus{Raw: normalized, Action: vendorActions[normalized]}
}
