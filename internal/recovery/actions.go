package recovery

import (
	"context"

	"github.com/loadline/dispatch/internal/core/domain"
)

// ActionKind identifies what a recovery action does, so the UI layer can
// route it without parsing labels.
type ActionKind string

const (
	ActionKindRetry            ActionKind = "retry"
	ActionKindDismiss          ActionKind = "dismiss"
	ActionKindSelectDriver     ActionKind = "select_driver"
	ActionKindSelectVehicle    ActionKind = "select_vehicle"
	ActionKindViewConflicts    ActionKind = "view_conflicts"
	ActionKindViewTransitions  ActionKind = "view_transitions"
	ActionKindNewReference     ActionKind = "new_reference"
	ActionKindSaveDraft        ActionKind = "save_draft"
	ActionKindFixDates         ActionKind = "fix_dates"
	ActionKindAssignDriver     ActionKind = "assign_driver"
	ActionKindAssignVehicle    ActionKind = "assign_vehicle"
	ActionKindContactAdmin     ActionKind = "contact_admin"
	ActionKindRefresh          ActionKind = "refresh"
	ActionKindConfirmEquipment ActionKind = "confirm_equipment"
)

// Action is a labeled, invocable next step offered to the user after a
// failure. Invoke is nil when the step is purely navigational and handled by
// the UI layer.
type Action struct {
	Label   string
	Kind    ActionKind
	Primary bool
	Invoke  func(ctx context.Context) error
}

// ActionsFor proposes recovery actions for a classified error. retry, when
// non-nil, becomes the Invoke of retry-oriented actions. Every list ends
// with a Dismiss action.
func ActionsFor(derr *domain.DispatchError, retry func(ctx context.Context) error) []Action {
	var actions []Action

	switch derr.Code {
	case domain.ErrCodeDriverUnavailable:
		actions = append(actions,
			Action{Label: "Select a different driver", Kind: ActionKindSelectDriver, Primary: true},
			Action{Label: "View conflicting loads", Kind: ActionKindViewConflicts},
		)
	case domain.ErrCodeVehicleUnavailable:
		actions = append(actions,
			Action{Label: "Select a different vehicle", Kind: ActionKindSelectVehicle, Primary: true},
			Action{Label: "View conflicting loads", Kind: ActionKindViewConflicts},
		)
	case domain.ErrCodeAssignmentConflict:
		actions = append(actions,
			Action{Label: "View conflicting loads", Kind: ActionKindViewConflicts, Primary: true},
		)
	case domain.ErrCodeInvalidStatusTransition:
		actions = append(actions,
			Action{Label: "View valid transitions", Kind: ActionKindViewTransitions, Primary: true},
		)
	case domain.ErrCodeDuplicateReference:
		actions = append(actions,
			Action{Label: "Generate a new reference", Kind: ActionKindNewReference, Primary: true},
		)
	case domain.ErrCodeMissingDriverAssignment:
		actions = append(actions,
			Action{Label: "Assign a driver", Kind: ActionKindAssignDriver, Primary: true},
		)
	case domain.ErrCodeMissingVehicleAssignment:
		actions = append(actions,
			Action{Label: "Assign a vehicle", Kind: ActionKindAssignVehicle, Primary: true},
		)
	case domain.ErrCodeWeightExceeded:
		actions = append(actions,
			Action{Label: "Select a different vehicle", Kind: ActionKindSelectVehicle, Primary: true},
		)
	case domain.ErrCodeEquipmentMismatch:
		actions = append(actions,
			Action{Label: "Confirm equipment substitution", Kind: ActionKindConfirmEquipment, Primary: true},
			Action{Label: "Select a different vehicle", Kind: ActionKindSelectVehicle},
		)
	case domain.ErrCodeInvalidDateRange:
		actions = append(actions,
			Action{Label: "Correct the dates", Kind: ActionKindFixDates, Primary: true},
		)
	case domain.ErrCodeAuthorizationError:
		actions = append(actions,
			Action{Label: "Contact your administrator", Kind: ActionKindContactAdmin, Primary: true},
		)
	case domain.ErrCodeLoadNotFound:
		actions = append(actions,
			Action{Label: "Refresh the board", Kind: ActionKindRefresh, Primary: true},
		)
	case domain.ErrCodeNetworkError, domain.ErrCodeDatabaseError,
		domain.ErrCodeRateLimitError, domain.ErrCodeLocationUpdateFailed,
		domain.ErrCodeStatusSyncFailed:
		actions = append(actions,
			Action{Label: "Retry", Kind: ActionKindRetry, Primary: true, Invoke: retry},
			Action{Label: "Save as draft", Kind: ActionKindSaveDraft},
		)
	default:
		if derr.Recoverable {
			actions = append(actions,
				Action{Label: "Try again", Kind: ActionKindRetry, Primary: true, Invoke: retry},
			)
		}
	}

	return append(actions, Action{Label: "Dismiss", Kind: ActionKindDismiss})
}
