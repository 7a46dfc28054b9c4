package domain

import "time"

// ErrorCode is the fixed taxonomy of dispatch failures.
type ErrorCode string

const (
	ErrCodeInvalidStatusTransition  ErrorCode = "INVALID_STATUS_TRANSITION"
	ErrCodeDriverUnavailable        ErrorCode = "DRIVER_UNAVAILABLE"
	ErrCodeVehicleUnavailable       ErrorCode = "VEHICLE_UNAVAILABLE"
	ErrCodeLoadImmutable            ErrorCode = "LOAD_IMMUTABLE"
	ErrCodeAssignmentConflict       ErrorCode = "ASSIGNMENT_CONFLICT"
	ErrCodeMissingDriverAssignment  ErrorCode = "MISSING_DRIVER_ASSIGNMENT"
	ErrCodeMissingVehicleAssignment ErrorCode = "MISSING_VEHICLE_ASSIGNMENT"
	ErrCodeEquipmentMismatch        ErrorCode = "EQUIPMENT_MISMATCH"
	ErrCodeWeightExceeded           ErrorCode = "WEIGHT_EXCEEDED"
	ErrCodeDatabaseError            ErrorCode = "DATABASE_ERROR"
	ErrCodeNetworkError             ErrorCode = "NETWORK_ERROR"
	ErrCodeAuthorizationError       ErrorCode = "AUTHORIZATION_ERROR"
	ErrCodeRateLimitError           ErrorCode = "RATE_LIMIT_ERROR"
	ErrCodeLoadNotFound             ErrorCode = "LOAD_NOT_FOUND"
	ErrCodeDuplicateReference       ErrorCode = "DUPLICATE_REFERENCE"
	ErrCodeInvalidDateRange         ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeLocationUpdateFailed     ErrorCode = "LOCATION_UPDATE_FAILED"
	ErrCodeStatusSyncFailed         ErrorCode = "STATUS_SYNC_FAILED"
)

// ErrorDetails carries code-specific context. Fields are populated per code
// rather than stuffed into an untyped payload so consumers can switch
// exhaustively.
type ErrorDetails struct {
	// ConflictRefs names the loads blocking a resource assignment.
	ConflictRefs []string
	// AllowedTransitions lists the legal successors of the current status.
	AllowedTransitions []LoadStatus
	// Raw preserves the underlying error text for diagnostics.
	Raw string
}

// DispatchError is a classified, typed failure.
type DispatchError struct {
	Code        ErrorCode
	Message     string
	Details     ErrorDetails
	Recoverable bool
	UserAction  string
	Timestamp   time.Time
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// CatalogEntry is the fixed per-code metadata used by the classifier.
type CatalogEntry struct {
	Message     string
	Recoverable bool
	UserAction  string
}

// ErrorCatalog maps every taxonomy code to its user-facing defaults.
var ErrorCatalog = map[ErrorCode]CatalogEntry{
	ErrCodeInvalidStatusTransition: {
		Message:     "The requested status change is not allowed",
		Recoverable: true,
		UserAction:  "Review the load's current status and pick a valid next step",
	},
	ErrCodeDriverUnavailable: {
		Message:     "The selected driver is not available for this load",
		Recoverable: true,
		UserAction:  "Select a different driver or resolve the conflict",
	},
	ErrCodeVehicleUnavailable: {
		Message:     "The selected vehicle is not available for this load",
		Recoverable: true,
		UserAction:  "Select a different vehicle or resolve the conflict",
	},
	ErrCodeLoadImmutable: {
		Message:     "This load can no longer be modified",
		Recoverable: false,
		UserAction:  "Completed, paid and cancelled loads are read-only",
	},
	ErrCodeAssignmentConflict: {
		Message:     "The resource is already committed to another active load",
		Recoverable: true,
		UserAction:  "Free the resource or choose another one",
	},
	ErrCodeMissingDriverAssignment: {
		Message:     "A driver must be assigned before this status",
		Recoverable: true,
		UserAction:  "Assign a driver and try again",
	},
	ErrCodeMissingVehicleAssignment: {
		Message:     "A vehicle must be assigned before this status",
		Recoverable: true,
		UserAction:  "Assign a vehicle and try again",
	},
	ErrCodeEquipmentMismatch: {
		Message:     "The vehicle's equipment type does not match the cargo requirement",
		Recoverable: true,
		UserAction:  "Confirm the substitution or pick matching equipment",
	},
	ErrCodeWeightExceeded: {
		Message:     "The cargo weight exceeds the vehicle's capacity",
		Recoverable: true,
		UserAction:  "Choose a vehicle rated for this weight",
	},
	ErrCodeDatabaseError: {
		Message:     "A storage error occurred while processing the request",
		Recoverable: true,
		UserAction:  "Try again in a moment",
	},
	ErrCodeNetworkError: {
		Message:     "A network error interrupted the request",
		Recoverable: true,
		UserAction:  "Check connectivity and retry",
	},
	ErrCodeAuthorizationError: {
		Message:     "You are not authorized to perform this action",
		Recoverable: false,
		UserAction:  "Contact your administrator for access",
	},
	ErrCodeRateLimitError: {
		Message:     "Too many requests; the operation was throttled",
		Recoverable: true,
		UserAction:  "Wait a moment before retrying",
	},
	ErrCodeLoadNotFound: {
		Message:     "The load could not be found",
		Recoverable: false,
		UserAction:  "It may have been removed; refresh the board",
	},
	ErrCodeDuplicateReference: {
		Message:     "A load with this reference already exists",
		Recoverable: true,
		UserAction:  "Generate a new reference",
	},
	ErrCodeInvalidDateRange: {
		Message:     "The pickup and delivery dates are inconsistent",
		Recoverable: true,
		UserAction:  "Correct the scheduled dates",
	},
	ErrCodeLocationUpdateFailed: {
		Message:     "The location update could not be recorded",
		Recoverable: true,
		UserAction:  "The update will be retried automatically",
	},
	ErrCodeStatusSyncFailed: {
		Message:     "The status change could not be synchronized",
		Recoverable: true,
		UserAction:  "The change will be retried automatically",
	},
}
