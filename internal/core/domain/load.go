package domain

import "time"

// LoadStatus tracks a load from booking to payment.
type LoadStatus string

const (
	LoadStatusDraft       LoadStatus = "draft"
	LoadStatusPending     LoadStatus = "pending"
	LoadStatusPosted      LoadStatus = "posted"
	LoadStatusBooked      LoadStatus = "booked"
	LoadStatusConfirmed   LoadStatus = "confirmed"
	LoadStatusAssigned    LoadStatus = "assigned"
	LoadStatusDispatched  LoadStatus = "dispatched"
	LoadStatusInTransit   LoadStatus = "in_transit"
	LoadStatusAtPickup    LoadStatus = "at_pickup"
	LoadStatusPickedUp    LoadStatus = "picked_up"
	LoadStatusEnRoute     LoadStatus = "en_route"
	LoadStatusAtDelivery  LoadStatus = "at_delivery"
	LoadStatusDelivered   LoadStatus = "delivered"
	LoadStatusPodRequired LoadStatus = "pod_required"
	LoadStatusCompleted   LoadStatus = "completed"
	LoadStatusInvoiced    LoadStatus = "invoiced"
	LoadStatusPaid        LoadStatus = "paid"
	LoadStatusCancelled   LoadStatus = "cancelled"
	LoadStatusProblem     LoadStatus = "problem"
)

// InProgressStatuses is the set of statuses in which a driver/vehicle is
// actively committed to the load. A resource may hold at most one load in
// this set at a time.
var InProgressStatuses = []LoadStatus{
	LoadStatusAssigned,
	LoadStatusDispatched,
	LoadStatusInTransit,
	LoadStatusAtPickup,
	LoadStatusPickedUp,
	LoadStatusEnRoute,
	LoadStatusAtDelivery,
	LoadStatusDelivered,
}

// ImmutableStatuses are statuses in which a load may no longer be modified.
var ImmutableStatuses = []LoadStatus{
	LoadStatusPaid,
	LoadStatusCancelled,
	LoadStatusCompleted,
}

// IsInProgress reports whether s is in the active-commitment set.
func IsInProgress(s LoadStatus) bool {
	for _, st := range InProgressStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsImmutable reports whether loads in status s may still be modified.
func IsImmutable(s LoadStatus) bool {
	for _, st := range ImmutableStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s permits no further transitions.
func IsTerminal(s LoadStatus) bool {
	return s == LoadStatusPaid || s == LoadStatusCancelled
}

// Cargo describes what the load carries and what it needs to be hauled.
type Cargo struct {
	WeightLbs     float64
	EquipmentType string // e.g. "dry_van", "reefer", "flatbed"
	Description   string
}

// Load represents a single freight shipment.
type Load struct {
	ID             string
	Reference      string // human-facing, unique per organization
	OrganizationID string
	Status         LoadStatus
	DriverID       string // empty when unassigned
	VehicleID      string // empty when unassigned
	Cargo          Cargo

	ScheduledPickup   time.Time
	ScheduledDelivery time.Time
	ActualPickup      *time.Time
	ActualDelivery    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
