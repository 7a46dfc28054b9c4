package rules

import (
	"fmt"

	"github.com/loadline/dispatch/internal/core/domain"
)

// The driver-required and vehicle-required sets coincide with the
// in-progress set: once a load is assigned, both resources must be on it
// until delivery.

// ValidateDriverAssignment fails when status demands a driver and none is
// attached.
func ValidateDriverAssignment(status domain.LoadStatus, driverID string) domain.RuleResult {
	if domain.IsInProgress(status) && driverID == "" {
		return domain.Fail(fmt.Sprintf("a driver must be assigned before the load can be %s", status))
	}
	return domain.OK()
}

// ValidateVehicleAssignment fails when status demands a vehicle and none is
// attached.
func ValidateVehicleAssignment(status domain.LoadStatus, vehicleID string) domain.RuleResult {
	if domain.IsInProgress(status) && vehicleID == "" {
		return domain.Fail(fmt.Sprintf("a vehicle must be assigned before the load can be %s", status))
	}
	return domain.OK()
}

// ValidateLoadModification fails when the load's current status forbids any
// modification.
func ValidateLoadModification(status domain.LoadStatus) domain.RuleResult {
	if domain.IsImmutable(status) {
		return domain.Fail(fmt.Sprintf("loads in status %s cannot be modified", status))
	}
	return domain.OK()
}

// ValidateSchedule checks that scheduled pickup precedes scheduled delivery.
// Zero timestamps are treated as "not yet scheduled" and pass.
func ValidateSchedule(load *domain.Load) domain.RuleResult {
	if load.ScheduledPickup.IsZero() || load.ScheduledDelivery.IsZero() {
		return domain.OK()
	}
	if !load.ScheduledPickup.Before(load.ScheduledDelivery) {
		return domain.Fail("scheduled pickup must be before scheduled delivery")
	}
	return domain.OK()
}
