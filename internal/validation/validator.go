package validation

import (
	"context"
	"errors"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/metrics"
	"github.com/loadline/dispatch/internal/rules"
)

// LoadValidator composes every rule check into the single call action
// handlers make before persisting a load mutation.
type LoadValidator struct {
	store   storage.Store
	checker *Checker
}

// NewLoadValidator creates the orchestrator.
func NewLoadValidator(store storage.Store, checker *Checker) *LoadValidator {
	return &LoadValidator{store: store, checker: checker}
}

// Checker exposes the underlying availability checker.
func (v *LoadValidator) Checker() *Checker {
	return v.checker
}

// ValidateLoad runs every applicable check against the load snapshot and an
// optional requested status ("" means no status change). The result
// aggregates all sub-checks; nothing short-circuits, so the caller gets the
// complete set of problems in one round trip.
func (v *LoadValidator) ValidateLoad(
	ctx context.Context,
	load *domain.Load,
	newStatus domain.LoadStatus,
) domain.RuleResult {
	result := domain.OK()
	metrics.LoadValidations.Inc()

	target := load.Status
	if newStatus != "" && newStatus != load.Status {
		target = newStatus
		result.Merge(rules.ValidateStatusTransition(load.Status, newStatus))
	}

	// Requirement checks run against the target status, immutability
	// against the current one: a load that is about to become immutable is
	// still modifiable right now.
	result.Merge(rules.ValidateDriverAssignment(target, load.DriverID))
	result.Merge(rules.ValidateVehicleAssignment(target, load.VehicleID))
	result.Merge(rules.ValidateLoadModification(load.Status))
	result.Merge(rules.ValidateSchedule(load))

	// Store-backed checks only apply once the load exists and proposes
	// concrete resources.
	if load.ID != "" {
		if load.DriverID != "" {
			result.Merge(v.checker.ValidateDriverAvailability(
				ctx, load.DriverID, load.OrganizationID, load.ID))
		}
		if load.VehicleID != "" {
			result.Merge(v.checker.ValidateVehicleAvailability(
				ctx, load.VehicleID, load.OrganizationID, load.ID))
			result.Merge(v.validateCompatibility(ctx, load))
		}
	}

	if !result.Valid {
		metrics.LoadValidationFailures.Inc()
	}
	return result
}

// validateCompatibility fetches the candidate vehicle and cross-checks the
// cargo against it. A missing vehicle is already reported by the
// availability check, so it contributes nothing here.
func (v *LoadValidator) validateCompatibility(ctx context.Context, load *domain.Load) domain.RuleResult {
	vehicle, err := v.store.Vehicles.GetByID(ctx, load.OrganizationID, load.VehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.OK()
		}
		return domain.Fail("failed to validate vehicle compatibility")
	}
	return CheckVehicleCompatibility(load.Cargo, vehicle)
}
