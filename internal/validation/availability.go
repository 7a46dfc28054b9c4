// Package validation implements the store-backed eligibility checks and the
// load validation orchestrator. Pure status rules live in the rules package;
// everything here reads the persistent store and may block.
package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/metrics"
)

// DefaultComplianceWarnWindow is how far ahead of a compliance deadline we
// start warning. Expiry itself is always a hard failure.
const DefaultComplianceWarnWindow = 30 * 24 * time.Hour

// Checker validates driver and vehicle availability against the store.
//
// The read-then-decide window here is not atomic against concurrent writers;
// the store-level exclusivity constraint is the real invariant enforcer and
// this check is the user-facing pre-check.
type Checker struct {
	store      storage.Store
	warnWindow time.Duration
	now        func() time.Time
}

// NewChecker creates a Checker with the default 30-day warning window.
func NewChecker(store storage.Store) *Checker {
	return &Checker{
		store:      store,
		warnWindow: DefaultComplianceWarnWindow,
		now:        time.Now,
	}
}

// WithWarnWindow overrides the compliance warning window.
func (c *Checker) WithWarnWindow(d time.Duration) *Checker {
	if d > 0 {
		c.warnWindow = d
	}
	return c
}

// WithClock overrides the clock, for tests.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// ValidateDriverAvailability checks that the driver exists, is active, holds
// valid credentials and is not committed to another in-progress load.
// excludeLoadID skips a load when re-validating it against itself.
//
// Store failures fold into a hard validation failure; callers needing
// stronger guarantees wrap the surrounding mutation in the retry executor.
func (c *Checker) ValidateDriverAvailability(
	ctx context.Context,
	driverID, orgID, excludeLoadID string,
) domain.RuleResult {
	result := domain.OK()
	metrics.AvailabilityChecks.WithLabelValues("driver").Inc()

	driver, err := c.store.Drivers.GetByID(ctx, orgID, driverID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			result.AddError("driver not found or inactive")
		} else {
			result.AddError("failed to validate driver availability")
		}
		return result
	}
	if driver.Status != domain.DriverStatusActive {
		result.AddError("driver not found or inactive")
		return result
	}

	conflicts, err := c.activeLoads(ctx, storage.LoadFilter{
		OrganizationID: orgID,
		DriverID:       driverID,
		ExcludeLoadID:  excludeLoadID,
	})
	if err != nil {
		result.AddError("failed to validate driver availability")
		return result
	}
	if len(conflicts) > 0 {
		result.AddError(fmt.Sprintf(
			"driver is already assigned to active load(s): %s", strings.Join(conflicts, ", ")))
	}

	now := c.now()
	c.checkDeadline(&result, "driver's medical card", driver.MedicalCardExpiration, now)
	c.checkDeadline(&result, "driver's license", driver.LicenseExpiration, now)

	if !result.Valid {
		metrics.AvailabilityFailures.WithLabelValues("driver").Inc()
	}
	return result
}

// ValidateVehicleAvailability is the vehicle analogue: existence, active
// status, inspection currency and exclusivity.
func (c *Checker) ValidateVehicleAvailability(
	ctx context.Context,
	vehicleID, orgID, excludeLoadID string,
) domain.RuleResult {
	result := domain.OK()
	metrics.AvailabilityChecks.WithLabelValues("vehicle").Inc()

	vehicle, err := c.store.Vehicles.GetByID(ctx, orgID, vehicleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			result.AddError("vehicle not found or inactive")
		} else {
			result.AddError("failed to validate vehicle availability")
		}
		return result
	}
	if vehicle.Status != domain.VehicleStatusActive {
		result.AddError("vehicle not found or inactive")
		return result
	}

	conflicts, err := c.activeLoads(ctx, storage.LoadFilter{
		OrganizationID: orgID,
		VehicleID:      vehicleID,
		ExcludeLoadID:  excludeLoadID,
	})
	if err != nil {
		result.AddError("failed to validate vehicle availability")
		return result
	}
	if len(conflicts) > 0 {
		result.AddError(fmt.Sprintf(
			"vehicle is already assigned to active load(s): %s", strings.Join(conflicts, ", ")))
	}

	c.checkDeadline(&result, "vehicle's inspection", vehicle.NextInspectionDue, c.now())

	if !result.Valid {
		metrics.AvailabilityFailures.WithLabelValues("vehicle").Inc()
	}
	return result
}

// activeLoads returns the references of in-progress loads matching the
// filter.
func (c *Checker) activeLoads(ctx context.Context, filter storage.LoadFilter) ([]string, error) {
	filter.StatusIn = domain.InProgressStatuses
	loads, err := c.store.Loads.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(loads))
	for _, l := range loads {
		ref := l.Reference
		if ref == "" {
			ref = l.ID
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// checkDeadline hard-fails on an expired deadline and warns when it falls
// inside the warning window. Deadlines softer than hard expiry are a
// deliberate policy choice.
func (c *Checker) checkDeadline(result *domain.RuleResult, what string, due time.Time, now time.Time) {
	if due.IsZero() {
		return
	}
	if due.Before(now) {
		result.AddError(fmt.Sprintf("%s expired on %s", what, due.Format("2006-01-02")))
		return
	}
	if due.Before(now.Add(c.warnWindow)) {
		result.AddWarning(fmt.Sprintf("%s expires soon, on %s", what, due.Format("2006-01-02")))
	}
}
