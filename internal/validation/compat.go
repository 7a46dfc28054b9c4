package validation

import (
	"fmt"

	"github.com/loadline/dispatch/internal/core/domain"
)

// CheckVehicleCompatibility compares the cargo against the candidate
// vehicle. Exceeding capacity is a hard failure; an equipment type mismatch
// is advisory only, since fleets may substitute equipment with manual
// sign-off.
func CheckVehicleCompatibility(cargo domain.Cargo, vehicle *domain.Vehicle) domain.RuleResult {
	result := domain.OK()

	if vehicle.MaxWeightLbs > 0 && cargo.WeightLbs > vehicle.MaxWeightLbs {
		result.AddError(fmt.Sprintf(
			"cargo weight %.0f lbs exceeds vehicle capacity of %.0f lbs",
			cargo.WeightLbs, vehicle.MaxWeightLbs))
	}

	if cargo.EquipmentType != "" && vehicle.Type != "" && cargo.EquipmentType != vehicle.Type {
		result.AddWarning(fmt.Sprintf(
			"cargo requires %s but vehicle is %s; confirm the substitution",
			cargo.EquipmentType, vehicle.Type))
	}

	return result
}
