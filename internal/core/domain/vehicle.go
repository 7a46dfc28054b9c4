package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusActive      VehicleStatus = "active"
	VehicleStatusInactive    VehicleStatus = "inactive"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

// Vehicle represents a truck/trailer unit belonging to an organization.
type Vehicle struct {
	ID             string
	OrganizationID string
	UnitNumber     string
	Status         VehicleStatus

	Type         string // equipment type, e.g. "dry_van", "reefer"
	MaxWeightLbs float64

	NextInspectionDue time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
