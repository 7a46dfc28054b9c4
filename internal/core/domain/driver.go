package domain

import "time"

type DriverStatus string

const (
	DriverStatusActive   DriverStatus = "active"
	DriverStatusInactive DriverStatus = "inactive"
	DriverStatusOnLeave  DriverStatus = "on_leave"
)

// Driver represents a driver belonging to an organization.
type Driver struct {
	ID             string
	OrganizationID string
	Name           string
	Status         DriverStatus

	LicenseExpiration     time.Time
	MedicalCardExpiration time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
