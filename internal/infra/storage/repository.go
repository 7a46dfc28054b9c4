// Package storage defines the persistence contracts the dispatch engine
// depends on. Implementations live in the postgres and memory subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/loadline/dispatch/internal/core/domain"
)

var (
	// ErrNotFound is returned when a record does not exist in the caller's
	// organization scope. Callers must be able to distinguish this from
	// infrastructure failures.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateReference is returned when a load reference collides
	// within an organization.
	ErrDuplicateReference = errors.New("load reference already exists")

	// ErrAssignmentConflict is returned when the store-level exclusivity
	// constraint rejects a write (one active load per driver/vehicle).
	ErrAssignmentConflict = errors.New("assignment conflict: resource already on an active load")
)

// LoadFilter selects loads for conflict detection and listings. Empty fields
// are ignored; StatusIn is an "in set" predicate.
type LoadFilter struct {
	OrganizationID string
	DriverID       string
	VehicleID      string
	StatusIn       []domain.LoadStatus
	ExcludeLoadID  string
	Limit          int
}

// LoadRepository handles load storage operations.
type LoadRepository interface {
	// Create persists a new load.
	Create(ctx context.Context, load *domain.Load) error

	// GetByID retrieves a load scoped to an organization.
	GetByID(ctx context.Context, orgID, id string) (*domain.Load, error)

	// Update persists mutations to an existing load.
	Update(ctx context.Context, load *domain.Load) error

	// List retrieves loads matching the filter.
	List(ctx context.Context, filter LoadFilter) ([]*domain.Load, error)

	// Delete removes a load. Only draft loads are ever hard-deleted; the
	// service layer enforces that.
	Delete(ctx context.Context, orgID, id string) error
}

// DriverRepository handles driver storage operations.
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Driver, error)
	Update(ctx context.Context, driver *domain.Driver) error
	List(ctx context.Context, orgID string) ([]*domain.Driver, error)
}

// VehicleRepository handles vehicle storage operations.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, orgID, id string) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	List(ctx context.Context, orgID string) ([]*domain.Vehicle, error)
}

// Store bundles the repositories a dispatch service needs.
type Store struct {
	Loads    LoadRepository
	Drivers  DriverRepository
	Vehicles VehicleRepository
}
