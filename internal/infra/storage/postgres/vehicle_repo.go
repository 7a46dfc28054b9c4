package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
)

// VehicleRepo implements storage.VehicleRepository using PostgreSQL.
type VehicleRepo struct {
	db *DB
}

// NewVehicleRepo creates a new PostgreSQL vehicle repository.
func NewVehicleRepo(db *DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

type vehicleRow struct {
	ID                string    `db:"id"`
	OrganizationID    string    `db:"organization_id"`
	UnitNumber        string    `db:"unit_number"`
	Status            string    `db:"status"`
	Type              string    `db:"type"`
	MaxWeightLbs      float64   `db:"max_weight_lbs"`
	NextInspectionDue time.Time `db:"next_inspection_due"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r vehicleRow) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		ID:                r.ID,
		OrganizationID:    r.OrganizationID,
		UnitNumber:        r.UnitNumber,
		Status:            domain.VehicleStatus(r.Status),
		Type:              r.Type,
		MaxWeightLbs:      r.MaxWeightLbs,
		NextInspectionDue: r.NextInspectionDue,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *VehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	const q = `
		INSERT INTO vehicles (
			id, organization_id, unit_number, status, type,
			max_weight_lbs, next_inspection_due, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q,
		vehicle.ID, vehicle.OrganizationID, vehicle.UnitNumber, string(vehicle.Status),
		vehicle.Type, vehicle.MaxWeightLbs, vehicle.NextInspectionDue,
		vehicle.CreatedAt, vehicle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Vehicle, error) {
	const q = `SELECT * FROM vehicles WHERE organization_id = $1 AND id = $2`
	var row vehicleRow
	err := r.db.GetContext(ctx, &row, q, orgID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return row.toDomain(), nil
}

func (r *VehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	const q = `
		UPDATE vehicles SET
			unit_number = $3, status = $4, type = $5,
			max_weight_lbs = $6, next_inspection_due = $7, updated_at = $8
		WHERE organization_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q,
		vehicle.OrganizationID, vehicle.ID, vehicle.UnitNumber, string(vehicle.Status),
		vehicle.Type, vehicle.MaxWeightLbs, vehicle.NextInspectionDue, vehicle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *VehicleRepo) List(ctx context.Context, orgID string) ([]*domain.Vehicle, error) {
	const q = `SELECT * FROM vehicles WHERE organization_id = $1 ORDER BY unit_number`
	var rows []vehicleRow
	if err := r.db.SelectContext(ctx, &rows, q, orgID); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	vehicles := make([]*domain.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, row.toDomain())
	}
	return vehicles, nil
}
