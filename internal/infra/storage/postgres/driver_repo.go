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

// DriverRepo implements storage.DriverRepository using PostgreSQL.
type DriverRepo struct {
	db *DB
}

// NewDriverRepo creates a new PostgreSQL driver repository.
func NewDriverRepo(db *DB) *DriverRepo {
	return &DriverRepo{db: db}
}

type driverRow struct {
	ID                    string    `db:"id"`
	OrganizationID        string    `db:"organization_id"`
	Name                  string    `db:"name"`
	Status                string    `db:"status"`
	LicenseExpiration     time.Time `db:"license_expiration"`
	MedicalCardExpiration time.Time `db:"medical_card_expiration"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}

func (r driverRow) toDomain() *domain.Driver {
	return &domain.Driver{
		ID:                    r.ID,
		OrganizationID:        r.OrganizationID,
		Name:                  r.Name,
		Status:                domain.DriverStatus(r.Status),
		LicenseExpiration:     r.LicenseExpiration,
		MedicalCardExpiration: r.MedicalCardExpiration,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (r *DriverRepo) Create(ctx context.Context, driver *domain.Driver) error {
	const q = `
		INSERT INTO drivers (
			id, organization_id, name, status,
			license_expiration, medical_card_expiration, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q,
		driver.ID, driver.OrganizationID, driver.Name, string(driver.Status),
		driver.LicenseExpiration, driver.MedicalCardExpiration,
		driver.CreatedAt, driver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save driver: %w", err)
	}
	return nil
}

func (r *DriverRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Driver, error) {
	const q = `SELECT * FROM drivers WHERE organization_id = $1 AND id = $2`
	var row driverRow
	err := r.db.GetContext(ctx, &row, q, orgID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return row.toDomain(), nil
}

func (r *DriverRepo) Update(ctx context.Context, driver *domain.Driver) error {
	const q = `
		UPDATE drivers SET
			name = $3, status = $4,
			license_expiration = $5, medical_card_expiration = $6, updated_at = $7
		WHERE organization_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, q,
		driver.OrganizationID, driver.ID, driver.Name, string(driver.Status),
		driver.LicenseExpiration, driver.MedicalCardExpiration, driver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *DriverRepo) List(ctx context.Context, orgID string) ([]*domain.Driver, error) {
	const q = `SELECT * FROM drivers WHERE organization_id = $1 ORDER BY name`
	var rows []driverRow
	if err := r.db.SelectContext(ctx, &rows, q, orgID); err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	drivers := make([]*domain.Driver, 0, len(rows))
	for _, row := range rows {
		drivers = append(drivers, row.toDomain())
	}
	return drivers, nil
}
