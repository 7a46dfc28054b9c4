package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
)

// LoadRepo implements storage.LoadRepository using PostgreSQL.
type LoadRepo struct {
	db *DB
}

// NewLoadRepo creates a new PostgreSQL load repository.
func NewLoadRepo(db *DB) *LoadRepo {
	return &LoadRepo{db: db}
}

type loadRow struct {
	ID                 string         `db:"id"`
	Reference          string         `db:"reference"`
	OrganizationID     string         `db:"organization_id"`
	Status             string         `db:"status"`
	DriverID           sql.NullString `db:"driver_id"`
	VehicleID          sql.NullString `db:"vehicle_id"`
	CargoWeightLbs     float64        `db:"cargo_weight_lbs"`
	CargoEquipmentType sql.NullString `db:"cargo_equipment_type"`
	CargoDescription   sql.NullString `db:"cargo_description"`
	ScheduledPickup    sql.NullTime   `db:"scheduled_pickup"`
	ScheduledDelivery  sql.NullTime   `db:"scheduled_delivery"`
	ActualPickup       sql.NullTime   `db:"actual_pickup"`
	ActualDelivery     sql.NullTime   `db:"actual_delivery"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r loadRow) toDomain() *domain.Load {
	load := &domain.Load{
		ID:             r.ID,
		Reference:      r.Reference,
		OrganizationID: r.OrganizationID,
		Status:         domain.LoadStatus(r.Status),
		DriverID:       r.DriverID.String,
		VehicleID:      r.VehicleID.String,
		Cargo: domain.Cargo{
			WeightLbs:     r.CargoWeightLbs,
			EquipmentType: r.CargoEquipmentType.String,
			Description:   r.CargoDescription.String,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.ScheduledPickup.Valid {
		load.ScheduledPickup = r.ScheduledPickup.Time
	}
	if r.ScheduledDelivery.Valid {
		load.ScheduledDelivery = r.ScheduledDelivery.Time
	}
	if r.ActualPickup.Valid {
		t := r.ActualPickup.Time
		load.ActualPickup = &t
	}
	if r.ActualDelivery.Valid {
		t := r.ActualDelivery.Time
		load.ActualDelivery = &t
	}
	return load
}

func loadToRow(l *domain.Load) loadRow {
	return loadRow{
		ID:                 l.ID,
		Reference:          l.Reference,
		OrganizationID:     l.OrganizationID,
		Status:             string(l.Status),
		DriverID:           nullString(l.DriverID),
		VehicleID:          nullString(l.VehicleID),
		CargoWeightLbs:     l.Cargo.WeightLbs,
		CargoEquipmentType: nullString(l.Cargo.EquipmentType),
		CargoDescription:   nullString(l.Cargo.Description),
		ScheduledPickup:    nullTime(l.ScheduledPickup),
		ScheduledDelivery:  nullTime(l.ScheduledDelivery),
		ActualPickup:       nullTimePtr(l.ActualPickup),
		ActualDelivery:     nullTimePtr(l.ActualDelivery),
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// Create persists a new load. Unique-constraint violations map onto the
// storage sentinels so callers classify them without parsing SQL errors.
func (r *LoadRepo) Create(ctx context.Context, load *domain.Load) error {
	const q = `
		INSERT INTO loads (
			id, reference, organization_id, status, driver_id, vehicle_id,
			cargo_weight_lbs, cargo_equipment_type, cargo_description,
			scheduled_pickup, scheduled_delivery, actual_pickup, actual_delivery,
			created_at, updated_at
		) VALUES (
			:id, :reference, :organization_id, :status, :driver_id, :vehicle_id,
			:cargo_weight_lbs, :cargo_equipment_type, :cargo_description,
			:scheduled_pickup, :scheduled_delivery, :actual_pickup, :actual_delivery,
			:created_at, :updated_at
		)`
	if _, err := r.db.NamedExecContext(ctx, q, loadToRow(load)); err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to save load: %w", err)
	}
	return nil
}

// GetByID retrieves a load scoped to an organization.
func (r *LoadRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Load, error) {
	const q = `SELECT * FROM loads WHERE organization_id = $1 AND id = $2`
	var row loadRow
	err := r.db.GetContext(ctx, &row, q, orgID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get load: %w", err)
	}
	return row.toDomain(), nil
}

// Update persists mutations to an existing load.
func (r *LoadRepo) Update(ctx context.Context, load *domain.Load) error {
	const q = `
		UPDATE loads SET
			status = :status,
			driver_id = :driver_id,
			vehicle_id = :vehicle_id,
			cargo_weight_lbs = :cargo_weight_lbs,
			cargo_equipment_type = :cargo_equipment_type,
			cargo_description = :cargo_description,
			scheduled_pickup = :scheduled_pickup,
			scheduled_delivery = :scheduled_delivery,
			actual_pickup = :actual_pickup,
			actual_delivery = :actual_delivery,
			updated_at = :updated_at
		WHERE organization_id = :organization_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, q, loadToRow(load))
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update load: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves loads matching the filter.
func (r *LoadRepo) List(ctx context.Context, filter storage.LoadFilter) ([]*domain.Load, error) {
	q := `SELECT * FROM loads WHERE 1=1`
	var args []any

	if filter.OrganizationID != "" {
		q += ` AND organization_id = ?`
		args = append(args, filter.OrganizationID)
	}
	if filter.DriverID != "" {
		q += ` AND driver_id = ?`
		args = append(args, filter.DriverID)
	}
	if filter.VehicleID != "" {
		q += ` AND vehicle_id = ?`
		args = append(args, filter.VehicleID)
	}
	if filter.ExcludeLoadID != "" {
		q += ` AND id <> ?`
		args = append(args, filter.ExcludeLoadID)
	}
	if len(filter.StatusIn) > 0 {
		statuses := make([]string, len(filter.StatusIn))
		for i, s := range filter.StatusIn {
			statuses[i] = string(s)
		}
		q += ` AND status IN (?)`
		args = append(args, statuses)
	}
	q += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build load query: %w", err)
	}
	q = r.db.Rebind(q)

	var rows []loadRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}

	loads := make([]*domain.Load, 0, len(rows))
	for _, row := range rows {
		loads = append(loads, row.toDomain())
	}
	return loads, nil
}

// Delete removes a load.
func (r *LoadRepo) Delete(ctx context.Context, orgID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM loads WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("failed to delete load: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// mapConstraintError translates the schema's unique constraints onto the
// storage sentinels. The partial unique indexes on active driver/vehicle
// assignments are the store-level exclusivity guarantee; the availability
// pre-check only narrows the race window.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "loads_org_reference_key":
		return storage.ErrDuplicateReference
	case "loads_one_active_per_driver", "loads_one_active_per_vehicle":
		return storage.ErrAssignmentConflict
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
