// Package dispatch implements the load action handlers: every mutation runs
// the rules engine first and only then writes through the store, wrapped by
// the recovery executor.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/metrics"
	"github.com/loadline/dispatch/internal/recovery"
	"github.com/loadline/dispatch/internal/validation"
)

// Result is the uniform outcome of a dispatch operation. Exactly one of the
// failure channels is populated: Validation carries rule failures (the write
// was never attempted), Err carries a classified mutation failure.
type Result struct {
	Load       *domain.Load
	Validation domain.RuleResult
	Err        *domain.DispatchError
	Actions    []recovery.Action
}

// OK reports whether the operation fully succeeded.
func (r Result) OK() bool {
	return r.Validation.Valid && r.Err == nil
}

// Service wires the validators, the store, the recovery executor and the
// event emitter into the operations action handlers call.
type Service struct {
	store     storage.Store
	validator *validation.LoadValidator
	executor  *recovery.Executor
	emitter   Emitter
	locations LocationCache
	log       *slog.Logger
	now       func() time.Time
}

// NewService creates a dispatch service. emitter and locations may be nil;
// no-op implementations are substituted.
func NewService(
	store storage.Store,
	validator *validation.LoadValidator,
	executor *recovery.Executor,
	emitter Emitter,
	locations LocationCache,
	log *slog.Logger,
) *Service {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	if locations == nil {
		locations = NoopLocationCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:     store,
		validator: validator,
		executor:  executor,
		emitter:   emitter,
		locations: locations,
		log:       log,
		now:       time.Now,
	}
}

// CreateLoadInput describes a new load booked by a dispatch action.
type CreateLoadInput struct {
	Reference         string // optional; generated when empty
	Cargo             domain.Cargo
	ScheduledPickup   time.Time
	ScheduledDelivery time.Time
}

// NewReference generates a human-facing load reference.
func NewReference() string {
	return "LD-" + strings.ToUpper(uuid.NewString()[:8])
}

// CreateLoad books a new load in pending status.
func (s *Service) CreateLoad(ctx context.Context, orgID string, in CreateLoadInput) Result {
	ref := in.Reference
	if ref == "" {
		ref = NewReference()
	}
	now := s.now()
	load := &domain.Load{
		ID:                uuid.NewString(),
		Reference:         ref,
		OrganizationID:    orgID,
		Status:            domain.LoadStatusPending,
		Cargo:             in.Cargo,
		ScheduledPickup:   in.ScheduledPickup,
		ScheduledDelivery: in.ScheduledDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// A fresh load has no id in the store yet; validate the snapshot
	// without conflict detection.
	snapshot := *load
	snapshot.ID = ""
	if result := s.validator.ValidateLoad(ctx, &snapshot, ""); !result.Valid {
		return Result{Validation: result}
	}

	outcome := s.executor.Execute(ctx, func(ctx context.Context) (any, error) {
		if err := s.store.Loads.Create(ctx, load); err != nil {
			return nil, fmt.Errorf("creating load %s: %w", load.Reference, err)
		}
		return load, nil
	}, "create_load", "create-load:"+load.Reference)
	if !outcome.Success {
		return Result{Validation: domain.OK(), Err: outcome.Err, Actions: outcome.Actions}
	}

	s.log.Info("load created", "load", load.Reference, "org", orgID)
	return Result{Load: load, Validation: domain.OK()}
}

// AssignDriver attaches a driver to the load after availability and
// compliance checks.
func (s *Service) AssignDriver(ctx context.Context, orgID, loadID, driverID string) Result {
	return s.assign(ctx, orgID, loadID, func(load *domain.Load) {
		load.DriverID = driverID
	}, "assign_driver")
}

// AssignVehicle attaches a vehicle to the load after availability,
// inspection and compatibility checks.
func (s *Service) AssignVehicle(ctx context.Context, orgID, loadID, vehicleID string) Result {
	return s.assign(ctx, orgID, loadID, func(load *domain.Load) {
		load.VehicleID = vehicleID
	}, "assign_vehicle")
}

func (s *Service) assign(
	ctx context.Context,
	orgID, loadID string,
	mutate func(*domain.Load),
	name string,
) Result {
	load, derr := s.getLoad(ctx, orgID, loadID)
	if derr != nil {
		return Result{Validation: domain.OK(), Err: derr, Actions: recovery.ActionsFor(derr, nil)}
	}

	mutate(load)
	if result := s.validator.ValidateLoad(ctx, load, ""); !result.Valid {
		return Result{Validation: result}
	}

	load.UpdatedAt = s.now()
	outcome := s.executor.Execute(ctx, func(ctx context.Context) (any, error) {
		if err := s.store.Loads.Update(ctx, load); err != nil {
			return nil, fmt.Errorf("updating load %s: %w", load.Reference, err)
		}
		return load, nil
	}, name, name+":"+loadID)
	if !outcome.Success {
		return Result{Validation: domain.OK(), Err: outcome.Err, Actions: outcome.Actions}
	}

	s.publish(ctx, &domain.Event{
		Type:           domain.EventLoadAssigned,
		OrganizationID: orgID,
		LoadID:         load.ID,
		LoadReference:  load.Reference,
		DriverID:       load.DriverID,
		VehicleID:      load.VehicleID,
		OccurredAt:     s.now(),
	})
	return Result{Load: load, Validation: domain.OK()}
}

// UpdateStatus moves the load along the lifecycle graph, stamping actual
// pickup/delivery times on the corresponding transitions.
func (s *Service) UpdateStatus(ctx context.Context, orgID, loadID string, newStatus domain.LoadStatus) Result {
	load, derr := s.getLoad(ctx, orgID, loadID)
	if derr != nil {
		return Result{Validation: domain.OK(), Err: derr, Actions: recovery.ActionsFor(derr, nil)}
	}

	result := s.validator.ValidateLoad(ctx, load, newStatus)
	if !result.Valid {
		return Result{Validation: result}
	}

	from := load.Status
	now := s.now()
	load.Status = newStatus
	load.UpdatedAt = now
	switch newStatus {
	case domain.LoadStatusPickedUp:
		load.ActualPickup = &now
	case domain.LoadStatusDelivered:
		load.ActualDelivery = &now
	}

	outcome := s.executor.Execute(ctx, func(ctx context.Context) (any, error) {
		if err := s.store.Loads.Update(ctx, load); err != nil {
			return nil, recovery.WithCode(domain.ErrCodeStatusSyncFailed,
				fmt.Errorf("syncing status of load %s: %w", load.Reference, err))
		}
		return load, nil
	}, "update_status", "update-status:"+loadID)
	if !outcome.Success {
		return Result{Validation: result, Err: outcome.Err, Actions: outcome.Actions}
	}

	s.log.Info("load status changed",
		"load", load.Reference, "from", from, "to", newStatus)
	s.publish(ctx, &domain.Event{
		Type:           domain.EventLoadStatusChanged,
		OrganizationID: orgID,
		LoadID:         load.ID,
		LoadReference:  load.Reference,
		FromStatus:     from,
		ToStatus:       newStatus,
		OccurredAt:     now,
	})
	return Result{Load: load, Validation: result}
}

// UpdateLocation records the load's latest position in the location cache.
// Immutable loads reject location updates like any other modification.
func (s *Service) UpdateLocation(ctx context.Context, orgID, loadID string, lat, lng float64) Result {
	load, derr := s.getLoad(ctx, orgID, loadID)
	if derr != nil {
		return Result{Validation: domain.OK(), Err: derr, Actions: recovery.ActionsFor(derr, nil)}
	}

	if result := s.validator.ValidateLoad(ctx, load, ""); !result.Valid {
		return Result{Validation: result}
	}

	outcome := s.executor.Execute(ctx, func(ctx context.Context) (any, error) {
		if err := s.locations.SetLocation(ctx, orgID, loadID, lat, lng); err != nil {
			return nil, recovery.WithCode(domain.ErrCodeLocationUpdateFailed,
				fmt.Errorf("location update for load %s: %w", load.Reference, err))
		}
		return nil, nil
	}, "update_location", "update-location:"+loadID)
	if !outcome.Success {
		return Result{Validation: domain.OK(), Err: outcome.Err, Actions: outcome.Actions}
	}

	return Result{Load: load, Validation: domain.OK()}
}

// DeleteDraft hard-deletes a load that never left draft. Anything past
// draft survives as soft states only.
func (s *Service) DeleteDraft(ctx context.Context, orgID, loadID string) Result {
	load, derr := s.getLoad(ctx, orgID, loadID)
	if derr != nil {
		return Result{Validation: domain.OK(), Err: derr, Actions: recovery.ActionsFor(derr, nil)}
	}
	if load.Status != domain.LoadStatusDraft {
		return Result{Validation: domain.Fail("only draft loads can be deleted")}
	}

	outcome := s.executor.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, s.store.Loads.Delete(ctx, orgID, loadID)
	}, "delete_draft", "delete-draft:"+loadID)
	if !outcome.Success {
		return Result{Validation: domain.OK(), Err: outcome.Err, Actions: outcome.Actions}
	}
	return Result{Validation: domain.OK()}
}

// Validator exposes the underlying orchestrator for callers that only need
// a pre-check.
func (s *Service) Validator() *validation.LoadValidator {
	return s.validator
}

func (s *Service) getLoad(ctx context.Context, orgID, loadID string) (*domain.Load, *domain.DispatchError) {
	load, err := s.store.Loads.GetByID(ctx, orgID, loadID)
	if err != nil {
		derr := s.executor.Classifier().Classify(fmt.Errorf("getting load %s: %w", loadID, err))
		s.publishError(ctx, orgID, loadID, derr)
		return nil, derr
	}
	return load, nil
}

func (s *Service) publish(ctx context.Context, event *domain.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		// Event delivery is best-effort; the mutation already committed.
		s.log.Warn("failed to publish event", "type", event.Type, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
}

func (s *Service) publishError(ctx context.Context, orgID, loadID string, derr *domain.DispatchError) {
	s.publish(ctx, &domain.Event{
		Type:           domain.EventDispatchError,
		OrganizationID: orgID,
		LoadID:         loadID,
		ErrorCode:      derr.Code,
		Message:        derr.Message,
		OccurredAt:     derr.Timestamp,
	})
}
