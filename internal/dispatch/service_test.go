package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/infra/storage/memory"
	"github.com/loadline/dispatch/internal/recovery"
	"github.com/loadline/dispatch/internal/validation"
)

const testOrg = "org-1"

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// =============================================================================
// Test fixtures
// =============================================================================

type captureEmitter struct {
	mu     sync.Mutex
	events []*domain.Event
}

func (e *captureEmitter) Emit(ctx context.Context, event *domain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *captureEmitter) Close() error { return nil }

func (e *captureEmitter) byType(t domain.EventType) []*domain.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*domain.Event
	for _, ev := range e.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// flakyLoadRepo fails Update a configured number of times before delegating.
type flakyLoadRepo struct {
	storage.LoadRepository
	mu       sync.Mutex
	failures int
}

func (r *flakyLoadRepo) Update(ctx context.Context, load *domain.Load) error {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return errors.New("connection refused")
	}
	r.mu.Unlock()
	return r.LoadRepository.Update(ctx, load)
}

func newTestService(t *testing.T) (*Service, storage.Store, *captureEmitter) {
	t.Helper()

	store := memory.NewMemoryStorage().Store()
	ctx := context.Background()

	if err := store.Drivers.Create(ctx, &domain.Driver{
		ID: "drv-1", OrganizationID: testOrg, Status: domain.DriverStatusActive,
		LicenseExpiration:     fixedNow.AddDate(1, 0, 0),
		MedicalCardExpiration: fixedNow.AddDate(1, 0, 0),
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Vehicles.Create(ctx, &domain.Vehicle{
		ID: "veh-1", OrganizationID: testOrg, Status: domain.VehicleStatusActive,
		Type: "dry_van", MaxWeightLbs: 44000,
		NextInspectionDue: fixedNow.AddDate(1, 0, 0),
	}); err != nil {
		t.Fatal(err)
	}

	checker := validation.NewChecker(store).WithClock(func() time.Time { return fixedNow })
	validator := validation.NewLoadValidator(store, checker)
	executor := newFastExecutor()
	emitter := &captureEmitter{}

	svc := NewService(store, validator, executor, emitter, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store, emitter
}

func newFastExecutor() *recovery.Executor {
	return recovery.NewExecutor(recovery.NewClassifier(recovery.NewLog(20)), nil).
		WithPolicy(3, time.Millisecond, 10*time.Millisecond)
}

// =============================================================================
// Tests
// =============================================================================

func TestCreateLoad(t *testing.T) {
	svc, _, _ := newTestService(t)

	res := svc.CreateLoad(context.Background(), testOrg, CreateLoadInput{
		Cargo:             domain.Cargo{WeightLbs: 30000, EquipmentType: "dry_van"},
		ScheduledPickup:   fixedNow.Add(24 * time.Hour),
		ScheduledDelivery: fixedNow.Add(72 * time.Hour),
	})
	if !res.OK() {
		t.Fatalf("expected success, got validation=%v err=%v", res.Validation.Errors, res.Err)
	}
	if res.Load.Status != domain.LoadStatusPending {
		t.Errorf("new loads start pending, got %s", res.Load.Status)
	}
	if !strings.HasPrefix(res.Load.Reference, "LD-") {
		t.Errorf("generated reference should carry the LD- prefix, got %q", res.Load.Reference)
	}
}

func TestCreateLoad_DuplicateReference(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := CreateLoadInput{
		Reference:         "LD-DUP",
		ScheduledPickup:   fixedNow.Add(24 * time.Hour),
		ScheduledDelivery: fixedNow.Add(72 * time.Hour),
	}
	if res := svc.CreateLoad(ctx, testOrg, in); !res.OK() {
		t.Fatalf("first create failed: %+v", res)
	}

	res := svc.CreateLoad(ctx, testOrg, in)
	if res.OK() {
		t.Fatal("duplicate reference should fail")
	}
	if res.Err == nil || res.Err.Code != domain.ErrCodeDuplicateReference {
		t.Fatalf("expected DUPLICATE_REFERENCE, got %+v", res.Err)
	}
	if res.Actions[0].Kind != recovery.ActionKindNewReference {
		t.Errorf("expected new-reference recovery action, got %s", res.Actions[0].Kind)
	}
}

func TestCreateLoad_InvalidSchedule(t *testing.T) {
	svc, _, _ := newTestService(t)

	res := svc.CreateLoad(context.Background(), testOrg, CreateLoadInput{
		ScheduledPickup:   fixedNow.Add(72 * time.Hour),
		ScheduledDelivery: fixedNow.Add(24 * time.Hour),
	})
	if res.OK() {
		t.Fatal("inverted schedule should be blocked")
	}
	if res.Err != nil {
		t.Error("rule failures must come back as validation data, not classified errors")
	}
}

func TestAssignThenProgress(t *testing.T) {
	svc, _, emitter := newTestService(t)
	ctx := context.Background()

	created := svc.CreateLoad(ctx, testOrg, CreateLoadInput{
		ScheduledPickup:   fixedNow.Add(24 * time.Hour),
		ScheduledDelivery: fixedNow.Add(72 * time.Hour),
	})
	if !created.OK() {
		t.Fatal(created.Validation.Errors)
	}
	loadID := created.Load.ID

	// pending -> assigned without a driver is blocked.
	res := svc.UpdateStatus(ctx, testOrg, loadID, domain.LoadStatusAssigned)
	if res.OK() {
		t.Fatal("assigning without resources should fail validation")
	}

	if res = svc.AssignDriver(ctx, testOrg, loadID, "drv-1"); !res.OK() {
		t.Fatalf("assign driver: %v", res.Validation.Errors)
	}
	if res = svc.AssignVehicle(ctx, testOrg, loadID, "veh-1"); !res.OK() {
		t.Fatalf("assign vehicle: %v", res.Validation.Errors)
	}

	if res = svc.UpdateStatus(ctx, testOrg, loadID, domain.LoadStatusAssigned); !res.OK() {
		t.Fatalf("update status: validation=%v err=%v", res.Validation.Errors, res.Err)
	}
	if res.Load.Status != domain.LoadStatusAssigned {
		t.Errorf("status not updated, got %s", res.Load.Status)
	}

	if got := emitter.byType(domain.EventLoadStatusChanged); len(got) != 1 {
		t.Errorf("expected 1 status-changed event, got %d", len(got))
	}
	if got := emitter.byType(domain.EventLoadAssigned); len(got) != 2 {
		t.Errorf("expected 2 assigned events, got %d", len(got))
	}
}

func TestAssignDriver_Conflict(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// drv-1 is already hauling another in-progress load.
	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "other", Reference: "LD-OTHER", OrganizationID: testOrg,
		Status: domain.LoadStatusInTransit, DriverID: "drv-1", VehicleID: "veh-1",
	}); err != nil {
		t.Fatal(err)
	}

	created := svc.CreateLoad(ctx, testOrg, CreateLoadInput{})
	if !created.OK() {
		t.Fatal(created.Validation.Errors)
	}

	res := svc.AssignDriver(ctx, testOrg, created.Load.ID, "drv-1")
	if res.OK() {
		t.Fatal("double-booking should fail")
	}
	if !strings.Contains(strings.Join(res.Validation.Errors, " "), "LD-OTHER") {
		t.Errorf("conflict should name the other load, got %v", res.Validation.Errors)
	}
}

func TestUpdateStatus_PicksUpTimestamps(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	load := &domain.Load{
		ID: "load-ts", Reference: "LD-TS", OrganizationID: testOrg,
		Status: domain.LoadStatusAtPickup, DriverID: "drv-1", VehicleID: "veh-1",
	}
	if err := store.Loads.Create(ctx, load); err != nil {
		t.Fatal(err)
	}

	res := svc.UpdateStatus(ctx, testOrg, "load-ts", domain.LoadStatusPickedUp)
	if !res.OK() {
		t.Fatalf("validation=%v err=%v", res.Validation.Errors, res.Err)
	}
	if res.Load.ActualPickup == nil || !res.Load.ActualPickup.Equal(fixedNow) {
		t.Error("picked_up should stamp the actual pickup time")
	}
}

func TestUpdateStatus_RetriesTransientWriteFailure(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "load-fl", Reference: "LD-FL", OrganizationID: testOrg,
		Status: domain.LoadStatusAtPickup, DriverID: "drv-1", VehicleID: "veh-1",
	}); err != nil {
		t.Fatal(err)
	}

	// One transient failure, then success: the executor's single retry
	// rescues the write.
	svc.store.Loads = &flakyLoadRepo{LoadRepository: store.Loads, failures: 1}
	svc.validator = validation.NewLoadValidator(svc.store,
		validation.NewChecker(svc.store).WithClock(func() time.Time { return fixedNow }))

	res := svc.UpdateStatus(ctx, testOrg, "load-fl", domain.LoadStatusPickedUp)
	if !res.OK() {
		t.Fatalf("retry should have rescued the write: err=%+v", res.Err)
	}
}

func TestUpdateStatus_ExhaustedRetriesReportStatusSync(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "load-bad", Reference: "LD-BAD", OrganizationID: testOrg,
		Status: domain.LoadStatusAtPickup, DriverID: "drv-1", VehicleID: "veh-1",
	}); err != nil {
		t.Fatal(err)
	}

	svc.store.Loads = &flakyLoadRepo{LoadRepository: store.Loads, failures: 100}
	svc.validator = validation.NewLoadValidator(svc.store,
		validation.NewChecker(svc.store).WithClock(func() time.Time { return fixedNow }))

	res := svc.UpdateStatus(ctx, testOrg, "load-bad", domain.LoadStatusPickedUp)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Err.Code != domain.ErrCodeStatusSyncFailed {
		t.Errorf("tagged status write should classify as STATUS_SYNC_FAILED, got %s", res.Err.Code)
	}
	if len(res.Actions) == 0 || res.Actions[0].Kind != recovery.ActionKindRetry {
		t.Error("transient failure should lead with a retry action")
	}
}

func TestUpdateLocation(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "load-loc", Reference: "LD-LOC", OrganizationID: testOrg,
		Status: domain.LoadStatusInTransit, DriverID: "drv-1", VehicleID: "veh-1",
	}); err != nil {
		t.Fatal(err)
	}

	res := svc.UpdateLocation(ctx, testOrg, "load-loc", 41.88, -87.63)
	if !res.OK() {
		t.Fatalf("validation=%v err=%v", res.Validation.Errors, res.Err)
	}

	// Immutable loads reject location updates.
	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "load-done", Reference: "LD-DONE", OrganizationID: testOrg,
		Status: domain.LoadStatusPaid,
	}); err != nil {
		t.Fatal(err)
	}
	if res = svc.UpdateLocation(ctx, testOrg, "load-done", 0, 0); res.OK() {
		t.Fatal("paid load must reject location updates")
	}
}

func TestGetLoad_NotFound(t *testing.T) {
	svc, _, emitter := newTestService(t)

	res := svc.UpdateStatus(context.Background(), testOrg, "ghost", domain.LoadStatusAssigned)
	if res.OK() {
		t.Fatal("expected failure")
	}
	if res.Err.Code != domain.ErrCodeLoadNotFound {
		t.Errorf("expected LOAD_NOT_FOUND, got %s", res.Err.Code)
	}
	if got := emitter.byType(domain.EventDispatchError); len(got) != 1 {
		t.Errorf("classified failure should publish a dispatch.error event, got %d", len(got))
	}
}

func TestDeleteDraft(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "draft-1", Reference: "LD-D1", OrganizationID: testOrg,
		Status: domain.LoadStatusDraft,
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Loads.Create(ctx, &domain.Load{
		ID: "pend-1", Reference: "LD-P1", OrganizationID: testOrg,
		Status: domain.LoadStatusPending,
	}); err != nil {
		t.Fatal(err)
	}

	if res := svc.DeleteDraft(ctx, testOrg, "draft-1"); !res.OK() {
		t.Fatalf("draft delete failed: %+v", res)
	}
	if res := svc.DeleteDraft(ctx, testOrg, "pend-1"); res.OK() {
		t.Fatal("non-draft loads must never hard-delete")
	}
}
