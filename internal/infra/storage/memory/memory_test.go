package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
)

func TestLoadRepo_DuplicateReference(t *testing.T) {
	repo := NewLoadRepo(NewMemoryStorage())
	ctx := context.Background()

	first := &domain.Load{ID: "l1", Reference: "LD-0001", OrganizationID: "org-1"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := &domain.Load{ID: "l2", Reference: "LD-0001", OrganizationID: "org-1"}
	if err := repo.Create(ctx, dup); !errors.Is(err, storage.ErrDuplicateReference) {
		t.Errorf("expected ErrDuplicateReference, got %v", err)
	}

	// Same reference in a different org is fine
	other := &domain.Load{ID: "l3", Reference: "LD-0001", OrganizationID: "org-2"}
	if err := repo.Create(ctx, other); err != nil {
		t.Errorf("cross-org reference should not collide: %v", err)
	}
}

func TestLoadRepo_OrgScoping(t *testing.T) {
	repo := NewLoadRepo(NewMemoryStorage())
	ctx := context.Background()

	load := &domain.Load{ID: "l1", Reference: "LD-0001", OrganizationID: "org-1"}
	if err := repo.Create(ctx, load); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := repo.GetByID(ctx, "org-2", "l1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong org, got %v", err)
	}
	if err := repo.Delete(ctx, "org-2", "l1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting in wrong org, got %v", err)
	}
}

func TestLoadRepo_ListFilters(t *testing.T) {
	store := NewMemoryStorage()
	repo := NewLoadRepo(store)
	ctx := context.Background()

	seed := []*domain.Load{
		{ID: "l1", Reference: "LD-0001", OrganizationID: "org-1", Status: domain.LoadStatusInTransit, DriverID: "d1"},
		{ID: "l2", Reference: "LD-0002", OrganizationID: "org-1", Status: domain.LoadStatusDraft, DriverID: "d1"},
		{ID: "l3", Reference: "LD-0003", OrganizationID: "org-1", Status: domain.LoadStatusAssigned, DriverID: "d2"},
	}
	for _, l := range seed {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create %s failed: %v", l.ID, err)
		}
	}

	got, err := repo.List(ctx, storage.LoadFilter{
		OrganizationID: "org-1",
		DriverID:       "d1",
		StatusIn:       domain.InProgressStatuses,
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "l1" {
		t.Errorf("expected only l1 (in-progress, d1), got %d results", len(got))
	}

	got, err = repo.List(ctx, storage.LoadFilter{
		OrganizationID: "org-1",
		DriverID:       "d1",
		StatusIn:       domain.InProgressStatuses,
		ExcludeLoadID:  "l1",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected exclusion of l1, got %d results", len(got))
	}
}

func TestLoadRepo_CopiesOnReadAndWrite(t *testing.T) {
	repo := NewLoadRepo(NewMemoryStorage())
	ctx := context.Background()

	load := &domain.Load{ID: "l1", Reference: "LD-0001", OrganizationID: "org-1", Status: domain.LoadStatusDraft}
	if err := repo.Create(ctx, load); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mutating the caller's struct must not affect the stored copy
	load.Status = domain.LoadStatusCancelled

	got, err := repo.GetByID(ctx, "org-1", "l1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.LoadStatusDraft {
		t.Errorf("stored load mutated through caller reference: %s", got.Status)
	}
}
