// Package memory provides in-memory repository implementations used in dev
// mode and tests.
package memory

import (
	"context"
	"sync"

	"github.com/loadline/dispatch/internal/core/domain"
	"github.com/loadline/dispatch/internal/infra/storage"
)

type MemoryStorage struct {
	loads    map[string]*domain.Load
	drivers  map[string]*domain.Driver
	vehicles map[string]*domain.Vehicle
	mu       sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		loads:    make(map[string]*domain.Load),
		drivers:  make(map[string]*domain.Driver),
		vehicles: make(map[string]*domain.Vehicle),
	}
}

// Store returns the repository bundle backed by this storage.
func (s *MemoryStorage) Store() storage.Store {
	return storage.Store{
		Loads:    NewLoadRepo(s),
		Drivers:  NewDriverRepo(s),
		Vehicles: NewVehicleRepo(s),
	}
}

// -----------------------------------------------------------------------------
// Load Repository
// -----------------------------------------------------------------------------

type LoadRepo struct {
	store *MemoryStorage
}

func NewLoadRepo(store *MemoryStorage) *LoadRepo {
	return &LoadRepo{store: store}
}

func (r *LoadRepo) Create(ctx context.Context, load *domain.Load) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, l := range r.store.loads {
		if l.OrganizationID == load.OrganizationID && l.Reference == load.Reference {
			return storage.ErrDuplicateReference
		}
	}
	cp := *load
	r.store.loads[load.ID] = &cp
	return nil
}

func (r *LoadRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Load, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.loads[id]
	if !ok || l.OrganizationID != orgID {
		return nil, storage.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *LoadRepo) Update(ctx context.Context, load *domain.Load) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.loads[load.ID]
	if !ok || existing.OrganizationID != load.OrganizationID {
		return storage.ErrNotFound
	}
	cp := *load
	r.store.loads[load.ID] = &cp
	return nil
}

func (r *LoadRepo) List(ctx context.Context, filter storage.LoadFilter) ([]*domain.Load, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.Load
	for _, l := range r.store.loads {
		if filter.OrganizationID != "" && l.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.DriverID != "" && l.DriverID != filter.DriverID {
			continue
		}
		if filter.VehicleID != "" && l.VehicleID != filter.VehicleID {
			continue
		}
		if filter.ExcludeLoadID != "" && l.ID == filter.ExcludeLoadID {
			continue
		}
		if len(filter.StatusIn) > 0 {
			match := false
			for _, s := range filter.StatusIn {
				if l.Status == s {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		cp := *l
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *LoadRepo) Delete(ctx context.Context, orgID, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.loads[id]
	if !ok || l.OrganizationID != orgID {
		return storage.ErrNotFound
	}
	delete(r.store.loads, id)
	return nil
}

// -----------------------------------------------------------------------------
// Driver Repository
// -----------------------------------------------------------------------------

type DriverRepo struct {
	store *MemoryStorage
}

func NewDriverRepo(store *MemoryStorage) *DriverRepo {
	return &DriverRepo{store: store}
}

func (r *DriverRepo) Create(ctx context.Context, driver *domain.Driver) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *driver
	r.store.drivers[driver.ID] = &cp
	return nil
}

func (r *DriverRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Driver, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	d, ok := r.store.drivers[id]
	if !ok || d.OrganizationID != orgID {
		return nil, storage.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *DriverRepo) Update(ctx context.Context, driver *domain.Driver) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.drivers[driver.ID]
	if !ok || existing.OrganizationID != driver.OrganizationID {
		return storage.ErrNotFound
	}
	cp := *driver
	r.store.drivers[driver.ID] = &cp
	return nil
}

func (r *DriverRepo) List(ctx context.Context, orgID string) ([]*domain.Driver, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Driver
	for _, d := range r.store.drivers {
		if d.OrganizationID == orgID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Vehicle Repository
// -----------------------------------------------------------------------------

type VehicleRepo struct {
	store *MemoryStorage
}

func NewVehicleRepo(store *MemoryStorage) *VehicleRepo {
	return &VehicleRepo{store: store}
}

func (r *VehicleRepo) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *vehicle
	r.store.vehicles[vehicle.ID] = &cp
	return nil
}

func (r *VehicleRepo) GetByID(ctx context.Context, orgID, id string) (*domain.Vehicle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	v, ok := r.store.vehicles[id]
	if !ok || v.OrganizationID != orgID {
		return nil, storage.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *VehicleRepo) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	existing, ok := r.store.vehicles[vehicle.ID]
	if !ok || existing.OrganizationID != vehicle.OrganizationID {
		return storage.ErrNotFound
	}
	cp := *vehicle
	r.store.vehicles[vehicle.ID] = &cp
	return nil
}

func (r *VehicleRepo) List(ctx context.Context, orgID string) ([]*domain.Vehicle, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*domain.Vehicle
	for _, v := range r.store.vehicles {
		if v.OrganizationID == orgID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}
