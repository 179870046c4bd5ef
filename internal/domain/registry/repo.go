package registry

import (
	"context"
	"sync"
)

// PatientRepository persists patients. List must return patients in
// insertion order; the duplicate matcher relies on it for candidate order.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)
	GetByHealthCard(ctx context.Context, healthCardID string) (*Patient, error)
	List(ctx context.Context) ([]*Patient, error)
}

type memPatientRepo struct {
	mu    sync.RWMutex
	byID  map[string]*Patient
	order []string
}

// NewMemoryPatientRepo returns the default in-process patient repository.
func NewMemoryPatientRepo() PatientRepository {
	return &memPatientRepo{byID: make(map[string]*Patient)}
}

func (r *memPatientRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return ErrAlreadyExists
	}
	cp := *p
	r.byID[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memPatientRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, notFound("patient", id)
	}
	cp := *p
	return &cp, nil
}

func (r *memPatientRepo) GetByNationalID(_ context.Context, nationalID string) (*Patient, error) {
	return r.find(func(p *Patient) bool { return p.NationalID == nationalID }, nationalID)
}

func (r *memPatientRepo) GetByHealthCard(_ context.Context, healthCardID string) (*Patient, error) {
	return r.find(func(p *Patient) bool { return p.HealthCardID == healthCardID }, healthCardID)
}

func (r *memPatientRepo) find(match func(*Patient) bool, key string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if p := r.byID[id]; match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("patient", key)
}

func (r *memPatientRepo) List(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Patient, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}
