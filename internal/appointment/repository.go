package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrDuplicateKey        = errors.New("appointment id already exists")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all storage interactions needed by the registry.
// Implementations return copies; callers may mutate what they get back.
type Repository interface {
	Insert(ctx context.Context, a *Appointment) error
	GetAppointmentByID(ctx context.Context, id string) (*Appointment, error)

	// Persists Status and Attended.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// List returns every appointment in insertion order.
	List(ctx context.Context) ([]*Appointment, error)

	// For conflict checks
	ListByProvider(ctx context.Context, provider string) ([]*Appointment, error)
}

// MemoryRepository keeps appointments in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Appointment
	order []string
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]*Appointment),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[a.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, a.ID)
	}

	now := r.now()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.items[a.ID] = a.Clone()
	r.order = append(r.order, a.ID)
	return nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[a.ID]
	if !ok {
		return ErrAppointmentNotFound
	}

	a.UpdatedAt = r.now()
	stored.Status = a.Status
	stored.Attended = a.Attended
	stored.UpdatedAt = a.UpdatedAt
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *MemoryRepository) ListByProvider(_ context.Context, provider string) ([]*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Appointment
	for _, id := range r.order {
		if a := r.items[id]; a.Provider == provider {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}
