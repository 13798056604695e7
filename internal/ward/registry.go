package ward

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/registry"
)

const (
	EventRoomRegistered    = "ROOM_REGISTERED"
	EventCaregiverBound    = "CAREGIVER_BOUND"
	EventCaregiverHandover = "CAREGIVER_HANDOVER"
	EventCaregiverUnbound  = "CAREGIVER_UNBOUND"
	EventRoomCleaned       = "ROOM_CLEANED"
	EventPatientAssigned   = "PATIENT_ASSIGNED"
	EventPatientRemoved    = "PATIENT_REMOVED"
)

// Registry holds every room known to the hospital, keyed by room number.
// Rooms are never removed.
type Registry struct {
	rooms  *registry.Ordered[*Room]
	logger *zap.Logger
	events *audit.Recorder
}

func NewRegistry(logger *zap.Logger, events *audit.Recorder) *Registry {
	return &Registry{
		rooms:  registry.NewOrdered[*Room](),
		logger: logger,
		events: events,
	}
}

func (r *Registry) Register(ctx context.Context, room *Room) error {
	if err := r.rooms.Put(room.Number(), room); err != nil {
		if errors.Is(err, registry.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, room.Number())
		}
		return err
	}

	r.logger.Info("room registered",
		zap.String("room", room.Number()),
		zap.Int("capacity", room.Capacity()),
	)
	r.events.Emit(ctx, EventRoomRegistered, room.Number(), map[string]any{
		"capacity": room.Capacity(),
		"clean":    room.IsClean(),
	})

	return nil
}

// Find returns the room with the given number. A missing room is not an error.
func (r *Registry) Find(number string) (*Room, bool) {
	return r.rooms.Get(number)
}

// All returns the rooms in registration order.
func (r *Registry) All() []*Room {
	return r.rooms.Values()
}
