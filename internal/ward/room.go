package ward

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hackgods/ward-scheduling/internal/people"
)

var (
	ErrDuplicateKey     = errors.New("room already registered")
	ErrUnknownRoom      = errors.New("room not registered")
	ErrNotAuthorized    = errors.New("caregiver is not assigned to this room")
	ErrRoomNotClean     = errors.New("room is not clean")
	ErrCapacityExceeded = errors.New("room is at capacity")
	ErrDuplicatePatient = errors.New("patient already in room")
	ErrInvalidRoom      = errors.New("invalid room")
)

// Room is a ward unit with a bounded number of occupants. The occupant list
// never grows past capacity; the history only ever grows.
type Room struct {
	number   string
	capacity int

	mu        sync.Mutex
	clean     bool
	occupants []people.Patient
	history   []people.Patient
}

// RoomSnapshot is a point-in-time copy of a room's state.
type RoomSnapshot struct {
	Number    string           `json:"number"`
	Capacity  int              `json:"capacity"`
	Clean     bool             `json:"clean"`
	Occupants []people.Patient `json:"occupants"`
	History   []people.Patient `json:"history"`
}

// NewRoom creates a dirty, empty room.
func NewRoom(number string, capacity int) (*Room, error) {
	if strings.TrimSpace(number) == "" {
		return nil, fmt.Errorf("%w: number is required", ErrInvalidRoom)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidRoom, capacity)
	}
	return &Room{number: number, capacity: capacity}, nil
}

func (r *Room) Number() string { return r.number }
func (r *Room) Capacity() int  { return r.capacity }

func (r *Room) IsClean() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clean
}

// Clean marks the room clean. It returns false if the room was already clean.
func (r *Room) Clean() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clean {
		return false
	}
	r.clean = true
	return true
}

// AddPatient places p in the room and returns the resulting occupant list.
// Cleanliness is not checked here; see Authority.AssignPatient.
func (r *Room) AddPatient(p people.Patient) ([]people.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.occupants) >= r.capacity {
		return nil, fmt.Errorf("%w: room %s holds %d", ErrCapacityExceeded, r.number, r.capacity)
	}
	if r.indexOf(p) >= 0 {
		return nil, fmt.Errorf("%w: %s in room %s", ErrDuplicatePatient, p.Name, r.number)
	}

	r.occupants = append(r.occupants, p)
	r.history = append(r.history, p)
	return clonePatients(r.occupants), nil
}

// RemovePatient takes p out of the room. It returns false if p was not there.
func (r *Room) RemovePatient(p people.Patient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(p)
	if i < 0 {
		return false
	}
	r.occupants = append(r.occupants[:i], r.occupants[i+1:]...)
	return true
}

func (r *Room) OccupantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.occupants)
}

func (r *Room) Occupants() []people.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clonePatients(r.occupants)
}

func (r *Room) History() []people.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clonePatients(r.history)
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomSnapshot{
		Number:    r.number,
		Capacity:  r.capacity,
		Clean:     r.clean,
		Occupants: clonePatients(r.occupants),
		History:   clonePatients(r.history),
	}
}

// Info is the one-line operator description of the room.
func (r *Room) Info() string {
	s := r.Snapshot()

	names := make([]string, 0, len(s.Occupants))
	for _, p := range s.Occupants {
		names = append(names, p.Name)
	}

	return fmt.Sprintf("Room %s - clean: %t - capacity: %d - occupants: [%s] - count: %d",
		s.Number, s.Clean, s.Capacity, strings.Join(names, ", "), len(s.Occupants))
}

// caller holds r.mu
func (r *Room) indexOf(p people.Patient) int {
	for i, existing := range r.occupants {
		if existing.ID == p.ID {
			return i
		}
	}
	return -1
}

func clonePatients(in []people.Patient) []people.Patient {
	out := make([]people.Patient, len(in))
	copy(out, in)
	return out
}
