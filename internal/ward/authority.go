package ward

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/people"
)

// Authority decides who may act on a room. Every room has at most one bound
// caregiver and only that caregiver may clean it or move patients in and out.
//
// Lock order is Authority, then Registry, then Room.
type Authority struct {
	mu       sync.Mutex
	rooms    *Registry
	bindings map[string]*people.Staff // room number -> caregiver
	logger   *zap.Logger
	events   *audit.Recorder
}

// Binding pairs a room with its caregiver. Caregiver is nil for unbound rooms.
type Binding struct {
	Room      RoomSnapshot
	Caregiver *people.Staff
}

func NewAuthority(rooms *Registry, logger *zap.Logger, events *audit.Recorder) *Authority {
	return &Authority{
		rooms:    rooms,
		bindings: make(map[string]*people.Staff),
		logger:   logger,
		events:   events,
	}
}

// event is an audit entry collected under a.mu and emitted after it is
// released, so slow sinks never hold up other room actions.
type event struct {
	kind    string
	room    string
	payload map[string]any
}

func (a *Authority) emit(ctx context.Context, ev *event) {
	if ev != nil {
		a.events.Emit(ctx, ev.kind, ev.room, ev.payload)
	}
}

// Bind makes caregiver responsible for the room, replacing whoever held it.
func (a *Authority) Bind(ctx context.Context, number string, caregiver *people.Staff) error {
	ev, err := a.bind(number, caregiver)
	if err != nil {
		return err
	}
	a.emit(ctx, ev)
	return nil
}

func (a *Authority) bind(number string, caregiver *people.Staff) (*event, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.rooms.Find(number); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, number)
	}
	if caregiver == nil || caregiver.Role != people.RoleNurse {
		return nil, fmt.Errorf("%w: only nurses can hold room %s", ErrNotAuthorized, number)
	}

	previous, had := a.bindings[number]
	a.bindings[number] = caregiver

	if had && !previous.Is(caregiver) {
		a.logger.Warn("room handed over",
			zap.String("room", number),
			zap.String("from", previous.ID),
			zap.String("to", caregiver.ID),
		)
		return &event{EventCaregiverHandover, number, map[string]any{
			"from": previous.ID,
			"to":   caregiver.ID,
		}}, nil
	}

	a.logger.Info("room bound",
		zap.String("room", number),
		zap.String("caregiver", caregiver.ID),
	)
	return &event{EventCaregiverBound, number, map[string]any{
		"caregiver": caregiver.ID,
	}}, nil
}

// Unbind releases the room. Only the bound caregiver may release it.
func (a *Authority) Unbind(ctx context.Context, number string, caregiver *people.Staff) error {
	if err := a.unbind(number, caregiver); err != nil {
		return err
	}

	a.logger.Info("room unbound", zap.String("room", number), zap.String("caregiver", caregiver.ID))
	a.emit(ctx, &event{EventCaregiverUnbound, number, map[string]any{
		"caregiver": caregiver.ID,
	}})
	return nil
}

func (a *Authority) unbind(number string, caregiver *people.Staff) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.authorize(number, caregiver); err != nil {
		return err
	}
	delete(a.bindings, number)
	return nil
}

// CleanRoom cleans the room. It returns false if the room was already clean.
func (a *Authority) CleanRoom(ctx context.Context, number string, caregiver *people.Staff) (bool, error) {
	cleaned, err := a.cleanRoom(number, caregiver)
	if err != nil || !cleaned {
		return false, err
	}

	a.emit(ctx, &event{EventRoomCleaned, number, map[string]any{
		"caregiver": caregiver.ID,
	}})
	return true, nil
}

func (a *Authority) cleanRoom(number string, caregiver *people.Staff) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	room, err := a.authorize(number, caregiver)
	if err != nil {
		return false, err
	}

	if !room.Clean() {
		a.logger.Debug("room already clean", zap.String("room", number))
		return false, nil
	}
	return true, nil
}

// AssignPatient places the patient in a clean room and adds the patient to
// the caregiver's roster.
func (a *Authority) AssignPatient(ctx context.Context, patient people.Patient, number string, caregiver *people.Staff) error {
	occupants, err := a.assignPatient(patient, number, caregiver)
	if err != nil {
		return err
	}

	a.logger.Info("patient assigned",
		zap.String("room", number),
		zap.String("patient", patient.ID),
		zap.Int("occupants", len(occupants)),
	)
	a.emit(ctx, &event{EventPatientAssigned, number, map[string]any{
		"patient":   patient.ID,
		"caregiver": caregiver.ID,
	}})
	return nil
}

func (a *Authority) assignPatient(patient people.Patient, number string, caregiver *people.Staff) ([]people.Patient, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	room, err := a.authorize(number, caregiver)
	if err != nil {
		return nil, err
	}
	if !room.IsClean() {
		return nil, fmt.Errorf("%w: clean room %s before assigning patients", ErrRoomNotClean, number)
	}

	occupants, err := room.AddPatient(patient)
	if err != nil {
		return nil, err
	}
	caregiver.LinkPatient(patient)
	return occupants, nil
}

// RemovePatient takes the patient out of the room. It returns false when the
// patient was not in it.
func (a *Authority) RemovePatient(ctx context.Context, patient people.Patient, number string, caregiver *people.Staff) (bool, error) {
	removed, err := a.removePatient(patient, number, caregiver)
	if err != nil || !removed {
		return false, err
	}

	a.emit(ctx, &event{EventPatientRemoved, number, map[string]any{
		"patient":   patient.ID,
		"caregiver": caregiver.ID,
	}})
	return true, nil
}

func (a *Authority) removePatient(patient people.Patient, number string, caregiver *people.Staff) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	room, err := a.authorize(number, caregiver)
	if err != nil {
		return false, err
	}

	if !room.RemovePatient(patient) {
		a.logger.Debug("patient not in room", zap.String("room", number), zap.String("patient", patient.ID))
		return false, nil
	}
	return true, nil
}

// RoomsFor returns the rooms bound to caregiver, in registration order.
func (a *Authority) RoomsFor(caregiver *people.Staff) []*Room {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []*Room
	for _, room := range a.rooms.All() {
		if bound, ok := a.bindings[room.Number()]; ok && bound.Is(caregiver) {
			out = append(out, room)
		}
	}
	return out
}

// CaregiverOf returns the caregiver bound to the room, if any.
func (a *Authority) CaregiverOf(number string) (*people.Staff, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.bindings[number]
	return s, ok
}

func (a *Authority) Bindings() []Binding {
	a.mu.Lock()
	defer a.mu.Unlock()

	rooms := a.rooms.All()
	out := make([]Binding, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, Binding{
			Room:      room.Snapshot(),
			Caregiver: a.bindings[room.Number()],
		})
	}
	return out
}

// DescribeAll renders every room with its caregiver, one per line.
func (a *Authority) DescribeAll() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	rooms := a.rooms.All()
	if len(rooms) == 0 {
		return "no rooms registered"
	}

	var b strings.Builder
	b.WriteString("Rooms:")
	for _, room := range rooms {
		caregiver := "none"
		if s, ok := a.bindings[room.Number()]; ok {
			caregiver = s.FullName()
		}
		fmt.Fprintf(&b, "\n%s - caregiver: %s", room.Info(), caregiver)
	}
	return b.String()
}

// caller holds a.mu
func (a *Authority) authorize(number string, caregiver *people.Staff) (*Room, error) {
	room, ok := a.rooms.Find(number)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, number)
	}

	bound, ok := a.bindings[number]
	if !ok || !bound.Is(caregiver) {
		id := "<nil>"
		if caregiver != nil {
			id = caregiver.ID
		}
		return nil, fmt.Errorf("%w: room %s, caregiver %s", ErrNotAuthorized, number, id)
	}

	return room, nil
}
