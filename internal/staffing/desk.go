package staffing

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/people"
)

const (
	EventDoctorAvailability = "DOCTOR_AVAILABILITY_CHANGED"
	EventDoctorAssigned     = "DOCTOR_ASSIGNED"
)

var (
	ErrNotDoctor          = errors.New("staff member is not a doctor")
	ErrNoDoctorAvailable  = errors.New("no doctor available")
	ErrInvalidPatient     = errors.New("invalid patient")
	ErrAssignmentNotFound = errors.New("patient has no assigned doctor")
)

// Assignment links a patient to the doctor in charge.
type Assignment struct {
	Patient people.Patient
	Doctor  *people.Staff
}

// Desk hands patients out to available doctors. A patient keeps the first
// doctor it was given; assigning again returns the same doctor.
//
// Lock order is Desk, then Staff.
type Desk struct {
	mu          sync.Mutex
	staff       *people.Directory
	assignments map[string]*people.Staff // patient id -> doctor
	order       []people.Patient
	pick        func(n int) int
	logger      *zap.Logger
	events      *audit.Recorder
}

func NewDesk(staff *people.Directory, logger *zap.Logger, events *audit.Recorder) *Desk {
	return &Desk{
		staff:       staff,
		assignments: make(map[string]*people.Staff),
		pick:        rand.IntN,
		logger:      logger,
		events:      events,
	}
}

// SetAvailability marks a doctor as able or unable to take new patients.
// Patients already assigned stay with the doctor.
func (d *Desk) SetAvailability(ctx context.Context, doctorID string, available bool) (*people.Staff, error) {
	doctor, err := d.doctor(doctorID)
	if err != nil {
		return nil, err
	}

	if was := doctor.SetAvailable(available); was == available {
		return doctor, nil
	}

	d.logger.Info("doctor availability changed",
		zap.String("doctor", doctor.ID),
		zap.Bool("available", available),
	)
	d.events.Emit(ctx, EventDoctorAvailability, doctor.ID, map[string]any{
		"available": available,
	})
	return doctor, nil
}

// AvailableDoctors returns the doctors taking patients, in directory order.
func (d *Desk) AvailableDoctors() []*people.Staff {
	var out []*people.Staff
	for _, s := range d.staff.All() {
		if s.Role == people.RoleDoctor && s.Available() {
			out = append(out, s)
		}
	}
	return out
}

// Assign gives the patient a doctor picked at random among the available
// ones and adds the patient to that doctor's roster.
func (d *Desk) Assign(ctx context.Context, patient people.Patient) (*people.Staff, error) {
	if strings.TrimSpace(patient.ID) == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidPatient)
	}

	doctor, fresh, err := d.assign(patient)
	if err != nil {
		return nil, err
	}
	if !fresh {
		return doctor, nil
	}

	d.logger.Info("doctor assigned",
		zap.String("patient", patient.ID),
		zap.String("doctor", doctor.ID),
	)
	d.events.Emit(ctx, EventDoctorAssigned, doctor.ID, map[string]any{
		"patient": patient.ID,
	})
	return doctor, nil
}

func (d *Desk) assign(patient people.Patient) (*people.Staff, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if doctor, ok := d.assignments[patient.ID]; ok {
		return doctor, false, nil
	}

	available := d.AvailableDoctors()
	if len(available) == 0 {
		d.logger.Warn("no doctor available", zap.String("patient", patient.ID))
		return nil, false, fmt.Errorf("%w for patient %s", ErrNoDoctorAvailable, patient.ID)
	}

	doctor := available[d.pick(len(available))]
	d.assignments[patient.ID] = doctor
	d.order = append(d.order, patient)
	doctor.LinkPatient(patient)
	return doctor, true, nil
}

// AssignmentOf returns the patient's assignment.
func (d *Desk) AssignmentOf(patientID string) (Assignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doctor, ok := d.assignments[patientID]
	if !ok {
		return Assignment{}, fmt.Errorf("%w: %s", ErrAssignmentNotFound, patientID)
	}
	for _, p := range d.order {
		if p.ID == patientID {
			return Assignment{Patient: p, Doctor: doctor}, nil
		}
	}
	return Assignment{Patient: people.Patient{ID: patientID}, Doctor: doctor}, nil
}

// Assignments returns every assignment in the order it was made.
func (d *Desk) Assignments() []Assignment {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Assignment, 0, len(d.order))
	for _, p := range d.order {
		out = append(out, Assignment{Patient: p, Doctor: d.assignments[p.ID]})
	}
	return out
}

// Describe renders one "patient -> doctor" line per assignment.
func (d *Desk) Describe() string {
	list := d.Assignments()
	if len(list) == 0 {
		return "no assignments"
	}

	var b strings.Builder
	b.WriteString("Assignments:")
	for _, a := range list {
		fmt.Fprintf(&b, "\n%s (%s) -> %s (%s)", a.Patient.Name, a.Patient.ID, a.Doctor.FullName(), a.Doctor.ID)
	}
	return b.String()
}

func (d *Desk) doctor(id string) (*people.Staff, error) {
	s, err := d.staff.Get(id)
	if err != nil {
		return nil, err
	}
	if s.Role != people.RoleDoctor {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotDoctor, s.ID, s.Role)
	}
	return s, nil
}
