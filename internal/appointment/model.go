package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/ward-scheduling/internal/people"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Kind string

const (
	KindInPerson   Kind = "in_person"
	KindTelephonic Kind = "telephonic"
	KindEmergency  Kind = "emergency"
)

const (
	// Two appointments closer than this are considered overlapping.
	OverlapThreshold = 30 * time.Minute

	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	ScheduleLayout = DateLayout + " " + ClockLayout
)

var (
	ErrInvalidAppointment      = errors.New("invalid appointment")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// Lifecycle is the set of state changes every appointment kind supports.
type Lifecycle interface {
	Cancel() (string, error)
	Complete() (string, error)
}

var _ Lifecycle = (*Appointment)(nil)

// Appointment is a scheduled visit. Kind selects which of Facility,
// ContactPhone or Priority is meaningful.
type Appointment struct {
	ID          string
	Kind        Kind
	Patient     people.Patient
	Provider    string
	ScheduledAt time.Time
	Reason      string
	Status      AppointmentStatus
	Attended    bool

	Facility     string // in_person
	ContactPhone string // telephonic
	Priority     string // emergency

	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewParams struct {
	ID           string
	Kind         Kind
	Patient      people.Patient
	Provider     string
	Date         string // 2006-01-02
	Time         string // 15:04
	Reason       string
	Facility     string
	ContactPhone string
	Priority     string
}

// New builds a pending appointment. An empty ID gets a fresh UUID.
func New(p NewParams) (*Appointment, error) {
	at, err := ParseSchedule(p.Date, p.Time)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		ID:           strings.TrimSpace(p.ID),
		Kind:         p.Kind,
		Patient:      p.Patient,
		Provider:     strings.TrimSpace(p.Provider),
		ScheduledAt:  at,
		Reason:       p.Reason,
		Status:       StatusPending,
		Facility:     p.Facility,
		ContactPhone: p.ContactPhone,
		Priority:     p.Priority,
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// ParseSchedule turns a date and a wall-clock time into an instant (UTC).
func ParseSchedule(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(ScheduleLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: schedule %q %q: %v", ErrInvalidAppointment, date, clock, err)
	}
	return t, nil
}

func (a *Appointment) validate() error {
	v, ok := variants[a.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAppointment, a.Kind)
	}
	if a.Patient.ID == "" {
		return fmt.Errorf("%w: patient is required", ErrInvalidAppointment)
	}
	if a.Provider == "" {
		return fmt.Errorf("%w: provider is required", ErrInvalidAppointment)
	}
	return v.validate(a)
}

// Cancel marks the appointment cancelled. Cancelling twice is harmless;
// cancelling a completed appointment is rejected.
func (a *Appointment) Cancel() (string, error) {
	if a.Status.IsTerminal() && a.Status != StatusCancelled {
		return "", fmt.Errorf("%w: appointment %s is already %s", ErrInvalidStatusTransition, a.ID, a.Status)
	}
	a.Status = StatusCancelled
	a.Attended = false
	return a.variant().cancelMessage(a), nil
}

// Complete marks the appointment attended. Completing a cancelled
// appointment is rejected.
func (a *Appointment) Complete() (string, error) {
	if a.Status.IsTerminal() && a.Status != StatusCompleted {
		return "", fmt.Errorf("%w: appointment %s is %s", ErrInvalidStatusTransition, a.ID, a.Status)
	}
	a.Attended = true
	a.Status = StatusCompleted
	return a.variant().completeMessage(a), nil
}

// Overlaps reports whether the two appointments start less than
// OverlapThreshold apart. The relation is symmetric but not transitive.
func (a *Appointment) Overlaps(other *Appointment) bool {
	d := a.ScheduledAt.Sub(other.ScheduledAt)
	if d < 0 {
		d = -d
	}
	return d < OverlapThreshold
}

// Serialize flattens the appointment for external encoding.
func (a *Appointment) Serialize() map[string]any {
	m := map[string]any{
		"id":           a.ID,
		"kind":         string(a.Kind),
		"patient_id":   a.Patient.ID,
		"patient_name": a.Patient.Name,
		"provider":     a.Provider,
		"reason":       a.Reason,
		"scheduled_at": a.ScheduledAt.Format(ScheduleLayout),
		"status":       string(a.Status),
		"attended":     a.Attended,
	}
	if key, value := a.variant().extra(a); key != "" {
		m[key] = value
	}
	return m
}

// Listing is the one-line display form of an appointment.
type Listing struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	PatientName string `json:"patient_name"`
	Provider    string `json:"provider"`
	Attended    string `json:"attended"`
}

func (a *Appointment) Listing() Listing {
	attended := "pending"
	if a.Attended {
		attended = "attended"
	}
	return Listing{
		ID:          a.ID,
		Kind:        a.Kind,
		PatientName: a.Patient.Name,
		Provider:    a.Provider,
		Attended:    attended,
	}
}

func (a *Appointment) Clone() *Appointment {
	c := *a
	return &c
}

func (a *Appointment) variant() variant {
	if v, ok := variants[a.Kind]; ok {
		return v
	}
	return unknownVariant{}
}

// variant holds what differs between appointment kinds: validation of the
// extra field and the wording of confirmations.
type variant interface {
	validate(a *Appointment) error
	cancelMessage(a *Appointment) string
	completeMessage(a *Appointment) string
	extra(a *Appointment) (string, string)
}

var variants = map[Kind]variant{
	KindInPerson:   inPerson{},
	KindTelephonic: telephonic{},
	KindEmergency:  emergency{},
}

type inPerson struct{}

func (inPerson) validate(a *Appointment) error {
	if strings.TrimSpace(a.Facility) == "" {
		return fmt.Errorf("%w: facility is required for in-person appointments", ErrInvalidAppointment)
	}
	return nil
}

func (inPerson) cancelMessage(a *Appointment) string {
	return fmt.Sprintf("In-person appointment %s on %s at %s has been cancelled",
		a.ID, a.ScheduledAt.Format(DateLayout), a.Facility)
}

func (inPerson) completeMessage(a *Appointment) string {
	return fmt.Sprintf("Patient %s is being seen", a.Patient.Name)
}

func (inPerson) extra(a *Appointment) (string, string) { return "facility", a.Facility }

type telephonic struct{}

func (telephonic) validate(a *Appointment) error {
	if strings.TrimSpace(a.ContactPhone) == "" {
		return fmt.Errorf("%w: contact phone is required for telephonic appointments", ErrInvalidAppointment)
	}
	return nil
}

func (telephonic) cancelMessage(a *Appointment) string {
	return fmt.Sprintf("Telephone appointment %s has been cancelled", a.ID)
}

func (telephonic) completeMessage(a *Appointment) string {
	return fmt.Sprintf("Patient %s is being seen by phone at %s", a.Patient.Name, a.ContactPhone)
}

func (telephonic) extra(a *Appointment) (string, string) { return "contact_phone", a.ContactPhone }

type emergency struct{}

func (emergency) validate(a *Appointment) error {
	if strings.TrimSpace(a.Priority) == "" {
		return fmt.Errorf("%w: priority is required for emergency appointments", ErrInvalidAppointment)
	}
	return nil
}

func (emergency) cancelMessage(a *Appointment) string {
	return fmt.Sprintf("Emergency appointment %s has been cancelled", a.ID)
}

func (emergency) completeMessage(a *Appointment) string {
	return fmt.Sprintf("Patient %s is being seen as an emergency with priority %s", a.Patient.Name, a.Priority)
}

func (emergency) extra(a *Appointment) (string, string) { return "priority", a.Priority }

// rows loaded from storage with a kind this build does not know
type unknownVariant struct{}

func (unknownVariant) validate(*Appointment) error { return nil }
func (unknownVariant) cancelMessage(a *Appointment) string {
	return fmt.Sprintf("Appointment %s has been cancelled", a.ID)
}
func (unknownVariant) completeMessage(a *Appointment) string {
	return fmt.Sprintf("Patient %s is being seen", a.Patient.Name)
}
func (unknownVariant) extra(*Appointment) (string, string) { return "", "" }
