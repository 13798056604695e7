package api

import (
	"github.com/hackgods/ward-scheduling/internal/fleet"
	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

const caregiverHeader = "X-Caregiver-ID"

type CreateStaffRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type StaffResponse struct {
	ID        string           `json:"id"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	FullName  string           `json:"full_name"`
	Role      string           `json:"role"`
	Available *bool            `json:"available,omitempty"` // doctors only
	Patients  []people.Patient `json:"patients"`
}

type CreateRoomRequest struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
}

type RoomResponse struct {
	Number    string           `json:"number"`
	Capacity  int              `json:"capacity"`
	Clean     bool             `json:"clean"`
	Occupants []people.Patient `json:"occupants"`
	History   []people.Patient `json:"history"`
	Caregiver *StaffSummary    `json:"caregiver,omitempty"`
}

type StaffSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type BindRequest struct {
	CaregiverID string `json:"caregiver_id"`
}

type AssignPatientRequest struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
}

type CleanResponse struct {
	Room    RoomResponse `json:"room"`
	Cleaned bool         `json:"cleaned"`
}

type RemovePatientResponse struct {
	Room    RoomResponse `json:"room"`
	Removed bool         `json:"removed"`
}

type CreateAppointmentRequest struct {
	ID             string `json:"id"`
	Kind           string `json:"kind"`
	PatientID      string `json:"patient_id"`
	PatientName    string `json:"patient_name"`
	Provider       string `json:"provider"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Reason         string `json:"reason"`
	Facility       string `json:"facility"`
	ContactPhone   string `json:"contact_phone"`
	Priority       string `json:"priority"`
	CheckConflicts bool   `json:"check_conflicts"`
}

type TransitionResponse struct {
	Message     string         `json:"message"`
	Appointment map[string]any `json:"appointment"`
}

type CreateAmbulanceRequest struct {
	Plate string `json:"plate"`
	Zone  string `json:"zone"`
	Model string `json:"model"`
	Siren string `json:"siren"`
}

type AmbulanceResponse struct {
	Plate string         `json:"plate"`
	Zone  string         `json:"zone"`
	Model string         `json:"model"`
	Siren string         `json:"siren"`
	Crew  []StaffSummary `json:"crew"`
}

type BoardRequest struct {
	StaffID string `json:"staff_id"`
}

type BoardResponse struct {
	Ambulance AmbulanceResponse `json:"ambulance"`
	Boarded   bool              `json:"boarded"`
}

type SpeedLimitResponse struct {
	Severity    string `json:"severity"`
	MaxSpeedKmh int    `json:"max_speed_kmh"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available"`
}

type AssignDoctorRequest struct {
	PatientID   string `json:"patient_id"`
	PatientName string `json:"patient_name"`
}

type DoctorAssignmentResponse struct {
	Patient people.Patient `json:"patient"`
	Doctor  StaffSummary   `json:"doctor"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toStaffResponse(s *people.Staff) StaffResponse {
	resp := StaffResponse{
		ID:        s.ID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		FullName:  s.FullName(),
		Role:      string(s.Role),
		Patients:  nonNil(s.Roster()),
	}
	if s.Role == people.RoleDoctor {
		available := s.Available()
		resp.Available = &available
	}
	return resp
}

func toStaffSummary(s *people.Staff) *StaffSummary {
	if s == nil {
		return nil
	}
	return &StaffSummary{ID: s.ID, FullName: s.FullName(), Role: string(s.Role)}
}

func toRoomResponse(snap ward.RoomSnapshot, caregiver *people.Staff) RoomResponse {
	return RoomResponse{
		Number:    snap.Number,
		Capacity:  snap.Capacity,
		Clean:     snap.Clean,
		Occupants: nonNil(snap.Occupants),
		History:   nonNil(snap.History),
		Caregiver: toStaffSummary(caregiver),
	}
}

func toAmbulanceResponse(a *fleet.Ambulance) AmbulanceResponse {
	crew := a.Crew()
	resp := AmbulanceResponse{
		Plate: a.Plate,
		Zone:  a.Zone,
		Model: a.Model,
		Siren: string(a.Siren),
		Crew:  make([]StaffSummary, 0, len(crew)),
	}
	for _, p := range crew {
		resp.Crew = append(resp.Crew, *toStaffSummary(p))
	}
	return resp
}

// nonNil keeps empty lists as [] in JSON instead of null.
func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
