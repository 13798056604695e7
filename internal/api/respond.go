package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hackgods/ward-scheduling/internal/appointment"
	"github.com/hackgods/ward-scheduling/internal/fleet"
	"github.com/hackgods/ward-scheduling/internal/people"
	redisclient "github.com/hackgods/ward-scheduling/internal/redis"
	"github.com/hackgods/ward-scheduling/internal/staffing"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// handleDomainError translates core errors to HTTP responses. Anything not
// listed is a 500.
func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	// 400
	case errors.Is(err, ward.ErrInvalidRoom):
		writeError(w, http.StatusBadRequest, "invalid_room", err.Error())
	case errors.Is(err, appointment.ErrInvalidAppointment):
		writeError(w, http.StatusBadRequest, "invalid_appointment", err.Error())
	case errors.Is(err, people.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_role", err.Error())
	case errors.Is(err, people.ErrInvalidStaff):
		writeError(w, http.StatusBadRequest, "invalid_staff", err.Error())
	case errors.Is(err, fleet.ErrInvalidSiren):
		writeError(w, http.StatusBadRequest, "invalid_siren", err.Error())
	case errors.Is(err, fleet.ErrInvalidAmbulance):
		writeError(w, http.StatusBadRequest, "invalid_ambulance", err.Error())
	case errors.Is(err, staffing.ErrInvalidPatient):
		writeError(w, http.StatusBadRequest, "invalid_patient", err.Error())
	case errors.Is(err, staffing.ErrNotDoctor):
		writeError(w, http.StatusBadRequest, "not_doctor", err.Error())

	// 403
	case errors.Is(err, ward.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, fleet.ErrNotParamedic):
		writeError(w, http.StatusForbidden, "not_paramedic", err.Error())

	// 404
	case errors.Is(err, ward.ErrUnknownRoom):
		writeError(w, http.StatusNotFound, "room_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, people.ErrStaffNotFound):
		writeError(w, http.StatusNotFound, "staff_not_found", err.Error())
	case errors.Is(err, fleet.ErrUnknownAmbulance):
		writeError(w, http.StatusNotFound, "ambulance_not_found", err.Error())
	case errors.Is(err, staffing.ErrAssignmentNotFound):
		writeError(w, http.StatusNotFound, "assignment_not_found", err.Error())

	// 409
	case errors.Is(err, ward.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "room_exists", err.Error())
	case errors.Is(err, appointment.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "appointment_exists", err.Error())
	case errors.Is(err, people.ErrDuplicateStaff):
		writeError(w, http.StatusConflict, "staff_exists", err.Error())
	case errors.Is(err, fleet.ErrDuplicatePlate):
		writeError(w, http.StatusConflict, "ambulance_exists", err.Error())
	case errors.Is(err, ward.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "capacity_exceeded", err.Error())
	case errors.Is(err, ward.ErrRoomNotClean):
		writeError(w, http.StatusConflict, "room_not_clean", err.Error())
	case errors.Is(err, ward.ErrDuplicatePatient):
		writeError(w, http.StatusConflict, "duplicate_patient", err.Error())
	case errors.Is(err, appointment.ErrScheduleConflict):
		writeError(w, http.StatusConflict, "schedule_conflict", err.Error())
	case errors.Is(err, staffing.ErrNoDoctorAvailable):
		writeError(w, http.StatusConflict, "no_doctor_available", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrBusy),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "resource_busy", "resource is currently being modified, please retry shortly")

	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
