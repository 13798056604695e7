package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/staffing"
)

func setAvailabilityHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AvailabilityRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Available == nil {
			writeError(w, http.StatusBadRequest, "missing_available", "available is required")
			return
		}

		doctor, err := desk.SetAvailability(r.Context(), chi.URLParam(r, "id"), *req.Available)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStaffResponse(doctor))
	}
}

func availableDoctorsHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors := desk.AvailableDoctors()
		resp := make([]StaffResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, toStaffResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func assignDoctorHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AssignDoctorRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patient := people.Patient{ID: req.PatientID, Name: req.PatientName}
		doctor, err := desk.Assign(r.Context(), patient)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAssignmentResponse(staffing.Assignment{Patient: patient, Doctor: doctor}))
	}
}

func listDoctorAssignmentsHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := desk.Assignments()
		resp := make([]DoctorAssignmentResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, toAssignmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// doctorAssignmentsReportHandler serves the assignment list as plain text.
func doctorAssignmentsReportHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, desk.Describe())
	}
}

func getDoctorAssignmentHandler(desk *staffing.Desk) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := desk.AssignmentOf(chi.URLParam(r, "patientID"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAssignmentResponse(a))
	}
}

func toAssignmentResponse(a staffing.Assignment) DoctorAssignmentResponse {
	return DoctorAssignmentResponse{
		Patient: a.Patient,
		Doctor:  *toStaffSummary(a.Doctor),
	}
}
