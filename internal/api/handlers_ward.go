package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

func createRoomHandler(rooms *ward.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		room, err := ward.NewRoom(req.Number, req.Capacity)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if err := rooms.Register(r.Context(), room); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRoomResponse(room.Snapshot(), nil))
	}
}

func listRoomsHandler(auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bindings := auth.Bindings()
		resp := make([]RoomResponse, 0, len(bindings))
		for _, b := range bindings {
			resp = append(resp, toRoomResponse(b.Room, b.Caregiver))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// roomsReportHandler serves the operator report as plain text.
func roomsReportHandler(auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, auth.DescribeAll())
	}
}

func getRoomHandler(rooms *ward.Registry, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "number")

		room, ok := rooms.Find(number)
		if !ok {
			handleDomainError(w, fmt.Errorf("%w: %s", ward.ErrUnknownRoom, number))
			return
		}

		caregiver, _ := auth.CaregiverOf(number)
		writeJSON(w, http.StatusOK, toRoomResponse(room.Snapshot(), caregiver))
	}
}

func bindRoomHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BindRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.CaregiverID == "" {
			writeError(w, http.StatusBadRequest, "missing_caregiver", "caregiver_id is required")
			return
		}

		caregiver, err := dir.Get(req.CaregiverID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		number := chi.URLParam(r, "number")
		if err := auth.Bind(r.Context(), number, caregiver); err != nil {
			handleDomainError(w, err)
			return
		}

		writeRoom(w, auth, number)
	}
}

func unbindRoomHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caregiver, ok := requireCaregiver(w, r, dir)
		if !ok {
			return
		}

		number := chi.URLParam(r, "number")
		if err := auth.Unbind(r.Context(), number, caregiver); err != nil {
			handleDomainError(w, err)
			return
		}

		writeRoom(w, auth, number)
	}
}

func cleanRoomHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caregiver, ok := requireCaregiver(w, r, dir)
		if !ok {
			return
		}

		number := chi.URLParam(r, "number")
		cleaned, err := auth.CleanRoom(r.Context(), number, caregiver)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		room, ok := roomResponse(auth, number)
		if !ok {
			handleDomainError(w, fmt.Errorf("%w: %s", ward.ErrUnknownRoom, number))
			return
		}
		writeJSON(w, http.StatusOK, CleanResponse{Room: room, Cleaned: cleaned})
	}
}

func assignPatientHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caregiver, ok := requireCaregiver(w, r, dir)
		if !ok {
			return
		}

		var req AssignPatientRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.PatientID == "" {
			writeError(w, http.StatusBadRequest, "missing_patient", "patient_id is required")
			return
		}

		number := chi.URLParam(r, "number")
		patient := people.Patient{ID: req.PatientID, Name: req.PatientName}
		if err := auth.AssignPatient(r.Context(), patient, number, caregiver); err != nil {
			handleDomainError(w, err)
			return
		}

		room, _ := roomResponse(auth, number)
		writeJSON(w, http.StatusCreated, room)
	}
}

func removePatientHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caregiver, ok := requireCaregiver(w, r, dir)
		if !ok {
			return
		}

		number := chi.URLParam(r, "number")
		patient := people.Patient{ID: chi.URLParam(r, "patientID")}

		removed, err := auth.RemovePatient(r.Context(), patient, number, caregiver)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		room, _ := roomResponse(auth, number)
		writeJSON(w, http.StatusOK, RemovePatientResponse{Room: room, Removed: removed})
	}
}

// requireCaregiver resolves the acting caregiver from the X-Caregiver-ID
// header. An unknown id is treated as not authorized.
func requireCaregiver(w http.ResponseWriter, r *http.Request, dir *people.Directory) (*people.Staff, bool) {
	id := r.Header.Get(caregiverHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing_caregiver", caregiverHeader+" header is required")
		return nil, false
	}

	s, err := dir.Get(id)
	if err != nil {
		handleDomainError(w, fmt.Errorf("%w: unknown caregiver %s", ward.ErrNotAuthorized, id))
		return nil, false
	}
	return s, true
}

func roomResponse(auth *ward.Authority, number string) (RoomResponse, bool) {
	for _, b := range auth.Bindings() {
		if b.Room.Number == number {
			return toRoomResponse(b.Room, b.Caregiver), true
		}
	}
	return RoomResponse{}, false
}

func writeRoom(w http.ResponseWriter, auth *ward.Authority, number string) {
	room, ok := roomResponse(auth, number)
	if !ok {
		handleDomainError(w, fmt.Errorf("%w: %s", ward.ErrUnknownRoom, number))
		return
	}
	writeJSON(w, http.StatusOK, room)
}
