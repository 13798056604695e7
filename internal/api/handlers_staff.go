package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

func createStaffHandler(dir *people.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateStaffRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		s, err := people.NewStaff(req.ID, req.FirstName, req.LastName, people.Role(req.Role))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if err := dir.Add(s); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toStaffResponse(s))
	}
}

func listStaffHandler(dir *people.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := dir.All()
		resp := make([]StaffResponse, 0, len(all))
		for _, s := range all {
			resp = append(resp, toStaffResponse(s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getStaffHandler(dir *people.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := dir.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStaffResponse(s))
	}
}

func staffRoomsHandler(dir *people.Directory, auth *ward.Authority) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := dir.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}

		rooms := auth.RoomsFor(s)
		resp := make([]RoomResponse, 0, len(rooms))
		for _, room := range rooms {
			resp = append(resp, toRoomResponse(room.Snapshot(), s))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func staffPatientsHandler(dir *people.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := dir.Get(chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(s.Roster()))
	}
}
