package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/fleet"
	"github.com/hackgods/ward-scheduling/internal/people"
)

func createAmbulanceHandler(f *fleet.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAmbulanceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		a, err := fleet.NewAmbulance(req.Plate, req.Zone, req.Model, fleet.Siren(req.Siren))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		if err := f.Register(r.Context(), a); err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAmbulanceResponse(a))
	}
}

func listAmbulancesHandler(f *fleet.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := f.All()
		resp := make([]AmbulanceResponse, 0, len(all))
		for _, a := range all {
			resp = append(resp, toAmbulanceResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func boardParamedicHandler(dir *people.Directory, f *fleet.Fleet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BoardRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		p, err := dir.Get(req.StaffID)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		plate := chi.URLParam(r, "plate")
		boarded, err := f.Board(r.Context(), plate, p)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		a, ok := f.Find(plate)
		if !ok {
			handleDomainError(w, fmt.Errorf("%w: %s", fleet.ErrUnknownAmbulance, plate))
			return
		}
		writeJSON(w, http.StatusOK, BoardResponse{Ambulance: toAmbulanceResponse(a), Boarded: boarded})
	}
}

func speedLimitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		severity := chi.URLParam(r, "severity")

		limit := fleet.MaxSpeed(fleet.Severity(severity))
		if limit == 0 {
			writeError(w, http.StatusBadRequest, "invalid_severity", "severity must be urgent, serious or mild")
			return
		}
		writeJSON(w, http.StatusOK, SpeedLimitResponse{Severity: severity, MaxSpeedKmh: limit})
	}
}
