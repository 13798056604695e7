package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/ward-scheduling/internal/appointment"
	"github.com/hackgods/ward-scheduling/internal/people"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := appointment.New(appointment.NewParams{
			ID:           req.ID,
			Kind:         appointment.Kind(req.Kind),
			Patient:      people.Patient{ID: req.PatientID, Name: req.PatientName},
			Provider:     req.Provider,
			Date:         req.Date,
			Time:         req.Time,
			Reason:       req.Reason,
			Facility:     req.Facility,
			ContactPhone: req.ContactPhone,
			Priority:     req.Priority,
		})
		if err != nil {
			handleDomainError(w, err)
			return
		}

		if req.CheckConflicts {
			err = svc.Schedule(r.Context(), appt)
		} else {
			err = svc.Add(r.Context(), appt)
		}
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt.Serialize())
	}
}

// listAppointmentsHandler returns display rows for every appointment, or the
// full records of one provider when ?provider= is set.
func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if provider := r.URL.Query().Get("provider"); provider != "" {
			appts, err := svc.ListByProvider(r.Context(), provider)
			if err != nil {
				handleDomainError(w, err)
				return
			}

			resp := make([]map[string]any, 0, len(appts))
			for _, a := range appts {
				resp = append(resp, a.Serialize())
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		resp := []appointment.Listing{}
		for l, err := range svc.All(r.Context()) {
			if err != nil {
				handleDomainError(w, err)
				return
			}
			resp = append(resp, l)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt.Serialize())
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return transitionHandler(svc, svc.Cancel)
}

func completeAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return transitionHandler(svc, svc.Complete)
}

func transitionHandler(svc *appointment.Service, apply func(ctx context.Context, id string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		msg, err := apply(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransitionResponse{
			Message:     msg,
			Appointment: appt.Serialize(),
		})
	}
}
