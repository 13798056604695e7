package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/appointment"
	"github.com/hackgods/ward-scheduling/internal/audit"
	"github.com/hackgods/ward-scheduling/internal/fleet"
	"github.com/hackgods/ward-scheduling/internal/people"
	"github.com/hackgods/ward-scheduling/internal/staffing"
	"github.com/hackgods/ward-scheduling/internal/ward"
)

// RouterConfig carries everything the handlers need. PgPool, Redis and Nats
// are optional and only used by the readiness probe.
type RouterConfig struct {
	Staff        *people.Directory
	Rooms        *ward.Registry
	Authority    *ward.Authority
	Doctors      *staffing.Desk
	Appointments *appointment.Service
	Fleet        *fleet.Fleet
	Events       audit.Reader
	PgPool       *pgxpool.Pool
	Redis        *redis.Client
	Nats         *nats.Conn
	Logger       *zap.Logger
	Env          string
	Version      string
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Nats, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Staff endpoints
	r.Route("/staff", func(r chi.Router) {
		r.Post("/", createStaffHandler(cfg.Staff))
		r.Get("/", listStaffHandler(cfg.Staff))
		r.Get("/{id}", getStaffHandler(cfg.Staff))
		r.Get("/{id}/rooms", staffRoomsHandler(cfg.Staff, cfg.Authority))
		r.Get("/{id}/patients", staffPatientsHandler(cfg.Staff))
		r.Post("/{id}/availability", setAvailabilityHandler(cfg.Doctors))
	})

	// Doctor assignment endpoints
	r.Get("/doctors/available", availableDoctorsHandler(cfg.Doctors))
	r.Route("/doctor-assignments", func(r chi.Router) {
		r.Post("/", assignDoctorHandler(cfg.Doctors))
		r.Get("/", listDoctorAssignmentsHandler(cfg.Doctors))
		r.Get("/report", doctorAssignmentsReportHandler(cfg.Doctors))
		r.Get("/{patientID}", getDoctorAssignmentHandler(cfg.Doctors))
	})

	// Ward endpoints
	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", createRoomHandler(cfg.Rooms))
		r.Get("/", listRoomsHandler(cfg.Authority))
		r.Get("/report", roomsReportHandler(cfg.Authority))
		r.Get("/{number}", getRoomHandler(cfg.Rooms, cfg.Authority))
		r.Post("/{number}/bind", bindRoomHandler(cfg.Staff, cfg.Authority))
		r.Post("/{number}/unbind", unbindRoomHandler(cfg.Staff, cfg.Authority))
		r.Post("/{number}/clean", cleanRoomHandler(cfg.Staff, cfg.Authority))
		r.Post("/{number}/patients", assignPatientHandler(cfg.Staff, cfg.Authority))
		r.Delete("/{number}/patients/{patientID}", removePatientHandler(cfg.Staff, cfg.Authority))
	})

	// Appointment endpoints
	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", createAppointmentHandler(cfg.Appointments))
		r.Get("/", listAppointmentsHandler(cfg.Appointments))
		r.Get("/{id}", getAppointmentHandler(cfg.Appointments))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))
		r.Post("/{id}/complete", completeAppointmentHandler(cfg.Appointments))
	})

	// Fleet endpoints
	r.Route("/ambulances", func(r chi.Router) {
		r.Post("/", createAmbulanceHandler(cfg.Fleet))
		r.Get("/", listAmbulancesHandler(cfg.Fleet))
		r.Get("/speed-limits/{severity}", speedLimitHandler())
		r.Post("/{plate}/paramedics", boardParamedicHandler(cfg.Staff, cfg.Fleet))
	})

	// Audit trail
	r.Get("/events/{subject}", listEventsHandler(cfg.Events))

	return r
}
