package appointment

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/hackgods/ward-scheduling/internal/audit"
	redisclient "github.com/hackgods/ward-scheduling/internal/redis"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
)

var (
	ErrScheduleConflict = errors.New("provider already has an appointment at that time")
	ErrBusy             = errors.New("appointment is being modified, please retry")
)

// Service is the appointment registry. Add stores without looking at the
// calendar; callers that want overlap protection use Schedule.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	events *audit.Recorder
	logger *zap.Logger
}

func NewService(repo Repository, locker redisclient.Locker, events *audit.Recorder, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		events: events,
		logger: logger,
	}
}

// Add stores the appointment as given. It fails only on a reused id.
func (s *Service) Add(ctx context.Context, a *Appointment) error {
	if err := s.repo.Insert(ctx, a); err != nil {
		return err
	}
	s.created(ctx, a, false)
	return nil
}

// Schedule stores the appointment unless the provider already has a live
// appointment within OverlapThreshold of it. The check and the insert run
// under a per-provider lock so concurrent requests cannot both pass.
func (s *Service) Schedule(ctx context.Context, a *Appointment) error {
	err := s.locker.WithLock(ctx, providerLockKey(a.Provider), func(lockCtx context.Context) error {
		existing, err := s.repo.ListByProvider(lockCtx, a.Provider)
		if err != nil {
			return fmt.Errorf("load provider calendar: %w", err)
		}

		if clash, ok := FindConflict(a, existing); ok {
			return fmt.Errorf("%w: %s at %s", ErrScheduleConflict, clash.ID, clash.ScheduledAt.Format(ScheduleLayout))
		}

		if err := s.repo.Insert(lockCtx, a); err != nil {
			return err
		}
		s.created(lockCtx, a, true)
		return nil
	})

	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrBusy
	}
	return err
}

// Cancel cancels the appointment and returns the confirmation text.
func (s *Service) Cancel(ctx context.Context, id string) (string, error) {
	return s.transition(ctx, id, EventAppointmentCancelled, (*Appointment).Cancel)
}

// Complete marks the appointment attended and returns the confirmation text.
func (s *Service) Complete(ctx context.Context, id string) (string, error) {
	return s.transition(ctx, id, EventAppointmentCompleted, (*Appointment).Complete)
}

func (s *Service) transition(ctx context.Context, id, eventType string, apply func(*Appointment) (string, error)) (string, error) {
	var msg string

	err := s.locker.WithLock(ctx, appointmentLockKey(id), func(lockCtx context.Context) error {
		appt, err := s.repo.GetAppointmentByID(lockCtx, id)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				return fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
			}
			return fmt.Errorf("load appointment: %w", err)
		}

		from := appt.Status
		msg, err = apply(appt)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(lockCtx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		s.logger.Info("appointment status changed",
			zap.String("appointment_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(appt.Status)),
		)
		s.events.Emit(lockCtx, eventType, id, map[string]any{
			"from":     from,
			"to":       appt.Status,
			"attended": appt.Attended,
		})
		return nil
	})

	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return "", ErrBusy
	}
	if err != nil {
		return "", err
	}
	return msg, nil
}

// Get retrieves an appointment by id.
func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAppointmentNotFound, id)
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// All yields a display row per appointment in insertion order. Each range
// over the sequence reads the repository again, so it always reflects the
// latest state.
func (s *Service) All(ctx context.Context) iter.Seq2[Listing, error] {
	return func(yield func(Listing, error) bool) {
		appts, err := s.repo.List(ctx)
		if err != nil {
			yield(Listing{}, fmt.Errorf("list appointments: %w", err))
			return
		}
		for _, a := range appts {
			if !yield(a.Listing(), nil) {
				return
			}
		}
	}
}

// List returns full appointments in insertion order.
func (s *Service) List(ctx context.Context) ([]*Appointment, error) {
	appts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// ListByProvider returns a provider's appointments in insertion order.
func (s *Service) ListByProvider(ctx context.Context, provider string) ([]*Appointment, error) {
	appts, err := s.repo.ListByProvider(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("list appointments by provider: %w", err)
	}
	return appts, nil
}

func (s *Service) created(ctx context.Context, a *Appointment, checked bool) {
	s.logger.Info("appointment created",
		zap.String("appointment_id", a.ID),
		zap.String("kind", string(a.Kind)),
		zap.String("provider", a.Provider),
		zap.Time("scheduled_at", a.ScheduledAt),
		zap.Bool("conflict_checked", checked),
	)
	s.events.Emit(ctx, EventAppointmentCreated, a.ID, map[string]any{
		"kind":             a.Kind,
		"patient_id":       a.Patient.ID,
		"provider":         a.Provider,
		"scheduled_at":     a.ScheduledAt,
		"conflict_checked": checked,
	})
}

func providerLockKey(provider string) string {
	return "provider:" + provider
}

func appointmentLockKey(id string) string {
	return "appointment:" + id
}
