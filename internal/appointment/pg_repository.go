package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, kind, patient_id, patient_name, provider, scheduled_at, reason,
	status, attended, facility, contact_phone, priority, created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.Kind,
		&a.Patient.ID,
		&a.Patient.Name,
		&a.Provider,
		&a.ScheduledAt,
		&a.Reason,
		&a.Status,
		&a.Attended,
		&a.Facility,
		&a.ContactPhone,
		&a.Priority,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ScheduledAt = a.ScheduledAt.UTC()
	return &a, nil
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()

	var result []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) Insert(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, kind, patient_id, patient_name, provider, scheduled_at, reason,
			status, attended, facility, contact_phone, priority, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING created_at, updated_at
	`,
		a.ID, a.Kind, a.Patient.ID, a.Patient.Name, a.Provider, a.ScheduledAt, a.Reason,
		a.Status, a.Attended, a.Facility, a.ContactPhone, a.Priority,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, a.ID)
		}
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, a *Appointment) error {
	err := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    attended = $3,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, a.ID, a.Status, a.Attended).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("update appointment status: %w", err)
	}

	return nil
}

func (r *PgRepository) List(ctx context.Context) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return collect(rows)
}

func (r *PgRepository) ListByProvider(ctx context.Context, provider string) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE provider = $1
		ORDER BY seq
	`, provider)
	if err != nil {
		return nil, fmt.Errorf("list appointments by provider: %w", err)
	}
	return collect(rows)
}
