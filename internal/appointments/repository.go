// Package appointments owns slot-availability math and conflict-checked
// booking over the appointments table.
package appointments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrSlotTaken indicates a Scheduled row already holds the (doctor, datetime) pair.
	ErrSlotTaken = errors.New("appointments: slot already booked")
	// ErrNoUpcoming indicates the patient has no future Scheduled appointment.
	ErrNoUpcoming = errors.New("appointments: no upcoming appointment")
	// ErrBadBookedTime indicates the store returned a time value that does not
	// look like HH:MM. Callers must fail closed, never treat the day as open.
	ErrBadBookedTime = errors.New("appointments: unparseable booked time")
)

const uniqueViolation = "23505"

var clockShape = regexp.MustCompile(`^\d{2}:\d{2}$`)

// Upcoming is the nearest future appointment joined with its doctor.
type Upcoming struct {
	When       string
	Reason     string
	DoctorName string
	Specialty  string
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for appointment rows.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db querier) *Repository {
	return &Repository{db: db}
}

// BookedTimes returns the HH:MM start times of Scheduled appointments for the
// doctor on the given date, ascending. Values that fail the clock-shape check
// are reported as ErrBadBookedTime rather than dropped.
func (r *Repository) BookedTimes(ctx context.Context, doctorID int64, date string) ([]string, error) {
	query := `
		SELECT TO_CHAR(appointment_datetime, 'HH24:MI') AS time_slot
		FROM appointments
		WHERE doctor_id = $1
			AND DATE(appointment_datetime) = $2
			AND status = 'Scheduled'
		ORDER BY appointment_datetime
	`
	rows, err := r.db.Query(ctx, query, doctorID, date)
	if err != nil {
		return nil, fmt.Errorf("appointments: query booked times: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadBookedTime, err)
		}
		if !clockShape.MatchString(slot) {
			return nil, fmt.Errorf("%w: %q", ErrBadBookedTime, slot)
		}
		out = append(out, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate booked times: %w", err)
	}
	return out, nil
}

// SlotTaken reports whether a Scheduled row already exists at (doctor, ts).
func (r *Repository) SlotTaken(ctx context.Context, doctorID int64, ts time.Time) (bool, error) {
	query := `
		SELECT appointment_id FROM appointments
		WHERE doctor_id = $1
			AND appointment_datetime = $2
			AND status = 'Scheduled'
		LIMIT 1
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, doctorID, ts).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("appointments: check slot: %w", err)
	}
	return true, nil
}

// Create inserts a Scheduled appointment and returns its identifier. A race
// with another session on the same (doctor, datetime) trips the partial unique
// index and is reported as ErrSlotTaken.
func (r *Repository) Create(ctx context.Context, doctorID, patientID int64, ts time.Time, reason string) (int64, error) {
	query := `
		INSERT INTO appointments (doctor_id, patient_id, appointment_datetime, reason, status)
		VALUES ($1, $2, $3, $4, 'Scheduled')
		RETURNING appointment_id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, doctorID, patientID, ts, reason).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrSlotTaken
		}
		return 0, fmt.Errorf("appointments: insert: %w", err)
	}
	return id, nil
}

// NextUpcoming returns the single nearest future Scheduled appointment for the
// patient, joined with the doctor's name and specialty.
func (r *Repository) NextUpcoming(ctx context.Context, patientID int64) (*Upcoming, error) {
	query := `
		SELECT
			TO_CHAR(a.appointment_datetime, 'YYYY-MM-DD "at" HH24:MI') AS appt_time,
			a.reason,
			d.name AS doctor_name,
			d.speciality
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.doctor_id
		WHERE a.patient_id = $1
			AND a.status = 'Scheduled'
			AND a.appointment_datetime >= CURRENT_TIMESTAMP
		ORDER BY a.appointment_datetime ASC
		LIMIT 1
	`
	var u Upcoming
	if err := r.db.QueryRow(ctx, query, patientID).Scan(&u.When, &u.Reason, &u.DoctorName, &u.Specialty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoUpcoming
		}
		return nil, fmt.Errorf("appointments: lookup upcoming: %w", err)
	}
	return &u, nil
}
