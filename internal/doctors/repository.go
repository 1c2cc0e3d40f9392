// Package doctors reads the hospital's doctor reference data. Rows are
// pre-populated and never written by this system.
package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDoctorNotFound indicates no doctor row matches the requested id.
var ErrDoctorNotFound = errors.New("doctors: doctor not found")

// Doctor is a read-only reference row.
type Doctor struct {
	ID        int64
	Name      string
	Specialty string
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides read access to the doctors table.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("doctors: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db querier) *Repository {
	return &Repository{db: db}
}

// LeastBusyBySpecialty returns up to limit doctors of the specialty, ordered
// ascending by their count of Scheduled appointments. The specialty value must
// already have passed the allow-list check; this query is parameterized either way.
func (r *Repository) LeastBusyBySpecialty(ctx context.Context, specialty string, limit int) ([]Doctor, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT d.doctor_id, d.name, d.speciality
		FROM doctors d
		LEFT JOIN appointments a ON d.doctor_id = a.doctor_id
			AND a.status = 'Scheduled'
		WHERE d.speciality = $1
		GROUP BY d.doctor_id, d.name, d.speciality
		ORDER BY COUNT(a.appointment_id) ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, specialty, limit)
	if err != nil {
		return nil, fmt.Errorf("doctors: query by specialty: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty); err != nil {
			return nil, fmt.Errorf("doctors: scan row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: iterate rows: %w", err)
	}
	return out, nil
}

// GetByID fetches a single doctor for confirmation messages.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	query := `SELECT doctor_id, name, speciality FROM doctors WHERE doctor_id = $1`
	var d Doctor
	if err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Specialty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("doctors: load by id: %w", err)
	}
	return &d, nil
}
