// Package patients persists patient records. Phone is the natural key:
// creation is idempotent per distinct phone number.
package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrPatientNotFound indicates no row matched the lookup.
	ErrPatientNotFound = errors.New("patients: patient not found")
	// ErrDuplicatePhone surfaces the store-level unique constraint on phone.
	// Callers map it back onto the "already exists" path.
	ErrDuplicatePhone = errors.New("patients: phone already registered")
)

const uniqueViolation = "23505"

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence for patient rows.
type Repository struct {
	db querier
}

// NewRepository creates a repository backed by pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(db querier) *Repository {
	return &Repository{db: db}
}

// FindIDByPhone returns the identifier of the patient registered under phone.
func (r *Repository) FindIDByPhone(ctx context.Context, phone string) (int64, error) {
	query := `SELECT patient_id FROM patients WHERE phone = $1 LIMIT 1`
	var id int64
	if err := r.db.QueryRow(ctx, query, phone).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrPatientNotFound
		}
		return 0, fmt.Errorf("patients: lookup by phone: %w", err)
	}
	return id, nil
}

// FindByPhoneAndEmail requires BOTH fields to match the same row. The
// conjunctive match is an identity-verification control: callers never learn
// which of the two fields was wrong.
func (r *Repository) FindByPhoneAndEmail(ctx context.Context, phone, email string) (*Identity, error) {
	query := `
		SELECT patient_id, name
		FROM patients
		WHERE phone = $1 AND email = $2
		LIMIT 1
	`
	var ident Identity
	if err := r.db.QueryRow(ctx, query, phone, email).Scan(&ident.ID, &ident.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: two-factor lookup: %w", err)
	}
	return &ident, nil
}

// Create inserts a new patient row and returns the assigned identifier.
// A concurrent insert of the same phone trips the unique constraint and is
// reported as ErrDuplicatePhone.
func (r *Repository) Create(ctx context.Context, rec Record) (int64, error) {
	query := `
		INSERT INTO patients (name, phone, email, age, gender, emergency_contact_name, emergency_contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING patient_id
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.Name,
		rec.Phone,
		rec.Email,
		rec.Age,
		rec.Gender,
		rec.EmergencyContactName,
		rec.EmergencyContactPhone,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrDuplicatePhone
		}
		return 0, fmt.Errorf("patients: insert: %w", err)
	}
	return id, nil
}
