// Package tools implements the callable operations the conversation planner
// may invoke. Every tool validates its inputs before any query, returns a
// plain string in all cases, and never lets an error escape its boundary.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/medibot-ai/hospital-agent/internal/appointments"
	"github.com/medibot-ai/hospital-agent/internal/doctors"
	"github.com/medibot-ai/hospital-agent/internal/patients"
	"github.com/medibot-ai/hospital-agent/internal/validate"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

var toolsTracer = otel.Tracer("hospitalagent.internal.tools")

// SymptomRouter maps symptom text to a specialty (triage.Router in production).
type SymptomRouter interface {
	Route(ctx context.Context, symptoms string) string
}

// DoctorDirectory reads doctor reference data.
type DoctorDirectory interface {
	LeastBusyBySpecialty(ctx context.Context, specialty string, limit int) ([]doctors.Doctor, error)
	GetByID(ctx context.Context, id int64) (*doctors.Doctor, error)
}

// PatientStore persists and looks up patients.
type PatientStore interface {
	FindIDByPhone(ctx context.Context, phone string) (int64, error)
	FindByPhoneAndEmail(ctx context.Context, phone, email string) (*patients.Identity, error)
	Create(ctx context.Context, rec patients.Record) (int64, error)
}

// AppointmentStore persists and looks up appointments.
type AppointmentStore interface {
	BookedTimes(ctx context.Context, doctorID int64, date string) ([]string, error)
	SlotTaken(ctx context.Context, doctorID int64, ts time.Time) (bool, error)
	Create(ctx context.Context, doctorID, patientID int64, ts time.Time, reason string) (int64, error)
	NextUpcoming(ctx context.Context, patientID int64) (*appointments.Upcoming, error)
}

// Toolset bundles the tool implementations over their stores.
type Toolset struct {
	router   SymptomRouter
	doctors  DoctorDirectory
	patients PatientStore
	appts    AppointmentStore
	logger   *logging.Logger
}

// NewToolset wires the tools to their collaborators.
func NewToolset(router SymptomRouter, dir DoctorDirectory, ps PatientStore, as AppointmentStore, logger *logging.Logger) *Toolset {
	if router == nil {
		panic("tools: symptom router required")
	}
	if dir == nil || ps == nil || as == nil {
		panic("tools: stores required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Toolset{router: router, doctors: dir, patients: ps, appts: as, logger: logger}
}

// GetDoctorRecommendations routes symptom text to a specialty name. Failures
// inside the router already degrade to the safe default, so this never errors.
func (t *Toolset) GetDoctorRecommendations(ctx context.Context, symptoms string) string {
	ctx, span := toolsTracer.Start(ctx, "tools.get_doctor_recommendations")
	defer span.End()
	return t.router.Route(ctx, symptoms)
}

// GetAvailableDoctors lists the least-busy doctors for a specialty. The
// allow-list check runs before any query; this is the injection firewall for
// the specialty value.
func (t *Toolset) GetAvailableDoctors(ctx context.Context, specialty string) string {
	ctx, span := toolsTracer.Start(ctx, "tools.get_available_doctors")
	defer span.End()

	if err := validate.Specialty(specialty); err != nil {
		return fmt.Sprintf("Error: The specialty '%s' is not recognized. Please try a valid specialty.", specialty)
	}

	found, err := t.doctors.LeastBusyBySpecialty(ctx, specialty, 5)
	if err != nil {
		span.RecordError(err)
		t.logger.Error("doctor lookup failed", "specialty", specialty, "error", err)
		return "Error: Could not look up doctors right now. Please try again."
	}
	if len(found) == 0 {
		return fmt.Sprintf("No %s doctors found in our system. Would you like to see a General Physician instead?", specialty)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here is a list of available doctors for %s:\n", specialty)
	for i, d := range found {
		fmt.Fprintf(&b, "%d. %s (ID: %d)\n", i+1, d.Name, d.ID)
	}
	return b.String()
}

// CheckAppointmentSlots lists open 30-minute slots for a doctor on a date.
func (t *Toolset) CheckAppointmentSlots(ctx context.Context, doctorID, date string) string {
	ctx, span := toolsTracer.Start(ctx, "tools.check_appointment_slots")
	defer span.End()

	docID, err := validate.ID(doctorID)
	if err != nil {
		return "Error: Invalid doctor_id."
	}
	if err := validate.Date(date); err != nil {
		return "Error: Date must be in YYYY-MM-DD format."
	}

	booked, err := t.appts.BookedTimes(ctx, docID, date)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, appointments.ErrBadBookedTime) {
			// Fail closed: an unreadable schedule must not look wide open.
			return "Error: Could not parse booking data for that day. Please try again."
		}
		t.logger.Error("booked-times query failed", "doctor_id", docID, "date", date, "error", err)
		return "Error: Could not check slots right now. Please try again."
	}

	open := appointments.AvailableSlots(booked)
	if len(open) == 0 {
		return fmt.Sprintf("No available time slots found for Doctor ID %d on %s.", docID, date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available time slots for Doctor ID %d on %s:\n\n", docID, date)
	for i, slot := range open {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, slot, appointments.Format12Hour(slot))
	}
	return b.String()
}

// CreatePatientArgs carries the fields collected by the conversation flow.
type CreatePatientArgs struct {
	Name                  string `json:"name"`
	Phone                 string `json:"phone"`
	Email                 string `json:"email"`
	Age                   string `json:"age"`
	Gender                string `json:"gender"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
}

// CreatePatientRecord validates all required fields, then creates the patient
// unless the phone is already registered. Idempotent on phone: re-registering
// returns the existing identifier and stores nothing new.
func (t *Toolset) CreatePatientRecord(ctx context.Context, args CreatePatientArgs) string {
	ctx, span := toolsTracer.Start(ctx, "tools.create_patient_record")
	defer span.End()

	name := validate.CleanText(args.Name)
	if name == "" {
		return "Error: Required fields missing (name, phone, age, gender)."
	}
	if err := validate.Phone(args.Phone); err != nil {
		return "Error: Phone must be exactly 10 digits."
	}
	if err := validate.Email(args.Email); err != nil {
		return "Error: Invalid email address format."
	}
	age, err := validate.Age(args.Age)
	if err != nil {
		return fmt.Sprintf("Error: %s.", capitalize(err.Error()))
	}
	if err := validate.Gender(args.Gender); err != nil {
		return "Error: Gender must be 'Male' or 'Female'."
	}

	existing, err := t.patients.FindIDByPhone(ctx, args.Phone)
	switch {
	case err == nil:
		return fmt.Sprintf("Patient record already exists with this phone number. Patient ID: %d", existing)
	case !errors.Is(err, patients.ErrPatientNotFound):
		span.RecordError(err)
		t.logger.Error("patient lookup failed", "error", err)
		return "Error: Could not create patient record right now. Please try again."
	}

	id, err := t.patients.Create(ctx, patients.Record{
		Name:                  name,
		Phone:                 args.Phone,
		Email:                 validate.CleanText(args.Email),
		Age:                   age,
		Gender:                args.Gender,
		EmergencyContactName:  validate.CleanText(args.EmergencyContactName),
		EmergencyContactPhone: validate.CleanText(args.EmergencyContactPhone),
	})
	if err != nil {
		if errors.Is(err, patients.ErrDuplicatePhone) {
			// Lost the race to a concurrent session; the row exists now.
			if existing, lookupErr := t.patients.FindIDByPhone(ctx, args.Phone); lookupErr == nil {
				return fmt.Sprintf("Patient record already exists with this phone number. Patient ID: %d", existing)
			}
		}
		span.RecordError(err)
		t.logger.Error("patient insert failed", "error", err)
		return "Error: Could not create patient record right now. Please try again."
	}
	return fmt.Sprintf("Patient record created successfully. Patient ID: %d", id)
}

// BookAppointmentArgs carries the confirmed booking details.
type BookAppointmentArgs struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Date      string `json:"appointment_date"`
	Time      string `json:"appointment_time"`
	Reason    string `json:"reason"`
}

// BookAppointment books a conflict-checked appointment and returns a
// confirmation with the appointment id and doctor details.
func (t *Toolset) BookAppointment(ctx context.Context, args BookAppointmentArgs) string {
	ctx, span := toolsTracer.Start(ctx, "tools.book_appointment")
	defer span.End()

	patientID, err := validate.ID(args.PatientID)
	if err != nil {
		return "Error: patient_id and doctor_id must be numbers."
	}
	doctorID, err := validate.ID(args.DoctorID)
	if err != nil {
		return "Error: patient_id and doctor_id must be numbers."
	}
	if err := validate.Date(args.Date); err != nil {
		return "Error: Invalid date format. Use YYYY-MM-DD."
	}
	if err := validate.ClockTime(args.Time); err != nil {
		return "Error: Invalid time format. Use HH:MM (24-hour)."
	}
	ts, err := validate.DateTime(args.Date, args.Time)
	if err != nil {
		return "Error: Invalid date or time."
	}

	taken, err := t.appts.SlotTaken(ctx, doctorID, ts)
	if err != nil {
		span.RecordError(err)
		t.logger.Error("slot check failed", "doctor_id", doctorID, "error", err)
		return "Error: Could not book the appointment right now. Please try again."
	}
	if taken {
		return "Sorry, this time slot is no longer available. Please choose another time."
	}

	reason := validate.CleanText(args.Reason)
	apptID, err := t.appts.Create(ctx, doctorID, patientID, ts, reason)
	if err != nil {
		if errors.Is(err, appointments.ErrSlotTaken) {
			// Lost the race to a concurrent session.
			return "Sorry, this time slot is no longer available. Please choose another time."
		}
		span.RecordError(err)
		t.logger.Error("appointment insert failed", "doctor_id", doctorID, "error", err)
		return "Error: Could not book the appointment right now. Please try again."
	}

	doc, err := t.doctors.GetByID(ctx, doctorID)
	if err != nil {
		span.RecordError(err)
		t.logger.Error("doctor fetch after booking failed", "doctor_id", doctorID, "error", err)
		return fmt.Sprintf("Appointment booked successfully. Appointment ID: %d", apptID)
	}

	return fmt.Sprintf(`Appointment booked successfully!

Appointment Details:
- Appointment ID: %d
- Doctor: %s (%s)
- Patient ID: %d
- Date: %s
- Time: %s
- Reason: %s

You will receive a confirmation shortly. Please arrive 10 minutes early.`,
		apptID, doc.Name, doc.Specialty, patientID, args.Date, args.Time, reason)
}

// FindPatientByPhoneAndEmail is the two-factor identity lookup. Both fields
// must match the same row; the result never reveals which field was wrong.
func (t *Toolset) FindPatientByPhoneAndEmail(ctx context.Context, phone, email string) string {
	ctx, span := toolsTracer.Start(ctx, "tools.find_patient_by_phone_and_email")
	defer span.End()

	if err := validate.Phone(phone); err != nil {
		return "Error: Phone must be exactly 10 digits."
	}
	if err := validate.Email(email); err != nil {
		return "Error: Invalid email address format."
	}

	ident, err := t.patients.FindByPhoneAndEmail(ctx, phone, email)
	if err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			return "Error: No patient record found with that combination of phone number and email."
		}
		span.RecordError(err)
		t.logger.Error("two-factor lookup failed", "error", err)
		return "Error: Could not look up the patient right now. Please try again."
	}
	return fmt.Sprintf("Patient Found: ID=%d, Name=%s", ident.ID, ident.Name)
}

// LookupUpcomingAppointment returns the patient's single nearest future
// Scheduled appointment.
func (t *Toolset) LookupUpcomingAppointment(ctx context.Context, patientID string) string {
	ctx, span := toolsTracer.Start(ctx, "tools.lookup_upcoming_appointment")
	defer span.End()

	id, err := validate.ID(patientID)
	if err != nil {
		return "Error: Invalid patient_id."
	}

	up, err := t.appts.NextUpcoming(ctx, id)
	if err != nil {
		if errors.Is(err, appointments.ErrNoUpcoming) {
			return "No upcoming appointments found for this patient."
		}
		span.RecordError(err)
		t.logger.Error("upcoming lookup failed", "patient_id", id, "error", err)
		return "Error: Could not look up appointments right now. Please try again."
	}

	return fmt.Sprintf(`Upcoming Appointment Found:
- Doctor: %s (%s)
- Date & Time: %s
- Reason: %s`, up.DoctorName, up.Specialty, up.When, up.Reason)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
