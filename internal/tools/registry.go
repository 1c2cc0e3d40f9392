package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/medibot-ai/hospital-agent/internal/observability/metrics"
)

// Tool names as exposed to the planner.
const (
	NameGetDoctorRecommendations   = "get_doctor_recommendations"
	NameGetAvailableDoctors        = "get_available_doctors"
	NameCheckAppointmentSlots      = "check_appointment_slots"
	NameCreatePatientRecord        = "create_patient_record"
	NameBookAppointment            = "book_appointment"
	NameFindPatientByPhoneAndEmail = "find_patient_by_phone_and_email"
	NameLookupUpcomingAppointment  = "lookup_upcoming_appointment"
)

// Registry adapts the Toolset to the planner's function-calling protocol:
// JSON arguments in, plain text out, plus per-invocation metrics.
type Registry struct {
	ts      *Toolset
	metrics *metrics.AgentMetrics
}

// NewRegistry wraps a toolset.
func NewRegistry(ts *Toolset, m *metrics.AgentMetrics) *Registry {
	if ts == nil {
		panic("tools: toolset required")
	}
	return &Registry{ts: ts, metrics: m}
}

// Invoke dispatches a named tool with raw JSON arguments. Unknown names and
// malformed argument payloads produce error strings, never panics or errors:
// the planner always receives a result it can relay.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) string {
	start := time.Now()
	result := r.dispatch(ctx, name, argsJSON)
	r.metrics.ObserveTool(name, statusOf(result), time.Since(start).Seconds())
	return result
}

func (r *Registry) dispatch(ctx context.Context, name, argsJSON string) string {
	switch name {
	case NameGetDoctorRecommendations:
		var args struct {
			Symptoms string `json:"symptoms"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.GetDoctorRecommendations(ctx, args.Symptoms)

	case NameGetAvailableDoctors:
		var args struct {
			Specialty string `json:"specialty"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.GetAvailableDoctors(ctx, args.Specialty)

	case NameCheckAppointmentSlots:
		var args struct {
			DoctorID json.Number `json:"doctor_id"`
			Date     string      `json:"date"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.CheckAppointmentSlots(ctx, args.DoctorID.String(), args.Date)

	case NameCreatePatientRecord:
		var args struct {
			Name                  string      `json:"name"`
			Phone                 string      `json:"phone"`
			Email                 string      `json:"email"`
			Age                   json.Number `json:"age"`
			Gender                string      `json:"gender"`
			EmergencyContactName  string      `json:"emergency_contact_name"`
			EmergencyContactPhone string      `json:"emergency_contact_phone"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.CreatePatientRecord(ctx, CreatePatientArgs{
			Name:                  args.Name,
			Phone:                 args.Phone,
			Email:                 args.Email,
			Age:                   args.Age.String(),
			Gender:                args.Gender,
			EmergencyContactName:  args.EmergencyContactName,
			EmergencyContactPhone: args.EmergencyContactPhone,
		})

	case NameBookAppointment:
		var args struct {
			PatientID json.Number `json:"patient_id"`
			DoctorID  json.Number `json:"doctor_id"`
			Date      string      `json:"appointment_date"`
			Time      string      `json:"appointment_time"`
			Reason    string      `json:"reason"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.BookAppointment(ctx, BookAppointmentArgs{
			PatientID: args.PatientID.String(),
			DoctorID:  args.DoctorID.String(),
			Date:      args.Date,
			Time:      args.Time,
			Reason:    args.Reason,
		})

	case NameFindPatientByPhoneAndEmail:
		var args struct {
			Phone string `json:"phone"`
			Email string `json:"email"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.FindPatientByPhoneAndEmail(ctx, args.Phone, args.Email)

	case NameLookupUpcomingAppointment:
		var args struct {
			PatientID json.Number `json:"patient_id"`
		}
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return badArgs(name)
		}
		return r.ts.LookupUpcomingAppointment(ctx, args.PatientID.String())
	}
	return fmt.Sprintf("Error: Unknown tool %q.", name)
}

// Definitions returns the function-calling schema advertised to the planner.
func (r *Registry) Definitions() []openai.Tool {
	str := func(desc string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.String, Description: desc}
	}
	fn := func(name, desc string, props map[string]jsonschema.Definition, required []string) openai.Tool {
		return openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        name,
				Description: desc,
				Parameters: jsonschema.Definition{
					Type:       jsonschema.Object,
					Properties: props,
					Required:   required,
				},
			},
		}
	}

	return []openai.Tool{
		fn(NameGetDoctorRecommendations,
			"Find the correct medical specialty for a patient's symptoms. Returns a single specialty name, \"General Physician\", or \"EMERGENCY\".",
			map[string]jsonschema.Definition{
				"symptoms": str("The patient's complaints or condition, in their own words"),
			},
			[]string{"symptoms"}),
		fn(NameGetAvailableDoctors,
			"List the least-busy doctors for a given medical specialty. Present only the doctors returned; never invent names.",
			map[string]jsonschema.Definition{
				"specialty": str("The medical specialty, e.g. Cardiology or Dermatology"),
			},
			[]string{"specialty"}),
		fn(NameCheckAppointmentSlots,
			"Check available 30-minute time slots for a specific doctor on a given date (working hours 9 AM - 5 PM with a 1-2 PM lunch break).",
			map[string]jsonschema.Definition{
				"doctor_id": str("The doctor's numeric ID"),
				"date":      str("Date in YYYY-MM-DD format"),
			},
			[]string{"doctor_id", "date"}),
		fn(NameCreatePatientRecord,
			"Create a new patient record. If the phone number is already registered, the existing Patient ID is returned instead.",
			map[string]jsonschema.Definition{
				"name":                    str("Patient full name"),
				"phone":                   str("Contact phone, exactly 10 digits"),
				"email":                   str("Email address"),
				"age":                     str("Patient age, 1-120"),
				"gender":                  str("Male or Female"),
				"emergency_contact_name":  str("Optional emergency contact name"),
				"emergency_contact_phone": str("Optional emergency contact phone"),
			},
			[]string{"name", "phone", "email", "age", "gender"}),
		fn(NameBookAppointment,
			"Book an appointment once the doctor, slot, and patient details are confirmed. Returns a confirmation with the appointment ID.",
			map[string]jsonschema.Definition{
				"patient_id":       str("The patient's numeric ID"),
				"doctor_id":        str("The doctor's numeric ID"),
				"appointment_date": str("Date in YYYY-MM-DD format"),
				"appointment_time": str("Time in HH:MM 24-hour format"),
				"reason":           str("Reason for the visit"),
			},
			[]string{"patient_id", "doctor_id", "appointment_date", "appointment_time", "reason"}),
		fn(NameFindPatientByPhoneAndEmail,
			"Find an existing patient's ID and name using BOTH their 10-digit phone number AND email address.",
			map[string]jsonschema.Definition{
				"phone": str("Patient's 10-digit phone number"),
				"email": str("Patient's email address"),
			},
			[]string{"phone", "email"}),
		fn(NameLookupUpcomingAppointment,
			"Look up the next upcoming scheduled appointment for a patient ID.",
			map[string]jsonschema.Definition{
				"patient_id": str("The patient's numeric ID"),
			},
			[]string{"patient_id"}),
	}
}

func badArgs(name string) string {
	return fmt.Sprintf("Error: Invalid arguments for %s.", name)
}

func statusOf(result string) string {
	if strings.HasPrefix(result, "Error") {
		return "error"
	}
	if strings.HasPrefix(result, "Sorry, this time slot") {
		return "conflict"
	}
	return "ok"
}
