// Package validate holds the pure input checks that gate every tool before it
// touches the database. All functions are deterministic and side-effect free.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	phoneRe = regexp.MustCompile(`^\d{10}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Specialties is the closed set of specialties the booking flow recognizes.
// Membership is checked before any specialty value reaches a query.
var Specialties = []string{
	"Cardiology", "Pediatrics", "Orthopedics", "Dermatology", "Neurology",
	"General Physician", "Psychiatry", "Gynecology", "Gastroenterology",
	"Pulmonology", "Urology", "Ophthalmology", "Endocrinology", "Nephrology",
}

var specialtySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Specialties))
	for _, s := range Specialties {
		set[s] = struct{}{}
	}
	return set
}()

// Phone requires exactly 10 ASCII digits.
func Phone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return errors.New("phone must be exactly 10 digits")
	}
	return nil
}

// Email requires a minimal local@domain.tld shape.
func Email(email string) error {
	if !emailRe.MatchString(email) {
		return errors.New("invalid email address format")
	}
	return nil
}

// Date requires the literal YYYY-MM-DD shape and a real calendar date.
func Date(date string) error {
	if !dateRe.MatchString(date) {
		return errors.New("date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%q is not a valid calendar date", date)
	}
	return nil
}

// ClockTime requires the literal HH:MM 24-hour shape.
func ClockTime(t string) error {
	if !timeRe.MatchString(t) {
		return errors.New("time must be in HH:MM (24-hour) format")
	}
	return nil
}

// DateTime combines a validated date and time into a timestamp, rejecting
// combinations that do not parse as a real moment (e.g. 25:00).
func DateTime(date, clock string) (time.Time, error) {
	if err := Date(date); err != nil {
		return time.Time{}, err
	}
	if err := ClockTime(clock); err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse("2006-01-02 15:04:05", date+" "+clock+":00")
	if err != nil {
		return time.Time{}, errors.New("invalid date or time")
	}
	return ts, nil
}

// Age coerces the value to an integer in [1, 120].
func Age(age string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(age))
	if err != nil {
		return 0, errors.New("age must be a number")
	}
	if n <= 0 || n > 120 {
		return 0, errors.New("age must be between 1 and 120")
	}
	return n, nil
}

// Gender accepts exactly "Male" or "Female".
func Gender(gender string) error {
	if gender != "Male" && gender != "Female" {
		return errors.New("gender must be 'Male' or 'Female'")
	}
	return nil
}

// Specialty checks membership in the fixed allow-list. This is the primary
// firewall for the specialty value: anything outside the list never reaches
// the doctors query.
func Specialty(specialty string) error {
	if _, ok := specialtySet[specialty]; !ok {
		return fmt.Errorf("specialty %q is not recognized", specialty)
	}
	return nil
}

// ID coerces an identifier supplied as text by the planner to a positive integer.
func ID(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("identifier must be a positive number")
	}
	return n, nil
}

// CleanText normalizes free-text fields destined for storage: trims whitespace,
// strips control characters, and caps length. Queries are parameterized, so no
// quote escaping is applied here.
func CleanText(s string) string {
	const maxLen = 500
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
