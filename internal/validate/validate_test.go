package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone("9876543210"))
	assert.Error(t, Phone("98765"))
	assert.Error(t, Phone("98765432101"))
	assert.Error(t, Phone("98765abcde"))
	assert.Error(t, Phone(""))
	assert.Error(t, Phone("987654321 "))
	assert.Error(t, Phone("+919876543210"))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("jane@example.com"))
	assert.NoError(t, Email("jane.doe+tag@mail.example.co"))
	assert.Error(t, Email("jane@example"))
	assert.Error(t, Email("jane.example.com"))
	assert.Error(t, Email("@example.com"))
	assert.Error(t, Email("jane @example.com"))
	assert.Error(t, Email(""))
}

func TestDate(t *testing.T) {
	assert.NoError(t, Date("2025-11-06"))
	assert.Error(t, Date("2025-13-45"), "month 13 is not a real date")
	assert.Error(t, Date("2025-02-30"))
	assert.Error(t, Date("06-11-2025"))
	assert.Error(t, Date("2025-1-6"))
	assert.Error(t, Date("2025-11-06; DROP TABLE appointments"))
}

func TestClockTime(t *testing.T) {
	assert.NoError(t, ClockTime("09:00"))
	assert.NoError(t, ClockTime("16:30"))
	assert.Error(t, ClockTime("9:00"))
	assert.Error(t, ClockTime("09:00:00"))
	assert.Error(t, ClockTime("noon"))
}

func TestDateTime(t *testing.T) {
	ts, err := DateTime("2025-11-06", "16:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-06 16:00:00", ts.Format("2006-01-02 15:04:05"))

	_, err = DateTime("2025-11-06", "25:00")
	assert.Error(t, err, "hour 25 does not parse as a real moment")

	_, err = DateTime("2025-13-45", "09:00")
	assert.Error(t, err)
}

func TestAge(t *testing.T) {
	n, err := Age("34")
	require.NoError(t, err)
	assert.Equal(t, 34, n)

	_, err = Age("0")
	assert.Error(t, err)
	_, err = Age("121")
	assert.Error(t, err)
	_, err = Age("-5")
	assert.Error(t, err)
	_, err = Age("thirty")
	assert.Error(t, err)

	n, err = Age(" 120 ")
	require.NoError(t, err)
	assert.Equal(t, 120, n)
}

func TestGender(t *testing.T) {
	assert.NoError(t, Gender("Male"))
	assert.NoError(t, Gender("Female"))
	assert.Error(t, Gender("male"))
	assert.Error(t, Gender("F"))
	assert.Error(t, Gender(""))
}

func TestSpecialtyAllowList(t *testing.T) {
	for _, s := range Specialties {
		assert.NoError(t, Specialty(s))
	}
	assert.Error(t, Specialty("Cardiology'; DROP TABLE doctors; --"))
	assert.Error(t, Specialty("cardiology"))
	assert.Error(t, Specialty("EMERGENCY"))
	assert.Error(t, Specialty(""))
}

func TestID(t *testing.T) {
	n, err := ID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = ID("0")
	assert.Error(t, err)
	_, err = ID("-1")
	assert.Error(t, err)
	_, err = ID("forty two")
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "O'Brien", CleanText("  O'Brien \n"), "quotes survive; parameters handle them")
	assert.Equal(t, "chest pain", CleanText("chest\x00 pain\x1b"))

	long := strings.Repeat("a", 600)
	assert.Len(t, CleanText(long), 500)
}

func TestValidatorsAreDeterministic(t *testing.T) {
	inputs := []string{"9876543210", "98765", "hello", ""}
	for _, in := range inputs {
		first := Phone(in)
		second := Phone(in)
		if (first == nil) != (second == nil) {
			t.Fatalf("verdict changed between calls for %q", in)
		}
	}
}
