package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finrisk/internal/applicant/models"
)

// Luhn-valid SA ID numbers used across the tests.
const (
	validID       = "8001015009087"
	validIDFemale = "9001011234084"
	badChecksumID = "9001011234088" // correct check digit would be 4
)

func input(first, last, id string) models.ApplicantInput {
	return models.ApplicantInput{FirstName: first, LastName: last, IDNumber: id}
}

func codes(v Violations) []string {
	out := make([]string, 0, len(v))
	for _, violation := range v {
		out = append(out, violation.Code)
	}
	return out
}

func TestValidate_ValidInput(t *testing.T) {
	v := New(true)

	components, violations := v.Validate(input("Jane", "Doe", validID))
	require.Nil(t, violations)

	assert.Equal(t, "800101", components.BirthDate)
	assert.Equal(t, "5009", components.Sequence)
	assert.Equal(t, 0, components.Citizenship)
	assert.Equal(t, 8, components.LegacyRaceDigit)
	assert.Equal(t, 7, components.Checksum)
}

func TestValidate_NamesWithSpacesAndHyphens(t *testing.T) {
	v := New(true)

	_, violations := v.Validate(input("Anne-Marie", "van der Merwe", validIDFemale))
	assert.Nil(t, violations)
}

func TestValidate_NameViolations(t *testing.T) {
	v := New(true)

	t.Run("empty names", func(t *testing.T) {
		_, violations := v.Validate(input("", "", validID))
		require.Len(t, violations, 2)
		assert.Equal(t, "firstName", violations[0].Field)
		assert.Equal(t, CodeRequired, violations[0].Code)
		assert.Equal(t, "lastName", violations[1].Field)
	})

	t.Run("name too long", func(t *testing.T) {
		_, violations := v.Validate(input(strings.Repeat("a", 101), "Doe", validID))
		require.Len(t, violations, 1)
		assert.Equal(t, CodeTooLong, violations[0].Code)
	})

	t.Run("invalid characters", func(t *testing.T) {
		_, violations := v.Validate(input("J4ne", "O'Brien", validID))
		require.Len(t, violations, 2)
		assert.Equal(t, CodeInvalidChars, violations[0].Code)
		assert.Equal(t, CodeInvalidChars, violations[1].Code)
	})
}

func TestValidate_IDNumberStructure(t *testing.T) {
	v := New(true)

	t.Run("too short", func(t *testing.T) {
		_, violations := v.Validate(input("Jane", "Doe", "123"))
		require.Len(t, violations, 1)
		assert.Equal(t, "idNumber", violations[0].Field)
		assert.Equal(t, CodeInvalidLength, violations[0].Code)
	})

	t.Run("non-digits", func(t *testing.T) {
		_, violations := v.Validate(input("Jane", "Doe", "80010150090A7"))
		assert.Contains(t, codes(violations), CodeInvalidDigits)
	})

	t.Run("invalid month", func(t *testing.T) {
		// Same digits as validID reordered would break the checksum too, so
		// disable it to isolate the date check.
		lenient := New(false)
		_, violations := lenient.Validate(input("Jane", "Doe", "8013015009087"))
		require.Len(t, violations, 1)
		assert.Equal(t, CodeInvalidDate, violations[0].Code)
	})

	t.Run("invalid day", func(t *testing.T) {
		lenient := New(false)
		_, violations := lenient.Validate(input("Jane", "Doe", "8001325009087"))
		require.Len(t, violations, 1)
		assert.Equal(t, CodeInvalidDate, violations[0].Code)
	})
}

func TestValidate_Checksum(t *testing.T) {
	t.Run("bad check digit rejected when enforced", func(t *testing.T) {
		v := New(true)
		_, violations := v.Validate(input("Jane", "Doe", badChecksumID))
		require.Len(t, violations, 1)
		assert.Equal(t, CodeInvalidChecksum, violations[0].Code)
	})

	t.Run("bad check digit accepted when disabled", func(t *testing.T) {
		v := New(false)
		components, violations := v.Validate(input("Jane", "Doe", badChecksumID))
		assert.Nil(t, violations)
		assert.Equal(t, "900101", components.BirthDate)
	})
}

// Any single-digit mutation of a valid ID must fail validation, either on the
// checksum or on a structural rule.
func TestValidate_SingleDigitMutationDetected(t *testing.T) {
	v := New(true)

	for pos := 0; pos < len(validID); pos++ {
		mutated := []byte(validID)
		mutated[pos] = '0' + byte((int(mutated[pos]-'0')+1)%10)

		_, violations := v.Validate(input("Jane", "Doe", string(mutated)))
		assert.NotNil(t, violations, "mutation at position %d slipped through: %s", pos, mutated)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	v := New(true)

	_, violations := v.Validate(input("", "D0e!", "12x"))
	got := codes(violations)

	assert.Contains(t, got, CodeRequired)
	assert.Contains(t, got, CodeInvalidChars)
	assert.Contains(t, got, CodeInvalidLength)
	assert.Contains(t, got, CodeInvalidDigits)
}

func TestValidate_Deterministic(t *testing.T) {
	v := New(true)
	in := input("Jane", "Doe", badChecksumID)

	first, firstViolations := v.Validate(in)
	second, secondViolations := v.Validate(in)

	assert.Equal(t, first, second)
	assert.Equal(t, firstViolations, secondViolations)
}
