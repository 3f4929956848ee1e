// Package validator performs structural validation of applicant identity
// data, including SA ID number decomposition and checksum verification.
package validator

import (
	"fmt"
	"strconv"

	"github.com/asaskevich/govalidator"

	"finrisk/internal/applicant/models"
)

// Violation is one independently reported validation failure. All violations
// are collected so callers can present every problem at once.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Violation codes.
const (
	CodeRequired        = "required"
	CodeTooLong         = "too_long"
	CodeInvalidChars    = "invalid_characters"
	CodeInvalidLength   = "invalid_length"
	CodeInvalidDigits   = "invalid_digits"
	CodeInvalidDate     = "invalid_date"
	CodeInvalidChecksum = "invalid_checksum"
)

// Violations is the full list of failures for one input. It implements error
// so services can propagate it, and ErrorDetails so the transport layer can
// attach it to the failure envelope.
type Violations []Violation

func (v Violations) Error() string {
	return fmt.Sprintf("input validation failed: %d violation(s)", len(v))
}

// ErrorDetails exposes the violations for the response envelope.
func (v Violations) ErrorDetails() any {
	return []Violation(v)
}

const (
	maxNameLength  = 100
	idNumberLength = 13
	namePattern    = `^[A-Za-z \-]+$`
)

// Validator checks applicant input. It is pure and safe for concurrent use.
type Validator struct {
	checksumEnabled bool
}

// New constructs a Validator. checksumEnabled controls whether the ID check
// digit is verified; the rule is deployment-configurable because product
// revisions disagree on whether it is live.
func New(checksumEnabled bool) *Validator {
	return &Validator{checksumEnabled: checksumEnabled}
}

// Validate checks the input and, when the ID number is structurally valid,
// returns its decomposition. Identical input always yields an identical
// outcome. A non-nil Violations return means the input must be rejected.
func (v *Validator) Validate(in models.ApplicantInput) (models.IDNumberComponents, Violations) {
	var violations Violations

	violations = append(violations, checkName("firstName", in.FirstName)...)
	violations = append(violations, checkName("lastName", in.LastName)...)

	components, idViolations := v.checkIDNumber(in.IDNumber)
	violations = append(violations, idViolations...)

	if len(violations) > 0 {
		return models.IDNumberComponents{}, violations
	}
	return components, nil
}

func checkName(field, value string) Violations {
	var out Violations
	if value == "" {
		out = append(out, Violation{
			Field:   field,
			Message: "must not be empty",
			Code:    CodeRequired,
		})
		return out
	}
	if !govalidator.StringLength(value, "1", strconv.Itoa(maxNameLength)) {
		out = append(out, Violation{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", maxNameLength),
			Code:    CodeTooLong,
		})
	}
	if !govalidator.Matches(value, namePattern) {
		out = append(out, Violation{
			Field:   field,
			Message: "must contain only letters, spaces, and hyphens",
			Code:    CodeInvalidChars,
		})
	}
	return out
}

func (v *Validator) checkIDNumber(id string) (models.IDNumberComponents, Violations) {
	var out Violations

	if len(id) != idNumberLength {
		out = append(out, Violation{
			Field:   "idNumber",
			Message: fmt.Sprintf("must be exactly %d digits", idNumberLength),
			Code:    CodeInvalidLength,
		})
	}
	if id != "" && !govalidator.IsNumeric(id) {
		out = append(out, Violation{
			Field:   "idNumber",
			Message: "must contain only digits",
			Code:    CodeInvalidDigits,
		})
	}
	if len(out) > 0 {
		// Structurally broken: decomposition and checksum are meaningless.
		return models.IDNumberComponents{}, out
	}

	components := decompose(id)

	if !validBirthDate(components.BirthDate) {
		out = append(out, Violation{
			Field:   "idNumber",
			Message: "birth date portion is not a valid YYMMDD value",
			Code:    CodeInvalidDate,
		})
	}

	// The checksum verdict is independent of the date check and reported as
	// its own violation.
	if v.checksumEnabled && !luhnValid(id) {
		out = append(out, Violation{
			Field:   "idNumber",
			Message: "checksum digit is inconsistent with the preceding digits",
			Code:    CodeInvalidChecksum,
		})
	}

	if len(out) > 0 {
		return models.IDNumberComponents{}, out
	}
	return components, nil
}

func decompose(id string) models.IDNumberComponents {
	return models.IDNumberComponents{
		BirthDate:       id[0:6],
		Sequence:        id[6:10],
		Citizenship:     int(id[10] - '0'),
		LegacyRaceDigit: int(id[11] - '0'),
		Checksum:        int(id[12] - '0'),
	}
}

func validBirthDate(yymmdd string) bool {
	month, _ := strconv.Atoi(yymmdd[2:4])
	day, _ := strconv.Atoi(yymmdd[4:6])
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

// luhnValid verifies the final digit is the Luhn check digit over the
// preceding twelve: doubling every second digit from the right, the digit sum
// of the full number must be divisible by ten.
func luhnValid(id string) bool {
	sum := 0
	double := false
	for i := len(id) - 1; i >= 0; i-- {
		d := int(id[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
