// Package models holds the applicant validation domain types.
package models

import "fmt"

// ApplicantInput is the identity data submitted for one validation call.
// Immutable once constructed; discarded after the call completes.
type ApplicantInput struct {
	FirstName string
	LastName  string
	IDNumber  string
}

// IDNumberComponents is the decomposition of a structurally valid SA ID
// number. It exists only during validation and is never returned to callers.
type IDNumberComponents struct {
	BirthDate       string // YYMMDD
	Sequence        string // 4 digits
	Citizenship     int    // 0 = citizen, 1 = permanent resident
	LegacyRaceDigit int    // historical, usually 8 or 9
	Checksum        int    // Luhn check digit over the preceding 12
}

// RiskLevel is the categorical fraud-risk classification.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"      // proceed with standard processing
	RiskLevelMedium   RiskLevel = "MEDIUM"   // request additional documentation
	RiskLevelHigh     RiskLevel = "HIGH"     // escalate to manual review
	RiskLevelCritical RiskLevel = "CRITICAL" // decline or escalate to fraud team
)

// RiskLevelFromScore classifies a 0-100 risk score. Band lower bounds are
// inclusive: 29 is LOW, 30 is MEDIUM, 59 is MEDIUM, 60 is HIGH, 80 is
// CRITICAL. A score outside 0-100 is a programming error, not a user-facing
// condition, and panics.
func RiskLevelFromScore(score int) RiskLevel {
	if score < 0 || score > 100 {
		panic(fmt.Sprintf("risk score out of range: %d", score))
	}
	switch {
	case score < 30:
		return RiskLevelLow
	case score < 60:
		return RiskLevelMedium
	case score < 80:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// ValidationResult is the orchestrator's successful output.
type ValidationResult struct {
	RiskScore      int
	RiskLevel      RiskLevel
	CorrelationID  string
	AdditionalData map[string]any
}
