package dedup

import "time"

// PersonRecord is the identity slice of a registration that the matcher
// compares. Only Name is required.
type PersonRecord struct {
	ID               string     `json:"id,omitempty"`
	Name             string     `json:"name"`
	MotherName       string     `json:"motherName,omitempty"`
	MotherNationalID string     `json:"motherNationalId,omitempty"`
	NationalID       string     `json:"nationalId,omitempty"`
	HealthCardID     string     `json:"healthCardId,omitempty"`
	BirthDate        *time.Time `json:"birthDate,omitempty"`
}

// HasNationalID reports whether the record carries its own national id.
func (p PersonRecord) HasNationalID() bool {
	return trimmed(p.NationalID) != ""
}

// ValidationPolicy decides which registrations go through duplicate checks.
type ValidationPolicy struct {
	EnableValidation          bool `json:"enableValidation"`
	ValidateNewborns          bool `json:"validateNewborns"`
	ValidateWithoutNationalID bool `json:"validateWithoutNationalId"`
}

// DefaultPolicy validates every registration.
func DefaultPolicy() ValidationPolicy {
	return ValidationPolicy{
		EnableValidation:          true,
		ValidateNewborns:          true,
		ValidateWithoutNationalID: true,
	}
}

type Verdict string

const (
	VerdictUnique    Verdict = "UNIQUE"
	VerdictDuplicate Verdict = "DUPLICATE"
)

// SkipReason names the policy rule that exempted a record from validation.
type SkipReason string

const (
	SkipDisabled     SkipReason = "disabled"
	SkipNewborn      SkipReason = "newborn"
	SkipNoNationalID SkipReason = "no-national-id"
)

// ValidationResult is the outcome of a duplicate check. Candidates keeps the
// order in which the candidate source returned them and is attached even when
// the verdict is UNIQUE so a clerk can review near matches.
type ValidationResult struct {
	IsDuplicate bool           `json:"isDuplicate"`
	Candidates  []PersonRecord `json:"candidates"`
	Verdict     Verdict        `json:"verdict"`
	MatchedID   string         `json:"matchedId,omitempty"`
	Skipped     bool           `json:"skipped"`
	SkipReason  SkipReason     `json:"skipReason,omitempty"`
}

func skippedResult(reason SkipReason) ValidationResult {
	return ValidationResult{
		Candidates: []PersonRecord{},
		Verdict:    VerdictUnique,
		Skipped:    true,
		SkipReason: reason,
	}
}
