package dedup

import (
	"context"
	"errors"
	"time"

	"github.com/Kadu1982/cidade-saude-conexao-digital/pkg/textsim"
)

// CandidateSource lists already-registered persons. Implementations must
// return them in a stable order (insertion order for the in-memory registry).
type CandidateSource interface {
	ListPersons(ctx context.Context) ([]PersonRecord, error)
}

// CandidateSourceFunc adapts a plain function to CandidateSource.
type CandidateSourceFunc func(ctx context.Context) ([]PersonRecord, error)

func (f CandidateSourceFunc) ListPersons(ctx context.Context) ([]PersonRecord, error) {
	return f(ctx)
}

// Matcher finds and classifies probable duplicates. It holds no state between
// calls and is safe for concurrent use.
type Matcher struct {
	threshold float64
	now       func() time.Time
}

type MatcherOption func(*Matcher)

// WithThreshold overrides textsim.DefaultThreshold. Values outside (0,1] are
// ignored.
func WithThreshold(t float64) MatcherOption {
	return func(m *Matcher) {
		if t > 0 && t <= 1 {
			m.threshold = t
		}
	}
}

// WithClock sets the time source used to compute a record's age.
func WithClock(now func() time.Time) MatcherOption {
	return func(m *Matcher) {
		if now != nil {
			m.now = now
		}
	}
}

func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{threshold: textsim.DefaultThreshold, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Matcher) Threshold() float64 { return m.threshold }

func (m *Matcher) similar(a, b string) bool {
	return textsim.IsSimilarWithThreshold(a, b, m.threshold)
}

// Validate runs the policy gate, candidate search and classification for one
// registration. Records exempted by policy come back with Skipped set.
func (m *Matcher) Validate(ctx context.Context, rec PersonRecord, policy ValidationPolicy, source CandidateSource) (ValidationResult, error) {
	if err := CheckRecord(rec); err != nil {
		return ValidationResult{}, err
	}
	if err := Gate(rec, policy, m.now()); err != nil {
		var skip *SkipError
		if errors.As(err, &skip) {
			return skippedResult(skip.Reason), nil
		}
		return ValidationResult{}, err
	}
	candidates, err := m.FindCandidates(ctx, rec, source)
	if err != nil {
		return ValidationResult{}, err
	}
	return m.Classify(rec, candidates), nil
}

// CheckRecord rejects records the matcher cannot work with.
func CheckRecord(rec PersonRecord) error {
	if trimmed(rec.Name) == "" {
		return inputErrorf("name is required")
	}
	if textsim.Normalize(rec.Name) == "" {
		return inputErrorf("name %q has no comparable characters", rec.Name)
	}
	return nil
}

// FindCandidates returns every person whose name, or mother's name when both
// sides have one, is similar to the new record's. Source order is preserved.
func (m *Matcher) FindCandidates(ctx context.Context, rec PersonRecord, source CandidateSource) ([]PersonRecord, error) {
	persons, err := source.ListPersons(ctx)
	if err != nil {
		return nil, err
	}

	candidates := []PersonRecord{}
	for _, existing := range persons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nameMatch := m.similar(rec.Name, existing.Name)
		motherMatch := trimmed(existing.MotherName) != "" &&
			trimmed(rec.MotherName) != "" &&
			m.similar(rec.MotherName, existing.MotherName)
		if nameMatch || motherMatch {
			candidates = append(candidates, existing)
		}
	}
	return candidates, nil
}

// Classify applies the duplicate rules to each candidate in order:
//  1. same mother's national id, similar name and similar mother's name;
//  2. identical normalized name and identical normalized mother's name.
//
// The first candidate satisfying either rule makes the verdict DUPLICATE.
// Rule 2 has no id cross-check and can flag namesakes whose mothers share a
// name too.
func (m *Matcher) Classify(rec PersonRecord, candidates []PersonRecord) ValidationResult {
	if candidates == nil {
		candidates = []PersonRecord{}
	}
	result := ValidationResult{Candidates: candidates, Verdict: VerdictUnique}

	newName := textsim.Normalize(rec.Name)
	newMother := textsim.Normalize(rec.MotherName)
	newMotherID := trimmed(rec.MotherNationalID)

	for _, c := range candidates {
		if newMotherID != "" && newMotherID == trimmed(c.MotherNationalID) &&
			m.similar(rec.Name, c.Name) && m.similar(rec.MotherName, c.MotherName) {
			return duplicateOf(result, c)
		}
		if newName == textsim.Normalize(c.Name) && newMother == textsim.Normalize(c.MotherName) {
			return duplicateOf(result, c)
		}
	}
	return result
}

func duplicateOf(result ValidationResult, c PersonRecord) ValidationResult {
	result.IsDuplicate = true
	result.Verdict = VerdictDuplicate
	result.MatchedID = c.ID
	return result
}

// ShouldValidate reports whether policy requires rec to be checked at now.
func ShouldValidate(rec PersonRecord, policy ValidationPolicy, now time.Time) bool {
	_, skip := SkipReasonFor(rec, policy, now)
	return !skip
}

// SkipReasonFor returns the policy rule exempting rec, if any.
func SkipReasonFor(rec PersonRecord, policy ValidationPolicy, now time.Time) (SkipReason, bool) {
	if !policy.EnableValidation {
		return SkipDisabled, true
	}
	if IsNewborn(rec.BirthDate, now) && !policy.ValidateNewborns {
		return SkipNewborn, true
	}
	if !rec.HasNationalID() && !policy.ValidateWithoutNationalID {
		return SkipNoNationalID, true
	}
	return "", false
}

// Gate is SkipReasonFor expressed as an error wrapping ErrPolicyDisabled.
func Gate(rec PersonRecord, policy ValidationPolicy, now time.Time) error {
	if reason, skip := SkipReasonFor(rec, policy, now); skip {
		return &SkipError{Reason: reason}
	}
	return nil
}

// IsNewborn reports whether a person born at birth is under 12 months old at
// now. An unknown birth date is not a newborn.
func IsNewborn(birth *time.Time, now time.Time) bool {
	if birth == nil || birth.IsZero() {
		return false
	}
	return now.Before(birth.AddDate(1, 0, 0))
}
