package dedup

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type RegistrationKind string

const (
	KindNewborn  RegistrationKind = "newborn"
	KindStandard RegistrationKind = "standard"
)

// Registration is a validated registration of either kind.
type Registration interface {
	Kind() RegistrationKind
	Record() PersonRecord
}

// NewbornRegistration covers children under 12 months, who usually have no
// documents of their own and are identified through the mother.
type NewbornRegistration struct {
	Name             string    `validate:"required"`
	MotherName       string    `validate:"required"`
	MotherNationalID string    `validate:"required"`
	BirthDate        time.Time `validate:"required"`
	HealthCardID     string
}

func (r NewbornRegistration) Kind() RegistrationKind { return KindNewborn }

func (r NewbornRegistration) Record() PersonRecord {
	birth := r.BirthDate
	return PersonRecord{
		Name:             r.Name,
		MotherName:       r.MotherName,
		MotherNationalID: r.MotherNationalID,
		HealthCardID:     r.HealthCardID,
		BirthDate:        &birth,
	}
}

// StandardRegistration covers everyone else. Only the name is mandatory.
type StandardRegistration struct {
	Name             string `validate:"required"`
	NationalID       string
	HealthCardID     string
	MotherName       string
	MotherNationalID string
	BirthDate        *time.Time
}

func (r StandardRegistration) Kind() RegistrationKind { return KindStandard }

func (r StandardRegistration) Record() PersonRecord {
	return PersonRecord{
		Name:             r.Name,
		NationalID:       r.NationalID,
		HealthCardID:     r.HealthCardID,
		MotherName:       r.MotherName,
		MotherNationalID: r.MotherNationalID,
		BirthDate:        r.BirthDate,
	}
}

// PolicyOverride carries optional per-request policy flags. Nil fields fall
// back to the configured policy.
type PolicyOverride struct {
	EnableValidation          *bool `json:"enableValidation,omitempty"`
	ValidateNewborns          *bool `json:"validateNewborns,omitempty"`
	ValidateWithoutNationalID *bool `json:"validateWithoutNationalId,omitempty"`
}

// Apply returns base with every set flag of o replaced.
func (o *PolicyOverride) Apply(base ValidationPolicy) ValidationPolicy {
	if o == nil {
		return base
	}
	if o.EnableValidation != nil {
		base.EnableValidation = *o.EnableValidation
	}
	if o.ValidateNewborns != nil {
		base.ValidateNewborns = *o.ValidateNewborns
	}
	if o.ValidateWithoutNationalID != nil {
		base.ValidateWithoutNationalID = *o.ValidateWithoutNationalID
	}
	return base
}

// RegistrationRequest is the wire form of POST /validate-duplicate. Policy
// flags may be sent at the top level or inside "policy"; the nested object
// wins.
type RegistrationRequest struct {
	Kind             string `json:"kind"`
	Name             string `json:"name"`
	MotherName       string `json:"motherName"`
	MotherNationalID string `json:"motherNationalId"`
	NationalID       string `json:"nationalId"`
	HealthCardID     string `json:"healthCardId"`
	BirthDate        string `json:"birthDate"`
	PolicyOverride
	Policy *PolicyOverride `json:"policy,omitempty"`
}

// EffectivePolicy merges the request's flags over base.
func (req *RegistrationRequest) EffectivePolicy(base ValidationPolicy) ValidationPolicy {
	return req.Policy.Apply(req.PolicyOverride.Apply(base))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Resolve turns the request into a validated Registration. Without an explicit
// kind, a birth date under 12 months before now selects the newborn variant.
func (req *RegistrationRequest) Resolve(now time.Time) (Registration, error) {
	birth, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	kind := RegistrationKind(strings.ToLower(trimmed(req.Kind)))
	if kind == "" {
		kind = KindStandard
		if IsNewborn(birth, now) {
			kind = KindNewborn
		}
	}

	var reg Registration
	switch kind {
	case KindNewborn:
		nb := NewbornRegistration{
			Name:             trimmed(req.Name),
			MotherName:       trimmed(req.MotherName),
			MotherNationalID: trimmed(req.MotherNationalID),
			HealthCardID:     trimmed(req.HealthCardID),
		}
		if birth != nil {
			nb.BirthDate = *birth
		}
		reg = nb
	case KindStandard:
		reg = StandardRegistration{
			Name:             trimmed(req.Name),
			NationalID:       trimmed(req.NationalID),
			HealthCardID:     trimmed(req.HealthCardID),
			MotherName:       trimmed(req.MotherName),
			MotherNationalID: trimmed(req.MotherNationalID),
			BirthDate:        birth,
		}
	default:
		return nil, inputErrorf("unknown registration kind %q", req.Kind)
	}

	if err := validate.Struct(reg); err != nil {
		return nil, validationError(err)
	}
	if err := CheckRecord(reg.Record()); err != nil {
		return nil, err
	}
	return reg, nil
}

func parseBirthDate(s string) (*time.Time, error) {
	s = trimmed(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, inputErrorf("birthDate %q is not a date (expected YYYY-MM-DD)", s)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return inputErrorf("%s", strings.Join(msgs, "; "))
}
