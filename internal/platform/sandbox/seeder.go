// Package sandbox loads demo clinic data into a registry store: a fixed set of
// facilities, professionals, patients and agendas that exercise duplicate
// checks and bookings, plus any number of generated patients.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
)

// SeedConfig controls the volume of generated data.
type SeedConfig struct {
	// Demo loads the fixed facilities, professionals, patients and agendas.
	Demo bool `json:"demo"`
	// PatientCount generated patients are added on top of the demo set.
	PatientCount int `json:"patientCount"`
	// SlotsPerSchedule normal slots, 30 minutes apart from 08:00.
	SlotsPerSchedule int    `json:"slotsPerSchedule"`
	Seed             uint64 `json:"seed"`
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{Demo: true, SlotsPerSchedule: 8}
}

type SeedResult struct {
	Facilities    int           `json:"facilities"`
	Professionals int           `json:"professionals"`
	Patients      int           `json:"patients"`
	Quotas        int           `json:"quotas"`
	Schedules     int           `json:"schedules"`
	Slots         int           `json:"slots"`
	Duration      time.Duration `json:"duration"`
}

// Seeder writes into a registry store.
type Seeder struct {
	store  *registry.Store
	now    func() time.Time
	logger zerolog.Logger
}

func NewSeeder(store *registry.Store, logger zerolog.Logger) *Seeder {
	return &Seeder{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "sandbox").Logger(),
	}
}

// Seed loads the data described by cfg. Seeding the demo set twice fails
// with registry.ErrAlreadyExists on the first repeated id.
func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*SeedResult, error) {
	start := time.Now()
	res := &SeedResult{}

	if cfg.Demo {
		if err := s.seedDemo(ctx, cfg, res); err != nil {
			return nil, err
		}
	}
	if cfg.PatientCount > 0 {
		gen := NewPatientGenerator(cfg.Seed)
		for i := 0; i < cfg.PatientCount; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p := gen.Patient(s.now())
			if err := s.store.AddPatient(ctx, p); err != nil {
				return nil, fmt.Errorf("seed generated patient %d: %w", i, err)
			}
			res.Patients++
		}
	}

	res.Duration = time.Since(start)
	s.logger.Info().
		Int("facilities", res.Facilities).
		Int("professionals", res.Professionals).
		Int("patients", res.Patients).
		Int("schedules", res.Schedules).
		Int("slots", res.Slots).
		Dur("duration", res.Duration).
		Msg("sandbox data seeded")
	return res, nil
}

func (s *Seeder) seedDemo(ctx context.Context, cfg SeedConfig, res *SeedResult) error {
	for _, f := range demoFacilities() {
		if err := s.store.AddFacility(ctx, f); err != nil {
			return fmt.Errorf("seed facility %s: %w", f.ID, err)
		}
		res.Facilities++
	}
	for _, p := range demoProfessionals() {
		if err := s.store.AddProfessional(ctx, p); err != nil {
			return fmt.Errorf("seed professional %s: %w", p.ID, err)
		}
		res.Professionals++
	}
	for _, p := range demoPatients() {
		if err := s.store.AddPatient(ctx, p); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
		res.Patients++
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	slots := cfg.SlotsPerSchedule
	if slots <= 0 {
		slots = DefaultSeedConfig().SlotsPerSchedule
	}

	for i, a := range demoAgendas() {
		q := &registry.Quota{
			ID:             fmt.Sprintf("cota%03d", i+1),
			FacilityID:     a.facilityID,
			ProfessionalID: a.professionalID,
			Specialty:      a.specialty,
			Period:         registry.PeriodMonthly,
			Total:          a.quota,
			ValidFrom:      monthStart,
			ValidTo:        monthStart.AddDate(0, 1, 0).Add(-time.Second),
			Contract:       registry.ContractSUS,
			Active:         true,
		}
		if err := s.store.AddQuota(ctx, q); err != nil {
			return fmt.Errorf("seed quota %s: %w", q.ID, err)
		}
		res.Quotas++

		sc := &registry.Schedule{
			ID:             fmt.Sprintf("ag%03d", i+1),
			ProfessionalID: a.professionalID,
			FacilityID:     a.facilityID,
			Specialty:      a.specialty,
			Date:           day,
			QuotaID:        q.ID,
		}
		if err := s.store.AddSchedule(ctx, sc); err != nil {
			return fmt.Errorf("seed schedule %s: %w", sc.ID, err)
		}
		res.Schedules++

		for j := 0; j < slots; j++ {
			sl := &registry.Slot{
				ID:         fmt.Sprintf("%s-slot%02d", sc.ID, j+1),
				ScheduleID: sc.ID,
				Start:      day.Add(8*time.Hour + time.Duration(j)*30*time.Minute),
				Type:       registry.SlotNormal,
			}
			if err := s.store.AddSlot(ctx, sl); err != nil {
				return fmt.Errorf("seed slot %s: %w", sl.ID, err)
			}
			res.Slots++
		}
		enc := &registry.Slot{
			ID:         sc.ID + "-encaixe",
			ScheduleID: sc.ID,
			Start:      day.Add(12 * time.Hour),
			Type:       registry.SlotEncaixe,
			Capacity:   2,
		}
		if err := s.store.AddSlot(ctx, enc); err != nil {
			return fmt.Errorf("seed slot %s: %w", enc.ID, err)
		}
		res.Slots++
	}
	return nil
}

// PatientGenerator produces synthetic patients. The same seed yields the same
// sequence of names and documents.
type PatientGenerator struct {
	faker *gofakeit.Faker
}

func NewPatientGenerator(seed uint64) *PatientGenerator {
	return &PatientGenerator{faker: gofakeit.New(seed)}
}

func (g *PatientGenerator) Patient(now time.Time) *registry.Patient {
	f := g.faker
	last := f.LastName()
	birth := f.DateRange(now.AddDate(-90, 0, 0), now.AddDate(0, 0, -1))
	birth = time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	return &registry.Patient{
		Name:             f.FirstName() + " " + last,
		MotherName:       f.FirstName() + " " + last,
		MotherNationalID: f.Numerify("###.###.###-##"),
		NationalID:       f.Numerify("###.###.###-##"),
		HealthCardID:     f.Numerify("7##############"),
		BirthDate:        &birth,
		Sex:              f.RandomString([]string{"M", "F"}),
		Phone:            f.Numerify("(11) 9####-####"),
		Email:            f.Email(),
		Address:          f.Street(),
		Priority:         registry.PriorityNormal,
	}
}
