package sandbox

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
)

var seedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newTestSeeder() (*Seeder, *registry.Store) {
	store := registry.NewStore(registry.WithClock(func() time.Time { return seedNow }))
	s := NewSeeder(store, zerolog.Nop())
	s.now = func() time.Time { return seedNow }
	return s, store
}

func TestSeed_Demo(t *testing.T) {
	s, store := newTestSeeder()
	ctx := context.Background()

	res, err := s.Seed(ctx, DefaultSeedConfig())
	require.NoError(t, err)

	assert.Equal(t, len(demoFacilities()), res.Facilities)
	assert.Equal(t, len(demoProfessionals()), res.Professionals)
	assert.Equal(t, len(demoPatients()), res.Patients)
	assert.Equal(t, len(demoAgendas()), res.Quotas)
	assert.Equal(t, len(demoAgendas()), res.Schedules)
	assert.Equal(t, len(demoAgendas())*9, res.Slots)

	jose, err := store.GetPatientByNationalID(ctx, "123.456.789-01")
	require.NoError(t, err)
	assert.Equal(t, "José da Silva", jose.Name)
	assert.Equal(t, "111.222.333-44", jose.MotherNationalID)

	schedules, err := store.ListAvailableSchedules(ctx, "Cardiologia", seedNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "med004", schedules[0].ProfessionalID)

	ok, err := store.HasQuotaAvailable(ctx, "ubs001", "Pediatria")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSeed_DemoIsBookable(t *testing.T) {
	s, store := newTestSeeder()
	ctx := context.Background()
	_, err := s.Seed(ctx, DefaultSeedConfig())
	require.NoError(t, err)

	appt, err := store.AddAppointment(ctx, registry.BookingRequest{PatientID: "pac001", SlotID: "ag003-slot01"})
	require.NoError(t, err)
	assert.Equal(t, "ag003", appt.ScheduleID)

	_, err = store.AddAppointment(ctx, registry.BookingRequest{PatientID: "pac002", SlotID: "ag003-slot01"})
	assert.ErrorIs(t, err, registry.ErrCapacityExceeded)

	for _, id := range []string{"pac002", "pac003"} {
		_, err = store.AddAppointment(ctx, registry.BookingRequest{PatientID: id, SlotID: "ag003-encaixe"})
		require.NoError(t, err)
	}
}

func TestSeed_Twice(t *testing.T) {
	s, _ := newTestSeeder()
	ctx := context.Background()
	_, err := s.Seed(ctx, DefaultSeedConfig())
	require.NoError(t, err)

	_, err = s.Seed(ctx, DefaultSeedConfig())
	assert.ErrorIs(t, err, registry.ErrAlreadyExists)
}

func TestSeed_GeneratedPatients(t *testing.T) {
	s, store := newTestSeeder()
	ctx := context.Background()

	res, err := s.Seed(ctx, SeedConfig{PatientCount: 25, Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, 25, res.Patients)
	assert.Zero(t, res.Facilities)

	patients, err := store.ListPatients(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 25)
	for _, p := range patients {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.Regexp(t, `^\d{3}\.\d{3}\.\d{3}-\d{2}$`, p.NationalID)
		require.NotNil(t, p.BirthDate)
		assert.True(t, p.BirthDate.Before(seedNow))
	}
}

func TestSeed_Cancelled(t *testing.T) {
	s, _ := newTestSeeder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Seed(ctx, SeedConfig{PatientCount: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPatientGenerator_Deterministic(t *testing.T) {
	a := NewPatientGenerator(42).Patient(seedNow)
	b := NewPatientGenerator(42).Patient(seedNow)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.NationalID, b.NationalID)
	assert.Equal(t, a.BirthDate, b.BirthDate)
	assert.Len(t, a.HealthCardID, 15)
}
