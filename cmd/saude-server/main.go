package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/dedup"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
)

// PatientCandidateSource adapts the registry store to dedup.CandidateSource,
// keeping the dedup package free of registry imports.
type PatientCandidateSource struct {
	store *registry.Store
}

func NewPatientCandidateSource(store *registry.Store) *PatientCandidateSource {
	return &PatientCandidateSource{store: store}
}

// ListPersons implements dedup.CandidateSource.
func (a *PatientCandidateSource) ListPersons(ctx context.Context) ([]dedup.PersonRecord, error) {
	patients, err := a.store.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dedup.PersonRecord, 0, len(patients))
	for _, p := range patients {
		out = append(out, dedup.PersonRecord{
			ID:               p.ID,
			Name:             p.Name,
			MotherName:       p.MotherName,
			MotherNationalID: p.MotherNationalID,
			NationalID:       p.NationalID,
			HealthCardID:     p.HealthCardID,
			BirthDate:        p.BirthDate,
		})
	}
	return out, nil
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "saude-server",
		Short:        "Municipal health registry: duplicate checks, agendas and waitlist",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(dedupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
