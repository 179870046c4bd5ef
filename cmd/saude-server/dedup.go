package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/config"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/dedup"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/domain/registry"
	"github.com/Kadu1982/cidade-saude-conexao-digital/internal/platform/sandbox"
)

func dedupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Check one registration against existing patients and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			recordPath, _ := cmd.Flags().GetString("record")
			patientsPath, _ := cmd.Flags().GetString("patients")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			req, err := readRegistration(recordPath)
			if err != nil {
				return err
			}
			source, err := candidateSource(cmd, patientsPath)
			if err != nil {
				return err
			}

			svc := dedup.NewService(source, dedup.ServiceConfig{
				Policy:    policyFromConfig(cfg),
				Threshold: cfg.MatchThreshold,
				Timeout:   cfg.MatchTimeout,
			}, zerolog.Nop(), nil)

			result, err := svc.ValidateRequest(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().String("record", "", "JSON file with the registration to check")
	cmd.Flags().String("patients", "", "JSON array of existing patients (defaults to the demo registry)")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func readRegistration(path string) (*dedup.RegistrationRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	var req dedup.RegistrationRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", path, err)
	}
	return &req, nil
}

// candidateSource reads existing patients from path, or seeds the demo
// registry when path is empty. File records go straight into the repository:
// a registry export may already hold patients sharing a document, and those
// are the ones worth checking.
func candidateSource(cmd *cobra.Command, path string) (dedup.CandidateSource, error) {
	if path == "" {
		store := registry.NewStore()
		if _, err := sandbox.NewSeeder(store, zerolog.Nop()).Seed(cmd.Context(), sandbox.SeedConfig{Demo: true}); err != nil {
			return nil, err
		}
		return NewPatientCandidateSource(store), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patients: %w", err)
	}
	var patients []*registry.Patient
	if err := json.Unmarshal(b, &patients); err != nil {
		return nil, fmt.Errorf("decode patients %s: %w", path, err)
	}
	repo := registry.NewMemoryPatientRepo()
	for i, p := range patients {
		if p == nil {
			continue
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = uuid.NewString()
		}
		if err := repo.Create(cmd.Context(), p); err != nil {
			return nil, fmt.Errorf("load patient #%d (%s): %w", i+1, p.ID, err)
		}
	}
	return NewPatientCandidateSource(registry.NewStore(registry.WithPatientRepository(repo))), nil
}
