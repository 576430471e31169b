package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amckenna/college-planner/internal/observability"
	"github.com/amckenna/college-planner/internal/roadmap"
	"github.com/amckenna/college-planner/internal/types"
)

var (
	generateProfile string
	generateSchools string
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a roadmap offline from a profile file",
	Long: `Generate a rule-based roadmap from a student profile JSON file without a
server or database. Deadlines come from an optional school records file;
schools without a record get a synthetic planning deadline.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Path to student profile JSON file (required)")
	generateCmd.Flags().StringVar(&generateSchools, "schools", "", "Path to school records JSON file")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Print profile and deadline details")
	_ = generateCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	profile, err := loadProfile(generateProfile)
	if err != nil {
		return err
	}

	var records []types.SchoolRecord
	if generateSchools != "" {
		records, err = loadSchools(generateSchools)
		if err != nil {
			return err
		}
	}

	targets := profile.CollegePreferences.TargetSchools
	now := time.Now()

	strategy := roadmap.NewRuleStrategy()
	draft, err := strategy.Generate(context.Background(), roadmap.Request{
		UserID:        "offline",
		Profile:       profile,
		TargetSchools: targets,
		Schools:       records,
		Now:           now,
	})
	if err != nil {
		return fmt.Errorf("failed to generate roadmap: %w", err)
	}

	if err := roadmap.ValidateBatch(draft.Tasks, records, now); err != nil {
		return fmt.Errorf("generated roadmap failed validation: %w", err)
	}
	result := roadmap.Assemble(draft, now)

	printer := observability.NewPrinter(os.Stdout)
	if generateVerbose {
		printer.PrintProfile(profile)
		printer.PrintSchools(records)
	}
	printer.PrintRoadmap(result)

	return nil
}

func loadProfile(path string) (*types.StudentProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	var profile types.StudentProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

func loadSchools(path string) ([]types.SchoolRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schools file: %w", err)
	}
	var records []types.SchoolRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse schools JSON: %w", err)
	}
	return records, nil
}
