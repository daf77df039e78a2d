package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/job-tracker/internal/schemas"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/spf13/cobra"
)

var validateSnapshotCmd = &cobra.Command{
	Use:   "validate-snapshot",
	Short: "Validate a saved state file against the snapshot schema",
	Long: `Validate-snapshot checks a state file against the embedded snapshot schema, or
against the schema file named by --schema.`,
	RunE: runValidateSnapshot,
}

var (
	validateSnapshotInput  string
	validateSnapshotSchema string
)

func init() {
	validateSnapshotCmd.Flags().StringVarP(&validateSnapshotInput, "in", "i", "", "Path to the snapshot JSON file (required)")
	validateSnapshotCmd.Flags().StringVar(&validateSnapshotSchema, "schema", "", "Path to a schema file to use instead of the embedded one")
	_ = validateSnapshotCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(validateSnapshotCmd)
}

func runValidateSnapshot(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(validateSnapshotInput)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("snapshot does not match the schema (%d problems): %w", len(validationErr.Errors), err)
		}
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot is valid: %d folders, %d jobs, %d messages, %d sessions\n",
		len(snap.Folders), len(snap.Jobs), len(snap.AIMessages), len(snap.ChatSessions))
	return nil
}

func decodeSnapshot(data []byte) (*store.Snapshot, error) {
	if validateSnapshotSchema == "" {
		return store.DecodeSnapshot(data)
	}
	if err := schemas.ValidateFile(validateSnapshotSchema, data); err != nil {
		return nil, err
	}
	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}
