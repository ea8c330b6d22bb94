package main

import (
	"encoding/json"
	"fmt"

	"github.com/Kedareswar13/Privacy-Protector/internal/planner"
	"github.com/Kedareswar13/Privacy-Protector/internal/storage"
	"github.com/spf13/cobra"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool registry with its schemas as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := loadRuntime()
			defer logger.Sync() //nolint:errcheck // best-effort flush

			tools, err := newTools(cfg, storage.NewLogWriter(logger), logger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tools.Registry().List())
		},
	}
}

// planOutput is what `datasteward plan` prints.
type planOutput struct {
	Source   planner.Source `json:"source"`
	Degraded bool           `json:"degraded"`
	Error    string         `json:"error,omitempty"`
	Plan     planner.Plan   `json:"plan"`
}

func newPlanCmd() *cobra.Command {
	var state, goal string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the planner once against a state document and print the tagged result.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var st map[string]any
			if err := json.Unmarshal([]byte(state), &st); err != nil {
				return fmt.Errorf("--state must be a JSON object: %w", err)
			}

			cfg, logger := loadRuntime()
			defer logger.Sync() //nolint:errcheck // best-effort flush

			pl, err := planner.FromConfig(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = pl.Close() }()

			res := pl.Plan(cmd.Context(), st, goal)
			out := planOutput{Source: res.Source, Degraded: res.Degraded, Plan: res.Plan}
			if res.Err != nil {
				out.Error = res.Err.Error()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&state, "state", `{"seeds":{},"items":[],"tool_calls":[]}`, "planner state as a JSON object")
	cmd.Flags().StringVar(&goal, "goal", planner.DefaultGoal, "goal label")
	return cmd
}
