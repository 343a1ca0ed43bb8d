package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/devstop/internal/stopper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one stop pass locally",
	Long: `Run a single pass outside Lambda: list running Environment=Dev
instances, request a stop for each, and print the result as JSON.`,
	Example: `  devstop run                      # Use AWS_REGION or us-east-1
  devstop run --region eu-west-1   # Target a specific region
  devstop run -c devstop.toml      # Load settings from a file`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	result := a.stopper.Handle(ctx)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if result.StatusCode == stopper.StatusError {
		return fmt.Errorf("list instances failed")
	}
	return nil
}
