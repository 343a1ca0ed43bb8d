package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances a run would stop",
	Long:  `List running Environment=Dev instances without stopping them.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	instances, err := a.stopper.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("list instances: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(instances) == 0 {
		fmt.Fprintln(w, "No instances found to stop.")
		return nil
	}
	for _, i := range instances {
		fmt.Fprintf(w, "%s\t%s\n", i.ID, i.State)
	}
	return nil
}
