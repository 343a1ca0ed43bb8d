package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
	regionFlag string
	rootCmd    = &cobra.Command{
		Use:   "devstop",
		Short: "Stop running development instances",
		Long: `devstop - development instance stopper

Finds running EC2 instances tagged Environment=Dev and requests that
each be stopped. Runs as a scheduled Lambda function or locally.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inLambda() {
				return runLambda(cmd, args)
			}
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`devstop {{.Version}}
`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to TOML config file (AWS_REGION, which Lambda always sets, overrides its region)")
	rootCmd.PersistentFlags().StringVarP(&regionFlag, "region", "r", "", "AWS region (overrides AWS_REGION)")
}

func inLambda() bool {
	return os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}
