package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/yairfalse/devstop/internal/handler"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve invocations from the Lambda runtime",
	Long: `Start the Lambda runtime loop. Each invocation lists running
Environment=Dev instances and stops them.

This is the default when AWS_LAMBDA_RUNTIME_API is set.`,
	Args: cobra.NoArgs,
	RunE: runLambda,
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}

func runLambda(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	h := handler.New(a.stopper, a.logger, handler.WithFlush(a.telemetry.ForceFlush))
	a.logger.Info().Str("version", version).Msg("devstop starting")

	lambda.StartWithOptions(h.Handle,
		lambda.WithEnableSIGTERM(func() { a.close(context.Background()) }),
	)
	return nil
}
