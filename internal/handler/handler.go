// Package handler adapts the Stopper to the AWS Lambda runtime.
package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/yairfalse/devstop/internal/stopper"
	"github.com/yairfalse/devstop/internal/telemetry"
)

// Handler serves scheduled invocations.
type Handler struct {
	stopper *stopper.Stopper
	logger  *telemetry.Logger
	flush   func(context.Context) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithFlush sets a func run before each invocation returns, typically
// (*telemetry.Provider).ForceFlush.
func WithFlush(flush func(context.Context) error) Option {
	return func(h *Handler) { h.flush = flush }
}

// New creates a Handler.
func New(s *stopper.Stopper, logger *telemetry.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = telemetry.Nop()
	}
	h := &Handler{stopper: s, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs one pass. The event content is not used; failures are
// reported in the result, never as an invocation error.
func (h *Handler) Handle(ctx context.Context, event events.CloudWatchEvent) (stopper.Result, error) {
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("aws_request_id", lc.AwsRequestID)
	}

	logger.Debug().
		Str("event_id", event.ID).
		Str("event_source", event.Source).
		Str("detail_type", event.DetailType).
		Msg("invocation received")

	result := h.stopper.HandleWithLogger(ctx, logger)

	logger.Info().
		Int("status_code", result.StatusCode).
		Int("stopped", len(result.Stopped)).
		Int("failed", len(result.Failed)).
		Msg("invocation complete")

	if h.flush != nil {
		if err := h.flush(ctx); err != nil {
			logger.Warn().Err(err).Msg("telemetry flush failed")
		}
	}

	return result, nil
}
