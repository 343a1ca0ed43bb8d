// Package stopper stops running development instances.
package stopper

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/devstop/internal/filter"
	"github.com/yairfalse/devstop/internal/inventory"
	"github.com/yairfalse/devstop/internal/telemetry"
	"github.com/yairfalse/devstop/pkg/instance"
)

// Recorder receives invocation metrics. *telemetry.Provider satisfies it.
type Recorder interface {
	RecordInvocation(ctx context.Context, region string, statusCode int, d time.Duration)
	RecordStopped(ctx context.Context, region string, count int)
	RecordStopFailures(ctx context.Context, region string, count int)
	RecordListError(ctx context.Context, region string)
}

type nopRecorder struct{}

func (nopRecorder) RecordInvocation(context.Context, string, int, time.Duration) {}
func (nopRecorder) RecordStopped(context.Context, string, int)                   {}
func (nopRecorder) RecordStopFailures(context.Context, string, int)              {}
func (nopRecorder) RecordListError(context.Context, string)                      {}

// Stopper lists running Dev instances and requests each be stopped.
type Stopper struct {
	inv      inventory.Inventory
	filter   filter.Filter
	region   string
	logger   *telemetry.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures a Stopper.
type Option func(*Stopper)

// WithLogger sets the logger.
func WithLogger(l *telemetry.Logger) Option {
	return func(s *Stopper) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Stopper) { s.recorder = r }
}

// WithTracer sets the tracer. Defaults to the global "devstop" tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Stopper) { s.tracer = t }
}

// WithRegion labels logs and metrics with region.
func WithRegion(region string) Option {
	return func(s *Stopper) { s.region = region }
}

// New creates a Stopper over inv.
func New(inv inventory.Inventory, opts ...Option) *Stopper {
	s := &Stopper{
		inv:      inv,
		filter:   filter.DevRunning(),
		logger:   telemetry.Nop(),
		recorder: nopRecorder{},
		tracer:   otel.Tracer("devstop"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one pass: list, stop each match, summarize.
func (s *Stopper) Handle(ctx context.Context) Result {
	return s.HandleWithLogger(ctx, s.logger)
}

// HandleWithLogger is Handle with a per-invocation logger.
func (s *Stopper) HandleWithLogger(ctx context.Context, logger *telemetry.Logger) Result {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "stopper.Handle")
	defer span.End()

	result := s.run(ctx, logger)

	span.SetAttributes(
		attribute.Int("status_code", result.StatusCode),
		attribute.Int("stopped", len(result.Stopped)),
		attribute.Int("failed", len(result.Failed)),
	)
	if result.StatusCode == StatusError {
		span.SetStatus(codes.Error, result.Body)
	}
	s.recorder.RecordInvocation(ctx, s.region, result.StatusCode, time.Since(start))
	return result
}

func (s *Stopper) run(ctx context.Context, logger *telemetry.Logger) Result {
	log := logger.WithContext(ctx)

	instances, err := s.list(ctx)
	if err != nil {
		logListError(log, s.region, err)
		s.recorder.RecordListError(ctx, s.region)
		return errorResult(err)
	}

	log.Info().Int("count", len(instances)).Str("region", s.region).Msg("instances listed")
	if len(instances) == 0 {
		return emptyResult()
	}

	stopped := make([]string, 0, len(instances))
	var failed []string

	for _, i := range instances {
		if err := s.stop(ctx, i.ID); err != nil {
			logStopError(log, i.ID, err)
			failed = append(failed, i.ID)
			continue
		}
		log.Info().Str("instance_id", i.ID).Msg("stop initiated")
		stopped = append(stopped, i.ID)
	}

	if len(stopped) > 0 {
		s.recorder.RecordStopped(ctx, s.region, len(stopped))
	}
	if len(failed) > 0 {
		s.recorder.RecordStopFailures(ctx, s.region, len(failed))
	}

	return summarize(stopped, failed)
}

// Candidates returns the instances a pass would stop, without stopping them.
func (s *Stopper) Candidates(ctx context.Context) ([]instance.Instance, error) {
	return s.list(ctx)
}

func (s *Stopper) list(ctx context.Context) ([]instance.Instance, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.ListInstances")
	defer span.End()

	instances, err := s.inv.ListInstances(ctx, s.filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(instances)))
	return instances, nil
}

func (s *Stopper) stop(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "inventory.StopInstance")
	defer span.End()
	span.SetAttributes(attribute.String("instance_id", id))

	if err := s.inv.StopInstance(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
