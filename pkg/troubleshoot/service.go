package troubleshoot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kubeship/kubeship/pkg/metrics"
)

//go:generate mockgen --build_flags=--mod=readonly -source $GOFILE -destination ./mock/collector.go -package mock

// Collector captures the cluster state of a service into a fresh Context.
// Errors reaching or authenticating against the cluster are returned as-is.
// Kinds that could not be resolved are left unpopulated.
type Collector interface {
	Build(ctx context.Context, info ServiceInfo, auth ClusterAuth, namespace string) (*Context, error)
}

// Service diagnoses why a service is not healthy.
type Service struct {
	collector Collector
	engine    *Engine
	logger    *zap.SugaredLogger
}

type Option func(*options)

type options struct {
	entry    Node
	maxSteps int
	logger   *zap.SugaredLogger
}

// WithEntry replaces the default rule graph.
func WithEntry(entry Node) Option {
	return func(o *options) { o.entry = entry }
}

// WithMaxSteps bounds the number of steps a single traversal may take.
func WithMaxSteps(n int) Option {
	return func(o *options) { o.maxSteps = n }
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = logger }
}

// NewService returns a Service using the collector to gather cluster state.
// The decision graph is validated once here.
func NewService(collector Collector, opts ...Option) (*Service, error) {
	if collector == nil {
		return nil, fmt.Errorf("troubleshoot service requires a collector")
	}
	o := options{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&o)
	}
	if o.entry == nil {
		o.entry = NewRuleGraph()
	}
	if o.logger == nil {
		o.logger = zap.NewNop().Sugar()
	}
	if _, err := Validate(o.entry); err != nil {
		return nil, fmt.Errorf("invalid decision graph: %w", err)
	}

	return &Service{
		collector: collector,
		engine:    NewEngine(o.entry, o.maxSteps, o.logger),
		logger:    o.logger,
	}, nil
}

// Troubleshoot collects the state of the service and walks the decision graph
// over it. The reports are ordered most specific first.
func (s *Service) Troubleshoot(ctx context.Context, info ServiceInfo, auth ClusterAuth, namespace string) ([]DiagnosisReport, error) {
	if err := validateInput(info, namespace); err != nil {
		metrics.Inc(metrics.TroubleshootRuns, metrics.ResultInvalidInput)
		return nil, err
	}

	logger := s.logger.With("service", info.ServiceName, "namespace", namespace)

	tc, err := s.collector.Build(ctx, info, auth, namespace)
	if err != nil {
		metrics.Inc(metrics.TroubleshootRuns, metrics.ResultFailed)
		return nil, err
	}
	if tc == nil {
		metrics.Inc(metrics.TroubleshootRuns, metrics.ResultFailed)
		return nil, fmt.Errorf("collector returned no troubleshooting context for %s", info.ServiceName)
	}

	outcome, err := s.engine.Run(tc)
	if err != nil {
		metrics.Inc(metrics.TroubleshootRuns, metrics.ResultFailed)
		return nil, err
	}

	reports := tc.Reports()
	if len(reports) == 0 {
		metrics.Inc(metrics.TroubleshootRuns, metrics.ResultFailed)
		return nil, fmt.Errorf("%w after %d steps", ErrNoDiagnosis, len(outcome.Path))
	}

	cause := "unknown"
	if outcome.Terminal != nil {
		cause = outcome.Terminal.Name
	}
	logger.Infof("diagnosed %s after %d steps", cause, len(outcome.Path))
	metrics.Inc(metrics.TroubleshootRuns, metrics.ResultDiagnosed)
	metrics.Inc(metrics.Diagnoses, cause)

	return reports, nil
}

func validateInput(info ServiceInfo, namespace string) error {
	if info.ServiceName == "" {
		return InputValidationError{Field: "serviceName", Reason: "must not be empty"}
	}
	if namespace == "" {
		return InputValidationError{Field: "namespace", Reason: "must not be empty"}
	}
	return nil
}
