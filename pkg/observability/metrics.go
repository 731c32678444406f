package observability

import (
	"context"
	"errors"

	"github.com/aretw0/teamwork/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the runtime collectors.
type Metrics struct {
	registrations *prometheus.CounterVec
	violations    *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
	constructions *prometheus.CounterVec
	executions    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamwork_registrations_total",
				Help: "Component registrations by role kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamwork_contract_violations_total",
				Help: "Contract violations found at registration, by role kind and rule",
			},
			[]string{"kind", "rule"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamwork_resolutions_total",
				Help: "Container resolutions by role kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		constructions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamwork_constructions_total",
				Help: "Components constructed by the container, by requested role kind",
			},
			[]string{"kind"},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "teamwork_executions_total",
				Help: "Delegator executions by outcome",
			},
			[]string{"delegator", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "teamwork_execution_duration_seconds",
				Help:    "Duration of delegator executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"delegator"},
		),
	}

	var err error
	if m.registrations, err = register(reg, m.registrations); err != nil {
		return nil, err
	}
	if m.violations, err = register(reg, m.violations); err != nil {
		return nil, err
	}
	if m.resolutions, err = register(reg, m.resolutions); err != nil {
		return nil, err
	}
	if m.constructions, err = register(reg, m.constructions); err != nil {
		return nil, err
	}
	if m.executions, err = register(reg, m.executions); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRegister: func(_ context.Context, e *domain.RegisterEvent) {
			outcome := "rejected"
			if e.Accepted {
				outcome = "accepted"
			}
			m.registrations.WithLabelValues(string(e.Ref.Kind), outcome).Inc()
			for _, v := range e.Violations {
				m.violations.WithLabelValues(string(v.Kind), string(v.Rule)).Inc()
			}
		},
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.resolutions.WithLabelValues(string(e.Ref.Kind), outcome).Inc()
			m.constructions.WithLabelValues(string(e.Ref.Kind)).Add(float64(e.Constructed))
		},
		OnExecuteEnd: func(_ context.Context, e *domain.ExecuteEvent) {
			m.executions.WithLabelValues(e.Delegator, string(e.Outcome)).Inc()
			m.duration.WithLabelValues(e.Delegator).Observe(e.Duration.Seconds())
		},
	}
}
