// Copyright 2026 The Penrose Evaluator Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry wraps one evaluation pass with optional
// Prometheus counters/histograms and an OpenTelemetry span. A nil
// *Sink is valid everywhere in this package and skips emission
// entirely, so the eval package itself never needs to know whether a
// collector is running.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sink is the telemetry surface for one process's evaluation passes.
type Sink struct {
	passesTotal  *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	tracer       trace.Tracer
}

// NewSink registers its metrics with reg and returns a ready Sink. A
// nil reg is rejected by prometheus.Register; callers that don't want
// metrics should pass a nil *Sink instead of calling NewSink.
func NewSink(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		passesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "penrose_eval_passes_total",
			Help: "Number of evaluation passes, partitioned by outcome.",
		}, []string{"outcome"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "penrose_eval_pass_duration_seconds",
			Help:    "Duration of one evaluation pass, partitioned by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		tracer: otel.Tracer("github.com/xiarush120220/penrose/eval"),
	}
	if err := reg.Register(s.passesTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(s.passDuration); err != nil {
		return nil, err
	}
	return s, nil
}

// StartPass opens a span for one pass (tagged with passID) and a
// timer for its duration, and returns a context carrying the span
// plus a function the caller must invoke exactly once with the pass's
// outcome ("ok" or an error kind) when the pass finishes.
func (s *Sink) StartPass(ctx context.Context, passID uuid.UUID) (context.Context, func(outcome string)) {
	if s == nil {
		return ctx, func(string) {}
	}
	ctx, span := s.tracer.Start(ctx, "eval.pass", trace.WithAttributes(
		attribute.String("pass.id", passID.String()),
	))
	start := time.Now()
	return ctx, func(outcome string) {
		s.passesTotal.WithLabelValues(outcome).Inc()
		s.passDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		if outcome != "ok" {
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}
}
