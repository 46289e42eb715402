// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_radix

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ledger_radix"

// Metrics counts exchanges and operator interactions.
type Metrics struct {
	exchanges    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	interactions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchanges_total",
			Help:      "Exchanges with the device by instruction and outcome.",
		}, []string{"instruction", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "exchange_duration_seconds",
			Help:      "Time from sending a request to settling it, confirmation included.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 10),
		}, []string{"instruction"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "user_interactions_total",
			Help:      "Prompts settled by the operator by instruction and button.",
		}, []string{"instruction", "button"}),
	}

	for _, c := range []prometheus.Collector{m.exchanges, m.duration, m.interactions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeExchange(ins Instruction, started time.Time, err error) {
	m.exchanges.WithLabelValues(ins.String(), outcome(err)).Inc()
	m.duration.WithLabelValues(ins.String()).Observe(time.Since(started).Seconds())
}

func (m *Metrics) observeInteraction(interaction Interaction) {
	m.interactions.WithLabelValues(
		interaction.Prompt.Instruction.String(),
		interaction.Button.String(),
	).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUserRejected):
		return "rejected"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrDisconnected):
		return "disconnected"
	default:
		return "error"
	}
}
