// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/practice-service/internal/logging"
	"github.com/canonical/practice-service/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime  *prometheus.HistogramVec
	dependencies  *prometheus.GaugeVec
	denials       *prometheus.CounterVec
	auditFailures *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.responseTime.With(tags).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencies == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencies.With(tags).Set(value)

	return nil
}

func (m *Monitor) IncDenialCounter(tags map[string]string) error {
	if m.denials == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.denials.With(tags).Inc()

	return nil
}

func (m *Monitor) IncAuditFailureCounter(tags map[string]string) error {
	if m.auditFailures == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.auditFailures.With(tags).Inc()

	return nil
}

func (m *Monitor) register(registerer prometheus.Registerer) {
	labels := prometheus.Labels{"service": m.service}

	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: labels,
		},
		[]string{"route", "status"},
	)

	m.dependencies = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: labels,
		},
		[]string{"component"},
	)

	m.denials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "pipeline_denials_total",
			Help:        "requests rejected by the request pipeline, by denial kind",
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.auditFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "audit_write_failures_total",
			Help:        "audit records that could not be persisted",
			ConstLabels: labels,
		},
		[]string{"action"},
	)

	m.responseTime = m.registerOrReuse(registerer, m.responseTime).(*prometheus.HistogramVec)
	m.dependencies = m.registerOrReuse(registerer, m.dependencies).(*prometheus.GaugeVec)
	m.denials = m.registerOrReuse(registerer, m.denials).(*prometheus.CounterVec)
	m.auditFailures = m.registerOrReuse(registerer, m.auditFailures).(*prometheus.CounterVec)
}

// registerOrReuse returns the collector already registered under the same descriptor if there is one.
func (m *Monitor) registerOrReuse(registerer prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	err := registerer.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector
	}

	m.logger.Errorf("failed to register prometheus collector: %v", err)
	return c
}

// NewMonitor registers the service metrics on the default prometheus registry.
func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	return NewMonitorWithRegisterer(service, prometheus.DefaultRegisterer, logger)
}

func NewMonitorWithRegisterer(service string, registerer prometheus.Registerer, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.register(registerer)

	return m
}
