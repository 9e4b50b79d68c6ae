// Copyright (c) 2026 Anchorlock Contributors
//
// This file is part of go-anchorlock.
//
// go-anchorlock is licensed under the GNU Affero General Public License v3.0.
// See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html

// Package metrics provides Prometheus instrumentation for secret
// accesses, audit log throughput, and handshake activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics.
	Namespace = "anchorlock"

	// Label names
	LabelOperation = "operation"
	LabelLevel     = "level"
	LabelPattern   = "pattern"
	LabelOutcome   = "outcome"

	// Outcome values
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// SecretAccessesTotal counts container accesses by operation
	// ("access", "mutable access", "copy") and security level.
	SecretAccessesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "secret_accesses_total",
			Help:      "Total number of secret container accesses by operation and security level",
		},
		[]string{LabelOperation, LabelLevel},
	)

	// AuditEntriesTotal counts audit entries accepted into the live buffer.
	AuditEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total number of audit entries recorded",
		},
	)

	// AuditFlushedTotal counts audit entries written to durable storage.
	AuditFlushedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "entries_flushed_total",
			Help:      "Total number of audit entries flushed to durable storage",
		},
	)

	// AuditDroppedTotal counts entries refused because both buffers were full.
	AuditDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "audit",
			Name:      "entries_dropped_total",
			Help:      "Total number of audit entries refused because the buffers were full",
		},
	)

	// HandshakesTotal counts completed and failed handshakes by pattern.
	HandshakesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "noise",
			Name:      "handshakes_total",
			Help:      "Total number of handshakes by pattern and outcome",
		},
		[]string{LabelPattern, LabelOutcome},
	)

	// HandshakeDuration tracks handshake wall time by pattern.
	HandshakeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "noise",
			Name:      "handshake_duration_seconds",
			Help:      "Duration of completed handshakes in seconds",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{LabelPattern},
	)

	// RekeysTotal counts cipher state rekey operations.
	RekeysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "noise",
			Name:      "rekeys_total",
			Help:      "Total number of cipher state rekey operations",
		},
	)
)

// RecordSecretAccess increments the access counter for one container
// operation.
func RecordSecretAccess(operation, level string) {
	SecretAccessesTotal.WithLabelValues(operation, level).Inc()
}

// RecordHandshake records one handshake outcome and, when it
// succeeded, its duration.
func RecordHandshake(pattern string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	HandshakesTotal.WithLabelValues(pattern, outcome).Inc()
	if err == nil {
		HandshakeDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
	}
}
