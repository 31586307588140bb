// Package observability provides Prometheus instrumentation for the review
// engine. All recorder methods are nil-safe so instrumentation stays optional.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Commit result labels.
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Metrics aggregates the engine's Prometheus collectors.
type Metrics struct {
	sectionReads  prometheus.Counter
	commits       *prometheus.CounterVec
	diffFallbacks prometheus.Counter
	imports       *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sectionReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloss_section_reads_total",
			Help: "Total number of section text reads against the remote store",
		}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gloss_commits_total",
			Help: "Total number of commit attempts by outcome",
		}, []string{"result"}),
		diffFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gloss_diff_fallbacks_total",
			Help: "Total number of diffs rendered by the local fallback",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gloss_imports_total",
			Help: "Total number of annotation imports by outcome",
		}, []string{"result"}),
	}
	reg.MustRegister(m.sectionReads, m.commits, m.diffFallbacks, m.imports)
	return m
}

// SectionRead records one remote section read.
func (m *Metrics) SectionRead() {
	if m == nil {
		return
	}
	m.sectionReads.Inc()
}

// Commit records a commit attempt outcome.
func (m *Metrics) Commit(result string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
}

// DiffFallback records a locally rendered diff.
func (m *Metrics) DiffFallback() {
	if m == nil {
		return
	}
	m.diffFallbacks.Inc()
}

// Import records an annotation import outcome.
func (m *Metrics) Import(result string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
}
