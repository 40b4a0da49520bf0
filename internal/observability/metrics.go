// Package observability exposes prometheus metrics for the publishing engines.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the domain counters. A nil *Metrics records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	ArticleTransitions *prometheus.CounterVec
	LikeToggles        *prometheus.CounterVec
	CommentModerations *prometheus.CounterVec
	PermissionDenials  *prometheus.CounterVec
}

// NewMetrics creates a private registry with Go and process collectors and
// registers the domain counters on it
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		ArticleTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_article_transitions_total",
				Help: "Article lifecycle operations by action",
			},
			[]string{"action"},
		),
		LikeToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_like_toggles_total",
				Help: "Like toggles by resulting state",
			},
			[]string{"result"},
		),
		CommentModerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_comment_moderations_total",
				Help: "Comment moderation decisions",
			},
			[]string{"decision"},
		),
		PermissionDenials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "content_permission_denials_total",
				Help: "Requests refused by the permission gate, by action",
			},
			[]string{"action"},
		),
	}

	registry.MustRegister(m.ArticleTransitions, m.LikeToggles, m.CommentModerations, m.PermissionDenials)
	return m
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ArticleTransition counts an article lifecycle operation
func (m *Metrics) ArticleTransition(action string) {
	if m == nil {
		return
	}
	m.ArticleTransitions.WithLabelValues(action).Inc()
}

// LikeToggled counts a like toggle
func (m *Metrics) LikeToggled(liked bool) {
	if m == nil {
		return
	}
	result := "unliked"
	if liked {
		result = "liked"
	}
	m.LikeToggles.WithLabelValues(result).Inc()
}

// CommentModerated counts a moderation decision
func (m *Metrics) CommentModerated(decision string) {
	if m == nil {
		return
	}
	m.CommentModerations.WithLabelValues(decision).Inc()
}

// PermissionDenied counts a gate refusal
func (m *Metrics) PermissionDenied(action string) {
	if m == nil {
		return
	}
	m.PermissionDenials.WithLabelValues(action).Inc()
}
