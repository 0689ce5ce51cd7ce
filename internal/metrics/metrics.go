// Package metrics exposes prometheus collectors for engine activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors.
type Metrics struct {
	AdvisoryResolutions  *prometheus.CounterVec
	ChecklistGenerations *prometheus.CounterVec
	ValidationIssues     *prometheus.CounterVec
	FormDrafts           *prometheus.CounterVec
	PortalSubmissions    *prometheus.CounterVec
}

// New creates and registers the engine collectors on a registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AdvisoryResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisory_resolutions_total",
				Help: "Tax advisory resolutions by payer jurisdiction and outcome.",
			},
			[]string{"jurisdiction", "outcome"},
		),
		ChecklistGenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checklist_generations_total",
				Help: "Compliance checklist generations by country.",
			},
			[]string{"country"},
		),
		ValidationIssues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validation_issues_total",
				Help: "Validation issues raised, by code and risk level.",
			},
			[]string{"code", "risk_level"},
		),
		FormDrafts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_drafts_total",
				Help: "Filing drafts generated by form type.",
			},
			[]string{"form_type"},
		),
		PortalSubmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_submissions_total",
				Help: "Government portal submissions by portal and status.",
			},
			[]string{"portal", "status"},
		),
	}

	registry.MustRegister(
		m.AdvisoryResolutions,
		m.ChecklistGenerations,
		m.ValidationIssues,
		m.FormDrafts,
		m.PortalSubmissions,
	)

	return m
}
