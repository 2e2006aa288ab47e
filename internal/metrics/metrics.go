// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ApplicationsSubmitted prometheus.Counter
	AdminChecks           *prometheus.CounterVec // outcome: authenticated | registration_required | mismatch | invalid
	PasswordsRegistered   prometheus.Counter
	StoreErrors           *prometheus.CounterVec // op
	SessionsOpened        prometheus.Counter
	Exports               *prometheus.CounterVec // format
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ApplicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartstore_applications_submitted_total",
			Help: "Stored application records.",
		}),
		AdminChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_admin_checks_total",
			Help: "Admin password checks by outcome.",
		}, []string{"outcome"}),
		PasswordsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartstore_branch_passwords_registered_total",
			Help: "Branch passwords set through the registration flow.",
		}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_store_errors_total",
			Help: "Failed record store calls by operation.",
		}, []string{"op"}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "smartstore_view_sessions_opened_total",
			Help: "History view sessions opened.",
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smartstore_exports_total",
			Help: "Record exports by file format.",
		}, []string{"format"}),
	}

	reg.MustRegister(
		m.ApplicationsSubmitted,
		m.AdminChecks,
		m.PasswordsRegistered,
		m.StoreErrors,
		m.SessionsOpened,
		m.Exports,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
