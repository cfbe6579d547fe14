// Package metrics provides Prometheus metrics for session and
// notification operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the SDK.
type Metrics struct {
	enabled bool

	// Session metrics
	loginTotal         *prometheus.CounterVec
	registerTotal      *prometheus.CounterVec
	verifyTotal        *prometheus.CounterVec
	forcedLogoutsTotal prometheus.Counter

	// Notification metrics
	notificationFetchTotal *prometheus.CounterVec
	unreadCount            prometheus.Gauge
}

// New creates and registers Prometheus metrics.
// If enabled is false, returns a no-op Metrics instance.
func New(enabled bool) *Metrics {
	m := &Metrics{enabled: enabled}

	if !enabled {
		return m
	}

	m.loginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantflow_login_total",
		Help: "Login attempts by role and result",
	}, []string{"role", "result"})

	m.registerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantflow_register_total",
		Help: "Registration attempts by role and result",
	}, []string{"role", "result"})

	m.verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantflow_verify_total",
		Help: "Startup session verifications by result",
	}, []string{"result"})

	m.forcedLogoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tenantflow_forced_logouts_total",
		Help: "Sessions cleared by a 401 response",
	})

	m.notificationFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantflow_notification_fetch_total",
		Help: "Notification page fetches by result",
	}, []string{"result"})

	m.unreadCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tenantflow_notifications_unread",
		Help: "Locally tracked unread notification count",
	})

	return m
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(role string, ok bool) {
	if !m.enabled {
		return
	}
	m.loginTotal.WithLabelValues(role, result(ok)).Inc()
}

// RecordRegister records a registration attempt.
func (m *Metrics) RecordRegister(role string, ok bool) {
	if !m.enabled {
		return
	}
	m.registerTotal.WithLabelValues(role, result(ok)).Inc()
}

// RecordVerify records a startup session verification.
func (m *Metrics) RecordVerify(ok bool) {
	if !m.enabled {
		return
	}
	m.verifyTotal.WithLabelValues(result(ok)).Inc()
}

// RecordForcedLogout records a session cleared by a 401 response.
func (m *Metrics) RecordForcedLogout() {
	if !m.enabled {
		return
	}
	m.forcedLogoutsTotal.Inc()
}

// RecordNotificationFetch records a notification page fetch.
func (m *Metrics) RecordNotificationFetch(ok bool) {
	if !m.enabled {
		return
	}
	m.notificationFetchTotal.WithLabelValues(result(ok)).Inc()
}

// SetUnread updates the unread notification gauge.
func (m *Metrics) SetUnread(n int) {
	if !m.enabled {
		return
	}
	m.unreadCount.Set(float64(n))
}
