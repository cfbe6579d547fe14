package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics register against the default registry, so the enabled
// instance is created exactly once and shared by every test.
var testMetrics = New(true)

func TestNoopMetricsAreSafe(t *testing.T) {
	m := New(false)
	m.RecordLogin("tenant", true)
	m.RecordRegister("owner", false)
	m.RecordVerify(true)
	m.RecordForcedLogout()
	m.RecordNotificationFetch(true)
	m.SetUnread(3)
}

func TestEnabledMetricsRegister(t *testing.T) {
	testMetrics.RecordLogin("tenant", true)
	testMetrics.RecordLogin("owner", false)
	testMetrics.RecordRegister("tenant", true)
	testMetrics.RecordVerify(false)
	testMetrics.RecordForcedLogout()
	testMetrics.RecordNotificationFetch(true)
	testMetrics.SetUnread(2)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"tenantflow_login_total",
		"tenantflow_register_total",
		"tenantflow_verify_total",
		"tenantflow_forced_logouts_total",
		"tenantflow_notification_fetch_total",
		"tenantflow_notifications_unread",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
