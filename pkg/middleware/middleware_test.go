package middleware

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/davidsavoie1/params-router/pkg/history"
	"github.com/davidsavoie1/params-router/pkg/location"
)

func TestPrometheusCountsNavigations(t *testing.T) {
	registry := prometheus.NewRegistry()

	h := history.Wrap(history.NewMemory("/"),
		Prometheus(WithRegistry(registry)),
	)

	h.Push("/a")
	h.Push("/b")
	h.Replace("/c")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "paramsrouter_navigations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			counts[labelValue(m, "op")] = m.GetCounter().GetValue()
		}
	}

	if counts["push"] != 2 {
		t.Errorf("push count = %v, want 2", counts["push"])
	}
	if counts["replace"] != 1 {
		t.Errorf("replace count = %v, want 1", counts["replace"])
	}
}

func TestPrometheusObservesDispatchDuration(t *testing.T) {
	registry := prometheus.NewRegistry()

	h := history.Wrap(history.NewMemory("/"),
		Prometheus(WithRegistry(registry), WithSubsystem("test")),
	)
	h.Push("/a")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}

	found := false
	for _, mf := range families {
		if strings.Contains(mf.GetName(), "navigation_dispatch_duration_seconds") {
			found = true
			if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
				t.Errorf("sample count = %d, want 1", got)
			}
		}
	}
	if !found {
		t.Error("dispatch duration histogram not registered")
	}
}

func TestPrometheusDelegates(t *testing.T) {
	registry := prometheus.NewRegistry()

	h := history.Wrap(history.NewMemory("/start"),
		Prometheus(WithRegistry(registry)),
	)

	if h.Location().Path != "/start" {
		t.Errorf("Location() = %q, want /start", h.Location().Path)
	}

	var paths []string
	unsub := h.Subscribe(func(loc location.Location) { paths = append(paths, loc.Path) })
	h.Push("/next")
	unsub()
	h.Push("/after")

	if len(paths) != 2 || paths[0] != "/start" || paths[1] != "/next" {
		t.Errorf("paths = %v, want [/start /next]", paths)
	}
}

func TestOpenTelemetryDelegates(t *testing.T) {
	// No tracer provider is configured, so spans are no-ops; the
	// middleware must still commit navigations.
	h := history.Wrap(history.NewMemory("/"),
		OpenTelemetry(WithTracerName("test"), WithIncludeURL(false)),
	)

	h.Push("/a")
	if h.Location().Path != "/a" {
		t.Errorf("Location() = %q, want /a", h.Location().Path)
	}

	h.Replace("/b")
	if h.Location().Path != "/b" {
		t.Errorf("Location() = %q, want /b", h.Location().Path)
	}
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}
