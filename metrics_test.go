package tubeauth

import (
	"sync"
	"testing"
)

func TestMetricsIncAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricRefreshReuseDetected)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Errorf("Value(MetricLoginSuccess) = %d, want 2", got)
	}

	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 {
		t.Errorf("snapshot login success = %d, want 2", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricRefreshReuseDetected] != 1 {
		t.Errorf("snapshot reuse = %d, want 1", snap.Counters[MetricRefreshReuseDetected])
	}
	if snap.Counters[MetricLogout] != 0 {
		t.Errorf("snapshot logout = %d, want 0", snap.Counters[MetricLogout])
	}
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)

	if m.Enabled() {
		t.Error("disabled metrics must report Enabled() == false")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Errorf("Value = %d, want 0 when disabled", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Errorf("disabled snapshot has %d counters", len(snap.Counters))
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	if m.Enabled() {
		t.Error("nil metrics must report disabled")
	}
	if m.Value(MetricLoginSuccess) != 0 {
		t.Error("nil metrics Value must be 0")
	}
	if snap := m.Snapshot(); snap.Counters == nil {
		t.Error("nil metrics Snapshot must return an initialized map")
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				m.Inc(MetricPairIssued)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricPairIssued); got != workers*perWorker {
		t.Errorf("Value = %d, want %d", got, workers*perWorker)
	}
}
