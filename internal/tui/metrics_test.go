package tui

import (
	"strings"
	"testing"
	"time"
)

func TestMetricsModel_UpdateMemStats(t *testing.T) {
	m := NewMetricsModel()

	msg := MemStatsMsg{
		HeapAlloc:  50 << 20,
		Sys:        80 << 20,
		NumGC:      10,
		Goroutines: 8,
	}
	m.UpdateMemStats(msg)

	if m.mem != msg {
		t.Errorf("expected %+v, got %+v", msg, m.mem)
	}
}

func TestMetricsModel_Sample(t *testing.T) {
	m := NewMetricsModel()
	start := m.lastSample

	m.Sample(start.Add(time.Second), 50, 200)
	if got := m.Rate(); got != 50 {
		t.Errorf("expected 50 steps/s, got %f", got)
	}
	if got := m.history.Last(); got != 25 {
		t.Errorf("expected 25%% in history, got %f", got)
	}

	m.Sample(start.Add(3*time.Second), 150, 200)
	if got := m.Rate(); got != 50 {
		t.Errorf("expected 50 steps/s, got %f", got)
	}
}

func TestMetricsModel_Sample_IgnoresNonPositiveInterval(t *testing.T) {
	m := NewMetricsModel()
	m.Sample(m.lastSample, 10, 100)
	if m.throughput.Len() != 0 {
		t.Errorf("expected no sample, got %d", m.throughput.Len())
	}
}

func TestMetricsModel_Sample_TotalDropIsZeroRate(t *testing.T) {
	m := NewMetricsModel()
	start := m.lastSample
	m.Sample(start.Add(time.Second), 40, 100)
	m.Sample(start.Add(2*time.Second), 10, 100)
	if got := m.Rate(); got != 0 {
		t.Errorf("expected 0 steps/s, got %f", got)
	}
}

func TestMetricsModel_Reset(t *testing.T) {
	m := NewMetricsModel()
	m.Sample(m.lastSample.Add(time.Second), 10, 100)
	m.Reset()

	if m.throughput.Len() != 0 || m.history.Len() != 0 {
		t.Error("expected empty charts after reset")
	}
	if m.lastTotal != 0 {
		t.Errorf("expected lastTotal 0, got %d", m.lastTotal)
	}
}

func TestMetricsModel_View(t *testing.T) {
	m := NewMetricsModel()
	m.SetSize(60, 12)
	m.UpdateMemStats(MemStatsMsg{HeapAlloc: 2048, NumGC: 3, Goroutines: 5})
	m.Sample(m.lastSample.Add(time.Second), 20, 200)

	view := m.View()
	for _, want := range []string{"METRICS", "Heap:", "2.00 KiB", "Goroutines:", "Steps/s:", "20.0", "Total history"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestMetricsModel_HostLoad(t *testing.T) {
	m := NewMetricsModel()
	m.SetSize(60, 12)
	if strings.Contains(m.View(), "CPU:") {
		t.Error("host load should be hidden before the first reading")
	}

	m.UpdateHostLoad(HostLoadMsg{CPUPercent: 12.5, MemPercent: 40})
	view := m.View()
	for _, want := range []string{"CPU:", "12.5%", "Mem:", "40.0%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestFormatMetricCol_Pads(t *testing.T) {
	cell := formatMetricCol("Rate:", "1", 30)
	if len([]rune(stripANSI(cell))) < 30 {
		t.Errorf("expected padding to 30 columns, got %q", cell)
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestMetricsModel_SetSizeGrowsHistory(t *testing.T) {
	m := NewMetricsModel()
	m.SetSize(300, 20)
	if got := m.history.Cap(); got != 294 {
		t.Errorf("history cap = %d, want 294", got)
	}
	m.SetSize(40, 20)
	if got := m.history.Cap(); got != 294 {
		t.Errorf("shrinking the panel should keep history, cap = %d", got)
	}
}
