package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/tallyrun/internal/format"
)

// historySize is the number of samples kept for the charts.
const historySize = 120

// MetricsModel displays throughput, the grand-total history and runtime
// memory readings.
type MetricsModel struct {
	mem        MemStatsMsg
	host       HostLoadMsg
	hostSeen   bool
	throughput *Series // steps per second
	history    *Series // grand total, percent of maximum
	lastTotal  int
	lastSample time.Time
	width      int
	height     int
}

// NewMetricsModel creates a new metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{
		throughput: NewSeries(historySize),
		history:    NewSeries(historySize),
		lastSample: time.Now(),
	}
}

// SetSize updates dimensions.
// The chart history grows to the chart width so wide terminals fill up.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if cw := w - 6; cw > m.history.Cap() {
		m.history.Resize(cw)
		m.throughput.Resize(cw)
	}
}

// UpdateMemStats stores the latest memory reading.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.mem = msg
}

// UpdateHostLoad stores the latest host reading.
func (m *MetricsModel) UpdateHostLoad(msg HostLoadMsg) {
	m.host = msg
	m.hostSeen = true
}

// Reset clears the charts for a new generation.
func (m *MetricsModel) Reset() {
	m.throughput.Reset()
	m.history.Reset()
	m.lastTotal = 0
	m.lastSample = time.Now()
}

// Sample records the grand total observed at now.
func (m *MetricsModel) Sample(now time.Time, total, maxTotal int) {
	dt := now.Sub(m.lastSample).Seconds()
	if dt <= 0 {
		return
	}
	rate := float64(total-m.lastTotal) / dt
	if rate < 0 {
		rate = 0
	}
	m.throughput.Push(rate)
	pct := 0.0
	if maxTotal > 0 {
		pct = float64(total) / float64(maxTotal) * 100
	}
	m.history.Push(pct)
	m.lastTotal = total
	m.lastSample = now
}

// Rate returns the most recent steps-per-second sample.
func (m MetricsModel) Rate() float64 {
	return m.throughput.Last()
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	var rows strings.Builder
	rows.WriteString(panelTitleStyle.Render("METRICS"))
	rows.WriteString("\n")

	pipe := metricLabelStyle.Render(" | ")
	fmt.Fprintf(&rows, " %s %s%s%s %s%s%s %s\n",
		metricLabelStyle.Render("Heap:"), metricValueStyle.Render(format.FormatBytes(m.mem.HeapAlloc)),
		pipe,
		metricLabelStyle.Render("GC:"), metricValueStyle.Render(fmt.Sprintf("%d (%.1fms)", m.mem.NumGC, float64(m.mem.PauseTotalNs)/1e6)),
		pipe,
		metricLabelStyle.Render("Goroutines:"), metricValueStyle.Render(fmt.Sprintf("%d", m.mem.Goroutines)))

	chartWidth := max(m.width-6, 10)
	colWidth := chartWidth / 2
	if m.hostSeen {
		rows.WriteString(formatMetricCol("CPU:", fmt.Sprintf("%.1f%%", m.host.CPUPercent), colWidth))
		rows.WriteString(formatMetricCol("Mem:", fmt.Sprintf("%.1f%%", m.host.MemPercent), colWidth))
		rows.WriteString("\n")
	}
	rows.WriteString(formatMetricCol("Steps/s:", fmt.Sprintf("%.1f", m.Rate()), colWidth))
	rows.WriteString(formatMetricCol("Peak:", fmt.Sprintf("%.1f", m.throughput.Max()), colWidth))
	rows.WriteString("\n")
	spark := m.throughput.Slice()
	if len(spark) > chartWidth {
		spark = spark[len(spark)-chartWidth:]
	}
	rows.WriteString(" " + sparklineStyle.Render(RenderSparkline(spark, m.throughput.Max())) + "\n")

	chartRows := m.height - 7
	if m.hostSeen {
		chartRows--
	}
	chartRows = max(chartRows, 1)
	rows.WriteString(" " + metricLabelStyle.Render("Total history") + "\n")
	for _, line := range RenderBrailleChart(m.history.Slice(), chartWidth, chartRows) {
		rows.WriteString(" " + chartStyle.Render(line) + "\n")
	}

	style := panelStyle
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	if m.height > 2 {
		style = style.Height(m.height - 2)
	}
	return style.Render(strings.TrimRight(rows.String(), "\n"))
}

// formatMetricCol pads a label/value cell to colWidth visible columns.
func formatMetricCol(label, value string, colWidth int) string {
	cell := fmt.Sprintf(" %s %s",
		metricLabelStyle.Render(fmt.Sprintf("%-12s", label)),
		metricValueStyle.Render(value))
	if visible := lipgloss.Width(cell); visible < colWidth {
		cell += strings.Repeat(" ", colWidth-visible)
	}
	return cell
}
