package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxETA caps estimates so that a near-zero rate does not print absurd values.
const maxETA = 24 * time.Hour

// etaSmoothing is the weight of the newest rate sample in the moving average.
const etaSmoothing = 0.3

// ProgressState tracks the fractional progress (0.0 to 1.0) of a fixed number
// of workers. It is not safe for concurrent use; frontends feed it from the
// single delivery goroutine.
type ProgressState struct {
	progresses []float64
	numWorkers int
}

// NewProgressState creates a state for numWorkers workers.
func NewProgressState(numWorkers int) *ProgressState {
	if numWorkers < 0 {
		numWorkers = 0
	}
	return &ProgressState{
		progresses: make([]float64, numWorkers),
		numWorkers: numWorkers,
	}
}

// Update records the progress of worker index. Out-of-range indices are
// ignored and values are clamped to [0, 1].
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = clamp01(value)
}

// CalculateAverage returns the mean progress across all workers.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numWorkers == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps.progresses {
		sum += p
	}
	return sum / float64(ps.numWorkers)
}

// ProgressWithETA extends ProgressState with an estimate of the remaining
// time, based on an exponentially smoothed progress rate.
type ProgressWithETA struct {
	*ProgressState
	numWorkers   int
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // average progress per second
}

// NewProgressWithETA creates a tracker for numWorkers workers.
func NewProgressWithETA(numWorkers int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numWorkers),
		numWorkers:    numWorkers,
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records a worker's progress and returns the new average
// together with the estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()

	now := time.Now()
	elapsed := now.Sub(p.lastUpdate).Seconds()
	if elapsed > 0 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / elapsed
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = etaSmoothing*rate + (1-etaSmoothing)*p.progressRate
		}
		p.lastProgress = avg
		p.lastUpdate = now
	}
	return avg, p.GetETA()
}

// GetETA returns the current estimate without recording anything. It returns
// 0 while no rate is known.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	secs := remaining / p.progressRate
	if secs >= maxETA.Seconds() {
		return maxETA
	}
	return time.Duration(secs * float64(time.Second))
}

// Elapsed returns the time since the tracker was created.
func (p *ProgressWithETA) Elapsed() time.Duration {
	return time.Since(p.startTime)
}

// FormatETA renders an estimate compactly, e.g. "45s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	if eta <= 0 {
		return "calculating..."
	}
	if eta < time.Second {
		return "< 1s"
	}
	if eta < time.Minute {
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	}
	if eta < time.Hour {
		m := int(eta / time.Minute)
		s := int((eta % time.Minute) / time.Second)
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(eta / time.Hour)
	m := int((eta % time.Hour) / time.Minute)
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}

// ProgressBar renders progress (clamped to [0, 1]) as a bar of length runes.
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	filled := int(clamp01(progress) * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "percent [bar] ETA: eta".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", clamp01(progress)*100, ProgressBar(progress, width), FormatETA(eta))
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.Grow(n + n/3 + len(sign))
	b.WriteString(sign)
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// GrandTotalText renders a shared total against its maximum, e.g.
// "1,234 / 1,600 (77%)". It is a projection of the counter and is never
// parsed back.
func GrandTotalText(total, max int) string {
	pct := 0
	if max > 0 {
		pct = total * 100 / max
	}
	return fmt.Sprintf("%s / %s (%d%%)",
		FormatNumberString(strconv.Itoa(total)),
		FormatNumberString(strconv.Itoa(max)),
		pct)
}

// WorkerLine renders one worker's progress as "#2 [bar]  40/100".
func WorkerLine(worker, value, target, width int) string {
	frac := 0.0
	if target > 0 {
		frac = float64(value) / float64(target)
	}
	return fmt.Sprintf("#%d [%s] %3d/%d", worker, ProgressBar(frac, width), value, target)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
