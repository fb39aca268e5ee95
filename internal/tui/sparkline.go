package tui

// sparklineChars maps levels 0..7 to Unicode block elements.
var sparklineChars = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Series is a bounded window of samples; pushing past capacity drops the
// oldest one.
type Series struct {
	samples []float64
	limit   int
}

// NewSeries returns an empty window holding at most limit samples.
func NewSeries(limit int) *Series {
	return &Series{limit: max(limit, 1)}
}

// Push appends v.
func (s *Series) Push(v float64) {
	if len(s.samples) == s.limit {
		copy(s.samples, s.samples[1:])
		s.samples = s.samples[:s.limit-1]
	}
	s.samples = append(s.samples, v)
}

// Len returns the number of samples held.
func (s *Series) Len() int { return len(s.samples) }

// Cap returns the window size.
func (s *Series) Cap() int { return s.limit }

// Last returns the newest sample, or 0.
func (s *Series) Last() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	return s.samples[len(s.samples)-1]
}

// Max returns the largest sample, never below 0.
func (s *Series) Max() float64 {
	m := 0.0
	for _, v := range s.samples {
		m = max(m, v)
	}
	return m
}

// Slice returns a copy of the samples, oldest first, or nil when empty.
func (s *Series) Slice() []float64 {
	if len(s.samples) == 0 {
		return nil
	}
	return append([]float64(nil), s.samples...)
}

// Resize changes the window size and drops the oldest samples that no
// longer fit.
func (s *Series) Resize(limit int) {
	s.limit = max(limit, 1)
	if n := len(s.samples); n > s.limit {
		s.samples = append(s.samples[:0], s.samples[n-s.limit:]...)
	}
}

// Reset drops every sample.
func (s *Series) Reset() { s.samples = s.samples[:0] }

// RenderSparkline draws values scaled against ceiling. A ceiling of 0 or
// less draws every value at the lowest level.
func RenderSparkline(values []float64, ceiling float64) string {
	if len(values) == 0 {
		return ""
	}
	runes := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if ceiling > 0 {
			idx = int(clampPercent(v/ceiling*100) / 100 * 7)
		}
		runes[i] = sparklineChars[idx]
	}
	return string(runes)
}

// brailleDots maps (column, row) within a braille cell to its dot bit.
var brailleDots = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// RenderBrailleChart plots percentages (0..100) as a braille dot chart of
// rows lines and width cells. Each cell holds 2x4 dots and the most recent
// value is on the right.
func RenderBrailleChart(values []float64, width, rows int) []string {
	if width <= 0 || rows <= 0 || len(values) == 0 {
		return nil
	}

	dotRows := rows * 4
	dotCols := width * 2

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, width)
		for c := range grid[r] {
			grid[r][c] = 0x2800
		}
	}

	if len(values) > dotCols {
		values = values[len(values)-dotCols:]
	}
	offset := dotCols - len(values)

	for i, v := range values {
		dotCol := offset + i
		dotRow := dotRows - 1 - int(clampPercent(v)/100*float64(dotRows-1))
		grid[dotRow/4][dotCol/2] |= brailleDots[dotCol%2][dotRow%4]
	}

	result := make([]string, rows)
	for r := range grid {
		result[r] = string(grid[r])
	}
	return result
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
