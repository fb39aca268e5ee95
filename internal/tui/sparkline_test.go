package tui

import (
	"slices"
	"testing"
)

const blankCell = rune(0x2800)

func TestSeries(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		push     []float64
		resize   int // 0 keeps the limit
		want     []float64
		wantCap  int
		wantLast float64
		wantMax  float64
	}{
		{name: "empty", limit: 3, wantCap: 3},
		{name: "zero limit", limit: 0, push: []float64{4, 2}, want: []float64{2}, wantCap: 1, wantLast: 2, wantMax: 2},
		{name: "under limit", limit: 4, push: []float64{1, 2, 3}, want: []float64{1, 2, 3}, wantCap: 4, wantLast: 3, wantMax: 3},
		{name: "drops oldest", limit: 3, push: []float64{9, 1, 2, 3, 4}, want: []float64{2, 3, 4}, wantCap: 3, wantLast: 4, wantMax: 4},
		{name: "grow keeps samples", limit: 2, push: []float64{5, 6, 7}, resize: 5, want: []float64{6, 7}, wantCap: 5, wantLast: 7, wantMax: 7},
		{name: "shrink keeps newest", limit: 5, push: []float64{1, 8, 2, 3}, resize: 2, want: []float64{2, 3}, wantCap: 2, wantLast: 3, wantMax: 3},
		{name: "negative samples", limit: 2, push: []float64{-3, -1}, want: []float64{-3, -1}, wantCap: 2, wantLast: -1, wantMax: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSeries(tt.limit)
			for _, v := range tt.push {
				s.Push(v)
			}
			if tt.resize != 0 {
				s.Resize(tt.resize)
			}
			if got := s.Slice(); !slices.Equal(got, tt.want) {
				t.Errorf("Slice() = %v, want %v", got, tt.want)
			}
			if s.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", s.Len(), len(tt.want))
			}
			if s.Cap() != tt.wantCap {
				t.Errorf("Cap() = %d, want %d", s.Cap(), tt.wantCap)
			}
			if s.Last() != tt.wantLast {
				t.Errorf("Last() = %v, want %v", s.Last(), tt.wantLast)
			}
			if s.Max() != tt.wantMax {
				t.Errorf("Max() = %v, want %v", s.Max(), tt.wantMax)
			}
		})
	}
}

func TestSeries_SliceIsACopy(t *testing.T) {
	s := NewSeries(3)
	s.Push(1)
	got := s.Slice()
	got[0] = 42
	if s.Last() != 1 {
		t.Errorf("mutating Slice() changed the series: %v", s.Last())
	}
}

func TestSeries_ResetThenPush(t *testing.T) {
	s := NewSeries(2)
	s.Push(1)
	s.Push(2)
	s.Reset()
	if s.Len() != 0 || s.Slice() != nil {
		t.Fatalf("Reset left %v", s.Slice())
	}
	s.Push(3)
	if got := s.Slice(); !slices.Equal(got, []float64{3}) {
		t.Errorf("after reset Slice() = %v", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		ceiling float64
		want    string
	}{
		{"empty", nil, 10, ""},
		{"zero ceiling", []float64{5, 10}, 0, "▁▁"},
		{"bounds", []float64{0, 10}, 10, "▁█"},
		{"half", []float64{5}, 10, "▄"},
		{"clamped", []float64{-4, 25}, 10, "▁█"},
		{"ceiling scales", []float64{50}, 200, "▂"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderSparkline(tt.values, tt.ceiling); got != tt.want {
				t.Errorf("RenderSparkline(%v, %v) = %q, want %q", tt.values, tt.ceiling, got, tt.want)
			}
		})
	}
}

func TestRenderBrailleChart_Degenerate(t *testing.T) {
	for _, tc := range []struct {
		values      []float64
		width, rows int
	}{
		{nil, 10, 2},
		{[]float64{50}, 0, 2},
		{[]float64{50}, 4, 0},
	} {
		if got := RenderBrailleChart(tc.values, tc.width, tc.rows); got != nil {
			t.Errorf("RenderBrailleChart(%v, %d, %d) = %v, want nil", tc.values, tc.width, tc.rows, got)
		}
	}
}

func TestRenderBrailleChart_Shape(t *testing.T) {
	lines := RenderBrailleChart([]float64{0, 25, 50, 75, 100}, 6, 3)
	if len(lines) != 3 {
		t.Fatalf("rows = %d, want 3", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n != 6 {
			t.Errorf("row %d has %d cells, want 6", i, n)
		}
	}

	// 200 samples into a 2-cell chart keep only the newest 4 dot columns.
	if lines := RenderBrailleChart(make([]float64, 200), 2, 1); len([]rune(lines[0])) != 2 {
		t.Errorf("overflowing input changed the width: %q", lines[0])
	}
}

func TestRenderBrailleChart_Placement(t *testing.T) {
	// A single 0% sample lands in the bottom-right cell only.
	low := RenderBrailleChart([]float64{0}, 3, 2)
	for r, line := range low {
		for c, cell := range []rune(line) {
			wantDot := r == 1 && c == 2
			if (cell != blankCell) != wantDot {
				t.Errorf("0%%: cell (%d,%d) = %U, dot expected %v", r, c, cell, wantDot)
			}
		}
	}

	high := RenderBrailleChart([]float64{100}, 1, 2)
	if []rune(high[0])[0] == blankCell || []rune(high[1])[0] != blankCell {
		t.Errorf("100%% should only mark the top row, got %q", high)
	}
}
