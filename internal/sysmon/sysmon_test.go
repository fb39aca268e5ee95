package sysmon

import (
	"context"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	l := Sample(context.Background())
	if l.CPUPercent < 0 || l.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", l.CPUPercent)
	}
	if l.MemPercent < 0 || l.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", l.MemPercent)
	}
}

func TestSample_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := Sample(ctx)
	if l.CPUPercent < 0 || l.MemPercent < 0 {
		t.Errorf("canceled sample should not go negative: %+v", l)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-3, 0},
		{0, 0},
		{42.5, 42.5},
		{100, 100},
		{130, 100},
	}
	for _, tt := range tests {
		if got := clamp(tt.in); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
