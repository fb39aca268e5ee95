package orchestration

import (
	"testing"

	"github.com/agbru/tallyrun/internal/progress"
)

func TestNewProgressAggregator(t *testing.T) {
	tests := []struct {
		workers   int
		wantNil   bool
		wantMulti bool
	}{
		{workers: -1, wantNil: true},
		{workers: 0, wantNil: true},
		{workers: 1},
		{workers: 3, wantMulti: true},
	}
	for _, tt := range tests {
		agg := NewProgressAggregator(tt.workers)
		if (agg == nil) != tt.wantNil {
			t.Fatalf("NewProgressAggregator(%d) nil = %v, want %v", tt.workers, agg == nil, tt.wantNil)
		}
		if agg == nil {
			continue
		}
		if agg.NumWorkers() != tt.workers {
			t.Errorf("NumWorkers() = %d, want %d", agg.NumWorkers(), tt.workers)
		}
		if agg.IsMultiWorker() != tt.wantMulti {
			t.Errorf("IsMultiWorker() with %d workers = %v", tt.workers, agg.IsMultiWorker())
		}
	}
}

func TestProgressAggregator_Update(t *testing.T) {
	agg := NewProgressAggregator(2)
	if agg.CalculateAverage() != 0 || agg.GetETA() != 0 {
		t.Fatalf("fresh aggregator: avg %v, eta %v", agg.CalculateAverage(), agg.GetETA())
	}

	half := progress.TargetSteps / 2
	steps := []struct {
		worker, value int
		wantValue     float64
		wantAverage   float64
	}{
		{0, half, 0.5, 0.25},
		{1, half, 0.5, 0.5},
		{0, progress.TargetSteps, 1, 0.75},
	}
	for _, s := range steps {
		ap := agg.Update(s.worker, s.value)
		if ap.Worker != s.worker || ap.Value != s.wantValue || ap.AverageProgress != s.wantAverage {
			t.Errorf("Update(%d, %d) = %+v, want value %v average %v", s.worker, s.value, ap, s.wantValue, s.wantAverage)
		}
	}
	if got := agg.CalculateAverage(); got != 0.75 {
		t.Errorf("CalculateAverage() = %v, want 0.75", got)
	}
}
