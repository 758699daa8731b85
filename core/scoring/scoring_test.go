package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadlineScore(t *testing.T) {
	deadline := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		submitted time.Time
		want      float64
		wantLate  int
	}{
		{name: "a week early", submitted: deadline.Add(-7 * day), want: 20},
		{name: "exactly at deadline", submitted: deadline, want: 20},
		{name: "one second late", submitted: deadline.Add(time.Second), want: 18, wantLate: 1},
		{name: "exactly one day late", submitted: deadline.Add(day), want: 18, wantLate: 1},
		{name: "one day and a minute late", submitted: deadline.Add(day + time.Minute), want: 16, wantLate: 2},
		{name: "nine days late", submitted: deadline.Add(9 * day), want: 2, wantLate: 9},
		{name: "ten days late", submitted: deadline.Add(10 * day), want: 0, wantLate: 10},
		{name: "fifteen days late", submitted: deadline.Add(15 * day), want: 0, wantLate: 15},
		{name: "other timezone", submitted: deadline.In(time.FixedZone("EAT", 3*3600)), want: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeadlineScore(tt.submitted, deadline))
			assert.Equal(t, tt.wantLate, LateDays(tt.submitted, deadline))
		})
	}
}

func TestDeadlineScore_bounds(t *testing.T) {
	deadline := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for offset := -48 * time.Hour; offset <= 30*day; offset += 7 * time.Hour {
		score := DeadlineScore(deadline.Add(offset), deadline)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, FullDeadlineScore)
	}
}

func TestFinalRate(t *testing.T) {
	tests := []struct {
		name     string
		head     float64
		deadline float64
		weights  Weights
		want     float64
	}{
		{name: "perfect task with defaults", head: 100, deadline: 20, weights: DefaultWeights, want: 54},
		{name: "zeros", weights: DefaultWeights, want: 0},
		{name: "late and average", head: 60, deadline: 14, weights: DefaultWeights, want: 32.8},
		{name: "custom weights", head: 80, deadline: 20, weights: Weights{HeadPercent: 80, DeadlinePercent: 100}, want: 84},
		{name: "no deadline weight", head: 90, deadline: 0, weights: Weights{HeadPercent: 100}, want: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FinalRate(tt.head, tt.deadline, tt.weights), 1e-9)
		})
	}
}
