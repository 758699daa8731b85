// Package scoring computes task scores: the deadline score of a submission and the blended final rate.
package scoring

import (
	"math"
	"time"
)

const (
	// FullDeadlineScore is awarded to on-time submissions.
	FullDeadlineScore = 20.0
	// LatePenaltyPerDay is deducted per started day of lateness.
	LatePenaltyPerDay = 2.0

	day = 24 * time.Hour
)

// Weights are the percentages applied to the head and deadline evaluations.
// They are not normalized: the defaults sum to 70 and a perfect on-time task rates 54.
type Weights struct {
	HeadPercent     float64
	DeadlinePercent float64
}

var DefaultWeights = Weights{HeadPercent: 50, DeadlinePercent: 20}

// LateDays counts the started days between deadline and submitted. Any fraction counts as a full day.
func LateDays(submitted, deadline time.Time) int {
	late := submitted.Sub(deadline)
	if late <= 0 {
		return 0
	}
	return int(math.Ceil(float64(late) / float64(day)))
}

// DeadlineScore is FullDeadlineScore for submissions at or before the deadline,
// minus LatePenaltyPerDay per late day afterwards, floored at 0.
func DeadlineScore(submitted, deadline time.Time) float64 {
	if !submitted.After(deadline) {
		return FullDeadlineScore
	}
	return math.Max(0, FullDeadlineScore-LatePenaltyPerDay*float64(LateDays(submitted, deadline)))
}

// FinalRate blends the head evaluation with the deadline evaluation.
func FinalRate(headEvaluation, deadlineEvaluation float64, w Weights) float64 {
	return headEvaluation*w.HeadPercent/100 + deadlineEvaluation*w.DeadlinePercent/100
}
