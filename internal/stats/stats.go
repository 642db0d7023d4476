// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/verte-zerg/stroop/internal/model"
)

// ClassStats summarizes the trials of one congruence class.
type ClassStats struct {
	SampleCount             int
	CorrectCount            int
	AccuracyRatePercent     float64
	MeanReactionTimeSeconds float64
}

// HasMean reports whether the class had samples to average.
func (c ClassStats) HasMean() bool {
	return !math.IsNaN(c.MeanReactionTimeSeconds)
}

// Report compares congruent and incongruent trials.
type Report struct {
	Congruent   ClassStats
	Incongruent ClassStats
}

// Total returns the number of trials in the report.
func (r Report) Total() int {
	return r.Congruent.SampleCount + r.Incongruent.SampleCount
}

// Interference is the incongruent minus congruent mean reaction time in
// seconds, or NaN when either class is empty.
func (r Report) Interference() float64 {
	if !r.Congruent.HasMean() || !r.Incongruent.HasMean() {
		return math.NaN()
	}
	return r.Incongruent.MeanReactionTimeSeconds - r.Congruent.MeanReactionTimeSeconds
}

// Aggregate splits records by congruence and summarizes each class.
func Aggregate(records []model.TrialRecord) Report {
	matched, mismatched := Partition(records)
	return Report{
		Congruent:   classStats(matched),
		Incongruent: classStats(mismatched),
	}
}

// Partition splits records into congruent and incongruent trials,
// preserving order.
func Partition(records []model.TrialRecord) (matched, mismatched []model.TrialRecord) {
	for _, r := range records {
		if r.Congruent() {
			matched = append(matched, r)
		} else {
			mismatched = append(mismatched, r)
		}
	}
	return matched, mismatched
}

func classStats(records []model.TrialRecord) ClassStats {
	out := ClassStats{SampleCount: len(records), MeanReactionTimeSeconds: math.NaN()}
	if len(records) == 0 {
		return out
	}
	times := make([]float64, 0, len(records))
	for _, r := range records {
		if r.IsCorrect {
			out.CorrectCount++
		}
		times = append(times, r.ReactionTimeSeconds)
	}
	out.AccuracyRatePercent = 100 * float64(out.CorrectCount) / float64(len(records))
	if mean, err := stats.Mean(times); err == nil {
		out.MeanReactionTimeSeconds = mean
	}
	return out
}

// SessionReport rebuilds a Report from a stored session aggregate.
func SessionReport(agg model.SessionAggregate) Report {
	return Report{
		Congruent:   fromSums(agg.CongruentCount, agg.CongruentCorrect, agg.CongruentRTSum),
		Incongruent: fromSums(agg.IncongruentCount, agg.IncongruentCorrect, agg.IncongruentRTSum),
	}
}

func fromSums(count, correct int, rtSum float64) ClassStats {
	out := ClassStats{SampleCount: count, CorrectCount: correct, MeanReactionTimeSeconds: math.NaN()}
	if count == 0 {
		return out
	}
	out.AccuracyRatePercent = 100 * float64(correct) / float64(count)
	out.MeanReactionTimeSeconds = rtSum / float64(count)
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
// NaN values are skipped; a window with no values yields NaN.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		n := 0
		for _, v := range values[start : i+1] {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}
