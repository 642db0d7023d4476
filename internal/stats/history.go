package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/stroop/internal/model"
)

// HistorySummary averages stored sessions.
type HistorySummary struct {
	Sessions          int
	Trials            int
	CongruentAcc      float64
	IncongruentAcc    float64
	CongruentMeanRT   float64
	IncongruentMeanRT float64
	Interference      float64
}

// Summarize pools every trial of the given sessions into one report.
func Summarize(sessions []model.SessionAggregate) HistorySummary {
	var pooled model.SessionAggregate
	for _, s := range sessions {
		pooled.CongruentCount += s.CongruentCount
		pooled.CongruentCorrect += s.CongruentCorrect
		pooled.CongruentRTSum += s.CongruentRTSum
		pooled.IncongruentCount += s.IncongruentCount
		pooled.IncongruentCorrect += s.IncongruentCorrect
		pooled.IncongruentRTSum += s.IncongruentRTSum
	}
	r := SessionReport(pooled)
	return HistorySummary{
		Sessions:          len(sessions),
		Trials:            r.Total(),
		CongruentAcc:      r.Congruent.AccuracyRatePercent,
		IncongruentAcc:    r.Incongruent.AccuracyRatePercent,
		CongruentMeanRT:   r.Congruent.MeanReactionTimeSeconds,
		IncongruentMeanRT: r.Incongruent.MeanReactionTimeSeconds,
		Interference:      r.Interference(),
	}
}

// RenderSummary prints pooled totals for stored sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Trials: %d", s.Trials),
		fmt.Sprintf("Congruent accuracy: %.1f%%", s.CongruentAcc),
		fmt.Sprintf("Incongruent accuracy: %.1f%%", s.IncongruentAcc),
		fmt.Sprintf("Congruent mean RT: %s", FormatSeconds(s.CongruentMeanRT)),
		fmt.Sprintf("Incongruent mean RT: %s", FormatSeconds(s.IncongruentMeanRT)),
		fmt.Sprintf("Interference: %s", FormatInterference(s.Interference)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurvesWithSize prints per-session learning curves sized to totalWidth.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	congAcc := make([]float64, len(sessions))
	incongAcc := make([]float64, len(sessions))
	interference := make([]float64, len(sessions))
	for i, s := range sessions {
		r := SessionReport(s)
		congAcc[i] = classAccuracy(r.Congruent)
		incongAcc[i] = classAccuracy(r.Incongruent)
		interference[i] = r.Interference() * 1000
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	if err := PlotSeriesWithColor(w, "Accuracy (%)", []Series{
		{Name: "Congruent", Values: MovingAverage(congAcc, window)},
		{Name: "Incongruent", Values: MovingAverage(incongAcc, window)},
	}, width, height, useColor); err != nil {
		return err
	}
	return PlotSeriesWithColor(w, "Interference (ms)", []Series{
		{Name: "Incongruent - congruent RT", Values: MovingAverage(interference, window)},
	}, width, height, useColor)
}

// classAccuracy is NaN for an empty class so it plots as a gap.
func classAccuracy(c ClassStats) float64 {
	if c.SampleCount == 0 {
		return math.NaN()
	}
	return c.AccuracyRatePercent
}
