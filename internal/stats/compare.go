package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	barFull         = '█'
	defaultBarWidth = 30
	minBarWidth     = 5
	classCongruent  = "Congruent"
	classIncongr    = "Incongruent"
)

// FormatSeconds renders a mean reaction time, or "n/a" when undefined.
func FormatSeconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}

// FormatInterference renders the Stroop interference in signed milliseconds.
func FormatInterference(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.0f ms", v*1000)
}

// RenderComparison prints the congruent/incongruent table and bar chart.
// totalWidth bounds the bar length; zero uses a default.
func RenderComparison(w io.Writer, report Report, totalWidth int, useColor bool) error {
	if report.Total() == 0 {
		_, err := fmt.Fprintln(w, "No trials recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Congruent vs Incongruent"); err != nil {
		return err
	}
	headers := []string{"Class", "Samples", "Accuracy", "Mean RT"}
	rows := [][]string{
		classRow(classCongruent, report.Congruent),
		classRow(classIncongr, report.Incongruent),
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Interference: %s\n\n", FormatInterference(report.Interference())); err != nil {
		return err
	}

	labelWidth := runewidth.StringWidth(classIncongr)
	barWidth := defaultBarWidth
	if totalWidth > 0 {
		// label, space, bar, space, value
		barWidth = totalWidth - labelWidth - 2 - len("100.0%")
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	acc := []barItem{
		{label: classCongruent, value: report.Congruent.AccuracyRatePercent, text: fmt.Sprintf("%.1f%%", report.Congruent.AccuracyRatePercent)},
		{label: classIncongr, value: report.Incongruent.AccuracyRatePercent, text: fmt.Sprintf("%.1f%%", report.Incongruent.AccuracyRatePercent)},
	}
	if err := renderBars(w, "Accuracy rate", acc, 100, labelWidth, barWidth, colorPalette[0], useColor); err != nil {
		return err
	}

	rt := []barItem{
		{label: classCongruent, value: report.Congruent.MeanReactionTimeSeconds, text: FormatSeconds(report.Congruent.MeanReactionTimeSeconds)},
		{label: classIncongr, value: report.Incongruent.MeanReactionTimeSeconds, text: FormatSeconds(report.Incongruent.MeanReactionTimeSeconds)},
	}
	maxRT := 0.0
	for _, item := range rt {
		if !math.IsNaN(item.value) && item.value > maxRT {
			maxRT = item.value
		}
	}
	return renderBars(w, "Mean reaction time", rt, maxRT, labelWidth, barWidth, colorPalette[1], useColor)
}

func classRow(name string, c ClassStats) []string {
	return []string{
		name,
		fmt.Sprintf("%d", c.SampleCount),
		fmt.Sprintf("%.1f%%", c.AccuracyRatePercent),
		FormatSeconds(c.MeanReactionTimeSeconds),
	}
}

type barItem struct {
	label string
	value float64
	text  string
}

func renderBars(w io.Writer, title string, items []barItem, maxVal float64, labelWidth, barWidth int, color ansiColor, useColor bool) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, item := range items {
		n := barLength(item.value, maxVal, barWidth)
		bar := strings.Repeat(string(barFull), n)
		pad := strings.Repeat(" ", barWidth-n)
		if useColor && bar != "" {
			bar = color.code + bar + colorReset
		}
		if _, err := fmt.Fprintf(w, "%s %s%s %s\n", padCell(item.label, labelWidth, false), bar, pad, item.text); err != nil {
			return err
		}
	}
	return nil
}

func barLength(value, maxVal float64, width int) int {
	if math.IsNaN(value) || maxVal <= 0 || value <= 0 {
		return 0
	}
	n := int(math.Round(value / maxVal * float64(width)))
	if n > width {
		n = width
	}
	return n
}
