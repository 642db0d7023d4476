package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/stroop/internal/clock"
	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/stats"
)

const (
	tipText = "Report the meaning"

	swatchWidth  = 8
	swatchGap    = 1
	swatchHeight = 2
	// swatchLine is the content row of the first swatch line.
	swatchLine = 6

	maxStatsWidth = 70
)

var (
	tipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	timerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// View implements tea.Model.
func (m *Model) View() string {
	lines := m.contentLines()
	var b strings.Builder
	for i := 0; i < m.topPad(len(lines)); i++ {
		b.WriteByte('\n')
	}
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(" ", m.leftPad(lipgloss.Width(line))))
		b.WriteString(line)
	}
	return b.String()
}

// contentLines renders the uncentered screen. View and swatchAt share it so
// hit-testing matches what is drawn.
func (m *Model) contentLines() []string {
	lines := []string{
		tipStyle.Render(tipText),
		"",
		m.renderWord(),
		"",
		timerStyle.Render(clock.FormatElapsed(m.elapsed)),
		"",
	}
	lines = append(lines, m.renderSwatches()...)
	lines = append(lines, m.renderLabels(), "")
	lines = append(lines, footerStyle.Render(m.helpText()))
	if m.statusErr {
		lines = append(lines, errorStyle.Render(m.status))
	} else {
		lines = append(lines, footerStyle.Render(m.status))
	}
	if m.showStats {
		lines = append(lines, "")
		lines = append(lines, m.renderStats()...)
	}
	return lines
}

func (m *Model) renderWord() string {
	stim, ok := m.engine.Stimulus()
	if !ok {
		return idleStyle.Render("press enter to start")
	}
	style := lipgloss.NewStyle().Bold(true).Padding(0, 2)
	if hex, known := stim.Ink.Hex(); known {
		style = style.Foreground(lipgloss.Color(hex))
	}
	return style.Render(strings.ToUpper(string(stim.Word)))
}

func (m *Model) renderSwatches() []string {
	cells := make([]string, len(m.palette))
	for i, c := range m.palette {
		style := lipgloss.NewStyle().Width(swatchWidth)
		if hex, ok := c.Hex(); ok {
			style = style.Background(lipgloss.Color(hex))
		}
		cells[i] = style.Render(strings.Repeat(" ", swatchWidth))
	}
	row := strings.Join(cells, strings.Repeat(" ", swatchGap))
	lines := make([]string, swatchHeight)
	for i := range lines {
		lines[i] = row
	}
	return lines
}

func (m *Model) renderLabels() string {
	cells := make([]string, len(m.palette))
	for i, c := range m.palette {
		label := runewidth.Truncate(strconv.Itoa(i+1)+" "+string(c), swatchWidth, "")
		cells[i] = labelStyle.Render(runewidth.FillRight(label, swatchWidth))
	}
	return strings.Join(cells, strings.Repeat(" ", swatchGap))
}

func (m *Model) helpText() string {
	keys := "1-" + strconv.Itoa(min(len(m.palette), model.MaxPaletteSize))
	if m.engine.Running() {
		return keys + " answer · x stop & save · enter restart · t stats · q quit"
	}
	return "enter start · t stats · q quit"
}

func (m *Model) renderStats() []string {
	width := maxStatsWidth
	if m.width > 0 && m.width < width {
		width = m.width
	}
	var b strings.Builder
	if err := stats.RenderComparison(&b, stats.Aggregate(m.engine.Dataset()), width, true); err != nil {
		return []string{errorStyle.Render(err.Error())}
	}
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}

func (m *Model) rowWidth() int {
	n := len(m.palette)
	if n == 0 {
		return 0
	}
	return n*swatchWidth + (n-1)*swatchGap
}

func (m *Model) topPad(contentHeight int) int {
	if m.height <= contentHeight {
		return 0
	}
	return (m.height - contentHeight) / 2
}

func (m *Model) leftPad(lineWidth int) int {
	if m.width <= lineWidth {
		return 0
	}
	return (m.width - lineWidth) / 2
}

// swatchAt maps a terminal cell to the palette color drawn there. Clicks on
// a swatch or its label count; gaps between swatches do not.
func (m *Model) swatchAt(x, y int) (model.Color, bool) {
	lines := m.contentLines()
	row := y - m.topPad(len(lines))
	if row < swatchLine || row > swatchLine+swatchHeight {
		return "", false
	}
	rel := x - m.leftPad(m.rowWidth())
	if rel < 0 {
		return "", false
	}
	stride := swatchWidth + swatchGap
	idx := rel / stride
	if idx >= len(m.palette) || rel%stride >= swatchWidth {
		return "", false
	}
	return m.palette[idx], true
}
