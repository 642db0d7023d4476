// Package tui provides the Bubble Tea Stroop test interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/stroop/internal/engine"
	"github.com/verte-zerg/stroop/internal/model"
)

// tickMsg is a live display refresh for the session with the given epoch.
type tickMsg struct {
	epoch uint64
}

// Model implements the Bubble Tea test UI. It maps keys and clicks to
// palette colors and forwards them to the engine.
type Model struct {
	engine  *engine.Engine
	palette model.Palette
	logger  *zap.Logger

	width  int
	height int

	elapsed   time.Duration
	showStats bool
	status    string
	statusErr bool
}

// NewModel constructs a test TUI model. logger may be nil.
func NewModel(eng *engine.Engine, palette model.Palette, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		engine:  eng,
		palette: palette,
		logger:  logger.Named("tui"),
		status:  "Press enter to start.",
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.epoch != m.engine.Epoch() || !m.engine.Running() {
			return m, nil
		}
		m.elapsed = m.engine.Elapsed()
		return m, m.waitForTick()
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if c, ok := m.swatchAt(msg.X, msg.Y); ok {
			m.submit(c)
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Shutdown()
			return m, tea.Quit
		case "enter", "s":
			return m, m.start()
		case "x", "esc":
			m.stop()
			return m, nil
		case "t", "tab":
			m.showStats = !m.showStats
			return m, nil
		default:
			if c, ok := m.colorForKey(msg.String()); ok {
				m.submit(c)
			}
			return m, nil
		}
	default:
		return m, nil
	}
}

// Shutdown stops a running session, saving it, and halts the live display.
func (m *Model) Shutdown() {
	m.stop()
	m.engine.Close()
}

func (m *Model) start() tea.Cmd {
	restart := m.engine.Running()
	m.engine.Start()
	m.elapsed = 0
	m.setStatus("", false)
	m.logger.Info("session started", zap.String("session", m.engine.SessionID()), zap.Bool("restart", restart))
	return m.waitForTick()
}

func (m *Model) stop() {
	if !m.engine.Running() {
		return
	}
	trials := m.engine.Len()
	err := m.engine.Stop(context.Background())
	m.elapsed = 0
	fields := []zap.Field{zap.String("session", m.engine.SessionID()), zap.Int("trials", trials)}
	switch {
	case err != nil:
		m.logger.Error("session export failed", append(fields, zap.Error(err))...)
		m.setStatus(fmt.Sprintf("Save failed: %v", err), true)
	case trials == 0:
		m.logger.Info("session stopped without trials", fields...)
		m.setStatus("Stopped. Nothing to save.", false)
	default:
		m.logger.Info("session saved", fields...)
		m.setStatus(fmt.Sprintf("Saved %d trials.", trials), false)
	}
}

func (m *Model) submit(c model.Color) {
	if !m.engine.Running() {
		return
	}
	m.engine.Submit(c)
	m.elapsed = 0
	m.logger.Debug("response", zap.String("selected", string(c)), zap.Int("trial", m.engine.Len()))
}

// waitForTick delivers the next live display tick of the current session.
// It yields nothing once that session's ticker is stopped.
func (m *Model) waitForTick() tea.Cmd {
	ch := m.engine.Ticks()
	if ch == nil {
		return nil
	}
	epoch := m.engine.Epoch()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return tickMsg{epoch: epoch}
	}
}

func (m *Model) colorForKey(key string) (model.Color, bool) {
	if len(key) != 1 {
		return "", false
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(m.palette) || n > model.MaxPaletteSize {
		return "", false
	}
	return m.palette[n-1], true
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}
