package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/stroop/internal/model"
	"github.com/verte-zerg/stroop/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stroop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func seedSessions(t *testing.T, st *store.Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		start := time.Unix(1_700_000_000, 0).Add(time.Duration(i) * time.Hour)
		sess := model.Session{
			ID:        id,
			StartedAt: start,
			EndedAt:   start.Add(time.Minute),
			Palette:   model.DefaultPalette(),
			Trials: []model.TrialRecord{
				{PresentedWord: "red", PresentedInk: "red", Selected: "red", ReactionTimeSeconds: 0.5, IsCorrect: true},
				{PresentedWord: "blue", PresentedInk: "green", Selected: "green", ReactionTimeSeconds: 0.8},
			},
		}
		if err := st.InsertSession(context.Background(), sess); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewModel(openStore(t), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty message:\n%s", m.View())
	}
}

func TestOverviewAndSessionsTabs(t *testing.T) {
	st := openStore(t)
	seedSessions(t, st, "aaaaaaaa-1", "bbbbbbbb-2", "cccccccc-3")
	m := NewModel(st, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	for _, want := range []string{"Overview", "Sessions", "Interference", "+300 ms", "window=1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabSessions {
		t.Fatalf("expected sessions tab, got %d", m.activeTab)
	}
	rows := m.sessions.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "cccccccc" {
		t.Fatalf("expected newest session first, got %v", rows[0])
	}
	if rows[0][4] != "100.0%" || rows[0][5] != "0.0%" || rows[0][7] != "0.800s" {
		t.Fatalf("unexpected row %v", rows[0])
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected tab wrap to overview, got %d", m.activeTab)
	}
}

func TestLastLimitsSessions(t *testing.T) {
	st := openStore(t)
	seedSessions(t, st, "one", "two", "three")
	m := NewModel(st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if len(m.report.Sessions) != 2 || m.report.Summary.Trials != 4 {
		t.Fatalf("unexpected report %+v", m.report.Summary)
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(openStore(t), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(openStore(t), model.StatsConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
