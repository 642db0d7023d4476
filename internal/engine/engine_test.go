package engine

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/verte-zerg/stroop/internal/clock"
	"github.com/verte-zerg/stroop/internal/generator"
	"github.com/verte-zerg/stroop/internal/model"
)

type scriptedSource struct {
	stimuli []model.Stimulus
	next    int
}

func (s *scriptedSource) Generate() model.Stimulus {
	st := s.stimuli[s.next%len(s.stimuli)]
	s.next++
	return st
}

type recordingExporter struct {
	calls    int
	sessions []model.Session
	err      error
}

func (r *recordingExporter) Export(_ context.Context, session model.Session) error {
	r.calls++
	r.sessions = append(r.sessions, session)
	return r.err
}

func newTestEngine(stimuli ...model.Stimulus) (*Engine, *clock.Manual, *recordingExporter) {
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	exp := &recordingExporter{}
	eng := New(&scriptedSource{stimuli: stimuli}, clk, exp, Options{Palette: model.DefaultPalette()})
	return eng, clk, exp
}

func TestStartClearsDatasetAndRuns(t *testing.T) {
	eng, clk, _ := newTestEngine(model.Stimulus{Word: "red", Ink: "blue"})
	eng.Start()
	clk.Advance(time.Second)
	eng.Submit("red")
	if len(eng.Dataset()) != 1 {
		t.Fatalf("expected 1 record before restart")
	}
	eng.Start()
	if eng.State() != model.Running {
		t.Fatalf("expected running, got %v", eng.State())
	}
	if len(eng.Dataset()) != 0 {
		t.Fatalf("expected restart to clear dataset, got %d", len(eng.Dataset()))
	}
	if _, ok := eng.Stimulus(); !ok {
		t.Fatalf("expected a presented stimulus")
	}
}

func TestSubmitRecordsTrial(t *testing.T) {
	eng, clk, _ := newTestEngine(
		model.Stimulus{Word: "red", Ink: "red"},
		model.Stimulus{Word: "red", Ink: "blue"},
		model.Stimulus{Word: "green", Ink: "yellow"},
	)
	eng.Start()
	clk.Advance(400 * time.Millisecond)
	eng.Submit("red")
	clk.Advance(550 * time.Millisecond)
	eng.Submit("blue")

	records := eng.Dataset()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first, second := records[0], records[1]
	if first.PresentedWord != "red" || first.PresentedInk != "red" || first.Selected != "red" || !first.IsCorrect {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if math.Abs(first.ReactionTimeSeconds-0.4) > 1e-9 {
		t.Fatalf("expected 0.4s, got %v", first.ReactionTimeSeconds)
	}
	if second.PresentedInk != "blue" || second.IsCorrect {
		t.Fatalf("selecting the ink color must score as incorrect: %+v", second)
	}
	if math.Abs(second.ReactionTimeSeconds-0.55) > 1e-9 {
		t.Fatalf("expected per-trial 0.55s, got %v", second.ReactionTimeSeconds)
	}
	st, _ := eng.Stimulus()
	if st.Word != "green" {
		t.Fatalf("expected next stimulus to be presented, got %+v", st)
	}
}

func TestSubmitWhileIdleIsIgnored(t *testing.T) {
	eng, _, exp := newTestEngine(model.Stimulus{Word: "red", Ink: "red"})
	eng.Submit("red")
	if len(eng.Dataset()) != 0 {
		t.Fatalf("expected no records before start")
	}
	eng.Start()
	eng.Submit("red")
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	eng.Submit("red")
	if len(eng.Dataset()) != 1 {
		t.Fatalf("expected late response to be ignored, got %d records", len(eng.Dataset()))
	}
	if exp.calls != 1 {
		t.Fatalf("expected 1 export, got %d", exp.calls)
	}
}

func TestStopExportsOnceWithAllRows(t *testing.T) {
	eng, clk, exp := newTestEngine(model.Stimulus{Word: "red", Ink: "blue"})
	eng.Start()
	for i := 0; i < 3; i++ {
		clk.Advance(100 * time.Millisecond)
		eng.Submit("blue")
	}
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if exp.calls != 1 {
		t.Fatalf("expected exactly 1 export, got %d", exp.calls)
	}
	sess := exp.sessions[0]
	if len(sess.Trials) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(sess.Trials))
	}
	if sess.ID == "" || sess.ID != eng.SessionID() {
		t.Fatalf("expected session id to be set, got %q", sess.ID)
	}
	if !sess.EndedAt.After(sess.StartedAt) {
		t.Fatalf("expected end after start: %v %v", sess.StartedAt, sess.EndedAt)
	}
	if eng.State() != model.Idle {
		t.Fatalf("expected idle after stop")
	}
}

func TestStopEmptySessionSkipsExport(t *testing.T) {
	eng, _, exp := newTestEngine(model.Stimulus{Word: "red", Ink: "blue"})
	eng.Start()
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if exp.calls != 0 {
		t.Fatalf("expected no export for empty session, got %d", exp.calls)
	}
}

func TestStopExportErrorKeepsState(t *testing.T) {
	eng, _, exp := newTestEngine(model.Stimulus{Word: "red", Ink: "red"})
	exp.err = errors.New("disk full")
	eng.Start()
	eng.Submit("red")
	if err := eng.Stop(context.Background()); !errors.Is(err, exp.err) {
		t.Fatalf("expected export error, got %v", err)
	}
	if eng.State() != model.Idle {
		t.Fatalf("expected idle after failed export")
	}
	if len(eng.Dataset()) != 1 {
		t.Fatalf("expected dataset to survive failed export")
	}
}

func TestDatasetIsACopy(t *testing.T) {
	eng, _, _ := newTestEngine(model.Stimulus{Word: "red", Ink: "red"})
	eng.Start()
	eng.Submit("red")
	snap := eng.Dataset()
	snap[0].Selected = "blue"
	if eng.Dataset()[0].Selected != "red" {
		t.Fatalf("mutating a snapshot must not change the engine's dataset")
	}
}

func TestLenTracksDataset(t *testing.T) {
	eng, _, _ := newTestEngine(model.Stimulus{Word: "red", Ink: "blue"})
	if eng.Len() != 0 {
		t.Fatalf("expected empty dataset, got %d", eng.Len())
	}
	eng.Start()
	eng.Submit("red")
	eng.Submit("blue")
	if eng.Len() != 2 || eng.Len() != len(eng.Dataset()) {
		t.Fatalf("expected Len 2 matching dataset, got %d", eng.Len())
	}
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if eng.Len() != 2 {
		t.Fatalf("expected dataset kept after stop, got %d", eng.Len())
	}
	eng.Start()
	if eng.Len() != 0 {
		t.Fatalf("expected restart to clear dataset, got %d", eng.Len())
	}
}

func TestElapsedAndTicksOnlyWhileRunning(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	eng := New(&scriptedSource{stimuli: []model.Stimulus{{Word: "red", Ink: "red"}}}, clk, nil, Options{DisplayInterval: time.Millisecond})
	t.Cleanup(eng.Close)
	if eng.Ticks() != nil || eng.Elapsed() != 0 {
		t.Fatalf("expected no display while idle")
	}
	eng.Start()
	epoch := eng.Epoch()
	clk.Advance(250 * time.Millisecond)
	if eng.Elapsed() != 250*time.Millisecond {
		t.Fatalf("expected 250ms elapsed, got %v", eng.Elapsed())
	}
	ticks := eng.Ticks()
	if ticks == nil {
		t.Fatalf("expected a tick channel while running")
	}
	eng.Start()
	if eng.Epoch() == epoch {
		t.Fatalf("expected restart to advance the epoch")
	}
	for range ticks {
	}
	if err := eng.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if eng.Ticks() != nil {
		t.Fatalf("expected no ticks after stop")
	}
}

func TestEngineInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		palette := model.DefaultPalette()
		clk := clock.NewManual(time.Unix(0, 0))
		exp := &recordingExporter{}
		gen := generator.NewWithSeed(palette, rapid.Int64().Draw(t, "seed"))
		eng := New(gen, clk, exp, Options{Palette: palette})

		var want []model.Color
		var lastRT time.Duration
		exports := 0

		t.Repeat(map[string]func(*rapid.T){
			"start": func(t *rapid.T) {
				eng.Start()
				want = nil
			},
			"wait": func(t *rapid.T) {
				clk.Advance(time.Duration(rapid.IntRange(0, 3000).Draw(t, "ms")) * time.Millisecond)
			},
			"submit": func(t *rapid.T) {
				sel := rapid.SampledFrom(palette).Draw(t, "selected")
				before := len(eng.Dataset())
				st, running := eng.Stimulus()
				lastRT = eng.Elapsed()
				eng.Submit(sel)
				after := eng.Dataset()
				if !running {
					if len(after) != before {
						t.Fatalf("submit while idle changed dataset")
					}
					return
				}
				want = append(want, sel)
				rec := after[len(after)-1]
				if rec.PresentedWord != st.Word || rec.PresentedInk != st.Ink {
					t.Fatalf("record does not match presented stimulus")
				}
				if math.Abs(rec.ReactionTimeSeconds-lastRT.Seconds()) > 1e-9 {
					t.Fatalf("reaction time %v, want %v", rec.ReactionTimeSeconds, lastRT.Seconds())
				}
				if eng.Elapsed() != 0 {
					t.Fatalf("expected trial clock to restart after submit")
				}
			},
			"stop": func(t *rapid.T) {
				wasRunning := eng.Running()
				n := len(eng.Dataset())
				if err := eng.Stop(context.Background()); err != nil {
					t.Fatalf("stop: %v", err)
				}
				if wasRunning && n > 0 {
					exports++
					last := exp.sessions[len(exp.sessions)-1]
					if len(last.Trials) != n {
						t.Fatalf("exported %d rows, want %d", len(last.Trials), n)
					}
				}
			},
			"": func(t *rapid.T) {
				records := eng.Dataset()
				if len(records) != len(want) {
					t.Fatalf("dataset has %d records, want %d", len(records), len(want))
				}
				for i, r := range records {
					if r.Selected != want[i] {
						t.Fatalf("record %d out of order", i)
					}
					if r.IsCorrect != (r.Selected == r.PresentedWord) {
						t.Fatalf("record %d scored wrong: %+v", i, r)
					}
					if r.ReactionTimeSeconds < 0 {
						t.Fatalf("negative reaction time")
					}
				}
				if exp.calls != exports {
					t.Fatalf("exporter called %d times, want %d", exp.calls, exports)
				}
			},
		})
	})
}
