// Package engine runs the Stroop trial state machine.
//
// An Engine is driven from a single goroutine (the UI event loop). It owns
// the session state and dataset; callers only ever see copies. Calls that
// arrive in the wrong state, such as a response after Stop, are ignored.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/stroop/internal/clock"
	"github.com/verte-zerg/stroop/internal/model"
)

// StimulusSource produces the stimulus for each trial.
type StimulusSource interface {
	Generate() model.Stimulus
}

// Exporter receives each completed, non-empty session.
type Exporter interface {
	Export(ctx context.Context, session model.Session) error
}

// ExporterFunc adapts a function to Exporter.
type ExporterFunc func(ctx context.Context, session model.Session) error

// Export implements Exporter.
func (f ExporterFunc) Export(ctx context.Context, session model.Session) error {
	return f(ctx, session)
}

// Engine is the trial state machine.
type Engine struct {
	source          StimulusSource
	clock           clock.Clock
	exporter        Exporter
	palette         model.Palette
	displayInterval time.Duration

	state      model.SessionState
	stimulus   model.Stimulus
	trialStart time.Time
	dataset    []model.TrialRecord

	sessionID string
	startedAt time.Time
	epoch     uint64
	ticker    *clock.Ticker
}

// Options configures an Engine.
type Options struct {
	// Palette is recorded on exported sessions.
	Palette model.Palette
	// DisplayInterval enables the live display ticker when positive.
	DisplayInterval time.Duration
}

// New constructs an idle Engine. exporter may be nil.
func New(source StimulusSource, clk clock.Clock, exporter Exporter, opts Options) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	return &Engine{
		source:          source,
		clock:           clk,
		exporter:        exporter,
		palette:         opts.Palette,
		displayInterval: opts.DisplayInterval,
	}
}

// Start begins a fresh session from any state. A running session is
// discarded without being exported.
func (e *Engine) Start() {
	e.stopDisplay()
	e.epoch++
	e.dataset = []model.TrialRecord{}
	e.state = model.Running
	e.sessionID = uuid.NewString()
	e.startedAt = e.clock.Now()
	e.stimulus = e.source.Generate()
	e.trialStart = e.clock.Now()
	if e.displayInterval > 0 {
		e.ticker = clock.NewTicker(context.Background(), e.displayInterval)
	}
}

// Submit records the response to the current stimulus and presents the
// next one. It does nothing while idle.
func (e *Engine) Submit(selected model.Color) {
	if e.state != model.Running {
		return
	}
	elapsed := clock.Mark(e.clock, e.trialStart)
	e.dataset = append(e.dataset, model.TrialRecord{
		PresentedWord:       e.stimulus.Word,
		PresentedInk:        e.stimulus.Ink,
		Selected:            selected,
		ReactionTimeSeconds: elapsed.Seconds(),
		IsCorrect:           selected == e.stimulus.Word,
	})
	e.stimulus = e.source.Generate()
	e.trialStart = e.clock.Now()
}

// Stop ends the running session and exports it when it has trials. It does
// nothing while idle. The engine is idle again before the exporter runs, so
// an export error leaves the session state and dataset intact.
func (e *Engine) Stop(ctx context.Context) error {
	if e.state != model.Running {
		return nil
	}
	e.state = model.Idle
	e.stimulus = model.Stimulus{}
	e.stopDisplay()
	e.epoch++
	if len(e.dataset) == 0 || e.exporter == nil {
		return nil
	}
	return e.exporter.Export(ctx, e.session())
}

// Close stops the live display. Call it on shutdown.
func (e *Engine) Close() {
	e.stopDisplay()
}

// Dataset returns a copy of the session's trial records.
func (e *Engine) Dataset() []model.TrialRecord {
	out := make([]model.TrialRecord, len(e.dataset))
	copy(out, e.dataset)
	return out
}

// Len returns the number of records in the dataset.
func (e *Engine) Len() int {
	return len(e.dataset)
}

// State returns the current session state.
func (e *Engine) State() model.SessionState {
	return e.state
}

// Running reports whether a session is in progress.
func (e *Engine) Running() bool {
	return e.state == model.Running
}

// Stimulus returns the presented stimulus; ok is false while idle.
func (e *Engine) Stimulus() (model.Stimulus, bool) {
	if e.state != model.Running {
		return model.Stimulus{}, false
	}
	return e.stimulus, true
}

// Elapsed returns the time since the current trial started, or zero while idle.
// It is for display only; recorded reaction times are sampled in Submit.
func (e *Engine) Elapsed() time.Duration {
	if e.state != model.Running {
		return 0
	}
	return clock.Mark(e.clock, e.trialStart)
}

// Ticks returns the live display channel, nil while idle or when disabled.
func (e *Engine) Ticks() <-chan time.Time {
	if e.state != model.Running {
		return nil
	}
	return e.ticker.C()
}

// Epoch changes on every Start and Stop. Display ticks tagged with an older
// epoch belong to a superseded session.
func (e *Engine) Epoch() uint64 {
	return e.epoch
}

// SessionID returns the identifier of the current or last session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

func (e *Engine) session() model.Session {
	palette := make(model.Palette, len(e.palette))
	copy(palette, e.palette)
	return model.Session{
		ID:        e.sessionID,
		StartedAt: e.startedAt,
		EndedAt:   e.clock.Now(),
		Palette:   palette,
		Trials:    e.Dataset(),
	}
}

func (e *Engine) stopDisplay() {
	e.ticker.Stop()
	e.ticker = nil
}
