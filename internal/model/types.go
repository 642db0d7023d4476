// Package model defines shared data structures.
package model

import (
	"sort"
	"time"
)

// Color is a color name. Two colors are equal when their names are equal.
type Color string

// Palette is the ordered set of colors used for both words and inks.
type Palette []Color

// knownColors maps every supported color name to its display hex value.
var knownColors = map[Color]string{
	"red":     "#E5322D",
	"orange":  "#F28C28",
	"yellow":  "#F2D21B",
	"green":   "#2EA043",
	"blue":    "#1F6FEB",
	"indigo":  "#4B0082",
	"purple":  "#8E44AD",
	"pink":    "#F06EAA",
	"brown":   "#8B5A2B",
	"gray":    "#8C8C8C",
	"black":   "#1A1A1A",
	"white":   "#F0F0F0",
	"cyan":    "#1BC5D4",
	"magenta": "#D01FB5",
}

// MaxPaletteSize is the largest palette whose colors each get a digit key.
const MaxPaletteSize = 9

// DefaultPalette returns the standard seven-color palette.
func DefaultPalette() Palette {
	return Palette{"red", "orange", "yellow", "green", "blue", "indigo", "purple"}
}

// KnownColors lists every supported color name in alphabetical order.
func KnownColors() []Color {
	out := make([]Color, 0, len(knownColors))
	for c := range knownColors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Hex returns the display color for c and whether the name is known.
func (c Color) Hex() (string, bool) {
	hex, ok := knownColors[c]
	return hex, ok
}

// Index returns the position of c in the palette, or -1.
func (p Palette) Index(c Color) int {
	for i, pc := range p {
		if pc == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c belongs to the palette.
func (p Palette) Contains(c Color) bool {
	return p.Index(c) >= 0
}

// Stimulus is the word/ink pair presented for one trial.
type Stimulus struct {
	Word Color
	Ink  Color
}

// Congruent reports whether the word names its own ink color.
func (s Stimulus) Congruent() bool {
	return s.Word == s.Ink
}

// TrialRecord is the permanent record of one answered trial.
type TrialRecord struct {
	PresentedWord       Color
	PresentedInk        Color
	Selected            Color
	ReactionTimeSeconds float64
	IsCorrect           bool
}

// Congruent reports whether the presented word matched its ink color.
func (r TrialRecord) Congruent() bool {
	return r.PresentedWord == r.PresentedInk
}

// SessionState is the trial engine's lifecycle state.
type SessionState int

const (
	// Idle means no stimulus is presented and responses are ignored.
	Idle SessionState = iota
	// Running means one stimulus is presented and awaits a response.
	Running
)

func (s SessionState) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Session is a completed session handed to exporters.
type Session struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Palette   Palette
	Trials    []TrialRecord
}

// Config defines test settings.
type Config struct {
	Palette         Palette
	DisplayInterval time.Duration
	ExportDir       string
	ExportFormat    string
	SaveHistory     bool
	LogFile         string
	LogLevel        string
}

// StatsConfig defines filters and options for history output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionAggregate summarizes a stored session by congruence class.
type SessionAggregate struct {
	SessionID          string
	EndedAt            time.Time
	CongruentCount     int
	CongruentCorrect   int
	CongruentRTSum     float64
	IncongruentCount   int
	IncongruentCorrect int
	IncongruentRTSum   float64
}
