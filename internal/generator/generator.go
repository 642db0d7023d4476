// Package generator builds Stroop stimuli.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/stroop/internal/model"
)

// Generator produces randomized word/ink pairs. The palette must not be empty.
type Generator struct {
	rnd     *rand.Rand
	palette model.Palette
}

// New returns a Generator seeded with the current time.
func New(palette model.Palette) *Generator {
	return NewWithSeed(palette, time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(palette model.Palette, seed int64) *Generator {
	p := make(model.Palette, len(palette))
	copy(p, palette)
	return &Generator{rnd: rand.New(rand.NewSource(seed)), palette: p}
}

// Palette returns a copy of the generator's palette.
func (g *Generator) Palette() model.Palette {
	p := make(model.Palette, len(g.palette))
	copy(p, g.palette)
	return p
}

// Generate draws word and ink independently and uniformly, with replacement.
// Consecutive stimuli may repeat.
func (g *Generator) Generate() model.Stimulus {
	return model.Stimulus{
		Word: g.pick(),
		Ink:  g.pick(),
	}
}

func (g *Generator) pick() model.Color {
	return g.palette[g.rnd.Intn(len(g.palette))]
}
