package generator

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/verte-zerg/stroop/internal/model"
)

func TestGenerateDrawsFromPalette(t *testing.T) {
	palette := model.DefaultPalette()
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		gen := NewWithSeed(palette, seed)
		for i := 0; i < 50; i++ {
			s := gen.Generate()
			if !palette.Contains(s.Word) || !palette.Contains(s.Ink) {
				t.Fatalf("stimulus outside palette: %+v", s)
			}
		}
	})
}

func TestGenerateCoversEveryColorAndBothClasses(t *testing.T) {
	palette := model.DefaultPalette()
	gen := NewWithSeed(palette, 42)
	words := map[model.Color]int{}
	inks := map[model.Color]int{}
	congruent, incongruent := 0, 0
	for i := 0; i < 5000; i++ {
		s := gen.Generate()
		words[s.Word]++
		inks[s.Ink]++
		if s.Congruent() {
			congruent++
		} else {
			incongruent++
		}
	}
	for _, c := range palette {
		if words[c] == 0 || inks[c] == 0 {
			t.Fatalf("color %q never drawn (word=%d ink=%d)", c, words[c], inks[c])
		}
	}
	if congruent == 0 || incongruent == 0 {
		t.Fatalf("expected both classes, got congruent=%d incongruent=%d", congruent, incongruent)
	}
}

func TestGenerateAllowsImmediateRepeats(t *testing.T) {
	gen := NewWithSeed(model.Palette{"red", "blue"}, 7)
	prev := gen.Generate()
	repeats := 0
	for i := 0; i < 200; i++ {
		s := gen.Generate()
		if s == prev {
			repeats++
		}
		prev = s
	}
	if repeats == 0 {
		t.Fatalf("expected consecutive repeats with a two-color palette")
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewWithSeed(model.DefaultPalette(), 99)
	b := NewWithSeed(model.DefaultPalette(), 99)
	for i := 0; i < 20; i++ {
		if a.Generate() != b.Generate() {
			t.Fatalf("sequences diverged at %d", i)
		}
	}
}
